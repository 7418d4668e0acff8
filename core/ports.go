package core

import "context"

// BranchCatalog enumerates every branch of the loaded program under test.
type BranchCatalog interface {
	AllBranches() []Branch
}

// InstructionCatalog enumerates every instruction of the loaded program under test.
type InstructionCatalog interface {
	AllInstructions() []Instruction
}

// CatalogSource hands out the structural catalogs once analysis has run.
// It returns ErrCatalogUnavailable before that.
type CatalogSource interface {
	Catalogs() (BranchCatalog, InstructionCatalog, error)
}

// TestCase is what an indicator needs from a chromosome.
type TestCase interface {
	LastExecutionResult() *ExecutionResult
	IndicatorValue(kind IndicatorKind) (float64, bool)
	SetIndicatorValue(kind IndicatorKind, value float64)
}

// Indicator computes a named scalar for a test case.
type Indicator interface {
	Kind() IndicatorKind
	Value(ctx context.Context, tc TestCase) (float64, error)
}
