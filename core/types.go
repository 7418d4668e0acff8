package core

import (
	"github.com/google/uuid"
)

// BranchID identifies one decision point of the program under test.
type BranchID int

// Branch is one entry of the branch catalog.
type Branch struct {
	ID BranchID
	// FirstLine and LastLine delimit the basic block guarded by the branch outcome.
	FirstLine int
	LastLine  int
}

// BlockSize returns the number of source lines in the guarded block.
func (b Branch) BlockSize() int {
	return b.LastLine - b.FirstLine + 1
}

// Instruction is one entry of the instruction catalog.
type Instruction struct {
	ID         int // ordering key, assigned at registration
	ClassName  string
	MethodName string
	Line       int
}

// MethodKey returns the fully qualified method name the instruction belongs to.
func (i Instruction) MethodKey() string {
	return MethodKey(i.ClassName, i.MethodName)
}

// MethodKey joins a class and method name the way traces report them.
func MethodKey(className, methodName string) string {
	return className + "." + methodName
}

// ExecutionTrace is the dynamic record of one test execution.
type ExecutionTrace struct {
	CoveredTrueBranches  map[BranchID]struct{}
	CoveredFalseBranches map[BranchID]struct{}
	// NoExecutionForConditionalNode counts how often control reached a
	// conditional node without completing the branch decision.
	NoExecutionForConditionalNode map[BranchID]int
	CoveredBranchlessMethods      map[string]struct{}
	MethodExecutionCount          map[string]int
}

// NewExecutionTrace returns a trace with all maps allocated.
func NewExecutionTrace() *ExecutionTrace {
	return &ExecutionTrace{
		CoveredTrueBranches:           map[BranchID]struct{}{},
		CoveredFalseBranches:          map[BranchID]struct{}{},
		NoExecutionForConditionalNode: map[BranchID]int{},
		CoveredBranchlessMethods:      map[string]struct{}{},
		MethodExecutionCount:          map[string]int{},
	}
}

// ExecutionResult wraps the trace of one execution. ID changes with every execution.
type ExecutionResult struct {
	ID    string
	Trace *ExecutionTrace
}

// NewExecutionResult wraps trace under a fresh execution id.
func NewExecutionResult(trace *ExecutionTrace) *ExecutionResult {
	return &ExecutionResult{ID: uuid.NewString(), Trace: trace}
}

// IndicatorKind is the stable identity of an indicator type.
type IndicatorKind string

const (
	CoveredStatementsKind IndicatorKind = "performance.indicator.CoveredStatementsCounter"
)

// IndicatorValues memoizes indicator values of a single chromosome.
type IndicatorValues map[IndicatorKind]float64

// Get returns the memoized value for kind and whether one was stored.
func (v IndicatorValues) Get(kind IndicatorKind) (float64, bool) {
	value, ok := v[kind]
	return value, ok
}
