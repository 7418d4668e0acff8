package core

import "github.com/google/uuid"

// TestChromosome is a candidate test case together with its last execution
// and the indicator values computed for that execution.
//
// A chromosome is revalued by one worker at a time; it is not safe for
// concurrent use.
type TestChromosome struct {
	ID         string
	lastResult *ExecutionResult
	values     IndicatorValues
}

// NewTestChromosome creates a chromosome with no execution result and an empty memo.
func NewTestChromosome() *TestChromosome {
	return &TestChromosome{ID: uuid.NewString(), values: IndicatorValues{}}
}

func (c *TestChromosome) LastExecutionResult() *ExecutionResult {
	return c.lastResult
}

// SetLastExecutionResult records a new execution and drops every value
// computed for the previous one.
func (c *TestChromosome) SetLastExecutionResult(result *ExecutionResult) {
	c.lastResult = result
	c.values = IndicatorValues{}
}

func (c *TestChromosome) IndicatorValue(kind IndicatorKind) (float64, bool) {
	return c.values.Get(kind)
}

func (c *TestChromosome) SetIndicatorValue(kind IndicatorKind, value float64) {
	if c.values == nil {
		c.values = IndicatorValues{}
	}
	c.values[kind] = value
}

// IndicatorValues returns a copy of the memo.
func (c *TestChromosome) IndicatorValues() IndicatorValues {
	out := make(IndicatorValues, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Clone copies the chromosome, sharing the execution result and copying the memo.
func (c *TestChromosome) Clone() *TestChromosome {
	return &TestChromosome{
		ID:         uuid.NewString(),
		lastResult: c.lastResult,
		values:     c.IndicatorValues(),
	}
}
