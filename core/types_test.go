package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchBlockSize(t *testing.T) {
	assert.Equal(t, 5, Branch{ID: 1, FirstLine: 10, LastLine: 14}.BlockSize())
	assert.Equal(t, 1, Branch{ID: 2, FirstLine: 7, LastLine: 7}.BlockSize())
}

func TestInstructionMethodKey(t *testing.T) {
	in := Instruction{ClassName: "com.example.Stack", MethodName: "push"}
	assert.Equal(t, "com.example.Stack.push", in.MethodKey())
}

func TestNewExecutionResultAssignsFreshID(t *testing.T) {
	trace := NewExecutionTrace()
	a := NewExecutionResult(trace)
	b := NewExecutionResult(trace)

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, trace, a.Trace)
}

func TestTestChromosome_Memo(t *testing.T) {
	c := NewTestChromosome()
	_, ok := c.IndicatorValue(CoveredStatementsKind)
	assert.False(t, ok)

	c.SetIndicatorValue(CoveredStatementsKind, 42)
	v, ok := c.IndicatorValue(CoveredStatementsKind)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	// a new execution invalidates the memo
	c.SetLastExecutionResult(NewExecutionResult(NewExecutionTrace()))
	_, ok = c.IndicatorValue(CoveredStatementsKind)
	assert.False(t, ok)
}

func TestTestChromosome_CloneSharesExecution(t *testing.T) {
	c := NewTestChromosome()
	c.SetLastExecutionResult(NewExecutionResult(NewExecutionTrace()))
	c.SetIndicatorValue(CoveredStatementsKind, 7)

	clone := c.Clone()
	assert.NotEqual(t, c.ID, clone.ID)
	assert.Same(t, c.LastExecutionResult(), clone.LastExecutionResult())

	clone.SetIndicatorValue(CoveredStatementsKind, 9)
	v, _ := c.IndicatorValue(CoveredStatementsKind)
	assert.Equal(t, 7.0, v)
}
