// Package testkit provides fixture programs and trace builders shared by the
// package tests.
package testkit

import (
	"sync/atomic"
	"time"

	"github.com/snow-ghost/covindicator/catalog"
	"github.com/snow-ghost/covindicator/core"
)

const (
	StackClass = "com.example.Stack"

	PushMethod = StackClass + ".push"
	SizeMethod = StackClass + ".size"
	InitMethod = StackClass + ".<init>"
)

// StackBranches are the branches of the fixture program. Block sizes are 5, 3 and 1.
var StackBranches = []core.Branch{
	{ID: 1, FirstLine: 10, LastLine: 14},
	{ID: 2, FirstLine: 20, LastLine: 22},
	{ID: 3, FirstLine: 30, LastLine: 30},
}

// StackMethods maps each fixture method to its instruction count.
var StackMethods = map[string]int{
	PushMethod: 4,
	SizeMethod: 8,
	InitMethod: 2,
}

// GenerateStackProgram returns an analyzed pool holding the fixture program.
// Instructions of the three methods are interleaved so that per-method sizes
// are accumulated across the whole catalog.
func GenerateStackProgram() *catalog.Pool {
	p := UnanalyzedStackProgram()
	p.MarkAnalyzed()
	return p
}

// UnanalyzedStackProgram is GenerateStackProgram before MarkAnalyzed.
func UnanalyzedStackProgram() *catalog.Pool {
	p := catalog.NewPool()
	for _, b := range StackBranches {
		if err := p.RegisterBranch(b); err != nil {
			panic(err)
		}
	}
	remaining := map[string]int{"push": 4, "size": 8, "<init>": 2}
	line := 1
	for remaining["push"]+remaining["size"]+remaining["<init>"] > 0 {
		for _, m := range []string{"push", "size", "<init>"} {
			if remaining[m] == 0 {
				continue
			}
			p.RegisterInstruction(StackClass, m, line)
			remaining[m]--
			line++
		}
	}
	return p
}

// TraceBuilder assembles execution traces.
type TraceBuilder struct {
	trace *core.ExecutionTrace
}

func NewTrace() *TraceBuilder {
	return &TraceBuilder{trace: core.NewExecutionTrace()}
}

// True covers id on its true outcome with the given non-execution count.
func (b *TraceBuilder) True(id core.BranchID, noExec int) *TraceBuilder {
	b.trace.CoveredTrueBranches[id] = struct{}{}
	b.trace.NoExecutionForConditionalNode[id] = noExec
	return b
}

// False covers id on its false outcome with the given non-execution count.
func (b *TraceBuilder) False(id core.BranchID, noExec int) *TraceBuilder {
	b.trace.CoveredFalseBranches[id] = struct{}{}
	b.trace.NoExecutionForConditionalNode[id] = noExec
	return b
}

// TrueWithoutCount covers id without recording a non-execution count.
func (b *TraceBuilder) TrueWithoutCount(id core.BranchID) *TraceBuilder {
	b.trace.CoveredTrueBranches[id] = struct{}{}
	return b
}

// Method covers a branchless method invoked n times.
func (b *TraceBuilder) Method(name string, n int) *TraceBuilder {
	b.trace.CoveredBranchlessMethods[name] = struct{}{}
	b.trace.MethodExecutionCount[name] = n
	return b
}

// MethodWithoutCount covers a method without recording its invocation count.
func (b *TraceBuilder) MethodWithoutCount(name string) *TraceBuilder {
	b.trace.CoveredBranchlessMethods[name] = struct{}{}
	return b
}

func (b *TraceBuilder) Build() *core.ExecutionTrace {
	return b.trace
}

// Executed returns a chromosome whose last execution produced trace.
func Executed(trace *core.ExecutionTrace) *core.TestChromosome {
	c := core.NewTestChromosome()
	c.SetLastExecutionResult(core.NewExecutionResult(trace))
	return c
}

// CountingSource wraps a catalog source and counts Catalogs calls. Delay
// widens the window in which concurrent callers overlap.
type CountingSource struct {
	Source core.CatalogSource
	Delay  time.Duration
	calls  atomic.Int64
}

func (s *CountingSource) Catalogs() (core.BranchCatalog, core.InstructionCatalog, error) {
	s.calls.Add(1)
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	return s.Source.Catalogs()
}

func (s *CountingSource) Calls() int64 {
	return s.calls.Load()
}
