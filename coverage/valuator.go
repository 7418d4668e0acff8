// Package coverage folds an execution trace against the static size index
// into the collateral coverage value of a test.
package coverage

import (
	"fmt"

	"github.com/snow-ghost/covindicator/core"
)

// ReexecutionThreshold is the count a block or method must exceed before it
// contributes. One or two executions only mean the code was reached.
const ReexecutionThreshold = 2

// SizeLookup is the read side of the static size index.
type SizeLookup interface {
	BlockSize(id core.BranchID) (int, bool)
	MethodSize(name string) (int, bool)
}

// Valuation is the outcome of one trace fold.
type Valuation struct {
	Value float64
	// Excluded counts covered ids the index does not know; they contribute 0.
	Excluded int
	// Inconsistent counts covered ids without their companion count. It is
	// only non-zero in lenient mode.
	Inconsistent int
}

// Valuator computes collateral statement coverage.
type Valuator struct {
	// Lenient treats a missing companion count as zero instead of failing.
	Lenient bool
}

// NewValuator creates a strict valuator.
func NewValuator() *Valuator { return &Valuator{} }

// Valuate sums, over every covered branch outcome re-reached more than
// ReexecutionThreshold times, the non-execution count times the guarded
// block size, plus, over every covered branchless method invoked more than
// ReexecutionThreshold times, the invocation count times its instruction
// count. A branch covered on both outcomes contributes twice.
func (v *Valuator) Valuate(trace *core.ExecutionTrace, index SizeLookup) (Valuation, error) {
	var (
		acc int64
		out Valuation
	)

	branchSets := []map[core.BranchID]struct{}{trace.CoveredFalseBranches, trace.CoveredTrueBranches}
	for _, covered := range branchSets {
		for id := range covered {
			count, ok := trace.NoExecutionForConditionalNode[id]
			if !ok {
				if !v.Lenient {
					return Valuation{}, fmt.Errorf("%w: branch %d covered without non-execution count", core.ErrInconsistentTrace, id)
				}
				out.Inconsistent++
				continue
			}
			size, ok := index.BlockSize(id)
			if !ok {
				out.Excluded++
				continue
			}
			if count <= ReexecutionThreshold {
				continue
			}
			acc += int64(count) * int64(size)
		}
	}

	for name := range trace.CoveredBranchlessMethods {
		size, ok := index.MethodSize(name)
		if !ok {
			out.Excluded++
			continue
		}
		n, ok := trace.MethodExecutionCount[name]
		if !ok {
			if !v.Lenient {
				return Valuation{}, fmt.Errorf("%w: method %s covered without invocation count", core.ErrInconsistentTrace, name)
			}
			out.Inconsistent++
			continue
		}
		if n > ReexecutionThreshold {
			acc += int64(size) * int64(n)
		}
	}

	out.Value = float64(acc)
	return out, nil
}
