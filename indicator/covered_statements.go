// Package indicator exposes performance indicators computed for test
// chromosomes. Values are memoized on the chromosome for its last execution.
package indicator

import (
	"context"
	"fmt"

	"github.com/snow-ghost/covindicator/core"
	"github.com/snow-ghost/covindicator/coverage"
	"github.com/snow-ghost/covindicator/pkg/cache"
	"github.com/snow-ghost/covindicator/pkg/logging"
	"github.com/snow-ghost/covindicator/pkg/metrics"
	"github.com/snow-ghost/covindicator/pkg/tracing"
	"github.com/snow-ghost/covindicator/sizeindex"
)

const (
	levelChromosome = "chromosome"
	levelShared     = "shared"
)

// CoveredStatements measures the statements a test covers, weighted by how
// often covered blocks and branchless methods were re-executed.
type CoveredStatements struct {
	Index    *sizeindex.Index
	Valuator *coverage.Valuator
	// Shared is optional; when set, chromosomes sharing an execution share the value.
	Shared  *cache.ValueCache
	Logger  *logging.Logger
	Metrics *metrics.PrometheusMetrics
	Tracer  *tracing.Tracer
}

// NewCoveredStatements wires the indicator with no-op observability.
func NewCoveredStatements(index *sizeindex.Index, valuator *coverage.Valuator) *CoveredStatements {
	return &CoveredStatements{
		Index:    index,
		Valuator: valuator,
		Logger:   logging.NewNop(),
		Tracer:   tracing.NewNoop(),
	}
}

func (c *CoveredStatements) Kind() core.IndicatorKind {
	return core.CoveredStatementsKind
}

// Value returns the memoized value of tc or computes it from tc's last
// execution. It fails with core.ErrNoExecutionResult if tc never ran.
func (c *CoveredStatements) Value(ctx context.Context, tc core.TestCase) (float64, error) {
	kind := c.Kind()
	if v, ok := tc.IndicatorValue(kind); ok {
		c.cacheHit(levelChromosome)
		return v, nil
	}
	c.cacheMiss(levelChromosome)

	result := tc.LastExecutionResult()
	if result == nil || result.Trace == nil {
		c.recordError()
		return 0, core.ErrNoExecutionResult
	}

	key := cache.Key{Kind: kind, ExecutionID: result.ID}
	if c.Shared != nil {
		if v, ok := c.Shared.Get(key); ok {
			c.cacheHit(levelShared)
			tc.SetIndicatorValue(kind, v)
			return v, nil
		}
		c.cacheMiss(levelShared)
	}

	ctx, span := c.tracer().StartValuationSpan(ctx, string(kind), result.ID)
	defer span.End()

	snap, err := c.Index.EnsureBuilt(ctx)
	if err != nil {
		tracing.RecordSpanError(span, err)
		c.recordError()
		return 0, err
	}

	val, err := c.Valuator.Valuate(result.Trace, snap)
	if err != nil {
		err = fmt.Errorf("execution %s: %w", result.ID, err)
		tracing.RecordSpanError(span, err)
		c.recordError()
		return 0, err
	}
	tracing.RecordSpanSuccess(span)

	tc.SetIndicatorValue(kind, val.Value)
	if c.Shared != nil {
		c.Shared.Set(key, val.Value)
	}

	c.logger().LogValuation(string(kind), result.ID, val.Value, val.Excluded)
	if c.Metrics != nil {
		c.Metrics.RecordValuation(string(kind), val.Value, val.Excluded)
	}
	return val.Value, nil
}

func (c *CoveredStatements) cacheHit(level string) {
	c.logger().LogCacheOperation(string(c.Kind()), level, true)
	if c.Metrics != nil {
		c.Metrics.RecordCacheHit(string(c.Kind()), level)
	}
}

func (c *CoveredStatements) cacheMiss(level string) {
	c.logger().LogCacheOperation(string(c.Kind()), level, false)
	if c.Metrics != nil {
		c.Metrics.RecordCacheMiss(string(c.Kind()), level)
	}
}

func (c *CoveredStatements) recordError() {
	if c.Metrics != nil {
		c.Metrics.RecordValuationError(string(c.Kind()))
	}
}

func (c *CoveredStatements) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func (c *CoveredStatements) tracer() *tracing.Tracer {
	if c.Tracer == nil {
		return tracing.NewNoop()
	}
	return c.Tracer
}
