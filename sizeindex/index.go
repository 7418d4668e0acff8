// Package sizeindex measures the static size of every branch-guarded block
// and every method of the program under test. The index is built once per
// program load and is immutable afterwards.
package sizeindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/snow-ghost/covindicator/core"
	"github.com/snow-ghost/covindicator/pkg/logging"
	"github.com/snow-ghost/covindicator/pkg/metrics"
	"github.com/snow-ghost/covindicator/pkg/tracing"
)

// Snapshot is a built, read-only index.
type Snapshot struct {
	branches map[core.BranchID]int
	methods  map[string]int
}

// BlockSize returns the line count of the block guarded by id.
func (s *Snapshot) BlockSize(id core.BranchID) (int, bool) {
	n, ok := s.branches[id]
	return n, ok
}

// MethodSize returns the instruction count of a fully qualified method.
func (s *Snapshot) MethodSize(name string) (int, bool) {
	n, ok := s.methods[name]
	return n, ok
}

func (s *Snapshot) Branches() int { return len(s.branches) }
func (s *Snapshot) Methods() int  { return len(s.methods) }

// errSuperseded marks a build that finished after a Reset.
var errSuperseded = errors.New("size index build superseded by reset")

// published pairs a snapshot with the generation it was built for. snap is
// nil until the generation's build completes.
type published struct {
	gen  uint64
	snap *Snapshot
}

// Index builds a Snapshot from a catalog source on first use.
type Index struct {
	source  core.CatalogSource
	group   singleflight.Group
	state   atomic.Pointer[published]
	builds  atomic.Int64
	logger  *logging.Logger
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
}

// Deps are the optional collaborators of an Index. Nil fields are replaced by no-ops.
type Deps struct {
	Logger  *logging.Logger
	Metrics *metrics.PrometheusMetrics
	Tracer  *tracing.Tracer
}

// New creates an index over source. Nothing is scanned until EnsureBuilt.
func New(source core.CatalogSource, deps Deps) *Index {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Tracer == nil {
		deps.Tracer = tracing.NewNoop()
	}
	x := &Index{
		source:  source,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}
	x.state.Store(&published{})
	return x
}

// EnsureBuilt returns the snapshot, scanning the catalogs on the first
// successful call. Concurrent first callers share a single scan. A failed
// build is not remembered, and a build overtaken by Reset is discarded.
func (x *Index) EnsureBuilt(ctx context.Context) (*Snapshot, error) {
	for {
		cur := x.state.Load()
		if cur.snap != nil {
			return cur.snap, nil
		}

		v, err, _ := x.group.Do(flightKey(cur.gen), func() (interface{}, error) {
			// a flight that finished between Load and Do already published
			if now := x.state.Load(); now.gen == cur.gen && now.snap != nil {
				return now.snap, nil
			}
			s, err := x.build(ctx)
			if err != nil {
				return nil, err
			}
			if !x.state.CompareAndSwap(cur, &published{gen: cur.gen, snap: s}) {
				return nil, errSuperseded
			}
			return s, nil
		})
		if errors.Is(err, errSuperseded) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v.(*Snapshot), nil
	}
}

// Snapshot returns the built snapshot without triggering a build.
func (x *Index) Snapshot() (*Snapshot, bool) {
	s := x.state.Load().snap
	return s, s != nil
}

// Reset drops the snapshot so the next EnsureBuilt rescans, e.g. after the
// program under test is reloaded. Builds already in flight are not published.
func (x *Index) Reset() {
	for {
		cur := x.state.Load()
		if x.state.CompareAndSwap(cur, &published{gen: cur.gen + 1}) {
			x.group.Forget(flightKey(cur.gen))
			return
		}
	}
}

func flightKey(gen uint64) string {
	return "build-" + strconv.FormatUint(gen, 10)
}

// Builds returns how many scans have completed successfully.
func (x *Index) Builds() int64 {
	return x.builds.Load()
}

func (x *Index) build(ctx context.Context) (*Snapshot, error) {
	_, span := x.tracer.StartIndexBuildSpan(ctx)
	defer span.End()

	start := time.Now()
	s, err := x.scan()
	if err != nil {
		tracing.RecordSpanError(span, err)
		if x.metrics != nil {
			x.metrics.RecordIndexBuildFailure()
		}
		return nil, err
	}
	tracing.RecordSpanSuccess(span)

	elapsed := time.Since(start)
	x.builds.Add(1)
	x.logger.LogIndexBuilt(s.Branches(), s.Methods(), elapsed)
	if x.metrics != nil {
		x.metrics.RecordIndexBuild(s.Branches(), s.Methods(), elapsed)
	}
	return s, nil
}

func (x *Index) scan() (*Snapshot, error) {
	branchCatalog, instructionCatalog, err := x.source.Catalogs()
	if err != nil {
		return nil, fmt.Errorf("failed to build size index: %w", err)
	}

	branches := branchCatalog.AllBranches()
	s := &Snapshot{
		branches: make(map[core.BranchID]int, len(branches)),
		methods:  map[string]int{},
	}
	for _, b := range branches {
		size := b.BlockSize()
		if size < 1 {
			return nil, fmt.Errorf("%w: branch %d spans lines %d..%d", core.ErrInvalidCatalog, b.ID, b.FirstLine, b.LastLine)
		}
		s.branches[b.ID] = size
	}
	for _, in := range instructionCatalog.AllInstructions() {
		s.methods[in.MethodKey()]++
	}
	return s, nil
}
