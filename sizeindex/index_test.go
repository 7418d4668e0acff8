package sizeindex

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/covindicator/catalog"
	"github.com/snow-ghost/covindicator/core"
	"github.com/snow-ghost/covindicator/pkg/metrics"
	"github.com/snow-ghost/covindicator/testkit"
)

func TestEnsureBuilt_Sizes(t *testing.T) {
	idx := New(testkit.GenerateStackProgram(), Deps{})

	snap, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)

	for _, b := range testkit.StackBranches {
		size, ok := snap.BlockSize(b.ID)
		require.True(t, ok, "branch %d", b.ID)
		assert.Equal(t, b.LastLine-b.FirstLine+1, size)
	}
	size, _ := snap.BlockSize(1)
	assert.Equal(t, 5, size)

	for name, want := range testkit.StackMethods {
		got, ok := snap.MethodSize(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, 3, snap.Branches())
	assert.Equal(t, 3, snap.Methods())
}

func TestEnsureBuilt_AbsentEntries(t *testing.T) {
	snap, err := New(testkit.GenerateStackProgram(), Deps{}).EnsureBuilt(context.Background())
	require.NoError(t, err)

	_, ok := snap.BlockSize(99)
	assert.False(t, ok)
	// methods without instructions never appear
	_, ok = snap.MethodSize(testkit.StackClass + ".pop")
	assert.False(t, ok)
}

func TestEnsureBuilt_Idempotent(t *testing.T) {
	src := &testkit.CountingSource{Source: testkit.GenerateStackProgram()}
	idx := New(src, Deps{})

	first, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)
	second, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), src.Calls())
	assert.Equal(t, int64(1), idx.Builds())
}

func TestEnsureBuilt_ConcurrentFirstAccessBuildsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheusMetrics(reg)
	src := &testkit.CountingSource{Source: testkit.GenerateStackProgram(), Delay: 20 * time.Millisecond}
	idx := New(src, Deps{Metrics: m})

	const workers = 64
	snaps := make([]*Snapshot, workers)
	errs := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			snaps[i], errs[i] = idx.EnsureBuilt(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, snaps[0], snaps[i])
	}
	assert.Equal(t, int64(1), src.Calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal))
}

func TestEnsureBuilt_CatalogUnavailable(t *testing.T) {
	pool := testkit.UnanalyzedStackProgram()
	idx := New(pool, Deps{})

	_, err := idx.EnsureBuilt(context.Background())
	require.ErrorIs(t, err, core.ErrCatalogUnavailable)
	_, ok := idx.Snapshot()
	assert.False(t, ok)

	// the failure is not remembered
	pool.MarkAnalyzed()
	snap, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Branches())
}

func TestEnsureBuilt_InvalidBlock(t *testing.T) {
	pool := catalog.NewPool()
	require.NoError(t, pool.RegisterBranch(core.Branch{ID: 1, FirstLine: 9, LastLine: 4}))
	pool.MarkAnalyzed()

	_, err := New(pool, Deps{}).EnsureBuilt(context.Background())
	require.ErrorIs(t, err, core.ErrInvalidCatalog)
}

func TestReset(t *testing.T) {
	src := &testkit.CountingSource{Source: testkit.GenerateStackProgram()}
	idx := New(src, Deps{})

	_, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)
	idx.Reset()
	_, ok := idx.Snapshot()
	require.False(t, ok)

	_, err = idx.EnsureBuilt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.Calls())
}

// gatedSource blocks its first Catalogs call until release is closed. The
// blocked call returns the catalogs that were current when it started.
type gatedSource struct {
	mu      sync.Mutex
	current core.CatalogSource
	calls   int
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(src core.CatalogSource) *gatedSource {
	return &gatedSource{current: src, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) swap(src core.CatalogSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = src
}

func (g *gatedSource) Catalogs() (core.BranchCatalog, core.InstructionCatalog, error) {
	g.mu.Lock()
	src := g.current
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if first {
		close(g.entered)
		<-g.release
	}
	return src.Catalogs()
}

func poolWithBranch(t *testing.T, id core.BranchID) *catalog.Pool {
	t.Helper()
	p := catalog.NewPool()
	require.NoError(t, p.RegisterBranch(core.Branch{ID: id, FirstLine: 1, LastLine: 2}))
	p.MarkAnalyzed()
	return p
}

func TestReset_DuringBuildDiscardsStaleSnapshot(t *testing.T) {
	src := newGatedSource(poolWithBranch(t, 1))
	idx := New(src, Deps{})

	type result struct {
		snap *Snapshot
		err  error
	}
	stale := make(chan result, 1)
	go func() {
		s, err := idx.EnsureBuilt(context.Background())
		stale <- result{s, err}
	}()
	<-src.entered

	// reload the program while the first scan is still running
	src.swap(poolWithBranch(t, 2))
	idx.Reset()

	fresh, err := idx.EnsureBuilt(context.Background())
	require.NoError(t, err)
	_, hasNew := fresh.BlockSize(2)
	assert.True(t, hasNew)

	close(src.release)
	first := <-stale
	require.NoError(t, first.err)

	for _, s := range []*Snapshot{first.snap, fresh} {
		_, hasOld := s.BlockSize(1)
		_, hasNew := s.BlockSize(2)
		assert.False(t, hasOld)
		assert.True(t, hasNew)
	}

	current, ok := idx.Snapshot()
	require.True(t, ok)
	_, hasOld := current.BlockSize(1)
	assert.False(t, hasOld)
	assert.Same(t, fresh, current)
}
