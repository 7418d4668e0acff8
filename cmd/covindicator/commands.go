package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snow-ghost/covindicator/catalog"
	"github.com/snow-ghost/covindicator/core"
	"github.com/snow-ghost/covindicator/coverage"
	"github.com/snow-ghost/covindicator/indicator"
	"github.com/snow-ghost/covindicator/pkg/cache"
	"github.com/snow-ghost/covindicator/pkg/config"
	"github.com/snow-ghost/covindicator/pkg/logging"
	"github.com/snow-ghost/covindicator/pkg/metrics"
	"github.com/snow-ghost/covindicator/pkg/tracing"
	"github.com/snow-ghost/covindicator/sizeindex"
)

type flags struct {
	configPath  string
	catalogPath string
	tracesPath  string
	workers     int
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "covindicator",
		Short:         "Collateral statement coverage indicator for generated test cases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&f.catalogPath, "catalog", "", "Path to the YAML program catalog")
	_ = root.MarkPersistentFlagRequired("catalog")

	score := &cobra.Command{
		Use:   "score",
		Short: "Score recorded test executions against the program catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, f)
		},
	}
	score.Flags().StringVar(&f.tracesPath, "traces", "", "Path to the YAML file of recorded executions")
	score.Flags().IntVar(&f.workers, "workers", 0, "Concurrent valuations (overrides valuation.workers)")
	_ = score.MarkFlagRequired("traces")

	index := &cobra.Command{
		Use:   "index",
		Short: "Build the static size index and print block and method sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, f)
		},
	}

	root.AddCommand(score, index)
	return root
}

// engine is the wired set of components shared by the subcommands.
type engine struct {
	cfg       *config.Config
	logger    *logging.Logger
	tracer    *tracing.Tracer
	pool      *catalog.Pool
	index     *sizeindex.Index
	indicator *indicator.CoveredStatements
}

func newEngine(f *flags) (*engine, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())

	pool, err := catalog.LoadFile(f.catalogPath)
	if err != nil {
		return nil, err
	}
	idx := sizeindex.New(pool, sizeindex.Deps{Logger: logger, Metrics: m, Tracer: tracer})

	ind := &indicator.CoveredStatements{
		Index:    idx,
		Valuator: &coverage.Valuator{Lenient: !cfg.Valuation.StrictTraces},
		Logger:   logger,
		Metrics:  m,
		Tracer:   tracer,
	}
	if cfg.Cache.Enabled {
		shared, err := cache.NewValueCache(cfg.Cache.MaxSize)
		if err != nil {
			return nil, err
		}
		ind.Shared = shared
	}

	return &engine{cfg: cfg, logger: logger, tracer: tracer, pool: pool, index: idx, indicator: ind}, nil
}

func (e *engine) close(ctx context.Context) {
	_ = e.tracer.Shutdown(ctx)
	_ = e.logger.Sync()
}

func runScore(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := newEngine(f)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	tests, err := catalog.LoadTraces(f.tracesPath)
	if err != nil {
		return err
	}
	cases := make([]core.TestCase, len(tests))
	for i, t := range tests {
		cases[i] = t.Chromosome
	}

	workers := e.cfg.Valuation.Workers
	if f.workers > 0 {
		workers = f.workers
	}
	values, err := indicator.ScoreAll(ctx, e.indicator, cases, workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0.0
	for i, t := range tests {
		fmt.Fprintf(out, "%s\t%g\n", t.Name, values[i])
		total += values[i]
	}
	e.logger.Info("scoring finished",
		zap.Int("tests", len(tests)),
		zap.Int("workers", workers),
		zap.Float64("total", total),
	)
	return nil
}

func runIndex(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := newEngine(f)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	snap, err := e.index.EnsureBuilt(ctx)
	if err != nil {
		return err
	}

	branches, instructions, err := e.pool.Catalogs()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "branches\t%d\nmethods\t%d\n", snap.Branches(), snap.Methods())

	bs := branches.AllBranches()
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	for _, b := range bs {
		size, _ := snap.BlockSize(b.ID)
		fmt.Fprintf(out, "branch %d\t%d\n", b.ID, size)
	}

	seen := map[string]struct{}{}
	var names []string
	for _, in := range instructions.AllInstructions() {
		if _, ok := seen[in.MethodKey()]; ok {
			continue
		}
		seen[in.MethodKey()] = struct{}{}
		names = append(names, in.MethodKey())
	}
	sort.Strings(names)
	for _, name := range names {
		size, _ := snap.MethodSize(name)
		fmt.Fprintf(out, "method %s\t%d\n", name, size)
	}
	return nil
}
