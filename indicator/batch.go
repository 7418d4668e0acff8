package indicator

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/covindicator/core"
)

// ScoreAll evaluates ind on every test case with at most workers concurrent
// valuations. A test case listed more than once is valuated by one goroutine
// and its value copied to the repeated positions. The first error cancels the
// remaining work.
func ScoreAll(ctx context.Context, ind core.Indicator, cases []core.TestCase, workers int) ([]float64, error) {
	if workers < 1 {
		workers = 1
	}
	values := make([]float64, len(cases))
	owner := make(map[core.TestCase]int, len(cases))
	repeats := map[int]int{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tc := range cases {
		if hashable(tc) {
			if first, seen := owner[tc]; seen {
				repeats[i] = first
				continue
			}
			owner[tc] = i
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := ind.Value(ctx, tc)
			if err != nil {
				return fmt.Errorf("test case %d: %w", i, err)
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, first := range repeats {
		values[i] = values[first]
	}
	return values, nil
}

// hashable reports whether tc can key a map; chromosomes are pointers.
func hashable(tc core.TestCase) bool {
	t := reflect.TypeOf(tc)
	return t != nil && t.Comparable()
}
