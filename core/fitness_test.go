package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIndicator struct {
	kind  IndicatorKind
	value float64
	err   error
	calls int
}

func (f *fixedIndicator) Kind() IndicatorKind { return f.kind }

func (f *fixedIndicator) Value(ctx context.Context, tc TestCase) (float64, error) {
	f.calls++
	return f.value, f.err
}

func TestWeightedIndicators_Score(t *testing.T) {
	a := &fixedIndicator{kind: "a", value: 10}
	b := &fixedIndicator{kind: "b", value: 4}
	unweighted := &fixedIndicator{kind: "c", value: 100}

	w := NewWeightedIndicators(map[IndicatorKind]float64{"a": 0.5, "b": 2}, a, b, unweighted)
	score, err := w.Score(context.Background(), NewTestChromosome())
	require.NoError(t, err)
	assert.InDelta(t, 13.0, score, 1e-9)
	assert.Equal(t, 0, unweighted.calls)

	assert.True(t, w.Better(score, 12))
	assert.False(t, w.Better(12, score))
}

func TestWeightedIndicators_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	w := NewWeightedIndicators(map[IndicatorKind]float64{"a": 1}, &fixedIndicator{kind: "a", err: boom})
	_, err := w.Score(context.Background(), NewTestChromosome())
	require.ErrorIs(t, err, boom)
}
