package core

import "context"

// WeightedIndicators combines several indicators into one secondary objective
// as the weighted sum of their values.
type WeightedIndicators struct {
	Indicators []Indicator
	Weights    map[IndicatorKind]float64
}

func NewWeightedIndicators(weights map[IndicatorKind]float64, indicators ...Indicator) *WeightedIndicators {
	return &WeightedIndicators{Indicators: indicators, Weights: weights}
}

// Score evaluates every indicator with a non-zero weight. Indicators without a
// weight are skipped and never evaluated.
func (w *WeightedIndicators) Score(ctx context.Context, tc TestCase) (float64, error) {
	score := 0.0
	for _, ind := range w.Indicators {
		weight, ok := w.Weights[ind.Kind()]
		if !ok || weight == 0 {
			continue
		}
		v, err := ind.Value(ctx, tc)
		if err != nil {
			return 0, err
		}
		score += weight * v
	}
	return score, nil
}

// Better reports whether score a beats score b when higher values win.
func (w *WeightedIndicators) Better(a, b float64) bool {
	return a > b
}
