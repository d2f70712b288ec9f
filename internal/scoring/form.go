// Package scoring turns raw per-gameweek point histories into the scalar
// scores the optimizer consumes. The optimizer itself never learns where a
// score came from; anything implementing Scorer can feed it.
package scoring

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scorer maps a player's recent gameweek points (most recent first) to a
// single predicted score.
type Scorer interface {
	Score(recent []float64) float64
}

// FormScorer weights recent gameweeks with linear decay: the latest week
// counts fully, each older week 0.1 less.
type FormScorer struct {
	weights []float64
}

// NewFormScorer builds a scorer over the given number of gameweeks.
// Four weeks yields the weights 1.0, 0.9, 0.8, 0.7.
func NewFormScorer(gameweeks int) *FormScorer {
	if gameweeks < 1 {
		gameweeks = 1
	}
	weights := make([]float64, gameweeks)
	for i := range weights {
		weights[i] = 1.0 - 0.1*float64(i)
		if weights[i] < 0 {
			weights[i] = 0
		}
	}
	return &FormScorer{weights: weights}
}

// Score computes the decay-weighted sum of the recent points. Histories
// shorter than the weight window count only the weeks present; longer ones
// ignore weeks past the window.
func (s *FormScorer) Score(recent []float64) float64 {
	n := len(recent)
	if n > len(s.weights) {
		n = len(s.weights)
	}
	if n == 0 {
		return 0
	}
	return floats.Dot(recent[:n], s.weights[:n])
}

// Gameweeks returns the size of the scoring window.
func (s *FormScorer) Gameweeks() int {
	return len(s.weights)
}

// PoolStats summarizes a pool's score distribution for request logging.
func PoolStats(scores []float64) (mean, stddev float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	mean = stat.Mean(scores, nil)
	if len(scores) > 1 {
		stddev = stat.StdDev(scores, nil)
	}
	return mean, stddev
}
