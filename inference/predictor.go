package inference

import (
	"context"

	"github.com/brensch/snek3d/game"
)

// Predictor scores a board: a policy logit per heading and a value
// estimate in [-1, 1].
type Predictor interface {
	Predict(ctx context.Context, snap *game.Snapshot) (policy []float32, value float32, err error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, snap *game.Snapshot) ([]float32, float32, error)

func (f PredictorFunc) Predict(ctx context.Context, snap *game.Snapshot) ([]float32, float32, error) {
	return f(ctx, snap)
}
