package engine

import (
	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

// Weights is the hybrid blend. Zero disables a method.
type Weights struct {
	Collaborative float64
	ItemBased     float64
	ContentBased  float64
	Popularity    float64
}

// WeightsFromMap reads the {method: weight} mapping used in configuration.
// Missing methods get weight 0.
func WeightsFromMap(m map[string]float64) Weights {
	return Weights{
		Collaborative: m[models.MethodCollaborative],
		ItemBased:     m[models.MethodItemBased],
		ContentBased:  m[models.MethodContentBased],
		Popularity:    m[models.MethodPopularity],
	}
}

type Options struct {
	MinRatings        int
	TopSimilarUsers   int
	MinUserSimilarity float64
	Oversample        int
	AnchorMinRatings  int
	Weights           Weights
}

func DefaultOptions() Options {
	return Options{
		MinRatings:        10,
		TopSimilarUsers:   50,
		MinUserSimilarity: 0.1,
		Oversample:        2,
		AnchorMinRatings:  5,
		Weights:           WeightsFromMap(config.DefaultHybridWeights()),
	}
}

func OptionsFromConfig(cfg config.RecommendationConfig) Options {
	opts := Options{
		MinRatings:        cfg.MinRatings,
		TopSimilarUsers:   cfg.TopSimilarUsers,
		MinUserSimilarity: cfg.MinUserSimilarity,
		Oversample:        cfg.Oversample,
		AnchorMinRatings:  cfg.AnchorMinRatings,
		Weights:           WeightsFromMap(cfg.HybridWeights),
	}
	if cfg.HybridWeights == nil {
		opts.Weights = WeightsFromMap(config.DefaultHybridWeights())
	}
	if opts.Oversample < 1 {
		opts.Oversample = 1
	}
	if opts.AnchorMinRatings < 1 {
		opts.AnchorMinRatings = 5
	}
	return opts
}
