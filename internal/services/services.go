package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/internal/graph"
	"github.com/temcen/movierec/internal/messaging"
)

type Services struct {
	Engine          *engine.Engine
	Metrics         *Metrics
	Catalog         *CatalogService
	Recommendations *RecommendationService
	Ratings         *RatingService
	Rebuilder       *Rebuilder
	Health          *HealthService
	// RateLimit and MessageBus are nil when Redis or Kafka is not
	// configured.
	RateLimit  *RateLimitService
	MessageBus *messaging.MessageBus
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, reg prometheus.Registerer) (*Services, error) {
	source, err := database.NewDataSource(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.OptionsFromConfig(cfg.Recommendation), logger)
	metrics := NewMetrics(reg)
	catalog := NewCatalogService(eng, logger)

	var cache ResultCache
	var rateLimit *RateLimitService
	if db.Redis != nil {
		cache = NewRedisCache(db.Redis, "movierec:")
		if cfg.RateLimit.Enabled {
			rateLimit = NewRateLimitService(cfg.RateLimit, logger, db.Redis)
		}
	}

	var exporter SnapshotExporter
	if db.Neo4j != nil {
		exporter = graph.NewSimilarityExporter(db.Neo4j, cfg.Neo4j.NeighborsLimit, logger)
	}

	var messageBus *messaging.MessageBus
	var publisher RatingPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		messageBus, err = messaging.NewMessageBus(cfg, logger)
		if err != nil {
			return nil, err
		}
		publisher = messageBus
		metrics.WatchConsumer(messageBus)
	}

	rebuilder := NewRebuilder(source, eng, catalog, exporter, metrics, logger)

	return &Services{
		Engine:          eng,
		Metrics:         metrics,
		Catalog:         catalog,
		Recommendations: NewRecommendationService(eng, catalog, cache, metrics, cfg.Recommendation, logger),
		Ratings:         NewRatingService(source, eng, catalog, publisher, rebuilder, metrics, logger),
		Rebuilder:       rebuilder,
		Health:          NewHealthService(cfg, logger, db, eng),
		RateLimit:       rateLimit,
		MessageBus:      messageBus,
	}, nil
}
