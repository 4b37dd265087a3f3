package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

const healthCheckTimeout = 5 * time.Second

type HealthService struct {
	logger *logrus.Logger
	engine *engine.Engine
	checks []dependencyCheck

	healthCheckStatus *prometheus.GaugeVec
	lastHealthCheck   *prometheus.GaugeVec
}

type dependencyCheck struct {
	name     string
	critical bool
	check    func(ctx context.Context) error
}

type HealthStatus struct {
	Status      string              `json:"status"`
	Timestamp   time.Time           `json:"timestamp"`
	Services    map[string]string   `json:"services"`
	Critical    []string            `json:"critical_failures,omitempty"`
	NonCritical []string            `json:"non_critical_failures,omitempty"`
	Engine      models.EngineStatus `json:"engine"`
}

var errEngineNotLoaded = errors.New("no snapshot loaded")

// NewHealthService checks the engine plus every configured connection.
// PostgreSQL is critical only when it is the data source.
func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database, eng *engine.Engine) *HealthService {
	hs := &HealthService{
		logger: logger,
		engine: eng,
	}

	hs.checks = append(hs.checks, dependencyCheck{
		name:     "engine",
		critical: true,
		check: func(ctx context.Context) error {
			if eng.Snapshot().Version() == 0 {
				return errEngineNotLoaded
			}
			return nil
		},
	})
	if db != nil && db.PG != nil {
		hs.checks = append(hs.checks, dependencyCheck{
			name:     "postgresql",
			critical: cfg.Data.Source == "postgres",
			check:    func(ctx context.Context) error { return db.PG.Ping(ctx) },
		})
	}
	if db != nil && db.Redis != nil {
		hs.checks = append(hs.checks, dependencyCheck{
			name:  "redis",
			check: func(ctx context.Context) error { return db.Redis.Ping(ctx).Err() },
		})
	}
	if db != nil && db.Neo4j != nil {
		hs.checks = append(hs.checks, dependencyCheck{
			name:  "neo4j",
			check: func(ctx context.Context) error { return db.Neo4j.VerifyConnectivity(ctx) },
		})
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})

	hs.lastHealthCheck = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_timestamp",
		Help: "Timestamp of last health check",
	}, []string{"service"})

	// Register metrics with error handling - ignore if already registered
	if err := prometheus.Register(hs.healthCheckStatus); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			hs.healthCheckStatus = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			logger.WithError(err).Warn("Failed to register health_check_status metric")
		}
	}
	if err := prometheus.Register(hs.lastHealthCheck); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			hs.lastHealthCheck = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			logger.WithError(err).Warn("Failed to register health_check_timestamp metric")
		}
	}

	return hs
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
		Engine:    s.engine.Snapshot().Status(),
	}

	allCriticalHealthy := true
	for _, dep := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := dep.check(checkCtx)
		cancel()

		if err == nil {
			status.Services[dep.name] = "healthy"
			s.UpdateHealthMetrics(dep.name, true)
			continue
		}

		status.Services[dep.name] = "unhealthy"
		s.UpdateHealthMetrics(dep.name, false)
		if dep.critical {
			allCriticalHealthy = false
			status.Critical = append(status.Critical, dep.name)
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", dep.name)
		} else {
			status.NonCritical = append(status.NonCritical, dep.name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", dep.name)
		}
	}
	sort.Strings(status.Critical)
	sort.Strings(status.NonCritical)

	// Overall status
	if allCriticalHealthy {
		if len(status.NonCritical) == 0 {
			status.Status = "healthy"
		} else {
			status.Status = "degraded"
		}
	} else {
		status.Status = "unhealthy"
	}

	return status
}

// UpdateHealthMetrics updates health check metrics
func (s *HealthService) UpdateHealthMetrics(serviceName string, healthy bool) {
	if healthy {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(1)
	} else {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(0)
	}
	s.lastHealthCheck.WithLabelValues(serviceName).Set(float64(time.Now().Unix()))
}
