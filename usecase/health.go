package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/database"
	"github.com/moveline/leadgate/domains/health"
	domainJob "github.com/moveline/leadgate/domains/job"
	"github.com/moveline/leadgate/infrastructure/valkey"
)

const healthProbeTimeout = 3 * time.Second

type healthService struct {
	queue domainJob.IQueue
	cache *valkey.Client
}

// NewHealthService probes the database, the cache and the queue. cache may
// be nil when valkey is not configured.
func NewHealthService(queue domainJob.IQueue, cache *valkey.Client) health.IHealthUsecase {
	return &healthService{queue: queue, cache: cache}
}

func (s *healthService) Live(_ context.Context) health.Component {
	return health.Component{Name: "app", Status: health.StatusOk, CheckedAt: time.Now().UTC()}
}

func (s *healthService) Check(ctx context.Context) health.Report {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	report := health.Report{Status: health.StatusOk}

	report.Components = append(report.Components, s.checkDatabase(ctx))
	if s.cache != nil {
		report.Components = append(report.Components, s.checkCache(ctx))
	}

	if s.queue != nil {
		counts, err := s.queue.CountByStatus(ctx)
		queueComp := health.Component{Name: "queue", Status: health.StatusOk, CheckedAt: time.Now().UTC()}
		if err != nil {
			queueComp.Status = health.StatusError
			queueComp.Message = err.Error()
		} else {
			report.Queue = counts
		}
		report.Components = append(report.Components, queueComp)
	}

	for _, comp := range report.Components {
		if comp.Status == health.StatusError {
			// Cache is optional, everything else is required.
			if comp.Name == "cache" {
				logrus.Warnf("[HEALTH] optional component degraded: %s: %s", comp.Name, comp.Message)
				continue
			}
			report.Status = health.StatusError
		}
	}

	return report
}

func (s *healthService) checkDatabase(ctx context.Context) health.Component {
	comp := health.Component{Name: "database", Status: health.StatusOk, CheckedAt: time.Now().UTC()}
	db, err := database.GetSQLDB()
	if err != nil {
		comp.Status = health.StatusError
		comp.Message = err.Error()
		return comp
	}
	if err := db.PingContext(ctx); err != nil {
		comp.Status = health.StatusError
		comp.Message = err.Error()
	}
	return comp
}

func (s *healthService) checkCache(ctx context.Context) health.Component {
	comp := health.Component{Name: "cache", Status: health.StatusOk, CheckedAt: time.Now().UTC()}
	if err := s.cache.Ping(ctx); err != nil {
		comp.Status = health.StatusError
		comp.Message = err.Error()
	}
	return comp
}
