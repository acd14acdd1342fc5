package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
)

// MetricsReportJob periodically logs request, upstream and cache metrics
type MetricsReportJob struct {
	Registry *shared.MetricsRegistry
	Cache    *services.CacheService
}

func NewMetricsReportJob(registry *shared.MetricsRegistry, cache *services.CacheService) *MetricsReportJob {
	return &MetricsReportJob{Registry: registry, Cache: cache}
}

func (j *MetricsReportJob) Run() {
	logger := logrus.WithField("component", "MetricsReportJob")
	logger.Debug("Starting metrics report")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if j.Cache != nil {
		metrics := j.Cache.Metrics()
		logger.WithFields(logrus.Fields{
			"backend":              j.Cache.Backend(),
			"status":               j.Cache.Status(ctx),
			"cache_hits":           metrics.Counter(shared.MetricCacheHits),
			"cache_misses":         metrics.Counter(shared.MetricCacheMisses),
			"cache_read_failures":  metrics.Counter(shared.MetricCacheReadFailures),
			"cache_write_failures": metrics.Counter(shared.MetricCacheWriteFailures),
		}).Info("Cache metrics")
	}

	j.Registry.LogAll()
	logger.Debug("Metrics report completed")
}

// Start runs the report every interval until ctx is cancelled
func (j *MetricsReportJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run()
		}
	}
}
