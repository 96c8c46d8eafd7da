// Package instrumented wraps repositories with Prometheus metrics and debug logging.
package instrumented

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/microblog/internal/domain"
	"github.com/kailas-cloud/microblog/internal/logger"
	"github.com/kailas-cloud/microblog/internal/metrics"
)

// Entity labels.
const (
	EntityPost   = "post"
	EntityRating = "rating"
)

type recorder struct {
	backend string
	entity  string
}

// observe records one finished storage call. n < 0 means no result size.
func (r recorder) observe(ctx context.Context, op string, start time.Time, n int, err error) {
	elapsed := time.Since(start)
	status := statusOf(err)

	metrics.StoreOperationsTotal.WithLabelValues(r.backend, r.entity, op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(r.backend, r.entity, op).Observe(elapsed.Seconds())
	if n >= 0 && err == nil {
		metrics.StoreResultSize.WithLabelValues(r.backend, r.entity, op).Observe(float64(n))
	}

	fields := []zap.Field{
		zap.String("backend", r.backend),
		zap.String("entity", r.entity),
		zap.String("op", op),
		zap.String("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if n >= 0 {
		fields = append(fields, zap.Int("results", n))
	}
	if status == metrics.StatusError {
		logger.FromContext(ctx).Warn("store operation failed", append(fields, zap.Error(err))...)
		return
	}
	logger.FromContext(ctx).Debug("store operation", fields...)
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, domain.ErrNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		return metrics.StatusInvalid
	default:
		return metrics.StatusError
	}
}
