package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/metrics"
)

// InstrumentedStore wraps a Store with metrics and debug logging. The
// engine issues one sub-query per facet, so per-op counters are the
// cheapest way to see fan-out amplification in production.
type InstrumentedStore struct {
	inner  Store
	logger *zap.Logger
}

// NewInstrumentedStore wraps a store with observability.
func NewInstrumentedStore(inner Store, logger *zap.Logger) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, logger: logger}
}

// FindMatching delegates to the inner store and records the outcome.
func (s *InstrumentedStore) FindMatching(
	ctx context.Context, constraints []filter.Constraint, includeInactive bool,
) ([]listing.ID, error) {
	start := time.Now()
	ids, err := s.inner.FindMatching(ctx, constraints, includeInactive)
	duration := time.Since(start)

	metrics.StoreOpDuration.WithLabelValues("find_matching").Observe(duration.Seconds())
	if err != nil {
		metrics.StoreOpsTotal.WithLabelValues("find_matching", "error").Inc()
		s.logger.Error("store match failed",
			zap.Int("constraints", len(constraints)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.StoreOpsTotal.WithLabelValues("find_matching", "ok").Inc()

	s.logger.Debug("store match completed",
		zap.Int("constraints", len(constraints)),
		zap.Int("matches", len(ids)),
		zap.Duration("duration", duration),
	)
	return ids, nil
}

// GetAttributes delegates to the inner store and records the outcome.
func (s *InstrumentedStore) GetAttributes(
	ctx context.Context, ids []listing.ID, keys []listing.Key,
) (map[listing.ID]*listing.Record, error) {
	start := time.Now()
	records, err := s.inner.GetAttributes(ctx, ids, keys)
	duration := time.Since(start)

	metrics.StoreOpDuration.WithLabelValues("get_attributes").Observe(duration.Seconds())
	if err != nil {
		metrics.StoreOpsTotal.WithLabelValues("get_attributes", "error").Inc()
		s.logger.Error("store attribute fetch failed",
			zap.Int("ids", len(ids)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.StoreOpsTotal.WithLabelValues("get_attributes", "ok").Inc()

	s.logger.Debug("store attribute fetch completed",
		zap.Int("ids", len(ids)),
		zap.Int("found", len(records)),
		zap.Duration("duration", duration),
	)
	return records, nil
}
