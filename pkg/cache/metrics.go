package cache

import (
	"context"

	"github.com/mess-ledger/backend/internal/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts lookups and invalidations of a Cache.
type Instrumented struct {
	Cache
	lookups       *prometheus.CounterVec
	invalidations prometheus.Counter
}

// WithMetrics wraps the cache and registers its counters with the registerer.
func WithMetrics(c Cache, reg prometheus.Registerer) (*Instrumented, error) {
	i := &Instrumented{
		Cache: c,
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Number of report cache lookups, partitioned by report and result.",
			},
			[]string{"report", "result"},
		),
		invalidations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_invalidations_total",
				Help: "Number of month invalidations of the report cache.",
			},
		),
	}

	for _, collector := range []prometheus.Collector{i.lookups, i.invalidations} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return i, nil
}

func (i *Instrumented) Get(ctx context.Context, key string, dest any) (bool, error) {
	ok, err := i.Cache.Get(ctx, key, dest)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	i.lookups.WithLabelValues(Report(key), result).Inc()

	return ok, err
}

func (i *Instrumented) Invalidate(ctx context.Context, month types.Month) error {
	i.invalidations.Inc()
	return i.Cache.Invalidate(ctx, month)
}
