package observability

import (
	"context"

	"github.com/aretw0/implicate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsTracer counts lookups and implicator outcomes.
type MetricsTracer struct {
	lookups  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	cycles   prometheus.Counter
}

// NewMetricsTracer creates the collectors and registers them with reg.
func NewMetricsTracer(reg prometheus.Registerer) (*MetricsTracer, error) {
	m := &MetricsTracer{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "implicate_lookups_total",
				Help: "Total number of attribute lookups by value source",
			},
			[]string{"type", "source"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "implicate_implicator_outcomes_total",
				Help: "Implicator attempts by outcome",
			},
			[]string{"implicator", "outcome"},
		),
		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "implicate_cycles_total",
				Help: "Lookups cut short because the type was already being resolved",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.lookups, m.outcomes, m.cycles} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MetricsTracer) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	switch event {
	case domain.EventGetReturned:
		m.lookups.WithLabelValues(attrs.Type, string(attrs.Source)).Inc()
	case domain.EventImplicatorApplied:
		m.outcomes.WithLabelValues(attrs.Implicator, "applied").Inc()
	case domain.EventImplicatorNotApplicable:
		m.outcomes.WithLabelValues(attrs.Implicator, "not_applicable").Inc()
	case domain.EventCycle:
		m.cycles.Inc()
	}
}
