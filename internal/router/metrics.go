package router

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"llmrouter/pkg/types"
)

type metrics struct {
	requests  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	backendUp *prometheus.GaugeVec
	tps       prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "llmrouter",
				Subsystem: "router",
				Name:      "requests_total",
				Help:      "Backend calls made by the router",
			},
			[]string{"op", "provider", "outcome"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "llmrouter",
				Subsystem: "router",
				Name:      "fallbacks_total",
				Help:      "Requests retried on the alternate backend",
			},
			[]string{"op", "from", "to"},
		),
		backendUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "llmrouter",
				Name:      "backend_up",
				Help:      "1 if the backend answered its last health check",
			},
			[]string{"provider"},
		),
		tps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "llmrouter",
				Name:      "generation_tokens_per_second",
				Help:      "Throughput of successful generate and chat calls",
				Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160, 320},
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.fallbacks, err = register(reg, m.fallbacks); err != nil {
		return nil, err
	}
	if m.backendUp, err = register(reg, m.backendUp); err != nil {
		return nil, err
	}
	if m.tps, err = register(reg, m.tps); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an identical collector that is already
// registered so several routers can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(op string, p types.Provider, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(op, string(p), outcome).Inc()
}

func (m *metrics) fallback(op string, from, to types.Provider) {
	m.fallbacks.WithLabelValues(op, string(from), string(to)).Inc()
}

func (m *metrics) setUp(p types.Provider, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.backendUp.WithLabelValues(string(p)).Set(v)
}
