package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/abhaystar2004/dynamic-form/pkg/events"
)

const metricsNamespace = "dynform"

// metrics counts domain events published by every session controller.
type metrics struct {
	events      *prometheus.CounterVec
	submissions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, sessions func() float64) (*metrics, error) {
	m := &metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Domain events published by form controllers.",
		}, []string{"type"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_total",
			Help:      "Accepted submissions by form type.",
		}, []string{"form_type"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejections_total",
			Help:      "Submissions blocked by missing required fields, by form type.",
		}, []string{"form_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sessions_active",
		Help:      "Browser sessions held in memory.",
	}, sessions)

	for _, c := range []prometheus.Collector{m.events, m.submissions, m.rejections, m.requests, active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe subscribes the counters to bus.
func (m *metrics) observe(bus *events.Bus) {
	bus.SubscribeAll(func(event events.Event) {
		m.events.WithLabelValues(event.EventType()).Inc()
		switch e := event.(type) {
		case events.FormSubmittedEvent:
			m.submissions.WithLabelValues(e.FormType).Inc()
		case events.FormRejectedEvent:
			m.rejections.WithLabelValues(e.FormType).Inc()
		}
	})
}
