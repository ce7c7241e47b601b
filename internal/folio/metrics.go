package folio

import (
	"time"

	"github.com/aisa-it/folio/internal/folio/drafts"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "folio"

// saveMetrics считает итоги сохранения черновиков по виду ресурса и исходу.
type saveMetrics struct {
	saves *prometheus.CounterVec
}

func newSaveMetrics() *saveMetrics {
	return &saveMetrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "draft_saves_total",
			Help:      "Draft save outcomes",
		}, []string{"kind", "outcome"}),
	}
}

func (m *saveMetrics) Notify(o drafts.Outcome) {
	m.saves.WithLabelValues(string(o.Resource), string(o.Kind)).Inc()
}

func (m *saveMetrics) collectors() []prometheus.Collector {
	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	return []prometheus.Collector{bootTimeGauge, m.saves}
}
