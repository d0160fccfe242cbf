package outreach

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

type metrics struct {
	slicesTotal   *prometheus.CounterVec
	sliceDuration *prometheus.HistogramVec
	itemsTotal    *prometheus.CounterVec
	outcomesTotal *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		slicesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach_import",
			Name:      "slices_total",
			Help:      "Total number of Advance invocations.",
		}, []string{"action", "result"}),
		sliceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outreach_import",
			Name:      "slice_duration_seconds",
			Help:      "Latency of one Advance invocation.",
			Buckets: []float64{
				0.01, 0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10, 30,
			},
		}, []string{"action"}),
		itemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach_import",
			Name:      "classified_items_total",
			Help:      "Items classified during the validation phase.",
		}, []string{"status"}),
		outcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outreach_import",
			Name:      "import_outcomes_total",
			Help:      "Terminal outcomes of VALID items in the import phase.",
		}, []string{"status"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func (m *metrics) observeSlice(action domain.Action, err error, took time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.slicesTotal.WithLabelValues(string(action), result).Inc()
	m.sliceDuration.WithLabelValues(string(action)).Observe(took.Seconds())
}

func (m *metrics) observeItems(items []domain.ClassifiedItem) {
	for _, item := range items {
		m.itemsTotal.WithLabelValues(string(item.Status)).Inc()
	}
}

func (m *metrics) observeOutcome(outcome domain.ImportOutcome) {
	m.outcomesTotal.WithLabelValues(string(outcome.Status)).Inc()
}

func logrusNop() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
