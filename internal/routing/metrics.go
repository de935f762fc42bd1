package routing

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-kad/pkg/types"
)

const (
	metricsNamespace = "kad"
	metricsSubsystem = "routing"
)

// Metrics 路由表 Prometheus 指标
//
// 所有方法对 nil 接收者安全，未配置指标时直接跳过。
type Metrics struct {
	contacts  prometheus.Gauge
	buckets   prometheus.Gauge
	observes  *prometheus.CounterVec
	evictions prometheus.Counter
	closest   prometheus.Histogram
}

// NewMetrics 创建并注册路由表指标
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		contacts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "contacts",
			Help:      "Number of contacts held in k-buckets.",
		}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "buckets",
			Help:      "Number of k-buckets created so far.",
		}),
		observes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "observes_total",
			Help:      "Observed contacts by outcome.",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "evictions_total",
			Help:      "Stale contacts replaced after a failed liveness check.",
		}),
		closest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "closest_results",
			Help:      "Number of contacts returned by closest-node queries.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 20, 32, 64},
		}),
	}

	for _, c := range []prometheus.Collector{m.contacts, m.buckets, m.observes, m.evictions, m.closest} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) setContacts(n int) {
	if m == nil {
		return
	}
	m.contacts.Set(float64(n))
}

func (m *Metrics) bucketCreated() {
	if m == nil {
		return
	}
	m.buckets.Inc()
}

func (m *Metrics) observed(res types.ObserveResult) {
	if m == nil {
		return
	}
	m.observes.WithLabelValues(res.String()).Inc()
}

func (m *Metrics) evicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) closestServed(n int) {
	if m == nil {
		return
	}
	m.closest.Observe(float64(n))
}
