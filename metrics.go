package poolshell

import "github.com/prometheus/client_golang/prometheus"

// metricSet is the pool's Prometheus instrumentation, supplementing
// PSPPool's plain getPoolStats() log line with scrapeable gauges. A
// Pool registers its own metricSet so that multiple pools in one
// process don't collide on label-free metric names.
type metricSet struct {
	registry   *prometheus.Registry
	allShells  prometheus.Gauge
	readyGauge prometheus.Gauge
	executing  prometheus.Gauge
	queueDepth prometheus.Gauge
	submitted  prometheus.Counter
	completed  prometheus.Counter
	failed     prometheus.Counter
}

func newMetricSet() *metricSet {
	reg := prometheus.NewRegistry()
	ms := &metricSet{
		registry: reg,
		allShells: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolshell_all_shells",
			Help: "Number of live shells known to the pool.",
		}),
		readyGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolshell_ready_shells",
			Help: "Number of shells currently ready to accept a submission.",
		}),
		executing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolshell_executing_submissions",
			Help: "Number of submissions currently executing.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolshell_queue_depth",
			Help: "Number of submissions waiting for a shell.",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolshell_submissions_total",
			Help: "Total submissions accepted by Submit.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolshell_submissions_completed_total",
			Help: "Total submissions that finished without error.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolshell_submissions_failed_total",
			Help: "Total submissions that finished with an error.",
		}),
	}
	reg.MustRegister(ms.allShells, ms.readyGauge, ms.executing, ms.queueDepth,
		ms.submitted, ms.completed, ms.failed)
	return ms
}

// Registry exposes the pool's metric registry so a caller can wire it
// into an HTTP /metrics handler of their own.
func (p *Pool) Registry() *prometheus.Registry { return p.metrics.registry }
