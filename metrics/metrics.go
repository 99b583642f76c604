// ABOUTME: Prometheus counters for document writes, cell loads and persists, and HTTP requests.
// ABOUTME: Recorder satisfies the workspace and cell recorder interfaces.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/2389-research/plaintext/cell"
)

// Recorder holds the counters registered on one registry.
type Recorder struct {
	writes   prometheus.Counter
	persists *prometheus.CounterVec
	loads    *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plaintext_writes_total",
			Help: "Total number of document writes.",
		}),
		persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaintext_persists_total",
				Help: "Total number of persist attempts by storage key and result.",
			},
			[]string{"key", "result"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaintext_load_total",
				Help: "Total number of initial loads by storage key and resulting status.",
			},
			[]string{"key", "status"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{r.writes, r.persists, r.loads, r.requests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveWrite() {
	r.writes.Inc()
}

func (r *Recorder) ObservePersist(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.persists.WithLabelValues(key, result).Inc()
}

func (r *Recorder) ObserveLoad(key string, status cell.LoadStatus) {
	r.loads.WithLabelValues(key, status.String()).Inc()
}

// ObserveRequest counts one HTTP request. path should be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(method, path string, status int) {
	r.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
