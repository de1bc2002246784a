package upload

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultError   = "error"
)

var (
	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "infdot",
		Subsystem: "upload",
		Name:      "requests_total",
		Help:      "Total number of upload requests by result",
	}, []string{"result"}) // result: success, failure, error

	rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "infdot",
		Subsystem: "upload",
		Name:      "rejected_total",
		Help:      "Total number of rejected uploads by the stage that rejected them",
	}, []string{"stage"})

	commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "infdot",
		Subsystem: "upload",
		Name:      "commit_duration_seconds",
		Help:      "Time spent storing an attachment",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// RegisterMetrics регистрирует метрики загрузки в реестре
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{uploadsTotal, rejectedTotal, commitDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
