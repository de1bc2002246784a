package notify

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSent  = "sent"
	resultError = "error"
)

var sentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "infdot",
	Subsystem: "notify",
	Name:      "messages_total",
	Help:      "Notification messages by result",
}, []string{"result"})

func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(sentTotal)
}
