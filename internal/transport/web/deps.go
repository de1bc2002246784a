package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/health"
	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/upload"
)

// Deps: всё, что нужно серверу от приложения
type Deps struct {
	Uploader upload.Uploader
	DB       health.Pinger
	Cache    health.Pinger
	Storage  health.Pinger
	Metrics  prometheus.Gatherer
}
