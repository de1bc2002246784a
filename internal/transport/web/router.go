package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/infdot-upload/internal/docs"
	"github.com/EgorLis/infdot-upload/internal/transport/web/mw"
	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/health"
	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/upload"
)

func newRouter(hh *health.Handler, uh *upload.Handler, metrics prometheus.Gatherer, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /v1/readyz", hh.Readiness)

	// upload (лимит тела: внутри хендлера)
	mux.HandleFunc("POST /v1/upload", uh.Upload)

	// metrics
	if metrics == nil {
		metrics = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mw.WithRequestID(mw.Logging(logger)(mux))
}
