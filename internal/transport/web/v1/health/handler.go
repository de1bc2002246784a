package health

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/transport/web/logx"
	"github.com/EgorLis/infdot-upload/internal/transport/web/mw"
	v1 "github.com/EgorLis/infdot-upload/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     zerolog.Logger
	DB      Pinger
	Cache   Pinger
	Storage Pinger
}

type Status struct {
	Status    string `json:"status"`
	Component string `json:"component,omitempty"`
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от БД/кэша)
// @Tags         health
// @Produce      json
// @Success      200  {object}  health.Status
// @Router       /v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	v1.WriteJSON(w, r, http.StatusOK, Status{Status: "ok"})
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности сервиса (пинг БД, Redis и S3)
// @Tags         health
// @Produce      json
// @Success      200  {object}  health.Status
// @Failure      503  {object}  health.Status
// @Router       /v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		p    Pinger
	}{
		{"db", h.DB},
		{"cache", h.Cache},
		{"storage", h.Storage},
	}
	for _, c := range checks {
		if c.p == nil {
			continue
		}
		if err := c.p.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, c.name+" ping failed", err)
			v1.WriteJSON(w, r, http.StatusServiceUnavailable, Status{Status: "unavailable", Component: c.name})
			return
		}
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteJSON(w, r, http.StatusOK, Status{Status: "ready"})
}
