package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kealys/nw-war-backend/internal/config"
	"github.com/kealys/nw-war-backend/internal/registry"
	"github.com/kealys/nw-war-backend/internal/ws"
)

func SetupRoutes(reg *registry.Registry, cfg config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/wars", CreateWar(reg, log))
	r.Get("/wars/{id}/export", ExportWar(reg))
	r.Post("/wars/{id}/unregistered", Unregistered(reg))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, cfg, log))
	return r
}
