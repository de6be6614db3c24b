package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/lexilens/internal/config"
	"github.com/heartmarshall/lexilens/internal/coordinator"
	"github.com/heartmarshall/lexilens/internal/transport/middleware"
	"github.com/heartmarshall/lexilens/internal/transport/rest"
	"github.com/heartmarshall/lexilens/internal/transport/ws"
)

type routes struct {
	messages *rest.MessageHandler
	wordbook *rest.WordbookHandler
	health   *rest.HealthHandler
	hub      *ws.Hub
	coord    *coordinator.Coordinator
	limiter  *middleware.RateLimiter
}

// newRouter registers every daemon route. Page-facing writes are rate
// limited per tab; the sockets and health probes are not.
func newRouter(cfg *config.Config, logger *slog.Logger, rt routes) http.Handler {
	limited := rt.limiter.Limit(cfg.RateLimit.SelectionsPerMinute, cfg.RateLimit.Burst)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", rt.health.Live)
	mux.HandleFunc("GET /ready", rt.health.Ready)
	mux.HandleFunc("GET /health", rt.health.Health)

	mux.Handle("POST /v1/selections", limited(http.HandlerFunc(rt.messages.ReportSelection)))
	mux.Handle("POST /v1/commands", limited(http.HandlerFunc(rt.messages.TriggerCommand)))
	mux.Handle("POST /v1/messages", limited(http.HandlerFunc(rt.messages.Dispatch)))
	mux.HandleFunc("POST /v1/tabs/{id}/focus", rt.messages.FocusTab)
	mux.HandleFunc("GET /v1/surface/open", rt.messages.SurfaceOpen)
	mux.HandleFunc("GET /v1/surface/last-selection", rt.messages.LastSelection)

	mux.HandleFunc("GET /v1/wordbook", rt.wordbook.List)
	mux.HandleFunc("GET /v1/wordbook/{word}", rt.wordbook.Get)
	mux.HandleFunc("PUT /v1/wordbook/{word}/favorite", rt.wordbook.SetFavorite)
	mux.HandleFunc("GET /v1/history", rt.wordbook.History)

	mux.HandleFunc("GET /v1/surface/ws", rt.hub.ServeSurface(rt.coord))
	mux.HandleFunc("GET /v1/host/ws", rt.hub.ServeHost(rt.coord))

	var cors middleware.Middleware
	if cfg.CORS.AllowedOrigins != "" {
		cors = middleware.CORS(cfg.CORS)
	}

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		cors,
		middleware.TabID(),
	)(mux)
}
