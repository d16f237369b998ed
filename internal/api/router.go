package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tourneybot/internal/api/handler"
	"github.com/mcoot/tourneybot/internal/api/middleware"
	"github.com/mcoot/tourneybot/internal/api/response"
	"github.com/mcoot/tourneybot/internal/metrics"
	"github.com/mcoot/tourneybot/internal/services/auth"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Dialogue    handler.Dialogue
	Snapshotter handler.Snapshotter
	Snapshots   handler.SnapshotLister
	// Metrics is optional; when set, requests are counted and /metrics is served
	Metrics *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	conversationHandler := handler.NewConversationHandler(cfg.Dialogue)
	snapshotHandler := handler.NewSnapshotHandler(cfg.Snapshotter, cfg.Snapshots)

	adminMiddleware := middleware.AdminAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/snapshots", snapshotHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/snapshots", snapshotHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/conversations/{user_id}/events", conversationHandler.PostEvent).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
