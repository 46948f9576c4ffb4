package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/sequence-draw-backend/api/routes"
	"github.com/ArowuTest/sequence-draw-backend/internal/config"
	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/handlers"
	"github.com/ArowuTest/sequence-draw-backend/internal/metrics"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/sequence-draw-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/ArowuTest/sequence-draw-backend/pkg/broadcast"
	"github.com/ArowuTest/sequence-draw-backend/pkg/jwt"
	"github.com/ArowuTest/sequence-draw-backend/pkg/mongodb"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	var store repositories.Store
	var healthCheck func(c *gin.Context) error
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		slog.Warn("Using in-memory storage, state is lost on restart")
		store = memory.NewMemoryStore()
	default:
		mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.ConnectTimeout)
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(ctx); err != nil {
				slog.Error("Error disconnecting from MongoDB", "error", err)
			}
		}()
		mongoStore := mongorepo.NewStore(mongoClient.Database())
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			slog.Error("Failed to create MongoDB indexes", "error", err)
			os.Exit(1)
		}
		store = mongoStore
		healthCheck = func(c *gin.Context) error {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			return mongoClient.Ping(ctx)
		}
		slog.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	}

	drawEngine, err := engine.New(store, engine.Settings{
		SequenceLength:       cfg.Draw.SequenceLength,
		Alphabet:             cfg.Draw.Alphabet,
		DefaultCapacityLimit: cfg.Draw.CapacityLimit,
		DefaultWinnerCount:   cfg.Draw.WinnerCount,
	})
	if err != nil {
		slog.Error("Failed to create draw engine", "error", err)
		os.Exit(1)
	}
	if err := drawEngine.Load(ctx); err != nil {
		slog.Error("Failed to load draw state", "error", err)
		os.Exit(1)
	}
	snap := drawEngine.Snapshot()
	slog.Info("Draw state loaded", "participants", len(snap.Participants), "draws", len(snap.History),
		"capacityLimit", snap.Config.CapacityLimit, "winnerCount", snap.Config.WinnerCount)

	m := metrics.New()
	hub := broadcast.NewHub(
		broadcast.WithCheckOrigin(originChecker(cfg.Server.AllowedHosts)),
		broadcast.WithClientCountHook(m.SetWebsocketClients),
	)
	defer hub.Close()

	tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	authService, err := services.NewAuthService(cfg.Admin, tokens)
	if err != nil {
		slog.Error("Failed to set up operator authentication", "error", err)
		os.Exit(1)
	}
	drawService := services.NewDrawService(drawEngine, hub, m)

	handlerDeps := routes.HandlerDependencies{
		ParticipantHandler: handlers.NewParticipantHandler(drawService),
		DrawHandler:        handlers.NewDrawHandler(drawService),
		ConfigHandler:      handlers.NewConfigHandler(drawService),
		AuthHandler:        handlers.NewAuthHandler(authService),
		WebSocketHandler:   handlers.NewWebSocketHandler(hub, drawService),
		TokenService:       tokens,
		Metrics:            m,
		HealthCheck:        healthCheck,
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}

// originChecker allows websocket upgrades from the configured origins, or
// from anywhere when the list contains "*". Requests without an Origin
// header are not browser requests and are allowed.
func originChecker(allowedHosts []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		allowed[h] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
