package journalservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/api"
	"github.com/journallm/journallm/internal/api/recovery"
	"github.com/journallm/journallm/internal/chat"
	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/contextwindow"
	"github.com/journallm/journallm/internal/factory"
	"github.com/journallm/journallm/internal/health"
	"github.com/journallm/journallm/internal/llm"
	"github.com/journallm/journallm/internal/logger"
	"github.com/journallm/journallm/internal/store"
	"github.com/journallm/journallm/internal/whoop"
)

// Run starts the journal service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("journal-service")

	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env")
	}
	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("llm_backend", cfg.LLMBackend).
		Bool("whoop_configured", cfg.WhoopConfigured()).
		Msg("Journal service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, backend, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	storeChecker, svcHealth := startHealthCheckers(ctx, cfg, log, st, backend)

	// Only the store gates startup; the backend may come up later.
	if err := waitUntilHealthy(ctx, cfg, storeChecker); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	router := buildRouter(st, backend, svcHealth, cfg, log)
	server := newHTTPServer(ctx, cfg, api.CORS(api.RequestLogger(log)(router)))
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the store and backend; a missing store is fatal.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, llm.Backend, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}
	backend, err := factory.NewBackend(ctx, cfg, log)
	if err != nil {
		_ = st.Close()
		log.Error().Stack().Err(err).Msg("LLM backend unavailable")
		return nil, nil, err
	}
	return st, backend, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, backend llm.Backend, svcHealth api.ServiceHealth, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Chat and context
	windows := contextwindow.New(st.Entries(), time.Now)
	chatHandler := api.NewChatHandler(chat.NewDispatcher(windows, backend, log))
	root.HandleFunc("/api/chat/", chatHandler.HandleChat).Methods("POST")
	root.HandleFunc("/api/chat", chatHandler.HandleChat).Methods("POST")
	ctxHandler := api.NewContextHandler(windows)
	root.HandleFunc("/api/context", ctxHandler.HandleGetContext).Methods("GET")

	// WHOOP
	tokens := whoop.NewTokenStore()
	auth := api.NewWhoopAuthHandler(whoop.NewOAuth(whoop.Config{
		ClientID:     cfg.WhoopClientID,
		ClientSecret: cfg.WhoopClientSecret,
		RedirectURL:  cfg.WhoopRedirectURI,
		AuthURL:      cfg.WhoopAuthURL,
		TokenURL:     cfg.WhoopTokenURL,
		Scopes:       cfg.WhoopScopes,
	}), tokens)
	root.HandleFunc("/api/whoop/login", auth.HandleLogin).Methods("GET")
	root.HandleFunc("/api/whoop/callback", auth.HandleCallback).Methods("GET")
	root.HandleFunc("/api/whoop/refresh", auth.HandleRefresh).Methods("POST")
	root.HandleFunc("/api/whoop/status", auth.HandleStatus).Methods("GET")
	root.HandleFunc("/api/whoop/logout", auth.HandleLogout).Methods("POST")

	data := api.NewWhoopDataHandler(tokens, cfg.WhoopAPIBaseURL)
	root.HandleFunc("/api/whoop/data/profile", data.HandleProfile).Methods("GET")
	root.HandleFunc("/api/whoop/data/summary", data.HandleSummary).Methods("GET")
	root.HandleFunc("/api/whoop/data/{kind:cycles|sleep|recovery|workouts}", data.HandleCollection).Methods("GET")

	// Health
	healthHandler := api.NewHealthHandler(svcHealth)
	root.HandleFunc("/health", healthHandler.Liveness).Methods("GET")
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Frontend last so API routes win
	if api.MountFrontend(root, cfg.FrontendDir) {
		log.Info().Str("dir", cfg.FrontendDir).Msg("serving frontend")
	}
	return root
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, backend llm.Backend) (health.HealthChecker, *health.ServiceHealthChecker) {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	backendChecker := llm.NewBackendHealthChecker(backend, log, probeTimeout)
	go backendChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, backendChecker)
	go svcHealth.Start(ctx, interval)
	return storeChecker, svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// chat requests wait on the model
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 30 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 30 {
		return 30
	}
	return timeout
}

// waitUntilHealthy blocks until gate reports healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, gate health.HealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if gate.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: %s not healthy within %d seconds", gate.Name(), timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
