package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/devilmonastery/curator/internal/auth"
	"github.com/devilmonastery/curator/internal/config"
	"github.com/devilmonastery/curator/internal/domain/repositories"
	"github.com/devilmonastery/curator/internal/domain/services"
	"github.com/devilmonastery/curator/internal/infrastructure/database/postgres"
	"github.com/devilmonastery/curator/internal/pkg/idgen"
	"github.com/devilmonastery/curator/internal/pkg/logger"
	"github.com/devilmonastery/curator/internal/searchcache"
	"github.com/devilmonastery/curator/internal/upstream"
	"github.com/devilmonastery/curator/migrations"
	"github.com/devilmonastery/curator/server/internal/handlers"
	"github.com/devilmonastery/curator/server/internal/middleware"
	"github.com/devilmonastery/curator/server/internal/session"

	"github.com/gorilla/mux"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion  int
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Curator API server",
		Long:  "The HTTP API server for the Curator favorites service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, forceVersion)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	// Add logging flags
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.Flags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.Flags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	// Add subcommands
	cmd.AddCommand(newUserCommand())

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)

	return nil
}

func runServer(configPath string, forceVersion int) error {
	log := slog.Default().With("component", "server")
	log.Info("starting server initialization")

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Info("initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	// Connect to PostgreSQL with retries (for Kubernetes startup)
	pgConn, err := connectWithRetries(log, cfg.Database.Postgres.ConnectionString())
	if err != nil {
		return err
	}
	defer pgConn.Close()

	// Handle force migration if requested
	if forceVersion >= 0 {
		log.Info("force setting migration version", "version", forceVersion)
		if err := pgConn.ForceMigrationVersion(migrations.FS, forceVersion); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
		log.Info("migration version forced, exiting", "version", forceVersion)
		return nil
	}

	// Run migrations
	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pgConn.DB)
	favoriteRepo := postgres.NewFavoriteRepository(pgConn.DB)

	// Initialize JWT manager from config
	if cfg.Auth.JWT.SigningKey == "" {
		return fmt.Errorf("JWT signing key not configured")
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime)

	// Session secret - priority: env var > config file > random
	sessionSecret := loadSessionSecret(log, cfg)
	sessionMgr := session.NewManager(sessionSecret)

	// Initialize services
	userService := services.NewUserService(userRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo)

	// Catalog clients. Games and music refresh their own client-credential
	// tokens; books and movies are unauthenticated; images use a static key.
	clock := upstream.SystemClock()
	gamesTokens := upstream.NewTokenCache(upstream.ProviderGames,
		cfg.Providers.Games.ClientID, cfg.Providers.Games.ClientSecret,
		cfg.Providers.Games.TokenURL, clock)
	musicTokens := upstream.NewTokenCache(upstream.ProviderMusic,
		cfg.Providers.Music.ClientID, cfg.Providers.Music.ClientSecret,
		cfg.Providers.Music.TokenURL, clock)

	booksClient := upstream.NewBooksClient(cfg.Providers.Books.BaseURL)
	gamesClient := upstream.NewGamesClient(cfg.Providers.Games.BaseURL, cfg.Providers.Games.ClientID, gamesTokens)
	musicClient := upstream.NewMusicClient(cfg.Providers.Music.BaseURL, musicTokens)
	moviesClient := upstream.NewMoviesClient(cfg.Providers.Movies.BaseURL)
	imagesClient := upstream.NewImagesClient(cfg.Providers.Images.BaseURL, cfg.Providers.Images.AccessKey)

	// Optional Redis search cache
	var cache *searchcache.Cache
	if cfg.Redis.Addr != "" {
		cache = searchcache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, search caching disabled", "addr", cfg.Redis.Addr, "error", err)
			cache.Close()
			cache = nil
		} else {
			log.Info("search caching enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
		cancel()
	}
	defer cache.Close()

	h := handlers.New(handlers.Config{
		Users:          userService,
		Favorites:      favoriteService,
		Books:          booksClient,
		Games:          gamesClient,
		Music:          musicClient,
		Movies:         moviesClient,
		Images:         imagesClient,
		Cache:          cache,
		SessionManager: sessionMgr,
		JWTManager:     jwtManager,
		VerboseErrors:  cfg.IsLocal(),
	})

	authMw := middleware.NewAuthMiddleware(sessionMgr, jwtManager)
	router := newRouter(h, authMw, pgConn)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// newRouter wires all routes. Search and favorites sit behind the session
// auth middleware; auth, health, and metrics endpoints are open.
func newRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware, db repositories.HealthChecker) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LogRequest)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("UNAVAILABLE"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMw.RequireAuth)
	protected.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)

	protected.HandleFunc("/search/", h.PopularImages).Methods(http.MethodGet)
	protected.HandleFunc("/search/book/{name}", h.SearchBooks).Methods(http.MethodGet)
	protected.HandleFunc("/search/game", h.SearchGames).Methods(http.MethodGet)
	protected.HandleFunc("/search/music", h.SearchMusic).Methods(http.MethodGet)
	protected.HandleFunc("/search/movie", h.SearchMovies).Methods(http.MethodGet)
	protected.HandleFunc("/search/images", h.SearchImages).Methods(http.MethodGet)

	protected.HandleFunc("/favorites", h.CreateFavorite).Methods(http.MethodPost)
	protected.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	protected.HandleFunc("/favorites/check", h.CheckFavorite).Methods(http.MethodGet)
	protected.HandleFunc("/favorites/{id}", h.DeleteFavorite).Methods(http.MethodDelete)

	return router
}

// loadSessionSecret resolves the cookie-store key. A generated key means
// sessions do not survive a restart, acceptable only for local development.
func loadSessionSecret(log *slog.Logger, cfg *config.Config) []byte {
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(envSecret)
		if err == nil {
			log.Info("using session secret from environment")
			return secret
		}
		log.Warn("failed to decode SESSION_SECRET env var, trying config", slog.Any("error", err))
	}

	if cfg.Auth.SessionSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.Auth.SessionSecret)
		if err == nil {
			log.Info("using session secret from config")
			return secret
		}
		log.Warn("failed to decode session secret from config", slog.Any("error", err))
	}

	log.Warn("no session secret configured, generating random one (sessions won't persist)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return secret
}

func connectWithRetries(log *slog.Logger, connString string) (*postgres.Connection, error) {
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		conn, err := postgres.NewConnection(connString)
		if err == nil {
			log.Info("connected to PostgreSQL")
			return conn, nil
		}

		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
		}

		log.Warn("failed to connect to PostgreSQL",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err,
			"retry_delay", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	return nil, fmt.Errorf("unreachable")
}
