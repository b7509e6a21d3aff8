package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/infra/file"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/infra/postgres"
	redisinfra "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/infra/sqlite"
	"adaptive-quiz-service/internal/keepalive"
	"adaptive-quiz-service/internal/logging"
	"adaptive-quiz-service/internal/metrics"
	transport "adaptive-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

// backends holds the storage wired from config and the handles to close.
type backends struct {
	sessions app.SessionRepository
	pools    app.PoolRepository
	history  app.HistoryRepository
	users    app.UserRepository
	closers  []io.Closer
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func buildBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, redisClient)
	}

	var db *bun.DB
	if cfg.Postgres.URL != "" {
		db = postgres.OpenDB(cfg.Postgres.URL)
		b.closers = append(b.closers, db)
	}

	var loader memory.PoolLoader = file.NewDirPoolLoader(cfg.Questions.Dir)
	if cfg.Questions.Source == config.QuestionsPostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, closerFunc(func() error { pool.Close(); return nil }))
		loader = postgres.NewPoolLoader(pool)
	}

	poolTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, 30*time.Minute)
	if redisClient != nil {
		b.pools = redisinfra.NewPoolRepository(redisClient, loader, poolTTL)
		b.sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		b.pools = memory.NewPoolRepository(loader, poolTTL)
		b.sessions = memory.NewSessionStore(sessionTTL)
	}

	switch cfg.History.Driver {
	case config.HistoryPostgres:
		b.history = postgres.NewHistoryStore(db)
	case config.HistorySQLite:
		store, err := sqlite.NewHistoryStore(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, store)
		b.history = store
	default:
		b.history = memory.NewHistoryStore()
	}

	if db != nil {
		b.users = postgres.NewUserStore(db)
	} else {
		b.users = memory.NewUserStore()
	}

	logger.Info("storage configured",
		zap.String("questions", cfg.Questions.Source),
		zap.String("history", cfg.History.Driver),
		zap.Bool("redis", redisClient != nil))
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	rec := metrics.New()
	opts := []app.Option{app.WithLogger(logger), app.WithMetrics(rec)}
	quiz := app.NewQuizService(b.sessions, b.pools, b.history, opts...)
	history := app.NewHistoryService(b.history, opts...)
	users := app.NewUserService(b.users, opts...)

	deps := transport.RouterDeps{
		Sessions: transport.NewSessionHandler(quiz, logger),
		History:  transport.NewHistoryHandler(history, logger),
		Users:    transport.NewUserHandler(users, logger),
		WS:       transport.NewWSHandler(quiz, logger),
		Auth:     transport.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Metrics:  rec,
		Logger:   logger,
	}
	if cfg.RateLimit.RPS > 0 {
		deps.Limiter = transport.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwtSecret not set; trusting X-User-ID header")
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.KeepAlive.URL != "" {
		interval := config.TTLDuration(cfg.KeepAlive.Interval, keepalive.DefaultInterval)
		go keepalive.NewPinger(cfg.KeepAlive.URL, interval, logger).Run(runCtx)
	}

	go func() {
		logger.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-runCtx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}
