package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/gatekeeper-bot/internal/access"
	"github.com/Proton-105/gatekeeper-bot/internal/bot"
	errors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/internal/health"
	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/idempotency"
	"github.com/Proton-105/gatekeeper-bot/internal/lifecycle"
	"github.com/Proton-105/gatekeeper-bot/internal/middleware"
	"github.com/Proton-105/gatekeeper-bot/internal/ratelimit"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
	"github.com/Proton-105/gatekeeper-bot/pkg/config"
	"github.com/Proton-105/gatekeeper-bot/pkg/graceful"
	"github.com/Proton-105/gatekeeper-bot/pkg/logger"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
	redisclient "github.com/Proton-105/gatekeeper-bot/pkg/redis"
)

const (
	cleanupInterval = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

// newBot is swapped in tests.
var newBot = bot.New

func main() {
	os.Exit(run())
}

func run() int {
	startedAt := time.Now()

	ctx, stop := lifecycle.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultOptions())
	if err != nil {
		appErr := errors.NewConfigError(err)
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("code", appErr.Code),
			slog.Any("error", appErr),
		)
		return 1
	}

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			return 1
		}
		defer sentry.Flush(2 * time.Second)
	}

	log, logCloser, err := logger.New(cfg.Log, logger.Options{Sentry: cfg.Sentry.Enabled()})
	if err != nil {
		slog.Error("failed to build logger", slog.Any("error", err))
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("starting bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("language", cfg.Bot.Language),
		slog.Int("allowed_users", cfg.AllowList.Len()),
	)
	if cfg.AllowList.Len() == 0 {
		log.Warn("allow-list is empty, every update will be denied")
	}

	translations, err := i18n.Load(cfg.Bot.Language)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		return 1
	}

	shutdown := lifecycle.NewShutdown(log)
	var workers sync.WaitGroup
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	shutdown.Register("workers", func(context.Context) error {
		stopWorkers()
		workers.Wait()
		return nil
	})

	var rdb *redisclient.Client
	if cfg.Redis.Enabled() {
		rdb, err = redisclient.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
			stopWorkers()
			return 1
		}
		shutdown.Register("redis", func(context.Context) error {
			workers.Wait()
			return rdb.Close()
		})
		log.Info("redis connected", slog.String("addr", cfg.Redis.Addr))
	}

	var store idempotency.Store = idempotency.NewMemoryStore()
	if rdb != nil {
		store = idempotency.NewRedisStore(rdb.Client, log)
	}
	cleaner := idempotency.NewCleaner(store, log, cleanupInterval, cfg.Idempotency.TTL+idempotency.DefaultLockTTL)
	spawn(&workers, func() { cleaner.Run(workersCtx) })

	var limiter ratelimit.Limiter
	if rules := ratelimit.NewRules(cfg.RateLimit); rules.Enabled() {
		local := ratelimit.NewMemoryLimiter(rules)
		limiter = local
		if rdb != nil {
			local = ratelimit.NewMemoryLimiter(rules.Halved())
			limiter = ratelimit.NewFallbackLimiter(ratelimit.NewRedisLimiter(rdb.Client, rules), local, log)
		}
		limitCleaner := ratelimit.NewCleaner(local, log, cleanupInterval)
		spawn(&workers, func() { limitCleaner.Run(workersCtx) })
	}

	tr := translations.Default()
	b, err := newBot(cfg.Bot, bot.Deps{
		Log:            log,
		Translator:     tr,
		Filter:         access.NewFilter(cfg.AllowList, log),
		Reporter:       status.NewReporter(startedAt, cfg.AppEnv),
		ErrHandler:     errors.NewHandler(log, cfg.Sentry.Enabled()),
		Idempotency:    idempotency.NewManager(store, log),
		IdempotencyTTL: cfg.Idempotency.TTL,
		Limiter:        limiter,
	})
	if err != nil {
		log.Error("failed to start bot", slog.Any("error", err))
		runShutdown(shutdown, log)
		return 1
	}

	identity := b.Identity()
	log.Info("bot identity", slog.String("bot", identity.String()))
	metrics.SetBotInfo(identity.Username, cfg.AppEnv)
	metrics.SetAllowListSize(cfg.AllowList.Len())

	if cfg.Metrics.Enabled {
		checker := health.NewChecker(log)
		checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
		if rdb != nil {
			checker.AddCheck("redis", rdb)
		}

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		lifecycle.NewProbes(checker, log).Register(mux)

		srv := graceful.NewServer(log, cfg.Metrics.Addr, logger.Middleware(middleware.New(log)(mux)), cfg.Metrics.ShutdownTimeout)
		spawn(&workers, func() {
			if err := srv.ListenAndServe(workersCtx); err != nil {
				log.Error("metrics server stopped", slog.Any("error", err))
			}
		})
	}

	if err := lifecycle.NewRunner(log).Run(ctx, b); err != nil {
		log.Error("bot stopped unexpectedly", slog.Any("error", err))
		runShutdown(shutdown, log)
		return 1
	}

	runShutdown(shutdown, log)
	return 0
}

func spawn(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}

func runShutdown(s *lifecycle.Shutdown, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Execute(ctx); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
	}
}
