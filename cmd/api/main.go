package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/petmoji/internal/application"
	appaudit "github.com/bryanwahyu/petmoji/internal/application/audit"
	apppetmoji "github.com/bryanwahyu/petmoji/internal/application/petmoji"
	"github.com/bryanwahyu/petmoji/internal/application/session"
	"github.com/bryanwahyu/petmoji/internal/config"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/prompt"
	"github.com/bryanwahyu/petmoji/internal/infra/httpserver"
	"github.com/bryanwahyu/petmoji/internal/logging"
	"github.com/bryanwahyu/petmoji/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := newAIClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ai client: %w", err)
	}
	p, err := prompt.Lookup(cfg.AI.PromptVersion)
	if err != nil {
		return err
	}

	checkers := map[string]middleware.HealthChecker{}

	deps, err := openStores(ctx, cfg, logger, checkers)
	if err != nil {
		return err
	}
	defer deps.Close()

	opts := []apppetmoji.Option{apppetmoji.WithTimeout(cfg.AI.Timeout)}
	var auditSvc *appaudit.Service
	if deps.audit != nil {
		opts = append(opts, apppetmoji.WithAudit(deps.audit))
		auditSvc = appaudit.NewService(deps.audit)
	}
	if deps.archive != nil {
		opts = append(opts, apppetmoji.WithArchive(deps.archive))
	}
	svc := apppetmoji.NewService(client, p, logger.Named("analyzer"), opts...)

	page, err := cfg.PageURL()
	if err != nil {
		return err
	}
	store := session.NewStore(cfg.Session.IdleTTL, application.SystemClock{})
	ctrl := session.NewController(svc, store, page, application.SystemClock{}, logger.Named("session"))
	middleware.SetSessionGauge(store.Len)

	var ready atomic.Bool
	handler := httpserver.NewRouter(ctrl, auditSvc, logger.Named("http"), httpserver.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminKeys:      cfg.Admin.APIKeys,
		Limiter:        middleware.NewRateLimiter(ctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate),
		Checkers:       checkers,
		Ready:          &ready,
		SecureCookies:  page.Scheme == "https",
		CookieMaxAge:   cfg.Session.IdleTTL,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("provider", client.Name()),
			zap.String("model", client.Model()),
			zap.String("prompt_version", p.Version),
			zap.String("audit", cfg.Audit.Driver),
		)
		ready.Store(true)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		ready.Store(false)
		logger.Info("shutting down server...")

		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
