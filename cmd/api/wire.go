package main

import (
	"context"
	"database/sql"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bryanwahyu/petmoji/internal/config"
	"github.com/bryanwahyu/petmoji/internal/domain/ai"
	"github.com/bryanwahyu/petmoji/internal/domain/audit"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/fixture"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/gemini"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/openai"
	"github.com/bryanwahyu/petmoji/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/petmoji/internal/infra/db/mysql"
	"github.com/bryanwahyu/petmoji/internal/infra/db/postgres"
	minioStore "github.com/bryanwahyu/petmoji/internal/infra/storage"
	"github.com/bryanwahyu/petmoji/internal/middleware"
)

func newAIClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	switch cfg.AI.Provider {
	case "openai":
		oc := goopenai.DefaultConfig(cfg.AI.APIKey)
		if cfg.AI.BaseURL != "" {
			oc.BaseURL = cfg.AI.BaseURL
		}
		return openai.NewClientWithConfig(oc, cfg.AI.Model), nil
	case "gemini":
		return gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	case "fixture":
		return fixture.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

type schemaRepository interface {
	audit.Repository
	EnsureSchema(ctx context.Context) error
}

// stores holds the optional persistence backends
type stores struct {
	db      *sql.DB
	audit   audit.Repository
	archive *minioStore.Store
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger, checkers map[string]middleware.HealthChecker) (*stores, error) {
	s := &stores{}

	var repo schemaRepository
	switch cfg.Audit.Driver {
	case "none":
	case "memory":
		s.audit = memory.NewAuditRepository(cfg.Audit.MemoryMaxRecords)
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		s.db = db
		repo = mysqlp.NewAuditRepository(db)
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		s.db = db
		repo = postgres.NewAuditRepository(db)
	}
	if repo != nil {
		if err := repo.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		s.audit = repo
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: s.db}
	}

	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		s.archive = store
		checkers["photo_archive"] = middleware.CheckerFunc(store.Ping)
	}

	logger.Debug("stores ready",
		zap.String("audit_driver", cfg.Audit.Driver),
		zap.Bool("photo_archive", s.archive != nil),
	)
	return s, nil
}
