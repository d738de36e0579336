package main

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/logger"
	"alfredoptarigan/screenly/internal/repositories"
	"alfredoptarigan/screenly/internal/services"
)

// deps holds everything the commands share.
type deps struct {
	cfg      *config.Config
	db       *gorm.DB
	appRepo  repositories.ApplicationRepository
	evalRepo repositories.EvaluationRepository
	jobRepo  repositories.JobRepository
	gemini   services.GeminiService
	index    services.ProfileIndex       // nil unless Qdrant is enabled
	sheet    services.SpreadsheetBackend // nil unless a spreadsheet is configured
	pipeline services.PipelineService
}

func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.InitSlog(cfg.Logging.Level)
	slog.Info("✅ Config loaded successfully", "env", cfg.Server.Env)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	d := &deps{
		cfg:      cfg,
		db:       db,
		appRepo:  repositories.NewApplicationRepository(db),
		evalRepo: repositories.NewEvaluationRepository(db),
		jobRepo:  repositories.NewJobRepository(db),
	}
	slog.Info("✅ Repositories initialized successfully")

	d.gemini, err = services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	slog.Info("✅ Gemini AI initialized successfully", "model", cfg.Gemini.Model, "backend", cfg.Gemini.Backend)

	if cfg.Qdrant.Enabled {
		d.index, err = services.NewQdrantService(cfg.Qdrant)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
		}
		if err := d.index.InitCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
		}
		slog.Info("✅ Qdrant initialized successfully", "collection", cfg.Qdrant.Collection)
	}

	d.sheet, err = newSpreadsheet(ctx, cfg.Spreadsheet)
	if err != nil {
		return nil, err
	}

	timeout := cfg.ExternalCallTimeout
	d.pipeline = services.NewPipelineService(
		d.appRepo,
		d.evalRepo,
		services.NewFieldExtractor(d.gemini, timeout),
		services.NewSummarizer(d.gemini, timeout),
		services.NewScorer(d.gemini, timeout),
		services.NewProfileChain(timeout, d.resolvers()...),
		d.sheet,
		timeout,
	)
	slog.Info("✅ Pipeline initialized")

	return d, nil
}

// resolvers lists the profile sources in lookup order. Optional backends
// join the chain only when configured.
func (d *deps) resolvers() []services.ProfileResolver {
	resolvers := []services.ProfileResolver{
		services.NewJobProfileResolver(d.jobRepo),
		services.NewRoleProfileResolver(d.jobRepo),
	}
	if d.sheet != nil {
		resolvers = append(resolvers, services.NewSpreadsheetProfileResolver(d.sheet))
	}
	if d.index != nil {
		resolvers = append(resolvers, services.NewSemanticProfileResolver(d.gemini, d.index, d.cfg.Qdrant.MinScore))
	}
	return resolvers
}

func (d *deps) close() {
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newSpreadsheet(ctx context.Context, cfg config.SpreadsheetConfig) (services.SpreadsheetBackend, error) {
	switch cfg.Backend {
	case "sheets":
		sheet, err := services.NewSheetsSpreadsheet(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets: %w", err)
		}
		slog.Info("✅ Google Sheets initialized successfully")
		return sheet, nil
	case "xlsx":
		slog.Info("✅ Workbook export enabled", "path", cfg.WorkbookPath)
		return services.NewXLSXSpreadsheet(cfg), nil
	default:
		slog.Warn("⚠️ No spreadsheet backend configured, export disabled")
		return nil, nil
	}
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (services.DocumentStorage, error) {
	if cfg.Backend == "minio" {
		minio, err := services.NewMinioStorage(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		slog.Info("✅ MinIO storage initialized", "bucket", cfg.MinioBucket)
		return services.NewRetryStorage(minio, cfg.RetryAttempts, cfg.RetryDelay), nil
	}

	storage, err := services.NewLocalStorage(cfg.UploadPath)
	if err != nil {
		return nil, err
	}
	slog.Info("✅ Local storage initialized", "path", cfg.UploadPath)
	return storage, nil
}
