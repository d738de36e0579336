package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	slogfiber "github.com/samber/slog-fiber"
	"github.com/spf13/cobra"

	"alfredoptarigan/screenly/internal/handlers"
	"alfredoptarigan/screenly/internal/logger"
	"alfredoptarigan/screenly/internal/services"
	"alfredoptarigan/screenly/internal/validator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background worker",
	RunE:  runServe,
}

// multipart overhead on top of the largest accepted CV
const bodySlack = 1 << 20

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	cfg := d.cfg

	storage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	worker := services.NewWorker(d.appRepo, d.pipeline, cfg.Worker)
	// The worker outlives ctx; Stop below drains it after the server shuts down.
	worker.Start(ctx)

	submission := services.NewSubmissionService(
		d.appRepo,
		d.jobRepo,
		services.NewPDFParserService(),
		storage,
		worker,
		cfg.Storage.MaxFileSize,
		cfg.ExternalCallTimeout,
	)

	v := validator.New()

	app := fiber.New(fiber.Config{
		AppName:      "Screenly API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + bodySlack,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(slogfiber.New(logger.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.Register(app.Group("/api/v1"),
		handlers.NewUploadHandler(submission, v, cfg.Storage.MaxFileSize),
		handlers.NewEvaluationHandler(d.evalRepo, d.pipeline, v),
		handlers.NewResultHandler(d.appRepo, d.evalRepo, v, d.sheet != nil),
		handlers.NewHealthHandler(d.db),
	)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Screenly API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/candidates/apply",
				"GET /api/v1/candidates/applications",
				"GET /api/v1/candidates/applications/:id",
				"GET /api/v1/candidates/applications/:id/evaluation",
				"POST /api/v1/candidates/applications/:id/review",
				"POST /api/v1/candidates/applications/:id/reprocess",
				"GET /api/v1/hr/evaluations",
				"GET /api/v1/hr/dashboard",
				"GET /api/v1/health",
			},
		})
	})

	go func() {
		<-ctx.Done()
		slog.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("🚀 Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		worker.Stop()
		return fmt.Errorf("failed to start server: %w", err)
	}

	worker.Stop()
	return nil
}
