package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/catalog"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/config"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/handler"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/logger"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/planner"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/render"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/service"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP entry surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	slog.Info("configuration loaded successfully", "path", configPath)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			slog.Error("reference catalog unusable", "path", loadErr.Path, "error", loadErr.Err)
		}
		return err
	}
	slog.Info("reference catalog loaded", "path", cfg.Catalog.Path, "materials", len(cat.Materials()))

	var archive service.Archive
	if cfg.Minio.Enabled {
		minioArchive, err := service.NewMinioArchive(&cfg.Minio)
		if err != nil {
			return fmt.Errorf("initialize minio archive: %w", err)
		}
		if err := minioArchive.EnsureBucket(context.Background()); err != nil {
			return fmt.Errorf("ensure minio bucket: %w", err)
		}
		archive = minioArchive
	}

	plans := service.NewQualityPlanService(
		planner.New(cat),
		service.NewPlanStore(cfg.Store.MaxPlans),
		render.NewPDFRenderer(cfg.Output.Dir),
		archive,
		cfg.Plan.ApprovedBy,
	)

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(cfg, handler.NewAuthHandler(cfg), handler.NewPlanHandler(plans))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}
