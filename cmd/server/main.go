package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dcportal/internal/config"
	"dcportal/internal/handlers"
	"dcportal/internal/mailer"
	"dcportal/internal/pdf"
	"dcportal/internal/router"
	"dcportal/internal/store"
	"dcportal/internal/uploads"
	"dcportal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	st, err := store.Open(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close()
	zapLogger.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("redis unreachable, upload cache disabled", zap.Error(err))
			cache = nil
		}
		cancel()
	}

	uploadSvc := uploads.NewService(cfg.UploadsDir, cfg.UploadsFallbackDir, cache, cfg.UploadTTL, zapLogger)

	var m mailer.Mailer
	if smtp, err := mailer.NewSMTP(cfg.SMTP); err != nil {
		zapLogger.Warn("SMTP not configured, email issuance will fail closed", zap.Error(err))
		m = mailer.Unconfigured{}
	} else {
		m = smtp
	}

	stamper := pdf.NewTemplateStamper(cfg.VerifyBaseURL)

	h := handlers.New(cfg, zapLogger, st, uploadSvc, m, stamper)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.RegisterRouter(h, zapLogger, []byte(cfg.JWTSecret)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zapLogger.Info("server started", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("shutdown error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
