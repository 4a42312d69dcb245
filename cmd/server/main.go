package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecotrack/backend/docs"
	"github.com/ecotrack/backend/internal/audit"
	"github.com/ecotrack/backend/internal/config"
	"github.com/ecotrack/backend/internal/database"
	"github.com/ecotrack/backend/internal/handlers"
	"github.com/ecotrack/backend/internal/logging"
	"github.com/ecotrack/backend/internal/metrics"
	"github.com/ecotrack/backend/internal/notify"
	"github.com/ecotrack/backend/internal/services"
	"github.com/ecotrack/backend/internal/storage"
	"github.com/ecotrack/backend/internal/store"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// @title EcoTrack Backend API
// @version 1.0
// @description Carbon footprint tracking: OTP login, activity ledger, leaderboards and admin reporting
// @host localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	v := viper.New()
	cfg, err := config.Load(v, ".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Development: cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, v, logger); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}

func run(cfg *config.Config, v *viper.Viper, logger *zap.SugaredLogger) error {
	ctx := context.Background()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	st, db, err := openStore(ctx, cfg, v, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient := database.InitRedis(ctx, v, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	blobs, uploadsDir, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var sender notify.CodeSender
	switch cfg.SMS.Driver {
	case "twilio":
		sender = notify.NewTwilioSender(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFrom, logger)
	default:
		sender = notify.NewLogSender(logger)
	}

	m := metrics.New()
	auditLog := audit.NewLogger(logger)
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, redisClient)
	hasher := services.NewCodeHasher(cfg.OTPPepper, cfg.Argon2)

	accounts := services.NewAccountService(st, tokens, hasher, sender, blobs, redisClient, m, auditLog, logger,
		services.AccountOptions{
			CodeTTL:           cfg.OTPTTL,
			MaxCodeRequests:   cfg.OTPMaxRequests,
			RateWindow:        cfg.OTPRateWindow,
			MaxVerifyAttempts: cfg.OTPMaxAttempts,
		})
	ledger := services.NewLedgerService(st, blobs, redisClient, m, auditLog, logger, cfg.Location)
	admin := services.NewAdminService(st, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:   accounts,
		Ledger:     ledger,
		Admin:      admin,
		Tokens:     tokens,
		Metrics:    m,
		Log:        logger,
		UploadsDir: uploadsDir,
		AuthRPS:    cfg.AuthRPS,
		AuthBurst:  cfg.AuthBurst,
		TrustProxy: cfg.TrustProxy,
		AccessLog:  true,
	})

	server := newServer(":"+cfg.Port, router)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server starting", "addr", server.Addr, "store", cfg.StoreDriver, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newServer sizes the write deadline past the router's request timeout so
// chi's timeout response reaches the client.
func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: handlers.RequestTimeout + 5*time.Second,
		IdleTimeout:  90 * time.Second,
	}
}

func openStore(ctx context.Context, cfg *config.Config, v *viper.Viper, logger *zap.SugaredLogger) (store.Store, *sql.DB, error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using the in-memory store; data is lost on restart")
		return store.NewMemory(), nil, nil
	case "postgres", "":
		db, err := database.InitDB(ctx, database.GetConfig(v), logger)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgres(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// openBlobStore returns the store and, for local storage, the directory to
// serve under /uploads.
func openBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, string, error) {
	switch cfg.Driver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		return s3Store, "", err
	case "local", "":
		local, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicPrefix)
		if err != nil {
			return nil, "", err
		}
		return local, local.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
