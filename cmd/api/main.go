// @title           Canteen Feedback API
// @version         1.0
// @description     Collects canteen feedback, classifies the review sentiment and files it into the positive or negative review table.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	_ "CanteenFeedback/docs"
	"CanteenFeedback/internal/auth"
	"CanteenFeedback/internal/config"
	"CanteenFeedback/internal/feed"
	"CanteenFeedback/internal/feedback"
	"CanteenFeedback/internal/handler"
	"CanteenFeedback/internal/logging"
	"CanteenFeedback/internal/middleware"
	"CanteenFeedback/internal/sentiment"
	"CanteenFeedback/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main(): invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Release(), cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("main(): failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("main(): failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeStore()

	predictor, err := newPredictor(cfg.Classifier, logger)
	if err != nil {
		logger.Fatalf("main(): %v", err)
	}

	hub := feed.NewHub(logger)
	go hub.Run(ctx)

	svc := feedback.NewService(
		sentiment.NewClassifier(predictor),
		storage.NewAppender(store, logger),
		logger,
		feedback.WithNotifier(hub),
	)

	var issuer *auth.TokenIssuer
	if cfg.AdminEnabled() {
		issuer = auth.NewTokenIssuer(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)
	} else {
		logger.Warn("main(): ADMIN_PASSWORD_HASH is not set, the dashboard is open to everyone")
	}

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := handler.New(handler.Config{
		Service: svc,
		Reader:  store,
		Hub:     hub,
		Issuer:  issuer,
		Admin:   auth.Admin{Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash},
		Timeout: cfg.Storage.Timeout,
		Log:     logger,
	})
	if err := h.Register(router, middleware.RateLimit(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)); err != nil {
		logger.Fatalf("main(): %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("main(): listening on %s (storage=%s)", srv.Addr, cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("main(): server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("main(): shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("main(): shutdown: %v", err)
	}
}

// openStore builds the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.SugaredLogger) (storage.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSheets:
		s, err := storage.NewSheetsStore(ctx, cfg.SpreadsheetID, logger, option.WithCredentialsFile(cfg.CredentialsFile))
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.BackendSQLite:
		s, err := storage.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warnf("openStore(): failed to close sqlite: %v", err)
			}
		}, nil
	default:
		logger.Warn("openStore(): using in-memory storage, reviews are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

// newPredictor prefers the remote classifier when configured. A local model
// is loaded eagerly so a missing artifact stops startup.
func newPredictor(cfg config.ClassifierConfig, logger *zap.SugaredLogger) (sentiment.Predictor, error) {
	if cfg.RemoteURL != "" {
		logger.Infof("newPredictor(): using remote classifier at %s", cfg.RemoteURL)
		return sentiment.NewRemotePredictor(cfg.RemoteURL, cfg.Timeout), nil
	}
	cache := sentiment.NewModelCache(cfg.ModelPath)
	m, err := cache.Get()
	if err != nil {
		return nil, err
	}
	logger.Infof("newPredictor(): loaded model %s (%d features)", cfg.ModelPath, m.Dim())
	return cache, nil
}
