package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"pinvent/internal/auth"
	"pinvent/internal/cache"
	"pinvent/internal/config"
	"pinvent/internal/db"
	"pinvent/internal/handler"
	"pinvent/internal/logging"
	"pinvent/internal/mail"
	"pinvent/internal/middleware"
	"pinvent/internal/repository"
	"pinvent/internal/router"
	"pinvent/internal/service"
	"pinvent/internal/storage"
)

const (
	logMaxBytes    = 10 << 20
	logMaxBackups  = 5
	shutdownPeriod = 10 * time.Second
)

// @title Pinvent Inventory API
// @version 1.0
// @description Inventory administration API with cookie sessions, products and password reset.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		fileWriter, err := logging.NewRotatingFileWriter(cfg.LogFile, logMaxBytes, logMaxBackups)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer fileWriter.Close()
		out = io.MultiWriter(os.Stdout, fileWriter)
	}
	logger := logging.New(out, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher := auth.NewBcryptHasher()

	var (
		userRepo    repository.UserRepository
		tokenRepo   repository.ResetTokenRepository
		productRepo repository.ProductRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn(ctx, "using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		userRepo = store.Users(hasher)
		tokenRepo = store.ResetTokens()
		productRepo = store.Products()
	default:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("database init: %v", err)
		}
		if cfg.ResetDB {
			logger.Warn(ctx, "RESET_DB set, dropping all tables")
		}
		if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		userRepo = repository.NewUserRepository(gormDB, hasher)
		tokenRepo = repository.NewResetTokenRepository(gormDB)
		productRepo = repository.NewProductRepository(gormDB)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unavailable, caching and throttling disabled", "addr", cfg.RedisAddr, "error", err)
	}

	var mailer mail.Dispatcher = mail.LogDispatcher{Log: logger}
	if cfg.Email.Enabled() {
		mailer = mail.NewSMTPDispatcher(cfg.Email)
	}

	images := &storage.S3ImageStore{}
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ImageStore(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("image storage: %v", err)
		}
		images = s3Store
	} else {
		logger.Warn(ctx, "S3_BUCKET not set, product images cannot be uploaded")
	}

	issuer := auth.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	profiles := service.NewProfileCache(cacheClient)

	authService := service.NewAuthService(
		userRepo,
		tokenRepo,
		hasher,
		issuer,
		mailer,
		profiles,
		service.AuthConfig{
			FrontendURL:   cfg.FrontendURL,
			MailFrom:      cfg.Email.Username,
			ResetTokenTTL: cfg.ResetTokenTTL,
		},
		logger,
	)
	userService := service.NewUserService(userRepo, profiles)
	productService := service.NewProductService(productRepo, images, logger)
	contactService := service.NewContactService(mailer, cfg.ContactInbox, cfg.Email.Username)

	authHandler := handler.NewAuthHandler(authService, auth.CookieWriter{Secure: cfg.CookieSecure}, auth.NewRateLimiter(cacheClient))
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	contactHandler := handler.NewContactHandler(contactService)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		logger,
		middleware.Gate(issuer, userRepo, logger),
		authHandler,
		userHandler,
		productHandler,
		contactHandler,
	)

	logger.Info(ctx, "swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "server starting", "addr", addr, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "shutdown", "error", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
