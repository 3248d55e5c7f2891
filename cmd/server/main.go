//go:generate swag init -d ../../ -g cmd/server/main.go -o ../../docs --parseInternal

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"crmbridge/docs" // swagger docs
	"crmbridge/internal/auth"
	"crmbridge/internal/cache"
	"crmbridge/internal/config"
	"crmbridge/internal/db"
	"crmbridge/internal/handler"
	"crmbridge/internal/logger"
	"crmbridge/internal/observability/tracing"
	"crmbridge/internal/repository"
	"crmbridge/internal/router"
	"crmbridge/internal/service"
)

// @title CRM Bridge API
// @version 1.0
// @description CRM backend holding contacts, companies and deals mirrored from HubSpot and Kommo, with JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error("database handle", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Error("migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		// Revocation checks fail open while Redis is down.
		log.Warn("redis unreachable, token revocation disabled until it recovers",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
	}

	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "crmbridge", cfg.Environment)
	if err != nil {
		log.Error("tracing init", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	companyRepo := repository.NewCompanyRepository(gormDB)
	contactRepo := repository.NewContactRepository(gormDB)
	dealRepo := repository.NewDealRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	contactService := service.NewContactService(contactRepo, companyRepo)
	companyService := service.NewCompanyService(companyRepo, contactRepo)
	dealService := service.NewDealService(dealRepo, contactRepo, companyRepo)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		log,
		auth.Middleware(jwtService, tokenStore, userRepo),
		handler.NewAuthHandler(authService),
		handler.NewContactHandler(contactService),
		handler.NewCompanyHandler(companyService),
		handler.NewDealHandler(dealService),
		handler.NewHealthHandler(sqlDB),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Info("swagger documentation available",
		slog.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"),
	)

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info("server starting", slog.String("addr", addr), slog.String("env", cfg.Environment))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}
