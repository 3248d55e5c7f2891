// Package main loads a JSON fixture of companies, contacts and deals into the
// configured database, optionally creating a login user first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crmbridge/internal/auth"
	"crmbridge/internal/config"
	"crmbridge/internal/db"
	apperrors "crmbridge/internal/errors"
	"crmbridge/internal/logger"
	"crmbridge/internal/repository"
	"crmbridge/internal/seed"
	"crmbridge/internal/service"
)

func main() {
	var fixture, username, email, password string
	flag.StringVar(&fixture, "fixture", "", "fixture file path or http(s) URL")
	flag.StringVar(&username, "username", "", "create this user before loading (optional)")
	flag.StringVar(&email, "email", "", "email for -username")
	flag.StringVar(&password, "password", "", "password for -username")
	flag.Parse()

	if fixture == "" && username == "" {
		fmt.Fprintln(os.Stderr, "Error: nothing to do, pass -fixture and/or -username")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, fixture, username, email, password); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, fixture, username, email, password string) error {
	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gormDB, false, log); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(gormDB)
	companyRepo := repository.NewCompanyRepository(gormDB)
	contactRepo := repository.NewContactRepository(gormDB)
	dealRepo := repository.NewDealRepository(gormDB)

	if username != "" {
		// Register never touches the token store.
		authService := service.NewAuthService(userRepo, auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL), nil)
		user, err := authService.Register(ctx, service.RegisterInput{
			Username: username,
			Email:    email,
			Password: password,
		})
		switch {
		case errors.Is(err, apperrors.ErrDuplicateUsername), errors.Is(err, apperrors.ErrDuplicateEmail):
			log.Info("user already exists", slog.String("username", username))
		case err != nil:
			return fmt.Errorf("create user: %w", err)
		default:
			log.Info("user created", slog.String("username", user.Username), slog.Uint64("id", uint64(user.ID)))
		}
	}

	if fixture == "" {
		return nil
	}

	f, err := seed.OpenFixture(ctx, fixture)
	if err != nil {
		return err
	}

	loader := seed.NewLoader(
		service.NewCompanyService(companyRepo, contactRepo),
		service.NewContactService(contactRepo, companyRepo),
		service.NewDealService(dealRepo, contactRepo, companyRepo),
		companyRepo,
		contactRepo,
		dealRepo,
		log,
	)
	_, err = loader.Load(ctx, f)
	return err
}
