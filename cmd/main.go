package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/omerfarooq187/hostel-management/config"
	"github.com/omerfarooq187/hostel-management/database"
	"github.com/omerfarooq187/hostel-management/handlers"
	"github.com/omerfarooq187/hostel-management/routes"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.AppEnv != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		logger.Fatal().Err(err).Msg("admin seed failed")
	}

	st := store.NewGorm(db)
	clock := time.Now

	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername,
			cfg.SMTPPassword, cfg.MailFrom, cfg.FrontendURL, logger)
	} else {
		logger.Warn().Msg("SMTP not configured, verification mails disabled")
		mailer = services.NopMailer{}
	}

	allocation := services.NewAllocationService(st, clock, logger)
	billing := services.NewBillingService(st, clock, logger)
	receipt := services.NewReceiptService(cfg.HostelDisplayName, clock)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.RegisterRoutes(e, routes.Deps{
		Store:      st,
		Allocation: allocation,
		Billing:    billing,
		Receipt:    receipt,
		Mailer:     mailer,
		JWTSecret:  cfg.JWTSecret,
	})

	scheduler := services.NewFeeScheduler(billing, cfg.FeeCronSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.FeeCronSpec).Msg("fee scheduler failed to start")
	}

	go func() {
		addr := ":" + cfg.AppPort
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
