package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"pujcovna/internal/auth"
	"pujcovna/internal/cache"
	"pujcovna/internal/clients"
	"pujcovna/internal/config"
	"pujcovna/internal/events"
	"pujcovna/internal/http/handlers"
	applog "pujcovna/internal/log"
	"pujcovna/internal/repos"
	"pujcovna/internal/services"
)

func main() {
	cfg := config.Load()
	logger := applog.Logger()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.WithError(err).Warnf("could not open log file %s", cfg.LogFile)
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.SeedDemo(db); err != nil {
			logger.WithError(err).Fatal("seed demo data")
		}
	}

	authSvc := services.NewAuthService(
		repos.NewUserRepo(db),
		auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute),
	)

	var in handlers.Integrations
	if cfg.RabbitMQURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, events disabled")
		} else {
			defer pub.Close()
			in.Publisher = pub
		}
	}
	if cfg.InvoicingURL != "" {
		in.Invoicer = clients.NewInvoicingClient(clients.InvoicingConfig{
			BaseURL:      cfg.InvoicingURL,
			ClientID:     cfg.InvoicingClientID,
			ClientSecret: cfg.InvoicingClientSecret,
			Timeout:      cfg.HTTPTimeout,
		}, nil, nil)
	}
	if cfg.ShippingURL != "" {
		in.Labels = clients.NewShippingClient(clients.ShippingConfig{
			BaseURL:  cfg.ShippingURL,
			APIKey:   cfg.ShippingAPIKey,
			SenderID: cfg.ShippingSenderID,
			Timeout:  cfg.HTTPTimeout,
		}, nil)
	}

	// limiter counters live in redis when it is reachable
	var storage fiber.Storage
	if rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		rs := cache.NewRedisStorage(rdb, "pujcovna:limiter:")
		defer rs.Close()
		storage = rs
	}

	deps := handlers.NewDeps(db, cfg, authSvc, in)
	app := handlers.NewApp(deps, storage)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.WithField("port", cfg.Port).Info("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("listen")
	}
}
