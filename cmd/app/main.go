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

	"fulfillment/cmd"
	apihttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/geocoder"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/redislock"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.SlogLevel()}))
	slog.SetDefault(logger)

	gormDB, err := gorm.Open(gormpg.Open(configs.DB.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	writer := kafka.NewWriter(configs.Kafka.Brokers, configs.Kafka.OrderChangedTopic)
	publisher := kafka.NewStatusPublisher(writer, configs.Kafka.Producer, logger)

	var locker ports.JobLocker
	if configs.Redis.Addr != "" {
		redisClient := redislock.NewClient(configs.Redis.Addr, configs.Redis.Password, configs.Redis.DB)
		defer redisClient.Close()
		locker = redislock.NewLocker(redisClient)
	} else {
		logger.Warn("REDIS_ADDR is empty, jobs run without a cross-instance lease")
	}

	geo := geocoder.NewHTTPGeocoder(
		&http.Client{Timeout: configs.Geocode.Timeout},
		configs.Geocode.BaseURL, configs.Geocode.UserAgent, configs.Geocode.Country)

	app, err := cmd.NewCompositionRoot(configs, gormDB, publisher, geo, locker, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	e, err := newEcho(app, logger)
	if err != nil {
		log.Fatalf("Error building HTTP server: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err := publisher.Close(); err != nil {
		logger.Error("Kafka writer close failed", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newEcho(app *cmd.CompositionRoot, logger *slog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apihttp.ErrorHandler(e)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.ErrorContext(c.Request().Context(), "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))
	e.Use(apihttp.Metrics())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	specJSON, err := servers.SpecJSON()
	if err != nil {
		return nil, err
	}
	e.GET("/api/v1/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, specJSON)
	})

	doc, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := apihttp.RequestValidator(doc, "/api/v1")
	if err != nil {
		return nil, err
	}

	api := e.Group("/api/v1", validator)
	servers.RegisterHandlersWithBaseURL(api, app.CreateServer(), "")
	return e, nil
}
