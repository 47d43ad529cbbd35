package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotcal/internal/api"
	"slotcal/internal/config"
	"slotcal/internal/database"
	"slotcal/internal/domain"
	"slotcal/internal/events"
	"slotcal/internal/export"
	"slotcal/internal/google"
	"slotcal/internal/logging"
	"slotcal/internal/metrics"
	"slotcal/internal/models"
	"slotcal/internal/repository"
	"slotcal/internal/service"
	"slotcal/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedEventTypes(cfg, db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slotCache := buildSlotCache(cfg, redisClient, &logger)
	bus := events.NewEventBus()
	exportWorker := buildExportWorker(cfg, db, redisClient, &logger)
	if exportWorker != nil {
		go exportWorker.Start(ctx)
	}

	engine := service.NewSlotEngine(db, slotCache, cfg.Location(), &logger)
	catalog := service.NewCatalogService(db, slotCache, &logger)

	var exportQueue domain.SyncWorker
	if exportWorker != nil {
		exportQueue = exportWorker
	}
	coordinator := service.NewBookingCoordinator(db, engine, slotCache, bus, exportQueue, nil, &logger)

	subscribeBookingLog(bus, &logger)

	httpServer := api.NewHTTPServer(cfg.API, catalog, engine, coordinator, &logger)

	startMetrics(ctx, cfg, &logger)

	return serveHTTP(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedEventTypes loads the catalog seed file and creates any event type whose
// slug is not present yet. Existing types are left untouched.
func seedEventTypes(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	path := os.Getenv("EVENT_TYPES_PATH")
	if path == "" {
		path = cfg.Scheduling.EventTypesFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info().Str("path", path).Msg("no event type seed file, skipping")
			return nil
		}
		logger.Error().Err(err).Str("path", path).Msg("read event types")
		return err
	}

	var seed struct {
		EventTypes []models.EventType `yaml:"event_types"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("parse event types")
		return err
	}

	ctx := context.Background()
	for i := range seed.EventTypes {
		et := seed.EventTypes[i]
		if _, err := db.GetEventTypeBySlug(ctx, et.Slug); err == nil {
			continue
		}
		if err := db.CreateEventType(ctx, &et); err != nil {
			logger.Error().Err(err).Str("slug", et.Slug).Msg("seed event type")
			return err
		}
		logger.Info().Str("slug", et.Slug).Int("duration", et.DurationMinutes).Msg("event type seeded")
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildSlotCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SlotCache {
	ttl := time.Duration(cfg.Scheduling.CacheTTLSeconds) * time.Second
	memory := repository.NewMemorySlotCache(ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisSlotCache(redisClient, ttl)
	return repository.NewFailoverSlotCache(primary, memory, logger)
}

func buildExportWorker(cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.ExportWorker {
	var sinks []worker.BookingSink

	if cfg.Exports.Enabled && cfg.Exports.Path != "" {
		sinks = append(sinks, export.NewExcelSink(db, cfg.Exports.Path, logger))
	}

	if cfg.Google.GoogleCredentialsFile != "" && cfg.Google.BookingSpreadSheetID != "" {
		sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
		if err != nil {
			logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		} else {
			logger.Info().Msg("google sheets connected")
			sinks = append(sinks, sheetsService)
		}
	}

	if len(sinks) == 0 {
		return nil
	}

	return worker.NewExportWorker(db, sinks, redisClient, worker.RetryPolicy{}, logger)
}

func subscribeBookingLog(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(event *events.Event) error {
		logger.Info().Str("event_type", event.Type).RawJSON("payload", event.Payload).Msg("booking event")
		return nil
	}
	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingCancelled, handler)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}
