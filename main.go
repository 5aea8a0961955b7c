package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jiwonMe/work-mma-sdk/internal/api"
	"github.com/jiwonMe/work-mma-sdk/internal/config"
	"github.com/jiwonMe/work-mma-sdk/internal/mma"
	"github.com/jiwonMe/work-mma-sdk/internal/ranking"
	"github.com/jiwonMe/work-mma-sdk/internal/service"
	infraconfig "github.com/jiwonMe/work-mma-sdk/pkg/config"
	infrahttp "github.com/jiwonMe/work-mma-sdk/pkg/http"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
	infraredis "github.com/jiwonMe/work-mma-sdk/pkg/redis"
)

// redisPingTimeout bounds the health-check ping.
const redisPingTimeout = 2 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	redisClient, err := infraredis.NewClient(cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to Redis", logger.Error(err))
		return 1
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("Connected to Redis", logger.String("address", cfg.Redis.Address))

	return runServer(cfg, redisClient, log)
}

// loadConfig loads configuration from config file.
func loadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")
	return config.Load(configPath)
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer wires the upstream client, search and ranking services into
// the HTTP server and runs it with graceful shutdown.
func runServer(cfg *config.Config, redisClient *redis.Client, log logger.Logger) int {
	transport := mma.NewTransport(mma.TransportConfig{
		BaseURL:  cfg.MMA.BaseURL,
		RelayURL: cfg.MMA.RelayURL,
		Timeout:  cfg.MMA.Timeout,
	}, log)
	mmaClient := mma.NewClient(transport, log)

	searchService := service.NewSearchService(mmaClient, log)
	rankingService := ranking.NewService(ranking.NewRedisStore(redisClient), log)

	handler := api.NewHandler(searchService, mmaClient, rankingService, log)
	upstreamClient := infrahttp.NewClientWithTLS(cfg.MMA.Timeout, true)
	relay := api.NewRelayHandler(cfg.MMA.BaseURL, upstreamClient, log)

	redisPing := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		return redisClient.Ping(ctx).Err()
	}

	upstreamPing := func() error {
		resp, err := upstreamClient.Head(cfg.MMA.BaseURL)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}

	server := api.NewServer(handler, relay, cfg, redisPing, upstreamPing, log)

	log.Info("Service starting", logger.Int("port", cfg.Service.Port))

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return 1
	}

	log.Info("Service exited cleanly")
	return 0
}
