package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/bootstrap"
	"github.com/Angel-Eco/CuidadoPRO/internal/config"
	searchService "github.com/Angel-Eco/CuidadoPRO/internal/modules/search/service"
	"github.com/Angel-Eco/CuidadoPRO/internal/server"
	"github.com/Angel-Eco/CuidadoPRO/pkg/database"
	"github.com/Angel-Eco/CuidadoPRO/pkg/logger"
	"github.com/Angel-Eco/CuidadoPRO/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	redisClient, err := database.ConnectRedis(connectCtx, cfg.RedisURL)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without shared cache and rate limits")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.UploadBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
	}

	index := searchService.NewNoopIndex()
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(meiliURL(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		index = searchService.NewMeiliSearchService(meiliClient, log)
	}

	srv := server.NewServer(server.Deps{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		Storage: imageStorage,
		Index:   index,
		Logger:  log,
	})

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

// meiliURL accepts either a full URL or a bare host on the default port.
func meiliURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host + ":7700"
}
