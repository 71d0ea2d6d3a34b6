package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cardeals/internal/cache"
	"cardeals/internal/config"
	"cardeals/internal/database"
	"cardeals/internal/fetcher"
	"cardeals/internal/kafka"
	"cardeals/internal/logging"
	"cardeals/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", false).Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, false)
	log.Info("Starting cardeals Scraper Service...")

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database connected")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := scraper.PipelineOptions{
		Fetch:        fetcher.DefaultOptions(),
		DebugDir:     cfg.DebugDir,
		CreatedDates: true,
		HistoryURL:   cfg.PriceHistoryURL,
	}
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warnf("Redis connection failed, created dates will not be cached: %v", err)
	} else {
		opts.Cache = redisCache
		defer redisCache.Close()
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "scraper-service", log)
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Warnf("Error closing consumer: %v", err)
		}
		if err := producer.Close(); err != nil {
			log.Warnf("Error closing producer: %v", err)
		}
	}()

	service := NewScraperService(db, scraper.NewPipeline(opts, log), producer, cfg.ScrapeInterval, log)
	service.ctx = ctx

	if err := service.loadExistingSearches(); err != nil {
		log.Errorf("Failed to load existing searches: %v", err)
	}

	go func() {
		log.Info("Starting Kafka consumer...")
		if err := consumer.ProcessEvents(ctx, service); err != nil {
			log.Infof("Kafka consumer stopped: %v", err)
		}
	}()

	go service.startPeriodicScraping(ctx)

	log.Infof("✅ Scraper Service is running, scraping every %s", cfg.ScrapeInterval)
	<-ctx.Done()

	log.Info("Shutdown signal received, waiting for running crawls")
	service.wg.Wait()
	log.Info("Scraper Service stopped gracefully")
}
