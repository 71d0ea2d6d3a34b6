package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cardeals/internal/bot"
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

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Error connecting to db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		log.Fatalf("Error migrating db: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := bot.Options{DefaultChat: cfg.TelegramChatID}
	pipeline := scraper.PipelineOptions{
		Fetch:        fetcher.DefaultOptions(),
		DebugDir:     cfg.DebugDir,
		CreatedDates: false,
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warnf("Redis is not available, /find runs without cache: %v", err)
	} else {
		opts.Cache = redisCache
		pipeline.Cache = redisCache
		defer redisCache.Close()
	}
	opts.Scraper = scraper.NewPipeline(pipeline, log)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	defer producer.Close()
	opts.Producer = producer

	telegramBot, err := bot.NewBot(cfg.BotToken, db, opts, log)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "bot-notification-service", log)
	defer consumer.Close()

	go func() {
		log.Info("🔔 Starting Bot Kafka consumer for notifications...")
		if err := consumer.ProcessEvents(ctx, telegramBot); err != nil {
			log.Infof("Bot Kafka consumer stopped: %v", err)
		}
	}()

	log.Info("🤖 Starting Telegram Bot...")
	telegramBot.Start(ctx)
	log.Info("Bot stopped")
}
