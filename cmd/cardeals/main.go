package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cardeals/internal/cache"
	"cardeals/internal/config"
	"cardeals/internal/database"
	"cardeals/internal/fetcher"
	"cardeals/internal/kafka"
	"cardeals/internal/listing"
	"cardeals/internal/logging"
	"cardeals/internal/scraper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌ Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	rootCmd := &cobra.Command{
		Use:   "cardeals",
		Short: "Scrape car listings from mobile.bg",
		Long: `cardeals searches mobile.bg for car listings matching the given filters and
prints them as one JSON document. Listings can be kept in the database to
track when they appear and disappear.`,
		Example: `  cardeals --brand Mercedes --model GLC --year-start 2019 --price-max 70000 --km-max 200000 --engine-type diesel --gearbox-type automatic
  cardeals --brand BMW --model X5 --price-max 50000 --verbose --use-db
  cardeals --print-db -o cars.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			return execute(cmd.Context(), o)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&o.params.Brand, "brand", "", "Car brand (e.g. Mercedes, BMW, Audi)")
	f.StringVar(&o.params.Model, "model", "", "Car model (e.g. GLC, X5, A4)")
	f.IntVar(&o.params.YearStart, "year-start", 0, "Minimum year")
	f.IntVar(&o.params.PriceMax, "price-max", 0, "Maximum price in EUR")
	f.IntVar(&o.params.KmMax, "km-max", 0, "Maximum kilometers")
	f.StringVar(&o.params.EngineType, "engine-type", "", "Engine type ("+strings.Join(listing.EngineTypes, ", ")+")")
	f.StringVar(&o.params.GearboxType, "gearbox-type", "", "Gearbox type ("+strings.Join(listing.GearboxTypes, ", ")+")")
	f.IntVar(&o.maxPages, "max-pages", 10, "Maximum pages to scrape (0 for no limit)")
	f.StringVarP(&o.output, "output", "o", "", "Output file (default: stdout)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output")
	f.BoolVar(&o.useDB, "use-db", false, "Store and update cars in the database")
	f.BoolVar(&o.clearDB, "clear-db", false, "Clear the stored cars and exit")
	f.BoolVar(&o.printDB, "print-db", false, "Print all stored cars and exit")
	f.BoolVar(&o.skipScrape, "skip-scrape", false, "Do not scrape, print the stored cars")
	f.BoolVar(&o.useCache, "use-cache", false, "Reuse crawl results cached in redis")
	f.BoolVar(&o.publish, "publish", false, "Publish new listings to kafka")
	f.BoolVar(&o.noCreatedDate, "no-created-date", false, "Skip detail pages and created dates")
	f.StringVar(&o.debugDir, "debug-dir", "", "Directory for HTML debug dumps")

	rootCmd.AddCommand(newSearchesCmd())
	return rootCmd
}

// execute wires the collaborators the flags ask for and runs once.
func execute(ctx context.Context, o options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, o.verbose)

	debugDir := o.debugDir
	if debugDir == "" {
		debugDir = cfg.DebugDir
	}
	pipeline := scraper.PipelineOptions{
		Fetch:        fetcher.DefaultOptions(),
		DebugDir:     debugDir,
		CreatedDates: !o.noCreatedDate,
		HistoryURL:   cfg.PriceHistoryURL,
	}

	r := &runner{out: os.Stdout, log: log, now: time.Now}

	if o.needsStore() {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		r.store = db
	}

	if o.useCache {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warnf("Redis is not available, running without cache: %v", err)
		} else {
			defer redisCache.Close()
			r.cache = redisCache
			pipeline.Cache = redisCache
		}
	}

	if o.publish {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer producer.Close()
		r.publisher = producer
	}

	r.scraper = scraper.NewPipeline(pipeline, log)
	return r.run(ctx, o)
}

func openStore(cfg config.Config) (*database.DB, error) {
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func commandLogger(cfg config.Config) logrus.FieldLogger {
	return logging.New(cfg.LogLevel, false)
}
