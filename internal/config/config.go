package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KafkaBrokers    []string
	KafkaTopic      string
	BotToken        string
	TelegramChatID  int64
	LogLevel        string
	HTTPAddr        string
	DebugDir        string
	ScrapeInterval  time.Duration
	PriceHistoryURL string
}

const DefaultDSN = "host=localhost user=postgres password=password dbname=cardeals port=5432 sslmode=disable"

// Load reads an optional .env file and then the environment. Variables that
// are already set win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		DatabaseDSN:     e.str("DATABASE_DSN", DefaultDSN),
		RedisAddr:       e.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   e.str("REDIS_PASSWORD", ""),
		RedisDB:         e.int("REDIS_DB", 0),
		KafkaBrokers:    e.list("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:      e.str("KAFKA_TOPIC", "cardeals-events"),
		BotToken:        e.str("BOT_TOKEN", ""),
		TelegramChatID:  e.int64("TELEGRAM_CHAT_ID", 0),
		LogLevel:        e.str("LOG_LEVEL", "info"),
		HTTPAddr:        e.str("HTTP_ADDR", ":8000"),
		DebugDir:        e.str("DEBUG_DIR", ""),
		ScrapeInterval:  e.duration("SCRAPE_INTERVAL", 5*time.Minute),
		PriceHistoryURL: e.str("PRICE_HISTORY_URL", ""),
	}
	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return i
}

func (e *env) int64(key string, def int64) int64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return i
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (e *env) list(key string, def []string) []string {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
