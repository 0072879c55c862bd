package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv  string `envconfig:"APP_ENV" default:"dev"`
	TZ      string `envconfig:"TZ" default:"Asia/Tokyo"`
	Port    int    `envconfig:"PORT" default:"8080"`
	OpsPort int    `envconfig:"OPS_PORT" default:"9090"`

	Telegram struct {
		Token  string `envconfig:"TG_BOT_TOKEN"`
		ChatID int64  `envconfig:"TG_CHAT_ID"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	AMQPURL string `envconfig:"AMQP_URL"`

	Feed struct {
		RecentDefault int           `envconfig:"FEED_RECENT_DEFAULT" default:"10"`
		RecentMax     int           `envconfig:"FEED_RECENT_MAX" default:"50"`
		CacheTTL      time.Duration `envconfig:"FEED_CACHE_TTL" default:"15s"`
		SeedDemo      bool          `envconfig:"FEED_SEED_DEMO" default:"false"`
	} `envconfig:""`

	Notify struct {
		DedupTTL time.Duration `envconfig:"NOTIFY_DEDUP_TTL" default:"30m"`
	} `envconfig:""`

	Queues struct {
		Notify string `envconfig:"NOTIFY_QUEUE_KEY" default:"notify_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
