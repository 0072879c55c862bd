package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"sticker-radar/internal/adapters/notify"
	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/cache"
	"sticker-radar/internal/infra/config"
	applog "sticker-radar/internal/infra/log"
	"sticker-radar/internal/infra/metrics"
	"sticker-radar/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	var dedup domain.Cache
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		dedup = cache.NewRedis(redisClient)
	}

	var jobs domain.NotifyQueue
	switch {
	case cfg.AMQPURL != "":
		rabbit, err := queue.NewRabbitNotifyQueue(cfg.AMQPURL, cfg.Queues.Notify)
		if err != nil {
			logger.Fatal().Err(err).Msg("notifier: нет подключения к брокеру")
		}
		defer rabbit.Close()
		jobs = rabbit
	case redisClient != nil:
		jobs = queue.NewRedisNotifyQueue(redisClient, cfg.Queues.Notify)
	default:
		logger.Fatal().Msg("notifier: не настроена ни одна очередь")
	}

	var notifier domain.Notifier
	if cfg.Telegram.Token != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal().Err(err).Msg("notifier: не удалось создать бота")
		}
		notifier = notify.NewTelegram(botAPI, cfg.Telegram.ChatID, logger.With().Str("component", "telegram").Logger())
	} else {
		logger.Warn().Msg("notifier: токен бота не задан, пинги уходят в лог")
		notifier = notify.NewLog(logger.With().Str("component", "notify_log").Logger())
	}

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), fmt.Sprintf(":%d", cfg.OpsPort))

	logger.Info().Msg("notifier: старт")
	for {
		job, err := jobs.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error().Err(err).Msg("notifier: ошибка чтения очереди")
			continue
		}

		send := func() error {
			ack, err := notifier.Ping(ctx, job)
			if err != nil {
				return err
			}
			if !ack {
				return errors.New("доставка не подтверждена")
			}
			return nil
		}

		// Один пинг на персонажа в пределах TTL, чтобы всплеск публикаций
		// не превращался в шквал уведомлений.
		if dedup != nil {
			key := fmt.Sprintf("notify:dedup:%s", job.Character)
			if err := dedup.Once(key, cfg.Notify.DedupTTL, send); err != nil {
				logger.Error().Err(err).Str("post", job.PostID).Msg("notifier: пинг не отправлен")
			}
			continue
		}
		if err := send(); err != nil {
			logger.Error().Err(err).Str("post", job.PostID).Msg("notifier: пинг не отправлен")
		}
	}
	logger.Info().Msg("notifier: остановка")
}
