package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"sticker-radar/internal/adapters/repo"
	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/cache"
	"sticker-radar/internal/infra/config"
	"sticker-radar/internal/infra/db"
	httpinfra "sticker-radar/internal/infra/http"
	applog "sticker-radar/internal/infra/log"
	"sticker-radar/internal/infra/metrics"
	"sticker-radar/internal/infra/queue"
	"sticker-radar/internal/usecase/feed"
	"sticker-radar/internal/usecase/profile"
	"sticker-radar/internal/usecase/suggest"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	location, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.TZ).Msg("api: неизвестная таймзона")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)

	var feedCache domain.Cache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		feedCache = cache.NewRedis(redisClient)
	}

	var jobs domain.NotifyQueue
	switch {
	case cfg.AMQPURL != "":
		rabbit, err := queue.NewRabbitNotifyQueue(cfg.AMQPURL, cfg.Queues.Notify)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к брокеру")
		}
		defer rabbit.Close()
		jobs = rabbit
	case redisClient != nil:
		jobs = queue.NewRedisNotifyQueue(redisClient, cfg.Queues.Notify)
	default:
		logger.Warn().Msg("api: очередь уведомлений не настроена")
	}

	profileService := profile.NewService(repoAdapter, logger.With().Str("component", "profile").Logger())
	feedService := feed.NewService(repoAdapter, feedCache, jobs, logger.With().Str("component", "feed").Logger(), cfg.Feed.RecentDefault, cfg.Feed.RecentMax, cfg.Feed.CacheTTL)
	suggestService := suggest.NewService(repoAdapter, repoAdapter, logger.With().Str("component", "suggest").Logger())

	if cfg.AppEnv == "dev" && cfg.Feed.SeedDemo {
		if err := feedService.SeedIfEmpty(ctx); err != nil {
			logger.Error().Err(err).Msg("api: не удалось наполнить демо-ленту")
		}
	}

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	server.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userID}/foryou", func(w http.ResponseWriter, req *http.Request) {
			userID, ok := parseUserID(w, req)
			if !ok {
				return
			}
			result, err := suggestService.ForUser(req.Context(), userID, time.Now().In(location))
			if err != nil {
				logger.Error().Err(err).Int64("user", userID).Msg("api: рекомендация не построена")
				writeError(w, http.StatusInternalServerError, "failed to build suggestion")
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/users/{userID}/profile", func(w http.ResponseWriter, req *http.Request) {
			userID, ok := parseUserID(w, req)
			if !ok {
				return
			}
			p, err := profileService.Get(req.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrProfileNotFound) {
					writeError(w, http.StatusNotFound, "profile not found")
					return
				}
				logger.Error().Err(err).Int64("user", userID).Msg("api: анкета не прочитана")
				writeError(w, http.StatusInternalServerError, "failed to load profile")
				return
			}
			writeJSON(w, http.StatusOK, p)
		})

		r.Put("/users/{userID}/profile", func(w http.ResponseWriter, req *http.Request) {
			userID, ok := parseUserID(w, req)
			if !ok {
				return
			}
			defer req.Body.Close()
			var p domain.UserProfile
			if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			p.UserID = userID
			saved, err := profileService.Save(req.Context(), p)
			if err != nil {
				logger.Error().Err(err).Int64("user", userID).Msg("api: анкета не сохранена")
				writeError(w, http.StatusInternalServerError, "failed to save profile")
				return
			}
			writeJSON(w, http.StatusOK, saved)
		})

		r.Get("/users/{userID}/calendar", func(w http.ResponseWriter, req *http.Request) {
			userID, ok := parseUserID(w, req)
			if !ok {
				return
			}
			from := time.Now().In(location)
			if raw := req.URL.Query().Get("from"); raw != "" {
				parsed, err := time.ParseInLocation("2006-01-02", raw, location)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid from date")
					return
				}
				from = parsed
			}
			p, err := profileService.Get(req.Context(), userID)
			if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
				logger.Error().Err(err).Int64("user", userID).Msg("api: анкета не прочитана")
				writeError(w, http.StatusInternalServerError, "failed to load profile")
				return
			}
			writeJSON(w, http.StatusOK, buildCalendar(p, from))
		})

		r.Get("/posts", func(w http.ResponseWriter, req *http.Request) {
			limit := 0
			if raw := req.URL.Query().Get("limit"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid limit")
					return
				}
				limit = parsed
			}
			posts, err := feedService.Recent(req.Context(), limit)
			if err != nil {
				logger.Error().Err(err).Msg("api: лента не прочитана")
				writeError(w, http.StatusInternalServerError, "failed to load feed")
				return
			}
			if posts == nil {
				posts = []domain.Post{}
			}
			writeJSON(w, http.StatusOK, posts)
		})

		r.Post("/posts", func(w http.ResponseWriter, req *http.Request) {
			defer req.Body.Close()
			var draft domain.PostDraft
			if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			post, err := feedService.Submit(req.Context(), draft)
			if err != nil {
				if isValidationError(err) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				logger.Error().Err(err).Msg("api: публикация не сохранена")
				writeError(w, http.StatusInternalServerError, "failed to submit post")
				return
			}
			writeJSON(w, http.StatusCreated, post)
		})
	})

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), fmt.Sprintf(":%d", cfg.OpsPort))

	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// calendarDay описывает одну строку семидневного календаря.
type calendarDay struct {
	Date      string   `json:"date"`
	Weekday   string   `json:"weekday"`
	Available bool     `json:"available"`
	Slots     []string `json:"slots"`
}

func buildCalendar(p domain.UserProfile, from time.Time) []calendarDay {
	days := make([]calendarDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := from.AddDate(0, 0, i)
		key := strconv.Itoa(int(date.Weekday()))
		slots := p.Availability[key]
		if slots == nil {
			slots = []string{}
		}
		days = append(days, calendarDay{
			Date:      date.Format("2006-01-02"),
			Weekday:   date.Weekday().String(),
			Available: suggest.IsAvailable(date, p),
			Slots:     slots,
		})
	}
	return days
}

func parseUserID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	raw := chi.URLParam(req, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}

func isValidationError(err error) bool {
	return errors.Is(err, feed.ErrEmptyText) ||
		errors.Is(err, feed.ErrUnknownStatus) ||
		errors.Is(err, feed.ErrUnknownCharacter) ||
		errors.Is(err, feed.ErrUnknownStickerType) ||
		errors.Is(err, feed.ErrUnknownArea)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
