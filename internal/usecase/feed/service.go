package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/metrics"
)

// Ошибки валидации публикации.
var (
	ErrEmptyText          = errors.New("текст публикации пуст")
	ErrUnknownStatus      = errors.New("неизвестный статус публикации")
	ErrUnknownCharacter   = errors.New("неизвестный персонаж")
	ErrUnknownStickerType = errors.New("неизвестный вариант наклейки")
	ErrUnknownArea        = errors.New("неизвестный район")
)

// Кэшируется только окно с лимитом по умолчанию: его запрашивает каждый
// экран "для тебя", остальные лимиты редки.
const cacheKey = "feed:recent"

// Service управляет лентой публикаций сообщества.
type Service struct {
	posts         domain.PostRepo
	cache         domain.Cache
	jobs          domain.NotifyQueue
	log           zerolog.Logger
	recentDefault int
	recentMax     int
	cacheTTL      time.Duration
}

// NewService создаёт сервис ленты. Кэш и очередь могут быть nil, тогда
// соответствующие шаги пропускаются.
func NewService(posts domain.PostRepo, cache domain.Cache, jobs domain.NotifyQueue, log zerolog.Logger, recentDefault, recentMax int, cacheTTL time.Duration) *Service {
	if recentDefault <= 0 {
		recentDefault = 10
	}
	if recentMax < recentDefault {
		recentMax = recentDefault
	}
	return &Service{
		posts:         posts,
		cache:         cache,
		jobs:          jobs,
		log:           log,
		recentDefault: recentDefault,
		recentMax:     recentMax,
		cacheTTL:      cacheTTL,
	}
}

// Recent возвращает окно свежих публикаций, новые первыми.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = s.recentDefault
	}
	if limit > s.recentMax {
		limit = s.recentMax
	}

	cacheable := s.cache != nil && limit == s.recentDefault
	if cacheable {
		if raw, err := s.cache.Get(cacheKey); err == nil {
			var cached []domain.Post
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	posts, err := s.posts.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("получение ленты: %w", err)
	}

	if cacheable {
		if raw, err := json.Marshal(posts); err == nil {
			if err := s.cache.Set(cacheKey, raw, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("лента: не удалось записать снапшот в кэш")
			}
		}
	}
	return posts, nil
}

// Submit валидирует черновик, сохраняет публикацию и ставит задачу на
// уведомление. Сбой постановки в очередь логируется и не отменяет публикацию.
func (s *Service) Submit(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	if err := validateDraft(draft); err != nil {
		metrics.PostSubmitRejected.Inc()
		return domain.Post{}, err
	}

	now := time.Now().UTC()
	post := domain.Post{
		ID:          uuid.NewString(),
		UserID:      draft.UserID,
		Text:        strings.TrimSpace(draft.Text),
		Status:      draft.Status,
		Character:   draft.Character,
		StickerType: draft.StickerType,
		AreaMasked:  draft.AreaMasked,
		CreatedAt:   &now,
	}

	saved, err := s.posts.SavePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("сохранение публикации: %w", err)
	}
	metrics.PostSubmitTotal.Inc()
	s.invalidate()

	if s.jobs != nil {
		job := domain.NotifyJob{
			UserID:    saved.UserID,
			PostID:    saved.ID,
			Character: saved.Character,
			Area:      saved.AreaMasked,
			CreatedAt: now,
		}
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			s.log.Error().Err(err).Str("post", saved.ID).Msg("лента: не удалось поставить уведомление в очередь")
		}
	}
	return saved, nil
}

// SeedIfEmpty наполняет пустую ленту демонстрационными публикациями.
// Используется только в dev-окружении.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.posts.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("подсчёт публикаций: %w", err)
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	hourAgo := now.Add(-time.Hour)
	demo := []domain.Post{
		{
			ID:          uuid.NewString(),
			UserID:      0,
			Text:        "Spotted AngelBlue at the 3F gacha corner in Shinjuku!",
			Status:      domain.StatusSeen,
			Character:   "AngelBlue",
			StickerType: "BonbonDrop",
			AreaMasked:  "Shinjuku",
			CreatedAt:   &now,
		},
		{
			ID:          uuid.NewString(),
			UserID:      0,
			Text:        "Got MaisonPiano! Only a few left, hurry!",
			Status:      domain.StatusBought,
			Character:   "MaisonPiano",
			StickerType: "PetitDrop",
			AreaMasked:  "Shibuya",
			CreatedAt:   &hourAgo,
		},
	}
	for _, post := range demo {
		if _, err := s.posts.SavePost(ctx, post); err != nil {
			return fmt.Errorf("демо-публикация: %w", err)
		}
	}
	s.invalidate()
	s.log.Info().Int("count", len(demo)).Msg("лента: добавлены демо-публикации")
	return nil
}

func (s *Service) invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(cacheKey); err != nil {
		s.log.Warn().Err(err).Msg("лента: не удалось сбросить снапшот")
	}
}

func validateDraft(draft domain.PostDraft) error {
	if strings.TrimSpace(draft.Text) == "" {
		return ErrEmptyText
	}
	if !domain.ValidStatus(draft.Status) {
		return ErrUnknownStatus
	}
	if !domain.ValidCharacter(draft.Character) {
		return ErrUnknownCharacter
	}
	if !domain.ValidStickerType(draft.StickerType) {
		return ErrUnknownStickerType
	}
	if draft.AreaMasked != "" && !domain.ValidArea(draft.AreaMasked) {
		return ErrUnknownArea
	}
	return nil
}
