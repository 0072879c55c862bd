package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
)

// Service управляет анкетами пользователей.
type Service struct {
	profiles domain.ProfileRepo
	log      zerolog.Logger
}

// NewService создаёт сервис анкет.
func NewService(profiles domain.ProfileRepo, log zerolog.Logger) *Service {
	return &Service{profiles: profiles, log: log}
}

// Get возвращает анкету пользователя.
func (s *Service) Get(ctx context.Context, userID int64) (domain.UserProfile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}

// Save нормализует и сохраняет анкету. Повторный онбординг перезаписывает
// предыдущую версию целиком.
func (s *Service) Save(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	normalized := Normalize(p)
	saved, err := s.profiles.SaveProfile(ctx, normalized)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("сохранение анкеты: %w", err)
	}
	s.log.Info().Int64("user", saved.UserID).Int("favorites", len(saved.Favorites)).Msg("анкета сохранена")
	return saved, nil
}

// Normalize приводит анкету к инвариантам хранения: избранное и район
// ограничены словарями, ключи дней недели только "0".."6", метки слотов
// без дубликатов с сохранением порядка добавления. Значения вне словарей
// молча отбрасываются, а не считаются ошибкой.
func Normalize(p domain.UserProfile) domain.UserProfile {
	out := domain.UserProfile{
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}

	seenFav := make(map[string]struct{})
	for _, f := range p.Favorites {
		if !domain.ValidCharacter(f) {
			continue
		}
		if _, ok := seenFav[f]; ok {
			continue
		}
		seenFav[f] = struct{}{}
		out.Favorites = append(out.Favorites, f)
	}

	if domain.ValidArea(p.Area) {
		out.Area = p.Area
	}

	if p.Availability != nil {
		out.Availability = make(map[string][]string, len(p.Availability))
		for day, slots := range p.Availability {
			idx, err := strconv.Atoi(day)
			if err != nil || idx < 0 || idx > 6 {
				continue
			}
			seenSlot := make(map[string]struct{})
			var kept []string
			for _, slot := range slots {
				if !domain.ValidSlot(slot) {
					continue
				}
				if _, ok := seenSlot[slot]; ok {
					continue
				}
				seenSlot[slot] = struct{}{}
				kept = append(kept, slot)
			}
			if len(kept) > 0 {
				out.Availability[day] = kept
			}
		}
	}

	return out
}
