package suggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/metrics"
)

// ForYou объединяет рекомендацию и ближайшее окно свободного времени.
type ForYou struct {
	Suggestion domain.Suggestion          `json:"suggestion"`
	NextWindow *domain.AvailabilityWindow `json:"next_window,omitempty"`
	Area       string                     `json:"area"`
}

// Service строит рекомендации поверх репозиториев.
type Service struct {
	profiles domain.ProfileRepo
	posts    domain.PostRepo
	log      zerolog.Logger
}

// NewService создаёт сервис рекомендаций.
func NewService(profiles domain.ProfileRepo, posts domain.PostRepo, log zerolog.Logger) *Service {
	return &Service{profiles: profiles, posts: posts, log: log}
}

// ForUser собирает рекомендацию для пользователя на указанную дату.
// Отсутствующая анкета не ошибка: движок деградирует до ветки ожидания.
func (s *Service) ForUser(ctx context.Context, userID int64, today time.Time) (ForYou, error) {
	start := time.Now()

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return ForYou{}, fmt.Errorf("получение анкеты: %w", err)
		}
		profile = domain.UserProfile{UserID: userID}
	}

	window, err := s.posts.ListRecent(ctx, RecentWindow)
	if err != nil {
		return ForYou{}, fmt.Errorf("получение ленты: %w", err)
	}

	relevant := FilterRelevant(window, profile.Favorites)
	suggestion := Decide(relevant, len(window), profile)

	metrics.IncSuggestion(suggestion.Decision)
	metrics.SuggestionBuildSeconds.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Int64("user", userID).
		Str("decision", suggestion.Decision).
		Int("window", len(window)).
		Int("relevant", len(relevant)).
		Msg("рекомендация построена")

	return ForYou{
		Suggestion: suggestion,
		NextWindow: NextWindow(profile, today),
		Area:       profile.Area,
	}, nil
}
