package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
)

type stubProfiles struct {
	profile domain.UserProfile
	err     error
}

func (s *stubProfiles) GetProfile(context.Context, int64) (domain.UserProfile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) SaveProfile(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	return p, nil
}

type stubPosts struct {
	posts []domain.Post
}

func (s *stubPosts) SavePost(_ context.Context, p domain.Post) (domain.Post, error) { return p, nil }
func (s *stubPosts) ListRecent(context.Context, int) ([]domain.Post, error)         { return s.posts, nil }
func (s *stubPosts) CountPosts(context.Context) (int, error)                        { return len(s.posts), nil }

func TestForUserGo(t *testing.T) {
	now := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	created := now.Add(-time.Hour)
	profiles := &stubProfiles{profile: domain.UserProfile{
		UserID:       1,
		Favorites:    []string{"AngelBlue"},
		Area:         "Shinjuku",
		Availability: map[string][]string{"1": {"evening"}},
	}}
	posts := &stubPosts{posts: []domain.Post{
		{ID: "p1", Character: "AngelBlue", Status: domain.StatusBought, AreaMasked: "Shinjuku", CreatedAt: &created},
	}}
	service := NewService(profiles, posts, zerolog.Nop())

	got, err := service.ForUser(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Suggestion.Decision != domain.DecisionGo {
		t.Fatalf("ожидали go, получили %s", got.Suggestion.Decision)
	}
	if got.NextWindow == nil || got.NextWindow.Day != "today" {
		t.Fatalf("ожидали окно на сегодня, получили %+v", got.NextWindow)
	}
	if got.Area != "Shinjuku" {
		t.Fatalf("ожидали район из анкеты")
	}
}

func TestForUserMissingProfileDegrades(t *testing.T) {
	profiles := &stubProfiles{err: domain.ErrProfileNotFound}
	posts := &stubPosts{}
	service := NewService(profiles, posts, zerolog.Nop())

	got, err := service.ForUser(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("отсутствующая анкета не должна быть ошибкой: %v", err)
	}
	if got.Suggestion.Decision != domain.DecisionWait || got.Suggestion.Score != ScoreQuiet {
		t.Fatalf("ожидали тихую ветку wait/0.1, получили %s/%v", got.Suggestion.Decision, got.Suggestion.Score)
	}
	if got.NextWindow != nil {
		t.Fatalf("без расписания окно должно быть nil")
	}
}

func TestForUserNoRelevantPosts(t *testing.T) {
	created := time.Now().UTC()
	profiles := &stubProfiles{profile: domain.UserProfile{
		UserID:    7,
		Favorites: []string{"DaisyLovers"},
	}}
	posts := &stubPosts{posts: []domain.Post{
		{ID: "p1", Character: "BlueCross", Status: domain.StatusSeen, CreatedAt: &created},
	}}
	service := NewService(profiles, posts, zerolog.Nop())

	got, err := service.ForUser(context.Background(), 7, time.Now())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Suggestion.Score != ScoreNoMatch {
		t.Fatalf("искали и не нашли: ожидали 0.3, получили %v", got.Suggestion.Score)
	}
	if len(got.Suggestion.Candidates) != 0 {
		t.Fatalf("для wait кандидатов быть не должно")
	}
}
