package profile

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
)

type stubRepo struct {
	saved domain.UserProfile
}

func (s *stubRepo) GetProfile(context.Context, int64) (domain.UserProfile, error) {
	return s.saved, nil
}

func (s *stubRepo) SaveProfile(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	s.saved = p
	return p, nil
}

func TestNormalizeDropsUnknownValues(t *testing.T) {
	in := domain.UserProfile{
		UserID:    1,
		Favorites: []string{"AngelBlue", "Godzilla", "AngelBlue", "MaisonPiano"},
		Area:      "Atlantis",
		Availability: map[string][]string{
			"1":  {"morning", "morning", "teatime", "evening"},
			"7":  {"morning"},
			"-1": {"night"},
			"3":  {"brunch"},
		},
	}
	got := Normalize(in)
	if !reflect.DeepEqual(got.Favorites, []string{"AngelBlue", "MaisonPiano"}) {
		t.Fatalf("ожидали дедупликацию и фильтрацию избранного: %v", got.Favorites)
	}
	if got.Area != "" {
		t.Fatalf("район вне словаря должен отбрасываться: %q", got.Area)
	}
	if len(got.Availability) != 1 {
		t.Fatalf("ожидали один валидный день, получили %v", got.Availability)
	}
	if !reflect.DeepEqual(got.Availability["1"], []string{"morning", "evening"}) {
		t.Fatalf("слоты должны сохранять порядок без дубликатов: %v", got.Availability["1"])
	}
}

func TestNormalizeKeepsNilAvailability(t *testing.T) {
	got := Normalize(domain.UserProfile{UserID: 2})
	if got.Availability != nil {
		t.Fatalf("отсутствующее расписание должно остаться nil")
	}
}

func TestSaveNormalizes(t *testing.T) {
	repo := &stubRepo{}
	service := NewService(repo, zerolog.Nop())
	saved, err := service.Save(context.Background(), domain.UserProfile{
		UserID:    3,
		Favorites: []string{"BlueCross", "BlueCross"},
		Area:      "Omiya",
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(saved.Favorites) != 1 || saved.Area != "Omiya" {
		t.Fatalf("анкета должна нормализоваться перед сохранением: %+v", saved)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatalf("время обновления должно проставляться")
	}
}
