package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
)

type stubPosts struct {
	saved []domain.Post
}

func (s *stubPosts) SavePost(_ context.Context, p domain.Post) (domain.Post, error) {
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *stubPosts) ListRecent(_ context.Context, limit int) ([]domain.Post, error) {
	if limit > len(s.saved) {
		limit = len(s.saved)
	}
	out := make([]domain.Post, 0, limit)
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.saved[i])
	}
	return out, nil
}

func (s *stubPosts) CountPosts(context.Context) (int, error) { return len(s.saved), nil }

type memCache struct {
	store map[string][]byte
}

func newMemCache() *memCache { return &memCache{store: make(map[string][]byte)} }

func (c *memCache) Once(_ string, _ time.Duration, fn func() error) error { return fn() }

func (c *memCache) Set(key string, value []byte, _ time.Duration) error {
	c.store[key] = value
	return nil
}

func (c *memCache) Get(key string) ([]byte, error) {
	v, ok := c.store[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *memCache) Del(key string) error {
	delete(c.store, key)
	return nil
}

type stubQueue struct {
	jobs []domain.NotifyJob
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, job domain.NotifyJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Pop(context.Context) (domain.NotifyJob, error) {
	return domain.NotifyJob{}, errors.New("пусто")
}

func validDraft() domain.PostDraft {
	return domain.PostDraft{
		UserID:      1,
		Text:        "Spotted at the station mall",
		Status:      domain.StatusSeen,
		Character:   "AngelBlue",
		StickerType: "Normal",
		AreaMasked:  "Shinjuku",
	}
}

func TestSubmitAssignsIDAndEnqueues(t *testing.T) {
	posts := &stubPosts{}
	queue := &stubQueue{}
	service := NewService(posts, nil, queue, zerolog.Nop(), 10, 50, time.Second)

	got, err := service.Submit(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("публикация должна получить идентификатор")
	}
	if got.CreatedAt == nil {
		t.Fatalf("публикация должна получить время создания")
	}
	if len(queue.jobs) != 1 || queue.jobs[0].PostID != got.ID {
		t.Fatalf("ожидали задачу на уведомление для публикации")
	}
}

func TestSubmitQueueFailureDoesNotFail(t *testing.T) {
	posts := &stubPosts{}
	queue := &stubQueue{err: errors.New("брокер недоступен")}
	service := NewService(posts, nil, queue, zerolog.Nop(), 10, 50, time.Second)

	if _, err := service.Submit(context.Background(), validDraft()); err != nil {
		t.Fatalf("сбой очереди не должен отменять публикацию: %v", err)
	}
	if len(posts.saved) != 1 {
		t.Fatalf("публикация должна сохраниться")
	}
}

func TestSubmitValidation(t *testing.T) {
	service := NewService(&stubPosts{}, nil, nil, zerolog.Nop(), 10, 50, time.Second)
	cases := []struct {
		name string
		mut  func(*domain.PostDraft)
		want error
	}{
		{"пустой текст", func(d *domain.PostDraft) { d.Text = "  " }, ErrEmptyText},
		{"статус", func(d *domain.PostDraft) { d.Status = "hovering" }, ErrUnknownStatus},
		{"персонаж", func(d *domain.PostDraft) { d.Character = "Mothra" }, ErrUnknownCharacter},
		{"наклейка", func(d *domain.PostDraft) { d.StickerType = "Hologram" }, ErrUnknownStickerType},
		{"район", func(d *domain.PostDraft) { d.AreaMasked = "Narnia" }, ErrUnknownArea},
	}
	for _, tc := range cases {
		draft := validDraft()
		tc.mut(&draft)
		if _, err := service.Submit(context.Background(), draft); !errors.Is(err, tc.want) {
			t.Fatalf("%s: ожидали %v, получили %v", tc.name, tc.want, err)
		}
	}
}

func TestSubmitAllowsEmptyArea(t *testing.T) {
	service := NewService(&stubPosts{}, nil, nil, zerolog.Nop(), 10, 50, time.Second)
	draft := validDraft()
	draft.AreaMasked = ""
	if _, err := service.Submit(context.Background(), draft); err != nil {
		t.Fatalf("пустой район допустим: %v", err)
	}
}

func TestRecentUsesCache(t *testing.T) {
	posts := &stubPosts{}
	cache := newMemCache()
	service := NewService(posts, cache, nil, zerolog.Nop(), 10, 50, time.Minute)

	if _, err := service.Submit(context.Background(), validDraft()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	first, err := service.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("ожидали 1 публикацию, получили %d", len(first))
	}
	raw, ok := cache.store[cacheKey]
	if !ok {
		t.Fatalf("снапшот должен попасть в кэш")
	}
	var cached []domain.Post
	if err := json.Unmarshal(raw, &cached); err != nil {
		t.Fatalf("снапшот должен быть валидным JSON: %v", err)
	}

	// Подложный снапшот подтверждает, что чтение идёт из кэша.
	fake, _ := json.Marshal([]domain.Post{{ID: "cached"}})
	cache.store[cacheKey] = fake
	second, err := service.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(second) != 1 || second[0].ID != "cached" {
		t.Fatalf("ожидали чтение из кэша")
	}
}

func TestSubmitInvalidatesCache(t *testing.T) {
	posts := &stubPosts{}
	cache := newMemCache()
	service := NewService(posts, cache, nil, zerolog.Nop(), 10, 50, time.Minute)

	if _, err := service.Recent(context.Background(), 0); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if _, err := service.Submit(context.Background(), validDraft()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if _, ok := cache.store[cacheKey]; ok {
		t.Fatalf("публикация должна сбрасывать снапшот")
	}
}

func TestSeedIfEmpty(t *testing.T) {
	posts := &stubPosts{}
	service := NewService(posts, nil, nil, zerolog.Nop(), 10, 50, time.Second)

	if err := service.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.saved) != 2 {
		t.Fatalf("ожидали 2 демо-публикации, получили %d", len(posts.saved))
	}
	if err := service.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.saved) != 2 {
		t.Fatalf("повторный запуск не должен дублировать демо-данные")
	}
}
