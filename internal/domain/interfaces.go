package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound возвращается, когда анкета пользователя не сохранялась.
var ErrProfileNotFound = errors.New("анкета пользователя не найдена")

// ProfileRepo управляет анкетами пользователей.
type ProfileRepo interface {
	GetProfile(ctx context.Context, userID int64) (UserProfile, error)
	SaveProfile(ctx context.Context, profile UserProfile) (UserProfile, error)
}

// PostRepo управляет сообщениями ленты.
type PostRepo interface {
	SavePost(ctx context.Context, post Post) (Post, error)
	ListRecent(ctx context.Context, limit int) ([]Post, error)
	CountPosts(ctx context.Context) (int, error)
}

// NotifyQueue хранит задачи на уведомления.
type NotifyQueue interface {
	Enqueue(ctx context.Context, job NotifyJob) error
	Pop(ctx context.Context) (NotifyJob, error)
}

// Notifier отправляет пинг по внешнему каналу и возвращает подтверждение.
type Notifier interface {
	Ping(ctx context.Context, job NotifyJob) (bool, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	Del(key string) error
}
