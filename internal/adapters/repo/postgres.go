package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.ProfileRepo = (*Postgres)(nil)
	_ domain.PostRepo    = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// GetProfile реализует domain.ProfileRepo.
func (p *Postgres) GetProfile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var (
		profile         domain.UserProfile
		availabilityRaw []byte
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT user_id, favorites, COALESCE(area, ''), availability, created_at, updated_at
FROM profiles
WHERE user_id = $1
`, userID).Scan(&profile.UserID, &profile.Favorites, &profile.Area, &availabilityRaw, &profile.CreatedAt, &profile.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "profiles_select", "profiles", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, domain.ErrProfileNotFound
		}
		return domain.UserProfile{}, err
	}
	if len(availabilityRaw) > 0 {
		if err := json.Unmarshal(availabilityRaw, &profile.Availability); err != nil {
			return domain.UserProfile{}, err
		}
	}
	return profile, nil
}

// SaveProfile реализует domain.ProfileRepo. Повторное сохранение перезаписывает
// анкету целиком.
func (p *Postgres) SaveProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var availabilityRaw []byte
	if profile.Availability != nil {
		raw, err := json.Marshal(profile.Availability)
		if err != nil {
			return domain.UserProfile{}, err
		}
		availabilityRaw = raw
	}

	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO profiles (user_id, favorites, area, availability, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
	favorites = EXCLUDED.favorites,
	area = EXCLUDED.area,
	availability = EXCLUDED.availability,
	updated_at = now()
RETURNING user_id, favorites, COALESCE(area, ''), created_at, updated_at
`, profile.UserID, profile.Favorites, profile.Area, availabilityRaw).
		Scan(&profile.UserID, &profile.Favorites, &profile.Area, &profile.CreatedAt, &profile.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "profiles_upsert", "profiles", start, err)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// SavePost реализует domain.PostRepo.
func (p *Postgres) SavePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO posts (id, user_id, body, status, character, sticker_type, area_masked, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
`, post.ID, post.UserID, post.Text, post.Status, post.Character, post.StickerType, post.AreaMasked, post.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "posts_insert", "posts", start, err)
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// ListRecent реализует domain.PostRepo: новые первыми, публикации без
// времени в конце.
func (p *Postgres) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, body, status, character, sticker_type, COALESCE(area_masked, ''), created_at
FROM posts
ORDER BY created_at DESC NULLS LAST
LIMIT $1
`, limit)
	metrics.ObserveNetworkRequest("postgres", "posts_select_recent", "posts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Text, &post.Status, &post.Character, &post.StickerType, &post.AreaMasked, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// CountPosts реализует domain.PostRepo.
func (p *Postgres) CountPosts(ctx context.Context) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var count int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "posts_count", "posts", start, err)
	if err != nil {
		return 0, err
	}
	return count, nil
}
