package notify

import (
	"context"

	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
)

// LogNotifier пишет пинг в лог вместо внешнего канала. Для dev-окружения
// без токена бота.
type LogNotifier struct {
	log zerolog.Logger
}

var _ domain.Notifier = (*LogNotifier)(nil)

// NewLog создаёт лог-нотификатор.
func NewLog(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Ping всегда подтверждает доставку.
func (n *LogNotifier) Ping(_ context.Context, job domain.NotifyJob) (bool, error) {
	n.log.Info().Str("post", job.PostID).Str("character", job.Character).Str("area", job.Area).Msg("пинг (лог)")
	return true, nil
}
