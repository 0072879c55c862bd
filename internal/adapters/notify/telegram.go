package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"sticker-radar/internal/domain"
	"sticker-radar/internal/infra/metrics"
)

// TelegramNotifier отправляет пинги в общий чат охотников через бота.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ domain.Notifier = (*TelegramNotifier)(nil)

// NewTelegram создаёт нотификатор.
func NewTelegram(bot *tgbotapi.BotAPI, chatID int64, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}
}

// Ping отправляет короткое сообщение о свежей публикации. Возвращает
// подтверждение доставки; сбой здесь никак не влияет на рекомендации.
func (n *TelegramNotifier) Ping(ctx context.Context, job domain.NotifyJob) (bool, error) {
	text := fmt.Sprintf("New report: %s", job.Character)
	if job.Area != "" {
		text += fmt.Sprintf(" in %s", job.Area)
	}
	if !job.CreatedAt.IsZero() {
		created := job.CreatedAt
		text += fmt.Sprintf(" (%s)", domain.RelativeTime(&created, time.Now().UTC()))
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	start := time.Now()
	_, err := n.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", "notify", start, err)
	if err != nil {
		metrics.NotifySendErrors.Inc()
		n.log.Error().Err(err).Str("post", job.PostID).Msg("уведомление не доставлено")
		return false, err
	}
	return true, nil
}
