package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
)

const sendInterval = time.Second

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts finished games to a Telegram chat.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	subject  string
	interval time.Duration
	log      *logger.Logger
}

// NewTelegramNotifier connects to the Bot API with token.
func NewTelegramNotifier(token string, chatID int64, subject string) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, subject, &http.Client{Timeout: 10 * time.Second})
}

// NewTelegramNotifierWithEndpoint is NewTelegramNotifier against a custom Bot
// API endpoint ("https://host/bot%s/%s").
func NewTelegramNotifierWithEndpoint(token, endpoint string, chatID int64, subject string, client *http.Client) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("chat ID is required")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return newTelegramNotifier(bot, chatID, subject), nil
}

func newTelegramNotifier(bot sender, chatID int64, subject string) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      bot,
		chatID:   chatID,
		subject:  subject,
		interval: sendInterval,
		log:      logger.Default(),
	}
}

// Notify sends one message per game, or a digest for large batches, pausing
// between messages. A failed send is logged and the remaining messages are
// still sent; the joined errors are returned.
func (n *TelegramNotifier) Notify(games []*game.Game) error {
	msgs := Messages(games, n.subject)
	digest := len(msgs) == 1 && len(games) > 1

	var errs []error
	for i, text := range msgs {
		msg := tgbotapi.NewMessage(n.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.bot.Send(msg); err != nil {
			if digest {
				n.log.Error("Telegram send failed", logger.Fields{"games": len(games)}, err)
				errs = append(errs, fmt.Errorf("sending digest of %d games: %w", len(games), err))
			} else {
				n.log.Error("Telegram send failed", logger.Fields{"game_id": games[i].GameID}, err)
				errs = append(errs, fmt.Errorf("notifying game %d: %w", games[i].GameID, err))
			}
		}

		if i < len(msgs)-1 && n.interval > 0 {
			time.Sleep(n.interval)
		}
	}
	return errors.Join(errs...)
}
