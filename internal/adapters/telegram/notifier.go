package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// Notifier sends new-signal alerts to a Telegram chat.
// Disabled when no bot token is configured; NotifyNewSignal then does
// nothing, so callers never need to check.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewNotifier creates new Telegram notifier. Returns a disabled notifier
// when the token or chat id is missing.
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		logger.Info("telegram notifier disabled (no token or chat id)")
		return &Notifier{}, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", api.Self.UserName))

	return &Notifier{
		api:     api,
		chatID:  cfg.ChatID,
		enabled: true,
	}, nil
}

// IsEnabled reports whether alerts will actually be sent
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// NotifyNewSignal sends an alert for a newly materialized signal.
// Send failures are logged and swallowed; alerting never interrupts
// the refresh pass.
func (n *Notifier) NotifyNewSignal(signal *models.Signal) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, formatSignal(signal))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		logger.Warn("failed to send signal alert",
			zap.String("signal_id", signal.ID),
			zap.Error(err))
	}
}

func formatSignal(signal *models.Signal) string {
	var b strings.Builder

	emoji := "📊"
	switch signal.Sentiment {
	case models.SentimentBullish:
		emoji = "🟢"
	case models.SentimentBearish:
		emoji = "🔴"
	}

	fmt.Fprintf(&b, "%s *New signal from @%s*\n\n", emoji, signal.AccountHandle)
	fmt.Fprintf(&b, "Tickers: %s\n", strings.Join(signal.Tickers, ", "))
	fmt.Fprintf(&b, "Sentiment: %s (%s confidence)\n", signal.Sentiment, signal.Confidence)

	if signal.EntryPrice != nil {
		fmt.Fprintf(&b, "Entry: %s\n", signal.EntryPrice.String())
	}
	if signal.TargetPrice != nil {
		fmt.Fprintf(&b, "Target: %s\n", signal.TargetPrice.String())
	}
	if signal.StopPrice != nil {
		fmt.Fprintf(&b, "Stop: %s\n", signal.StopPrice.String())
	}
	if signal.TweetURL != "" {
		fmt.Fprintf(&b, "\n%s", signal.TweetURL)
	}

	return b.String()
}
