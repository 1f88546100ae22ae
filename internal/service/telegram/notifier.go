// Package telegram sends signal notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/service/metrics"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Option configures Notifier.
type Option func(*Notifier)

// WithEndpoint overrides the Bot API endpoint format ("https://host/bot%s/%s").
func WithEndpoint(endpoint string) Option {
	return func(n *Notifier) { n.endpoint = endpoint }
}

// WithTimeout sets the HTTP timeout for Bot API calls.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) { n.client = &http.Client{Timeout: d} }
}

// Notifier implements service.Notifier. Tokens come from settings at call
// time, so a bot client is kept per token.
type Notifier struct {
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	bots map[string]*tgbot.BotAPI
}

// New creates a Telegram notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		endpoint: tgbot.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		bots:     make(map[string]*tgbot.BotAPI),
	}
	for _, opt := range opts {
		opt(n)
	}
	metrics.Register()
	return n
}

var _ service.Notifier = (*Notifier)(nil)

// Send posts text to chatID. chatID is a numeric chat id or an @channel name.
func (n *Notifier) Send(ctx context.Context, token, chatID, text string) error {
	token = strings.TrimSpace(token)
	chatID = strings.TrimSpace(chatID)
	if token == "" || chatID == "" {
		return errors.New("telegram token and chat id are required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := n.bot(token)
	if err != nil {
		return err
	}

	var msg tgbot.MessageConfig
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		msg = tgbot.NewMessage(id, text)
	} else {
		msg = tgbot.NewMessageToChannel(chatID, text)
	}
	msg.DisableWebPagePreview = true

	start := time.Now()
	_, err = bot.Send(msg)
	metrics.NotificationLatency.WithLabelValues("telegram").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (n *Notifier) bot(token string) (*tgbot.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if b, ok := n.bots[token]; ok {
		return b, nil
	}
	b, err := tgbot.NewBotAPIWithClient(token, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	n.bots[token] = b
	return b, nil
}

// FormatSignal renders the group message for a signal. Times are shown in the
// session zone.
func FormatSignal(s *models.Signal, session string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	arrow := "⬆️"
	if s.Action == models.ActionSell {
		arrow = "⬇️"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", arrow, s.Pair, s.Action)
	fmt.Fprintf(&b, "Confidence: %d%%\n", s.Confidence)
	fmt.Fprintf(&b, "Window: %s - %s\n", s.StartTime.In(loc).Format("15:04"), s.EndTime.In(loc).Format("15:04"))
	if session != "" {
		fmt.Fprintf(&b, "Session: %s\n", session)
	}
	if s.Analysis != "" {
		fmt.Fprintf(&b, "\n%s", s.Analysis)
	}
	return strings.TrimSpace(b.String())
}

// TestMessage is sent by the connectivity check.
const TestMessage = "✅ FxPulse is connected. Signals will be posted here."
