package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// EmailConfig configures the SMTP channel. An empty Host disables it.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	To       string
}

func (c EmailConfig) enabled() bool { return c.Host != "" && c.To != "" }

// TelegramConfig configures the chat channel. An empty token disables it.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (c TelegramConfig) enabled() bool { return c.Token != "" && c.ChatID != 0 }

type dispatcher struct {
	email    EmailConfig
	telegram TelegramConfig

	botOnce sync.Once
	bot     *tgbotapi.BotAPI
	botErr  error
}

// NewDispatcher builds the production dispatcher. Channels with missing
// configuration are skipped at send time rather than failing construction;
// a tracker with no notification channels is still a valid tracker.
func NewDispatcher(email EmailConfig, telegram TelegramConfig) Dispatcher {
	return &dispatcher{email: email, telegram: telegram}
}

// Send delivers the alert on every enabled channel. Channels run in parallel
// and fail independently.
func (d *dispatcher) Send(alert Alert) []ChannelResult {
	var (
		mu      sync.Mutex
		results []ChannelResult
		wg      sync.WaitGroup
	)
	deliver := func(channel string, fn func() error) {
		defer wg.Done()
		err := fn()
		if err != nil {
			log.Error().Err(err).Str("channel", channel).Str("task", alert.TaskName).
				Msg("notification delivery failed")
		} else {
			log.Info().Str("channel", channel).Str("reason", alert.Reason).
				Int("task_id", alert.TaskID).Msg("notification delivered")
		}
		mu.Lock()
		results = append(results, ChannelResult{Channel: channel, Delivered: err == nil, Err: err})
		mu.Unlock()
	}

	if d.email.enabled() {
		wg.Add(1)
		go deliver(ChannelEmail, func() error { return d.sendEmail(alert) })
	}
	if d.telegram.enabled() {
		wg.Add(1)
		go deliver(ChannelTelegram, func() error { return d.sendTelegram(alert) })
	}
	wg.Wait()
	return results
}

func (d *dispatcher) sendEmail(alert Alert) error {
	addr := fmt.Sprintf("%s:%d", d.email.Host, d.email.Port)
	auth := smtp.PlainAuth("", d.email.Username, d.email.Password, d.email.Host)
	msg := strings.Join([]string{
		"From: " + d.email.Sender,
		"To: " + d.email.To,
		"Subject: " + alert.Subject(),
		"",
		alert.Body(),
	}, "\r\n")
	return smtp.SendMail(addr, auth, d.email.Sender, []string{d.email.To}, []byte(msg))
}

func (d *dispatcher) sendTelegram(alert Alert) error {
	d.botOnce.Do(func() {
		d.bot, d.botErr = tgbotapi.NewBotAPI(d.telegram.Token)
	})
	if d.botErr != nil {
		return fmt.Errorf("telegram bot init: %w", d.botErr)
	}
	msg := tgbotapi.NewMessage(d.telegram.ChatID, alert.Body())
	_, err := d.bot.Send(msg)
	return err
}
