// Package channel connects the selection engine to Telegram: inbound
// /suggest and /history commands, outbound daily announcements.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/larkspurlane/starterbot/internal/config"
	"github.com/larkspurlane/starterbot/internal/daily"
)

// historyCharBudget caps a /history reply below Telegram's 4096-char
// message limit. Lines are appended until the next one would overflow.
const historyCharBudget = 3500

// TelegramBot is the slice of the bot API the channel uses; tests substitute
// a fake.
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper wraps tgbotapi.BotAPI to implement TelegramBot
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances (allows mocking)
type BotFactory func(token, apiEndpoint string, client *http.Client) (TelegramBot, error)

var defaultBotFactory BotFactory = func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// TelegramChannel serves suggestion and history commands and delivers the
// daily announcement to the configured chat. It implements daily.Announcer.
type TelegramChannel struct {
	token      string
	chatID     int64
	allowFrom  []string
	proxy      string
	svc        *daily.Service
	bot        TelegramBot
	botFactory BotFactory
	cancel     context.CancelFunc
}

func NewTelegramChannel(cfg config.TelegramConfig, svc *daily.Service) (*TelegramChannel, error) {
	return NewTelegramChannelWithFactory(cfg, svc, defaultBotFactory)
}

// NewTelegramChannelWithFactory creates a TelegramChannel with a custom bot
// factory (for testing).
func NewTelegramChannelWithFactory(cfg config.TelegramConfig, svc *daily.Service, factory BotFactory) (*TelegramChannel, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram announce chat id is required")
	}
	return &TelegramChannel{
		token:      cfg.Token,
		chatID:     cfg.ChatID,
		allowFrom:  cfg.AllowFrom,
		proxy:      cfg.Proxy,
		svc:        svc,
		botFactory: factory,
	}, nil
}

func (t *TelegramChannel) initBot() error {
	client := http.DefaultClient
	if t.proxy != "" {
		proxyURL, err := url.Parse(t.proxy)
		if err != nil {
			return fmt.Errorf("parse proxy url: %w", err)
		}
		client = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}

	bot, err := t.botFactory(t.token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot = bot
	log.Printf("[telegram] authorized as @%s", bot.GetSelf().UserName)
	return nil
}

func (t *TelegramChannel) Start(ctx context.Context) error {
	if err := t.initBot(); err != nil {
		return err
	}

	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update := <-updates:
				if update.Message == nil {
					continue
				}
				t.handleMessage(update.Message)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("[telegram] polling started")
	return nil
}

func (t *TelegramChannel) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	log.Printf("[telegram] stopped")
}

func (t *TelegramChannel) isAllowed(senderID string) bool {
	if len(t.allowFrom) == 0 {
		return true
	}
	for _, id := range t.allowFrom {
		if id == senderID {
			return true
		}
	}
	return false
}

func (t *TelegramChannel) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	senderID := strconv.FormatInt(msg.From.ID, 10)
	if !t.isAllowed(senderID) {
		log.Printf("[telegram] rejected message from %s (%s)", senderID, msg.From.UserName)
		return
	}

	fields := strings.Fields(msg.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return
	}
	cmd := fields[0]
	// strip a bot-mention suffix like /suggest@starterbot
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/suggest":
		t.handleSuggest(msg, senderID, fields[1:])
	case "/history":
		t.handleHistory(msg, fields[1:])
	case "/today":
		t.handleToday(msg)
	case "/start", "/help":
		t.reply(msg, "Commands:\n/suggest <word> - queue a 5-letter starter\n/history [days] - past starters (default 14)\n/today - the most recent starter")
	}
}

func (t *TelegramChannel) handleSuggest(msg *tgbotapi.Message, senderID string, args []string) {
	if len(args) != 1 {
		t.reply(msg, "Usage: /suggest <5-letter word>")
		return
	}
	w, err := t.svc.SubmitSuggestion(senderID, args[0])
	if err != nil {
		t.reply(msg, rejectionText(err))
		return
	}
	t.reply(msg, fmt.Sprintf("Queued %q.", w))
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, daily.ErrInvalidFormat):
		return "Rejected: provide a 5-letter a-z word."
	case errors.Is(err, daily.ErrNotInLexicon):
		return "Rejected: not in the word list."
	case errors.Is(err, daily.ErrAlreadyUsed):
		return "Rejected: already used previously."
	case errors.Is(err, daily.ErrAlreadyQueued):
		return "Already queued."
	}
	return "Rejected."
}

func (t *TelegramChannel) handleHistory(msg *tgbotapi.Message, args []string) {
	days := daily.DefaultHistoryDays
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil {
			days = parsed
		}
	}
	if days < 1 {
		days = 1
	}
	if days > daily.MaxHistoryDays {
		days = daily.MaxHistoryDays
	}
	t.reply(msg, formatHistory(t.svc.History(days), days))
}

func (t *TelegramChannel) handleToday(msg *tgbotapi.Message) {
	rows := t.svc.History(1)
	if len(rows) == 0 {
		t.reply(msg, "No starter selected yet.")
		return
	}
	t.reply(msg, fmt.Sprintf("%s: %s", rows[0].Date, rows[0].Word))
}

func (t *TelegramChannel) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := t.bot.Send(out); err != nil {
		log.Printf("[telegram] reply failed: %v", err)
	}
}

// Announce posts the selection for date to the configured chat, hiding the
// word behind a spoiler. Safe to call again for the same date.
func (t *TelegramChannel) Announce(ctx context.Context, date, word, suggestedBy string) error {
	header := tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2,
		fmt.Sprintf("Tomorrow's starter (%s) is:", date))
	text := header + " ||" + tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, word) + "||"
	if suggestedBy != "" {
		text += fmt.Sprintf("\nSuggested by [a subscriber](tg://user?id=%s)", suggestedBy)
	}

	out := tgbotapi.NewMessage(t.chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := t.bot.Send(out); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}
	log.Printf("[telegram] announced starter for %s", date)
	return nil
}
