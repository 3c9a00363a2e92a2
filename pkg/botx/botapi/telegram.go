// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Semior001/newsreader/pkg/botx"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// Telegram receives messages and inline button presses from telegram
// and sends responses back.
type Telegram struct {
	log     *slog.Logger
	api     *tgbotapi.BotAPI
	updates chan botx.Request
	done    chan struct{}
}

// NewTelegram returns a new telegram bot controller.
func NewTelegram(lg *slog.Logger, token string, bufferSize int) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	return &Telegram{
		log:     lg,
		api:     api,
		updates: make(chan botx.Request, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Run runs telegram bot listener until Stop is called.
// Updates channel is closed when Run returns.
func (b *Telegram) Run() {
	defer close(b.updates)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range b.api.GetUpdatesChan(u) {
		req, ok := b.request(update)
		if !ok {
			continue
		}

		select {
		case b.updates <- req:
		case <-b.done:
			b.log.Debug("listener is stopped, dropping update", slog.String("chat_id", req.Chat.ID))
		}
	}
}

func (b *Telegram) request(update tgbotapi.Update) (botx.Request, bool) {
	if cb := update.CallbackQuery; cb != nil {
		// telegram shows a spinner on the button until the query is answered
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("failed to answer callback query", slog.Any("err", err))
		}

		if cb.Message == nil || cb.Message.Chat == nil || cb.Data == "" {
			return botx.Request{}, false
		}

		return botx.Request{
			MessageID: strconv.Itoa(cb.Message.MessageID),
			Chat: botx.Chat{
				ID:       strconv.FormatInt(cb.Message.Chat.ID, 10),
				Username: cb.Message.Chat.UserName,
			},
			Text:     cb.Data,
			Callback: true,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return botx.Request{}, false
	}

	return botx.Request{
		MessageID: strconv.Itoa(msg.MessageID),
		Chat: botx.Chat{
			ID:       strconv.FormatInt(msg.Chat.ID, 10),
			Username: msg.Chat.UserName,
		},
		Text: msg.Text,
	}, true
}

// Stop stops telegram bot listener.
func (b *Telegram) Stop() {
	close(b.done)
	b.api.StopReceivingUpdates()
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SendMessage sends message to telegram user, or replaces
// the buttons of the existing message if EditMessageID is set.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	if resp.EditMessageID != "" {
		msgID, err := strconv.Atoi(resp.EditMessageID)
		if err != nil {
			return fmt.Errorf("parse edit message id: %w", err)
		}

		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, keyboard(resp.Buttons))
		if _, err = b.api.Request(edit); err != nil {
			return fmt.Errorf("edit message markup: %w", err)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if len(resp.Buttons) > 0 {
		msg.ReplyMarkup = keyboard(resp.Buttons)
	}
	if resp.ReplyToMessageID != "" {
		if msg.ReplyToMessageID, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
			return fmt.Errorf("parse reply to message id: %w", err)
		}
	}

	if _, err = b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func keyboard(rows [][]botx.Button) tgbotapi.InlineKeyboardMarkup {
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		kb = append(kb, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}
