// Package telegram adapts the conversation engine to Telegram. Unlike a
// slash-command bot, every plain text message is fed to the engine; Telegram
// users are keyed as "tg:<user id>" so they never collide with phone-number
// identities.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// MessageHandler processes one inbound message and returns the reply text.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) (string, error)
}

// Bot wraps the Telegram bot API around the conversation engine.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine MessageHandler
	logger *logrus.Logger
}

// NewBot creates a new Telegram bot instance
func NewBot(token string, engine MessageHandler, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{api: api, engine: engine, logger: logger}, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping Telegram bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes incoming updates
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	identity := fmt.Sprintf("tg:%d", message.From.ID)

	b.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user":    identity,
		"text":    message.Text,
	}).Info("Received message")

	reply, err := b.engine.HandleMessage(ctx, identity, message.Text)
	if err != nil {
		b.logger.WithError(err).WithField("user", identity).Error("Message handling failed")
		reply = "An error occurred. Please try again or type 'reset'."
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}
