package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramConnector long-polls the Telegram Bot API.
type TelegramConnector struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

// NewTelegramConnectFunc returns a ConnectFunc that validates the token with
// a getMe call before polling.
func NewTelegramConnectFunc(pollTimeout int, logger *zap.Logger) ConnectFunc {
	return func(token string) (Connector, error) {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate bot: %w", err)
		}
		logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
		return &TelegramConnector{api: api, pollTimeout: pollTimeout, logger: logger}, nil
	}
}

func (c *TelegramConnector) Run(ctx context.Context, handle HandleFunc) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			msg := Message{
				ChatID:  update.Message.Chat.ID,
				Text:    update.Message.Text,
				Command: update.Message.Command(),
			}
			if from := update.Message.From; from != nil {
				msg.UserID = from.ID
				msg.Username = from.UserName
			}

			reply := handle(ctx, msg)
			if reply == "" {
				continue
			}
			if _, err := c.api.Send(tgbotapi.NewMessage(msg.ChatID, reply)); err != nil {
				c.logger.Warn("Failed to send reply", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
			}
		}
	}
}
