package models

import "time"

type Conversation struct {
	ID               int64     `db:"id"`
	TelegramUserID   string    `db:"telegram_user_id"`
	TelegramUsername string    `db:"telegram_username"`
	Message          string    `db:"message"`
	Response         string    `db:"response"`
	BotID            int64     `db:"bot_id"`
	CreatedAt        time.Time `db:"created_at"`
}
