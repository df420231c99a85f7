package dto

import (
	"time"

	"kbbot/internal/models"
)

type ConversationResponse struct {
	ID               int64  `json:"id"`
	TelegramUserID   string `json:"telegram_user_id"`
	TelegramUsername string `json:"telegram_username"`
	Message          string `json:"message"`
	Response         string `json:"response"`
	BotID            int64  `json:"bot_id"`
	CreatedAt        string `json:"created_at"`
}

func NewConversationResponse(c *models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:               c.ID,
		TelegramUserID:   c.TelegramUserID,
		TelegramUsername: c.TelegramUsername,
		Message:          c.Message,
		Response:         c.Response,
		BotID:            c.BotID,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
	Pagination    Pagination             `json:"pagination"`
}
