package dto

import (
	"time"

	"kbbot/internal/models"
)

type CreateBotRequest struct {
	Name        string `json:"name"`
	Token       string `json:"token"`
	Username    string `json:"username"`
	Description string `json:"description"`
}

// UpdateBotRequest changes only the fields that are present.
type UpdateBotRequest struct {
	Name        *string `json:"name"`
	Token       *string `json:"token"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// BotResponse never carries the platform token.
type BotResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Username            string `json:"username"`
	Description         string `json:"description"`
	IsActive            bool   `json:"is_active"`
	KnowledgeBasesCount int    `json:"knowledge_bases_count"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

func NewBotResponse(bot *models.Bot) BotResponse {
	return BotResponse{
		ID:                  bot.ID,
		Name:                bot.Name,
		Username:            bot.Username,
		Description:         bot.Description,
		IsActive:            bot.IsActive,
		KnowledgeBasesCount: bot.KnowledgeBasesCount,
		CreatedAt:           bot.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           bot.UpdatedAt.Format(time.RFC3339),
	}
}

type BotStatusResponse struct {
	BotID     int64  `json:"bot_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	IsRunning bool   `json:"is_running"`
	IsActive  bool   `json:"is_active"`
}

type RunningBotsResponse struct {
	RunningBots []int64 `json:"running_bots"`
	Count       int     `json:"count"`
}
