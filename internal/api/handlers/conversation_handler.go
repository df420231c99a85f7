package handlers

import (
	"kbbot/internal/dto"
	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	convService *service.ConversationService
	logger      *zap.Logger
}

func NewConversationHandler(convService *service.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		convService: convService,
		logger:      logger,
	}
}

// ListConversations godoc
// @Summary List the chat log of a bot
// @Description Newest first
// @Tags conversations
// @Produce json
// @Param id path int true "Bot ID"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.ConversationListResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/conversations [get]
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	botID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", service.DefaultPerPage)

	result, err := h.convService.List(c.Context(), botID, page, perPage)
	if err != nil {
		return serviceError(c, h.logger, err, "list conversations")
	}

	resp := dto.ConversationListResponse{
		Conversations: make([]dto.ConversationResponse, 0, len(result.Conversations)),
		Pagination: dto.Pagination{
			Page:    result.Page,
			PerPage: result.PerPage,
			Total:   result.Total,
			Pages:   result.Pages,
		},
	}
	for _, conv := range result.Conversations {
		resp.Conversations = append(resp.Conversations, dto.NewConversationResponse(conv))
	}
	return ok(c, fiber.StatusOK, resp)
}
