package handlers

import (
	"errors"

	"kbbot/internal/bot"
	"kbbot/internal/dto"
	"kbbot/internal/models"
	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BotHandler struct {
	botService *service.BotService
	supervisor *bot.Supervisor
	logger     *zap.Logger
}

func NewBotHandler(botService *service.BotService, supervisor *bot.Supervisor, logger *zap.Logger) *BotHandler {
	return &BotHandler{
		botService: botService,
		supervisor: supervisor,
		logger:     logger,
	}
}

// ListBots godoc
// @Summary List bots
// @Tags bots
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.Response{data=[]dto.BotResponse}
// @Router /api/v1/bots [get]
func (h *BotHandler) ListBots(c *fiber.Ctx) error {
	bots, err := h.botService.List(c.Context())
	if err != nil {
		return serviceError(c, h.logger, err, "list bots")
	}

	resp := make([]dto.BotResponse, 0, len(bots))
	for _, b := range bots {
		resp = append(resp, dto.NewBotResponse(b))
	}
	return ok(c, fiber.StatusOK, resp)
}

// CreateBot godoc
// @Summary Register a bot
// @Description Register a chat bot with its platform token
// @Tags bots
// @Accept json
// @Produce json
// @Param request body dto.CreateBotRequest true "Bot"
// @Security Bearer
// @Success 201 {object} dto.Response{data=dto.BotResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/bots [post]
func (h *BotHandler) CreateBot(c *fiber.Ctx) error {
	var req dto.CreateBotRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	b, err := h.botService.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			return fail(c, fiber.StatusConflict, "Bot with this username already exists")
		}
		return serviceError(c, h.logger, err, "create bot")
	}

	return ok(c, fiber.StatusCreated, dto.NewBotResponse(b))
}

// GetBot godoc
// @Summary Get a bot
// @Tags bots
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.BotResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id} [get]
func (h *BotHandler) GetBot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	b, err := h.botService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "get bot")
	}
	return ok(c, fiber.StatusOK, dto.NewBotResponse(b))
}

// UpdateBot godoc
// @Summary Update a bot
// @Description Only the fields present in the body are changed
// @Tags bots
// @Accept json
// @Produce json
// @Param id path int true "Bot ID"
// @Param request body dto.UpdateBotRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.BotResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id} [put]
func (h *BotHandler) UpdateBot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateBotRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	b, err := h.botService.Update(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, h.logger, err, "update bot")
	}
	return ok(c, fiber.StatusOK, dto.NewBotResponse(b))
}

// DeleteBot godoc
// @Summary Delete a bot
// @Description Stops the bot if it is running, then deletes it with its knowledge bases
// @Tags bots
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id} [delete]
func (h *BotHandler) DeleteBot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if h.supervisor.IsRunning(id) {
		if err := h.supervisor.Stop(c.Context(), id); err != nil && !errors.Is(err, bot.ErrNotRunning) {
			return serviceError(c, h.logger, err, "stop bot")
		}
	}

	if err := h.botService.Delete(c.Context(), id); err != nil {
		return serviceError(c, h.logger, err, "delete bot")
	}
	return okMessage(c, "Bot deleted successfully")
}

// StartBot godoc
// @Summary Start a bot
// @Description Connects the bot to the messaging platform and starts answering messages
// @Tags bot-control
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.BotStatusResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/start [post]
func (h *BotHandler) StartBot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.supervisor.Start(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, bot.ErrAlreadyRunning):
			return fail(c, fiber.StatusConflict, "Bot is already running")
		case errors.Is(err, bot.ErrConnect):
			h.logger.Warn("Bot failed to connect", zap.Int64("bot_id", id), zap.Error(err))
			return fail(c, fiber.StatusBadGateway, "Failed to connect bot to Telegram")
		default:
			return serviceError(c, h.logger, err, "start bot")
		}
	}

	return h.status(c, id)
}

// StopBot godoc
// @Summary Stop a bot
// @Tags bot-control
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.BotStatusResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/stop [post]
func (h *BotHandler) StopBot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.supervisor.Stop(c.Context(), id); err != nil {
		if errors.Is(err, bot.ErrNotRunning) {
			return fail(c, fiber.StatusConflict, "Bot is not running")
		}
		return serviceError(c, h.logger, err, "stop bot")
	}

	return h.status(c, id)
}

// BotStatus godoc
// @Summary Get bot status
// @Tags bot-control
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.BotStatusResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/status [get]
func (h *BotHandler) BotStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.status(c, id)
}

func (h *BotHandler) status(c *fiber.Ctx, id int64) error {
	st, err := h.supervisor.Status(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "get bot status")
	}
	return ok(c, fiber.StatusOK, newBotStatusResponse(st.Bot, st.IsRunning))
}

// AllStatuses godoc
// @Summary Get the status of every bot
// @Tags bot-control
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.Response{data=[]dto.BotStatusResponse}
// @Router /api/v1/bots/status [get]
func (h *BotHandler) AllStatuses(c *fiber.Ctx) error {
	statuses, err := h.supervisor.StatusAll(c.Context())
	if err != nil {
		return serviceError(c, h.logger, err, "get bot statuses")
	}

	resp := make([]dto.BotStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		resp = append(resp, newBotStatusResponse(st.Bot, st.IsRunning))
	}
	return ok(c, fiber.StatusOK, resp)
}

// RunningBots godoc
// @Summary List running bot IDs
// @Tags bot-control
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.RunningBotsResponse}
// @Router /api/v1/bots/running [get]
func (h *BotHandler) RunningBots(c *fiber.Ctx) error {
	ids := h.supervisor.Running()
	return ok(c, fiber.StatusOK, dto.RunningBotsResponse{RunningBots: ids, Count: len(ids)})
}

func newBotStatusResponse(b *models.Bot, running bool) dto.BotStatusResponse {
	return dto.BotStatusResponse{
		BotID:     b.ID,
		Name:      b.Name,
		Username:  b.Username,
		IsRunning: running,
		IsActive:  b.IsActive,
	}
}
