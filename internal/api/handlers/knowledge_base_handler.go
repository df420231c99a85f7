package handlers

import (
	"kbbot/internal/dto"
	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type KnowledgeBaseHandler struct {
	kbService *service.KnowledgeBaseService
	logger    *zap.Logger
}

func NewKnowledgeBaseHandler(kbService *service.KnowledgeBaseService, logger *zap.Logger) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{
		kbService: kbService,
		logger:    logger,
	}
}

// ListKnowledgeBases godoc
// @Summary List the knowledge bases of a bot
// @Tags knowledge-bases
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=[]dto.KnowledgeBaseResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/knowledge-bases [get]
func (h *KnowledgeBaseHandler) ListKnowledgeBases(c *fiber.Ctx) error {
	botID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	kbs, err := h.kbService.ListByBot(c.Context(), botID)
	if err != nil {
		return serviceError(c, h.logger, err, "list knowledge bases")
	}

	resp := make([]dto.KnowledgeBaseResponse, 0, len(kbs))
	for _, kb := range kbs {
		resp = append(resp, dto.NewKnowledgeBaseResponse(kb))
	}
	return ok(c, fiber.StatusOK, resp)
}

// CreateKnowledgeBase godoc
// @Summary Create a knowledge base for a bot
// @Tags knowledge-bases
// @Accept json
// @Produce json
// @Param id path int true "Bot ID"
// @Param request body dto.CreateKnowledgeBaseRequest true "Knowledge base"
// @Security Bearer
// @Success 201 {object} dto.Response{data=dto.KnowledgeBaseResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/knowledge-bases [post]
func (h *KnowledgeBaseHandler) CreateKnowledgeBase(c *fiber.Ctx) error {
	botID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	kb, err := h.kbService.Create(c.Context(), botID, &req)
	if err != nil {
		return serviceError(c, h.logger, err, "create knowledge base")
	}
	return ok(c, fiber.StatusCreated, dto.NewKnowledgeBaseResponse(kb))
}

// GetKnowledgeBase godoc
// @Summary Get a knowledge base
// @Tags knowledge-bases
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.KnowledgeBaseResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id} [get]
func (h *KnowledgeBaseHandler) GetKnowledgeBase(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	kb, err := h.kbService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "get knowledge base")
	}
	return ok(c, fiber.StatusOK, dto.NewKnowledgeBaseResponse(kb))
}

// DeleteKnowledgeBase godoc
// @Summary Delete a knowledge base
// @Description Deletes the knowledge base with its documents and chunks
// @Tags knowledge-bases
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Security Bearer
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id} [delete]
func (h *KnowledgeBaseHandler) DeleteKnowledgeBase(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.kbService.Delete(c.Context(), id); err != nil {
		return serviceError(c, h.logger, err, "delete knowledge base")
	}
	return okMessage(c, "Knowledge base deleted successfully")
}

// KnowledgeBaseStats godoc
// @Summary Knowledge base statistics
// @Tags knowledge-bases
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.StatsResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id}/stats [get]
func (h *KnowledgeBaseHandler) KnowledgeBaseStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	kb, stats, err := h.kbService.Stats(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "get knowledge base stats")
	}

	resp := dto.NewStatsResponse(stats)
	resp.KnowledgeBaseID = kb.ID
	resp.Name = kb.Name
	return ok(c, fiber.StatusOK, resp)
}

// BotStats godoc
// @Summary Statistics over all knowledge bases of a bot
// @Tags knowledge-bases
// @Produce json
// @Param id path int true "Bot ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.StatsResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/stats [get]
func (h *KnowledgeBaseHandler) BotStats(c *fiber.Ctx) error {
	botID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.kbService.BotStats(c.Context(), botID)
	if err != nil {
		return serviceError(c, h.logger, err, "get bot stats")
	}
	return ok(c, fiber.StatusOK, dto.NewStatsResponse(stats))
}

// Search godoc
// @Summary Search a knowledge base
// @Description Ranks the processed chunks of a knowledge base against a query
// @Tags search
// @Accept json
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Param request body dto.SearchRequest true "Query"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.SearchResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id}/search [post]
func (h *KnowledgeBaseHandler) Search(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	matches, err := h.kbService.Search(c.Context(), id, req.Query, req.MaxResults)
	if err != nil {
		return serviceError(c, h.logger, err, "search knowledge base")
	}

	resp := dto.SearchResponse{Query: req.Query, Results: make([]dto.SearchResult, 0, len(matches))}
	for _, m := range matches {
		resp.Results = append(resp.Results, dto.SearchResult{
			Chunk: dto.NewChunkPreview(m.Chunk),
			Document: dto.SearchDocument{
				ID:       m.Document.ID,
				Filename: m.Document.OriginalFilename,
				FileType: string(m.Document.FileType),
			},
			Score: m.Score,
		})
	}
	return ok(c, fiber.StatusOK, resp)
}

// Ask godoc
// @Summary Ask a bot a question
// @Description Produces the reply the bot would send in chat, without the fallback text
// @Tags search
// @Accept json
// @Produce json
// @Param id path int true "Bot ID"
// @Param request body dto.AskRequest true "Question"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.AskResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/bots/{id}/ask [post]
func (h *KnowledgeBaseHandler) Ask(c *fiber.Ctx) error {
	botID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil || req.Query == "" {
		return fail(c, fiber.StatusBadRequest, "Query is required")
	}

	answer, found, err := h.kbService.Ask(c.Context(), botID, req.Query)
	if err != nil {
		return serviceError(c, h.logger, err, "answer question")
	}
	return ok(c, fiber.StatusOK, dto.AskResponse{Query: req.Query, Found: found, Answer: answer})
}
