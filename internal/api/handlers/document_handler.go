package handlers

import (
	"kbbot/internal/dto"
	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	docService *service.DocumentService
	logger     *zap.Logger
}

func NewDocumentHandler(docService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// UploadDocument godoc
// @Summary Upload a document to a knowledge base
// @Description Stores a txt, pdf, docx or md file and queues it for chunking
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Param file formData file true "Document file"
// @Security Bearer
// @Success 201 {object} dto.Response{data=dto.DocumentResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id}/documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	kbID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "File is required")
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	doc, err := h.docService.Upload(c.Context(), kbID, file.Filename, src)
	if err != nil {
		return serviceError(c, h.logger, err, "upload document")
	}

	return ok(c, fiber.StatusCreated, dto.NewDocumentResponse(doc))
}

// ListDocuments godoc
// @Summary List the documents of a knowledge base
// @Tags documents
// @Produce json
// @Param id path int true "Knowledge base ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=[]dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/knowledge-bases/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	kbID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	docs, err := h.docService.List(c.Context(), kbID)
	if err != nil {
		return serviceError(c, h.logger, err, "list documents")
	}

	resp := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, dto.NewDocumentResponse(doc))
	}
	return ok(c, fiber.StatusOK, resp)
}

// GetDocument godoc
// @Summary Get a document
// @Description Includes the number of stored chunks
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	doc, chunks, err := h.docService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "get document")
	}

	resp := dto.NewDocumentResponse(doc)
	resp.ChunksCount = &chunks
	return ok(c, fiber.StatusOK, resp)
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Removes the document, its chunks and its stored file
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.docService.Delete(c.Context(), id); err != nil {
		return serviceError(c, h.logger, err, "delete document")
	}
	return okMessage(c, "Document deleted successfully")
}

// ProcessDocument godoc
// @Summary Queue a document for processing
// @Description Processing is a no-op for documents that already have chunks
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Security Bearer
// @Success 202 {object} dto.Response{data=dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id}/process [post]
func (h *DocumentHandler) ProcessDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.docService.Reprocess(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "queue document")
	}
	return ok(c, fiber.StatusAccepted, dto.NewDocumentResponse(doc))
}

// ListChunks godoc
// @Summary List the chunks of a document
// @Description Chunk contents are shortened to a preview
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.Response{data=[]dto.ChunkResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id}/chunks [get]
func (h *DocumentHandler) ListChunks(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	chunks, err := h.docService.Chunks(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "list chunks")
	}

	resp := make([]dto.ChunkResponse, 0, len(chunks))
	for _, chunk := range chunks {
		resp = append(resp, dto.NewChunkPreview(chunk))
	}
	return ok(c, fiber.StatusOK, resp)
}
