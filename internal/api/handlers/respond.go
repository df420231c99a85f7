package handlers

import (
	"errors"
	"strconv"

	"kbbot/internal/dto"
	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Response{Success: true, Data: data})
}

func okMessage(c *fiber.Ctx, message string) error {
	return c.JSON(dto.Response{Success: true, Message: message})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Error: message})
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnsupportedFileType):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError answers with the status the error maps to. Unexpected errors
// are logged and hidden behind a generic message.
func serviceError(c *fiber.Ctx, logger *zap.Logger, err error, action string) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("Failed to "+action, zap.String("path", c.Path()), zap.Error(err))
		return fail(c, status, "Failed to "+action)
	}
	return fail(c, status, err.Error())
}
