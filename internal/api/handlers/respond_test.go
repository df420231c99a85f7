package handlers

import (
	"errors"
	"fmt"
	"testing"

	"kbbot/internal/service"

	"github.com/gofiber/fiber/v2"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, fiber.StatusNotFound},
		{fmt.Errorf("bot 3: %w", service.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: name is required", service.ErrInvalidInput), fiber.StatusBadRequest},
		{fmt.Errorf("%w: \"a.exe\"", service.ErrUnsupportedFileType), fiber.StatusBadRequest},
		{fmt.Errorf("%w: limit is 16 MB", service.ErrFileTooLarge), fiber.StatusRequestEntityTooLarge},
		{fmt.Errorf("failed to create bot: %w", service.ErrConflict), fiber.StatusConflict},
		{errors.New("connection refused"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
