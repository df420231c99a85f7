package service

import (
	"errors"

	"kbbot/internal/repository"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrConflict     = repository.ErrConflict
	ErrInvalidInput = errors.New("invalid input")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrNoContent           = errors.New("no text content extracted")
)
