package models

import (
	"strings"
	"time"
)

type FileType string

const (
	FileTypeTXT  FileType = "txt"
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeMD   FileType = "md"
)

// ParseFileType maps a file name or bare extension to a supported FileType.
func ParseFileType(name string) (FileType, bool) {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}
	switch ft := FileType(strings.ToLower(ext)); ft {
	case FileTypeTXT, FileTypePDF, FileTypeDOCX, FileTypeMD:
		return ft, true
	}
	return "", false
}

// Document is an uploaded file. It moves from unprocessed to processed once;
// ProcessingError is set when the last processing attempt failed.
type Document struct {
	ID               int64     `db:"id"`
	Filename         string    `db:"filename"`
	OriginalFilename string    `db:"original_filename"`
	FilePath         string    `db:"file_path"`
	FileType         FileType  `db:"file_type"`
	FileSize         int64     `db:"file_size"`
	KnowledgeBaseID  int64     `db:"knowledge_base_id"`
	Processed        bool      `db:"processed"`
	ProcessingError  string    `db:"processing_error"`
	CreatedAt        time.Time `db:"created_at"`
}
