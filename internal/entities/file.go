package entities

import (
	"errors"
)

var (
	ErrNoFiles        = errors.New("no files")
	ErrInvalidIndex   = errors.New("invalid file index")
	ErrFileNotFound   = errors.New("file not found")
	ErrTooManyFiles   = errors.New("validation error: too many files")
	ErrFileTooLarge   = errors.New("validation error: file is too large")
	ErrBatchTooLarge  = errors.New("validation error: upload is too large")
	ErrMimeNotAllowed = errors.New("validation error: file type is not allowed")
	ErrMalformedForm  = errors.New("validation error: malformed multipart form")
	ErrStorage        = errors.New("storage error")
)

// FileRecord describes one uploaded file within a session.
type FileRecord struct {
	// Server-local name inside the upload dir. Never derived from OriginalName
	StorageKey string `json:"filename"`

	// User supplied. Display and Content-Disposition only
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}
