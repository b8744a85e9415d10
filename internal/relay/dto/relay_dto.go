package dto

import "senda/relay/internal/entities"

type CreatedSession struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
	URL       string `json:"url"`
}

type CodeLookup struct {
	SessionID string `json:"sessionId"`
	Valid     bool   `json:"valid"`
}

type UploadResult struct {
	Success bool                  `json:"success"`
	Files   []entities.FileRecord `json:"files"`
}
