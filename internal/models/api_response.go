package models

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ConversionFailure is the error payload for a rejected batch.
type ConversionFailure struct {
	BatchID string        `json:"batch_id"`
	File    string        `json:"file,omitempty"`
	Failed  []SkippedFile `json:"failed,omitempty"`
}
