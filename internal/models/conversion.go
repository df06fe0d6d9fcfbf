package models

import "time"

// ConversionResult is the outcome of converting one validated file.
type ConversionResult struct {
	SourceName string
	EntryName  string
	Data       []byte
	Err        error
	Duration   time.Duration
}

func (r ConversionResult) Succeeded() bool {
	return r.Err == nil
}

// SkippedFile is a file left out of the archive under the skip policy.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ArchiveResponse is the finished, sealed archive ready for transmission.
type ArchiveResponse struct {
	BatchID     string
	Filename    string
	ContentType string
	Data        []byte
	Entries     int
	Skipped     []SkippedFile
}
