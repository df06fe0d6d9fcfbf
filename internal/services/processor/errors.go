package processor

import (
	"errors"
	"fmt"

	"github.com/phambaophuc/image-converter/internal/models"
)

var (
	ErrNoValidInput      = errors.New("no valid input files")
	ErrDecode            = errors.New("failed to decode image")
	ErrEncode            = errors.New("failed to encode image")
	ErrConversionTimeout = errors.New("conversion timed out")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

// NoValidInputError rejects a request before any conversion starts.
type NoValidInputError struct {
	Received int
}

func (e *NoValidInputError) Error() string {
	if e.Received == 0 {
		return "no files uploaded"
	}
	return fmt.Sprintf("none of the %d uploaded files has a supported extension", e.Received)
}

func (e *NoValidInputError) Unwrap() error {
	return ErrNoValidInput
}

type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %q: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

type EncodeError struct {
	File   string
	Format models.Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode image %q as %s: %v", e.File, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() []error {
	return []error{ErrEncode, e.Err}
}

// TimeoutError is returned when one file exceeds the per-file conversion limit.
type TimeoutError struct {
	File  string
	Limit string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conversion of %q exceeded %s", e.File, e.Limit)
}

func (e *TimeoutError) Unwrap() error {
	return ErrConversionTimeout
}

// FileName extracts the offending file from a conversion error, if any.
func FileName(err error) string {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.File
	}
	var encodeErr *EncodeError
	if errors.As(err, &encodeErr) {
		return encodeErr.File
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr.File
	}
	return ""
}
