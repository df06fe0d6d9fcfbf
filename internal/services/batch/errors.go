package batch

import (
	"fmt"

	"github.com/phambaophuc/image-converter/internal/models"
)

// BatchError rejects a whole batch. File is the first failing file in upload
// order and Err its cause; Failures lists every file that failed.
type BatchError struct {
	File      string
	Err       error
	Failures  []models.SkippedFile
	AllFailed bool
}

func (e *BatchError) Error() string {
	if e.AllFailed && len(e.Failures) > 1 {
		return fmt.Sprintf("all %d files failed to convert, first %q: %v", len(e.Failures), e.File, e.Err)
	}
	return fmt.Sprintf("conversion of %q failed: %v", e.File, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
