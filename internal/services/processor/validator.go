package processor

import (
	"path/filepath"
	"strings"

	"github.com/phambaophuc/image-converter/internal/models"
)

type Validator struct {
	extensions map[string]struct{}
}

// NewValidator accepts extensions with the leading dot; nil means models.InputExtensions.
func NewValidator(extensions []string) *Validator {
	if extensions == nil {
		extensions = models.InputExtensions
	}

	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Validator{extensions: set}
}

// Validate keeps the files with a recognized extension, in upload order, and
// lower-cases the requested format. It fails only when nothing qualifies.
func (v *Validator) Validate(files []models.UploadedFile, format string) ([]models.UploadedFile, string, error) {
	if len(files) == 0 {
		return nil, "", &NoValidInputError{}
	}

	valid := make([]models.UploadedFile, 0, len(files))
	for _, file := range files {
		if v.IsSupported(file.Name) {
			valid = append(valid, file)
		}
	}

	if len(valid) == 0 {
		return nil, "", &NoValidInputError{Received: len(files)}
	}

	return valid, strings.ToLower(strings.TrimSpace(format)), nil
}

func (v *Validator) IsSupported(filename string) bool {
	_, ok := v.extensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
