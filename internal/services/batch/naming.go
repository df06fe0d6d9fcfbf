package batch

import (
	"fmt"
	"path"
	"strings"

	"github.com/phambaophuc/image-converter/internal/models"
)

// Stem strips any directory and the final extension from an uploaded name.
func Stem(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// EntryNames assigns every file its archive entry name before conversion
// starts. The first file keeps <stem>.<ext>; later files with the same stem
// get <stem>_1.<ext>, <stem>_2.<ext> and so on. Names are unique ignoring case.
func EntryNames(files []models.UploadedFile, format models.Format) []string {
	ext := format.Extension()
	taken := make(map[string]struct{}, len(files))
	names := make([]string, len(files))

	for i, file := range files {
		stem := Stem(file.Name)
		name := stem + "." + ext
		for n := 1; ; n++ {
			if _, exists := taken[strings.ToLower(name)]; !exists {
				break
			}
			name = fmt.Sprintf("%s_%d.%s", stem, n, ext)
		}

		taken[strings.ToLower(name)] = struct{}{}
		names[i] = name
	}

	return names
}
