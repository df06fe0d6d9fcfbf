package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const archivePrefix = "converted_images_"

// GenerateArchiveFilename names the download after the local wall clock.
func GenerateArchiveFilename(t time.Time) string {
	return fmt.Sprintf("%s%s.zip", archivePrefix, t.Format("20060102150405"))
}

// ContentDisposition builds an attachment header value for filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

// JoinEscaped URL-escapes each name so the result is safe in a header value.
func JoinEscaped(names []string) string {
	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = url.PathEscape(name)
	}
	return strings.Join(escaped, ",")
}
