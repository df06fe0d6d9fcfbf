package models

// UploadedFile is one file from the multipart form. Content is shared
// read-only between conversion workers and must not be modified.
type UploadedFile struct {
	Name    string
	Content []byte
}

func (f UploadedFile) Size() int64 {
	return int64(len(f.Content))
}
