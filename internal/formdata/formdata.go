package formdata

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	relay_go "senda/relay"
)

const fallbackName = "file"

type UploadFile struct {
	// User supplied, display only
	OriginalName string
	// Content-Type of the part as sent by the client
	DeclaredType string
	Size         int64
	Open         func() (multipart.File, error)
}

// ParseFiles collects file parts of the "files" field in submission order.
// Parts of other fields are ignored.
func ParseFiles(form *multipart.Form) []*UploadFile {
	if form == nil {
		return nil
	}

	headers := form.File[relay_go.FilesField]
	parsed := make([]*UploadFile, 0, len(headers))

	for _, h := range headers {
		parsed = append(parsed, &UploadFile{
			OriginalName: displayName(h.Filename),
			DeclaredType: h.Header.Get("Content-Type"),
			Size:         h.Size,
			Open:         h.Open,
		})
	}

	return parsed
}

func displayName(name string) string {
	// Some clients send full windows paths
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return fallbackName
	}
	return name
}
