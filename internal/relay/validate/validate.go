// Package validate decides whether an upload batch may be stored.
package validate

import (
	"fmt"
	"io"
	"mime"
	"strings"

	relay_go "senda/relay"
	"senda/relay/internal/entities"
	"senda/relay/internal/formdata"
	"senda/relay/internal/relay/relayutil"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

type Limits struct {
	MaxFiles     int
	MaxFileSize  int64
	MaxBatchSize int64
	AllowedTypes []string
	SniffContent bool
}

type Validator struct {
	limits  Limits
	allowed map[string]struct{}
}

func New(limits Limits) *Validator {
	allowed := make(map[string]struct{}, len(limits.AllowedTypes))
	for _, t := range limits.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Validator{
		limits:  limits,
		allowed: allowed,
	}
}

// Batch checks count, per-file size, type and total size, in that order.
// It returns the effective MIME type of every file.
func (v *Validator) Batch(files []*formdata.UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, entities.ErrNoFiles
	}

	if len(files) > v.limits.MaxFiles {
		return nil, fmt.Errorf("%w: got %d, max %d", entities.ErrTooManyFiles, len(files), v.limits.MaxFiles)
	}

	types := make([]string, 0, len(files))
	var total int64
	for _, f := range files {
		if f.Size > v.limits.MaxFileSize {
			return nil, fmt.Errorf("%w: %s", entities.ErrFileTooLarge, f.OriginalName)
		}

		mt, err := v.File(f)
		if err != nil {
			return nil, err
		}
		types = append(types, mt)
		total += f.Size
	}

	if total > v.limits.MaxBatchSize {
		return nil, entities.ErrBatchTooLarge
	}

	return types, nil
}

// File resolves the effective MIME type of f and checks it against the allow-list
func (v *Validator) File(f *formdata.UploadFile) (string, error) {
	declared := Normalize(f.DeclaredType)

	var sniffed *mimetype.MIME
	if declared == "" || declared == octetStream || v.limits.SniffContent {
		var err error
		sniffed, err = sniff(f)
		if err != nil {
			return "", err
		}
	}

	if declared == "" || declared == octetStream {
		declared = Normalize(sniffed.String())
	}

	if !v.Allowed(declared) {
		return "", fmt.Errorf("%w: %s", entities.ErrMimeNotAllowed, f.OriginalName)
	}

	if v.limits.SniffContent && !Compatible(sniffed, declared) {
		return "", fmt.Errorf("%w: %s content does not match %s", entities.ErrMimeNotAllowed, f.OriginalName, declared)
	}

	return declared, nil
}

func (v *Validator) Allowed(mimeType string) bool {
	_, ok := v.allowed[mimeType]
	return ok
}

// Normalize lowercases the media type and strips its parameters
func Normalize(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.ToLower(mt)
}

// Compatible reports whether sniffed content may carry the declared type
func Compatible(sniffed *mimetype.MIME, declared string) bool {
	if sniffed == nil {
		return false
	}
	for m := sniffed; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	// Detection of office documents depends on the zip entry order
	if declared == relay_go.MimeDOCX {
		return sniffed.Is("application/zip")
	}
	return false
}

func sniff(f *formdata.UploadFile) (*mimetype.MIME, error) {
	if f.Open == nil {
		return nil, relayutil.WrapInternal(io.ErrUnexpectedEOF, "validate.sniff.Open")
	}

	src, err := f.Open()
	if err != nil {
		return nil, relayutil.WrapInternal(err, "validate.sniff.f.Open")
	}
	defer src.Close()

	m, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, relayutil.WrapInternal(err, "validate.sniff.mimetype.DetectReader")
	}
	return m, nil
}
