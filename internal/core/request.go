package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RequestContext describes the uploaded file a run operates on. It replaces
// any ambient request state: everything the pipeline needs is passed in here.
type RequestContext struct {
	// Path is where the file can be read for the duration of the run.
	Path string
	// FileName is the client-declared name, used for the extension and logs.
	FileName string
	// Size is the client-declared size in bytes.
	Size int64
	// Extension is the declared extension without the leading dot.
	Extension string
}

// NewRequestContext derives the extension from fileName.
func NewRequestContext(path, fileName string, size int64) RequestContext {
	return RequestContext{
		Path:      path,
		FileName:  fileName,
		Size:      size,
		Extension: Extension(fileName),
	}
}

// Extension returns the part of name after its last dot, or "" if it has none.
func Extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// UploadLimits are the gatekeeping rules applied before any parsing.
type UploadLimits struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// DefaultUploadLimits mirrors the defaults in config.
var DefaultUploadLimits = UploadLimits{
	MaxFileSize:       5000000,
	AllowedExtensions: []string{"xlsx", "xls", "csv"},
}

// Validate checks the declared size and extension. Every failed check is
// reported; a nil return means the upload may be processed.
func (l UploadLimits) Validate(req RequestContext) error {
	var reasons []Reason

	if req.Size > l.MaxFileSize {
		reasons = append(reasons, Reason{
			Kind:   ReasonTooLarge,
			Detail: fmt.Sprintf("%d > %d bytes", req.Size, l.MaxFileSize),
		})
	}
	if !l.Allows(req.Extension) {
		reasons = append(reasons, Reason{
			Kind:   ReasonBadExtension,
			Detail: fmt.Sprintf("%q", req.Extension),
		})
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// Allows reports whether ext (without dot) is accepted, ignoring case.
func (l UploadLimits) Allows(ext string) bool {
	for _, allowed := range l.AllowedExtensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), ext) {
			return true
		}
	}
	return false
}
