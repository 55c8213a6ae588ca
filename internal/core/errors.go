package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks uploads rejected before any processing.
	ErrValidation = errors.New("validation failed")

	// ErrUploadTransfer marks failures copying the upload to temporary storage.
	ErrUploadTransfer = errors.New("upload transfer failed")

	// ErrDocumentLoad marks files that cannot be parsed as a supported tabular format.
	ErrDocumentLoad = errors.New("document load failed")
)

// ReasonKind identifies which gatekeeping check an upload failed.
type ReasonKind int

const (
	ReasonTooLarge ReasonKind = iota + 1
	ReasonBadExtension
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonTooLarge:
		return "file too large"
	case ReasonBadExtension:
		return "file type not allowed"
	default:
		return "invalid upload"
	}
}

// Reason is one failed check. Detail may quote client-supplied values and
// is only ever displayed; messages and codes are chosen by Kind.
type Reason struct {
	Kind   ReasonKind
	Detail string
}

func (r Reason) String() string {
	if r.Detail == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ": " + r.Detail
}

// ValidationError lists every gatekeeping check an upload failed.
type ValidationError struct {
	Reasons []Reason
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = r.String()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UploadTransferError wraps a failure storing the uploaded file.
type UploadTransferError struct {
	Err error
}

func (e *UploadTransferError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUploadTransfer, e.Err)
}

func (e *UploadTransferError) Unwrap() []error {
	return []error{ErrUploadTransfer, e.Err}
}

// DocumentLoadError wraps a parse failure for the document at Path.
type DocumentLoadError struct {
	Path string
	Err  error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDocumentLoad, e.Path, e.Err)
}

func (e *DocumentLoadError) Unwrap() []error {
	return []error{ErrDocumentLoad, e.Err}
}
