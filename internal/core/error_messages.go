package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the configured size limit
//	          ValidationError reason ReasonTooLarge
//	FILE002 - Wrong type: only spreadsheet files are accepted
//	          ValidationError reason ReasonBadExtension
//	FILE003 - Unreadable: the file could not be parsed as a spreadsheet
//	          *DocumentLoadError
//	FILE004 - No file: no file was selected
//	          Patterns: "no file provided"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Transfer failed: the upload could not be stored
//	         *UploadTransferError; Patterns: "invalid form"
//	UPL002 - System busy: too many runs in progress
//	         ErrTooManyRuns
//	UPL004 - Request cancelled
//	         context.Canceled
//	UPL005 - Request timeout (usually slow DNS on a large list)
//	         context.DeadlineExceeded
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default (ERR000)
//
// Fallback when nothing matches; check the logs for the technical error.
//
// Typed errors are classified first, in the order above, so a document load
// failure caused by a timeout is still FILE003. Error text can carry client
// input such as file names, so the substring patterns only apply to errors
// no type or sentinel identifies. They are matched case-insensitively and
// the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File is too large",
		Action:  "Split the list into smaller files",
		Code:    "FILE001",
	}
	msgBadFileType = UserMessage{
		Message: "Only Excel or CSV files are allowed",
		Action:  "Upload an .xlsx, .xls or .csv file",
		Code:    "FILE002",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be read as a spreadsheet",
		Action:  "Re-save the file as .xlsx or .csv and try again",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Choose a spreadsheet to upload",
		Code:    "FILE004",
	}
	msgUploadFailed = UserMessage{
		Message: "Failed to upload or process file",
		Action:  "Please try again",
		Code:    "UPL001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a shorter list of addresses",
		Code:    "UPL005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns classifies untyped errors from the web layer and libraries.
var errorPatterns = []errorPattern{
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "invalid form", msg: msgUploadFailed},
	{pattern: "too many concurrent runs", msg: msgBusy},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "rate limit", msg: msgRateLimited},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		verr *ValidationError
		lerr *DocumentLoadError
		terr *UploadTransferError
	)
	switch {
	case errors.As(err, &verr) && len(verr.Reasons) > 0:
		return reasonMessage(verr.Reasons[0].Kind), true
	case errors.As(err, &lerr):
		return msgUnreadable, true
	case errors.As(err, &terr):
		return msgUploadFailed, true
	case errors.Is(err, ErrTooManyRuns):
		return msgBusy, true
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	}
	return UserMessage{}, false
}

func reasonMessage(kind ReasonKind) UserMessage {
	switch kind {
	case ReasonTooLarge:
		return msgFileTooLarge
	case ReasonBadExtension:
		return msgBadFileType
	default:
		return defaultMessage
	}
}

// MapReasons maps each validation reason separately so a file that is both
// too large and of the wrong type reports both problems.
func MapReasons(err *ValidationError) []UserMessage {
	msgs := make([]UserMessage, 0, len(err.Reasons))
	for _, reason := range err.Reasons {
		msgs = append(msgs, reasonMessage(reason.Kind))
	}
	return msgs
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
