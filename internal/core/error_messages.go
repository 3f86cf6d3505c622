package core

// error_messages.go maps technical errors to messages shown to users.
//
// Codes by category:
//
//	FILE001 - File too large            ErrFileTooLarge, "request body too large"
//	FILE002 - Unsupported format        sheet.ErrUnsupportedFormat
//	FILE003 - Unreadable spreadsheet    sheet.ErrDecode
//	FILE004 - No file                   ErrNoFile
//	FILE005 - Empty file                ErrEmptyFile
//	FILE006 - Read failure              ErrRead
//
//	IMP001  - System busy               ErrTooManyImports
//	IMP002  - Request cancelled         context.Canceled
//	IMP003  - Request timed out         context.DeadlineExceeded
//	IMP004  - Import already running    ErrImportInProgress
//
//	SET001  - Card set not found        ErrCardSetNotFound
//	SET002  - Name required             ErrNameRequired
//	SET003  - Card not found            ErrCardNotFound
//
//	AUTH001 - Invalid credentials       auth.ErrInvalidCredentials
//	AUTH002 - Email taken               auth.ErrEmailTaken
//	AUTH003 - Not signed in             auth.ErrUnauthenticated
//	AUTH004 - Invalid registration      auth.ErrInvalidInput
//
//	EXP001  - Nothing to export         card.ErrNothingToExport
//	EXP002  - Too many cards            card.ErrTooManyCards
//
//	VAL001  - Malformed request         ErrInvalidRequest
//	RATE001 - Rate limited              "rate limit"
//	ERR000  - Anything else
//
// Rules are tried in order. A rule matches when the error wraps its target
// (errors.Is) or, for errors that crossed a process boundary as text, when
// the lowercased message contains its pattern. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/sheet"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorRule struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorRules = []errorRule{
	// File errors.
	{
		target:  ErrFileTooLarge,
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the workbook or remove unused sheets",
			Code:    "FILE001",
		},
	},
	{
		target:  sheet.ErrUnsupportedFormat,
		pattern: "unsupported spreadsheet format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an Excel (.xlsx, .xls) or CSV file",
			Code:    "FILE002",
		},
	},
	{
		target:  sheet.ErrDecode,
		pattern: "cannot decode spreadsheet",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Open the file in Excel, save it again and retry",
			Code:    "FILE003",
		},
	},
	{
		target:  ErrNoFile,
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a spreadsheet to import",
			Code:    "FILE004",
		},
	},
	{
		target:  ErrEmptyFile,
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a spreadsheet with a header and data rows",
			Code:    "FILE005",
		},
	},
	{
		target:  ErrRead,
		pattern: "cannot read file",
		msg: UserMessage{
			Message: "The file could not be received",
			Action:  "Check your connection and upload again",
			Code:    "FILE006",
		},
	},

	// Import errors.
	{
		target:  ErrTooManyImports,
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		target:  context.Canceled,
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		target:  context.DeadlineExceeded,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP003",
		},
	},
	{
		target:  ErrImportInProgress,
		pattern: "import is already running",
		msg: UserMessage{
			Message: "One of your imports is still running",
			Action:  "Wait for it to finish before uploading another file",
			Code:    "IMP004",
		},
	},

	// Card set errors.
	{
		target:  ErrCardSetNotFound,
		pattern: "card set not found",
		msg: UserMessage{
			Message: "Card set not found",
			Action:  "It may have been deleted. Refresh the list of saved sets",
			Code:    "SET001",
		},
	},
	{
		target:  ErrNameRequired,
		pattern: "name is required",
		msg: UserMessage{
			Message: "A card set needs a name",
			Action:  "Enter a name before saving",
			Code:    "SET002",
		},
	},
	{
		target:  ErrCardNotFound,
		pattern: "card not found",
		msg: UserMessage{
			Message: "Card not found in this set",
			Action:  "Refresh the card set and try again",
			Code:    "SET003",
		},
	},

	// Authentication errors.
	{
		target:  auth.ErrInvalidCredentials,
		pattern: "invalid email or password",
		msg: UserMessage{
			Message: "Email or password is incorrect",
			Action:  "Check your credentials and try again",
			Code:    "AUTH001",
		},
	},
	{
		target:  auth.ErrEmailTaken,
		pattern: "email already registered",
		msg: UserMessage{
			Message: "An account already uses this email",
			Action:  "Sign in instead, or register with another email",
			Code:    "AUTH002",
		},
	},
	{
		target:  auth.ErrUnauthenticated,
		pattern: "authentication required",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "AUTH003",
		},
	},
	{
		target:  auth.ErrInvalidInput,
		pattern: "invalid registration",
		msg: UserMessage{
			Message: "Registration details are incomplete",
			Action:  "Provide a valid email, a name and a password of at least 6 characters",
			Code:    "AUTH004",
		},
	},

	// Export errors.
	{
		target:  card.ErrNothingToExport,
		pattern: "no cards to export",
		msg: UserMessage{
			Message: "There are no cards to export",
			Action:  "Import a spreadsheet or open a saved card set first",
			Code:    "EXP001",
		},
	},
	{
		target:  card.ErrTooManyCards,
		pattern: "too many cards",
		msg: UserMessage{
			Message: "Too many cards for a single export",
			Action:  "Split the card set and export it in parts",
			Code:    "EXP002",
		},
	},

	{
		target:  ErrInvalidRequest,
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Reload the page and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no rule matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A
// *UserError keeps the message it was built with.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, r := range errorRules {
		if r.target != nil && errors.Is(err, r.target) {
			return r.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, r := range errorRules {
		if r.pattern != "" && strings.Contains(errStr, r.pattern) {
			return r.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown for it.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps it for logging. Returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
