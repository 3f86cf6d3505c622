package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/sheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil", nil, ""},
		{"too large", fmt.Errorf("%w: 20 bytes", ErrFileTooLarge), "FILE001"},
		{"body too large text", errors.New("http: request body too large"), "FILE001"},
		{"unsupported", fmt.Errorf("%w: .pdf", sheet.ErrUnsupportedFormat), "FILE002"},
		{"decode", fmt.Errorf("%w: xlsx: zip: not a valid zip file", sheet.ErrDecode), "FILE003"},
		{"no file", ErrNoFile, "FILE004"},
		{"empty", ErrEmptyFile, "FILE005"},
		{"read", fmt.Errorf("%w: %w", ErrRead, errors.New("unexpected EOF")), "FILE006"},
		{"busy", ErrTooManyImports, "IMP001"},
		{"cancelled", fmt.Errorf("import x: %w", context.Canceled), "IMP002"},
		{"deadline", context.DeadlineExceeded, "IMP003"},
		{"account busy", ErrImportInProgress, "IMP004"},
		{"set not found", ErrCardSetNotFound, "SET001"},
		{"name required", ErrNameRequired, "SET002"},
		{"card not found", ErrCardNotFound, "SET003"},
		{"credentials", auth.ErrInvalidCredentials, "AUTH001"},
		{"email taken", auth.ErrEmailTaken, "AUTH002"},
		{"unauthenticated", auth.ErrUnauthenticated, "AUTH003"},
		{"registration", fmt.Errorf("%w: full name is required", auth.ErrInvalidInput), "AUTH004"},
		{"nothing to export", card.ErrNothingToExport, "EXP001"},
		{"too many cards", fmt.Errorf("%w: 2000 cards", card.ErrTooManyCards), "EXP002"},
		{"invalid request", fmt.Errorf("%w: bad json", ErrInvalidRequest), "VAL001"},
		{"rate limit text", errors.New("Rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something broke"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, MapError(tt.err).Code)
		})
	}
}

func TestMapError_SentinelBeatsText(t *testing.T) {
	// The wrapped sentinel decides even when the text mentions another rule.
	err := fmt.Errorf("%w: while reading: context canceled", ErrRead)
	assert.Equal(t, "FILE006", MapError(err).Code)
}

func TestFormatUserError(t *testing.T) {
	assert.Equal(t,
		"The uploaded file is empty (Code: FILE005). Please upload a spreadsheet with a header and data rows",
		FormatUserError(ErrEmptyFile))
	assert.Empty(t, FormatUserError(nil))
}

func TestIsUserFacing(t *testing.T) {
	assert.False(t, IsUserFacing(nil))
	assert.False(t, IsUserFacing(errors.New("boom")))
	assert.True(t, IsUserFacing(ErrCardSetNotFound))
}

func TestNewUserError(t *testing.T) {
	assert.Nil(t, NewUserError(nil))

	tech := fmt.Errorf("store: %w", ErrCardSetNotFound)
	ue := NewUserError(tech)
	assert.Equal(t, "Card set not found", ue.Error())
	assert.Equal(t, "SET001", ue.User.Code)
	assert.ErrorIs(t, ue, ErrCardSetNotFound)

	custom := &UserError{Technical: errors.New("x"), User: UserMessage{Message: "m", Code: "C1"}}
	assert.Equal(t, "C1", MapError(fmt.Errorf("wrapped: %w", custom)).Code)
}
