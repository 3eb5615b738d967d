package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Errors the inquiry store reports to callers
var (
	ErrNotFound       = errors.New("inquiry not found")
	ErrDuplicateEntry = errors.New("inquiry id already exists")
)

// translateError maps driver errors onto the sentinels above and returns
// anything else unchanged. Connections opened with TranslateError already
// yield gorm.ErrDuplicatedKey; the message checks cover those opened without.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEntry
	}

	msg := err.Error()
	if strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505") {
		return ErrDuplicateEntry
	}
	return err
}
