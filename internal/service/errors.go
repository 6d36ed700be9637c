package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrorKind classifies a PostError so callers can branch without
// matching on message text.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindPermission ErrorKind = "permission"
	KindUnknown    ErrorKind = "unknown"
)

// PostError is the single error type surfaced by PostService. Message is
// safe to show to a user; Code carries the originating driver code when
// the backend supplied one.
type PostError struct {
	Kind    ErrorKind
	Message string
	Code    string
}

func (e *PostError) Error() string {
	return e.Message
}

func validationError(message string) *PostError {
	return &PostError{Kind: KindValidation, Message: message}
}

// normalizeError converts any backend failure into a *PostError. Errors
// that already are a *PostError pass through unchanged, so every operation
// can wrap its own failures exactly once.
func normalizeError(err error, fallback string) *PostError {
	if err == nil {
		return nil
	}

	var pe *PostError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &PostError{Kind: KindNotFound, Message: "requested post was not found"}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code := strconv.Itoa(int(sqliteErr.ExtendedCode))

		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &PostError{Kind: KindConflict, Message: "a post with the same slug already exists", Code: code}
		case sqlite3.ErrConstraintForeignKey:
			return &PostError{Kind: KindConflict, Message: "a related record is missing", Code: code}
		}

		switch sqliteErr.Code {
		case sqlite3.ErrAuth, sqlite3.ErrPerm, sqlite3.ErrReadonly:
			return &PostError{Kind: KindPermission, Message: "not allowed to perform this operation", Code: code}
		}

		if strings.Contains(sqliteErr.Error(), "no such table") {
			return &PostError{Kind: KindUnknown, Message: "a database table is missing", Code: code}
		}

		return &PostError{Kind: KindUnknown, Message: fallback, Code: code}
	}

	if strings.Contains(err.Error(), "no such table") {
		return &PostError{Kind: KindUnknown, Message: "a database table is missing"}
	}

	return &PostError{Kind: KindUnknown, Message: fallback}
}
