package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindTransport    Kind = "transport"
	KindDevice       Kind = "device"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Postgres SQLSTATE codes that surface as conflicts.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Error is the single error type crossing package boundaries. MessageID names a
// translatable message; Message is the untranslated text.
type Error struct {
	Kind      Kind
	MessageID string
	Message   string
	Data      map[string]interface{}
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two errors of the same kind and message ID, so sentinels survive WithData.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.MessageID != "" && e.MessageID == t.MessageID
}

// WithData returns a copy carrying template data for the translated message.
func (e *Error) WithData(data map[string]interface{}) *Error {
	cp := *e
	cp.Data = data
	return &cp
}

func New(kind Kind, messageID, message string) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message}
}

func Wrap(err error, kind Kind, messageID, message string) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message, Err: err}
}

func Validation(messageID, message string) *Error {
	return New(KindValidation, messageID, message)
}

func Conflict(messageID, message string) *Error {
	return New(KindConflict, messageID, message)
}

func NotFound(messageID, message string) *Error {
	return New(KindNotFound, messageID, message)
}

func Unauthorized(messageID, message string) *Error {
	return New(KindUnauthorized, messageID, message)
}

func Transport(err error, message string) *Error {
	return Wrap(err, KindTransport, "BackendUnavailable", message)
}

func Device(err error, message string) *Error {
	return Wrap(err, KindDevice, "ScannerUnavailable", message)
}

func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, "Internal", message)
}

// KindOf classifies any error. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgCheckViolation:
			return KindConflict
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromDB converts a database error into an Error. Unique and check violations
// become conflict with the given message ID; other errors pass through unchanged.
func FromDB(err error, conflictID, conflictMessage string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgCheckViolation:
			return Wrap(err, KindConflict, conflictID, conflictMessage)
		}
	}
	return err
}
