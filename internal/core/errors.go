package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("entry not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidAmount    = errors.New("invalid amount")

	// ErrValidation and ErrMalformedRecord match any *ValidationError and
	// *MalformedRecordError under errors.Is.
	ErrValidation      = errors.New("validation error")
	ErrMalformedRecord = errors.New("malformed record")
)

// ValidationError reports a field rule broken by form input or by a decoded
// record. Line is the 1-based text line (header included), or 0 when the
// error did not come from decoding.
type ValidationError struct {
	Line int
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MalformedRecordError reports a data line with the wrong number of fields.
type MalformedRecordError struct {
	Line   int
	Fields int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record: expected %d fields, got %d", e.Line, FieldCount, e.Fields)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// FieldCount is the number of columns in a text record.
const FieldCount = 9

// Unavailable wraps a failure from the remote record store so callers can
// match it with errors.Is(err, ErrStoreUnavailable).
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
