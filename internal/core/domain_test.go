package core

import (
	"errors"
	"testing"
	"time"
)

func validEntry() Entry {
	return Entry{
		ID:          "e1",
		DueDate:     NewDate(2025, time.January, 15),
		Description: "Conta de Luz",
		Category:    CategoryFixedCost,
		Kind:        KindExpense,
		Amount:      Cents(15000),
		Status:      StatusOpen,
	}
}

func TestEntryValidate(t *testing.T) {
	if err := validEntry().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Entry)
		msg    string
	}{
		{"blank description", func(e *Entry) { e.Description = "  " }, MsgDescriptionRequired},
		{"empty category", func(e *Entry) { e.Category = "" }, MsgCategoryRequired},
		{"unknown kind", func(e *Entry) { e.Kind = "Despesa" }, MsgInvalidKind},
		{"unknown status", func(e *Entry) { e.Status = "Pago" }, MsgInvalidStatus},
		{"zero amount", func(e *Entry) { e.Amount = Cents(0) }, MsgInvalidAmount},
		{"description checked before amount", func(e *Entry) {
			e.Description = ""
			e.Amount = Cents(0)
		}, MsgDescriptionRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", ve.Msg, tt.msg)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("errors.Is(err, ErrValidation) = false")
			}
		})
	}
}

func TestEntryNormalize(t *testing.T) {
	e := validEntry()
	e.ID = " e1 "
	e.Description = "\tConta de Luz "
	e.Category = " FixedCost "
	e.Kind = " Expense"
	e.Status = "Open "
	e.Barcode = " 123 "
	e.Note = " note "

	got := e.Normalize()
	want := validEntry()
	want.Barcode = "123"
	want.Note = " note "
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
	if again := got.Normalize(); again != got {
		t.Fatalf("Normalize should be idempotent")
	}
}

func TestValidateLabelsIgnoresAmount(t *testing.T) {
	e := validEntry()
	e.Amount = Cents(0)
	if err := e.ValidateLabels(); err != nil {
		t.Fatalf("ValidateLabels() = %v, want nil", err)
	}
	e.Description = ""
	var ve *ValidationError
	if err := e.ValidateLabels(); !errors.As(err, &ve) || ve.Msg != MsgDescriptionRequired {
		t.Fatalf("ValidateLabels() = %v, want %q", err, MsgDescriptionRequired)
	}
}

func TestStatusToggle(t *testing.T) {
	if StatusOpen.Toggle() != StatusClosed {
		t.Fatalf("Open.Toggle() should be Closed")
	}
	if StatusClosed.Toggle() != StatusOpen {
		t.Fatalf("Closed.Toggle() should be Open")
	}
}

func TestErrorMessages(t *testing.T) {
	ve := &ValidationError{Line: 3, Msg: MsgInvalidKind}
	if got := ve.Error(); got != "line 3: invalid kind" {
		t.Errorf("ValidationError.Error() = %q", got)
	}
	if got := (&ValidationError{Msg: MsgInvalidKind}).Error(); got != "invalid kind" {
		t.Errorf("ValidationError.Error() without line = %q", got)
	}
	mr := &MalformedRecordError{Line: 2, Fields: 4}
	if !errors.Is(mr, ErrMalformedRecord) {
		t.Errorf("MalformedRecordError should match ErrMalformedRecord")
	}
	if got := mr.Error(); got != "line 2: malformed record: expected 9 fields, got 4" {
		t.Errorf("MalformedRecordError.Error() = %q", got)
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("create entry", cause)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped ErrStoreUnavailable and cause, got %v", err)
	}
	if err := Unavailable("update entry", ErrNotFound); !errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("not found should pass through unchanged, got %v", err)
	}
	if Unavailable("noop", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
