package core

import "strings"

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"

	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

// Categories offered by the entry form. The category field itself is open:
// any non-empty value is accepted.
const (
	CategoryFixedCost    = "FixedCost"
	CategoryVariableCost = "VariableCost"
	CategoryIncome       = "Income"
)

// Validation messages shared by the record codec and the entry store.
const (
	MsgDescriptionRequired = "description required"
	MsgCategoryRequired    = "category required"
	MsgInvalidKind         = "invalid kind"
	MsgInvalidStatus       = "invalid status"
	MsgInvalidAmount       = "invalid amount"
	MsgInvalidDueDate      = "invalid due date"
)

type (
	Kind   string
	Status string

	// Entry is a single income or expense line of the ledger.
	Entry struct {
		ID          string
		DueDate     Date // zero when the entry has no due date
		Description string
		Note        string
		Category    string
		Kind        Kind
		Amount      Money
		Status      Status
		Barcode     string
	}
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Toggle flips Open to Closed and back.
func (s Status) Toggle() Status {
	if s == StatusOpen {
		return StatusClosed
	}
	return StatusOpen
}

// Categories returns the categories offered for new entries.
func Categories() []string {
	return []string{CategoryFixedCost, CategoryVariableCost, CategoryIncome}
}

// Normalize trims the surrounding whitespace the record codec drops. The
// note is kept verbatim.
func (e Entry) Normalize() Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Kind = Kind(strings.TrimSpace(string(e.Kind)))
	e.Status = Status(strings.TrimSpace(string(e.Status)))
	e.Barcode = strings.TrimSpace(e.Barcode)
	return e
}

// ValidateLabels checks the text and enum fields. The record codec applies
// it before looking at the due date and the amount.
func (e Entry) ValidateLabels() error {
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Msg: MsgDescriptionRequired}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Msg: MsgCategoryRequired}
	}
	if !e.Kind.Valid() {
		return &ValidationError{Msg: MsgInvalidKind}
	}
	if !e.Status.Valid() {
		return &ValidationError{Msg: MsgInvalidStatus}
	}
	return nil
}

// Validate checks the field rules in the order the record codec applies them
// and returns a *ValidationError for the first one broken.
func (e Entry) Validate() error {
	if err := e.ValidateLabels(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Msg: MsgInvalidAmount}
	}
	return nil
}

// HasDueDate reports whether the entry carries a due date.
func (e Entry) HasDueDate() bool {
	return !e.DueDate.IsZero()
}
