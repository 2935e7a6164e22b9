// Package codec converts entries to and from the nine-column delimited text
// format used for bulk import and export.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeiro/internal/core"
)

// Header holds the fixed column names in wire order.
var Header = []string{"id", "dueDate", "description", "note", "category", "kind", "amount", "status", "barcode"}

// Column indexes into a record.
const (
	colID = iota
	colDueDate
	colDescription
	colNote
	colCategory
	colKind
	colAmount
	colStatus
	colBarcode
)

// Record returns the wire values of e in column order, unquoted.
func Record(e core.Entry) []string {
	return []string{
		colID:          e.ID,
		colDueDate:     e.DueDate.String(),
		colDescription: e.Description,
		colNote:        e.Note,
		colCategory:    e.Category,
		colKind:        string(e.Kind),
		colAmount:      e.Amount.String(),
		colStatus:      string(e.Status),
		colBarcode:     e.Barcode,
	}
}

// Encode renders the header line followed by one line per entry.
// Decode(Encode(es)) returns es when every entry is normalized and has an
// id; other entries come back in their Entry.Normalize form.
func Encode(entries []core.Entry) string {
	var b strings.Builder
	writeLine(&b, Header)
	for _, e := range entries {
		writeLine(&b, Record(e))
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(delimiter)
		}
		b.WriteString(quoteField(f))
	}
	b.WriteByte('\n')
}

// TemplateText returns the header plus one example row showing the expected
// import format.
func TemplateText() string {
	return Encode([]core.Entry{{
		DueDate:     core.NewDate(2025, time.January, 15),
		Description: "Example - Electricity Bill",
		Note:        "Sample note",
		Category:    core.CategoryFixedCost,
		Kind:        core.KindExpense,
		Amount:      core.Cents(15000),
		Status:      core.StatusOpen,
	}})
}

// FileName returns the export file name for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("financeiro-%s.csv", t.Format("02-01-2006"))
}

// Decoder decodes delimited text into entries.
type Decoder struct {
	// NewID generates ids for records whose id column is empty.
	// Defaults to a random UUID.
	NewID func() string
}

// Decode decodes text with the default Decoder.
func Decode(text string) ([]core.Entry, error) {
	return Decoder{}.Decode(text)
}

// Decode parses text into entries. The first non-blank line is the header
// and is skipped. The first invalid record aborts the whole decode; errors
// carry the record's line number counting the header as line 1.
func (d Decoder) Decode(text string) ([]core.Entry, error) {
	newID := d.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	records := splitRecords(text)
	if len(records) <= 1 {
		return []core.Entry{}, nil
	}

	entries := make([]core.Entry, 0, len(records)-1)
	for i, fields := range records[1:] {
		line := i + 2
		e, err := parseRecord(fields, line)
		if err != nil {
			return nil, err
		}
		if e.ID == "" {
			e.ID = newID()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRecord(fields []string, line int) (core.Entry, error) {
	if len(fields) != core.FieldCount {
		return core.Entry{}, &core.MalformedRecordError{Line: line, Fields: len(fields)}
	}
	invalid := func(msg string) error {
		return &core.ValidationError{Line: line, Msg: msg}
	}

	e := core.Entry{
		ID:          fields[colID],
		Description: fields[colDescription],
		Note:        fields[colNote],
		Category:    fields[colCategory],
		Kind:        core.Kind(fields[colKind]),
		Status:      core.Status(fields[colStatus]),
		Barcode:     fields[colBarcode],
	}.Normalize()

	var ve *core.ValidationError
	if err := e.ValidateLabels(); errors.As(err, &ve) {
		return core.Entry{}, invalid(ve.Msg)
	}

	due, err := core.ParseDate(strings.TrimSpace(fields[colDueDate]))
	if err != nil {
		return core.Entry{}, invalid(core.MsgInvalidDueDate)
	}
	e.DueDate = due

	amount, err := core.ParseAmount(fields[colAmount])
	if err != nil {
		return core.Entry{}, invalid(core.MsgInvalidAmount)
	}
	e.Amount = amount

	return e, nil
}
