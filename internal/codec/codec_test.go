package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"financeiro/internal/core"
)

func sampleEntries() []core.Entry {
	return []core.Entry{
		{
			ID:          "a1",
			DueDate:     core.NewDate(2025, time.January, 10),
			Description: "Conta de Luz",
			Note:        "",
			Category:    core.CategoryFixedCost,
			Kind:        core.KindExpense,
			Amount:      core.Cents(10000),
			Status:      core.StatusOpen,
			Barcode:     "34191.79001 01043.510047",
		},
		{
			ID:          "a2",
			Description: `He said "hi", bye`,
			Note:        "line one\nline two",
			Category:    core.CategoryVariableCost,
			Kind:        core.KindExpense,
			Amount:      core.Cents(5050),
			Status:      core.StatusClosed,
		},
		{
			ID:          "a3",
			DueDate:     core.NewDate(2025, time.February, 1),
			Description: "Salário",
			Note:        "pago, com atraso",
			Category:    core.CategoryIncome,
			Kind:        core.KindIncome,
			Amount:      core.Cents(500000),
			Status:      core.StatusClosed,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleEntries()
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch\n got: %#v\nwant: %#v", out, in)
	}
}

func TestRoundTripNormalizes(t *testing.T) {
	in := sampleEntries()
	in[0].Description = "  Conta de Luz "
	in[0].Category = " FixedCost"
	in[0].Barcode = " 34191.79001 01043.510047\t"
	in[1].Note = "  kept as is  "

	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	for i := range in {
		if want := in[i].Normalize(); !reflect.DeepEqual(out[i], want) {
			t.Fatalf("entry %d\n got: %#v\nwant: %#v", i, out[i], want)
		}
	}
	if out[1].Note != "  kept as is  " {
		t.Fatalf("note should be verbatim, got %q", out[1].Note)
	}
}

func TestRoundTripRegeneratesEmptyIDs(t *testing.T) {
	in := sampleEntries()
	in[1].ID = ""

	next := 0
	dec := Decoder{NewID: func() string {
		next++
		return "generated"
	}}
	out, err := dec.Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if next != 1 || out[1].ID != "generated" {
		t.Fatalf("expected one generated id, got %d calls and id %q", next, out[1].ID)
	}
	out[1].ID = ""
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch ignoring ids")
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(Header, ","),
		",,Rent,,FixedCost,Expense,10.00,Open,",
		",,Rent,,FixedCost,Expense,10.00,Open,",
	}, "\n")
	out, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out[0].ID == "" || out[0].ID == out[1].ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", out[0].ID, out[1].ID)
	}
}

func TestEncodeQuoting(t *testing.T) {
	e := core.Entry{
		ID:          "q",
		Description: `He said "hi", bye`,
		Category:    "FixedCost",
		Kind:        core.KindExpense,
		Amount:      core.Cents(100),
		Status:      core.StatusOpen,
	}
	text := Encode([]core.Entry{e})
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one line, got %d lines", len(lines))
	}
	want := `q,,"He said ""hi"", bye",,FixedCost,Expense,1.00,Open,`
	if lines[1] != want {
		t.Fatalf("encoded line = %q, want %q", lines[1], want)
	}

	out, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out[0].Description != e.Description {
		t.Fatalf("description = %q, want %q", out[0].Description, e.Description)
	}
}

func TestEncodeHeader(t *testing.T) {
	text := Encode(nil)
	if text != "id,dueDate,description,note,category,kind,amount,status,barcode\n" {
		t.Fatalf("unexpected header %q", text)
	}
}

func TestDecodeErrors(t *testing.T) {
	header := strings.Join(Header, ",")
	good := ",2025-01-10,Luz,,FixedCost,Expense,100.00,Open,"

	tests := []struct {
		name      string
		lines     []string
		line      int
		msg       string
		malformed bool
	}{
		{
			name:  "invalid kind on second data line",
			lines: []string{good, ",2025-01-10,Luz,,FixedCost,Despesa,100.00,Open,"},
			line:  3,
			msg:   core.MsgInvalidKind,
		},
		{
			name:  "missing description",
			lines: []string{",2025-01-10,  ,,FixedCost,Expense,100.00,Open,"},
			line:  2,
			msg:   core.MsgDescriptionRequired,
		},
		{
			name:  "missing category",
			lines: []string{",2025-01-10,Luz,,,Expense,100.00,Open,"},
			line:  2,
			msg:   core.MsgCategoryRequired,
		},
		{
			name:  "invalid status",
			lines: []string{",2025-01-10,Luz,,FixedCost,Expense,100.00,Aberto,"},
			line:  2,
			msg:   core.MsgInvalidStatus,
		},
		{
			name:  "zero amount",
			lines: []string{",2025-01-10,Luz,,FixedCost,Expense,0,Open,"},
			line:  2,
			msg:   core.MsgInvalidAmount,
		},
		{
			name:  "exponent amount",
			lines: []string{good, ",2025-01-10,Luz,,FixedCost,Expense,1e100000000,Open,"},
			line:  3,
			msg:   core.MsgInvalidAmount,
		},
		{
			name:  "missing description reported before bad amount",
			lines: []string{",2025-01-10,,,FixedCost,Expense,abc,Open,"},
			line:  2,
			msg:   core.MsgDescriptionRequired,
		},
		{
			name:  "negative amount",
			lines: []string{",2025-01-10,Luz,,FixedCost,Expense,-3.00,Open,"},
			line:  2,
			msg:   core.MsgInvalidAmount,
		},
		{
			name:  "unparseable amount",
			lines: []string{",2025-01-10,Luz,,FixedCost,Expense,abc,Open,"},
			line:  2,
			msg:   core.MsgInvalidAmount,
		},
		{
			name:  "unparseable due date",
			lines: []string{",10/01/2025,Luz,,FixedCost,Expense,100.00,Open,"},
			line:  2,
			msg:   core.MsgInvalidDueDate,
		},
		{
			name:      "too few fields",
			lines:     []string{good, "a,b,c"},
			line:      3,
			malformed: true,
		},
		{
			name:      "too many fields",
			lines:     []string{good + ",extra"},
			line:      2,
			malformed: true,
		},
		{
			name:  "blank lines are not counted",
			lines: []string{"", good, "   ", ",2025-01-10,Luz,,FixedCost,Saida,100.00,Open,"},
			line:  3,
			msg:   core.MsgInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := header + "\n" + strings.Join(tt.lines, "\n")
			out, err := Decode(text)
			if out != nil {
				t.Errorf("expected no partial result, got %d entries", len(out))
			}
			if tt.malformed {
				var mr *core.MalformedRecordError
				if !errors.As(err, &mr) {
					t.Fatalf("expected MalformedRecordError, got %v", err)
				}
				if mr.Line != tt.line {
					t.Errorf("Line = %d, want %d", mr.Line, tt.line)
				}
				return
			}
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Line != tt.line || ve.Msg != tt.msg {
				t.Errorf("got line %d %q, want line %d %q", ve.Line, ve.Msg, tt.line, tt.msg)
			}
		})
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	for _, text := range []string{"", "\n\n", strings.Join(Header, ",") + "\n"} {
		out, err := Decode(text)
		if err != nil || len(out) != 0 {
			t.Fatalf("Decode(%q) = %v, %v; want empty, nil", text, out, err)
		}
	}
}

func TestDecodeCRLFAndTrimming(t *testing.T) {
	text := "h,h,h,h,h,h,h,h,h\r\nx1, 2025-03-05 ,  Aluguel  , keep me ,FixedCost,Expense, 1200.5 ,Closed,\r\n"
	out, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := core.Entry{
		ID:          "x1",
		DueDate:     core.NewDate(2025, time.March, 5),
		Description: "Aluguel",
		Note:        " keep me ",
		Category:    "FixedCost",
		Kind:        core.KindExpense,
		Amount:      core.Cents(120050),
		Status:      core.StatusClosed,
	}
	if len(out) != 1 || !reflect.DeepEqual(out[0], want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

func TestTemplateText(t *testing.T) {
	text := TemplateText()
	want := "id,dueDate,description,note,category,kind,amount,status,barcode\n" +
		",2025-01-15,Example - Electricity Bill,Sample note,FixedCost,Expense,150.00,Open,\n"
	if text != want {
		t.Fatalf("TemplateText() = %q, want %q", text, want)
	}
	out, err := Decode(text)
	if err != nil || len(out) != 1 {
		t.Fatalf("template should decode to one entry, got %v, %v", out, err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC))
	if got != "financeiro-07-03-2025.csv" {
		t.Fatalf("FileName() = %q", got)
	}
}
