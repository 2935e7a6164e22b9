package codec

import "strings"

const (
	delimiter = ','
	quote     = '"'
)

type scanState int

const (
	stateNormal scanState = iota
	stateInQuotes
)

// scanner splits delimited text into records of raw field values.
//
// A quote toggles between Normal and InQuotes. Inside quotes a doubled quote
// yields one literal quote, and the delimiter and line breaks are kept as
// field content. Outside quotes a line feed ends the record and a carriage
// return directly before it is dropped.
type scanner struct {
	state   scanState
	field   strings.Builder
	fields  []string
	records [][]string
}

func splitRecords(text string) [][]string {
	var s scanner
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch s.state {
		case stateNormal:
			switch c {
			case quote:
				s.state = stateInQuotes
			case delimiter:
				s.endField()
			case '\n':
				s.endRecord()
			case '\r':
				if i+1 < len(text) && text[i+1] == '\n' {
					continue
				}
				s.field.WriteByte(c)
			default:
				s.field.WriteByte(c)
			}
		case stateInQuotes:
			if c != quote {
				s.field.WriteByte(c)
				continue
			}
			if i+1 < len(text) && text[i+1] == quote {
				s.field.WriteByte(quote)
				i++
				continue
			}
			s.state = stateNormal
		}
	}
	s.endRecord()
	return s.records
}

func (s *scanner) endField() {
	s.fields = append(s.fields, s.field.String())
	s.field.Reset()
}

// endRecord closes the current record. Blank records are skipped.
func (s *scanner) endRecord() {
	s.endField()
	fields := s.fields
	s.fields = nil
	if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
		return
	}
	s.records = append(s.records, fields)
}

// needsQuoting reports whether v must be wrapped in quotes to survive a
// round trip through the scanner.
func needsQuoting(v string) bool {
	return strings.ContainsAny(v, "\",\r\n")
}

func quoteField(v string) string {
	if !needsQuoting(v) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
