package http

import (
	"bytes"
	"encoding/json"
	"strings"

	"financeiro/internal/aggregate"
	"financeiro/internal/core"
	"financeiro/internal/store"
)

// Amounts travel as decimal strings ("150.00") so clients never see floats.
type (
	entryResponse struct {
		ID            string `json:"id"`
		DueDate       string `json:"dueDate"`
		Description   string `json:"description"`
		Note          string `json:"note"`
		Category      string `json:"category"`
		Kind          string `json:"kind"`
		Amount        string `json:"amount"`
		AmountDisplay string `json:"amountDisplay"`
		Status        string `json:"status"`
		Barcode       string `json:"barcode"`
	}

	listResponse struct {
		Entries []entryResponse `json:"entries"`
		Count   int             `json:"count"`
		Version uint64          `json:"version"`
	}

	importResponse struct {
		Imported int             `json:"imported"`
		Entries  []entryResponse `json:"entries"`
	}

	summaryResponse struct {
		TotalIncome         string `json:"totalIncome"`
		TotalExpense        string `json:"totalExpense"`
		Balance             string `json:"balance"`
		TotalIncomeDisplay  string `json:"totalIncomeDisplay"`
		TotalExpenseDisplay string `json:"totalExpenseDisplay"`
		BalanceDisplay      string `json:"balanceDisplay"`
		OpenCount           int    `json:"openCount"`
		ClosedCount         int    `json:"closedCount"`
	}

	monthlyCostResponse struct {
		Month        string `json:"month"`
		FixedCost    string `json:"fixedCost"`
		VariableCost string `json:"variableCost"`
		Total        string `json:"total"`
	}

	monthlyBalanceResponse struct {
		Month   string `json:"month"`
		Income  string `json:"income"`
		Expense string `json:"expense"`
		Net     string `json:"net"`
	}

	descriptionTotalResponse struct {
		Description string `json:"description"`
		Value       string `json:"value"`
		Count       int    `json:"count"`
	}

	// seriesResponse wraps a chart series. Undated counts the entries the
	// monthly views left out.
	seriesResponse[T any] struct {
		Series  []T `json:"series"`
		Undated int `json:"undated,omitempty"`
	}
)

// amountText accepts an amount as a JSON string or number.
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountText(n.String())
	return nil
}

type createRequest struct {
	DueDate     string     `json:"dueDate"`
	Description string     `json:"description"`
	Note        string     `json:"note"`
	Category    string     `json:"category"`
	Kind        string     `json:"kind"`
	Amount      amountText `json:"amount"`
	Status      string     `json:"status"`
	Barcode     string     `json:"barcode"`
}

// patchRequest changes only the fields present. An empty dueDate clears it.
type patchRequest struct {
	DueDate     *string     `json:"dueDate"`
	Description *string     `json:"description"`
	Note        *string     `json:"note"`
	Category    *string     `json:"category"`
	Kind        *string     `json:"kind"`
	Amount      *amountText `json:"amount"`
	Status      *string     `json:"status"`
	Barcode     *string     `json:"barcode"`
}

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// draft checks the fields in the order the record codec does: labels first,
// then the due date, then the amount.
func (req createRequest) draft() (store.Draft, error) {
	d := store.Draft{
		Description: req.Description,
		Note:        req.Note,
		Category:    req.Category,
		Kind:        core.Kind(req.Kind),
		Status:      core.Status(req.Status),
		Barcode:     req.Barcode,
	}
	if err := d.Entry().ValidateLabels(); err != nil {
		return store.Draft{}, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return store.Draft{}, err
	}
	d.DueDate = due
	amount, err := parseAmount(string(req.Amount))
	if err != nil {
		return store.Draft{}, err
	}
	d.Amount = amount
	return d, nil
}

func (req patchRequest) patch() (store.Patch, error) {
	if err := req.checkLabels(); err != nil {
		return store.Patch{}, err
	}
	p := store.Patch{
		Description: req.Description,
		Note:        req.Note,
		Category:    req.Category,
		Barcode:     req.Barcode,
	}
	if req.Kind != nil {
		k := core.Kind(strings.TrimSpace(*req.Kind))
		p.Kind = &k
	}
	if req.Status != nil {
		st := core.Status(strings.TrimSpace(*req.Status))
		p.Status = &st
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return store.Patch{}, err
		}
		if due.IsZero() {
			p.ClearDueDate = true
		} else {
			p.DueDate = &due
		}
	}
	if req.Amount != nil {
		amount, err := parseAmount(string(*req.Amount))
		if err != nil {
			return store.Patch{}, err
		}
		p.Amount = &amount
	}
	return p, nil
}

// checkLabels rejects the label fields the request sets, ahead of any due
// date or amount error.
func (req patchRequest) checkLabels() error {
	blank := func(s *string) bool { return s != nil && strings.TrimSpace(*s) == "" }
	switch {
	case blank(req.Description):
		return &core.ValidationError{Msg: core.MsgDescriptionRequired}
	case blank(req.Category):
		return &core.ValidationError{Msg: core.MsgCategoryRequired}
	case req.Kind != nil && !core.Kind(strings.TrimSpace(*req.Kind)).Valid():
		return &core.ValidationError{Msg: core.MsgInvalidKind}
	case req.Status != nil && !core.Status(strings.TrimSpace(*req.Status)).Valid():
		return &core.ValidationError{Msg: core.MsgInvalidStatus}
	}
	return nil
}

func parseDueDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, &core.ValidationError{Msg: core.MsgInvalidDueDate}
	}
	return d, nil
}

func parseAmount(s string) (core.Money, error) {
	m, err := core.ParseAmount(s)
	if err != nil {
		return core.Money{}, &core.ValidationError{Msg: core.MsgInvalidAmount}
	}
	return m, nil
}

func toEntryResponse(e core.Entry) entryResponse {
	resp := entryResponse{
		ID:            e.ID,
		Description:   e.Description,
		Note:          e.Note,
		Category:      e.Category,
		Kind:          string(e.Kind),
		Amount:        e.Amount.String(),
		AmountDisplay: e.Amount.Display(),
		Status:        string(e.Status),
		Barcode:       e.Barcode,
	}
	if e.HasDueDate() {
		resp.DueDate = e.DueDate.String()
	}
	return resp
}

func toEntryResponses(entries []core.Entry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	return out
}

func toSummaryResponse(s aggregate.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:         s.TotalIncome.String(),
		TotalExpense:        s.TotalExpense.String(),
		Balance:             s.Balance.String(),
		TotalIncomeDisplay:  s.TotalIncome.Display(),
		TotalExpenseDisplay: s.TotalExpense.Display(),
		BalanceDisplay:      s.Balance.Display(),
		OpenCount:           s.OpenCount,
		ClosedCount:         s.ClosedCount,
	}
}

func toMonthlyCostResponses(in []aggregate.MonthlyCost) []monthlyCostResponse {
	out := make([]monthlyCostResponse, len(in))
	for i, m := range in {
		out[i] = monthlyCostResponse{
			Month:        m.Month.String(),
			FixedCost:    m.FixedCost.String(),
			VariableCost: m.VariableCost.String(),
			Total:        m.Total.String(),
		}
	}
	return out
}

func toMonthlyBalanceResponses(in []aggregate.MonthlyBalance) []monthlyBalanceResponse {
	out := make([]monthlyBalanceResponse, len(in))
	for i, m := range in {
		out[i] = monthlyBalanceResponse{
			Month:   m.Month.String(),
			Income:  m.Income.String(),
			Expense: m.Expense.String(),
			Net:     m.Net.String(),
		}
	}
	return out
}

func toDescriptionTotalResponses(in []aggregate.DescriptionTotal) []descriptionTotalResponse {
	out := make([]descriptionTotalResponse, len(in))
	for i, d := range in {
		out[i] = descriptionTotalResponse{Description: d.Description, Value: d.Value.String(), Count: d.Count}
	}
	return out
}
