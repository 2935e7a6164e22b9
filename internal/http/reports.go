package http

import (
	"net/http"

	"financeiro/internal/aggregate"
	"financeiro/internal/core"
)

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// categories lists the categories offered for new entries.
func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, categoriesResponse{Categories: core.Categories()})
}

// summary is always computed over the whole collection.
func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, toSummaryResponse(aggregate.Summarize(s.store.List())))
}

// chartEntries returns the full collection, or the filtered set when the
// request asks for scope=filtered. It writes 400 and returns false on a bad
// query.
func (s *Server) chartEntries(w http.ResponseWriter, r *http.Request) ([]core.Entry, bool) {
	filtered, err := filteredScope(r.URL.Query())
	if err != nil {
		badRequest(w, err.Error())
		return nil, false
	}
	if !filtered {
		return s.store.List(), true
	}
	entries, _, err := s.filtered(r)
	if err != nil {
		badRequest(w, err.Error())
		return nil, false
	}
	return entries, true
}

func (s *Server) monthlyCosts(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.chartEntries(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, seriesResponse[monthlyCostResponse]{
		Series:  toMonthlyCostResponses(aggregate.MonthlyCosts(entries)),
		Undated: aggregate.Undated(entries),
	})
}

func (s *Server) monthlyBalance(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.chartEntries(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, seriesResponse[monthlyBalanceResponse]{
		Series:  toMonthlyBalanceResponses(aggregate.MonthlyBalances(entries)),
		Undated: aggregate.Undated(entries),
	})
}

func (s *Server) byDescription(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.chartEntries(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, seriesResponse[descriptionTotalResponse]{
		Series: toDescriptionTotalResponses(aggregate.ByDescription(entries)),
	})
}
