package http

import (
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

const maxJSONBytes = 1 << 20

// filtered applies the request's criteria to the current collection.
func (s *Server) filtered(r *http.Request) ([]core.Entry, uint64, error) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		return nil, 0, err
	}
	snap := s.store.Snapshot()
	return s.memo.Apply(snap.Entries, snap.Version, c), snap.Version, nil
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, version, err := s.filtered(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	toJSON(w, http.StatusOK, listResponse{
		Entries: toEntryResponses(entries),
		Count:   len(entries),
		Version: version,
	})
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !readJSON(w, r, &req) {
		return
	}
	d, err := req.draft()
	if err != nil {
		writeStoreErr(w, r, log.OpCreate, err)
		return
	}
	e, err := s.store.Create(r.Context(), d)
	if err != nil {
		writeStoreErr(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/v1/entries/"+e.ID)
	toJSON(w, http.StatusCreated, toEntryResponse(e))
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !readJSON(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		writeStoreErr(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeStoreErr(w, r, log.OpUpdate, err)
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(e))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreErr(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleStatus(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreErr(w, r, log.OpToggle, err)
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(e))
}

// readJSON decodes a bounded JSON body into v, writing 400 on failure.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err != nil {
		badRequest(w, "request body too large or unreadable")
		return false
	}
	if err := decodeStrict(body, v); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
