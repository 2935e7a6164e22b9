package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"financeiro/internal/codec"
	"financeiro/internal/log"
)

const csvContentType = "text/csv; charset=utf-8"

func attachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
}

// exportEntries writes the filtered set as delimited text.
func (s *Server) exportEntries(w http.ResponseWriter, r *http.Request) {
	entries, _, err := s.filtered(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	attachment(w, codec.FileName(s.now()))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, codec.Encode(entries))

	log.FromContext(r.Context()).InfoContext(r.Context(), "Entries exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(entries))
}

// importEntries decodes the body and appends every record, or none.
func (s *Server) importEntries(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge, "import file too large", "too_large")
			return
		}
		badRequest(w, "unreadable request body")
		return
	}

	entries, err := codec.Decode(string(body))
	if err != nil {
		writeStoreErr(w, r, log.OpImport, err)
		return
	}
	added, err := s.store.ImportBatch(r.Context(), entries)
	if err != nil {
		writeStoreErr(w, r, log.OpImport, err)
		return
	}
	toJSON(w, http.StatusCreated, importResponse{Imported: len(added), Entries: toEntryResponses(added)})
}

func (s *Server) template(w http.ResponseWriter, _ *http.Request) {
	attachment(w, "financeiro-template.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, codec.TemplateText())
}
