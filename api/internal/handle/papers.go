package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var errArchiveDisabled = errors.New("paper archive is not configured")

// ListPapers handles GET /papers?limit=&offset=.
func (h *Handle) ListPapers(w http.ResponseWriter, r *http.Request) {
	if h.opts.Archive == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: errArchiveDisabled.Error()})
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.opts.Archive.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetPaper handles GET /papers/{id}.
func (h *Handle) GetPaper(w http.ResponseWriter, r *http.Request) {
	if h.opts.Archive == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: errArchiveDisabled.Error()})
		return
	}
	rec, err := h.opts.Archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, badRequest{key + " must be a non-negative integer"}
	}
	return n, nil
}
