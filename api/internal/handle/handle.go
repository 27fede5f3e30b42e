package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"question-builder/api/internal/ocr"
	"question-builder/api/internal/paper"
	"question-builder/api/internal/store"
)

// Archive persists successful extractions. Optional.
type Archive interface {
	Insert(ctx context.Context, rec store.PaperRecord, p paper.ExamPaper) error
	Get(ctx context.Context, id string) (*store.PaperRecord, error)
	List(ctx context.Context, limit, offset int) ([]store.PaperSummary, error)
}

// ScanStore keeps the uploaded page images. Optional.
type ScanStore interface {
	PutScan(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Options struct {
	GatewayTimeout time.Duration
	MaxUploadBytes int64
	Archive        Archive
	Scans          ScanStore
	Logger         *slog.Logger
	Now            func() time.Time
}

type Handle struct {
	engs *ocr.Engines
	opts Options
	log  *slog.Logger
}

func New(engs *ocr.Engines, opts Options) *Handle {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 120 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handle{
		engs: engs,
		opts: opts,
		log:  opts.Logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// badRequest marks client input errors that have no sentinel of their own.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// writeError maps the error taxonomy onto HTTP status codes.
func (h *Handle) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var br badRequest
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &br), errors.Is(err, paper.ErrNoContent):
		code = http.StatusBadRequest
	case errors.As(err, &mbe):
		code = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, ocr.ErrGateway),
		errors.Is(err, paper.ErrMalformedResponse),
		errors.Is(err, paper.ErrEmptyResult):
		code = http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	}
	if code >= 500 {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", code, "err", err)
	} else {
		h.log.WarnContext(r.Context(), "request rejected", "path", r.URL.Path, "status", code, "err", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}
