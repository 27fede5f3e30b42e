package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"question-builder/api/internal/handle"
)

type Options struct {
	AllowedOrigins []string
	Checks         map[string]HealthChecker
	Logger         *slog.Logger

	// TelegramWebhook is mounted at WebhookPath when the bot runs in webhook mode.
	TelegramWebhook http.Handler
	WebhookPath     string
}

// NewRouter wires the extraction, archive and document endpoints plus health probes.
func NewRouter(h *handle.Handle, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Timeout"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", liveness)
	r.Get("/readyz", readiness(opts.Checks))

	r.Post("/ocr/parse-question-paper", h.ParseQuestionPaper)
	r.Post("/question-paper/generate", h.GenerateDocument)
	r.Get("/papers", h.ListPapers)
	r.Get("/papers/{id}", h.GetPaper)

	if opts.TelegramWebhook != nil && opts.WebhookPath != "" {
		r.Method(http.MethodPost, opts.WebhookPath, opts.TelegramWebhook)
	}
	return r
}

// statusRecorder captures what the handler wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.written,
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
