package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker is anything /readyz should probe (archive DB, scan bucket).
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function, e.g. (*store.PaperRepo).Ping.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type healthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]checkStatus `json:"checks"`
}

type checkStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func readiness(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		st := healthStatus{
			Status:    "ready",
			Timestamp: time.Now(),
			Checks:    make(map[string]checkStatus, len(checkers)),
		}
		for name, c := range checkers {
			if err := c.Check(ctx); err != nil {
				st.Status = "unavailable"
				st.Checks[name] = checkStatus{Status: "unhealthy", Message: err.Error()}
				continue
			}
			st.Checks[name] = checkStatus{Status: "healthy"}
		}

		code := http.StatusOK
		if st.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(st)
	}
}
