package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/pkg/logger"
)

// Check is one readiness dependency, such as a database ping.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type healthView struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler always answers 200 {"status":"alive"}.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = handler.JSON(healthView{Status: "alive"}).Render(w, r)
	}
}

// ReadinessHandler runs every check with timeout and answers 200 when all pass,
// 503 otherwise. Failure details go to the log, the body only names failing checks.
func ReadinessHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Noop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		view := healthView{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("healthcheck"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				view.Checks[c.Name] = "fail"
				view.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			view.Checks[c.Name] = "ok"
		}

		_ = handler.JSON(view, handler.WithJSONStatus(status)).Render(w, r)
	}
}
