package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// healthTimeout bounds every probe in a health request.
const healthTimeout = 2 * time.Second

// Pinger is any dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one named dependency probed by HealthHandler. A nil Pinger marks
// an optional dependency that is not configured; it reports "disabled" and
// never degrades the status.
type Check struct {
	Name   string
	Pinger Pinger
}

// HealthReport is the body written by HealthHandler.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check concurrently. Any unreachable dependency
// turns the response into a 503 with status "degraded".
func HealthHandler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		report := HealthReport{Status: "ok", Checks: make(map[string]string, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			if c.Pinger == nil {
				report.Checks[c.Name] = "disabled"
				continue
			}
			wg.Add(1)
			go func(c Check) {
				defer wg.Done()
				state := "ok"
				if err := c.Pinger.Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				report.Checks[c.Name] = state
				if state != "ok" {
					report.Status = "degraded"
				}
				mu.Unlock()
			}(c)
		}
		wg.Wait()

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, report)
	}
}
