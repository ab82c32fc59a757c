// Package health implements Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically in one background goroutine. Thresholds
// keep probes from flapping: a check flips unhealthy only after three
// consecutive failures and flips back after one success.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const failureThreshold = 3

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	healthy bool
	fails   int
	lastErr error
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.fn(ctx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy = false
		}
		return
	}
	c.fails = 0
	c.healthy = true
}

func (c *check) status() (healthy bool, lastErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy, c.lastErr
}

// Health runs liveness and readiness checks and serves probe endpoints.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
	done      chan struct{}
}

// New returns a Health in the not-ready state. Call SetReady(true) once
// startup finishes.
func New() *Health {
	return &Health{}
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	// Healthy until the first threshold breach so probes pass during startup.
	return &check{name: name, timeout: timeout, fn: fn, healthy: true}
}

// AddLivenessCheck registers a check that gates /livez. Liveness failures
// signal the process itself is wedged and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a check that gates /readyz. Readiness failures
// take the instance out of rotation without restarting it.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck(name, timeout, fn))
}

// SetReady flips the administrative readiness gate. ReadyEndpoint reports
// unavailable while the gate is down, regardless of check results.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the administrative readiness gate.
func (h *Health) IsReady() bool {
	return h.ready.Load()
}

// Start runs every registered check once per interval until ctx is done or
// Stop is called. Checks registered after Start are not picked up.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	h.mu.Lock()
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.Unlock()

	go func() {
		defer close(h.done)
		t := time.NewTicker(interval)
		defer t.Stop()

		runAll := func() {
			for _, c := range checks {
				if ctx.Err() != nil {
					return
				}
				c.run(ctx)
			}
		}
		runAll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				runAll()
			}
		}
	}()
}

// Stop cancels the background check loop and waits for it to exit.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

type probeResponse struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

func failures(checks []*check) map[string]string {
	var out map[string]string
	for _, c := range checks {
		healthy, lastErr := c.status()
		if healthy {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		msg := "check failed"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		out[c.name] = msg
	}
	return out
}

func writeProbe(w http.ResponseWriter, ok bool, fails map[string]string) {
	resp := probeResponse{Status: "ok", Failures: fails}
	code := http.StatusOK
	if !ok {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := h.liveness
	h.mu.Unlock()

	fails := failures(checks)
	writeProbe(w, len(fails) == 0, fails)
}

// ReadyEndpoint serves the readiness probe. Liveness failures also fail
// readiness, so a wedged process drops out of rotation before it restarts.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.readiness...)
	checks = append(checks, h.liveness...)
	h.mu.Unlock()

	fails := failures(checks)
	writeProbe(w, h.IsReady() && len(fails) == 0, fails)
}
