// Package health reports the readiness of the service and its dependencies.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tair/mediops/pkg/logger"
)

// Status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// DependencyHealth represents the health status of a dependency
type DependencyHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Latency   time.Duration `json:"latency_ns"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report represents the overall service health
type Report struct {
	Service      string                      `json:"service"`
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyHealth `json:"dependencies"`
	Uptime       float64                     `json:"uptime_seconds"`
}

// Checker checks the registered dependencies concurrently
type Checker struct {
	service   string
	timeout   time.Duration
	startTime time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a health checker. Each probe gets timeout.
func NewChecker(service string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		service:   service,
		timeout:   timeout,
		startTime: time.Now(),
		checks:    map[string]CheckFunc{},
	}
}

// Register adds a dependency probe
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names lists the registered dependencies
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) check(ctx context.Context, name string, fn CheckFunc) DependencyHealth {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result := DependencyHealth{Name: name, Status: StatusHealthy, Timestamp: start}
	if err := fn(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Latency = time.Since(start)
	return result
}

// CheckAll probes every dependency concurrently
func (c *Checker) CheckAll(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	deps := make(map[string]DependencyHealth, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, fn := range checks {
		wg.Add(1)
		go func(n string, f CheckFunc) {
			defer wg.Done()
			result := c.check(ctx, n, f)

			mu.Lock()
			deps[n] = result
			mu.Unlock()

			if result.Status == StatusHealthy {
				logger.Logger.Debug().
					Str("dependency", n).
					Dur("latency", result.Latency).
					Msg("Dependency health check")
			} else {
				logger.Logger.Warn().
					Str("dependency", n).
					Str("error", result.Error).
					Msg("Dependency health check failed")
			}
		}(name, fn)
	}
	wg.Wait()

	return Report{
		Service:      c.service,
		Status:       overallStatus(deps),
		Dependencies: deps,
		Uptime:       time.Since(c.startTime).Seconds(),
	}
}

// overallStatus is healthy when every dependency is, unhealthy when none is
func overallStatus(deps map[string]DependencyHealth) string {
	healthy := 0
	for _, d := range deps {
		if d.Status == StatusHealthy {
			healthy++
		}
	}
	switch {
	case healthy == len(deps):
		return StatusHealthy
	case healthy > 0:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

// QuickHandler answers /health without probing dependencies
func (c *Checker) QuickHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    StatusHealthy,
		"service":   c.service,
		"uptime":    time.Since(c.startTime).Seconds(),
		"timestamp": time.Now().UTC(),
	})
}

// ReadyHandler answers /health/ready with a full report; unhealthy is 503
func (c *Checker) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	report := c.CheckAll(r.Context())
	status := http.StatusOK
	if report.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
