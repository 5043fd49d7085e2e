package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheckAllRollup(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{name: "no dependencies", checks: nil, want: StatusHealthy},
		{name: "all up", checks: map[string]CheckFunc{"database": ok, "redis": ok}, want: StatusHealthy},
		{name: "one down", checks: map[string]CheckFunc{"database": ok, "kafka": down}, want: StatusDegraded},
		{name: "all down", checks: map[string]CheckFunc{"database": down}, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker("mediops", time.Second)
			for name, fn := range tt.checks {
				c.Register(name, fn)
			}
			report := c.CheckAll(context.Background())
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Dependencies, len(tt.checks))
		})
	}
}

func TestCheckTimesOut(t *testing.T) {
	c := NewChecker("mediops", 20*time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := c.CheckAll(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Contains(t, report.Dependencies["slow"].Error, "deadline")
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker("mediops", time.Second)
	c.Register("database", down)

	rec := httptest.NewRecorder()
	c.ReadyHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, []string{"database"}, c.Names())

	rec = httptest.NewRecorder()
	c.QuickHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
