package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	deliveryhttp "github.com/tair/mediops/internal/delivery/http"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/operator"
	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/auth"
)

type harness struct {
	server    string
	statePath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("MEDIOPS_URL", "")
	t.Setenv("MEDIOPS_TOKEN", "")
	t.Setenv("MEDIOPS_PASSWORD", "")

	sessions := operator.NewService(operator.NewMemoryRepository(), auth.NewTokenManager("test-secret", time.Hour))
	require.NoError(t, sessions.EnsureOperator(context.Background(), "admin", "admin"))

	mw := deliveryhttp.DefaultMiddlewareConfig()
	mw.Metrics = deliveryhttp.NewMetrics(prometheus.NewRegistry())
	h := deliveryhttp.NewHandler(gateway.NewMemoryGateway(), sessions, deliveryhttp.HandlerConfig{EnforceAuth: true})
	srv := httptest.NewServer(deliveryhttp.NewRouter(h, deliveryhttp.RouterConfig{Middleware: mw}))
	t.Cleanup(srv.Close)

	return &harness{server: srv.URL, statePath: filepath.Join(t.TempDir(), "state.yaml")}
}

// run executes mediopsctl with args against the harness server
func (h *harness) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	app.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	root := app.RootCommand()
	root.SetArgs(append([]string{"--server", h.server, "--state", h.statePath}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("consumers", "list")
	require.Error(t, err)
	assert.Contains(t, describe(err).Error(), "run mediopsctl login")

	_, errOut, err := h.run("login", "-u", "admin", "-p", "nope")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Login failed: Invalid username or password")

	out, _, err := h.run("login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin")

	state, err := LoadState(h.statePath)
	require.NoError(t, err)
	assert.NotEmpty(t, state.Token)
	assert.Equal(t, h.server, state.Server)

	out, _, err = h.run("whoami", "-o", "json")
	require.NoError(t, err)
	var op schema.Operator
	require.NoError(t, json.Unmarshal([]byte(out), &op))
	assert.Equal(t, "admin", op.Username)

	_, _, err = h.run("logout")
	require.NoError(t, err)
	state, err = LoadState(h.statePath)
	require.NoError(t, err)
	assert.Empty(t, state.Token)
}

func TestConsumerCommands(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)

	out, _, err := h.run("consumers", "create",
		"--first-name", "John", "--last-name", "Doe", "--email", "john.doe@example.com", "--dob", "1985-03-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Create consumer 1 succeeded")

	_, _, err = h.run("consumers", "create", "--first-name", "Jane", "--email", "jane@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last-name")

	_, _, err = h.run("consumers", "update", "1", "--status", "inactive", "--dob", "")
	require.NoError(t, err)

	out, _, err = h.run("consumers", "get", "1", "-o", "yaml")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "inactive", got["status"])
	assert.Nil(t, got["dateOfBirth"])
	assert.Equal(t, "John", got["firstName"])

	out, _, err = h.run("consumers", "list", "--search", "doe")
	require.NoError(t, err)
	assert.Contains(t, out, "john.doe@example.com")

	_, _, err = h.run("consumers", "delete", "1")
	require.NoError(t, err)

	_, errOut, err := h.run("consumers", "delete", "1")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Consumer not found")
}

func TestInventoryAndEmergencyCommands(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)

	_, _, err = h.run("inventory", "create", "--name", "Amoxicillin", "--sku", "AMX-500",
		"--category", "Antibiotic", "--stock", "4", "--price", "12.5")
	require.NoError(t, err)

	_, errOut, err := h.run("inventory", "create", "--name", "Aspirin", "--sku", "ASP-1",
		"--category", "Analgesic", "--stock", "4", "--price", "cheap")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Create inventory item failed: price: Invalid decimal")

	out, _, err := h.run("inventory", "list", "-o", "json")
	require.NoError(t, err)
	var items []schema.InventoryItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "12.50", items[0].Price)

	_, _, err = h.run("emergencies", "create", "--consumer", "Jane", "--contact", "555",
		"--location", "Main St", "--type", "Fall")
	require.NoError(t, err)

	out, _, err = h.run("emergencies", "status", "1", "In Progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Set emergency 1 to In Progress succeeded")

	_, errOut, err = h.run("emergencies", "status", "1", "Done")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "status: Invalid enum value")

	out, _, err = h.run("dashboard", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalConsumers":0,"activeConsumers":0,"newThisMonth":0,"lowStockItems":1,"openEmergencies":1}`, out)
}

func TestDemoMode(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("--demo", "consumers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "demo1@example.com")
	assert.Contains(t, out, "Patient 2")

	_, errOut, err := h.run("--demo", "inventory", "delete", "8881")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "write actions are disabled in demo mode")

	out, _, err = h.run("--demo", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Demo (demo data)")
}

func TestSubscriptionCommands(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("subscription", "current", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Basic"`)

	_, _, err = h.run("subscription", "switch", "premium")
	require.NoError(t, err)

	state, err := LoadState(h.statePath)
	require.NoError(t, err)
	assert.Equal(t, "Premium", state.Plan)

	out, _, err = h.run("subscription", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "$99/mo")
	assert.Contains(t, out, "current")

	_, errOut, err := h.run("subscription", "switch", "gold")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "unknown plan")
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("subscription", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestTableRender(t *testing.T) {
	table := &Table{Headers: []string{"ID", "NAME"}}
	assert.Contains(t, table.Render(), "(no records)")

	table.AddRow("1", "Amoxicillin")
	rendered := table.Render()
	assert.Contains(t, rendered, "Amoxicillin")
	assert.Contains(t, rendered, "NAME")
}
