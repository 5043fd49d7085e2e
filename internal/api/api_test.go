package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   Params
		want     string
		wantErr  error
	}{
		{name: "single", template: "/api/consumers/:id", params: Params{"id": 42}, want: "/api/consumers/42"},
		{name: "suffix", template: "/api/emergencies/:id/status", params: Params{"id": "7"}, want: "/api/emergencies/7/status"},
		{name: "no placeholders", template: "/api/inventory", want: "/api/inventory"},
		{name: "escaped", template: "/api/consumers/:id", params: Params{"id": "a/b"}, want: "/api/consumers/a%2Fb"},
		{name: "missing", template: "/api/consumers/:id", params: Params{}, wantErr: ErrMissingParam},
		{name: "extra", template: "/api/consumers/:id", params: Params{"id": 1, "page": 2}, wantErr: ErrExtraParam},
		{name: "extra without placeholders", template: "/api/inventory", params: Params{"id": 1}, wantErr: ErrExtraParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.template, tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMuxPath(t *testing.T) {
	assert.Equal(t, "/api/emergencies/{id}/status", MuxPath("/api/emergencies/:id/status"))
	assert.Equal(t, []string{"id"}, PathParams("/api/emergencies/:id/status"))
}

func TestRouteTableIsConsistent(t *testing.T) {
	seenNames := map[string]bool{}
	seenPaths := map[string]bool{}

	for _, r := range API.All() {
		assert.False(t, seenNames[r.Name()], "duplicate route name %s", r.Name())
		seenNames[r.Name()] = true

		key := r.Method() + " " + r.Path()
		assert.False(t, seenPaths[key], "duplicate route %s", key)
		seenPaths[key] = true

		v, ok := r.Response(r.Success())
		assert.True(t, ok, "%s has no success validator", r.Name())
		assert.NotNil(t, v)
		assert.GreaterOrEqual(t, r.Success(), 200)
		assert.Less(t, r.Success(), 400)

		if len(r.Params()) > 0 {
			_, ok := r.Response(http.StatusNotFound)
			assert.True(t, ok, "%s addresses an id but declares no 404", r.Name())
		}
		if r.Input() != nil {
			_, ok := r.Response(http.StatusBadRequest)
			assert.True(t, ok, "%s takes input but declares no 400", r.Name())
		}
	}
	assert.Len(t, seenNames, 17)
}

func TestRouteAccessControl(t *testing.T) {
	assert.False(t, API.Consumers.List.Public())
	assert.False(t, API.Emergencies.UpdateStatus.Public())
	assert.True(t, API.Auth.Login.Public())
	assert.True(t, API.Auth.User.Public())

	_, ok := API.Auth.User.Response(http.StatusUnauthorized)
	assert.True(t, ok)
}

func TestRouteURL(t *testing.T) {
	got, err := API.Emergencies.UpdateStatus.URL(Params{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "/api/emergencies/1/status", got)

	r, ok := API.Lookup("inventory.delete")
	require.True(t, ok)
	assert.Equal(t, http.MethodDelete, r.Method())
}

func TestSwaggerDoc(t *testing.T) {
	doc := SwaggerDoc(API, Info{Title: "MediOps", Version: "1.0"})

	paths := doc["paths"].(map[string]any)
	require.Contains(t, paths, "/api/consumers/{id}")

	item := paths["/api/consumers/{id}"].(map[string]any)
	assert.Contains(t, item, "get")
	assert.Contains(t, item, "put")
	assert.Contains(t, item, "delete")

	get := item["get"].(map[string]any)
	responses := get["responses"].(map[string]any)
	assert.Contains(t, responses, "200")
	assert.Contains(t, responses, "404")
	assert.Contains(t, get, "security")

	login := paths["/api/login"].(map[string]any)["post"].(map[string]any)
	assert.NotContains(t, login, "security")
}
