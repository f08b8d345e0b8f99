package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type operation struct {
	Summary string `json:"summary"`
}

func readDoc(t *testing.T) map[string]map[string]operation {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                          `json:"swagger"`
		Paths   map[string]map[string]operation `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "2.0", doc.Swagger)
	return doc.Paths
}

func TestDoc_SummariesMatchHandlers(t *testing.T) {
	paths := readDoc(t)

	want := map[string]map[string]string{
		"/api/auth/login":                  {"post": "Login"},
		"/api/auth/me":                     {"get": "Current identity"},
		"/api/users":                       {"get": "List users", "post": "Register a new user"},
		"/api/users/{username}":            {"get": "Get a user", "put": "Update a user"},
		"/api/users/{username}/deactivate": {"put": "Deactivate a user"},
		"/api/users/{username}/activate":   {"put": "Activate a user"},
		"/api/users/{id}":                  {"delete": "Delete a user"},
		"/api/countries/{name}/users":      {"get": "Users of a country"},
	}

	for path, methods := range want {
		for method, summary := range methods {
			op, ok := paths[path][method]
			if assert.True(t, ok, "%s %s missing", method, path) {
				assert.Equal(t, summary, op.Summary, "%s %s", method, path)
			}
		}
	}
}
