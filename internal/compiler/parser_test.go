package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_YAMLAndJSON(t *testing.T) {
	yamlDoc := []byte(`
fallback: /home
views:
  - name: main
    path: /
    default: true
routes:
  - path: /
    page: home
  - path: /settings
    page:
      component: settings
    view: side
    views: [main]
    guard: signed-in
`)
	jsonDoc := []byte(`{
  "fallback": "/home",
  "views": [{"name": "main", "path": "/", "default": true}],
  "routes": [
    {"path": "/", "page": "home"},
    {"path": "/settings", "page": {"component": "settings"}, "view": "side", "views": ["main"], "guard": "signed-in"}
  ]
}`)

	for name, tc := range map[string]struct {
		data   []byte
		format Format
	}{
		"yaml": {yamlDoc, FormatYAML},
		"json": {jsonDoc, FormatJSON},
	} {
		t.Run(name, func(t *testing.T) {
			file, err := NewParser().Parse(tc.data, tc.format)
			require.NoError(t, err)

			assert.Equal(t, "/home", file.Fallback)
			require.Len(t, file.Views, 1)
			assert.True(t, file.Views[0].Default)
			require.Len(t, file.Routes, 2)

			settings := file.Routes[1]
			assert.Equal(t, "signed-in", settings.Guard)
			assert.Equal(t, []string{"side", "main"}, settings.TargetViews())
			assert.Equal(t, map[string]any{"component": "settings"}, settings.Page)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "routes document is empty"},
		{"no routes", "fallback: /\n", "declares no routes"},
		{"unknown key", "routes:\n  - path: /\n    pgae: home\n", "pgae"},
		{"bad yaml", "routes: [\n", "failed to parse routes yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(tt.data), FormatYAML)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := NewParser().Parse([]byte("{"), FormatJSON)
	assert.ErrorContains(t, err, "failed to parse routes json")
}
