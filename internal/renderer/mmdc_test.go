package renderer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

// writeStub writes an executable standing in for mmdc. It emits the given
// SVG to the path following the -o flag, or fails with a diagnostic.
func writeStub(t *testing.T, svg string, fail bool) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if fail {
		script += "echo 'parse error at line 2' >&2\nexit 1\n"
	} else {
		script += `out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
printf '%s' '` + svg + `' > "$out"
`
	}
	path := filepath.Join(t.TempDir(), "mmdc-stub")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRender_EmptyDescription(t *testing.T) {
	r := New(nil)
	_, err := r.Render(context.Background(), "   \n\t")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyDiagram)
}

func TestRender_ExecutableMissing(t *testing.T) {
	t.Setenv(EnvCLIPath, filepath.Join(t.TempDir(), "no-such-binary"))

	r := New(nil)
	_, err := r.Render(context.Background(), "graph TD")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRendererUnavailable)
}

func TestRender_Success(t *testing.T) {
	t.Setenv(EnvCLIPath, writeStub(t, "<svg>stub</svg>", false))

	r := New(nil)
	svg, err := r.Render(context.Background(), "graph TD")
	require.NoError(t, err)
	assert.Equal(t, "<svg>stub</svg>", string(svg))
}

func TestRender_FailureCarriesDiagnostic(t *testing.T) {
	t.Setenv(EnvCLIPath, writeStub(t, "", true))

	r := New(nil)
	_, err := r.Render(context.Background(), "graph TD")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Contains(t, err.Error(), "parse error at line 2")
}

func TestMermaidConfig_DisablesHTMLLabels(t *testing.T) {
	r := New(nil)
	cfg := r.mermaidConfig()

	for _, family := range []string{"flowchart", "sequence", "class", "er"} {
		assert.False(t, gjson.Get(cfg, family+".htmlLabels").Bool())
		assert.True(t, gjson.Get(cfg, family+".htmlLabels").Exists(), family)
	}
	assert.False(t, gjson.Get(cfg, "theme").Exists())
}

func TestMermaidConfig_Theme(t *testing.T) {
	r := New(nil)
	r.theme = "dark"
	assert.Equal(t, "dark", gjson.Get(r.mermaidConfig(), "theme").String())
}

func TestNew_ReadsConfigStore(t *testing.T) {
	cfg := stubConfig{
		"renderer.path":       "/opt/mmdc",
		"renderer.background": "white",
		"renderer.theme":      "forest",
	}

	r := New(cfg)
	assert.Equal(t, "/opt/mmdc", r.path)
	assert.Equal(t, "white", r.background)
	assert.Equal(t, "forest", r.theme)
}

func TestNew_Defaults(t *testing.T) {
	r := New(stubConfig{})
	assert.Equal(t, defaultBackground, r.background)
	assert.Empty(t, r.theme)
}

// stubConfig is a map-backed ConfigStore for constructor tests.
type stubConfig map[string]any

func (c stubConfig) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

func (c stubConfig) GetString(key string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return ""
}

func (c stubConfig) GetBool(key string) bool {
	b, _ := c[key].(bool)
	return b
}

func (c stubConfig) Set(key string, value any) error {
	c[key] = value
	return nil
}

func (c stubConfig) Load() error { return nil }

func (c stubConfig) Path() string { return "" }
