package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawsh2/mermaid-preview/internal/adapters/driven/config/file"
	"github.com/dawsh2/mermaid-preview/internal/adapters/driven/storage/disk"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/core/services"
	"github.com/dawsh2/mermaid-preview/internal/logger"
	"github.com/dawsh2/mermaid-preview/internal/naming"
	"github.com/dawsh2/mermaid-preview/internal/strategy"
)

// stubRenderer returns a fixed SVG without spawning a subprocess.
type stubRenderer struct{}

var _ driven.Renderer = stubRenderer{}

func (stubRenderer) Render(context.Context, string) ([]byte, error) {
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg"><text x="1" y="1">ok</text></svg>`), nil
}

// wireTestServices points the command tree at an in-process service graph
// and restores the previous wiring afterwards.
func wireTestServices(t *testing.T, stratName string) {
	t.Helper()
	previous := previewService

	names := naming.NewSequence(func() time.Time { return time.Unix(1700000000, 0) })
	store := disk.New()
	strat, err := strategy.New(stratName, names, store)
	require.NoError(t, err)
	previewService = services.NewPreviewService(stubRenderer{}, strat, store, names)

	t.Cleanup(func() { previewService = previous })
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := runCommand(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "mermaid-preview test-version-1.0.0")
}

func TestRenderCmd_RewritesDocument(t *testing.T) {
	wireTestServices(t, strategy.NameSidecar)
	dir := t.TempDir()
	path := filepath.Join(dir, "design.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\n```mermaid\ngraph TD\n```\nProse.\n"), 0o644))

	out, err := runCommand(t, "render", path, "--line", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 1 block(s)")

	text, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(text), "```mermaid")
	assert.Contains(t, string(text), "<!-- mermaid-source-file:.mermaid/")
	assert.Contains(t, string(text), "![Mermaid Diagram](.mermaid/design_diagram_")
}

func TestRenderCmd_NoBlockAtCursor(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("prose only\n"), 0o644))

	out, err := runCommand(t, "render", path, "--line", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "No mermaid block to render")
}

func TestRenderCmd_MissingDocument(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	_, err := runCommand(t, "render", filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
}

func TestRenderThenRestoreCmd_RoundTrip(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	dir := t.TempDir()
	path := filepath.Join(dir, "design.md")
	original := "# Title\n\n```mermaid\ngraph TD\n  A --> B\n```\nProse.\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	_, err := runCommand(t, "render", path, "--line", "3")
	require.NoError(t, err)

	out, err := runCommand(t, "restore", path, "--line", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 block(s)")

	text, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(text))
}

func TestRenderCmd_AllFlag(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.md")
	text := "```mermaid\ngraph TD\n```\n```mermaid\npie\n```\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	out, err := runCommand(t, "render", path, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 2 block(s)")

	defer func() { renderAllFlag = false }()

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(rewritten), "<!-- mermaid-source:"))
}

func TestCountCmd(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("```mermaid\ngraph TD\n```\n"), 0o644))

	out, err := runCommand(t, "count", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Source blocks:   1")
	assert.Contains(t, out, "Rendered blocks: 0")
}

func TestCleanupCmd_RemovesOrphans(t *testing.T) {
	wireTestServices(t, strategy.NameInline)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("no references\n"), 0o644))

	storageDir := filepath.Join(dir, ".mermaid")
	require.NoError(t, os.MkdirAll(storageDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(storageDir, "doc_orphan.svg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storageDir, "sibling_diagram_1_0.svg"), []byte("x"), 0o644))

	_, err := runCommand(t, "cleanup", path)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(storageDir, "doc_orphan.svg"))
	assert.FileExists(t, filepath.Join(storageDir, "sibling_diagram_1_0.svg"), "other documents' artifacts are kept")
}

func TestVerboseDefaultFromConfig(t *testing.T) {
	previous := configStore
	cfg, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set("verbose", true))
	configStore = cfg
	t.Cleanup(func() {
		configStore = previous
		logger.SetVerbose(false)
	})

	_, err = runCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose(), "config verbose setting enables verbose logging without the flag")
}
