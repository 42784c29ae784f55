// Package renderer invokes the mermaid-cli (mmdc) executable, the external
// collaborator that turns description text into SVG markup. The process is
// opaque: text goes in through a temporary file, bytes come out through
// another, and a non-zero exit status carries diagnostics on stderr.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/logger"
	"github.com/tidwall/sjson"
)

// Ensure CLI implements the interface.
var _ driven.Renderer = (*CLI)(nil)

// Environment overrides honoured by the adapter.
const (
	// EnvCLIPath points at a specific mmdc executable.
	EnvCLIPath = "MERMAID_CLI_PATH"

	// EnvConfig points at a mermaid config file used instead of the
	// generated one.
	EnvConfig = "MERMAID_CONFIG"
)

// Config keys read from the config store.
const (
	keyRendererPath       = "renderer.path"
	keyRendererBackground = "renderer.background"
	keyRendererTheme      = "renderer.theme"
)

const defaultBackground = "transparent"

// CLI renders mermaid descriptions by running mmdc. The executable is
// resolved per invocation so restore and count operations keep working on
// machines without it.
type CLI struct {
	path       string
	background string
	theme      string
	configPath string
}

// New creates a renderer configured from the config store. A nil store
// uses defaults.
func New(cfg driven.ConfigStore) *CLI {
	r := &CLI{background: defaultBackground, configPath: os.Getenv(EnvConfig)}
	if cfg == nil {
		return r
	}
	r.path = cfg.GetString(keyRendererPath)
	if bg := cfg.GetString(keyRendererBackground); bg != "" {
		r.background = bg
	}
	r.theme = cfg.GetString(keyRendererTheme)
	if r.configPath == "" {
		r.configPath = cfg.GetString("renderer.config")
	}
	return r
}

// Render runs mmdc synchronously and returns the raw SVG bytes. The call
// blocks until the subprocess exits; once dispatched there is no
// cancellation beyond the supplied context.
func (r *CLI) Render(ctx context.Context, code string) ([]byte, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrEmptyDiagram
	}

	cliPath, err := r.resolveCLIPath()
	if err != nil {
		return nil, err
	}

	work := filepath.Join(os.TempDir(), "mermaid-render-"+uuid.NewString())
	if err := os.Mkdir(work, 0o700); err != nil {
		return nil, fmt.Errorf("create render workspace: %w", err)
	}
	defer os.RemoveAll(work)

	inputPath := filepath.Join(work, "diagram.mmd")
	outputPath := filepath.Join(work, "diagram.svg")
	if err := os.WriteFile(inputPath, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("write diagram input: %w", err)
	}

	configPath := r.configPath
	if configPath == "" {
		configPath = filepath.Join(work, "config.json")
		if err := os.WriteFile(configPath, []byte(r.mermaidConfig()), 0o600); err != nil {
			return nil, fmt.Errorf("write mermaid config: %w", err)
		}
	}

	logger.Debug("rendering diagram via %s", cliPath)
	cmd := exec.CommandContext(ctx, cliPath,
		"-i", inputPath,
		"-o", outputPath,
		"-b", r.background,
		"-c", configPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrRenderFailed, diagnostic)
	}

	svg, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: renderer produced no output", domain.ErrRenderFailed)
	}
	return svg, nil
}

// mermaidConfig builds the renderer configuration. HTML labels are disabled
// for every diagram family so output stays portable to viewers without
// embedded-HTML support.
func (r *CLI) mermaidConfig() string {
	doc := "{}"
	for _, family := range []string{"flowchart", "sequence", "class", "er"} {
		doc, _ = sjson.Set(doc, family+".htmlLabels", false)
	}
	if r.theme != "" {
		doc, _ = sjson.Set(doc, "theme", r.theme)
	}
	return doc
}

// resolveCLIPath locates the mmdc executable: the env override first, then
// the configured path, then the system PATH.
func (r *CLI) resolveCLIPath() (string, error) {
	if p := os.Getenv(EnvCLIPath); p != "" {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s points to %q which is not a file", domain.ErrRendererUnavailable, EnvCLIPath, p)
		}
		return p, nil
	}
	if r.path != "" {
		info, err := os.Stat(r.path)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: configured path %q is not a file", domain.ErrRendererUnavailable, r.path)
		}
		return r.path, nil
	}
	p, err := exec.LookPath("mmdc")
	if err != nil {
		return "", fmt.Errorf("%w: mmdc not found in PATH", domain.ErrRendererUnavailable)
	}
	return p, nil
}
