package viewer

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

//go:embed templates/index.html
var defaultTemplate string

// The payloads are placed in script context, so html/template JS-escapes them.
var scripts = template.Must(template.New("scripts").Parse(
	`{{define "data"}}<script>window.EMBEDDED_INVENTORY_DATA = {{.}};</script>{{end}}` +
		`{{define "config"}}<script>window.VIEWER_CONFIG = {{.}};</script>{{end}}`,
))

// injection points, in order of preference
var anchors = []string{"</head>", "<script", "<body>"}

// PageConfig is exposed to the page as window.VIEWER_CONFIG.
type PageConfig struct {
	APIBase string `json:"apiBase"`
}

// Renderer splices server data into the viewer page template.
type Renderer struct {
	page string
}

// NewRenderer loads the template at path, or the built-in page when path is empty.
func NewRenderer(path string) (*Renderer, error) {
	if strings.TrimSpace(path) == "" {
		return &Renderer{page: defaultTemplate}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read viewer template: %w", err)
	}
	return &Renderer{page: string(raw)}, nil
}

// NewRendererFromString is used when the template is already in memory.
func NewRendererFromString(page string) *Renderer {
	return &Renderer{page: page}
}

// RenderSnapshotPage embeds the snapshot as window.EMBEDDED_INVENTORY_DATA.
func (r *Renderer) RenderSnapshotPage(snapshot *types.Snapshot) (string, error) {
	if snapshot == nil {
		return "", fmt.Errorf("snapshot required")
	}
	return r.render("data", snapshot)
}

// RenderIndex embeds the client configuration as window.VIEWER_CONFIG.
func (r *Renderer) RenderIndex(cfg PageConfig) (string, error) {
	return r.render("config", cfg)
}

func (r *Renderer) render(name string, payload any) (string, error) {
	var buf bytes.Buffer
	if err := scripts.ExecuteTemplate(&buf, name, payload); err != nil {
		return "", fmt.Errorf("render %s script: %w", name, err)
	}
	return Inject(r.page, buf.String()), nil
}

// Inject places snippet before the first anchor found in page, or at the top.
func Inject(page, snippet string) string {
	for _, anchor := range anchors {
		if idx := strings.Index(page, anchor); idx >= 0 {
			return page[:idx] + snippet + page[idx:]
		}
	}
	return snippet + page
}
