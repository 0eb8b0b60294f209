package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts flipbook descriptions from markdown to sanitized HTML.
// Raw markdown is what gets stored; HTML is produced at the read boundary.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &Renderer{
		md:     md,
		policy: bluemonday.UGCPolicy(),
	}
}

func (r *Renderer) Render(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}

	return r.policy.Sanitize(buf.String()), nil
}
