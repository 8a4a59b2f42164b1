package images

import (
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// AuditPlaceholders walks the converted Markdown for image placeholders
// under images/ and returns the destinations that have no matching
// extracted file. Purely informational; callers log the result and move on.
func (r *Reconciler) AuditPlaceholders(markdown string, extracted []string) []string {
	have := make(map[string]bool, len(extracted))
	for _, p := range extracted {
		have[path.Base(toSlash(p))] = true
	}

	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var missing []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if strings.HasPrefix(dest, "images/") && !have[path.Base(dest)] {
			missing = append(missing, dest)
		}
		return ast.WalkContinue, nil
	})

	return missing
}

// toSlash normalizes Windows-style separators in stored paths before
// base-name comparison.
func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
