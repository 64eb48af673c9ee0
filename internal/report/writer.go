package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Formats the writer can emit.
const (
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatHTML     = "html"
)

// Writer persists reports under a directory, one file per format.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir. The directory is created on the
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders the report in each requested format and returns the file
// paths in the same order. With no formats given it writes markdown only.
func (w *Writer) Write(rep Report, formats ...string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatMarkdown}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	base := fmt.Sprintf("air-report-%s-%s", rep.CreatedAt.Format("20060102-150405"), shortID(rep.ID))

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		var content []byte
		switch format {
		case FormatMarkdown, FormatText:
			// The text rendition is the markdown source itself.
			content = []byte(rep.Markdown)
		case FormatHTML:
			html, err := renderHTML(rep)
			if err != nil {
				return nil, err
			}
			content = html
		default:
			return nil, fmt.Errorf("unsupported report format %q", format)
		}

		path := filepath.Join(w.dir, base+"."+format)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Gotham Air Quality Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 820px; margin: 2rem auto; padding: 0 1rem; background: #050609; color: #e0e0e0; }
h1, h2 { color: #ffffff; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { padding: 8px 12px; border-bottom: 1px solid #444; text-align: left; }
blockquote { border-left: 5px solid #00cc66; margin: 1rem 0; padding: 0.5rem 1rem; background: rgba(255, 255, 255, 0.05); }
</style>
</head>
<body>
%s</body>
</html>
`

func renderHTML(rep Report) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(rep.Markdown), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, htmlShell, body.String())
	return out.Bytes(), nil
}

// Preview renders the report for the terminal. Falls back to the raw markdown
// when no renderer can be built.
func Preview(rep Report) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return rep.Markdown
	}
	out, err := renderer.Render(rep.Markdown)
	if err != nil {
		return rep.Markdown
	}
	return out
}
