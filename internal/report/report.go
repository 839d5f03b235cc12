package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Table is a fully materialised display table. All string-joining of
// multi-valued fields happens when tables are built, keeping the core's gene
// sets intact for comparison.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Renderer writes HTML report pages into a run folder.
type Renderer struct {
	dir    string
	logger *logrus.Logger
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
h2 { margin-top: 1.5em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Filtered}}
<h2>{{.Title}}</h2>
{{template "table" .}}
{{end}}
<h2>{{.Full.Title}}</h2>
{{template "table" .Full}}
</body>
</html>
{{define "table"}}<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>{{end}}`

var page = template.Must(template.New("page").Parse(pageTemplate))

// NewRenderer creates a renderer rooted at an existing run folder.
func NewRenderer(dir string, logger *logrus.Logger) *Renderer {
	return &Renderer{dir: dir, logger: logger}
}

// NewRunFolder creates and returns a dated output folder under base, named
// YYMMDD-n with n incremented until a free name is found.
func NewRunFolder(base string) (string, error) {
	date := time.Now().Format("060102")

	for counter := 1; ; counter++ {
		dir := filepath.Join(base, fmt.Sprintf("%s-%d", date, counter))
		if _, err := os.Stat(dir); err == nil {
			continue
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output folder %s: %w", dir, err)
		}
		return dir, nil
	}
}

// Render writes one HTML page containing the full table preceded by zero or
// more filtered sub-tables derived from it.
func (r *Renderer) Render(name string, full Table, filtered ...Table) error {
	path := filepath.Join(r.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()

	data := struct {
		Title    string
		Full     Table
		Filtered []Table
	}{
		Title:    full.Title,
		Full:     full,
		Filtered: filtered,
	}

	if err := page.Execute(f, data); err != nil {
		return fmt.Errorf("rendering report %s: %w", path, err)
	}

	r.logger.WithFields(logrus.Fields{
		"report": name,
		"rows":   len(full.Rows),
	}).Info("Wrote report")

	return nil
}
