// Package view renders the HTML fragments and pages of the dashboard from embedded templates.
package view

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"io"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.New("").ParseFS(files, "templates/*.html"))

// ChangeCell is one column of the period-change table.
type ChangeCell struct {
	Header string
	Value  string
	Color  string // empty for unstyled cells
}

// Stat is one labelled entry of the snapshot stats grid.
type Stat struct {
	Label string
	Value string
}

// SnapshotPage holds the preformatted values of a coin snapshot.
type SnapshotPage struct {
	Timestamp    string
	LogoURL      string
	Name         string
	Symbol       string
	Rank         string
	MarketCap    string
	Price        string
	Direction    string
	Glyph        string
	Change24h    string
	Summary      string
	Website      string
	WebsiteLabel string
	Stats        []Stat
	ChangesTable template.HTML
	Chart        template.HTML
}

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func ChangesTable(cells []ChangeCell) (template.HTML, error) {
	return render("changes_table", cells)
}

// ChartImage inlines a PNG as a data URI image.
func ChartImage(alt string, png []byte) (template.HTML, error) {
	src := template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	return render("chart_image", map[string]any{"Src": src, "Alt": alt})
}

// ChartMessage renders the inline notice shown in place of a chart.
func ChartMessage(msg string) template.HTML {
	out, err := render("chart_message", msg)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(msg))
	}
	return out
}

func Snapshot(page SnapshotPage) (template.HTML, error) {
	return render("snapshot", page)
}

// Index writes the landing page.
func Index(w io.Writer) error {
	return templates.ExecuteTemplate(w, "index.html", nil)
}
