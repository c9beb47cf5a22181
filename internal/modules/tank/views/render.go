package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var pageTmpl *template.Template

// loadTemplatesFromFS is split out so tests can feed a broken fs.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates parses the embedded templates. Call once during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PlotImage is one embedded chart on the page.
type PlotImage struct {
	Label string
	Src   string
}

// SummaryRow is a line of the daily summary table.
type SummaryRow struct {
	Label     string
	Available bool
	Count     int
	Min       float64
	Mean      float64
	Max       float64
}

// PageData is the view model for the SGR page.
type PageData struct {
	Date        string
	Tank        string
	MainImage   string
	Plots       []PlotImage
	Summaries   []SummaryRow // empty when the day's data could not be loaded
	Unavailable string
}

func RenderPage(w io.Writer, data *PageData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "sgr.html", data)
}
