// Package view renders the weather page.
package view

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/fakhrymubarak/weather-advisor/internal/model"
)

// CityNotFoundMessage replaces the card when a lookup fails.
const CityNotFoundMessage = "City not found. Please check the spelling or try a different city."

// LookupFailedMessage replaces the card when the provider answered with an
// unexpected payload.
const LookupFailedMessage = "Weather data could not be read. Please try again later."

//go:embed templates/*.tmpl
var templates embed.FS

var page = template.Must(
	template.New("page.html.tmpl").
		Funcs(template.FuncMap{"number": number}).
		ParseFS(templates, "templates/page.html.tmpl"),
)

// Page is the data rendered into the page template. At most one of Report,
// Error and ConfigError is set.
type Page struct {
	BackgroundURL string
	City          string
	Report        *model.Report
	Error         string
	ConfigError   string
}

// Render writes p as HTML.
func Render(w io.Writer, p Page) error {
	return page.Execute(w, p)
}

// number prints f the shortest way that round-trips, e.g. 12.5 or -5.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
