package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/plume/internal/domain"
	"github.com/msomdec/plume/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is what every template renders against.
type pageData struct {
	Title  string
	User   *domain.User
	Flash  *Flash
	Errors service.FieldErrors
	Form   map[string]string
	Data   any
}

var templates = parseTemplates()

func parseTemplates() map[string]*template.Template {
	funcs := template.FuncMap{
		"contentHTML": contentHTML,
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}

	parsed := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if name == "layout.html" {
			continue
		}
		parsed[name] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
				"templates/layout.html", "templates/"+name))
	}
	return parsed
}

// render writes a page. The pending flash, if any, is consumed and the
// signed-in user attached so the layout can show both.
func render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	tmpl, ok := templates[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", internalStatus)
		return
	}

	data.User = UserFromContext(r.Context())
	if data.Flash == nil {
		data.Flash = popFlash(w, r)
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render template", "page", page, "error", err)
	}
}

// The public error pages are 404, 403, and 505; the 505 is intentional.
const internalStatus = http.StatusHTTPVersionNotSupported

type errorPage struct {
	Status  int
	Heading string
	Detail  string
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "error.html", pageData{
		Title: "Not Found",
		Data: errorPage{
			Status:  http.StatusNotFound,
			Heading: "Oops. Page Not Found (404)",
			Detail:  "That page does not exist. Please try a different location.",
		},
	})
}

func renderForbidden(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "error.html", pageData{
		Title: "Forbidden",
		Data: errorPage{
			Status:  http.StatusForbidden,
			Heading: "You don't have permission to do that (403)",
			Detail:  "Please check your account and try again.",
		},
	})
}

func renderInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	render(w, r, internalStatus, "error.html", pageData{
		Title: "Error",
		Data: errorPage{
			Status:  internalStatus,
			Heading: "Something went wrong (505)",
			Detail:  "We're experiencing some trouble on our end. Please try again in the near future.",
		},
	})
}

// contentHTML renders stored post content. Everything the author typed is
// escaped; only the stored line-break markers come through as markup.
func contentHTML(stored string) template.HTML {
	parts := strings.Split(stored, "<br>")
	for i := range parts {
		parts[i] = template.HTMLEscapeString(parts[i])
	}
	return template.HTML(strings.Join(parts, "<br>"))
}
