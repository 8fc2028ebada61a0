package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"todolists/models"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var pageNames = []string{
	"list_index.html",
	"list_detail.html",
	"list_form.html",
	"list_confirm_delete.html",
	"entry_form.html",
	"entry_confirm_delete.html",
	"profile.html",
	"login.html",
	"register.html",
	"not_found.html",
}

// TemplateFS returns the filesystem templates are read from: dir on disk when
// set, otherwise the templates compiled into the binary.
func TemplateFS(dir string) (afero.Fs, error) {
	if dir != "" {
		return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
	}
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return afero.FromIOFS{FS: sub}, nil
}

// pageData is the single view model shared by all HTML pages.
type pageData struct {
	Viewer      models.Viewer
	CurrentPath string
	Heading     string
	Lists       []models.List
	List        *models.List
	Entry       *models.Entry
	Profile     *models.User
	IsOwner     bool
	ListForm    models.ListFields
	EntryForm   models.EntryFields
	Username    string
	Next        string
	Errors      map[string]string
}

// Renderer executes page templates layered on the shared base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses base.html plus every page from fsys.
func NewRenderer(fsys afero.Fs) (*Renderer, error) {
	funcMap := template.FuncMap{
		"timestamp": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
	}

	baseContent, err := afero.ReadFile(fsys, "base.html")
	if err != nil {
		return nil, fmt.Errorf("read base template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pageContent, err := afero.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		tmpl, err := template.New(name).Funcs(funcMap).Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("parse base for %s: %w", name, err)
		}
		if tmpl, err = tmpl.Parse(string(pageContent)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render executes a page into a buffer first so template failures become a
// clean 500 instead of a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		log.Printf("[handlers] unknown template %q", page)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("[handlers] template %s error: %v", page, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
