package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/output"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server serves the current and archive documents as a small reader.
type Server struct {
	currentPath string
	archivePath string
	pages       map[string]*template.Template
	mux         *http.ServeMux
}

// New creates a Server reading the documents at currentPath and archivePath
// on every request.
func New(currentPath, archivePath string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "archive.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		currentPath: currentPath,
		archivePath: archivePath,
		pages:       pages,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/archive", s.handleArchive)
	s.mux.HandleFunc("/feeds.json", s.serveFile(func() string { return s.currentPath }))
	s.mux.HandleFunc("/archive.json", s.serveFile(func() string { return s.archivePath }))
}

// filter is the tag/source selection taken from the query string.
type filter struct {
	Tag    string
	Source string
}

func filterFrom(r *http.Request) filter {
	return filter{
		Tag:    strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tag"))),
		Source: strings.TrimSpace(r.URL.Query().Get("source")),
	}
}

func (f filter) apply(articles []article.Article) []article.Article {
	if f.Tag == "" && f.Source == "" {
		return articles
	}
	var out []article.Article
	for _, a := range articles {
		if f.Source != "" && a.Source != f.Source {
			continue
		}
		if f.Tag != "" && !hasTag(a, f.Tag) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func hasTag(a article.Article, tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	doc, err := output.ReadCurrentDocument(s.currentPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.render(w, "index.html", map[string]any{"Empty": true})
		return
	}
	if err != nil {
		log.Printf("Error reading %s: %v", s.currentPath, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	f := filterFrom(r)
	articles := f.apply(doc.Articles)
	s.render(w, "index.html", map[string]any{
		"Doc":    doc,
		"Filter": f,
		"Count":  len(articles),
		"Digest": output.Markdown("Latest articles", articles),
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	doc, err := output.ReadArchiveDocument(s.archivePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.render(w, "archive.html", map[string]any{"Empty": true})
		return
	}
	if err != nil {
		log.Printf("Error reading %s: %v", s.archivePath, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	f := filterFrom(r)
	articles := f.apply(doc.Articles)
	s.render(w, "archive.html", map[string]any{
		"Doc":    doc,
		"Filter": f,
		"Count":  len(articles),
		"Digest": output.Markdown("Archive", articles),
	})
}

func (s *Server) serveFile(path func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		http.ServeFile(w, r, path())
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(currentPath, archivePath string, port int) error {
	srv, err := New(currentPath, archivePath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
