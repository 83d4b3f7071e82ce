package server

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"blog/internal/models"
)

// PostStore is the persistence surface the handlers write through.
// *repository.PostRepository implements it; tests use an in-memory
// fake.
type PostStore interface {
	Create(ctx context.Context, fields map[string]string) (*models.Post, error)
	Find(ctx context.Context, id int) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, id int, fields map[string]string) (*models.Post, error)
	Delete(ctx context.Context, id int) error
}

type CommentStore interface {
	Add(ctx context.Context, postID int, author, body string) (*models.Comment, error)
	ForPost(ctx context.Context, postID int) ([]models.Comment, error)
}

// PostCache is the read cache in front of the store. Cache errors are
// never fatal to a request.
type PostCache interface {
	GetPost(ctx context.Context, postID int) (*models.Post, error)
	SetPost(ctx context.Context, post *models.Post, ttl time.Duration) error
	InvalidatePost(ctx context.Context, postID int) error
}

// PostIndex is the full-text search surface.
type PostIndex interface {
	IndexPost(ctx context.Context, post *models.Post) error
	RemovePost(ctx context.Context, postID int) error
	Search(ctx context.Context, query string) ([]models.Post, error)
}

// Pinger reports whether the underlying store is reachable. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	posts    PostStore
	comments CommentStore
	cache    PostCache
	index    PostIndex
	db       Pinger
	tmpl     map[string]*template.Template
	logger   *zap.Logger
}

type Options struct {
	Posts       PostStore
	Comments    CommentStore
	Cache       PostCache
	Index       PostIndex
	DB          Pinger
	TemplateDir string
	Logger      *zap.Logger
}

// New parses the templates and wires the server. Each page template is
// combined with layout.html, so every page executes the "layout"
// template.
func New(opts Options) (*Server, error) {
	templates := map[string]*template.Template{}
	layout := filepath.Join(opts.TemplateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(opts.TemplateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates found in %s", opts.TemplateDir)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		posts:    opts.Posts,
		comments: opts.Comments,
		cache:    opts.Cache,
		index:    opts.Index,
		db:       opts.DB,
		tmpl:     templates,
		logger:   logger,
	}, nil
}

// Handler builds the route table. Mutations are POSTs because plain
// HTML forms cannot send PUT or DELETE.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/posts", http.StatusSeeOther)
	}).Methods("GET")

	r.HandleFunc("/posts", s.handleIndex).Methods("GET")
	r.HandleFunc("/posts", s.handleCreate).Methods("POST")
	r.HandleFunc("/posts/new", s.handleNewForm).Methods("GET")
	r.HandleFunc("/posts/search", s.handleSearch).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}", s.handleShow).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}", s.handleUpdate).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/edit", s.handleEditForm).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/delete", s.handleDelete).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.handleAddComment).Methods("POST")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	return r
}

// render executes into a buffer first so a template failure becomes a
// clean 500 instead of a truncated page with a success status.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := s.tmpl[name]
	if !ok {
		s.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	if _, ok := s.tmpl["error"]; !ok {
		http.Error(w, message, status)
		return
	}
	s.render(w, status, "error", map[string]any{
		"Status":  status,
		"Message": message,
	})
}
