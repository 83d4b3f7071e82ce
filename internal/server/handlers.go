package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"blog/internal/cache"
	"blog/internal/models"
	"blog/internal/validate"
)

func postRules() validate.Rules {
	return validate.Rules{
		"title": {validate.Required(), validate.MaxLength(200)},
		"body":  {validate.Required(), validate.MaxLength(10000)},
	}
}

func commentRules() validate.Rules {
	return validate.Rules{
		"body":   {validate.Required(), validate.MaxLength(2000)},
		"author": {validate.MaxLength(80)},
	}
}

// formFields flattens posted form values into the field mapping the
// store expects. The fillable allow-list is applied inside the store,
// so extra fields submitted here are silently dropped.
func formFields(form url.Values) map[string]string {
	fields := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

// GET /posts
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list posts", zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not load posts")
		return
	}
	s.render(w, http.StatusOK, "index", map[string]any{
		"Posts": posts,
	})
}

// GET /posts/new
func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "new", map[string]any{
		"Errors": validate.Errors{},
		"Values": url.Values{},
	})
}

// POST /posts
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}

	errs := postRules().Validate(r.PostForm)
	if !errs.Valid() {
		s.render(w, http.StatusUnprocessableEntity, "new", map[string]any{
			"Errors": errs,
			"Values": r.PostForm,
		})
		return
	}

	post, err := s.posts.Create(r.Context(), formFields(r.PostForm))
	if err != nil {
		s.logger.Error("failed to create post", zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not create post")
		return
	}

	go s.indexPost(post)

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// GET /posts/{id}
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	ctx := r.Context()

	post, err := s.cache.GetPost(ctx, id)
	if err != nil {
		s.logger.Warn("cache read failed", zap.Int("post_id", id), zap.Error(err))
	}
	if post == nil {
		post, err = s.posts.Find(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "post not found")
			return
		}
		if err != nil {
			s.logger.Error("failed to get post", zap.Int("post_id", id), zap.Error(err))
			s.renderError(w, http.StatusInternalServerError, "could not load post")
			return
		}
		if err := s.cache.SetPost(ctx, post, cache.DefaultTTL); err != nil {
			s.logger.Warn("cache write failed", zap.Int("post_id", id), zap.Error(err))
		}
	}

	comments, err := s.comments.ForPost(ctx, id)
	if err != nil {
		s.logger.Error("failed to list comments", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not load comments")
		return
	}

	s.render(w, http.StatusOK, "show", map[string]any{
		"Post":          post,
		"Comments":      comments,
		"CommentErrors": validate.Errors{},
		"CommentValues": url.Values{},
	})
}

// GET /posts/{id}/edit
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	post, err := s.posts.Find(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get post", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not load post")
		return
	}

	s.render(w, http.StatusOK, "edit", map[string]any{
		"PostID": post.ID,
		"Errors": validate.Errors{},
		"Values": url.Values{"title": {post.Title}, "body": {post.Body}},
	})
}

// POST /posts/{id}
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}

	errs := postRules().Validate(r.PostForm)
	if !errs.Valid() {
		s.render(w, http.StatusUnprocessableEntity, "edit", map[string]any{
			"PostID": id,
			"Errors": errs,
			"Values": r.PostForm,
		})
		return
	}

	post, err := s.posts.Update(r.Context(), id, formFields(r.PostForm))
	if errors.Is(err, models.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update post", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not update post")
		return
	}

	if err := s.cache.InvalidatePost(r.Context(), id); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Int("post_id", id), zap.Error(err))
	}

	go s.indexPost(post)

	http.Redirect(w, r, "/posts/"+strconv.Itoa(id), http.StatusSeeOther)
}

// POST /posts/{id}/delete
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	err := s.posts.Delete(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete post", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not delete post")
		return
	}

	if err := s.cache.InvalidatePost(r.Context(), id); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Int("post_id", id), zap.Error(err))
	}

	go s.removeFromIndex(id)

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// POST /posts/{id}/comments
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	ctx := r.Context()

	post, err := s.posts.Find(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		s.renderError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get post", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not load post")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}

	errs := commentRules().Validate(r.PostForm)
	if !errs.Valid() {
		comments, cerr := s.comments.ForPost(ctx, id)
		if cerr != nil {
			s.logger.Error("failed to list comments", zap.Int("post_id", id), zap.Error(cerr))
			s.renderError(w, http.StatusInternalServerError, "could not load comments")
			return
		}
		s.render(w, http.StatusUnprocessableEntity, "show", map[string]any{
			"Post":          post,
			"Comments":      comments,
			"CommentErrors": errs,
			"CommentValues": r.PostForm,
		})
		return
	}

	if _, err := s.comments.Add(ctx, id, r.PostFormValue("author"), r.PostFormValue("body")); err != nil {
		s.logger.Error("failed to add comment", zap.Int("post_id", id), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "could not add comment")
		return
	}

	http.Redirect(w, r, "/posts/"+strconv.Itoa(id), http.StatusSeeOther)
}

// GET /posts/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.render(w, http.StatusOK, "search", map[string]any{
			"Query":    "",
			"Searched": false,
		})
		return
	}

	posts, err := s.index.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		s.renderError(w, http.StatusInternalServerError, "search is unavailable")
		return
	}

	s.render(w, http.StatusOK, "search", map[string]any{
		"Query":    query,
		"Searched": true,
		"Posts":    posts,
	})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

// indexPost and removeFromIndex run in fire-and-forget goroutines, so
// they use a fresh context rather than the request's.
func (s *Server) indexPost(post *models.Post) {
	if err := s.index.IndexPost(context.Background(), post); err != nil {
		s.logger.Warn("failed to index post", zap.Int("post_id", post.ID), zap.Error(err))
	}
}

func (s *Server) removeFromIndex(id int) {
	if err := s.index.RemovePost(context.Background(), id); err != nil {
		s.logger.Warn("failed to remove post from index", zap.Int("post_id", id), zap.Error(err))
	}
}
