// Package testsupport provides in-memory stand-ins for the server's
// store, cache and index dependencies.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blog/internal/models"
)

type PostStoreFake struct {
	mu      sync.Mutex
	nextID  int
	posts   map[int]models.Post
	failErr error
}

func NewPostStoreFake() *PostStoreFake {
	return &PostStoreFake{posts: map[int]models.Post{}}
}

// FailWith makes every write return err until called again with nil,
// for exercising the store-failure paths.
func (f *PostStoreFake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

func (f *PostStoreFake) Create(_ context.Context, fields map[string]string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	ff := models.FilterFillable(fields)
	f.nextID++
	now := time.Now().UTC()
	post := models.Post{
		ID:        f.nextID,
		Title:     ff["title"],
		Body:      ff["body"],
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.posts[post.ID] = post
	return &post, nil
}

func (f *PostStoreFake) Find(_ context.Context, id int) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &post, nil
}

func (f *PostStoreFake) List(_ context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (f *PostStoreFake) Update(_ context.Context, id int, fields map[string]string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	ff := models.FilterFillable(fields)
	if v, ok := ff["title"]; ok {
		post.Title = v
	}
	if v, ok := ff["body"]; ok {
		post.Body = v
	}
	post.UpdatedAt = time.Now().UTC()
	f.posts[id] = post
	return &post, nil
}

func (f *PostStoreFake) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	if _, ok := f.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

type CommentStoreFake struct {
	mu       sync.Mutex
	nextID   int
	comments []models.Comment
	failErr  error
}

func NewCommentStoreFake() *CommentStoreFake {
	return &CommentStoreFake{}
}

// FailWith makes Add return err until called again with nil.
func (f *CommentStoreFake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

func (f *CommentStoreFake) Add(_ context.Context, postID int, author, body string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	if author == "" {
		author = "anonymous"
	}
	f.nextID++
	comment := models.Comment{
		ID:        f.nextID,
		PostID:    postID,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	f.comments = append(f.comments, comment)
	return &comment, nil
}

func (f *CommentStoreFake) ForPost(_ context.Context, postID int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

// CacheFake keeps posts in a map and ignores TTLs.
type CacheFake struct {
	mu    sync.Mutex
	posts map[int]models.Post
}

func NewCacheFake() *CacheFake {
	return &CacheFake{posts: map[int]models.Post{}}
}

func (f *CacheFake) GetPost(_ context.Context, postID int) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[postID]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (f *CacheFake) SetPost(_ context.Context, post *models.Post, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[post.ID] = *post
	return nil
}

func (f *CacheFake) InvalidatePost(_ context.Context, postID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, postID)
	return nil
}

// IndexFake records indexed documents and answers Search with a
// case-insensitive substring match over title and body.
type IndexFake struct {
	mu   sync.Mutex
	docs map[int]models.Post
}

func NewIndexFake() *IndexFake {
	return &IndexFake{docs: map[int]models.Post{}}
}

func (f *IndexFake) IndexPost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[post.ID] = *post
	return nil
}

func (f *IndexFake) RemovePost(_ context.Context, postID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, postID)
	return nil
}

func (f *IndexFake) Search(_ context.Context, query string) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Post
	for _, p := range f.docs {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Body), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Contains reports whether a document for the post id is indexed.
func (f *IndexFake) Contains(postID int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[postID]
	return ok
}

// PingerFake stands in for the store's liveness check.
type PingerFake struct {
	Err error
}

func (f *PingerFake) PingContext(context.Context) error {
	return f.Err
}
