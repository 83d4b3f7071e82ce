package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"blog/internal/models"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post from a field mapping. Only fillable fields
// (title, body) are read; anything else is dropped. Timestamps are set
// here, never by the caller.
func (r *PostRepository) Create(ctx context.Context, fields map[string]string) (*models.Post, error) {
	f := models.FilterFillable(fields)
	now := time.Now().UTC()

	var post models.Post
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, body, created_at, updated_at`,
		f["title"], f["body"], now, now,
	).Scan(&post.ID, &post.Title, &post.Body, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w: %w", models.ErrNotPersisted, err)
	}

	return &post, nil
}

// Find retrieves a post by its id.
func (r *PostRepository) Find(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, created_at, updated_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Title, &post.Body, &post.CreatedAt, &post.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// List returns all posts, newest first.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, created_at, updated_at FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Update overwrites only the supplied fillable fields and refreshes
// updated_at. Returns the updated post so callers can re-cache and
// re-index it.
func (r *PostRepository) Update(ctx context.Context, id int, fields map[string]string) (*models.Post, error) {
	f := models.FilterFillable(fields)

	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	for _, col := range []string{"title", "body"} {
		if v, ok := f[col]; ok {
			args = append(args, v)
			set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w: %w", models.ErrNotPersisted, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.ErrNotFound
	}

	return r.Find(ctx, id)
}

// Delete removes a post permanently. Comments go with it via the
// schema's ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}
