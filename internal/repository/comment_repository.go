package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blog/internal/models"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Add attaches a comment to a post. An empty author defaults to
// "anonymous". The caller is expected to have checked that the post
// exists; a dangling post id surfaces as a foreign key violation.
func (r *CommentRepository) Add(ctx context.Context, postID int, author, body string) (*models.Comment, error) {
	if author == "" {
		author = "anonymous"
	}

	var comment models.Comment
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, author, body, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, post_id, author, body, created_at`,
		postID, author, body, time.Now().UTC(),
	).Scan(&comment.ID, &comment.PostID, &comment.Author, &comment.Body, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w: %w", models.ErrNotPersisted, err)
	}

	return &comment, nil
}

// ForPost returns a post's comments, oldest first.
func (r *CommentRepository) ForPost(ctx context.Context, postID int) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, author, body, created_at FROM comments WHERE post_id = $1 ORDER BY id`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
