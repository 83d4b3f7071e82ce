package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/models"
)

func TestCommentAddAndList(t *testing.T) {
	database := testDB(t)
	posts := NewPostRepository(database)
	comments := NewCommentRepository(database)
	ctx := context.Background()

	post, err := posts.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)

	first, err := comments.Add(ctx, post.ID, "alice", "nice post")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Author)
	assert.False(t, first.CreatedAt.IsZero())

	// Empty author falls back to anonymous.
	second, err := comments.Add(ctx, post.ID, "", "me too")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", second.Author)

	list, err := comments.ForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "nice post", list[0].Body)
	assert.Equal(t, "me too", list[1].Body)
}

func TestCommentAddFailureWrapsCause(t *testing.T) {
	comments := NewCommentRepository(testDB(t))
	ctx := context.Background()

	// Dangling post id violates the foreign key. The sentinel and the
	// typed driver error must both survive the wrapping.
	_, err := comments.Add(ctx, 999, "alice", "orphan")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotPersisted)

	var sqliteErr sqlite3.Error
	assert.True(t, errors.As(err, &sqliteErr))
}

func TestCommentCascadeOnPostDelete(t *testing.T) {
	database := testDB(t)
	posts := NewPostRepository(database)
	comments := NewCommentRepository(database)
	ctx := context.Background()

	post, err := posts.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)
	_, err = comments.Add(ctx, post.ID, "alice", "nice post")
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, post.ID))

	list, err := comments.ForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
