package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(config.DB{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestPostCreateFind(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Body)
	assert.False(t, post.CreatedAt.IsZero())
	assert.False(t, post.UpdatedAt.IsZero())

	found, err := repo.Find(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, found.Title)
	assert.Equal(t, post.Body, found.Body)
}

func TestPostCreateIgnoresNonFillable(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{
		"title":      "Hello",
		"body":       "World",
		"id":         "999",
		"created_at": "2000-01-01 00:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, post.ID)
	assert.Greater(t, post.CreatedAt.Year(), 2000)
}

func TestPostListNewestFirst(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, map[string]string{"title": title, "body": "b"})
		require.NoError(t, err)
	}

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Title)
	assert.Equal(t, "first", posts[2].Title)
}

func TestPostUpdate(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// Partial update: only the supplied field changes.
	updated, err := repo.Update(ctx, post.ID, map[string]string{"title": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", updated.Title)
	assert.Equal(t, "World", updated.Body)
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))
	assert.Equal(t, post.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestPostUpdateMissing(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, 999, map[string]string{"title": "Hi"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The store is unchanged.
	found, err := repo.Find(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", found.Title)
}

func TestPostWriteFailureWrapsCause(t *testing.T) {
	database := testDB(t)
	repo := NewPostRepository(database)
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)

	require.NoError(t, database.Close())

	// The NotPersisted sentinel and the driver cause both stay on the
	// chain.
	_, err = repo.Create(ctx, map[string]string{"title": "x", "body": "y"})
	assert.ErrorIs(t, err, models.ErrNotPersisted)
	assert.ErrorContains(t, err, "database is closed")

	_, err = repo.Update(ctx, post.ID, map[string]string{"title": "x"})
	assert.ErrorIs(t, err, models.ErrNotPersisted)
	assert.ErrorContains(t, err, "database is closed")
}

func TestPostDelete(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.Find(ctx, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), models.ErrNotFound)
}

func TestPostLifecycle(t *testing.T) {
	repo := NewPostRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, map[string]string{"title": "Hello", "body": "World"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	time.Sleep(20 * time.Millisecond)

	updated, err := repo.Update(ctx, created.ID, map[string]string{"title": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", updated.Title)
	assert.Equal(t, "World", updated.Body)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Find(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
