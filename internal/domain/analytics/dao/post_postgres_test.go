package dao

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

// newTestPool connects to TEST_DATABASE_URL and applies the schema on a clean table
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../../migrations/001_post_metrics.sql")
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS post_metrics")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	return pool
}

func TestPostPostgres(t *testing.T) {
	repo := NewPostPostgres(newTestPool(t))
	ctx := context.Background()

	for _, p := range SamplePosts() {
		require.NoError(t, repo.Create(ctx, &p))
	}

	dup := SamplePosts()[0]
	assert.ErrorIs(t, repo.Create(ctx, &dup), entity.ErrDuplicatePost)

	got, err := repo.GetByID(ctx, "IG_002")
	require.NoError(t, err)
	assert.Equal(t, SamplePosts()[3], *got)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	platform := entity.PlatformInstagram
	posts, err := repo.List(ctx, PostFilter{Platform: &platform}, ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "IG_001", posts[0].PostID)

	topic := "AI Technology"
	count, err := repo.Count(ctx, PostFilter{Topic: &topic})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	page, err := repo.List(ctx, PostFilter{}, ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "TW_001", page[0].PostID)

	updated := SamplePosts()[1]
	updated.Likes = 5000
	require.NoError(t, repo.Upsert(ctx, &updated))
	got, err = repo.GetByID(ctx, updated.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Likes)

	require.NoError(t, repo.Delete(ctx, "TW_001"))
	count, err = repo.Count(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestPostPostgres_OrdersByInstant(t *testing.T) {
	repo := NewPostPostgres(newTestPool(t))
	ctx := context.Background()

	for _, p := range []entity.PostMetrics{
		{PostID: "late", Platform: entity.PlatformInstagram, Timestamp: "2024-01-15T06:00:00Z"},
		{PostID: "early", Platform: entity.PlatformInstagram, Timestamp: "2024-01-15T10:00:00+05:00"},
		{PostID: "undated", Platform: entity.PlatformInstagram},
	} {
		require.NoError(t, repo.Create(ctx, &p))
	}

	posts, err := repo.List(ctx, PostFilter{}, ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "early", posts[0].PostID)
	assert.Equal(t, "2024-01-15T10:00:00+05:00", posts[0].Timestamp)
	assert.Equal(t, "late", posts[1].PostID)
	assert.Equal(t, "undated", posts[2].PostID)
}
