package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/social-insights/internal/domain/analytics/entity"
)

const uniqueViolation = "23505"

const postColumns = `post_id, platform, topic, format, posted_at, likes, comments, shares, impressions, clicks, saves`

// posted_ts holds posted_at as an instant so mixed zone offsets sort correctly
const insertColumns = postColumns + `, posted_ts`

// PostPostgres implements PostRepository for PostgreSQL
type PostPostgres struct {
	pool *pgxpool.Pool
}

// NewPostPostgres creates a new PostgreSQL post repository
func NewPostPostgres(pool *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{pool: pool}
}

// Create inserts a new post
func (r *PostPostgres) Create(ctx context.Context, post *entity.PostMetrics) error {
	query := `
		INSERT INTO post_metrics (` + insertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query, postArgs(post)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entity.ErrDuplicatePost
		}
		return fmt.Errorf("inserting post: %w", err)
	}

	return nil
}

// Upsert inserts a post or refreshes its metadata and counters
func (r *PostPostgres) Upsert(ctx context.Context, post *entity.PostMetrics) error {
	query := `
		INSERT INTO post_metrics (` + insertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (post_id) DO UPDATE SET
			platform = EXCLUDED.platform,
			topic = EXCLUDED.topic,
			format = EXCLUDED.format,
			posted_at = EXCLUDED.posted_at,
			posted_ts = EXCLUDED.posted_ts,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			saves = EXCLUDED.saves,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, postArgs(post)...); err != nil {
		return fmt.Errorf("upserting post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostPostgres) GetByID(ctx context.Context, id string) (*entity.PostMetrics, error) {
	query := `SELECT ` + postColumns + ` FROM post_metrics WHERE post_id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	return post, nil
}

// Delete removes a post
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM post_metrics WHERE post_id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// List retrieves posts with filtering
func (r *PostPostgres) List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.PostMetrics, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + postColumns + ` FROM post_metrics` + where + ` ORDER BY posted_ts ASC NULLS LAST, post_id ASC`

	argNum := len(args) + 1
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, opts.Limit)
		argNum++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, opts.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []entity.PostMetrics{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

// Count returns the number of posts matching the filter
func (r *PostPostgres) Count(ctx context.Context, filter PostFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_metrics`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return count, nil
}

func buildWhere(filter PostFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filter.Platform != nil {
		where += fmt.Sprintf(" AND platform = $%d", argNum)
		args = append(args, string(*filter.Platform))
		argNum++
	}
	if filter.Topic != nil {
		where += fmt.Sprintf(" AND topic = $%d", argNum)
		args = append(args, *filter.Topic)
		argNum++
	}
	if filter.Format != nil {
		where += fmt.Sprintf(" AND format = $%d", argNum)
		args = append(args, string(*filter.Format))
	}

	return where, args
}

func postArgs(post *entity.PostMetrics) []interface{} {
	var postedAt *string
	var postedTS *time.Time
	if post.Timestamp != "" {
		postedAt = &post.Timestamp
	}
	if t, ok := post.PostedAt(); ok {
		utc := t.UTC()
		postedTS = &utc
	}
	return []interface{}{
		post.PostID,
		string(post.Platform),
		post.Topic,
		string(post.Format),
		postedAt,
		post.Likes,
		post.Comments,
		post.Shares,
		post.Impressions,
		post.Clicks,
		post.Saves,
		postedTS,
	}
}

func scanPost(row pgx.Row) (*entity.PostMetrics, error) {
	var post entity.PostMetrics
	var platform, format string
	var postedAt *string

	err := row.Scan(
		&post.PostID,
		&platform,
		&post.Topic,
		&format,
		&postedAt,
		&post.Likes,
		&post.Comments,
		&post.Shares,
		&post.Impressions,
		&post.Clicks,
		&post.Saves,
	)
	if err != nil {
		return nil, err
	}

	post.Platform = entity.Platform(platform)
	post.Format = entity.Format(format)
	if postedAt != nil {
		post.Timestamp = *postedAt
	}

	return &post, nil
}
