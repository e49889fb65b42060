package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/kylelee-dev/postbrief/internal/model"
	"github.com/kylelee-dev/postbrief/internal/pkg/dbutil"
	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

// Eligibility predicate: summary missing, content present and
// non-blank after trimming. Ordered by id so reruns walk the same
// candidates in the same order.
const listEligibleSQL = `
SELECT id, COALESCE(title, ''), content
FROM posts
WHERE summary IS NULL
  AND content IS NOT NULL
  AND content <> ''
  AND TRIM(content) <> ''
ORDER BY id ASC`

const listMissingContentSQL = `
SELECT id, COALESCE(title, ''), url
FROM posts
WHERE (content IS NULL OR TRIM(content) = '')
  AND url IS NOT NULL
  AND url <> ''
ORDER BY id ASC`

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

func (r *PostRepo) ListEligible(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, listEligibleSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetSummary reports the current summary value for one post; present
// is false when the column is still NULL.
func (r *PostRepo) GetSummary(ctx context.Context, id int64) (string, bool, error) {
	sqlStr, args, err := builder.BuildSelect("posts", map[string]interface{}{"id": id}, []string{"summary"})
	if err != nil {
		return "", false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var summary sql.NullString
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&summary); err != nil {
		if err == sql.ErrNoRows {
			return "", false, appErr.ErrNotFound
		}
		return "", false, err
	}
	return summary.String, summary.Valid, nil
}

// FillSummary writes a summary in its own transaction and commits
// immediately. The update only matches while summary is still NULL, so
// a summary written by this job is never overwritten; a concurrent
// fill surfaces as ErrConflict.
func (r *PostRepo) FillSummary(ctx context.Context, id int64, summary string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `UPDATE posts SET summary = $1 WHERE id = $2 AND summary IS NULL`, summary, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return appErr.ErrConflict
	}
	return tx.Commit()
}

func (r *PostRepo) ListMissingContent(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, listMissingContentSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.URL); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// FillContent mirrors FillSummary for the backfill path: it only
// touches rows whose content is still blank.
func (r *PostRepo) FillContent(ctx context.Context, id int64, content string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `UPDATE posts SET content = $1 WHERE id = $2 AND (content IS NULL OR TRIM(content) = '')`, content, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return appErr.ErrConflict
	}
	return tx.Commit()
}
