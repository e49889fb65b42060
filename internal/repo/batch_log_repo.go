package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/kylelee-dev/postbrief/internal/model"
	"github.com/kylelee-dev/postbrief/internal/pkg/dbutil"
)

// BatchLogRepo appends audit rows for batch runs. Each Append is a
// single statement on the shared connection pool, independent of the
// per-post transactions the run itself opens.
type BatchLogRepo struct {
	db *sql.DB
}

func NewBatchLogRepo(db *sql.DB) *BatchLogRepo {
	return &BatchLogRepo{db: db}
}

func (r *BatchLogRepo) Append(ctx context.Context, entry *model.BatchLog) error {
	data := map[string]interface{}{
		"job_type":       entry.JobType,
		"log_level":      entry.LogLevel,
		"status":         entry.Status,
		"affected_count": entry.AffectedCount,
		"detail":         entry.Detail,
	}
	if entry.ErrorMessage != "" {
		data["error_message"] = entry.ErrorMessage
	}
	sqlStr, args, err := builder.BuildInsert("batch_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
