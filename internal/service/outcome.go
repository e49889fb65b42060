package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kylelee-dev/postbrief/internal/model"
)

// appendOutcome records exactly one audit row for a run. It makes a
// single attempt; store errors are returned to the caller rather than
// masked, since losing an audit entry is worth surfacing.
func appendOutcome(ctx context.Context, store RunLogStore, jobType, status string, success, fail, total int, errMsg string) error {
	detail, err := json.Marshal(model.BatchDetail{
		SuccessCount: success,
		FailCount:    fail,
		TotalCount:   total,
	})
	if err != nil {
		return err
	}
	level := model.BatchLogLevelInfo
	if status == model.BatchStatusFailed {
		level = model.BatchLogLevelError
	}
	entry := &model.BatchLog{
		JobType:       jobType,
		LogLevel:      level,
		Status:        status,
		AffectedCount: success,
		Detail:        string(detail),
		ErrorMessage:  errMsg,
	}
	if err := store.Append(ctx, entry); err != nil {
		logutil.GetLogger(ctx).Error("failed to append batch log",
			zap.String("job_type", jobType), zap.Error(err))
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
