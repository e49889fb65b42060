package job

import (
	"context"

	"github.com/kylelee-dev/postbrief/internal/service"
)

type ContentBackfillJob struct {
	backfill *service.BackfillService
}

func NewContentBackfillJob(backfill *service.BackfillService) *ContentBackfillJob {
	return &ContentBackfillJob{backfill: backfill}
}

func (j *ContentBackfillJob) Name() string {
	return "content_backfill"
}

func (j *ContentBackfillJob) Run(ctx context.Context) error {
	if j.backfill == nil {
		return nil
	}
	return j.backfill.Run(ctx)
}
