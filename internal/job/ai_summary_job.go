package job

import (
	"context"

	"github.com/kylelee-dev/postbrief/internal/service"
)

type AISummaryJob struct {
	summaries *service.SummaryService
}

func NewAISummaryJob(summaries *service.SummaryService) *AISummaryJob {
	return &AISummaryJob{summaries: summaries}
}

func (j *AISummaryJob) Name() string {
	return "ai_summary"
}

func (j *AISummaryJob) Run(ctx context.Context) error {
	if j.summaries == nil {
		return nil
	}
	return j.summaries.Run(ctx)
}
