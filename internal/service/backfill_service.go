package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kylelee-dev/postbrief/internal/model"
	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

const JobTypeContentBackfill = "CONTENT_BACKFILL"

type ContentStore interface {
	ListMissingContent(ctx context.Context) ([]model.Post, error)
	FillContent(ctx context.Context, id int64, content string) error
}

type ContentFetcher interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// BackfillService fills blank post content from the post's source URL
// so a later summary run has something to work with. Same run shape as
// the summary batch: per-post isolation, one audit row per run.
type BackfillService struct {
	posts   ContentStore
	runlog  RunLogStore
	fetcher ContentFetcher
}

func NewBackfillService(posts ContentStore, runlog RunLogStore, fetcher ContentFetcher) *BackfillService {
	return &BackfillService{posts: posts, runlog: runlog, fetcher: fetcher}
}

func (s *BackfillService) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	start := time.Now()

	posts, err := s.posts.ListMissingContent(ctx)
	if err != nil {
		logger.Error("failed to list posts missing content", zap.Error(err))
		appendOutcome(ctx, s.runlog, JobTypeContentBackfill, model.BatchStatusFailed, 0, 0, 0, truncate(err.Error(), 1000))
		return err
	}
	total := len(posts)
	if total == 0 {
		logger.Info("no posts missing content")
		return appendOutcome(ctx, s.runlog, JobTypeContentBackfill, model.BatchStatusSuccess, 0, 0, 0, "")
	}
	logger.Info("posts missing content", zap.Int("count", total))

	var successCount, failCount int
	for idx, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		itemLogger := logger.With(
			zap.Int64("post_id", post.ID),
			zap.Int("index", idx+1),
			zap.Int("total", total),
		)
		content, err := s.fetcher.Extract(ctx, post.URL)
		if err != nil {
			failCount++
			if appErr.IsNotFound(err) {
				itemLogger.Warn("source url not found", zap.String("url", post.URL))
				continue
			}
			itemLogger.Error("failed to fetch content", zap.String("url", post.URL), zap.String("error", truncate(err.Error(), 500)))
			continue
		}
		if err := s.posts.FillContent(ctx, post.ID, content); err != nil {
			if appErr.IsConflict(err) {
				itemLogger.Info("content filled concurrently, skipping")
				continue
			}
			failCount++
			itemLogger.Error("failed to save content", zap.String("error", truncate(err.Error(), 500)))
			continue
		}
		successCount++
	}

	logger.Info("content backfill finished",
		zap.Int("success", successCount),
		zap.Int("fail", failCount),
		zap.Int("total", total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return appendOutcome(ctx, s.runlog, JobTypeContentBackfill, model.BatchStatusSuccess, successCount, failCount, total, "")
}
