package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kylelee-dev/postbrief/internal/ai"
	"github.com/kylelee-dev/postbrief/internal/model"
	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

const JobTypeAISummary = "AI_SUMMARY"

const (
	defaultCooldown = 120 * time.Second
	defaultPace     = 2 * time.Second
)

type PostStore interface {
	ListEligible(ctx context.Context) ([]model.Post, error)
	GetSummary(ctx context.Context, id int64) (string, bool, error)
	FillSummary(ctx context.Context, id int64, summary string) error
}

type RunLogStore interface {
	Append(ctx context.Context, entry *model.BatchLog) error
}

type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

type recordOutcome int

const (
	recordSkipped recordOutcome = iota
	recordSuccess
	recordFailed
	// recordAborted means the provider stayed rate-limited through the
	// cooldown and retry; the rest of the run is given up.
	recordAborted
)

type SummaryServiceConfig struct {
	Cooldown time.Duration
	Pace     time.Duration
}

// SummaryService walks the posts that still lack a summary, generates
// one per post and commits each result on its own. A crash mid-run
// loses nothing: the next run re-selects whatever is still pending and
// the write-once update makes duplicate work a no-op.
type SummaryService struct {
	posts      PostStore
	runlog     RunLogStore
	summarizer Summarizer
	classify   ai.Classifier
	cooldown   time.Duration
	pace       time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewSummaryService(posts PostStore, runlog RunLogStore, summarizer Summarizer, cfg SummaryServiceConfig) *SummaryService {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	pace := cfg.Pace
	if pace <= 0 {
		pace = defaultPace
	}
	return &SummaryService{
		posts:      posts,
		runlog:     runlog,
		summarizer: summarizer,
		classify:   ai.ClassifyQuotaError,
		cooldown:   cooldown,
		pace:       pace,
		sleep:      sleepContext,
	}
}

// Run processes the full candidate set. Per-post failures are counted
// and absorbed; only a failure outside the per-post loop (or context
// cancellation) comes back as an error, and that path is recorded as a
// FAILED run before propagating.
func (s *SummaryService) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	start := time.Now()

	posts, err := s.posts.ListEligible(ctx)
	if err != nil {
		logger.Error("failed to list posts pending summary", zap.Error(err))
		s.appendOutcome(ctx, model.BatchStatusFailed, 0, 0, 0, truncate(err.Error(), 1000))
		return err
	}
	total := len(posts)
	if total == 0 {
		logger.Info("no posts pending summary")
		return s.appendOutcome(ctx, model.BatchStatusSuccess, 0, 0, 0, "")
	}
	logger.Info("posts pending summary", zap.Int("count", total))

	var successCount, failCount int
	var aborted bool
	for idx, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		itemLogger := logger.With(
			zap.Int64("post_id", post.ID),
			zap.Int("index", idx+1),
			zap.Int("total", total),
		)
		outcome, err := s.processPost(ctx, itemLogger, post)
		if err != nil {
			return err
		}
		switch outcome {
		case recordSuccess:
			successCount++
		case recordFailed:
			failCount++
		case recordAborted:
			aborted = true
		}
		if aborted {
			break
		}
		if outcome == recordSuccess || outcome == recordFailed {
			if err := s.sleep(ctx, s.pace); err != nil {
				return err
			}
		}
	}

	logger.Info("ai summary batch finished",
		zap.Int("success", successCount),
		zap.Int("fail", failCount),
		zap.Int("total", total),
		zap.Bool("aborted", aborted),
		zap.Duration("elapsed", time.Since(start)),
	)
	return s.appendOutcome(ctx, model.BatchStatusSuccess, successCount, failCount, total, "")
}

func (s *SummaryService) processPost(ctx context.Context, logger *zap.Logger, post model.Post) (recordOutcome, error) {
	// Both eligibility legs are re-checked right before processing in
	// case another writer touched the row since selection.
	if strings.TrimSpace(post.Content) == "" {
		logger.Warn("content is blank, skipping")
		return recordSkipped, nil
	}
	_, present, err := s.posts.GetSummary(ctx, post.ID)
	if err != nil {
		if appErr.IsNotFound(err) {
			logger.Warn("post no longer exists, skipping")
			return recordSkipped, nil
		}
		logger.Error("failed to re-check summary", zap.String("error", truncate(err.Error(), 500)))
		return recordFailed, nil
	}
	if present {
		logger.Info("summary already present, skipping")
		return recordSkipped, nil
	}

	summary, outcome, err := s.summarizeWithRetry(ctx, logger, post)
	if err != nil || outcome != recordSuccess {
		return outcome, err
	}

	if err := s.posts.FillSummary(ctx, post.ID, summary); err != nil {
		if appErr.IsConflict(err) {
			logger.Info("summary filled concurrently, skipping")
			return recordSkipped, nil
		}
		logger.Error("failed to save summary", zap.String("error", truncate(err.Error(), 500)))
		return recordFailed, nil
	}
	logger.Debug("summary saved", zap.String("summary", truncate(summary, 100)))
	return recordSuccess, nil
}

// summarizeWithRetry makes at most two provider calls: the initial
// attempt and, after one fixed cooldown, a single retry when the first
// attempt looked like rate/quota exhaustion. A second rate-limit signal
// in a row is treated as sustained provider-side exhaustion and aborts
// the remainder of the run.
func (s *SummaryService) summarizeWithRetry(ctx context.Context, logger *zap.Logger, post model.Post) (string, recordOutcome, error) {
	summary, err := s.summarizer.Summarize(ctx, post.Title, post.Content)
	if err == nil {
		return summary, recordSuccess, nil
	}
	decision := s.classify(err)
	if !decision.Retryable {
		logger.Error("summary generation failed", zap.String("error", truncate(err.Error(), 500)))
		return "", recordFailed, nil
	}
	logger.Warn("provider quota exhausted, cooling down",
		zap.Duration("cooldown", s.cooldown),
		zap.Duration("suggested_delay", decision.Delay),
		zap.String("error", truncate(err.Error(), 500)),
	)
	if err := s.sleep(ctx, s.cooldown); err != nil {
		return "", recordFailed, err
	}
	summary, err = s.summarizer.Summarize(ctx, post.Title, post.Content)
	if err == nil {
		return summary, recordSuccess, nil
	}
	if s.classify(err).Retryable {
		logger.Warn("provider quota still exhausted after cooldown, ending run early",
			zap.String("error", truncate(err.Error(), 500)))
		return "", recordAborted, nil
	}
	logger.Error("summary generation failed on retry", zap.String("error", truncate(err.Error(), 500)))
	return "", recordFailed, nil
}

func (s *SummaryService) appendOutcome(ctx context.Context, status string, success, fail, total int, errMsg string) error {
	return appendOutcome(ctx, s.runlog, JobTypeAISummary, status, success, fail, total, errMsg)
}
