package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

const summaryPrompt = `You are an expert at summarizing technical blog posts concisely and clearly.
Summarize the post below in 2-3 short sentences for a developer audience.
- Use the same language as the content.
- Keep factual accuracy and key points.
- Output ONLY the summary text.

POST:
%s`

type SummarizerConfig struct {
	Timeout       int
	MaxInputChars int
}

// Summarizer composes the summary prompt and calls the bound provider
// model. Identical content is served from an expirable cache so that
// repeated scheduled runs never re-bill the same text.
type Summarizer struct {
	gen   IGenerator
	cfg   SummarizerConfig
	cache *expirable.LRU[string, string]
}

func NewSummarizer(p IProvider, model string, cfg SummarizerConfig) *Summarizer {
	return &Summarizer{
		gen:   NewGenerator(p, model),
		cfg:   cfg,
		cache: expirable.NewLRU[string, string](10000, nil, 2*time.Hour),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, title, content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", appErr.ErrInvalid
	}
	if runes := []rune(text); s.cfg.MaxInputChars > 0 && len(runes) > s.cfg.MaxInputChars {
		text = string(runes[:s.cfg.MaxInputChars])
	}
	if title = strings.TrimSpace(title); title != "" {
		text = fmt.Sprintf("Title: %s\n\nContent: %s", title, text)
	}
	key := s.cacheKey(text)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := s.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, text))
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(resp)
	if summary == "" {
		return "", fmt.Errorf("empty ai response")
	}
	s.cache.Add(key, summary)
	return summary, nil
}

func (s *Summarizer) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "summary:" + hex.EncodeToString(hash[:])
}
