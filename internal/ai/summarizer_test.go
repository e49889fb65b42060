package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

type fakeProvider struct {
	calls   int
	prompts []string
	resp    string
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	p.calls++
	p.prompts = append(p.prompts, prompt)
	return p.resp, p.err
}

func TestSummarizerComposesPromptWithTitle(t *testing.T) {
	provider := &fakeProvider{resp: "a short summary"}
	s := NewSummarizer(provider, "test-model", SummarizerConfig{})

	summary, err := s.Summarize(context.Background(), "My Post", "body text")
	require.NoError(t, err)
	require.Equal(t, "a short summary", summary)
	require.Len(t, provider.prompts, 1)
	require.Contains(t, provider.prompts[0], "Title: My Post")
	require.Contains(t, provider.prompts[0], "Content: body text")
	require.Contains(t, provider.prompts[0], "2-3 short sentences")
}

func TestSummarizerBlankContentInvalid(t *testing.T) {
	provider := &fakeProvider{resp: "unused"}
	s := NewSummarizer(provider, "test-model", SummarizerConfig{})

	_, err := s.Summarize(context.Background(), "", "   \n\t ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Zero(t, provider.calls)
}

func TestSummarizerTruncatesLongInput(t *testing.T) {
	provider := &fakeProvider{resp: "ok"}
	s := NewSummarizer(provider, "test-model", SummarizerConfig{MaxInputChars: 10})

	_, err := s.Summarize(context.Background(), "", strings.Repeat("x", 100))
	require.NoError(t, err)
	require.NotContains(t, provider.prompts[0], strings.Repeat("x", 11))
}

func TestSummarizerCachesIdenticalContent(t *testing.T) {
	provider := &fakeProvider{resp: "cached summary"}
	s := NewSummarizer(provider, "test-model", SummarizerConfig{})

	first, err := s.Summarize(context.Background(), "t", "same content")
	require.NoError(t, err)
	second, err := s.Summarize(context.Background(), "t", "same content")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, provider.calls)
}

func TestSummarizerPropagatesProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	s := NewSummarizer(provider, "test-model", SummarizerConfig{})

	_, err := s.Summarize(context.Background(), "", "content")
	require.Error(t, err)
}
