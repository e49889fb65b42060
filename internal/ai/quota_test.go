package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyQuotaErrorRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"status code", errors.New("rpc error: code 429 resource exhausted")},
		{"quota keyword", errors.New("Quota exceeded for metric generate_requests")},
		{"rate limit keyword", errors.New("provider rate limit hit")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := ClassifyQuotaError(tc.err)
			require.True(t, decision.Retryable)
			require.Equal(t, DefaultRetryDelay, decision.Delay)
		})
	}
}

func TestClassifyQuotaErrorParsesSuggestedDelay(t *testing.T) {
	decision := ClassifyQuotaError(errors.New("429 quota exceeded, please retry in 17.5s"))
	require.True(t, decision.Retryable)
	require.Equal(t, 18*time.Second, decision.Delay)
}

func TestClassifyQuotaErrorMalformedDelayFallsBack(t *testing.T) {
	decision := ClassifyQuotaError(errors.New("quota exceeded, retry in soons"))
	require.True(t, decision.Retryable)
	require.Equal(t, DefaultRetryDelay, decision.Delay)
}

func TestClassifyQuotaErrorTerminal(t *testing.T) {
	decision := ClassifyQuotaError(errors.New("invalid argument: prompt too long"))
	require.False(t, decision.Retryable)
	require.Zero(t, decision.Delay)
}

func TestClassifyQuotaErrorNil(t *testing.T) {
	require.False(t, ClassifyQuotaError(nil).Retryable)
}
