package ai

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryDelay is used when a quota error carries no usable
// "retry in <seconds>s" hint.
const DefaultRetryDelay = 60 * time.Second

// Decision is the outcome of classifying a provider error: either
// terminal, or retryable with a provider-suggested delay.
type Decision struct {
	Retryable bool
	Delay     time.Duration
}

// Classifier maps a provider error to a Decision. It exists as a
// function type so the free-form substring matching below can be
// swapped for a typed SDK error model without touching the run loop.
type Classifier func(err error) Decision

var retryInPattern = regexp.MustCompile(`retry in ([\d.]+)s`)

// ClassifyQuotaError treats rate/quota exhaustion signals as retryable
// and everything else as terminal. The match strings follow what the
// Gemini API currently embeds in its error text.
func ClassifyQuotaError(err error) Decision {
	if err == nil {
		return Decision{}
	}
	text := strings.ToLower(err.Error())
	if !strings.Contains(text, "429") &&
		!strings.Contains(text, "quota") &&
		!strings.Contains(text, "rate limit") {
		return Decision{}
	}
	delay := DefaultRetryDelay
	if match := retryInPattern.FindStringSubmatch(text); match != nil {
		if secs, perr := strconv.ParseFloat(match[1], 64); perr == nil {
			delay = time.Duration(int64(secs)+1) * time.Second
		}
	}
	return Decision{Retryable: true, Delay: delay}
}
