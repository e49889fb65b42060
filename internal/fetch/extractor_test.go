package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Test Post</title></head>
<body>
<article>
<h1>Test Post</h1>
<p>%s</p>
</article>
</body>
</html>`

func TestExtractReturnsMainBody(t *testing.T) {
	body := strings.Repeat("This pattern shows up in most Go services in production today. ", 20)
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprintf(w, articlePage, body)
	}))
	defer server.Close()

	e := NewExtractor(Config{})
	text, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, text, "most Go services")
	require.Contains(t, gotUA, "Mozilla/5.0")
}

func TestExtractTruncatesLongBody(t *testing.T) {
	body := strings.Repeat("A long paragraph of technical writing that keeps going. ", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, articlePage, body)
	}))
	defer server.Close()

	e := NewExtractor(Config{MaxChars: 200})
	text, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(text, "..."))
	require.LessOrEqual(t, len([]rune(text)), 203)
}

func TestExtractNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	e := NewExtractor(Config{})
	_, err := e.Extract(context.Background(), server.URL+"/gone")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestExtractServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewExtractor(Config{})
	_, err := e.Extract(context.Background(), server.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, appErr.ErrNotFound)
}

func TestExtractBadURL(t *testing.T) {
	e := NewExtractor(Config{})
	_, err := e.Extract(context.Background(), "http://\x7f")
	require.Error(t, err)
}
