package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kylelee-dev/postbrief/internal/model"
	appErr "github.com/kylelee-dev/postbrief/internal/pkg/errors"
)

type fakeContentStore struct {
	posts    []model.Post
	contents map[int64]string
	listErr  error
}

func (f *fakeContentStore) ListMissingContent(ctx context.Context) ([]model.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.posts, nil
}

func (f *fakeContentStore) FillContent(ctx context.Context, id int64, content string) error {
	if _, ok := f.contents[id]; ok {
		return appErr.ErrConflict
	}
	f.contents[id] = content
	return nil
}

type fakeFetcher struct {
	byURL map[string]string
	errs  map[string]error
}

func (f *fakeFetcher) Extract(ctx context.Context, rawURL string) (string, error) {
	if err, ok := f.errs[rawURL]; ok {
		return "", err
	}
	return f.byURL[rawURL], nil
}

func TestBackfillRunMixedResults(t *testing.T) {
	store := &fakeContentStore{
		posts: []model.Post{
			{ID: 1, URL: "https://blog.example/a"},
			{ID: 2, URL: "https://blog.example/gone"},
			{ID: 3, URL: "https://blog.example/broken"},
		},
		contents: map[int64]string{},
	}
	runlog := &fakeRunLog{}
	fetcher := &fakeFetcher{
		byURL: map[string]string{"https://blog.example/a": "extracted body"},
		errs: map[string]error{
			"https://blog.example/gone":   appErr.ErrNotFound,
			"https://blog.example/broken": errors.New("status 503"),
		},
	}
	svc := NewBackfillService(store, runlog, fetcher)

	require.NoError(t, svc.Run(context.Background()))
	require.Equal(t, "extracted body", store.contents[1])
	require.NotContains(t, store.contents, int64(2))

	require.Len(t, runlog.entries, 1)
	entry := runlog.entries[0]
	require.Equal(t, JobTypeContentBackfill, entry.JobType)
	require.Equal(t, model.BatchStatusSuccess, entry.Status)
	require.Equal(t, 1, entry.AffectedCount)
	require.JSONEq(t, `{"success_count":1,"fail_count":2,"total_count":3}`, entry.Detail)
}

func TestBackfillRunSelectionFailure(t *testing.T) {
	store := &fakeContentStore{listErr: errors.New("db down"), contents: map[int64]string{}}
	runlog := &fakeRunLog{}
	svc := NewBackfillService(store, runlog, &fakeFetcher{})

	require.Error(t, svc.Run(context.Background()))
	require.Len(t, runlog.entries, 1)
	require.Equal(t, model.BatchStatusFailed, runlog.entries[0].Status)
	require.Equal(t, "db down", runlog.entries[0].ErrorMessage)
}
