package warmer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/caseblog/internal/sanity"
)

type fakePublisher struct {
	mu        sync.Mutex
	slugs     []string
	failPost  map[string]error
	flaky     map[string]int // retryable failures before success
	reloadErr error
	posts     []string
	index     int
	sitemap   int
	reloads   int
}

func (f *fakePublisher) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reloadErr
}

func (f *fakePublisher) Slugs(ctx context.Context) ([]string, error) {
	return f.slugs, nil
}

func (f *fakePublisher) RefreshPost(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := f.flaky[slug]; n > 0 {
		f.flaky[slug] = n - 1
		return &sanity.RetryableError{StatusCode: 503}
	}
	if err := f.failPost[slug]; err != nil {
		return err
	}
	f.posts = append(f.posts, slug)
	return nil
}

func (f *fakePublisher) RefreshIndex(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index++
	return nil
}

func (f *fakePublisher) RefreshSitemap(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sitemap++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noBackoff(t *testing.T) {
	t.Helper()
	prev := backoffFunc
	backoffFunc = func(int) time.Duration { return 0 }
	t.Cleanup(func() { backoffFunc = prev })
}

func TestWorker_AllCompleted(t *testing.T) {
	pub := &fakePublisher{slugs: []string{"a", "b", "c"}}
	job := NewJob("", "test")
	NewWorker(pub, quietLogger(), 2).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalPages != 5 || snap.Progress.PagesRendered != 5 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	sort.Strings(pub.posts)
	if len(pub.posts) != 3 || pub.index != 1 || pub.sitemap != 1 || pub.reloads != 1 {
		t.Errorf("unexpected publisher calls %+v", pub)
	}
}

func TestWorker_SlugJob(t *testing.T) {
	pub := &fakePublisher{slugs: []string{"a", "b"}}
	job := NewJob("b", "webhook")
	NewWorker(pub, quietLogger(), 1).Process(context.Background(), job)

	if len(pub.posts) != 1 || pub.posts[0] != "b" {
		t.Errorf("expected only b rendered, got %v", pub.posts)
	}
	if job.Snapshot().Progress.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", job.Snapshot().Progress.TotalPages)
	}
}

func TestWorker_Partial(t *testing.T) {
	pub := &fakePublisher{
		slugs:    []string{"ok", "bad"},
		failPost: map[string]error{"bad": errors.New("render exploded")},
	}
	job := NewJob("", "test")
	NewWorker(pub, quietLogger(), 2).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", snap.Status)
	}
	if snap.Progress.PagesFailed != 1 || len(snap.Progress.Errors) != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestWorker_RetriesRetryable(t *testing.T) {
	noBackoff(t)
	pub := &fakePublisher{slugs: []string{"flaky"}, flaky: map[string]int{"flaky": 2}}
	job := NewJob("", "test")
	NewWorker(pub, quietLogger(), 1).Process(context.Background(), job)

	if s := job.Snapshot().Status; s != StatusCompleted {
		t.Errorf("expected retries to succeed, got %s", s)
	}
}

func TestWorker_RetryExhausted(t *testing.T) {
	noBackoff(t)
	pub := &fakePublisher{slugs: []string{"flaky"}, flaky: map[string]int{"flaky": MaxRetries}}
	job := NewJob("flaky", "test")
	NewWorker(pub, quietLogger(), 1).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial || snap.Progress.PagesFailed != 1 {
		t.Errorf("expected exhausted retry to fail the post, got %+v", snap)
	}
}

func TestWorker_ReloadFailure(t *testing.T) {
	pub := &fakePublisher{reloadErr: errors.New("disk gone")}
	job := NewJob("", "test")
	NewWorker(pub, quietLogger(), 1).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "fetching" {
		t.Errorf("expected fetch failure, got %s/%s", snap.Status, snap.Phase)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&sanity.RetryableError{StatusCode: 429}) {
		t.Error("expected RetryableError to be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("expected plain error to be final")
	}
}
