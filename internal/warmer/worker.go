package warmer

import (
	"context"
	"fmt"
	"log/slog"
)

// Publisher renders pages and stores them for serving.
type Publisher interface {
	// Reload refreshes any content the source holds in memory.
	Reload(ctx context.Context) error
	Slugs(ctx context.Context) ([]string, error)
	RefreshPost(ctx context.Context, slug string) error
	RefreshIndex(ctx context.Context) error
	RefreshSitemap(ctx context.Context) error
}

// Worker processes a single revalidation job.
type Worker struct {
	pub Publisher
	log *slog.Logger

	maxConcurrentRender int
}

func NewWorker(pub Publisher, log *slog.Logger, maxRender int) *Worker {
	if maxRender < 1 {
		maxRender = 1
	}
	return &Worker{pub: pub, log: log, maxConcurrentRender: maxRender}
}

// Process refreshes every page the job covers.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "slug", job.Slug)

	// Phase 1: work out which posts to render.
	job.SetStatus(StatusFetching, "fetching")
	if err := w.pub.Reload(ctx); err != nil {
		log.Error("content reload failed", "error", err)
		job.AddError(fmt.Sprintf("reload: %s", err))
		job.SetStatus(StatusFailed, "fetching")
		return
	}

	slugs := []string{job.Slug}
	if job.Kind == KindAll {
		err := withRetry(ctx, log, "slugs", func() error {
			var err error
			slugs, err = w.pub.Slugs(ctx)
			return err
		})
		if err != nil {
			log.Error("listing slugs failed", "error", err)
			job.AddError(fmt.Sprintf("slugs: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
	}
	job.SetTotalPages(len(slugs) + 2)
	log.Info("revalidating", "posts", len(slugs))

	// Phase 2: render posts with bounded concurrency.
	job.SetStatus(StatusRendering, "posts")
	type result struct {
		slug string
		err  error
	}
	results := make(chan result, len(slugs))
	sem := make(chan struct{}, w.maxConcurrentRender)
	for _, slug := range slugs {
		sem <- struct{}{}
		go func(slug string) {
			defer func() { <-sem }()
			err := withRetry(ctx, log, slug, func() error {
				return w.pub.RefreshPost(ctx, slug)
			})
			results <- result{slug: slug, err: err}
		}(slug)
	}

	rendered, failed := 0, 0
	for range slugs {
		r := <-results
		job.PageDone(r.err == nil)
		if r.err != nil {
			log.Error("post render failed", "post", r.slug, "error", r.err)
			job.AddError(fmt.Sprintf("post %s: %s", r.slug, r.err))
			failed++
			continue
		}
		rendered++
	}

	// Phase 3: listing and sitemap reflect the new post set.
	job.SetStatus(StatusRendering, "index")
	for _, step := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{"index", w.pub.RefreshIndex},
		{"sitemap", w.pub.RefreshSitemap},
	} {
		err := withRetry(ctx, log, step.name, func() error { return step.fn(ctx) })
		job.PageDone(err == nil)
		if err != nil {
			log.Error("render failed", "page", step.name, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", step.name, err))
			failed++
			continue
		}
		rendered++
	}

	log.Info("revalidation complete", "rendered", rendered, "failed", failed)
	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case rendered > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "rendering")
	}
}
