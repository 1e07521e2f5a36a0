// Package app wires the application dependencies and runs the poll loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
	"github.com/Temm4ancki/VK-to-TG-post/internal/ledger"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/config"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/observability"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/worker"
	"github.com/Temm4ancki/VK-to-TG-post/internal/process/pipeline"
	"github.com/Temm4ancki/VK-to-TG-post/internal/telegram"
	"github.com/Temm4ancki/VK-to-TG-post/internal/vk"
)

// Feed is the source feed client consumed by the poll loop.
type Feed interface {
	FetchPosts(ctx context.Context, ownerID int64, count, offset int) ([]domain.Post, error)
	SearchAudio(ctx context.Context, query string) ([]domain.MatchCandidate, error)
}

// Compile-time assertions that the concrete clients satisfy the ports.
var (
	_ Feed            = (*vk.Client)(nil)
	_ pipeline.Sender = (*telegram.Sender)(nil)
)

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	ledger *ledger.Ledger
	feed   Feed
	sender pipeline.Sender
	logger *zerolog.Logger
}

func New(cfg *config.Config, led *ledger.Ledger, feed Feed, sender pipeline.Sender, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		ledger: led,
		feed:   feed,
		sender: sender,
		logger: logger,
	}
}

// Run drives the fixed-period poll loop until the context is canceled.
// Cycles never overlap: each one runs to completion before the next wait
// starts, which keeps the channel ordering chronological and the ledger
// single-writer.
func (a *App) Run(ctx context.Context) error {
	pipe := pipeline.New(pipeline.Config{
		MatchThreshold: a.cfg.MatchThreshold,
		MarkPolicy:     a.cfg.MarkPolicy,
		RequestTimeout: a.cfg.RequestTimeout,
	}, a.ledger, a.feed, a.sender, a.logger)

	observability.LedgerSize.Set(float64(a.ledger.Len()))

	return worker.Loop(ctx, worker.Config{
		Name:         "repost",
		PollInterval: a.cfg.PollInterval,
		Process: func(ctx context.Context) error {
			return a.pollOnce(ctx, pipe)
		},
		Logger: a.logger,
	})
}

func (a *App) pollOnce(ctx context.Context, pipe *pipeline.Pipeline) error {
	defer worker.RecoverPanic(a.logger, "poll cycle")

	start := time.Now()

	var posts []domain.Post

	err := worker.RunWithTimeout(ctx, a.cfg.RequestTimeout, func(ctx context.Context) error {
		var fetchErr error
		posts, fetchErr = a.feed.FetchPosts(ctx, a.cfg.VKOwnerID, a.cfg.FetchCount, 0)

		return fetchErr
	})
	if err != nil {
		observability.PollCycles.WithLabelValues("error").Inc()

		// Abort the whole cycle; no partial-batch state is kept and the next
		// tick retries from scratch.
		return fmt.Errorf("fetch posts: %w", err)
	}

	// The feed serves newest first; process oldest to newest.
	reverse(posts)

	stats := pipe.ProcessBatch(ctx, posts)

	observability.PollCycleDuration.Observe(time.Since(start).Seconds())
	observability.PollCycles.WithLabelValues("ok").Inc()
	observability.LedgerSize.Set(float64(a.ledger.Len()))

	a.logger.Info().
		Int("fetched", len(posts)).
		Int("sent", stats.Sent).
		Int("skipped_seen", stats.SkippedSeen).
		Int("skipped_pinned", stats.SkippedPinned).
		Int("failed", stats.Failed).
		Dur("duration", time.Since(start)).
		Msg("poll cycle finished")

	return nil
}

func reverse(posts []domain.Post) {
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
}
