// Package pipeline orchestrates per-post processing: dedup check, text
// composition, attachment resolution and ordered dispatch to the channel.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/config"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/observability"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/worker"
	"github.com/Temm4ancki/VK-to-TG-post/internal/process/extract"
	"github.com/Temm4ancki/VK-to-TG-post/internal/process/match"
)

const defaultRequestTimeout = 30 * time.Second

// Ledger gates reprocessing of already-published posts.
type Ledger interface {
	IsProcessed(key string) bool
	MarkProcessed(ctx context.Context, key string) error
}

// AudioSearcher looks up audio candidates for refs lacking a direct URL.
type AudioSearcher interface {
	SearchAudio(ctx context.Context, query string) ([]domain.MatchCandidate, error)
}

// Sender delivers outbound units to the destination channel.
type Sender interface {
	SendText(ctx context.Context, text string) (int, error)
	SendPhoto(ctx context.Context, url, caption string) (int, error)
	SendAlbum(ctx context.Context, urls []string, caption string) ([]int, error)
	SendAnimation(ctx context.Context, url, caption string) (int, error)
	SendAudio(ctx context.Context, url, caption, artist, title string) (int, error)
	SendDocument(ctx context.Context, url, caption string) (int, error)
}

// Config holds the pipeline's tunables.
type Config struct {
	// MatchThreshold is the minimum composite score for audio resolution.
	MatchThreshold float64

	// MarkPolicy controls whether a post is marked processed after a failed
	// dispatch (config.MarkPolicyAttempt) or only after full success
	// (config.MarkPolicySuccess).
	MarkPolicy string

	// RequestTimeout bounds every outbound network call made by the pipeline
	// so one stalled send or lookup cannot hang the worker loop.
	RequestTimeout time.Duration
}

type Pipeline struct {
	cfg    Config
	ledger Ledger
	search AudioSearcher
	sender Sender
	logger *zerolog.Logger
}

func New(cfg Config, ledger Ledger, search AudioSearcher, sender Sender, logger *zerolog.Logger) *Pipeline {
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = match.DefaultThreshold
	}

	if cfg.MarkPolicy == "" {
		cfg.MarkPolicy = config.MarkPolicyAttempt
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &Pipeline{
		cfg:    cfg,
		ledger: ledger,
		search: search,
		sender: sender,
		logger: logger,
	}
}

// Stats summarizes one batch.
type Stats struct {
	Sent          int
	SkippedSeen   int
	SkippedPinned int
	Failed        int
}

// ProcessBatch processes posts strictly sequentially in the given order so
// the channel sees them chronologically. Per-post failures are isolated and
// never abort the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, posts []domain.Post) Stats {
	logger := p.logger.With().Str(logFieldCorrelationID, uuid.New().String()).Logger()

	var stats Stats

	for _, post := range posts {
		if ctx.Err() != nil {
			return stats
		}

		status := p.processPost(ctx, logger, post)
		observability.PostsProcessed.WithLabelValues(status).Inc()

		switch status {
		case StatusSent:
			stats.Sent++
		case StatusSkippedSeen:
			stats.SkippedSeen++
		case StatusSkippedPinned:
			stats.SkippedPinned++
		case StatusFailed:
			stats.Failed++
		}
	}

	return stats
}

func (p *Pipeline) processPost(ctx context.Context, logger zerolog.Logger, post domain.Post) string {
	plog := logger.With().Str(logFieldPostKey, post.Key()).Logger()

	if p.ledger.IsProcessed(post.Key()) {
		plog.Debug().Msg("skipping already processed post")

		return StatusSkippedSeen
	}

	if post.Pinned {
		plog.Info().Msg("skipping pinned post")
		p.mark(ctx, plog, post.Key())

		return StatusSkippedPinned
	}

	if err := p.dispatch(ctx, plog, post); err != nil {
		plog.Error().Err(err).Msg("post dispatch failed")

		if p.cfg.MarkPolicy == config.MarkPolicyAttempt {
			p.mark(ctx, plog, post.Key())
		}

		return StatusFailed
	}

	p.mark(ctx, plog, post.Key())

	return StatusSent
}

func (p *Pipeline) dispatch(ctx context.Context, logger zerolog.Logger, post domain.Post) error {
	if post.Text == "" && len(post.Attachments) == 0 {
		logger.Warn().Msg("post has no text and no attachments")
	}

	ext := extract.FromPost(post)

	p.resolveAudio(ctx, logger, ext.Audios)

	text := composeText(post, ext)

	units := p.buildUnits(ext)
	if len(units) == 0 {
		if err := p.sendText(ctx, text); err != nil {
			observability.SendErrors.WithLabelValues(unitKindText).Inc()

			return fmt.Errorf("send text unit: %w", err)
		}

		observability.UnitsSent.WithLabelValues(unitKindText).Inc()

		return nil
	}

	// The caption rides on the first unit only; every later unit in the same
	// post carries an empty caption.
	for i, u := range units {
		caption := ""
		if i == 0 {
			caption = text
		}

		if err := p.sendUnit(ctx, u, caption); err != nil {
			observability.SendErrors.WithLabelValues(u.kind).Inc()

			return p.fallback(ctx, logger, text, i == 0, u.kind, err)
		}

		observability.UnitsSent.WithLabelValues(u.kind).Inc()
	}

	return nil
}

// fallback sends the still-unsent caption text alone, annotated with an
// error marker. Its own failure is only logged; the post is abandoned either
// way and the original send error propagates.
func (p *Pipeline) fallback(ctx context.Context, logger zerolog.Logger, caption string, captionUnsent bool, kind string, sendErr error) error {
	logger.Warn().Err(sendErr).Str(logFieldUnitKind, kind).Msg("outbound unit failed, attempting text fallback")

	if captionUnsent && caption != "" {
		if err := p.sendText(ctx, errorMarker+" "+caption); err != nil {
			logger.Error().Err(err).Msg("fallback text send failed")
		} else {
			observability.UnitsSent.WithLabelValues(unitKindText).Inc()
		}
	}

	return fmt.Errorf("send %s unit: %w", kind, sendErr)
}

// resolveAudio attempts a best-effort URL resolution for refs that carry
// artist+title but no URL. Lookup errors are swallowed; the ref stays
// unresolved and later renders as a plain-text line.
func (p *Pipeline) resolveAudio(ctx context.Context, logger zerolog.Logger, audios []domain.AudioRef) {
	for i := range audios {
		a := &audios[i]
		if a.URL != "" || a.Artist == "" || a.Title == "" {
			continue
		}

		var candidates []domain.MatchCandidate

		err := worker.RunWithTimeout(ctx, p.cfg.RequestTimeout, func(ctx context.Context) error {
			var lookupErr error
			candidates, lookupErr = p.search.SearchAudio(ctx, a.Artist+" - "+a.Title)

			return lookupErr
		})
		if err != nil {
			logger.Warn().Err(err).Str("artist", a.Artist).Str("title", a.Title).Msg("audio lookup failed")
			observability.AudioMatches.WithLabelValues(matchResultLookupError).Inc()

			continue
		}

		best := match.Best(candidates, a.Artist, a.Title, p.cfg.MatchThreshold)
		if best == nil {
			logger.Info().Str("artist", a.Artist).Str("title", a.Title).Msg("no audio match above threshold")
			observability.AudioMatches.WithLabelValues(matchResultUnmatched).Inc()

			continue
		}

		a.URL = best.URL

		observability.AudioMatches.WithLabelValues(matchResultResolved).Inc()
	}
}

// composeText builds the outgoing caption: original text, the permalink back
// to the source post (always), the link list and one line per unresolved
// audio ref.
func composeText(post domain.Post, ext extract.Result) string {
	var b strings.Builder

	if post.Text != "" {
		b.WriteString(post.Text)
		b.WriteString("\n\n")
	}

	b.WriteString(post.SourceURL())

	if len(ext.Links) > 0 {
		b.WriteString("\n")

		for _, l := range ext.Links {
			b.WriteString("\n")
			b.WriteString(l)
		}
	}

	for _, a := range ext.Audios {
		if a.URL == "" && (a.Artist != "" || a.Title != "") {
			b.WriteString(fmt.Sprintf("\n♪ %s - %s", a.Artist, a.Title))
		}
	}

	return b.String()
}

type unit struct {
	kind string
	send func(ctx context.Context, caption string) error
}

// sendUnit runs one outbound send under the per-call timeout.
func (p *Pipeline) sendUnit(ctx context.Context, u unit, caption string) error {
	return worker.RunWithTimeout(ctx, p.cfg.RequestTimeout, func(ctx context.Context) error {
		return u.send(ctx, caption)
	})
}

func (p *Pipeline) sendText(ctx context.Context, text string) error {
	return worker.RunWithTimeout(ctx, p.cfg.RequestTimeout, func(ctx context.Context) error {
		_, err := p.sender.SendText(ctx, text)

		return err
	})
}

// buildUnits lays out the outbound units in the fixed dispatch order:
// photos (a single photo, or one album unit), animations, resolved audio,
// then generic documents.
func (p *Pipeline) buildUnits(ext extract.Result) []unit {
	var units []unit

	switch {
	case len(ext.Photos) == 1:
		url := ext.Photos[0]
		units = append(units, unit{kind: unitKindPhoto, send: func(ctx context.Context, caption string) error {
			_, err := p.sender.SendPhoto(ctx, url, caption)

			return err
		}})
	case len(ext.Photos) > 1:
		urls := ext.Photos
		units = append(units, unit{kind: unitKindAlbum, send: func(ctx context.Context, caption string) error {
			_, err := p.sender.SendAlbum(ctx, urls, caption)

			return err
		}})
	}

	for _, u := range ext.Animations {
		units = append(units, unit{kind: unitKindAnimation, send: func(ctx context.Context, caption string) error {
			_, err := p.sender.SendAnimation(ctx, u, caption)

			return err
		}})
	}

	for _, a := range ext.Audios {
		if a.URL == "" {
			continue
		}

		units = append(units, unit{kind: unitKindAudio, send: func(ctx context.Context, caption string) error {
			_, err := p.sender.SendAudio(ctx, a.URL, caption, a.Artist, a.Title)

			return err
		}})
	}

	for _, d := range ext.Docs {
		units = append(units, unit{kind: unitKindDocument, send: func(ctx context.Context, caption string) error {
			// A document with no remaining caption is captioned by its own title.
			if caption == "" {
				caption = d.Title
			}

			_, err := p.sender.SendDocument(ctx, d.URL, caption)

			return err
		}})
	}

	return units
}

func (p *Pipeline) mark(ctx context.Context, logger zerolog.Logger, key string) {
	if err := p.ledger.MarkProcessed(ctx, key); err != nil {
		// In-memory set keeps the mark; a crash before the next successful
		// persist loses it, which is an accepted risk.
		logger.Error().Err(err).Msg("failed to persist processed mark")
	}
}
