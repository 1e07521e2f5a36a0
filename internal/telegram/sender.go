// Package telegram implements the destination channel client over the Bot
// API: plain text, single media with caption, albums and documents.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Config holds sender configuration.
type Config struct {
	Token   string
	ChatID  int64
	RateRPS float64
	Timeout time.Duration
}

// Sender posts outbound units to a single target chat. Calls are
// rate-limited; the Bot API does not take a context, so the HTTP client's
// own timeout is what bounds each send.
type Sender struct {
	api         *tgbotapi.BotAPI
	chatID      int64
	rateLimiter *rate.Limiter
}

func New(cfg Config) (*Sender, error) {
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, newHTTPClient(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("bot api init: %w", err)
	}

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 1
	}

	return &Sender{
		api:         api,
		chatID:      cfg.ChatID,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// newHTTPClient builds the Bot API transport. The client-level timeout is
// mandatory: a send with no deadline would stall the single worker loop.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

func (s *Sender) SendText(ctx context.Context, text string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.DisableWebPagePreview = true

	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send text: %w", err)
	}

	return sent.MessageID, nil
}

func (s *Sender) SendPhoto(ctx context.Context, url, caption string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	msg := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileURL(url))
	msg.Caption = caption

	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send photo: %w", err)
	}

	return sent.MessageID, nil
}

// SendAlbum sends a media group of photos. The caption rides on the first
// input item; the channel API fans the group out into multiple deliveries
// but callers treat it as one logical unit.
func (s *Sender) SendAlbum(ctx context.Context, urls []string, caption string) ([]int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	media := make([]interface{}, 0, len(urls))

	for i, url := range urls {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(url))
		if i == 0 {
			photo.Caption = caption
		}

		media = append(media, photo)
	}

	group := tgbotapi.NewMediaGroup(s.chatID, media)

	sent, err := s.api.SendMediaGroup(group)
	if err != nil {
		return nil, fmt.Errorf("send album: %w", err)
	}

	ids := make([]int, 0, len(sent))
	for _, m := range sent {
		ids = append(ids, m.MessageID)
	}

	return ids, nil
}

func (s *Sender) SendAnimation(ctx context.Context, url, caption string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	msg := tgbotapi.NewAnimation(s.chatID, tgbotapi.FileURL(url))
	msg.Caption = caption

	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send animation: %w", err)
	}

	return sent.MessageID, nil
}

func (s *Sender) SendAudio(ctx context.Context, url, caption, artist, title string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	msg := tgbotapi.NewAudio(s.chatID, tgbotapi.FileURL(url))
	msg.Caption = caption
	msg.Performer = artist
	msg.Title = title

	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send audio: %w", err)
	}

	return sent.MessageID, nil
}

func (s *Sender) SendDocument(ctx context.Context, url, caption string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	msg := tgbotapi.NewDocument(s.chatID, tgbotapi.FileURL(url))
	msg.Caption = caption

	sent, err := s.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send document: %w", err)
	}

	return sent.MessageID, nil
}
