// Package vk implements the source feed client: wall fetching and audio
// search over the VK HTTP API.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
	errs "github.com/Temm4ancki/VK-to-TG-post/internal/core/errors"
)

const (
	defaultBaseURL = "https://api.vk.com/method"
	defaultTimeout = 30 * time.Second
	serviceName    = "vk"
)

// Config holds client configuration.
type Config struct {
	Token      string
	APIVersion string
	Timeout    time.Duration
	RateRPS    float64
}

type Client struct {
	baseURL     string
	token       string
	version     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		baseURL:     defaultBaseURL,
		token:       cfg.Token,
		version:     cfg.APIVersion,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger,
	}
}

// FetchPosts returns up to count wall posts for the owner, newest first as
// the feed serves them.
func (c *Client) FetchPosts(ctx context.Context, ownerID int64, count, offset int) ([]domain.Post, error) {
	params := url.Values{}
	params.Set("owner_id", strconv.FormatInt(ownerID, 10))
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))

	var resp wallGetResponse
	if err := c.call(ctx, "wall.get", params, &resp); err != nil {
		return nil, fmt.Errorf("wall.get: %w", err)
	}

	posts := make([]domain.Post, 0, len(resp.Items))

	for _, item := range resp.Items {
		post, dropped := item.toDomain()
		if dropped > 0 {
			c.logger.Warn().
				Err(errs.ErrMalformedAttachment).
				Str("post", post.Key()).
				Int("dropped", dropped).
				Msg("dropped attachments whose payload did not match the declared type")
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// SearchAudio returns audio candidates for a free-text query.
func (c *Client) SearchAudio(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	params := url.Values{}
	params.Set("q", query)

	var resp audioSearchResponse
	if err := c.call(ctx, "audio.search", params, &resp); err != nil {
		return nil, fmt.Errorf("audio.search: %w", err)
	}

	candidates := make([]domain.MatchCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, domain.MatchCandidate{
			Artist:   item.Artist,
			Title:    item.Title,
			URL:      item.URL,
			Duration: item.Duration,
		})
	}

	return candidates, nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	params.Set("access_token", c.token)
	params.Set("v", c.version)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	if envelope.Error != nil {
		return &errs.RemoteAPIError{
			Service: serviceName,
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
		}
	}

	if len(envelope.Response) == 0 {
		return errs.ErrEmptyResponse
	}

	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	return nil
}
