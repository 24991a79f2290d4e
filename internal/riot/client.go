// Package riot wraps the Riot HTTP API: identity lookup, paginated
// match-id listing, full match fetch, and platform-scoped profile
// endpoints. Every request first blocks on the global rate limiter;
// transient failures are retried with exponential backoff and jitter.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

// RateLimiter gates every upstream request. Satisfied by
// ratelimit.Limiter.
type RateLimiter interface {
	Acquire(ctx context.Context) error
}

const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 10 * time.Second
)

type Client struct {
	apiKey   string
	attempts uint
	client   *fasthttp.Client
	limiter  RateLimiter
	logger   zerolog.Logger

	// baseURL overrides the per-host Riot URL in tests.
	baseURL string
}

func New(apiKey string, attempts int, limiter RateLimiter, logger zerolog.Logger) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		apiKey:   apiKey,
		attempts: uint(attempts),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: limiter,
		logger:  logger,
	}
}

type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// RiotID renders the account as "GameName#TagLine".
func (a *Account) RiotID() string {
	return a.GameName + "#" + a.TagLine
}

type Summoner struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	SummonerLevel int    `json:"summonerLevel"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
}

// SummonerResult carries the platform partition that answered, needed
// for follow-up platform-scoped calls.
type SummonerResult struct {
	Platform string
	Summoner Summoner
}

// MatchPayload is one full match record: the upstream document verbatim
// plus the parsed start timestamp. GameStartAt is zero when the payload
// lacks a usable timestamp.
type MatchPayload struct {
	MatchUID    string
	GameStartAt time.Time
	Raw         json.RawMessage
}

// AccountByRiotID resolves a public "GameName#TagLine" identity to an
// account (puuid).
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine, region string) (*Account, error) {
	if !validRegion(region) {
		return nil, &InvalidRegionError{Region: region}
	}
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionHost(region), url.PathEscape(gameName), url.PathEscape(tagLine))
	return getJSON[Account](ctx, c, u)
}

// AccountByPUUID resolves an opaque puuid back to its public identity.
func (c *Client) AccountByPUUID(ctx context.Context, puuid, region string) (*Account, error) {
	if !validRegion(region) {
		return nil, &InvalidRegionError{Region: region}
	}
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s", c.regionHost(region), url.PathEscape(puuid))
	return getJSON[Account](ctx, c, u)
}

// MatchIDs lists match identifiers for an account, newest first, within
// the [start, start+count) page window.
func (c *Client) MatchIDs(ctx context.Context, puuid, region string, start, count int) ([]string, error) {
	if !validRegion(region) {
		return nil, &InvalidRegionError{Region: region}
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d",
		c.regionHost(region), url.PathEscape(puuid), start, count)
	ids, err := getJSON[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

// Match fetches one full match record by identifier.
func (c *Client) Match(ctx context.Context, matchUID, region string) (*MatchPayload, error) {
	if !validRegion(region) {
		return nil, &InvalidRegionError{Region: region}
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionHost(region), url.PathEscape(matchUID))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Info struct {
			GameStartTimestamp int64 `json:"gameStartTimestamp"`
		} `json:"info"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode match %s: %w", matchUID, err)
	}

	payload := &MatchPayload{MatchUID: matchUID, Raw: body}
	if ms := envelope.Info.GameStartTimestamp; ms > 0 {
		payload.GameStartAt = time.UnixMilli(ms).UTC()
	}
	return payload, nil
}

// SummonerByPUUID looks up the summoner profile across the region's
// platform partitions in order, returning the first partition that
// yields data. A 404 on one partition moves to the next; only after
// exhausting the list does the call fail (with the last transient error
// if one occurred, else ErrNotFound).
func (c *Client) SummonerByPUUID(ctx context.Context, puuid, region string) (*SummonerResult, error) {
	if !validRegion(region) {
		return nil, &InvalidRegionError{Region: region}
	}

	var lastErr error
	for _, platform := range regionPlatforms[region] {
		u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformHost(platform), url.PathEscape(puuid))
		summoner, err := getJSON[Summoner](ctx, c, u)
		if err == nil {
			return &SummonerResult{Platform: platform, Summoner: *summoner}, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		c.logger.Warn().Err(err).Str("platform", platform).Msg("summoner lookup failed on platform, trying next")
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNotFound
}

// LeagueEntriesByPUUID fetches ranked entries from the platform that
// served the summoner profile.
func (c *Client) LeagueEntriesByPUUID(ctx context.Context, puuid, platform string) ([]domain.RankEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformHost(platform), url.PathEscape(puuid))
	entries, err := getJSON[[]domain.RankEntry](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *Client) regionHost(region string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", region)
}

func (c *Client) platformHost(platform string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", platform)
}

func getJSON[T any](ctx context.Context, c *Client, url string) (*T, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var result T
	if err := sonic.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// get performs one rate-limited GET with bounded retries. Transient
// failures (429, 5xx, transport) back off and retry up to the ceiling;
// the final typed error escapes so callers can tell "couldn't ask"
// apart from "no data".
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Acquire(ctx); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rate limiter: %w", err))
			}
			b, err := c.doOnce(ctx, url)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Attempts(c.attempts),
		retry.RetryIf(IsTransient),
		retry.DelayType(retryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", n+1).Str("url", url).Msg("retrying upstream request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doOnce(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusOK:
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return body, nil
	case status == fasthttp.StatusNotFound:
		return nil, ErrNotFound
	case status == fasthttp.StatusTooManyRequests:
		return nil, &TransientError{StatusCode: status, RetryAfter: retryAfterHint(resp)}
	case status >= 500:
		return nil, &TransientError{StatusCode: status}
	default:
		return nil, fmt.Errorf("riot: unexpected status %d", status)
	}
}

func retryAfterHint(resp *fasthttp.Response) time.Duration {
	raw := string(resp.Header.Peek(fasthttp.HeaderRetryAfter))
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// retryDelay prefers a server-provided Retry-After hint; otherwise
// exponential backoff with jitter on the top half of the interval.
func retryDelay(n uint, err error, _ *retry.Config) time.Duration {
	var te *TransientError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter
	}

	d := backoffBase << n
	if d > backoffMax || d <= 0 {
		d = backoffMax
	}
	return d/2 + time.Duration(rand.Int64N(int64(d/2)+1))
}
