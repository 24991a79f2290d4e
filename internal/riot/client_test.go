package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLimiter struct{}

func (noopLimiter) Acquire(context.Context) error { return nil }

type failingLimiter struct{}

func (failingLimiter) Acquire(context.Context) error { return errors.New("redis down") }

func testClient(t *testing.T, attempts int, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("test-key", attempts, noopLimiter{}, zerolog.Nop())
	c.baseURL = srv.URL
	return c, srv
}

func TestMatchIDs(t *testing.T) {
	var gotToken atomic.Value
	c, _ := testClient(t, 1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken.Store(r.Header.Get("X-Riot-Token"))
		w.Write([]byte(`["NA1_100","NA1_99"]`))
	}))

	ids, err := c.MatchIDs(context.Background(), "puuid-1", "americas", 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"NA1_100", "NA1_99"}, ids)
	assert.Equal(t, "test-key", gotToken.Load())
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 5, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.AccountByPUUID(context.Background(), "puuid-1", "americas")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimitedRequestHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 3, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"puuid":"puuid-1","gameName":"Faker","tagLine":"KR1"}`))
	}))

	start := time.Now()
	account, err := c.AccountByPUUID(context.Background(), "puuid-1", "asia")
	require.NoError(t, err)
	assert.Equal(t, "Faker#KR1", account.RiotID())
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "should have waited out the Retry-After hint")
}

func TestServerErrorsRetryUpToCeiling(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 2, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.AccountByPUUID(context.Background(), "puuid-1", "americas")
	require.Error(t, err)
	assert.True(t, IsTransient(err), "exhausted retries should surface the transient error")
	assert.Equal(t, int32(2), calls.Load())
}

func TestUnexpectedStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 5, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.AccountByPUUID(context.Background(), "puuid-1", "americas")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestLimiterFailureIsUnrecoverable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	c := New("test-key", 5, failingLimiter{}, zerolog.Nop())
	c.baseURL = srv.URL

	_, err := c.AccountByPUUID(context.Background(), "puuid-1", "americas")
	require.Error(t, err)
	assert.Equal(t, int32(0), calls.Load(), "request must not be sent when the limiter errors")
}

func TestInvalidRegion(t *testing.T) {
	c := New("test-key", 1, noopLimiter{}, zerolog.Nop())

	_, err := c.MatchIDs(context.Background(), "puuid-1", "moon", 0, 100)
	var invalid *InvalidRegionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "moon", invalid.Region)
}

func TestMatchParsesStartTimestamp(t *testing.T) {
	raw := `{"metadata":{"matchId":"NA1_1"},"info":{"gameStartTimestamp":1735730000000,"queueId":420}}`
	c, _ := testClient(t, 1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	}))

	payload, err := c.Match(context.Background(), "NA1_1", "americas")
	require.NoError(t, err)
	assert.Equal(t, "NA1_1", payload.MatchUID)
	assert.Equal(t, time.UnixMilli(1735730000000).UTC(), payload.GameStartAt)
	assert.JSONEq(t, raw, string(payload.Raw))
}

func TestMatchWithoutTimestampHasZeroStart(t *testing.T) {
	c, _ := testClient(t, 1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"queueId":450}}`))
	}))

	payload, err := c.Match(context.Background(), "NA1_2", "americas")
	require.NoError(t, err)
	assert.True(t, payload.GameStartAt.IsZero())
}

func TestSummonerLookupFallsThroughPlatforms(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First platform answers 404, second has the profile.
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id":"summ-1","puuid":"puuid-1","summonerLevel":250,"profileIconId":5,"revisionDate":1735730000000}`))
	}))

	result, err := c.SummonerByPUUID(context.Background(), "puuid-1", "americas")
	require.NoError(t, err)
	assert.Equal(t, "br1", result.Platform)
	assert.Equal(t, "summ-1", result.Summoner.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSummonerLookupExhaustsToNotFound(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, 1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.SummonerByPUUID(context.Background(), "puuid-1", "americas")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(4), calls.Load(), "every americas platform should be tried")
}

func TestRetryDelayPrefersRetryAfter(t *testing.T) {
	d := retryDelay(0, &TransientError{StatusCode: 429, RetryAfter: 3 * time.Second}, nil)
	assert.Equal(t, 3*time.Second, d)
}

func TestRetryDelayBacksOffWithJitter(t *testing.T) {
	for n := uint(0); n < 8; n++ {
		d := retryDelay(n, &TransientError{StatusCode: 502}, nil)
		assert.GreaterOrEqual(t, d, backoffBase/2)
		assert.LessOrEqual(t, d, backoffMax)
	}
}
