package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
	"github.com/Ethan-new/LoL-Wrapped/internal/riot"
)

type fakeSource struct {
	pages       map[int][]string
	payloads    map[string]*riot.MatchPayload
	fetchErr    map[string]error
	pageCalls   int
	fetchCounts map[string]int
}

func (f *fakeSource) MatchIDs(_ context.Context, _, _ string, start, _ int) ([]string, error) {
	f.pageCalls++
	return f.pages[start], nil
}

func (f *fakeSource) Match(_ context.Context, matchUID, _ string) (*riot.MatchPayload, error) {
	if f.fetchCounts == nil {
		f.fetchCounts = map[string]int{}
	}
	f.fetchCounts[matchUID]++
	if err := f.fetchErr[matchUID]; err != nil {
		return nil, err
	}
	p, ok := f.payloads[matchUID]
	if !ok {
		return nil, riot.ErrNotFound
	}
	return p, nil
}

type fakeLock struct {
	locked   bool
	acquired int
	released int
}

func (f *fakeLock) IsLocked(context.Context, string) (bool, error) { return f.locked, nil }
func (f *fakeLock) Acquire(context.Context, string) error {
	f.acquired++
	f.locked = true
	return nil
}
func (f *fakeLock) Release(context.Context, string) error {
	f.released++
	f.locked = false
	return nil
}

type fakeProgress struct {
	updates []domain.ProgressSnapshot
	cleared int
}

func (f *fakeProgress) Set(_ context.Context, _ string, _ int, update domain.ProgressSnapshot) error {
	f.updates = append(f.updates, update)
	return nil
}
func (f *fakeProgress) Clear(context.Context, string, int) error {
	f.cleared++
	return nil
}

func (f *fakeProgress) lastPhase() string {
	for i := len(f.updates) - 1; i >= 0; i-- {
		if f.updates[i].Phase != "" {
			return f.updates[i].Phase
		}
	}
	return ""
}

type fakePlayers struct {
	player   *domain.Player
	yearIDs  map[int][]string
	statuses map[int]string
	reasons  map[int]string
}

func newFakePlayers(puuid string) *fakePlayers {
	return &fakePlayers{
		player:   &domain.Player{PUUID: puuid, Region: "americas"},
		yearIDs:  map[int][]string{},
		statuses: map[int]string{},
		reasons:  map[int]string{},
	}
}

func (f *fakePlayers) Get(context.Context, string) (*domain.Player, error) { return f.player, nil }
func (f *fakePlayers) SetYearMatchIDs(_ context.Context, _ string, year int, matchUIDs []string) error {
	f.yearIDs[year] = matchUIDs
	return nil
}
func (f *fakePlayers) SetRecapStatus(_ context.Context, _ string, year int, status, reason string) error {
	f.statuses[year] = status
	f.reasons[year] = reason
	return nil
}

type fakeMatchStore struct {
	stored map[string]*domain.Match
}

func (f *fakeMatchStore) GameStartAt(_ context.Context, matchUID string) (*time.Time, error) {
	if m, ok := f.stored[matchUID]; ok {
		t := m.GameStartAt
		return &t, nil
	}
	return nil, nil
}
func (f *fakeMatchStore) Insert(_ context.Context, match *domain.Match) error {
	if f.stored == nil {
		f.stored = map[string]*domain.Match{}
	}
	if _, ok := f.stored[match.MatchUID]; !ok {
		f.stored[match.MatchUID] = match
	}
	return nil
}

type fakeEnqueuer struct {
	jobs []string
}

func (f *fakeEnqueuer) EnqueueCompute(_ context.Context, puuid string, year int, jobID string) error {
	f.jobs = append(f.jobs, fmt.Sprintf("%s/%d/%s", puuid, year, jobID))
	return nil
}

func payloadAt(uid string, ts time.Time) *riot.MatchPayload {
	return &riot.MatchPayload{MatchUID: uid, GameStartAt: ts, Raw: []byte(`{}`)}
}

func testPipeline(source *fakeSource, lock *fakeLock, prog *fakeProgress, players *fakePlayers, matches *fakeMatchStore, q *fakeEnqueuer) *Pipeline {
	return New(source, lock, prog, players, matches, q, 0, zerolog.Nop())
}

func TestRunCollectsOnlyYearWindow(t *testing.T) {
	utc := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
	source := &fakeSource{
		pages: map[int][]string{0: {"new", "dec", "jun", "old"}},
		payloads: map[string]*riot.MatchPayload{
			"new": payloadAt("new", utc(2026, time.February, 1)),
			"dec": payloadAt("dec", utc(2025, time.December, 30)),
			"jun": payloadAt("jun", utc(2025, time.June, 15)),
			"old": payloadAt("old", utc(2024, time.November, 3)),
		},
	}
	lock := &fakeLock{}
	prog := &fakeProgress{}
	players := newFakePlayers("puuid-1")
	matches := &fakeMatchStore{}
	q := &fakeEnqueuer{}

	p := testPipeline(source, lock, prog, players, matches, q)
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Equal(t, []string{"dec", "jun"}, players.yearIDs[2025], "too-new skipped, too-old stops")
	assert.Equal(t, domain.RecapStatusGenerating, players.statuses[2025])
	assert.Equal(t, []string{"puuid-1/2025/job-1"}, q.jobs)
	assert.Equal(t, domain.PhaseComputing, prog.lastPhase())
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	// all four payloads stored, including the out-of-window ones
	assert.Len(t, matches.stored, 4)
}

func TestRunReturnsErrLockBusy(t *testing.T) {
	lock := &fakeLock{locked: true}
	players := newFakePlayers("puuid-1")
	q := &fakeEnqueuer{}

	p := testPipeline(&fakeSource{}, lock, &fakeProgress{}, players, &fakeMatchStore{}, q)
	err := p.Run(context.Background(), "puuid-1", 2025, "job-1")
	require.ErrorIs(t, err, ErrLockBusy)
	assert.Zero(t, lock.acquired)
	assert.Empty(t, players.statuses)
	assert.Empty(t, q.jobs)
}

func TestRunReusesStoredMatches(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{pages: map[int][]string{0: {"stored"}}}
	matches := &fakeMatchStore{stored: map[string]*domain.Match{
		"stored": {MatchUID: "stored", GameStartAt: ts, Year: 2025},
	}}
	players := newFakePlayers("puuid-1")

	p := testPipeline(source, &fakeLock{}, &fakeProgress{}, players, matches, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Zero(t, source.fetchCounts["stored"], "stored match must not be fetched again")
	assert.Equal(t, []string{"stored"}, players.yearIDs[2025])
}

func TestRunStopsOnShortPage(t *testing.T) {
	ts := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		pages:    map[int][]string{0: {"a", "b"}},
		payloads: map[string]*riot.MatchPayload{"a": payloadAt("a", ts), "b": payloadAt("b", ts)},
	}
	players := newFakePlayers("puuid-1")

	p := testPipeline(source, &fakeLock{}, &fakeProgress{}, players, &fakeMatchStore{}, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Equal(t, 1, source.pageCalls, "a page shorter than the page size ends pagination")
}

func TestRunPaginatesFullPages(t *testing.T) {
	ts := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		pages:    map[int][]string{0: make([]string, 0, constants.MatchIDPageSize)},
		payloads: map[string]*riot.MatchPayload{},
	}
	for i := 0; i < constants.MatchIDPageSize; i++ {
		uid := fmt.Sprintf("m%d", i)
		source.pages[0] = append(source.pages[0], uid)
		source.payloads[uid] = payloadAt(uid, ts)
	}
	// second page is empty, which also ends pagination
	source.pages[constants.MatchIDPageSize] = nil
	players := newFakePlayers("puuid-1")

	p := testPipeline(source, &fakeLock{}, &fakeProgress{}, players, &fakeMatchStore{}, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Equal(t, 2, source.pageCalls)
	assert.Len(t, players.yearIDs[2025], constants.MatchIDPageSize)
}

func TestRunYearBoundaries(t *testing.T) {
	source := &fakeSource{
		pages: map[int][]string{0: {"next-jan1", "dec31", "jan1"}},
		payloads: map[string]*riot.MatchPayload{
			"next-jan1": payloadAt("next-jan1", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)),
			"dec31":     payloadAt("dec31", time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)),
			"jan1":      payloadAt("jan1", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	players := newFakePlayers("puuid-1")

	p := testPipeline(source, &fakeLock{}, &fakeProgress{}, players, &fakeMatchStore{}, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Equal(t, []string{"dec31", "jan1"}, players.yearIDs[2025],
		"Jan 1 of the year is inclusive, Jan 1 of the next year is exclusive")
}

func TestRunUpstreamFailureMarksFailed(t *testing.T) {
	source := &fakeSource{
		pages:    map[int][]string{0: {"boom"}},
		fetchErr: map[string]error{"boom": &riot.TransientError{StatusCode: 503}},
	}
	lock := &fakeLock{}
	prog := &fakeProgress{}
	players := newFakePlayers("puuid-1")
	q := &fakeEnqueuer{}

	p := testPipeline(source, lock, prog, players, &fakeMatchStore{}, q)
	err := p.Run(context.Background(), "puuid-1", 2025, "job-1")
	require.Error(t, err)
	assert.True(t, riot.IsTransient(err), "the upstream error escapes")
	assert.Equal(t, domain.RecapStatusFailed, players.statuses[2025])
	assert.NotEmpty(t, players.reasons[2025])
	assert.Equal(t, 1, prog.cleared)
	assert.Equal(t, 1, lock.released, "lock released even on failure")
	assert.Empty(t, q.jobs)
}

func TestRunSkipsPayloadWithoutTimestamp(t *testing.T) {
	source := &fakeSource{
		pages: map[int][]string{0: {"no-ts", "ok"}},
		payloads: map[string]*riot.MatchPayload{
			"no-ts": {MatchUID: "no-ts", Raw: []byte(`{}`)},
			"ok":    payloadAt("ok", time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)),
		},
	}
	players := newFakePlayers("puuid-1")
	matches := &fakeMatchStore{}

	p := testPipeline(source, &fakeLock{}, &fakeProgress{}, players, matches, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	assert.Equal(t, []string{"ok"}, players.yearIDs[2025])
	_, stored := matches.stored["no-ts"]
	assert.False(t, stored, "a payload without a start timestamp is not persisted")
}

func TestProgressCadence(t *testing.T) {
	ts := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	n := 23
	source := &fakeSource{pages: map[int][]string{0: {}}, payloads: map[string]*riot.MatchPayload{}}
	for i := 0; i < n; i++ {
		uid := fmt.Sprintf("m%d", i)
		source.pages[0] = append(source.pages[0], uid)
		source.payloads[uid] = payloadAt(uid, ts)
	}
	prog := &fakeProgress{}
	players := newFakePlayers("puuid-1")

	p := testPipeline(source, &fakeLock{}, prog, players, &fakeMatchStore{}, &fakeEnqueuer{})
	require.NoError(t, p.Run(context.Background(), "puuid-1", 2025, "job-1"))

	var counted int
	for _, u := range prog.updates {
		if u.Processed != nil {
			counted++
		}
	}
	// every record for the first 10, then records 15 and 20
	assert.Equal(t, 12, counted)
}
