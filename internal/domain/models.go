package domain

import (
	"encoding/json"
	"time"
)

// Recap statuses per (player, year). Read by the polling frontend.
const (
	RecapStatusGenerating = "generating"
	RecapStatusReady      = "ready"
	RecapStatusFailed     = "failed"
)

type Player struct {
	PUUID         string
	RiotID        string // "GameName#TagLine"
	Region        string // routing region: americas, europe, asia, sea
	SummonerID    string
	SummonerLevel int
	ProfileIconID int
	RevisionDate  int64
	RankEntries   []RankEntry

	// year ("2025") -> ordered match uids for that year's window
	YearMatchIDs map[string][]string
	// year -> generating | ready | failed
	RecapStatuses map[string]string
	// year -> truncated failure reason
	RecapFailureReasons map[string]string

	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GameName returns the part of the riot id before the '#'.
func (p *Player) GameName() string {
	for i := 0; i < len(p.RiotID); i++ {
		if p.RiotID[i] == '#' {
			return p.RiotID[:i]
		}
	}
	return p.RiotID
}

// TagLine returns the part of the riot id after the '#', or "".
func (p *Player) TagLine() string {
	for i := 0; i < len(p.RiotID); i++ {
		if p.RiotID[i] == '#' {
			return p.RiotID[i+1:]
		}
	}
	return ""
}

type RankEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Match is one immutable fetched match record. RawJSON is the upstream
// payload verbatim; it is parsed again at aggregation time.
type Match struct {
	MatchUID    string
	Region      string
	GameStartAt time.Time
	Year        int
	RawJSON     json.RawMessage
	CreatedAt   time.Time
}

// Ingestion progress phases.
const (
	PhaseDownloading = "downloading"
	PhaseComputing   = "computing"
)

// ProgressSnapshot is the ephemeral per-(player, year) ingest state kept
// in Redis. All fields are optional on write; a write merges into the
// existing snapshot.
type ProgressSnapshot struct {
	Phase      string `json:"phase,omitempty"`
	Downloaded *int   `json:"downloaded,omitempty"`
	Processed  *int   `json:"processed,omitempty"`
	JobID      string `json:"job_id,omitempty"`
}
