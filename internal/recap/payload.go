package recap

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// matchDoc is the decoded upstream match document. Participant stats
// are kept loosely typed because field placement varies by payload
// version: a value may sit on the participant root, in the metadata
// participants array, or under the challenges sub-object. All fallback
// chains live here so the aggregation fold reads one stable shape.
type matchDoc struct {
	Metadata struct {
		Participants []string `json:"participants"`
	} `json:"metadata"`
	Info struct {
		QueueID            int            `json:"queueId"`
		GameDuration       int64          `json:"gameDuration"`
		GameDurationMillis int64          `json:"gameDurationMillis"`
		Teams              []teamDoc      `json:"teams"`
		Participants       []participant  `json:"participants"`
	} `json:"info"`
}

type teamDoc struct {
	TeamID          int    `json:"teamId"`
	EndOfGameResult string `json:"endOfGameResult"`
	Bans            []struct {
		ChampionID int `json:"championId"`
	} `json:"bans"`
}

func parseMatch(raw []byte) (*matchDoc, error) {
	var doc matchDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode match payload: %w", err)
	}
	return &doc, nil
}

// durationSeconds prefers gameDuration (seconds); older payloads carry
// gameDurationMillis instead.
func (d *matchDoc) durationSeconds() int64 {
	if d.Info.GameDuration > 0 {
		return d.Info.GameDuration
	}
	return d.Info.GameDurationMillis / 1000
}

// resolvedParticipant pairs a participant with its puuid, which may
// come from the participant itself or positionally from
// metadata.participants.
type resolvedParticipant struct {
	p     participant
	puuid string
}

func (d *matchDoc) resolvedParticipants() []resolvedParticipant {
	resolved := make([]resolvedParticipant, 0, len(d.Info.Participants))
	for i, p := range d.Info.Participants {
		puuid := p.str("puuid")
		if puuid == "" && i < len(d.Metadata.Participants) {
			puuid = d.Metadata.Participants[i]
		}
		resolved = append(resolved, resolvedParticipant{p: p, puuid: puuid})
	}
	return resolved
}

type participant map[string]any

func (p participant) challenges() map[string]any {
	if c, ok := p["challenges"].(map[string]any); ok {
		return c
	}
	return nil
}

// num returns the first numeric value for name, checking the
// participant root then the challenges sub-object.
func (p participant) num(name string) (float64, bool) {
	if v, ok := toNumber(p[name]); ok {
		return v, true
	}
	if v, ok := toNumber(p.challenges()[name]); ok {
		return v, true
	}
	return 0, false
}

// rootNum only consults the participant root.
func (p participant) rootNum(name string) (float64, bool) {
	return toNumber(p[name])
}

// chalNum only consults the challenges sub-object.
func (p participant) chalNum(name string) (float64, bool) {
	return toNumber(p.challenges()[name])
}

// firstNum returns the first present value across accessors applied to
// names in order; each name is tried against the root then challenges.
func (p participant) firstNum(names ...string) (float64, bool) {
	for _, name := range names {
		if v, ok := p.num(name); ok {
			return v, true
		}
	}
	return 0, false
}

func (p participant) intOr(name string, fallback int) int {
	if v, ok := p.num(name); ok {
		return int(v)
	}
	return fallback
}

func (p participant) str(name string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return ""
}

// boolField tolerates true booleans and "true" strings.
func (p participant) boolField(name string) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func (p participant) teamID() int {
	if v, ok := p.rootNum("teamId"); ok {
		return int(v)
	}
	return 0
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// isWholeNumber reports whether a decoded JSON value is an integral
// number; ping counters must be whole to be trusted.
func isWholeNumber(v any) (int64, bool) {
	f, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	if f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
