package recap

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

type teammateAgg struct {
	games           int
	winsTogether    int
	killsAndAssists int
	teamKills       int
}

type championAgg struct {
	games   int
	wins    int
	kills   int
	deaths  int
	assists int
}

type matchResult struct {
	ts  time.Time
	won bool
}

// accumulator folds raw match records into the year's running totals.
// One instance per aggregation run; not safe for concurrent use.
type accumulator struct {
	teammates map[string]*teammateAgg
	enemies   map[string]int // puuid -> times they beat us

	totalPings    int64
	pingBreakdown map[string]int64

	totalGameSeconds int64
	totalGoldSpent   int64
	totalKills       int64
	totalDeaths      int64
	totalAssists     int64
	totalLastHits    int64
	sumCSPerMin      float64
	gamesForCS       int

	counters   map[string]float64
	itemCounts map[int]int
	ourBans    map[int]int
	enemyBans  map[int]int

	gamesCount           int
	maxTeamDamagePct     float64
	gamesMostDamage      int
	sumGoldPerMin        float64
	gamesTopGold         int
	sumDeaths            int
	gamesZeroDeaths      int
	sumTimeSpentDead     float64
	sumTakedownsEarly    float64
	gamesWithEarlyStats  int
	sumLaneMinions10     float64
	gamesWithLaneMinions int
	gamesFirstBlood      int

	survivedSingleDigitHP int
	objectivesStolen      int
	dragonsTaken          int
	baronsTaken           int
	turretsTaken          int
	gamesSurrender        int
	winsSurrender         int

	sumGameDurationSec   int64
	gamesByBucket        map[string]int
	winsByBucket         map[string]int
	winsNegativeGPM      int
	winsAfterGoldDeficit int
	gamesScalingChamps   int

	champions map[int]*championAgg

	sumVisionPerMin    float64
	gamesWithVision    int
	controlWards       int
	wardTakedowns      int
	sumVisionAdvantage float64
	gamesWithVisionAdv int

	physDamage          float64
	magicDamage         float64
	trueDamage          float64
	sumDamageTakenPct   float64
	gamesWithDmgTakenPct int
	damageSelfMitigated float64
	maxDPM              float64
	sumDPM              float64

	turretPlates      int
	teamKillsAllGames int64

	queueCounts map[string]int
	timeByQueue map[string]int64

	bestGame   *domain.BestGame
	bestScore  float64
	worstGame  *domain.WorstGame
	worstScore float64

	results     []matchResult
	timeHeatmap map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		teammates:     map[string]*teammateAgg{},
		enemies:       map[string]int{},
		pingBreakdown: map[string]int64{},
		counters:      map[string]float64{},
		itemCounts:    map[int]int{},
		ourBans:       map[int]int{},
		enemyBans:     map[int]int{},
		gamesByBucket: map[string]int{bucketUnder20: 0, bucket20to30: 0, bucketOver30: 0},
		winsByBucket:  map[string]int{bucketUnder20: 0, bucket20to30: 0, bucketOver30: 0},
		champions:     map[int]*championAgg{},
		queueCounts:   map[string]int{},
		timeByQueue:   map[string]int64{},
		bestScore:     -1,
		worstScore:    -1,
		timeHeatmap:   map[string]int{},
	}
}

const (
	bucketUnder20 = "under20"
	bucket20to30  = "w20_30"
	bucketOver30  = "over30"
)

// addMatch folds one raw record. Records where the subject cannot be
// located among the participants are skipped.
func (a *accumulator) addMatch(playerPUUID string, match *domain.Match) (bool, error) {
	doc, err := parseMatch(match.RawJSON)
	if err != nil {
		return false, fmt.Errorf("match %s: %w", match.MatchUID, err)
	}

	resolved := doc.resolvedParticipants()
	var me *resolvedParticipant
	for i := range resolved {
		if resolved[i].puuid == playerPUUID {
			me = &resolved[i]
			break
		}
	}
	if me == nil {
		return false, nil
	}

	p := me.p
	teamID := p.teamID()
	won := p.boolField("win")

	category := queueCategory(doc.Info.QueueID)
	a.queueCounts[category]++

	gameSec := doc.durationSeconds()
	a.totalGameSeconds += gameSec
	a.timeByQueue[category] += gameSec
	durationMins := float64(gameSec) / 60.0

	if !match.GameStartAt.IsZero() {
		ts := match.GameStartAt.UTC()
		a.results = append(a.results, matchResult{ts: ts, won: won})
		a.timeHeatmap[fmt.Sprintf("%d_%d", int(ts.Weekday()), ts.Hour())]++
	}

	kills := p.intOr("kills", 0)
	deaths := p.intOr("deaths", 0)
	assists := p.intOr("assists", 0)
	a.totalKills += int64(kills)
	a.totalDeaths += int64(deaths)
	a.totalAssists += int64(assists)

	lastHits := p.intOr("totalMinionsKilled", 0) + p.intOr("neutralMinionsKilled", 0)
	a.totalLastHits += int64(lastHits)
	if durationMins > 0 {
		a.sumCSPerMin += float64(lastHits) / durationMins
		a.gamesForCS++
	}

	a.totalGoldSpent += int64(p.intOr("goldSpent", 0))

	for slot := 0; slot <= 6; slot++ {
		if id := p.intOr(fmt.Sprintf("item%d", slot), 0); id > 0 {
			a.itemCounts[id]++
		}
	}

	for _, key := range extraStatKeys {
		if v, ok := p.num(key); ok {
			a.counters[key] += v
		}
	}

	a.addBans(doc, teamID)
	a.addPings(p)

	var teammates, opponents []resolvedParticipant
	for _, r := range resolved {
		if r.p.teamID() == teamID {
			if r.puuid != "" && r.puuid != playerPUUID {
				teammates = append(teammates, r)
			}
		} else {
			opponents = append(opponents, r)
		}
	}

	a.gamesCount++

	myDamage, _ := p.rootNum("totalDamageDealtToChampions")
	teamDamage := myDamage
	mostDamage := true
	for _, r := range teammates {
		d, _ := r.p.rootNum("totalDamageDealtToChampions")
		teamDamage += d
		if d >= myDamage {
			mostDamage = false
		}
	}
	if teamDamage > 0 {
		myPct := myDamage / teamDamage * 100.0
		if myPct > a.maxTeamDamagePct {
			a.maxTeamDamagePct = myPct
		}
		if mostDamage {
			a.gamesMostDamage++
		}
	}

	goldEarned := goldEarnedOrSpent(p)
	if durationMins > 0 {
		a.sumGoldPerMin += float64(goldEarned) / durationMins
		topGold := true
		for _, r := range teammates {
			if goldEarnedOrSpent(r.p) >= goldEarned {
				topGold = false
				break
			}
		}
		if topGold {
			a.gamesTopGold++
		}
	}

	a.sumDeaths += deaths
	if deaths == 0 {
		a.gamesZeroDeaths++
	}
	timeSpentDead, _ := p.num("timeSpentDead")
	if timeSpentDead <= 0 && deaths > 0 {
		timeSpentDead = float64(deaths) * timeSpentDeadPerDeathSec
	}
	a.sumTimeSpentDead += timeSpentDead

	if v, ok := firstChalNum(p, "takedownsFirst25Minutes", "takedownsFirst10Minutes"); ok {
		a.sumTakedownsEarly += v
		a.gamesWithEarlyStats++
	}
	if v, ok := p.chalNum("laneMinionsFirst10Minutes"); ok {
		a.sumLaneMinions10 += v
		a.gamesWithLaneMinions++
	}
	if p.boolField("firstBloodKill") || p.boolField("firstBloodAssist") {
		a.gamesFirstBlood++
	}

	if v, ok := p.chalNum("survivedSingleDigitHpCount"); ok {
		a.survivedSingleDigitHP += int(v)
	}
	stolen, _ := p.chalNum("objectivesStolen")
	stolenAssists, _ := p.chalNum("objectivesStolenAssists")
	a.objectivesStolen += int(stolen) + int(stolenAssists)

	if matchEndedInSurrender(doc) {
		a.gamesSurrender++
		if won {
			a.winsSurrender++
		}
	}

	a.sumGameDurationSec += gameSec
	bucket := bucketOver30
	switch {
	case durationMins < 20:
		bucket = bucketUnder20
	case durationMins <= 30:
		bucket = bucket20to30
	}
	a.gamesByBucket[bucket]++
	if won {
		a.winsByBucket[bucket]++
	}

	if durationMins > 0 && won {
		var enemyGold int
		for _, r := range opponents {
			enemyGold += goldEarnedOrSpent(r.p)
		}
		ourGPM := float64(goldEarned) / durationMins
		enemyGPM := float64(enemyGold) / (5.0 * durationMins) // per-player average across 5 enemies
		if ourGPM < enemyGPM {
			a.winsNegativeGPM++
		}
	}
	if goldDiff15, ok := p.chalNum("goldDiffAt15"); ok && won && goldDiff15 < 0 {
		a.winsAfterGoldDeficit++
	}

	championID := p.intOr("championId", 0)
	champ := a.champions[championID]
	if champ == nil {
		champ = &championAgg{}
		a.champions[championID] = champ
	}
	champ.games++
	if won {
		champ.wins++
	}
	champ.kills += kills
	champ.deaths += deaths
	champ.assists += assists
	if championID > 0 && lateScalingChampionIDs[championID] {
		a.gamesScalingChamps++
	}

	visionScore, _ := p.num("visionScore")
	if durationMins > 0 {
		a.sumVisionPerMin += visionScore / durationMins
		a.gamesWithVision++
	}
	controlWards := 0
	if v, ok := p.num("controlWardsPlaced"); ok {
		controlWards = int(v)
	}
	if controlWards == 0 {
		controlWards = p.intOr("visionWardsBoughtInGame", 0) // fallback: control wards bought
	}
	a.controlWards += controlWards
	if v, ok := p.firstNum("wardsKilled", "wardTakedowns"); ok {
		a.wardTakedowns += int(v)
	}
	if v, ok := p.chalNum("turretPlatesTaken"); ok {
		a.turretPlates += int(v)
	}
	if v, ok := p.firstNum("turretKills", "turretTakedowns"); ok {
		a.turretsTaken += int(v)
	}
	if v, ok := p.num("dragonKills"); ok {
		a.dragonsTaken += int(v)
	}
	if v, ok := p.num("baronKills"); ok {
		a.baronsTaken += int(v)
	}
	if v, ok := p.chalNum("visionScoreAdvantageLaneOpponent"); ok {
		a.sumVisionAdvantage += v
		a.gamesWithVisionAdv++
	}

	phys, _ := p.rootNum("physicalDamageDealtToChampions")
	magic, _ := p.rootNum("magicDamageDealtToChampions")
	trueDmg, _ := p.rootNum("trueDamageDealtToChampions")
	a.physDamage += phys
	a.magicDamage += magic
	a.trueDamage += trueDmg
	if v, ok := p.chalNum("damageTakenOnTeamPercentage"); ok {
		a.sumDamageTakenPct += v
		a.gamesWithDmgTakenPct++
	}
	mitigated, _ := p.num("damageSelfMitigated")
	a.damageSelfMitigated += mitigated
	if durationMins > 0 && myDamage > 0 {
		dpm := myDamage / durationMins
		if dpm > a.maxDPM {
			a.maxDPM = dpm
		}
		a.sumDPM += dpm
	}

	teamKills := kills
	for _, r := range teammates {
		teamKills += r.p.intOr("kills", 0)
	}
	a.teamKillsAllGames += int64(teamKills)

	a.scoreGame(p, won, kills, deaths, assists, myDamage, int(gameSec), championID)

	ourKA := kills + assists
	for _, r := range teammates {
		agg := a.teammates[r.puuid]
		if agg == nil {
			agg = &teammateAgg{}
			a.teammates[r.puuid] = agg
		}
		agg.games++
		if won {
			agg.winsTogether++
		}
		agg.killsAndAssists += ourKA
		agg.teamKills += teamKills
	}

	// Enemy aggregates only move when we lost: the opponents beat us.
	if !won {
		for _, r := range opponents {
			if r.puuid == "" || r.puuid == playerPUUID {
				continue
			}
			a.enemies[r.puuid]++
		}
	}

	return true, nil
}

func (a *accumulator) addBans(doc *matchDoc, teamID int) {
	for _, team := range doc.Info.Teams {
		target := a.enemyBans
		if team.TeamID == teamID {
			target = a.ourBans
		}
		for _, ban := range team.Bans {
			if ban.ChampionID > 0 {
				target[ban.ChampionID]++
			}
		}
	}
}

// addPings tallies every participant counter whose key ends in "Pings",
// so new ping types count without a schema change.
func (a *accumulator) addPings(p participant) {
	for key, val := range p {
		if !strings.HasSuffix(key, "Pings") && !strings.HasSuffix(key, "pings") {
			continue
		}
		count, ok := isWholeNumber(val)
		if !ok {
			continue
		}
		a.totalPings += count
		a.pingBreakdown[key] += count
	}
}

// scoreGame tracks the best game (composite score favoring KDA, damage,
// and wins) and the worst (high deaths, low K+A, losses).
func (a *accumulator) scoreGame(p participant, won bool, kills, deaths, assists int, damage float64, gameSec, championID int) {
	kdaMult := float64(kills + assists)
	if deaths > 0 {
		kdaMult /= float64(deaths)
	}
	best := kdaMult*bestGameKDAWeight + damage/bestGameDamageDivisor
	if won {
		best += bestGameWinBonus
	}
	if best > a.bestScore {
		a.bestScore = best
		a.bestGame = &domain.BestGame{
			Kills:           kills,
			Deaths:          deaths,
			Assists:         assists,
			Damage:          int(damage + 0.5),
			DurationSeconds: gameSec,
			ChampionID:      championID,
		}
	}

	worst := float64(deaths)*worstGameDeathsWeight - float64(kills) - float64(assists)
	if !won {
		worst += worstGameLossBonus
	}
	if worst > a.worstScore {
		a.worstScore = worst
		a.worstGame = &domain.WorstGame{
			Kills:      kills,
			Deaths:     deaths,
			Assists:    assists,
			ChampionID: championID,
		}
	}
}

func queueCategory(queueID int) string {
	if c, ok := queueToCategory[queueID]; ok {
		return c
	}
	if urfRGMQueueIDs[queueID] {
		return "urf_rgm"
	}
	return "other"
}

// Surrender shows up as "Surrender"/"EarlySurrender" in any team's
// endOfGameResult.
func matchEndedInSurrender(doc *matchDoc) bool {
	for _, team := range doc.Info.Teams {
		if strings.Contains(team.EndOfGameResult, "Surrender") {
			return true
		}
	}
	return false
}

func goldEarnedOrSpent(p participant) int {
	if v, ok := p.rootNum("goldEarned"); ok {
		return int(v)
	}
	return p.intOr("goldSpent", 0)
}

func firstChalNum(p participant, names ...string) (float64, bool) {
	for _, name := range names {
		if v, ok := p.chalNum(name); ok {
			return v, true
		}
	}
	return 0, false
}
