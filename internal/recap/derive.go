package recap

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

// finalize turns the folded totals into the stored stat row. resolve
// maps a puuid to a riot id ("" when unknown) and is only called for
// the leaderboard entries that surface in the payload.
func (a *accumulator) finalize(playerPUUID string, year int, resolve func(string) string) *domain.RecapYearStat {
	stat := &domain.RecapYearStat{
		PlayerPUUID:      playerPUUID,
		Year:             year,
		TotalPings:       a.totalPings,
		PingBreakdown:    a.pingBreakdown,
		TotalGameSeconds: a.totalGameSeconds,
		TotalGoldSpent:   a.totalGoldSpent,
		TotalKills:       a.totalKills,
		TotalDeaths:      a.totalDeaths,
		TotalAssists:     a.totalAssists,
	}

	extra := &stat.ExtraStats
	extra.TotalLastHits = a.totalLastHits
	if a.gamesForCS > 0 {
		extra.AvgCSPerMin = fptr(round1(a.sumCSPerMin / float64(a.gamesForCS)))
	}
	extra.GamesCount = a.gamesCount
	extra.UniqueChampionsPlayed = len(a.champions)
	if len(a.counters) > 0 {
		extra.Counters = a.counters
	}

	extra.PlaystyleIdentity = a.playstyleIdentity()
	extra.ClutchChaosMoments = a.clutchChaos()
	extra.EconomyScaling = a.economyScaling()

	byGames := a.championsByGames()
	extra.ChampionPersonality, extra.WinrateInsights = a.championInsights(byGames)
	if top := a.topChampions(byGames); len(top) > 0 {
		extra.TopChampions = top
	}
	extra.BestGame = a.bestGame
	extra.WorstGame = a.worstGame

	if s := a.streaks(); s != nil {
		extra.Streaks = s
	}
	if len(a.timeHeatmap) > 0 {
		extra.TimePlayedHeatmap = a.timeHeatmap
	}
	extra.VisionMapIQ = a.visionMapIQ()
	extra.DamageProfile = a.damageProfile()

	topDuos := topByGamesThenWins(a.teammates, 0, topDuoCount)
	topTeammates := topByGamesThenWins(a.teammates, 1, topTeammateCount)
	topEnemies := a.topEnemies()

	riotIDs := map[string]string{}
	for _, puuid := range collectPUUIDs(topDuos, topTeammates, topEnemies) {
		riotIDs[puuid] = resolve(puuid)
	}

	extra.BotLaneSynergy = a.botLaneSynergy(topDuos, riotIDs)
	a.queueStats(extra)
	extra.MemeTitles = a.memeTitles()
	extra.MVPInsight = a.mvpInsight(extra)

	for _, puuid := range topTeammates {
		agg := a.teammates[puuid]
		riotID := riotIDs[puuid]
		stat.MostPlayedWith = append(stat.MostPlayedWith, domain.TeammateStat{
			TeammatePUUID:  puuid,
			TeammateRiotID: riotID,
			TeammateName:   displayName(riotID, puuid),
			Games:          agg.games,
			WinsTogether:   agg.winsTogether,
		})
	}
	for _, puuid := range topEnemies {
		riotID := riotIDs[puuid]
		stat.MostBeatUs = append(stat.MostBeatUs, domain.EnemyStat{
			EnemyPUUID:  puuid,
			EnemyRiotID: riotID,
			EnemyName:   displayName(riotID, puuid),
			TimesBeatUs: a.enemies[puuid],
		})
	}

	stat.FavItems = a.favItems()
	stat.OurTeamBans = topBans(a.ourBans)
	stat.EnemyTeamBans = topBans(a.enemyBans)

	return stat
}

func (a *accumulator) playstyleIdentity() *domain.PlaystyleIdentity {
	pi := &domain.PlaystyleIdentity{}
	games := float64(a.gamesCount)
	if a.gamesCount > 0 {
		pi.MainCharacterEnergy.HighestTeamDamagePercentage = fptr(round1(a.maxTeamDamagePct))
		pi.MainCharacterEnergy.GamesMostDamageOnTeam = iptr(a.gamesMostDamage)
		pi.MainCharacterEnergy.GamesMostDamagePercent = fptr(round1(100.0 * float64(a.gamesMostDamage) / games))
		pi.GoldGoblinIndex.GamesTopGoldOnTeam = iptr(a.gamesTopGold)
		pi.GoldGoblinIndex.GamesTopGoldPercent = fptr(round1(100.0 * float64(a.gamesTopGold) / games))
		pi.RiskToleranceScore.AvgDeaths = fptr(round1(float64(a.sumDeaths) / games))
		pi.RiskToleranceScore.AvgTimeSpentDead = fptr(round0(a.sumTimeSpentDead / games))
		pi.EarlyGameDemon.FirstBloodInvolvementPct = fptr(round1(100.0 * float64(a.gamesFirstBlood) / games))
	}
	pi.MainCharacterEnergy.GamesCount = a.gamesCount
	if a.sumGoldPerMin > 0 && a.gamesCount > 0 {
		pi.GoldGoblinIndex.AvgGoldPerMin = fptr(round0(a.sumGoldPerMin / games))
	}
	pi.RiskToleranceScore.GamesWithZeroDeath = a.gamesZeroDeaths
	if a.gamesWithEarlyStats > 0 {
		pi.EarlyGameDemon.AvgTakedownsFirstXMinutes = fptr(round1(a.sumTakedownsEarly / float64(a.gamesWithEarlyStats)))
	}
	if a.gamesWithLaneMinions > 0 {
		pi.EarlyGameDemon.AvgLaneMinionsFirst10Min = fptr(round1(a.sumLaneMinions10 / float64(a.gamesWithLaneMinions)))
	}
	pi.EarlyGameDemon.GamesFirstBloodInvolvement = a.gamesFirstBlood
	return pi
}

func (a *accumulator) clutchChaos() *domain.ClutchChaosMoments {
	cc := &domain.ClutchChaosMoments{}
	cc.OneHPSurvivor.SurvivedSingleDigitHPCount = a.survivedSingleDigitHP
	cc.OutnumberedFighter.OutnumberedKills = int(a.counters["outnumberedKills"])
	cc.ObjectiveThiefPotential.ObjectivesStolenPlusAssists = a.objectivesStolen
	cc.FirstBloodMagnet.GamesFirstBloodInvolvement = a.gamesFirstBlood
	cc.SurrenderStats.GamesEndedInSurrender = a.gamesSurrender
	cc.SurrenderStats.WinsInSurrenderGames = a.winsSurrender
	if a.gamesCount > 0 {
		cc.FirstBloodMagnet.FirstBloodInvolvementPct = fptr(round1(100.0 * float64(a.gamesFirstBlood) / float64(a.gamesCount)))
		cc.SurrenderStats.SurrenderGamesPercent = fptr(round1(100.0 * float64(a.gamesSurrender) / float64(a.gamesCount)))
	}
	if a.gamesSurrender > 0 {
		cc.SurrenderStats.WinrateInSurrenderGames = fptr(round1(100.0 * float64(a.winsSurrender) / float64(a.gamesSurrender)))
	}
	return cc
}

func (a *accumulator) economyScaling() *domain.EconomyScaling {
	es := &domain.EconomyScaling{
		WinrateByBucket: map[string]*float64{},
		GamesByBucket:   a.gamesByBucket,
	}
	for bucket, games := range a.gamesByBucket {
		if games > 0 {
			es.WinrateByBucket[bucket] = fptr(round1(100.0 * float64(a.winsByBucket[bucket]) / float64(games)))
		} else {
			es.WinrateByBucket[bucket] = nil
		}
	}
	if a.gamesCount > 0 {
		es.AvgGameDurationSeconds = fptr(round0(float64(a.sumGameDurationSec) / float64(a.gamesCount)))
		es.ScalingPickAddict.ScalingChampsPercent = fptr(round1(100.0 * float64(a.gamesScalingChamps) / float64(a.gamesCount)))
	}
	es.ComebackMerchant.WinsWithNegativeGpmVsOpponent = a.winsNegativeGPM
	es.ComebackMerchant.WinsAfterEarlyGoldDeficit = a.winsAfterGoldDeficit
	es.ScalingPickAddict.GamesOnScalingChamps = a.gamesScalingChamps
	return es
}

// championsByGames returns champion ids sorted by games desc, lower id
// first on ties so output is stable.
func (a *accumulator) championsByGames() []int {
	ids := make([]int, 0, len(a.champions))
	for id := range a.champions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		gi, gj := a.champions[ids[i]].games, a.champions[ids[j]].games
		if gi != gj {
			return gi > gj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (a *accumulator) championSummary(id int, withKDA bool) *domain.ChampionSummary {
	c := a.champions[id]
	s := &domain.ChampionSummary{ChampionID: id, Games: c.games, Wins: c.wins}
	if c.games > 0 {
		s.Winrate = fptr(round1(100.0 * float64(c.wins) / float64(c.games)))
		if withKDA {
			s.KDA = &domain.ChampionKDA{Kills: c.kills, Deaths: c.deaths, Assists: c.assists}
		}
	}
	return s
}

func (a *accumulator) championInsights(byGames []int) (*domain.ChampionPersonality, *domain.WinrateInsights) {
	cp := &domain.ChampionPersonality{}
	wi := &domain.WinrateInsights{}

	if len(byGames) > 0 {
		mostPlayedID := byGames[0]
		cp.MostPlayedChampion = a.championSummary(mostPlayedID, true)
		if a.gamesCount > 0 && a.champions[mostPlayedID].games > 0 {
			cp.OneTrickScore = fptr(round1(100.0 * float64(a.champions[mostPlayedID].games) / float64(a.gamesCount)))
		}
	}

	bestID, haveBest := -1, false
	bestWR := -1.0
	for _, id := range byGames {
		c := a.champions[id]
		if c.games < minGamesForWinrate {
			continue
		}
		wr := 100.0 * float64(c.wins) / float64(c.games)
		if wr > bestWR {
			bestWR, bestID, haveBest = wr, id, true
		}
	}
	if haveBest {
		cp.HighestWinrateChampion = a.championSummary(bestID, false)
		wi.BestChampion = a.championSummary(bestID, false)
	}

	whyPickID, haveWhy := -1, false
	for _, id := range byGames {
		c := a.champions[id]
		if c.games >= whyPickMinGames && float64(c.wins)/float64(c.games) < 0.5 {
			if !haveWhy || c.games > a.champions[whyPickID].games {
				whyPickID, haveWhy = id, true
			}
		}
	}
	if haveWhy {
		cp.WhyDoYouKeepPickingThis = a.championSummary(whyPickID, false)
	}

	worstID, haveWorst := -1, false
	worstWR := math.Inf(1)
	for _, id := range byGames {
		c := a.champions[id]
		if c.games < minGamesForWinrate || (haveBest && id == bestID) {
			continue
		}
		wr := 100.0 * float64(c.wins) / float64(c.games)
		if wr < worstWR {
			worstWR, worstID, haveWorst = wr, id, true
		}
	}
	if haveWorst {
		wi.WorstChampion = a.championSummary(worstID, false)
	}

	return cp, wi
}

func (a *accumulator) topChampions(byGames []int) []domain.ChampionSummary {
	n := len(byGames)
	if n > topChampionCount {
		n = topChampionCount
	}
	top := make([]domain.ChampionSummary, 0, n)
	for _, id := range byGames[:n] {
		top = append(top, *a.championSummary(id, false))
	}
	return top
}

func (a *accumulator) streaks() *domain.Streaks {
	sorted := make([]matchResult, len(a.results))
	copy(sorted, a.results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ts.Before(sorted[j].ts) })

	var longestWin, longestLoss, curWin, curLoss int
	for _, r := range sorted {
		if r.won {
			curWin++
			curLoss = 0
			if curWin > longestWin {
				longestWin = curWin
			}
		} else {
			curLoss++
			curWin = 0
			if curLoss > longestLoss {
				longestLoss = curLoss
			}
		}
	}
	if longestWin == 0 && longestLoss == 0 {
		return nil
	}
	return &domain.Streaks{LongestWinStreak: longestWin, LongestLossStreak: longestLoss}
}

func (a *accumulator) visionMapIQ() *domain.VisionMapIQ {
	vm := &domain.VisionMapIQ{}
	if a.gamesWithVision > 0 {
		vm.VisionScorePerMinAvg = fptr(round2(a.sumVisionPerMin / float64(a.gamesWithVision)))
	}
	if a.gamesCount > 0 {
		vm.ControlWardsPlacedPerGame = fptr(round1(float64(a.controlWards) / float64(a.gamesCount)))
		vm.WardTakedownsPerGame = fptr(round1(float64(a.wardTakedowns) / float64(a.gamesCount)))
	}
	vm.MapAwarenessScore.EnemyMissingPingsUsed = int(a.pingBreakdown["enemyMissingPings"])
	if a.gamesWithVisionAdv > 0 {
		vm.MapAwarenessScore.VisionScoreAdvantageLaneOpponent = fptr(round1(a.sumVisionAdvantage / float64(a.gamesWithVisionAdv)))
	}
	return vm
}

func (a *accumulator) damageProfile() *domain.DamageProfile {
	dp := &domain.DamageProfile{}
	total := a.physDamage + a.magicDamage + a.trueDamage
	if total > 0 {
		dp.DamageSplitPersonality.PhysicalPercent = fptr(round1(100.0 * a.physDamage / total))
		dp.DamageSplitPersonality.MagicPercent = fptr(round1(100.0 * a.magicDamage / total))
		dp.DamageSplitPersonality.TruePercent = fptr(round1(100.0 * a.trueDamage / total))
	}
	if a.gamesWithDmgTakenPct > 0 {
		dp.TankVsGlassCannon.DamageTakenOnTeamPercentageAvg = fptr(round1(a.sumDamageTakenPct / float64(a.gamesWithDmgTakenPct)))
	}
	if a.damageSelfMitigated > 0 {
		dp.TankVsGlassCannon.DamageSelfMitigatedTotal = fptr(round0(a.damageSelfMitigated))
	}
	if a.maxDPM > 0 {
		dp.DPSMonster.DamagePerMinutePeak = fptr(round0(a.maxDPM))
	}
	if a.gamesCount > 0 && a.sumDPM > 0 {
		dp.DPSMonster.DamagePerMinuteAvg = fptr(round0(a.sumDPM / float64(a.gamesCount)))
	}
	return dp
}

func (a *accumulator) botLaneSynergy(topDuos []string, riotIDs map[string]string) *domain.BotLaneSynergy {
	bls := &domain.BotLaneSynergy{TopDuos: []domain.DuoRecord{}}
	for _, puuid := range topDuos {
		agg := a.teammates[puuid]
		rec := domain.DuoRecord{
			TeammatePUUID:  puuid,
			TeammateRiotID: riotIDs[puuid],
			Games:          agg.games,
			Wins:           agg.winsTogether,
		}
		if agg.teamKills > 0 {
			rec.KillParticipation = fptr(round1(100.0 * float64(agg.killsAndAssists) / float64(agg.teamKills)))
		}
		if agg.games > 0 {
			rec.Winrate = fptr(round1(100.0 * float64(agg.winsTogether) / float64(agg.games)))
			if a.gamesCount > 0 {
				rec.PctOfTotalGames = fptr(round1(100.0 * float64(agg.games) / float64(a.gamesCount)))
			}
		}
		bls.TopDuos = append(bls.TopDuos, rec)
	}
	if len(bls.TopDuos) > 0 {
		bls.RideOrDie = &bls.TopDuos[0]
	}
	return bls
}

func (a *accumulator) queueStats(extra *domain.ExtraStats) {
	topCategory, topGames := "", 0
	for _, category := range sortedKeys(a.queueCounts) {
		if category == "other" {
			continue
		}
		if a.queueCounts[category] > topGames {
			topCategory, topGames = category, a.queueCounts[category]
		}
	}
	if topCategory != "" {
		extra.MostPopularQueueType = &domain.QueueTypeCount{Type: topCategory, Games: topGames}
	}

	dist := map[string]int{}
	for category, games := range a.queueCounts {
		if games > 0 {
			dist[category] = games
		}
	}
	if len(dist) > 0 {
		extra.QueueDistribution = dist
	}

	timeDist := map[string]int64{}
	for category, secs := range a.timeByQueue {
		if secs > 0 {
			timeDist[category] = secs
		}
	}
	if len(timeDist) > 0 {
		extra.TimeByQueue = timeDist
	}
}

func (a *accumulator) memeTitles() []string {
	titles := []string{}
	surrenderPct := 0.0
	visionPerMin := 0.0
	kpOverall := 100.0
	if a.gamesCount > 0 {
		surrenderPct = 100.0 * float64(a.gamesSurrender) / float64(a.gamesCount)
	}
	if a.gamesWithVision > 0 {
		visionPerMin = a.sumVisionPerMin / float64(a.gamesWithVision)
	}
	if a.teamKillsAllGames > 0 {
		kpOverall = 100.0 * float64(a.totalKills+a.totalAssists) / float64(a.teamKillsAllGames)
	}
	if a.turretPlates >= plateThiefMinPlates {
		titles = append(titles, "Plate Thief")
	}
	if surrenderPct >= earlyFFMinSurrenderPct {
		titles = append(titles, "Early FF Enjoyer")
	}
	if a.totalAssists > a.totalKills*2 && a.totalAssists > therapistMinAssists {
		titles = append(titles, "Solo Queue Therapist")
	}
	if a.maxTeamDamagePct >= mainCharMinDamagePct && kpOverall < mainCharMaxKillParticipation {
		titles = append(titles, "Main Character Syndrome")
	}
	if visionPerMin >= visionAddictMinPerMin {
		titles = append(titles, "Vision Ward Addict")
	}
	return titles
}

// mvpInsight picks the single archetype whose weighted score is
// highest, reading the already rounded stats from the built tree so
// the card numbers and the scoring inputs never disagree.
func (a *accumulator) mvpInsight(extra *domain.ExtraStats) *domain.MVPInsight {
	games := float64(a.gamesCount)

	totalWins := 0
	for _, c := range a.champions {
		totalWins += c.wins
	}
	winrate := 0.0
	if a.gamesCount > 0 {
		winrate = 100.0 * float64(totalWins) / games
	}
	kp := 0.0
	if a.teamKillsAllGames > 0 {
		kp = 100.0 * float64(a.totalKills+a.totalAssists) / float64(a.teamKillsAllGames)
	}

	pi := extra.PlaystyleIdentity
	gamesMostDmgPct := deref(pi.MainCharacterEnergy.GamesMostDamagePercent)
	highestDmgPct := deref(pi.MainCharacterEnergy.HighestTeamDamagePercentage)
	goldTopPct := deref(pi.GoldGoblinIndex.GamesTopGoldPercent)
	avgDeaths := deref(pi.RiskToleranceScore.AvgDeaths)
	fbPct := deref(extra.ClutchChaosMoments.FirstBloodMagnet.FirstBloodInvolvementPct)
	oneTrick := deref(extra.ChampionPersonality.OneTrickScore)
	visionPerMin := deref(extra.VisionMapIQ.VisionScorePerMinAvg)
	avgCS := deref(extra.AvgCSPerMin)

	controlWardsPG, platesPG, assistsPG, killsPG := 0.0, 0.0, 0.0, 0.0
	objectiveScore := 0.0
	if a.gamesCount > 0 {
		controlWardsPG = float64(a.controlWards) / games
		platesPG = float64(a.turretPlates) / games
		assistsPG = float64(a.totalAssists) / games
		killsPG = float64(a.totalKills) / games
		objectiveScore = float64(a.dragonsTaken)/games*8 +
			float64(a.baronsTaken)/games*25 +
			float64(a.turretsTaken)/games*5
	}
	avgTakedownsEarly := 0.0
	if a.gamesWithEarlyStats > 0 {
		avgTakedownsEarly = a.sumTakedownsEarly / float64(a.gamesWithEarlyStats)
	}
	saveAlly := a.counters["saveAllyFromDeath"]
	ratioAtoK := 0.0
	if killsPG > 0 {
		ratioAtoK = float64(a.totalAssists) / float64(a.totalKills)
	}
	uniqueChamps := len(a.champions)

	playmaker := minOf(kp/2, 30) + minOf(saveAlly*3, 20)
	if ratioAtoK >= 1.5 {
		playmaker += 30
	} else {
		playmaker += ratioAtoK * 15
	}
	consistent := 0.0
	if winrate >= 48 && winrate <= 55 {
		consistent += 25
	}
	if avgDeaths >= 3 && avgDeaths <= 7 {
		consistent += 20
	}
	if fbPct < 20 {
		consistent += 15
	}

	scores := map[string]float64{
		"Playmaker":        playmaker,
		"Carry":            gamesMostDmgPct*1.2 + highestDmgPct*0.5,
		"Farmer":           minOf(avgCS*6, 50) + goldTopPct*0.4 + platesPG*4,
		"Specialist":       oneTrick*0.7 + math.Max(50-float64(uniqueChamps), 0)*0.3,
		"Objective Player": objectiveScore + controlWardsPG*1.5 + visionPerMin*3,
		"Teamfighter":      gamesMostDmgPct*0.5 + kp*0.4 + minOf(assistsPG*2, 25),
		"Aggressive":       fbPct*1.2 + avgTakedownsEarly*6,
		"Consistent":       consistent,
	}

	archetype, topScore := "", math.Inf(-1)
	for _, name := range sortedKeys(scores) {
		if scores[name] > topScore {
			archetype, topScore = name, scores[name]
		}
	}
	if archetype == "" || topScore < archetypeMinScore {
		return nil
	}

	var stats []domain.StatLine
	switch archetype {
	case "Playmaker":
		if kp > 0 {
			stats = append(stats, domain.StatLine{Label: "Kill participation", Value: pctStr(kp)})
		}
		if killsPG > 0 {
			stats = append(stats, domain.StatLine{Label: "Assists per kill", Value: f1(ratioAtoK)})
		}
		if saveAlly > 0 {
			stats = append(stats, domain.StatLine{Label: "Allies saved from death", Value: strconv.Itoa(int(saveAlly))})
		}
	case "Carry":
		if gamesMostDmgPct > 0 {
			stats = append(stats, domain.StatLine{Label: "Games most damage on team", Value: pctStr(gamesMostDmgPct)})
		}
		if highestDmgPct > 0 {
			stats = append(stats, domain.StatLine{Label: "Peak team damage share", Value: pctStr(highestDmgPct)})
		}
	case "Farmer":
		if avgCS > 0 {
			stats = append(stats, domain.StatLine{Label: "CS per minute", Value: f1(avgCS)})
		}
		if goldTopPct > 0 {
			stats = append(stats, domain.StatLine{Label: "Games top gold on team", Value: pctStr(goldTopPct)})
		}
		if platesPG > 0 {
			stats = append(stats, domain.StatLine{Label: "Turret plates per game", Value: f1(platesPG)})
		}
	case "Specialist":
		if oneTrick > 0 {
			stats = append(stats, domain.StatLine{Label: "Most played champ share", Value: pctStr(oneTrick)})
		}
		if uniqueChamps > 0 {
			stats = append(stats, domain.StatLine{Label: "Champions played", Value: strconv.Itoa(uniqueChamps)})
		}
	case "Objective Player":
		stats = append(stats,
			domain.StatLine{Label: "Dragons taken", Value: strconv.Itoa(a.dragonsTaken)},
			domain.StatLine{Label: "Barons taken", Value: strconv.Itoa(a.baronsTaken)},
			domain.StatLine{Label: "Turrets taken", Value: strconv.Itoa(a.turretsTaken)},
		)
	case "Teamfighter":
		if kp > 0 {
			stats = append(stats, domain.StatLine{Label: "Kill participation", Value: pctStr(kp)})
		}
		if assistsPG > 0 {
			stats = append(stats, domain.StatLine{Label: "Assists per game", Value: f1(assistsPG)})
		}
		if gamesMostDmgPct > 0 {
			stats = append(stats, domain.StatLine{Label: "Games most damage", Value: pctStr(gamesMostDmgPct)})
		}
	case "Aggressive":
		if fbPct > 0 {
			stats = append(stats, domain.StatLine{Label: "First blood involvement", Value: pctStr(fbPct)})
		}
		if a.gamesWithEarlyStats > 0 {
			stats = append(stats, domain.StatLine{Label: "Early takedowns (first 10 min)", Value: f1(avgTakedownsEarly)})
		}
	case "Consistent":
		if a.gamesCount > 0 {
			stats = append(stats, domain.StatLine{Label: "Win rate", Value: pctStr(winrate)})
		}
		if avgDeaths > 0 {
			stats = append(stats, domain.StatLine{Label: "Deaths per game", Value: f1(avgDeaths)})
		}
		stats = append(stats, domain.StatLine{Label: "First blood rate", Value: pctStr(fbPct)})
	}

	return &domain.MVPInsight{Archetype: archetype, Stats: stats}
}

func (a *accumulator) topEnemies() []string {
	puuids := make([]string, 0, len(a.enemies))
	for puuid, count := range a.enemies {
		if count > 1 {
			puuids = append(puuids, puuid)
		}
	}
	sort.Slice(puuids, func(i, j int) bool {
		ci, cj := a.enemies[puuids[i]], a.enemies[puuids[j]]
		if ci != cj {
			return ci > cj
		}
		return puuids[i] < puuids[j]
	})
	if len(puuids) > topEnemyCount {
		puuids = puuids[:topEnemyCount]
	}
	return puuids
}

func (a *accumulator) favItems() []domain.ItemCount {
	ids := make([]int, 0, len(a.itemCounts))
	for id := range a.itemCounts {
		if !excludedItemIDs[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := a.itemCounts[ids[i]], a.itemCounts[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topItemCount {
		ids = ids[:topItemCount]
	}
	items := make([]domain.ItemCount, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.ItemCount{ItemID: id, Count: a.itemCounts[id]})
	}
	return items
}

func topBans(counts map[int]int) []domain.BanCount {
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := counts[ids[i]], counts[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topBanCount {
		ids = ids[:topBanCount]
	}
	bans := make([]domain.BanCount, 0, len(ids))
	for _, id := range ids {
		bans = append(bans, domain.BanCount{ChampionID: id, Count: counts[id]})
	}
	return bans
}

// topByGamesThenWins ranks teammates by games desc then wins together
// desc, puuid asc as the final tiebreak. minGames of 1 keeps only
// repeat teammates.
func topByGamesThenWins(aggs map[string]*teammateAgg, minGames, limit int) []string {
	puuids := make([]string, 0, len(aggs))
	for puuid, agg := range aggs {
		if agg.games > minGames {
			puuids = append(puuids, puuid)
		}
	}
	sort.Slice(puuids, func(i, j int) bool {
		ai, aj := aggs[puuids[i]], aggs[puuids[j]]
		if ai.games != aj.games {
			return ai.games > aj.games
		}
		if ai.winsTogether != aj.winsTogether {
			return ai.winsTogether > aj.winsTogether
		}
		return puuids[i] < puuids[j]
	})
	if len(puuids) > limit {
		puuids = puuids[:limit]
	}
	return puuids
}

func collectPUUIDs(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, puuid := range list {
			if !seen[puuid] {
				seen[puuid] = true
				out = append(out, puuid)
			}
		}
	}
	return out
}

// displayName prefers the riot id, then an abbreviated puuid tail.
func displayName(riotID, puuid string) string {
	if riotID != "" {
		return riotID
	}
	if len(puuid) >= 6 {
		return "…" + puuid[len(puuid)-6:]
	}
	return "Unknown"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round0(v float64) float64 { return math.Round(v) }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func minOf(a, b float64) float64 { return math.Min(a, b) }

func pctStr(v float64) string { return fmt.Sprintf("%.1f%%", round1(v)) }
func f1(v float64) string     { return strconv.FormatFloat(round1(v), 'f', 1, 64) }
