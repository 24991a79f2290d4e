package domain

import "time"

// RecapYearStat is the full analytics bundle for one (player, year),
// upserted wholesale by the aggregation stage. JSON tags on the nested
// types match the payload the recap frontend consumes.
type RecapYearStat struct {
	PlayerPUUID      string
	Year             int
	TotalPings       int64
	PingBreakdown    map[string]int64
	TotalGameSeconds int64
	TotalGoldSpent   int64
	TotalKills       int64
	TotalDeaths      int64
	TotalAssists     int64
	FavItems         []ItemCount
	OurTeamBans      []BanCount
	EnemyTeamBans    []BanCount
	MostPlayedWith   []TeammateStat
	MostBeatUs       []EnemyStat
	ExtraStats       ExtraStats
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ItemCount struct {
	ItemID int `json:"item_id"`
	Count  int `json:"count"`
}

type BanCount struct {
	ChampionID int `json:"champion_id"`
	Count      int `json:"count"`
}

type TeammateStat struct {
	TeammatePUUID  string `json:"teammate_puuid"`
	TeammateRiotID string `json:"teammate_riot_id,omitempty"`
	TeammateName   string `json:"teammate_name"`
	Games          int    `json:"games"`
	WinsTogether   int    `json:"wins_together"`
}

type EnemyStat struct {
	EnemyPUUID  string `json:"enemy_puuid"`
	EnemyRiotID string `json:"enemy_riot_id,omitempty"`
	EnemyName   string `json:"enemy_name"`
	TimesBeatUs int    `json:"times_beat_us"`
}

// ExtraStats is the derived analytics tree. Nil pointers mean "no
// qualifying games" and serialize as absent, never as zero.
type ExtraStats struct {
	TotalLastHits         int64    `json:"totalLastHits"`
	AvgCSPerMin           *float64 `json:"avgCsPerMin"`
	GamesCount            int      `json:"gamesCount"`
	UniqueChampionsPlayed int      `json:"uniqueChampionsPlayed"`

	// Allow-listed combat counters summed over the year
	// (skillshotsHit, soloKills, timeCCingOthers, ...).
	Counters map[string]float64 `json:"counters,omitempty"`

	PlaystyleIdentity    *PlaystyleIdentity   `json:"playstyleIdentity,omitempty"`
	ClutchChaosMoments   *ClutchChaosMoments  `json:"clutchChaosMoments,omitempty"`
	EconomyScaling       *EconomyScaling      `json:"economyScaling,omitempty"`
	ChampionPersonality  *ChampionPersonality `json:"championPersonality,omitempty"`
	TopChampions         []ChampionSummary    `json:"topChampions,omitempty"`
	BestGame             *BestGame            `json:"bestGame,omitempty"`
	WorstGame            *WorstGame           `json:"worstGame,omitempty"`
	WinrateInsights      *WinrateInsights     `json:"winrateInsights,omitempty"`
	Streaks              *Streaks             `json:"streaks,omitempty"`
	TimePlayedHeatmap    map[string]int       `json:"timePlayedHeatmap,omitempty"`
	VisionMapIQ          *VisionMapIQ         `json:"visionMapIq,omitempty"`
	DamageProfile        *DamageProfile       `json:"damageProfile,omitempty"`
	BotLaneSynergy       *BotLaneSynergy      `json:"botLaneSynergy,omitempty"`
	MostPopularQueueType *QueueTypeCount      `json:"mostPopularQueueType,omitempty"`
	QueueDistribution    map[string]int       `json:"queueDistribution,omitempty"`
	TimeByQueue          map[string]int64     `json:"timeByQueue,omitempty"`
	MemeTitles           []string             `json:"memeTitles"`
	MVPInsight           *MVPInsight          `json:"mvpInsight,omitempty"`
}

type PlaystyleIdentity struct {
	MainCharacterEnergy MainCharacterEnergy `json:"mainCharacterEnergy"`
	GoldGoblinIndex     GoldGoblinIndex     `json:"goldGoblinIndex"`
	RiskToleranceScore  RiskToleranceScore  `json:"riskToleranceScore"`
	EarlyGameDemon      EarlyGameDemon      `json:"earlyGameDemon"`
}

type MainCharacterEnergy struct {
	HighestTeamDamagePercentage *float64 `json:"highestTeamDamagePercentage"`
	GamesMostDamageOnTeam       *int     `json:"gamesMostDamageOnTeam"`
	GamesCount                  int      `json:"gamesCount"`
	GamesMostDamagePercent      *float64 `json:"gamesMostDamagePercent"`
}

type GoldGoblinIndex struct {
	AvgGoldPerMin       *float64 `json:"avgGoldPerMin"`
	GamesTopGoldOnTeam  *int     `json:"gamesTopGoldOnTeam"`
	GamesTopGoldPercent *float64 `json:"gamesTopGoldPercent"`
}

type RiskToleranceScore struct {
	AvgDeaths          *float64 `json:"avgDeaths"`
	GamesWithZeroDeath int      `json:"gamesWithZeroDeaths"`
	AvgTimeSpentDead   *float64 `json:"avgTimeSpentDead"`
}

type EarlyGameDemon struct {
	AvgTakedownsFirstXMinutes   *float64 `json:"avgTakedownsFirstXMinutes"`
	AvgLaneMinionsFirst10Min    *float64 `json:"avgLaneMinionsFirst10Minutes"`
	GamesFirstBloodInvolvement  int      `json:"gamesFirstBloodInvolvement"`
	FirstBloodInvolvementPct    *float64 `json:"firstBloodInvolvementPercent"`
}

type ClutchChaosMoments struct {
	OneHPSurvivor           OneHPSurvivor      `json:"oneHpSurvivor"`
	OutnumberedFighter      OutnumberedFighter `json:"outnumberedFighter"`
	ObjectiveThiefPotential ObjectiveThief     `json:"objectiveThiefPotential"`
	FirstBloodMagnet        FirstBloodMagnet   `json:"firstBloodMagnet"`
	SurrenderStats          SurrenderStats     `json:"surrenderStats"`
}

type OneHPSurvivor struct {
	SurvivedSingleDigitHPCount int `json:"survivedSingleDigitHpCount"`
}

type OutnumberedFighter struct {
	OutnumberedKills int `json:"outnumberedKills"`
}

type ObjectiveThief struct {
	ObjectivesStolenPlusAssists int `json:"objectivesStolenPlusAssists"`
}

type FirstBloodMagnet struct {
	GamesFirstBloodInvolvement int      `json:"gamesFirstBloodInvolvement"`
	FirstBloodInvolvementPct   *float64 `json:"firstBloodInvolvementPercent"`
}

type SurrenderStats struct {
	GamesEndedInSurrender   int      `json:"gamesEndedInSurrender"`
	SurrenderGamesPercent   *float64 `json:"surrenderGamesPercent"`
	WinsInSurrenderGames    int      `json:"winsInSurrenderGames"`
	WinrateInSurrenderGames *float64 `json:"winrateInSurrenderGames"`
}

type EconomyScaling struct {
	AvgGameDurationSeconds *float64            `json:"avgGameDurationSeconds"`
	WinrateByBucket        map[string]*float64 `json:"winrateByBucket"`
	GamesByBucket          map[string]int      `json:"gamesByBucket"`
	ComebackMerchant       ComebackMerchant    `json:"comebackMerchant"`
	ScalingPickAddict      ScalingPickAddict   `json:"scalingPickAddict"`
}

type ComebackMerchant struct {
	WinsWithNegativeGpmVsOpponent int `json:"winsWithNegativeGpmVsOpponent"`
	WinsAfterEarlyGoldDeficit     int `json:"winsAfterEarlyGoldDeficit"`
}

type ScalingPickAddict struct {
	GamesOnScalingChamps int      `json:"gamesOnScalingChamps"`
	ScalingChampsPercent *float64 `json:"scalingChampsPercent"`
}

type ChampionSummary struct {
	ChampionID int          `json:"championId"`
	Games      int          `json:"games"`
	Wins       int          `json:"wins"`
	Winrate    *float64     `json:"winrate"`
	KDA        *ChampionKDA `json:"kda,omitempty"`
}

type ChampionKDA struct {
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
}

type ChampionPersonality struct {
	MostPlayedChampion      *ChampionSummary `json:"mostPlayedChampion"`
	HighestWinrateChampion  *ChampionSummary `json:"highestWinrateChampion"`
	WhyDoYouKeepPickingThis *ChampionSummary `json:"whyDoYouKeepPickingThis"`
	OneTrickScore           *float64         `json:"oneTrickScore"`
}

type WinrateInsights struct {
	BestChampion  *ChampionSummary `json:"bestChampion"`
	WorstChampion *ChampionSummary `json:"worstChampion"`
}

type BestGame struct {
	Kills           int `json:"kills"`
	Deaths          int `json:"deaths"`
	Assists         int `json:"assists"`
	Damage          int `json:"damage"`
	DurationSeconds int `json:"durationSeconds"`
	ChampionID      int `json:"championId"`
}

type WorstGame struct {
	Kills      int `json:"kills"`
	Deaths     int `json:"deaths"`
	Assists    int `json:"assists"`
	ChampionID int `json:"championId"`
}

type Streaks struct {
	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
}

type VisionMapIQ struct {
	VisionScorePerMinAvg     *float64          `json:"visionScorePerMinAvg"`
	ControlWardsPlacedPerGame *float64         `json:"controlWardsPlacedPerGame"`
	WardTakedownsPerGame     *float64          `json:"wardTakedownsPerGame"`
	MapAwarenessScore        MapAwarenessScore `json:"mapAwarenessScore"`
}

type MapAwarenessScore struct {
	EnemyMissingPingsUsed             int      `json:"enemyMissingPingsUsed"`
	VisionScoreAdvantageLaneOpponent  *float64 `json:"visionScoreAdvantageLaneOpponentAvg"`
}

type DamageProfile struct {
	DamageSplitPersonality DamageSplit      `json:"damageSplitPersonality"`
	TankVsGlassCannon      TankVsGlassCannon `json:"tankVsGlassCannon"`
	DPSMonster             DPSMonster       `json:"dpsMonster"`
}

type DamageSplit struct {
	PhysicalPercent *float64 `json:"physicalPercent"`
	MagicPercent    *float64 `json:"magicPercent"`
	TruePercent     *float64 `json:"truePercent"`
}

type TankVsGlassCannon struct {
	DamageTakenOnTeamPercentageAvg *float64 `json:"damageTakenOnTeamPercentageAvg"`
	DamageSelfMitigatedTotal       *float64 `json:"damageSelfMitigatedTotal"`
}

type DPSMonster struct {
	DamagePerMinutePeak *float64 `json:"damagePerMinutePeak"`
	DamagePerMinuteAvg  *float64 `json:"damagePerMinuteAvg"`
}

type DuoRecord struct {
	TeammatePUUID     string   `json:"teammatePuuid"`
	TeammateRiotID    string   `json:"teammateRiotId,omitempty"`
	Games             int      `json:"games"`
	Wins              int      `json:"wins"`
	Winrate           *float64 `json:"winrate"`
	KillParticipation *float64 `json:"killParticipation"`
	PctOfTotalGames   *float64 `json:"pctOfTotalGames"`
}

type BotLaneSynergy struct {
	TopDuos   []DuoRecord `json:"topDuos"`
	RideOrDie *DuoRecord  `json:"rideOrDie"`
}

type QueueTypeCount struct {
	Type  string `json:"type"`
	Games int    `json:"games"`
}

type MVPInsight struct {
	Archetype string     `json:"archetype"`
	Stats     []StatLine `json:"stats"`
}

type StatLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
