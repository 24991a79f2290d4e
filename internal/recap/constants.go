package recap

// Trinket/ward items and biscuits excluded from top items built:
// Stealth Ward, Farsight Alteration, Oracle Alteration, Scrying Orb,
// Sweeping Lens, Total Biscuit of Everlasting Will, Health Potion.
var excludedItemIDs = map[int]bool{
	3340: true, 3363: true, 3364: true, 3341: true, 3342: true, 2055: true, 2010: true,
}

// Champions commonly identified as late-game scalers (championId):
// Kayle, Kassadin, Veigar, Nasus, Vladimir, Sion, Ornn, Kindred,
// Thresh, Jax, Ryze, Azir, AurelionSol, KogMaw, Twitch, Vayne, Anivia,
// Cassiopeia, ChoGath.
var lateScalingChampionIDs = map[int]bool{
	10: true, 38: true, 45: true, 75: true, 8: true, 14: true, 516: true,
	203: true, 412: true, 24: true, 13: true, 268: true, 136: true,
	96: true, 29: true, 67: true, 34: true, 69: true, 31: true,
}

// Allow-listed combat counters. timeCCingOthers and totalTimeCCDealt
// sit at the participant root; the rest live in challenges.
var extraStatKeys = []string{
	"skillshotsHit", "skillshotsDodged", "outnumberedKills", "soloKills",
	"saveAllyFromDeath", "timeCCingOthers", "totalTimeCCDealt",
	"scuttleCrabKills", "buffsStolen",
}

// queueId -> category for the "most popular queue type" card.
var queueToCategory = map[int]string{
	420: "ranked_solo",
	440: "ranked_flex",
	400: "normal_draft",
	430: "blind_pick",
	450: "aram",
	700: "clash",
	720: "clash",
	0:   "custom",
}

var urfRGMQueueIDs = map[int]bool{
	76: true, 78: true, 900: true, 1010: true, 1900: true, 1400: true,
	1300: true, 1020: true, 325: true, 910: true, 920: true, 940: true,
	980: true, 990: true, 1000: true, 1700: true, 1710: true,
}

const (
	// Minimum sample sizes for champion win-rate cards.
	minGamesForWinrate = 5
	whyPickMinGames    = 3

	// The payload may not return timeSpentDead; estimate per death.
	timeSpentDeadPerDeathSec = 25.0

	// Best/worst game composite score weights.
	bestGameKDAWeight     = 3.0
	bestGameDamageDivisor = 3000.0
	bestGameWinBonus      = 15.0
	worstGameDeathsWeight = 3.0
	worstGameLossBonus    = 15.0

	// Empirically chosen meme-title thresholds.
	plateThiefMinPlates         = 50
	earlyFFMinSurrenderPct      = 30.0
	therapistMinAssists         = 500
	mainCharMinDamagePct        = 35.0
	mainCharMaxKillParticipation = 50.0
	visionAddictMinPerMin       = 2.0

	// An archetype only sticks when its weighted score clears this.
	archetypeMinScore = 15.0

	// How many entries each leaderboard keeps.
	topDuoCount      = 5
	topTeammateCount = 10
	topEnemyCount    = 10
	topItemCount     = 5
	topBanCount      = 5
	topChampionCount = 6
)
