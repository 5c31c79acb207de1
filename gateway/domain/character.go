package domain

import "time"

// RankRow é a primeira linha da lista `ranks` devolvida pelo ranking.
// Campos ausentes no JSON ficam com valor zero.
type RankRow struct {
	CharacterID     int64
	CharacterName   string
	CharacterImgURL string
	Exp             int64
	Gap             int64
	JobName         string
	Level           int
	Rank            int64
	StartRank       int64
	WorldID         int
	IsSearchTarget  bool
	LegionLevel     int
	RaidPower       int64
	TierID          int
	Score           int64
}

// CharacterData é o resultado já mesclado (overall + legion) com formato estável.
type CharacterData struct {
	CharacterID     int64  `json:"characterId"`
	WorldID         int    `json:"worldId"`
	CharacterName   string `json:"characterName"`
	Level           int    `json:"level"`
	Exp             int64  `json:"exp"`
	JobName         string `json:"jobName"`
	CharacterImgURL string `json:"characterImgUrl"`

	Rank           int64 `json:"rank"`
	Gap            int64 `json:"gap"`
	StartRank      int64 `json:"startRank"`
	IsSearchTarget bool  `json:"isSearchTarget"`

	// LegionRank e LegionGap só existem quando há linha de legion.
	LegionRank  *int64 `json:"legionRank"`
	LegionGap   *int64 `json:"legionGap"`
	LegionLevel int    `json:"legionLevel"`
	RaidPower   int64  `json:"raidPower"`
	TierID      int    `json:"tierId"`
	Score       int64  `json:"score"`

	FetchedAt time.Time `json:"fetchedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MergeRows monta o CharacterData a partir da linha overall e, se existir, da linha legion.
// Sem linha de legion, legionLevel/raidPower/tierId/score vêm da própria linha overall.
func MergeRows(overall RankRow, legion *RankRow, fetchedAt time.Time) CharacterData {
	d := CharacterData{
		CharacterID:     overall.CharacterID,
		WorldID:         overall.WorldID,
		CharacterName:   overall.CharacterName,
		Level:           overall.Level,
		Exp:             overall.Exp,
		JobName:         overall.JobName,
		CharacterImgURL: overall.CharacterImgURL,
		Rank:            overall.Rank,
		Gap:             overall.Gap,
		StartRank:       overall.StartRank,
		IsSearchTarget:  overall.IsSearchTarget,
		LegionLevel:     overall.LegionLevel,
		RaidPower:       overall.RaidPower,
		TierID:          overall.TierID,
		Score:           overall.Score,
		FetchedAt:       fetchedAt,
		ExpiresAt:       NextUTCMidnight(fetchedAt),
	}
	if legion == nil {
		return d
	}

	rank, gap := legion.Rank, legion.Gap
	d.LegionRank = &rank
	d.LegionGap = &gap
	d.LegionLevel = legion.LegionLevel
	d.RaidPower = legion.RaidPower
	d.TierID = legion.TierID
	d.Score = legion.Score
	return d
}
