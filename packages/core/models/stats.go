package models

type Stats struct {
	KickerID             uint  `json:"kicker_id"`
	TotalPlayers         int64 `json:"total_players"`
	TotalMatches         int64 `json:"total_matches"`
	EndedMatches         int64 `json:"ended_matches"`
	TotalGoals           int64 `json:"total_goals"`
	MatchesLast7Days     int64 `json:"matches_last_7_days"`
	MatchesPrevious7Days int64 `json:"matches_previous_7_days"`
}
