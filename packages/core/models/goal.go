package models

import "time"

type GoalType string

const (
	GoalStandard GoalType = "standard"
	GoalOwn      GoalType = "own_goal"
	// GoalGenerated reconciles the log with a manually entered final score.
	GoalGenerated GoalType = "generated"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalStandard, GoalOwn, GoalGenerated:
		return true
	}
	return false
}

// Goal is an append-only entry in a match's goal log. Team is the side of
// the scoring player; for generated goals it is the side credited.
type Goal struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID   uint      `gorm:"not null;uniqueIndex:idx_goals_match_sequence" json:"match_id"`
	Sequence  int       `gorm:"not null;uniqueIndex:idx_goals_match_sequence" json:"sequence"`
	PlayerID  *uint     `gorm:"index" json:"player_id"`
	Team      Team      `gorm:"not null" json:"team"`
	Type      GoalType  `gorm:"size:20;not null;default:standard" json:"type"`
	Score1    int       `gorm:"not null" json:"score1"`
	Score2    int       `gorm:"not null" json:"score2"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

func (Goal) TableName() string {
	return "goals"
}

// CreditedTeam is the side whose score the goal counts for.
func (g *Goal) CreditedTeam() Team {
	if g.Type == GoalOwn {
		return g.Team.Opponent()
	}
	return g.Team
}
