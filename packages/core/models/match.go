package models

import (
	"time"

	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchStatusActive MatchStatus = "active"
	MatchStatusEnded  MatchStatus = "ended"
)

type MatchMode string

const (
	ModeOneOnOne MatchMode = "1on1"
	ModeTwoOnTwo MatchMode = "2on2"
)

func (m MatchMode) Valid() bool {
	return m == ModeOneOnOne || m == ModeTwoOnTwo
}

// Team identifies a side of the table. Team one is player1 (+player3),
// team two is player2 (+player4).
type Team int

const (
	TeamOne Team = 1
	TeamTwo Team = 2
)

func (t Team) Opponent() Team {
	if t == TeamOne {
		return TeamTwo
	}
	return TeamOne
}

type Match struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	KickerID  uint        `gorm:"not null;index" json:"kicker_id"`
	SeasonID  *uint       `gorm:"index" json:"season_id"`
	Player1ID uint        `gorm:"not null;index" json:"player1_id"`
	Player2ID uint        `gorm:"not null;index" json:"player2_id"`
	Player3ID *uint       `gorm:"index" json:"player3_id"`
	Player4ID *uint       `gorm:"index" json:"player4_id"`
	Score1    int         `gorm:"not null;default:0" json:"score1"`
	Score2    int         `gorm:"not null;default:0" json:"score2"`
	Status    MatchStatus `gorm:"size:20;not null;default:active" json:"status"`
	// MmrChange is team one's rating delta; team two received its negation.
	MmrChange *int           `json:"mmr_change"`
	StartedAt time.Time      `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Player1 *Player `gorm:"foreignKey:Player1ID;references:ID" json:"player1,omitempty"`
	Player2 *Player `gorm:"foreignKey:Player2ID;references:ID" json:"player2,omitempty"`
	Player3 *Player `gorm:"foreignKey:Player3ID;references:ID" json:"player3,omitempty"`
	Player4 *Player `gorm:"foreignKey:Player4ID;references:ID" json:"player4,omitempty"`
	Season  *Season `gorm:"foreignKey:SeasonID;references:ID" json:"season,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

func (m *Match) Mode() MatchMode {
	if m.Player3ID != nil && m.Player4ID != nil {
		return ModeTwoOnTwo
	}
	return ModeOneOnOne
}

func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}

// TeamPlayerIDs returns the ids of the players on the given side.
func (m *Match) TeamPlayerIDs(team Team) []uint {
	if team == TeamOne {
		if m.Player3ID != nil {
			return []uint{m.Player1ID, *m.Player3ID}
		}
		return []uint{m.Player1ID}
	}
	if m.Player4ID != nil {
		return []uint{m.Player2ID, *m.Player4ID}
	}
	return []uint{m.Player2ID}
}

func (m *Match) PlayerIDs() []uint {
	return append(m.TeamPlayerIDs(TeamOne), m.TeamPlayerIDs(TeamTwo)...)
}

// TeamOf reports which side the player is on.
func (m *Match) TeamOf(playerID uint) (Team, bool) {
	for _, id := range m.TeamPlayerIDs(TeamOne) {
		if id == playerID {
			return TeamOne, true
		}
	}
	for _, id := range m.TeamPlayerIDs(TeamTwo) {
		if id == playerID {
			return TeamTwo, true
		}
	}
	return 0, false
}

// Winner returns the side with the higher score. ok is false on a tie.
func (m *Match) Winner() (team Team, ok bool) {
	switch {
	case m.Score1 > m.Score2:
		return TeamOne, true
	case m.Score2 > m.Score1:
		return TeamTwo, true
	}
	return 0, false
}

type PaginatedMatchResponse struct {
	Data       []Match `json:"data"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

type CreateMatchRequest struct {
	Player1ID uint  `json:"player1_id" binding:"required"`
	Player2ID uint  `json:"player2_id" binding:"required"`
	Player3ID *uint `json:"player3_id,omitempty"`
	Player4ID *uint `json:"player4_id,omitempty"`
}

type ScoreGoalRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
	OwnGoal  bool `json:"own_goal"`
}

// MaxFinalScore bounds a manually entered score.
const MaxFinalScore = 99

// EndMatchRequest carries an optional manually entered final score. When
// both fields are nil the score accumulated from the goal log is used.
type EndMatchRequest struct {
	Score1 *int `json:"score1,omitempty" binding:"omitempty,min=0,max=99"`
	Score2 *int `json:"score2,omitempty" binding:"omitempty,min=0,max=99"`
}
