package models

import (
	"time"

	"gorm.io/gorm"
)

type Season struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	KickerID  uint           `gorm:"not null;uniqueIndex:idx_seasons_kicker_number" json:"kicker_id"`
	Number    int            `gorm:"not null;uniqueIndex:idx_seasons_kicker_number" json:"number"`
	Name      *string        `gorm:"size:255" json:"name"`
	StartDate time.Time      `gorm:"not null" json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	IsActive  bool           `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Season) TableName() string {
	return "seasons"
}

type StartSeasonRequest struct {
	Name string `json:"name,omitempty" binding:"max=255"`
}

// SeasonRanking mirrors a player's rating fields, scoped to one season.
type SeasonRanking struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SeasonID   uint      `gorm:"not null;uniqueIndex:idx_season_rankings_season_player" json:"season_id"`
	PlayerID   uint      `gorm:"not null;uniqueIndex:idx_season_rankings_season_player;index" json:"player_id"`
	Mmr        int       `gorm:"not null;default:1000" json:"mmr"`
	Mmr2on2    int       `gorm:"column:mmr2on2;not null;default:1000" json:"mmr2on2"`
	Wins       int       `gorm:"not null;default:0" json:"wins"`
	Losses     int       `gorm:"not null;default:0" json:"losses"`
	Wins2on2   int       `gorm:"column:wins2on2;not null;default:0" json:"wins2on2"`
	Losses2on2 int       `gorm:"column:losses2on2;not null;default:0" json:"losses2on2"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

func (SeasonRanking) TableName() string {
	return "season_rankings"
}

func (r *SeasonRanking) Rating(mode MatchMode) int {
	if mode == ModeTwoOnTwo {
		return r.Mmr2on2
	}
	return r.Mmr
}
