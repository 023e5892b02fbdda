package models

import (
	"time"

	"gorm.io/gorm"
)

// Player belongs to exactly one kicker. Ratings and records are only ever
// written by the end-match path; Version guards those writes.
type Player struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	KickerID   uint           `gorm:"not null;index;uniqueIndex:idx_players_kicker_name" json:"kicker_id"`
	Name       string         `gorm:"size:255;not null;uniqueIndex:idx_players_kicker_name" json:"name"`
	Mmr        int            `gorm:"not null;default:1000" json:"mmr"`
	Mmr2on2    int            `gorm:"column:mmr2on2;not null;default:1000" json:"mmr2on2"`
	Wins       int            `gorm:"not null;default:0" json:"wins"`
	Losses     int            `gorm:"not null;default:0" json:"losses"`
	Wins2on2   int            `gorm:"column:wins2on2;not null;default:0" json:"wins2on2"`
	Losses2on2 int            `gorm:"column:losses2on2;not null;default:0" json:"losses2on2"`
	Version    int            `gorm:"not null;default:0" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Kicker     *Kicker      `gorm:"foreignKey:KickerID;references:ID" json:"kicker,omitempty"`
	MmrHistory []MmrHistory `gorm:"foreignKey:PlayerID" json:"mmr_history,omitempty"`
}

func (Player) TableName() string {
	return "players"
}

// Rating returns the player's all-time rating for the given mode.
func (p *Player) Rating(mode MatchMode) int {
	if mode == ModeTwoOnTwo {
		return p.Mmr2on2
	}
	return p.Mmr
}

type CreatePlayerRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type PaginatedPlayersResponse struct {
	Data       []Player `json:"data"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}
