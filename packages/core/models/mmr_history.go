package models

import (
	"time"

	"gorm.io/gorm"
)

type MmrHistory struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID       uint           `gorm:"not null;index" json:"player_id"`
	MatchID        uint           `gorm:"not null;index" json:"match_id"`
	SeasonID       *uint          `gorm:"index" json:"season_id"`
	Mode           MatchMode      `gorm:"size:10;not null" json:"mode"`
	MmrBefore      int            `gorm:"not null" json:"mmr_before"`
	MmrAfter       int            `gorm:"not null" json:"mmr_after"`
	MmrChange      int            `gorm:"not null" json:"mmr_change"`
	OpponentRating float64        `gorm:"not null" json:"opponent_rating"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Player *Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
	Match  *Match  `gorm:"foreignKey:MatchID;references:ID" json:"match,omitempty"`
}

func (MmrHistory) TableName() string {
	return "mmr_history"
}
