package models

import (
	"time"

	"gorm.io/gorm"
)

// Kicker is an isolated group of players, matches and seasons.
type Kicker struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Players []Player `gorm:"foreignKey:KickerID" json:"players,omitempty"`
	Seasons []Season `gorm:"foreignKey:KickerID" json:"seasons,omitempty"`
}

func (Kicker) TableName() string {
	return "kickers"
}

type CreateKickerRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}
