package services

import (
	"context"

	"kicker-api/packages/core/models"

	"gorm.io/gorm"
)

type MmrHistoryService struct {
	db *gorm.DB
}

func NewMmrHistoryService(db *gorm.DB) *MmrHistoryService {
	return &MmrHistoryService{
		db: db,
	}
}

func (s *MmrHistoryService) GetRecentChanges(ctx context.Context, kickerID uint, limit int) ([]models.MmrHistory, error) {
	var history []models.MmrHistory

	result := s.db.WithContext(ctx).
		Joins("JOIN players ON players.id = mmr_history.player_id").
		Where("players.kicker_id = ?", kickerID).
		Order("mmr_history.created_at DESC").
		Order("mmr_history.id DESC").
		Limit(limit).
		Preload("Player").
		Find(&history)

	if result.Error != nil {
		return nil, persistence("load recent mmr changes", result.Error)
	}

	return history, nil
}
