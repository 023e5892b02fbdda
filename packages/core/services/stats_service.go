package services

import (
	"context"
	"time"

	"kicker-api/packages/core/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db: db,
	}
}

func (s *StatsService) GetStats(ctx context.Context, kickerID uint) (*models.Stats, error) {
	var kicker models.Kicker
	if err := s.db.WithContext(ctx).First(&kicker, kickerID).Error; err != nil {
		return nil, lookup("load kicker", "kicker", err)
	}

	stats := &models.Stats{KickerID: kickerID}

	now := time.Now()
	last7DaysStart := now.AddDate(0, 0, -7)
	previous7DaysStart := now.AddDate(0, 0, -14)

	g, ctx := errgroup.WithContext(ctx)

	matches := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Match{}).Where("kicker_id = ?", kickerID)
	}

	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Player{}).Where("kicker_id = ?", kickerID).Count(&stats.TotalPlayers).Error
	})
	g.Go(func() error {
		return matches().Count(&stats.TotalMatches).Error
	})
	g.Go(func() error {
		return matches().Where("status = ?", models.MatchStatusEnded).Count(&stats.EndedMatches).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Goal{}).
			Joins("JOIN matches ON matches.id = goals.match_id").
			Where("matches.kicker_id = ? AND matches.deleted_at IS NULL", kickerID).
			Count(&stats.TotalGoals).Error
	})
	g.Go(func() error {
		return matches().Where("started_at >= ?", last7DaysStart).Count(&stats.MatchesLast7Days).Error
	})
	g.Go(func() error {
		return matches().
			Where("started_at >= ? AND started_at < ?", previous7DaysStart, last7DaysStart).
			Count(&stats.MatchesPrevious7Days).Error
	})

	if err := g.Wait(); err != nil {
		return nil, persistence("load stats", err)
	}

	return stats, nil
}
