package services

import (
	"context"
	"strings"
	"time"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeasonService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSeasonService(db *gorm.DB, logger *zap.Logger) *SeasonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeasonService{db: db, logger: logger}
}

func newSeasonRanking(seasonID, playerID uint) models.SeasonRanking {
	return models.SeasonRanking{
		SeasonID: seasonID,
		PlayerID: playerID,
		Mmr:      utils.DefaultRating,
		Mmr2on2:  utils.DefaultRating,
	}
}

// StartSeason opens the next season and seeds a ranking row at the default
// rating for every player the kicker has at this moment.
func (s *SeasonService) StartSeason(ctx context.Context, kickerID uint, name string) (*models.Season, error) {
	var season models.Season

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var kicker models.Kicker
		if err := tx.First(&kicker, kickerID).Error; err != nil {
			return lookup("load kicker", "kicker", err)
		}

		current, err := activeSeason(tx, kickerID)
		if err != nil {
			return err
		}
		if current != nil {
			return conflict("there is already an active season")
		}

		var lastNumber int
		if err := tx.Model(&models.Season{}).Unscoped().
			Where("kicker_id = ?", kickerID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&lastNumber).Error; err != nil {
			return persistence("load season number", err)
		}

		season = models.Season{
			KickerID:  kickerID,
			Number:    lastNumber + 1,
			StartDate: time.Now(),
			IsActive:  true,
		}
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			season.Name = &trimmed
		}
		if err := tx.Create(&season).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("there is already an active season")
			}
			return persistence("create season", err)
		}

		var playerIDs []uint
		if err := tx.Model(&models.Player{}).Where("kicker_id = ?", kickerID).Pluck("id", &playerIDs).Error; err != nil {
			return persistence("load players", err)
		}
		if len(playerIDs) == 0 {
			return nil
		}
		rankings := make([]models.SeasonRanking, 0, len(playerIDs))
		for _, id := range playerIDs {
			rankings = append(rankings, newSeasonRanking(season.ID, id))
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&rankings, 100).Error; err != nil {
			return persistence("seed season rankings", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("season started",
		zap.Uint("kicker_id", kickerID),
		zap.Uint("season_id", season.ID),
		zap.Int("number", season.Number))
	return &season, nil
}

// EndSeason closes the active season. Its rankings are frozen from then on.
func (s *SeasonService) EndSeason(ctx context.Context, kickerID uint) (*models.Season, error) {
	var season *models.Season

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		season, err = activeSeason(tx.Clauses(clause.Locking{Strength: "UPDATE"}), kickerID)
		if err != nil {
			return err
		}
		if season == nil {
			return conflict("there is no active season")
		}

		now := time.Now()
		if err := tx.Model(&models.Season{}).Where("id = ?", season.ID).Updates(map[string]interface{}{
			"is_active": false,
			"end_date":  now,
		}).Error; err != nil {
			return persistence("end season", err)
		}
		season.IsActive = false
		season.EndDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("season ended", zap.Uint("kicker_id", kickerID), zap.Uint("season_id", season.ID))
	return season, nil
}

func (s *SeasonService) GetActiveSeason(ctx context.Context, kickerID uint) (*models.Season, error) {
	season, err := activeSeason(s.db.WithContext(ctx), kickerID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, notFound("active season")
	}
	return season, nil
}

func (s *SeasonService) GetSeasons(ctx context.Context, kickerID uint) ([]models.Season, error) {
	var seasons []models.Season
	if err := s.db.WithContext(ctx).Where("kicker_id = ?", kickerID).Order("number DESC").Find(&seasons).Error; err != nil {
		return nil, persistence("load seasons", err)
	}
	return seasons, nil
}

func (s *SeasonService) GetSeasonRankings(ctx context.Context, seasonID uint, mode models.MatchMode) ([]models.SeasonRanking, error) {
	var season models.Season
	if err := s.db.WithContext(ctx).First(&season, seasonID).Error; err != nil {
		return nil, lookup("load season", "season", err)
	}

	var rankings []models.SeasonRanking
	if err := s.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order(columnsFor(mode).mmr + " DESC").
		Order("player_id ASC").
		Preload("Player").
		Find(&rankings).Error; err != nil {
		return nil, persistence("load season rankings", err)
	}
	return rankings, nil
}
