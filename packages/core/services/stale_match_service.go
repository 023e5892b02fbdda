package services

import (
	"context"
	"time"

	"kicker-api/packages/core/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StaleMatchService closes active matches nobody touched for a while so
// that a forgotten match does not block the kicker forever.
type StaleMatchService struct {
	db           *gorm.DB
	matchService *MatchService
	staleAfter   time.Duration
	logger       *zap.Logger
}

func NewStaleMatchService(db *gorm.DB, matchService *MatchService, staleAfter time.Duration, logger *zap.Logger) *StaleMatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaleMatchService{
		db:           db,
		matchService: matchService,
		staleAfter:   staleAfter,
		logger:       logger,
	}
}

type SweepResult struct {
	Ended     int `json:"ended"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

func (s *StaleMatchService) findStaleMatches(ctx context.Context) ([]models.Match, error) {
	cutoff := time.Now().Add(-s.staleAfter)

	var matches []models.Match
	err := s.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.MatchStatusActive, cutoff).
		Order("id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, persistence("find stale matches", err)
	}
	return matches, nil
}

func (s *StaleMatchService) CountStaleMatches(ctx context.Context) (int, error) {
	matches, err := s.findStaleMatches(ctx)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// SweepStaleMatches ends every stale match whose goal log has a winner and
// cancels the rest. A failure on one match is logged and the sweep goes on.
func (s *StaleMatchService) SweepStaleMatches(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	matches, err := s.findStaleMatches(ctx)
	if err != nil {
		return result, err
	}

	for _, match := range matches {
		if _, ok := match.Winner(); ok {
			if _, err := s.matchService.EndMatch(ctx, match.ID, models.EndMatchRequest{}); err != nil {
				s.logger.Warn("failed to end stale match", zap.Uint("match_id", match.ID), zap.Error(err))
				result.Failed++
				continue
			}
			s.logger.Info("ended stale match from goal log",
				zap.Uint("match_id", match.ID),
				zap.Int("score1", match.Score1),
				zap.Int("score2", match.Score2))
			result.Ended++
			continue
		}

		if _, err := s.matchService.CancelMatch(ctx, match.ID); err != nil {
			s.logger.Warn("failed to cancel stale match", zap.Uint("match_id", match.ID), zap.Error(err))
			result.Failed++
			continue
		}
		s.logger.Info("cancelled stale match without a winner", zap.Uint("match_id", match.ID))
		result.Cancelled++
	}

	return result, nil
}
