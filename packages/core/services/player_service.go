package services

import (
	"context"
	"fmt"
	"strings"

	"kicker-api/packages/core/cache"
	"kicker-api/packages/core/models"
	"kicker-api/packages/core/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MidSeasonJoinPolicy decides whether a player created while a season is
// running gets a ranking row in that season.
type MidSeasonJoinPolicy string

const (
	// MidSeasonSeed creates the ranking row at the default rating.
	MidSeasonSeed MidSeasonJoinPolicy = "seed"
	// MidSeasonExclude keeps the player out of seasonal rankings until the
	// next season starts; their matches only update all-time stats.
	MidSeasonExclude MidSeasonJoinPolicy = "exclude"
)

func ParseMidSeasonJoinPolicy(s string) (MidSeasonJoinPolicy, error) {
	switch MidSeasonJoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MidSeasonSeed:
		return MidSeasonSeed, nil
	case MidSeasonExclude:
		return MidSeasonExclude, nil
	}
	return "", fmt.Errorf("unknown mid-season join policy %q", s)
}

type PlayerService struct {
	db          *gorm.DB
	policy      MidSeasonJoinPolicy
	leaderboard cache.LeaderboardCache
}

func NewPlayerService(db *gorm.DB, policy MidSeasonJoinPolicy, leaderboard cache.LeaderboardCache) *PlayerService {
	if leaderboard == nil {
		leaderboard = cache.NopLeaderboardCache{}
	}
	return &PlayerService{
		db:          db,
		policy:      policy,
		leaderboard: leaderboard,
	}
}

func (s *PlayerService) GetPlayerByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player

	result := s.db.WithContext(ctx).First(&player, id)
	if result.Error != nil {
		return nil, lookup("load player", "player", result.Error)
	}

	return &player, nil
}

func (s *PlayerService) CreatePlayer(ctx context.Context, kickerID uint, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("player name is required")
	}

	player := &models.Player{
		KickerID: kickerID,
		Name:     name,
		Mmr:      utils.DefaultRating,
		Mmr2on2:  utils.DefaultRating,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var kicker models.Kicker
		if err := tx.First(&kicker, kickerID).Error; err != nil {
			return lookup("load kicker", "kicker", err)
		}

		if err := tx.Omit(clause.Associations).Create(player).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("a player with this name already exists")
			}
			return persistence("create player", err)
		}

		if s.policy != MidSeasonSeed {
			return nil
		}
		season, err := activeSeason(tx, kickerID)
		if err != nil || season == nil {
			return err
		}
		ranking := newSeasonRanking(season.ID, player.ID)
		if err := tx.Omit(clause.Associations).Create(&ranking).Error; err != nil {
			return persistence("seed season ranking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx, kickerID)
	return player, nil
}

func (s *PlayerService) GetMmrHistoryByPlayerID(ctx context.Context, playerID uint) ([]models.MmrHistory, error) {
	var history []models.MmrHistory

	result := s.db.WithContext(ctx).Where("player_id = ?", playerID).
		Order("id ASC").
		Find(&history)

	if result.Error != nil {
		return nil, persistence("load mmr history", result.Error)
	}

	return history, nil
}

// GetLeaderboard returns the kicker's top players by the mode's rating.
func (s *PlayerService) GetLeaderboard(ctx context.Context, kickerID uint, mode models.MatchMode, limit int) ([]models.Player, error) {
	cached, gen, ok := s.leaderboard.Get(ctx, kickerID, mode, limit)
	if ok {
		return cached, nil
	}

	var players []models.Player

	result := s.db.WithContext(ctx).
		Where("kicker_id = ?", kickerID).
		Order(columnsFor(mode).mmr + " DESC").
		Order("id ASC").
		Limit(limit).
		Find(&players)

	if result.Error != nil {
		return nil, persistence("load leaderboard", result.Error)
	}

	s.leaderboard.Set(ctx, kickerID, gen, mode, limit, players)
	return players, nil
}

// GetPlayerMatches lists a player's matches. filter is "wins", "losses"
// or empty for all.
func (s *PlayerService) GetPlayerMatches(ctx context.Context, playerID uint, filter string, page int, pageSize int) (*models.PaginatedMatchResponse, error) {
	var matches []models.Match
	var total int64

	id := playerID
	inTeamOne := "(player1_id = ? OR player3_id = ?)"
	inTeamTwo := "(player2_id = ? OR player4_id = ?)"

	baseQuery := s.db.WithContext(ctx).Model(&models.Match{}).
		Where(inTeamOne+" OR "+inTeamTwo, id, id, id, id)

	switch filter {
	case "wins":
		baseQuery = baseQuery.Where("status = ?", models.MatchStatusEnded).
			Where("("+inTeamOne+" AND score1 > score2) OR ("+inTeamTwo+" AND score2 > score1)", id, id, id, id)
	case "losses":
		baseQuery = baseQuery.Where("status = ?", models.MatchStatusEnded).
			Where("("+inTeamOne+" AND score1 < score2) OR ("+inTeamTwo+" AND score2 < score1)", id, id, id, id)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, persistence("count player matches", err)
	}

	offset := (page - 1) * pageSize

	query := preloadMatch(baseQuery).
		Order("started_at DESC").
		Offset(offset).
		Limit(pageSize)

	if err := query.Find(&matches).Error; err != nil {
		return nil, persistence("load player matches", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.PaginatedMatchResponse{
		Data:       matches,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *PlayerService) GetAllPlayers(ctx context.Context, kickerID uint, orderBy string, direction string, page int, pageSize int) (*models.PaginatedPlayersResponse, error) {
	var players []models.Player
	var total int64

	allowedOrderBy := map[string]bool{
		"created_at": true,
		"mmr":        true,
		"mmr2on2":    true,
		"name":       true,
		"wins":       true,
	}

	if !allowedOrderBy[orderBy] {
		orderBy = "created_at"
	}

	if direction != "ASC" && direction != "DESC" {
		direction = "DESC"
	}

	query := s.db.WithContext(ctx).Model(&models.Player{}).Where("kicker_id = ?", kickerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, persistence("count players", err)
	}

	offset := (page - 1) * pageSize

	if err := query.Order(orderBy + " " + direction).
		Order("id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&players).Error; err != nil {
		return nil, persistence("load players", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.PaginatedPlayersResponse{
		Data:       players,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
