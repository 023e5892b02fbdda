package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"kicker-api/packages/core/cache"
	"kicker-api/packages/core/metrics"
	"kicker-api/packages/core/models"
	"kicker-api/packages/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgActiveMatchExists = "there is already an active match"
	msgMatchEnded        = "match has already ended"
	msgNoScore           = "at least one team must score"
	msgTiedScore         = "scores cannot be tied"
	msgMatchNotActive    = "match is not active"
)

type MatchService struct {
	db          *gorm.DB
	notifier    Notifier
	leaderboard cache.LeaderboardCache
	logger      *zap.Logger
}

func NewMatchService(db *gorm.DB, notifier Notifier, leaderboard cache.LeaderboardCache, logger *zap.Logger) *MatchService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if leaderboard == nil {
		leaderboard = cache.NopLeaderboardCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		db:          db,
		notifier:    notifier,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func preloadMatch(db *gorm.DB) *gorm.DB {
	return db.Preload("Player1").Preload("Player2").Preload("Player3").Preload("Player4")
}

// lockMatch reads a match with a row lock held until the transaction ends.
func lockMatch(tx *gorm.DB, matchID uint) (*models.Match, error) {
	var match models.Match
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&match, matchID).Error; err != nil {
		return nil, lookup("load match", "match", err)
	}
	return &match, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var match models.Match
	if err := preloadMatch(s.db.WithContext(ctx)).First(&match, matchID).Error; err != nil {
		return nil, lookup("load match", "match", err)
	}
	return &match, nil
}

func (s *MatchService) GetActiveMatch(ctx context.Context, kickerID uint) (*models.Match, error) {
	var match models.Match
	err := preloadMatch(s.db.WithContext(ctx)).
		Where("kicker_id = ? AND status = ?", kickerID, models.MatchStatusActive).
		First(&match).Error
	if err != nil {
		return nil, lookup("load active match", "active match", err)
	}
	return &match, nil
}

func (s *MatchService) GetRecentMatches(ctx context.Context, kickerID uint, limit int) ([]models.Match, error) {
	var matches []models.Match

	result := preloadMatch(s.db.WithContext(ctx)).
		Where("kicker_id = ?", kickerID).
		Order("started_at DESC").
		Limit(limit).
		Find(&matches)

	if result.Error != nil {
		return nil, persistence("load recent matches", result.Error)
	}

	return matches, nil
}

type MatchFilters struct {
	KickerID uint
	PlayerID *uint
	SeasonID *uint
	Status   *models.MatchStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

func (s *MatchService) GetMatches(ctx context.Context, filters MatchFilters) (*models.PaginatedMatchResponse, error) {
	var matches []models.Match
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Match{}).Where("kicker_id = ?", filters.KickerID)

	if filters.PlayerID != nil {
		id := *filters.PlayerID
		query = query.Where("player1_id = ? OR player2_id = ? OR player3_id = ? OR player4_id = ?", id, id, id, id)
	}
	if filters.SeasonID != nil {
		query = query.Where("season_id = ?", *filters.SeasonID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at < ?", filters.DateTo.Add(24*time.Hour))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, persistence("count matches", err)
	}

	offset := (filters.Page - 1) * filters.PerPage

	result := preloadMatch(query).
		Order("started_at DESC").
		Offset(offset).
		Limit(filters.PerPage).
		Find(&matches)
	if result.Error != nil {
		return nil, persistence("load matches", result.Error)
	}

	totalPages := int((total + int64(filters.PerPage) - 1) / int64(filters.PerPage))

	return &models.PaginatedMatchResponse{
		Data:       matches,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *MatchService) GetGoals(ctx context.Context, matchID uint) ([]models.Goal, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	var goals []models.Goal
	if err := s.db.WithContext(ctx).Where("match_id = ?", matchID).Order("sequence ASC").Preload("Player").Find(&goals).Error; err != nil {
		return nil, persistence("load goals", err)
	}
	return goals, nil
}

func validateLineup(req models.CreateMatchRequest) ([]uint, error) {
	if (req.Player3ID == nil) != (req.Player4ID == nil) {
		return nil, validationf("a match is either 1-on-1 or 2-on-2: provide player3 and player4 together")
	}

	ids := []uint{req.Player1ID, req.Player2ID}
	if req.Player3ID != nil {
		ids = append(ids, *req.Player3ID, *req.Player4ID)
	}

	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 {
			return nil, validationf("player ids are required")
		}
		if seen[id] {
			return nil, validationf("a player cannot take more than one slot")
		}
		seen[id] = true
	}
	return ids, nil
}

// activeSeason returns the kicker's active season, or nil in off-season.
func activeSeason(tx *gorm.DB, kickerID uint) (*models.Season, error) {
	var season models.Season
	err := tx.Where("kicker_id = ? AND is_active = ?", kickerID, true).First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("load active season", err)
	}
	return &season, nil
}

// CreateMatch starts a match. A kicker has at most one active match: the
// check runs inside the transaction and a partial unique index on
// matches(kicker_id) WHERE status = 'active' rejects any racing insert.
func (s *MatchService) CreateMatch(ctx context.Context, kickerID uint, req models.CreateMatchRequest) (*models.Match, error) {
	ids, err := validateLineup(req)
	if err != nil {
		return nil, err
	}

	var match models.Match
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var kicker models.Kicker
		if err := tx.First(&kicker, kickerID).Error; err != nil {
			return lookup("load kicker", "kicker", err)
		}

		var players []models.Player
		if err := tx.Where("id IN ?", ids).Find(&players).Error; err != nil {
			return persistence("load players", err)
		}
		if len(players) != len(ids) {
			return notFound("player")
		}
		for _, p := range players {
			if p.KickerID != kickerID {
				return validationf("player %d does not belong to this kicker", p.ID)
			}
		}

		var activeCount int64
		if err := tx.Model(&models.Match{}).
			Where("kicker_id = ? AND status = ?", kickerID, models.MatchStatusActive).
			Count(&activeCount).Error; err != nil {
			return persistence("check active match", err)
		}
		if activeCount > 0 {
			return conflict(msgActiveMatchExists)
		}

		season, err := activeSeason(tx, kickerID)
		if err != nil {
			return err
		}

		match = models.Match{
			KickerID:  kickerID,
			Player1ID: req.Player1ID,
			Player2ID: req.Player2ID,
			Player3ID: req.Player3ID,
			Player4ID: req.Player4ID,
			Status:    models.MatchStatusActive,
			StartedAt: time.Now(),
		}
		if season != nil {
			match.SeasonID = &season.ID
		}

		if err := tx.Omit(clause.Associations).Create(&match).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict(msgActiveMatchExists)
			}
			return persistence("create match", err)
		}
		return nil
	})
	if err != nil {
		if IsConflict(err) {
			metrics.Conflicts.WithLabelValues("create_match").Inc()
		}
		return nil, err
	}

	created, err := s.GetMatch(ctx, match.ID)
	if err != nil {
		return nil, err
	}

	metrics.MatchesCreated.WithLabelValues(string(created.Mode())).Inc()
	s.logger.Info("match created",
		zap.Uint("kicker_id", kickerID),
		zap.Uint("match_id", created.ID),
		zap.String("mode", string(created.Mode())))
	s.publish(EventMatchCreated, created, nil)

	return created, nil
}

func (s *MatchService) ScoreGoal(ctx context.Context, matchID, playerID uint) (*models.Match, *models.Goal, error) {
	return s.addGoal(ctx, matchID, playerID, models.GoalStandard)
}

// ScoreOwnGoal records a goal by playerID into their own net; it counts
// for the opposing team.
func (s *MatchService) ScoreOwnGoal(ctx context.Context, matchID, playerID uint) (*models.Match, *models.Goal, error) {
	return s.addGoal(ctx, matchID, playerID, models.GoalOwn)
}

func loadGoals(tx *gorm.DB, matchID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := tx.Where("match_id = ?", matchID).Order("sequence ASC").Find(&goals).Error; err != nil {
		return nil, persistence("load goals", err)
	}
	return goals, nil
}

// scoreFromGoals derives the running score from the goal log.
func scoreFromGoals(goals []models.Goal) (score1, score2 int) {
	for i := range goals {
		if goals[i].CreditedTeam() == models.TeamOne {
			score1++
		} else {
			score2++
		}
	}
	return score1, score2
}

func nextSequence(goals []models.Goal) int {
	if len(goals) == 0 {
		return 1
	}
	return goals[len(goals)-1].Sequence + 1
}

func (s *MatchService) addGoal(ctx context.Context, matchID, playerID uint, goalType models.GoalType) (*models.Match, *models.Goal, error) {
	var goal models.Goal
	var kickerID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return validationf(msgMatchNotActive)
		}
		kickerID = match.KickerID

		team, ok := match.TeamOf(playerID)
		if !ok {
			return validationf("player %d is not part of this match", playerID)
		}

		goals, err := loadGoals(tx, matchID)
		if err != nil {
			return err
		}

		goal = models.Goal{
			MatchID:  matchID,
			Sequence: nextSequence(goals),
			PlayerID: &playerID,
			Team:     team,
			Type:     goalType,
		}
		score1, score2 := scoreFromGoals(append(goals, goal))
		goal.Score1, goal.Score2 = score1, score2

		if err := tx.Omit(clause.Associations).Create(&goal).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("the goal log changed concurrently, retry")
			}
			return persistence("create goal", err)
		}

		return s.writeScore(tx, matchID, score1, score2)
	})
	if err != nil {
		return nil, nil, err
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	metrics.Goals.WithLabelValues(string(goalType)).Inc()
	s.logger.Debug("goal scored",
		zap.Uint("kicker_id", kickerID),
		zap.Uint("match_id", matchID),
		zap.Uint("player_id", playerID),
		zap.String("type", string(goalType)),
		zap.Int("score1", match.Score1),
		zap.Int("score2", match.Score2))
	s.publish(EventGoalScored, match, &goal)

	return match, &goal, nil
}

func (s *MatchService) writeScore(tx *gorm.DB, matchID uint, score1, score2 int) error {
	err := tx.Model(&models.Match{}).Where("id = ?", matchID).Updates(map[string]interface{}{
		"score1": score1,
		"score2": score2,
	}).Error
	return persistence("update score", err)
}

// UndoLastGoal removes the most recent goal and recomputes the score from
// what remains. With an empty log it is a no-op and returns a nil goal.
func (s *MatchService) UndoLastGoal(ctx context.Context, matchID uint) (*models.Match, *models.Goal, error) {
	var removed *models.Goal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return validationf(msgMatchNotActive)
		}

		goals, err := loadGoals(tx, matchID)
		if err != nil {
			return err
		}
		if len(goals) == 0 {
			return nil
		}

		last := goals[len(goals)-1]
		if err := tx.Delete(&models.Goal{}, last.ID).Error; err != nil {
			return persistence("delete goal", err)
		}
		removed = &last

		score1, score2 := scoreFromGoals(goals[:len(goals)-1])
		return s.writeScore(tx, matchID, score1, score2)
	})
	if err != nil {
		return nil, nil, err
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if removed != nil {
		s.publish(EventGoalUndone, match, removed)
	}
	return match, removed, nil
}

// finalScore resolves the score a match ends with: an explicit pair when
// given, otherwise the goal log.
func finalScore(req models.EndMatchRequest, logScore1, logScore2 int) (int, int, error) {
	if (req.Score1 == nil) != (req.Score2 == nil) {
		return 0, 0, validationf("provide both scores or neither")
	}
	score1, score2 := logScore1, logScore2
	if req.Score1 != nil {
		score1, score2 = *req.Score1, *req.Score2
		if score1 < 0 || score2 < 0 {
			return 0, 0, validationf("scores cannot be negative")
		}
		if score1 > models.MaxFinalScore || score2 > models.MaxFinalScore {
			return 0, 0, validationf("scores cannot exceed %d", models.MaxFinalScore)
		}
		if score1 < logScore1 || score2 < logScore2 {
			return 0, 0, validationf("final score cannot be lower than the goals already recorded (%d-%d)", logScore1, logScore2)
		}
	}
	if score1 == 0 && score2 == 0 {
		return 0, 0, validationf(msgNoScore)
	}
	if score1 == score2 {
		return 0, 0, validationf(msgTiedScore)
	}
	return score1, score2, nil
}

const goalInsertBatch = 50

// reconcileGoals appends generated goals so the log adds up to the final
// score.
func reconcileGoals(tx *gorm.DB, matchID uint, goals []models.Goal, score1, score2 int) error {
	logScore1, logScore2 := scoreFromGoals(goals)
	seq := nextSequence(goals)

	var generated []models.Goal
	add := func(team models.Team, n int) {
		for i := 0; i < n; i++ {
			if team == models.TeamOne {
				logScore1++
			} else {
				logScore2++
			}
			generated = append(generated, models.Goal{
				MatchID:  matchID,
				Sequence: seq,
				Team:     team,
				Type:     models.GoalGenerated,
				Score1:   logScore1,
				Score2:   logScore2,
			})
			seq++
		}
	}
	add(models.TeamOne, score1-logScore1)
	add(models.TeamTwo, score2-logScore2)

	if len(generated) == 0 {
		return nil
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(&generated, goalInsertBatch).Error; err != nil {
		return persistence("create generated goals", err)
	}
	return nil
}

// EndMatch resolves the final score and applies the rating outcome to every
// participant in one transaction: Player rows, the active season's
// SeasonRanking rows, MMR history and the match itself all change together
// or not at all. Ending an ended match is a ConflictError, so a retry after
// an ambiguous failure never applies the delta twice.
func (s *MatchService) EndMatch(ctx context.Context, matchID uint, req models.EndMatchRequest) (*models.Match, error) {
	var kickerID uint
	var delta int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return conflict(msgMatchEnded)
		}
		kickerID = match.KickerID

		goals, err := loadGoals(tx, matchID)
		if err != nil {
			return err
		}
		logScore1, logScore2 := scoreFromGoals(goals)
		score1, score2, err := finalScore(req, logScore1, logScore2)
		if err != nil {
			return err
		}
		if err := reconcileGoals(tx, matchID, goals, score1, score2); err != nil {
			return err
		}
		match.Score1, match.Score2 = score1, score2

		season, err := activeSeason(tx, match.KickerID)
		if err != nil {
			return err
		}

		delta, err = applyOutcome(tx, match, season)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     models.MatchStatusEnded,
			"score1":     score1,
			"score2":     score2,
			"ended_at":   now,
			"mmr_change": delta,
			"season_id":  nil,
		}
		if season != nil {
			updates["season_id"] = season.ID
		}
		result := tx.Model(&models.Match{}).
			Where("id = ? AND status = ?", matchID, models.MatchStatusActive).
			Updates(updates)
		if result.Error != nil {
			return persistence("end match", result.Error)
		}
		if result.RowsAffected != 1 {
			return conflict(msgMatchEnded)
		}
		return nil
	})
	if err != nil {
		if IsConflict(err) {
			metrics.Conflicts.WithLabelValues("end_match").Inc()
		}
		return nil, err
	}

	ended, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx, kickerID)
	mode := string(ended.Mode())
	metrics.MatchesEnded.WithLabelValues(mode).Inc()
	metrics.RatingChange.WithLabelValues(mode).Observe(math.Abs(float64(delta)))
	s.logger.Info("match ended",
		zap.Uint("kicker_id", kickerID),
		zap.Uint("match_id", matchID),
		zap.String("mode", mode),
		zap.Int("score1", ended.Score1),
		zap.Int("score2", ended.Score2),
		zap.Int("mmr_change", delta))
	s.publish(EventMatchEnded, ended, nil)

	return ended, nil
}

type ratingColumns struct {
	mmr, wins, losses string
}

func columnsFor(mode models.MatchMode) ratingColumns {
	if mode == models.ModeTwoOnTwo {
		return ratingColumns{mmr: "mmr2on2", wins: "wins2on2", losses: "losses2on2"}
	}
	return ratingColumns{mmr: "mmr", wins: "wins", losses: "losses"}
}

// applyOutcome computes the side-vs-side delta and writes it to every
// participant. It returns team one's delta.
func applyOutcome(tx *gorm.DB, match *models.Match, season *models.Season) (int, error) {
	winner, ok := match.Winner()
	if !ok {
		return 0, validationf(msgTiedScore)
	}

	ids := match.PlayerIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Locks are taken in id order so that two matches ending concurrently
	// over shared players cannot deadlock.
	var players []models.Player
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&players).Error; err != nil {
		return 0, persistence("lock players", err)
	}
	if len(players) != len(ids) {
		return 0, notFound("player")
	}
	byID := make(map[uint]*models.Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}

	mode := match.Mode()
	sideRating := func(team models.Team) float64 {
		var ratings []int
		for _, id := range match.TeamPlayerIDs(team) {
			ratings = append(ratings, byID[id].Rating(mode))
		}
		return utils.TeamRating(ratings...)
	}
	rating1, rating2 := sideRating(models.TeamOne), sideRating(models.TeamTwo)

	delta1 := utils.RoundedRatingChange(rating1, rating2, utils.OutcomeFor(winner == models.TeamOne))
	cols := columnsFor(mode)

	var seasonID *uint
	if season != nil {
		seasonID = &season.ID
	}

	for _, team := range []models.Team{models.TeamOne, models.TeamTwo} {
		delta, opponent := delta1, rating2
		if team == models.TeamTwo {
			delta, opponent = -delta1, rating1
		}
		recordCol := cols.losses
		if team == winner {
			recordCol = cols.wins
		}

		for _, id := range match.TeamPlayerIDs(team) {
			p := byID[id]
			before := p.Rating(mode)

			result := tx.Model(&models.Player{}).
				Where("id = ? AND version = ?", p.ID, p.Version).
				Updates(map[string]interface{}{
					cols.mmr:  before + delta,
					recordCol: gorm.Expr(recordCol + " + 1"),
					"version": gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return 0, persistence("update player", result.Error)
			}
			if result.RowsAffected != 1 {
				return 0, conflict("player rating changed concurrently, retry")
			}

			history := models.MmrHistory{
				PlayerID:       p.ID,
				MatchID:        match.ID,
				SeasonID:       seasonID,
				Mode:           mode,
				MmrBefore:      before,
				MmrAfter:       before + delta,
				MmrChange:      delta,
				OpponentRating: opponent,
			}
			if err := tx.Omit(clause.Associations).Create(&history).Error; err != nil {
				return 0, persistence("create mmr history", err)
			}

			if season == nil {
				continue
			}
			// Players without a ranking row (excluded mid-season joiners)
			// only receive all-time updates.
			if err := tx.Model(&models.SeasonRanking{}).
				Where("season_id = ? AND player_id = ?", season.ID, p.ID).
				Updates(map[string]interface{}{
					cols.mmr:  gorm.Expr(cols.mmr+" + ?", delta),
					recordCol: gorm.Expr(recordCol + " + 1"),
				}).Error; err != nil {
				return 0, persistence("update season ranking", err)
			}
		}
	}

	return delta1, nil
}

// CancelMatch discards an active match and its goal log without touching
// any rating. Ended matches are immutable.
func (s *MatchService) CancelMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var match *models.Match

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		match, err = lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsActive() {
			return conflict(msgMatchEnded)
		}
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Goal{}).Error; err != nil {
			return persistence("delete goals", err)
		}
		if err := tx.Delete(&models.Match{}, matchID).Error; err != nil {
			return persistence("delete match", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MatchesCancelled.Inc()
	s.logger.Info("match cancelled", zap.Uint("kicker_id", match.KickerID), zap.Uint("match_id", matchID))
	s.publish(EventMatchCancelled, match, nil)

	return match, nil
}

func (s *MatchService) publish(eventType MatchEventType, match *models.Match, goal *models.Goal) {
	s.notifier.Publish(MatchEvent{
		Type:     eventType,
		KickerID: match.KickerID,
		MatchID:  match.ID,
		Match:    match,
		Goal:     goal,
		At:       time.Now(),
	})
}
