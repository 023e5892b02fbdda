package fixtures

import (
	"context"
	"fmt"
	"math/rand"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options sizes the generated data set.
type Options struct {
	Kickers          int
	PlayersPerKicker int
	MatchesPerKicker int
	Seed             int64
}

func DefaultOptions() Options {
	return Options{
		Kickers:          2,
		PlayersPerKicker: 10,
		MatchesPerKicker: 40,
		Seed:             42,
	}
}

// Fixtures plays matches through the real services, so every rating,
// record and history row is what production would have written.
type Fixtures struct {
	db      *gorm.DB
	kickers *services.KickerService
	players *services.PlayerService
	matches *services.MatchService
	seasons *services.SeasonService
	logger  *zap.Logger
}

func NewFixtures(db *gorm.DB, logger *zap.Logger) *Fixtures {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fixtures{
		db:      db,
		kickers: services.NewKickerService(db),
		players: services.NewPlayerService(db, services.MidSeasonSeed, nil),
		matches: services.NewMatchService(db, nil, nil, logger),
		seasons: services.NewSeasonService(db, logger),
		logger:  logger,
	}
}

var (
	kickerNames = []string{"Cafeteria", "Open Space", "Basement", "Rooftop"}
	playerNames = []string{
		"alexandre", "marie", "julien", "sophie", "thomas",
		"camille", "nicolas", "laura", "antoine", "emma",
		"hugo", "lea", "louis", "chloe", "paul",
	}
)

func (f *Fixtures) GenerateTestData(ctx context.Context, opts Options) error {
	if opts.Kickers > len(kickerNames) || opts.PlayersPerKicker > len(playerNames) {
		return fmt.Errorf("at most %d kickers and %d players per kicker", len(kickerNames), len(playerNames))
	}
	if opts.PlayersPerKicker < 4 {
		return fmt.Errorf("need at least 4 players per kicker")
	}

	rng := rand.New(rand.NewSource(opts.Seed)) // #nosec G404

	for i := 0; i < opts.Kickers; i++ {
		kicker, err := f.kickers.CreateKicker(ctx, kickerNames[i])
		if err != nil {
			return fmt.Errorf("failed to create kicker: %w", err)
		}

		var roster []*models.Player
		for _, name := range playerNames[:opts.PlayersPerKicker] {
			p, err := f.players.CreatePlayer(ctx, kicker.ID, name)
			if err != nil {
				return fmt.Errorf("failed to create player %s: %w", name, err)
			}
			roster = append(roster, p)
		}

		// Every other kicker plays its second half inside a season.
		seasonAt := -1
		if i%2 == 0 {
			seasonAt = opts.MatchesPerKicker / 2
		}

		for n := 0; n < opts.MatchesPerKicker; n++ {
			if n == seasonAt {
				if _, err := f.seasons.StartSeason(ctx, kicker.ID, fmt.Sprintf("%s season 1", kicker.Name)); err != nil {
					return fmt.Errorf("failed to start season: %w", err)
				}
			}
			if err := f.playMatch(ctx, rng, kicker.ID, roster); err != nil {
				return err
			}
		}

		f.logger.Info("kicker generated",
			zap.String("kicker", kicker.Name),
			zap.Int("players", len(roster)),
			zap.Int("matches", opts.MatchesPerKicker))
	}

	return nil
}

func (f *Fixtures) playMatch(ctx context.Context, rng *rand.Rand, kickerID uint, roster []*models.Player) error {
	order := rng.Perm(len(roster))
	req := models.CreateMatchRequest{
		Player1ID: roster[order[0]].ID,
		Player2ID: roster[order[1]].ID,
	}
	if rng.Intn(3) == 0 {
		req.Player3ID = &roster[order[2]].ID
		req.Player4ID = &roster[order[3]].ID
	}

	match, err := f.matches.CreateMatch(ctx, kickerID, req)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	ids := match.PlayerIDs()
	for match.Score1 < 10 && match.Score2 < 10 {
		scorer := ids[rng.Intn(len(ids))]
		if rng.Intn(20) == 0 {
			match, _, err = f.matches.ScoreOwnGoal(ctx, match.ID, scorer)
		} else {
			match, _, err = f.matches.ScoreGoal(ctx, match.ID, scorer)
		}
		if err != nil {
			return fmt.Errorf("failed to score goal: %w", err)
		}
	}

	if _, err := f.matches.EndMatch(ctx, match.ID, models.EndMatchRequest{}); err != nil {
		return fmt.Errorf("failed to end match: %w", err)
	}
	return nil
}

// ClearAllData empties every domain table.
func (f *Fixtures) ClearAllData(ctx context.Context) error {
	// Children first for the foreign keys.
	tables := []interface{}{
		&models.MmrHistory{},
		&models.Goal{},
		&models.Match{},
		&models.SeasonRanking{},
		&models.Season{},
		&models.Player{},
		&models.Kicker{},
	}

	db := f.db.WithContext(ctx)
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"kickers", "players", "seasons", "season_rankings", "matches", "goals", "mmr_history"} {
		if err := db.Exec(fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1", table)).Error; err != nil {
			f.logger.Warn("failed to reset sequence", zap.String("table", table), zap.Error(err))
		}
	}
	return nil
}
