package core

import (
	"context"
	"net/http"
	"time"

	"kicker-api/packages/core/cache"
	"kicker-api/packages/core/cron"
	"kicker-api/packages/core/handlers"
	"kicker-api/packages/core/realtime"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options tunes the module. Zero values pick the defaults.
type Options struct {
	MidSeasonJoinPolicy services.MidSeasonJoinPolicy
	StaleMatchAfter     time.Duration
	StaleMatchCron      string
	Leaderboard         cache.LeaderboardCache
	// CheckOrigin filters websocket upgrades; nil accepts every origin.
	CheckOrigin func(*http.Request) bool
}

type Module struct {
	KickerHandler     *handlers.KickerHandler
	KickerService     *services.KickerService
	PlayerHandler     *handlers.PlayerHandler
	PlayerService     *services.PlayerService
	MatchHandler      *handlers.MatchHandler
	MatchService      *services.MatchService
	SeasonHandler     *handlers.SeasonHandler
	SeasonService     *services.SeasonService
	MmrHistoryHandler *handlers.MmrHistoryHandler
	MmrHistoryService *services.MmrHistoryService
	StatsHandler      *handlers.StatsHandler
	StatsService      *services.StatsService
	LiveHandler       *handlers.LiveHandler
	StaleMatchService *services.StaleMatchService
	Hub               *realtime.Hub
	Scheduler         *cron.Scheduler

	logger *zap.Logger
	cancel context.CancelFunc
}

func NewModule(db *gorm.DB, opts Options, logger *zap.Logger) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MidSeasonJoinPolicy == "" {
		opts.MidSeasonJoinPolicy = services.MidSeasonSeed
	}
	if opts.StaleMatchAfter <= 0 {
		opts.StaleMatchAfter = 6 * time.Hour
	}
	if opts.Leaderboard == nil {
		opts.Leaderboard = cache.NopLeaderboardCache{}
	}

	hub := realtime.NewHub(logger.Named("live"))

	kickerService := services.NewKickerService(db)
	playerService := services.NewPlayerService(db, opts.MidSeasonJoinPolicy, opts.Leaderboard)
	matchService := services.NewMatchService(db, hub, opts.Leaderboard, logger.Named("match"))
	seasonService := services.NewSeasonService(db, logger.Named("season"))
	mmrHistoryService := services.NewMmrHistoryService(db)
	statsService := services.NewStatsService(db)

	staleMatchService := services.NewStaleMatchService(db, matchService, opts.StaleMatchAfter, logger.Named("stale"))
	scheduler := cron.NewScheduler(staleMatchService, opts.StaleMatchCron, logger.Named("cron"))

	return &Module{
		KickerHandler:     handlers.NewKickerHandler(kickerService),
		KickerService:     kickerService,
		PlayerHandler:     handlers.NewPlayerHandler(playerService),
		PlayerService:     playerService,
		MatchHandler:      handlers.NewMatchHandler(matchService),
		MatchService:      matchService,
		SeasonHandler:     handlers.NewSeasonHandler(seasonService),
		SeasonService:     seasonService,
		MmrHistoryHandler: handlers.NewMmrHistoryHandler(mmrHistoryService),
		MmrHistoryService: mmrHistoryService,
		StatsHandler:      handlers.NewStatsHandler(statsService),
		StatsService:      statsService,
		LiveHandler:       handlers.NewLiveHandler(hub, kickerService, opts.CheckOrigin),
		StaleMatchService: staleMatchService,
		Hub:               hub,
		Scheduler:         scheduler,
		logger:            logger,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	kickers := r.Group("/kickers")
	{
		kickers.POST("", m.KickerHandler.CreateKicker)
		kickers.GET("", m.KickerHandler.GetKickers)
		kickers.GET("/:id", m.KickerHandler.GetKicker)
		kickers.GET("/:id/stats", m.StatsHandler.GetStats)
		kickers.GET("/:id/live", m.LiveHandler.Subscribe)

		kickers.POST("/:id/players", m.PlayerHandler.CreatePlayer)
		kickers.GET("/:id/players", m.PlayerHandler.GetPlayers)
		kickers.GET("/:id/leaderboard", m.PlayerHandler.GetLeaderboard)

		kickers.POST("/:id/matches", m.MatchHandler.CreateMatch)
		kickers.GET("/:id/matches", m.MatchHandler.GetMatches)
		kickers.GET("/:id/matches/active", m.MatchHandler.GetActiveMatch)
		kickers.GET("/:id/matches/recent", m.MatchHandler.GetRecentMatches)

		kickers.POST("/:id/seasons", m.SeasonHandler.StartSeason)
		kickers.GET("/:id/seasons", m.SeasonHandler.GetSeasons)
		kickers.GET("/:id/seasons/active", m.SeasonHandler.GetActiveSeason)
		kickers.POST("/:id/seasons/end", m.SeasonHandler.EndSeason)

		kickers.GET("/:id/mmr-history/recent", m.MmrHistoryHandler.GetRecentMmrChanges)
	}

	players := r.Group("/players")
	{
		players.GET("/:id", m.PlayerHandler.GetPlayer)
		players.GET("/:id/matches", m.PlayerHandler.GetPlayerMatches)
		players.GET("/:id/mmr-history", m.PlayerHandler.GetMmrHistory)
	}

	matches := r.Group("/matches")
	{
		matches.GET("/:id", m.MatchHandler.GetMatch)
		matches.DELETE("/:id", m.MatchHandler.CancelMatch)
		matches.GET("/:id/goals", m.MatchHandler.GetGoals)
		matches.POST("/:id/goals", m.MatchHandler.ScoreGoal)
		matches.DELETE("/:id/goals/last", m.MatchHandler.UndoLastGoal)
		matches.POST("/:id/end", m.MatchHandler.EndMatch)
	}

	r.GET("/seasons/:id/rankings", m.SeasonHandler.GetSeasonRankings)
}

// Start runs the live hub and the stale match scheduler.
func (m *Module) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.Hub.Run(ctx)

	if err := m.Scheduler.Start(); err != nil {
		cancel()
		return err
	}
	m.logger.Info("core module started")
	return nil
}

func (m *Module) Stop() {
	m.Scheduler.Stop()
	if m.cancel != nil {
		m.cancel()
	}
	m.logger.Info("core module stopped")
}

// RunStaleSweepNow triggers the stale match sweep outside its schedule.
func (m *Module) RunStaleSweepNow() {
	m.Scheduler.RunNow()
}
