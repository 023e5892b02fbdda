package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kicker-api/packages/core/cache"
	"kicker-api/packages/core/models"
	"kicker-api/packages/core/testutil"

	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []MatchEvent
}

func (n *recordingNotifier) Publish(e MatchEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []MatchEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]MatchEventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	ctx      context.Context
	db       *gorm.DB
	notifier *recordingNotifier
	cache    *cache.MemoryLeaderboardCache
	kickers  *KickerService
	players  *PlayerService
	matches  *MatchService
	seasons  *SeasonService
}

func newTestEnv(t *testing.T, policy MidSeasonJoinPolicy) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}
	lb := cache.NewMemoryLeaderboardCache()
	return &testEnv{
		ctx:      context.Background(),
		db:       db,
		notifier: notifier,
		cache:    lb,
		kickers:  NewKickerService(db),
		players:  NewPlayerService(db, policy, lb),
		matches:  NewMatchService(db, notifier, lb, nil),
		seasons:  NewSeasonService(db, nil),
	}
}

func (e *testEnv) kicker(t *testing.T, name string) *models.Kicker {
	t.Helper()
	k, err := e.kickers.CreateKicker(e.ctx, name)
	if err != nil {
		t.Fatalf("CreateKicker(%q): %v", name, err)
	}
	return k
}

func (e *testEnv) player(t *testing.T, kickerID uint, name string) *models.Player {
	t.Helper()
	p, err := e.players.CreatePlayer(e.ctx, kickerID, name)
	if err != nil {
		t.Fatalf("CreatePlayer(%q): %v", name, err)
	}
	return p
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Player {
	t.Helper()
	p, err := e.players.GetPlayerByID(e.ctx, id)
	if err != nil {
		t.Fatalf("GetPlayerByID(%d): %v", id, err)
	}
	return p
}

func (e *testEnv) ranking(t *testing.T, seasonID, playerID uint) (*models.SeasonRanking, bool) {
	t.Helper()
	var r models.SeasonRanking
	err := e.db.Where("season_id = ? AND player_id = ?", seasonID, playerID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false
	}
	if err != nil {
		t.Fatalf("load ranking: %v", err)
	}
	return &r, true
}

func (e *testEnv) setRating(t *testing.T, playerID uint, column string, value int) {
	t.Helper()
	if err := e.db.Model(&models.Player{}).Where("id = ?", playerID).Update(column, value).Error; err != nil {
		t.Fatalf("set %s: %v", column, err)
	}
}

func (e *testEnv) score(t *testing.T, matchID, playerID uint, n int) *models.Match {
	t.Helper()
	var m *models.Match
	for i := 0; i < n; i++ {
		var err error
		m, _, err = e.matches.ScoreGoal(e.ctx, matchID, playerID)
		if err != nil {
			t.Fatalf("ScoreGoal: %v", err)
		}
	}
	return m
}

func (e *testEnv) oneOnOne(t *testing.T, kickerID uint, p1, p2 *models.Player) *models.Match {
	t.Helper()
	m, err := e.matches.CreateMatch(e.ctx, kickerID, models.CreateMatchRequest{Player1ID: p1.ID, Player2ID: p2.ID})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return m
}

func ptr[T any](v T) *T {
	return &v
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
