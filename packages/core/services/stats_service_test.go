package services

import (
	"testing"
	"time"

	"kicker-api/packages/core/models"
)

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	stats := NewStatsService(env.db)
	mmr := NewMmrHistoryService(env.db)

	k := env.kicker(t, "office")
	a := env.player(t, k.ID, "alice")
	b := env.player(t, k.ID, "bob")
	env.player(t, k.ID, "carol")

	old := env.oneOnOne(t, k.ID, a, b)
	env.score(t, old.ID, a.ID, 2)
	if _, err := env.matches.EndMatch(env.ctx, old.ID, models.EndMatchRequest{}); err != nil {
		t.Fatal(err)
	}
	env.db.Model(&models.Match{}).Where("id = ?", old.ID).UpdateColumn("started_at", time.Now().AddDate(0, 0, -10))

	current := env.oneOnOne(t, k.ID, a, b)
	env.score(t, current.ID, b.ID, 1)

	other := env.kicker(t, "lab")
	env.player(t, other.ID, "xavier")

	got, err := stats.GetStats(env.ctx, k.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := models.Stats{
		KickerID:             k.ID,
		TotalPlayers:         3,
		TotalMatches:         2,
		EndedMatches:         1,
		TotalGoals:           3,
		MatchesLast7Days:     1,
		MatchesPrevious7Days: 1,
	}
	if *got != want {
		t.Errorf("stats = %+v, want %+v", *got, want)
	}

	changes, err := mmr.GetRecentChanges(env.ctx, k.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentChanges: %v", err)
	}
	if len(changes) != 2 || changes[0].Player == nil {
		t.Errorf("recent changes = %+v", changes)
	}
	if changes, _ := mmr.GetRecentChanges(env.ctx, other.ID, 10); len(changes) != 0 {
		t.Errorf("other kicker sees %d changes", len(changes))
	}
}

func TestGetStatsUnknownKicker(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	if _, err := NewStatsService(env.db).GetStats(env.ctx, 999); !IsNotFound(err) {
		t.Errorf("GetStats(999) err = %v, want NotFoundError", err)
	}
}

func TestKickerService(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)

	k := env.kicker(t, "office")
	if _, err := env.kickers.CreateKicker(env.ctx, "office"); !IsConflict(err) {
		t.Errorf("duplicate kicker: %v", err)
	}
	if _, err := env.kickers.CreateKicker(env.ctx, ""); !IsValidation(err) {
		t.Errorf("blank kicker: %v", err)
	}

	got, err := env.kickers.GetKickerByID(env.ctx, k.ID)
	if err != nil || got.Name != "office" {
		t.Errorf("GetKickerByID = %+v, %v", got, err)
	}
	if _, err := env.kickers.GetKickerByID(env.ctx, 9999); !IsNotFound(err) {
		t.Errorf("unknown kicker: %v", err)
	}

	env.kicker(t, "annex")
	all, err := env.kickers.GetKickers(env.ctx)
	if err != nil || len(all) != 2 || all[0].Name != "annex" {
		t.Errorf("GetKickers = %+v, %v", all, err)
	}
}
