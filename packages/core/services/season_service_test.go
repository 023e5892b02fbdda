package services

import (
	"testing"

	"kicker-api/packages/core/models"
)

func TestStartSeasonSeedsExistingPlayers(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	k := env.kicker(t, "office")
	a := env.player(t, k.ID, "alice")
	b := env.player(t, k.ID, "bob")
	env.setRating(t, a.ID, "mmr", 1200)

	season, err := env.seasons.StartSeason(env.ctx, k.ID, "Spring")
	if err != nil {
		t.Fatalf("StartSeason: %v", err)
	}
	if season.Number != 1 || !season.IsActive || season.Name == nil || *season.Name != "Spring" {
		t.Errorf("season = %+v", season)
	}

	for _, p := range []*models.Player{a, b} {
		r, ok := env.ranking(t, season.ID, p.ID)
		if !ok {
			t.Fatalf("no ranking for %s", p.Name)
		}
		if r.Mmr != 1000 || r.Mmr2on2 != 1000 || r.Wins != 0 {
			t.Errorf("ranking for %s = %+v", p.Name, r)
		}
	}

	if _, err := env.seasons.StartSeason(env.ctx, k.ID, ""); !IsConflict(err) {
		t.Errorf("second StartSeason: got %v", err)
	}
}

func TestEndSeason(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	k := env.kicker(t, "office")

	if _, err := env.seasons.EndSeason(env.ctx, k.ID); !IsConflict(err) {
		t.Fatalf("EndSeason with none: got %v", err)
	}

	first, err := env.seasons.StartSeason(env.ctx, k.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	ended, err := env.seasons.EndSeason(env.ctx, k.ID)
	if err != nil {
		t.Fatalf("EndSeason: %v", err)
	}
	if ended.ID != first.ID || ended.IsActive || ended.EndDate == nil {
		t.Errorf("ended = %+v", ended)
	}
	if _, err := env.seasons.GetActiveSeason(env.ctx, k.ID); !IsNotFound(err) {
		t.Errorf("GetActiveSeason after end: %v", err)
	}

	second, err := env.seasons.StartSeason(env.ctx, k.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Number != 2 {
		t.Errorf("second season number = %d", second.Number)
	}

	seasons, err := env.seasons.GetSeasons(env.ctx, k.ID)
	if err != nil || len(seasons) != 2 || seasons[0].ID != second.ID {
		t.Errorf("GetSeasons = %+v, %v", seasons, err)
	}
}

// The active season is resolved when the match ends, and both the Player
// and its SeasonRanking move by the same delta.
func TestEndMatchDuringSeasonUpdatesRanking(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	k := env.kicker(t, "office")
	a := env.player(t, k.ID, "alice")
	b := env.player(t, k.ID, "bob")
	// Carry an all-time rating that differs from the fresh season rating.
	env.setRating(t, a.ID, "mmr", 1100)

	season, err := env.seasons.StartSeason(env.ctx, k.ID, "")
	if err != nil {
		t.Fatal(err)
	}

	m := env.oneOnOne(t, k.ID, a, b)
	if m.SeasonID == nil || *m.SeasonID != season.ID {
		t.Fatalf("match season = %v, want %d", m.SeasonID, season.ID)
	}
	env.score(t, m.ID, a.ID, 5)
	ended, err := env.matches.EndMatch(env.ctx, m.ID, models.EndMatchRequest{})
	if err != nil {
		t.Fatalf("EndMatch: %v", err)
	}
	delta := *ended.MmrChange

	pa, pb := env.reload(t, a.ID), env.reload(t, b.ID)
	ra, _ := env.ranking(t, season.ID, a.ID)
	rb, _ := env.ranking(t, season.ID, b.ID)

	if pa.Mmr-1100 != delta || pb.Mmr-1000 != -delta {
		t.Errorf("player deltas = %d/%d, want %d/%d", pa.Mmr-1100, pb.Mmr-1000, delta, -delta)
	}
	if ra.Mmr-1000 != delta || rb.Mmr-1000 != -delta {
		t.Errorf("ranking deltas = %d/%d, want %d/%d", ra.Mmr-1000, rb.Mmr-1000, delta, -delta)
	}
	if ra.Wins != 1 || rb.Losses != 1 {
		t.Errorf("ranking records = %d wins / %d losses", ra.Wins, rb.Losses)
	}

	var history models.MmrHistory
	env.db.Where("player_id = ?", a.ID).First(&history)
	if history.SeasonID == nil || *history.SeasonID != season.ID {
		t.Errorf("history season = %v", history.SeasonID)
	}
}

func TestEndMatchOffSeasonUpdatesPlayerOnly(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	k := env.kicker(t, "office")
	a := env.player(t, k.ID, "alice")
	b := env.player(t, k.ID, "bob")

	season, err := env.seasons.StartSeason(env.ctx, k.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	m := env.oneOnOne(t, k.ID, a, b)
	env.score(t, m.ID, a.ID, 3)

	// The season closes while the match is running.
	if _, err := env.seasons.EndSeason(env.ctx, k.ID); err != nil {
		t.Fatal(err)
	}

	ended, err := env.matches.EndMatch(env.ctx, m.ID, models.EndMatchRequest{})
	if err != nil {
		t.Fatalf("EndMatch: %v", err)
	}
	if ended.SeasonID != nil {
		t.Errorf("off-season match kept season %d", *ended.SeasonID)
	}
	if p := env.reload(t, a.ID); p.Mmr != 1016 {
		t.Errorf("player mmr = %d, want 1016", p.Mmr)
	}
	r, _ := env.ranking(t, season.ID, a.ID)
	if r.Mmr != 1000 || r.Wins != 0 {
		t.Errorf("frozen ranking changed: %+v", r)
	}
}

func TestMidSeasonJoinPolicy(t *testing.T) {
	tests := []struct {
		policy      MidSeasonJoinPolicy
		wantRanking bool
	}{
		{MidSeasonSeed, true},
		{MidSeasonExclude, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			env := newTestEnv(t, tt.policy)
			k := env.kicker(t, "office")
			veteran := env.player(t, k.ID, "veteran")

			season, err := env.seasons.StartSeason(env.ctx, k.ID, "")
			if err != nil {
				t.Fatal(err)
			}
			newcomer := env.player(t, k.ID, "newcomer")

			_, ok := env.ranking(t, season.ID, newcomer.ID)
			if ok != tt.wantRanking {
				t.Fatalf("newcomer ranking present = %v, want %v", ok, tt.wantRanking)
			}

			m := env.oneOnOne(t, k.ID, newcomer, veteran)
			env.score(t, m.ID, newcomer.ID, 4)
			if _, err := env.matches.EndMatch(env.ctx, m.ID, models.EndMatchRequest{}); err != nil {
				t.Fatalf("EndMatch: %v", err)
			}

			if p := env.reload(t, newcomer.ID); p.Mmr != 1016 || p.Wins != 1 {
				t.Errorf("newcomer all-time = %d mmr, %d wins", p.Mmr, p.Wins)
			}
			r, ok := env.ranking(t, season.ID, newcomer.ID)
			if ok != tt.wantRanking {
				t.Fatalf("ranking appeared or vanished after the match")
			}
			if ok && (r.Mmr != 1016 || r.Wins != 1) {
				t.Errorf("newcomer ranking = %+v", r)
			}

			// The opponent's ranking moves regardless of policy.
			if r, _ := env.ranking(t, season.ID, veteran.ID); r.Mmr != 984 {
				t.Errorf("veteran ranking = %d, want 984", r.Mmr)
			}
		})
	}
}

func TestGetSeasonRankings(t *testing.T) {
	env := newTestEnv(t, MidSeasonSeed)
	k := env.kicker(t, "office")
	a := env.player(t, k.ID, "alice")
	b := env.player(t, k.ID, "bob")

	season, err := env.seasons.StartSeason(env.ctx, k.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	m := env.oneOnOne(t, k.ID, a, b)
	env.score(t, m.ID, b.ID, 2)
	if _, err := env.matches.EndMatch(env.ctx, m.ID, models.EndMatchRequest{}); err != nil {
		t.Fatal(err)
	}

	rankings, err := env.seasons.GetSeasonRankings(env.ctx, season.ID, models.ModeOneOnOne)
	if err != nil {
		t.Fatalf("GetSeasonRankings: %v", err)
	}
	if len(rankings) != 2 || rankings[0].PlayerID != b.ID || rankings[0].Player == nil {
		t.Errorf("rankings = %+v", rankings)
	}

	if _, err := env.seasons.GetSeasonRankings(env.ctx, 9999, models.ModeOneOnOne); !IsNotFound(err) {
		t.Errorf("unknown season: %v", err)
	}
}
