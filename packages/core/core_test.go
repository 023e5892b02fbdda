package core_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kicker-api/packages/core"
	"kicker-api/packages/core/handlers"
	"kicker-api/packages/core/models"
	"kicker-api/packages/core/realtime"
	"kicker-api/packages/core/testutil"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	module *core.Module
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	module := core.NewModule(testutil.NewDB(t), core.Options{}, nil)
	r := gin.New()
	module.SetupRoutes(r)
	return &api{t: t, router: r, module: module}
}

func (a *api) do(method, path string, body interface{}, out interface{}) int {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func (a *api) mustDo(method, path string, body interface{}, want int, out interface{}) {
	a.t.Helper()
	if got := a.do(method, path, body, out); got != want {
		a.t.Fatalf("%s %s = %d, want %d", method, path, got, want)
	}
}

func (a *api) setup() (kicker models.Kicker, alice, bob models.Player) {
	a.mustDo(http.MethodPost, "/kickers", gin.H{"name": "office"}, http.StatusCreated, &kicker)
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/players", kicker.ID), gin.H{"name": "alice"}, http.StatusCreated, &alice)
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/players", kicker.ID), gin.H{"name": "bob"}, http.StatusCreated, &bob)
	return kicker, alice, bob
}

func TestMatchLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	kicker, alice, bob := a.setup()
	matchesPath := fmt.Sprintf("/kickers/%d/matches", kicker.ID)

	var match models.Match
	a.mustDo(http.MethodPost, matchesPath, gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusCreated, &match)
	a.mustDo(http.MethodPost, matchesPath, gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusConflict, nil)

	goalsPath := fmt.Sprintf("/matches/%d/goals", match.ID)
	var resp handlers.GoalResponse
	for i := 0; i < 3; i++ {
		a.mustDo(http.MethodPost, goalsPath, gin.H{"player_id": alice.ID}, http.StatusCreated, &resp)
	}
	a.mustDo(http.MethodPost, goalsPath, gin.H{"player_id": alice.ID, "own_goal": true}, http.StatusCreated, &resp)
	if resp.Match.Score1 != 3 || resp.Match.Score2 != 1 || resp.Goal.Type != models.GoalOwn {
		t.Fatalf("after own goal: %+v / %+v", resp.Match, resp.Goal)
	}

	a.mustDo(http.MethodDelete, goalsPath+"/last", nil, http.StatusOK, &resp)
	if resp.Match.Score2 != 0 {
		t.Errorf("undo left score2 = %d", resp.Match.Score2)
	}

	var goals []models.Goal
	a.mustDo(http.MethodGet, goalsPath, nil, http.StatusOK, &goals)
	if len(goals) != 3 {
		t.Errorf("goal log = %d entries", len(goals))
	}

	endPath := fmt.Sprintf("/matches/%d/end", match.ID)
	a.mustDo(http.MethodPost, endPath, gin.H{"score1": 5, "score2": 5}, http.StatusBadRequest, nil)

	var ended models.Match
	a.mustDo(http.MethodPost, endPath, nil, http.StatusOK, &ended)
	if ended.Status != models.MatchStatusEnded || ended.MmrChange == nil || *ended.MmrChange != 16 {
		t.Errorf("ended = %+v", ended)
	}
	a.mustDo(http.MethodPost, endPath, nil, http.StatusConflict, nil)
	a.mustDo(http.MethodDelete, fmt.Sprintf("/matches/%d", match.ID), nil, http.StatusConflict, nil)

	var board []models.Player
	a.mustDo(http.MethodGet, fmt.Sprintf("/kickers/%d/leaderboard?mode=1on1", kicker.ID), nil, http.StatusOK, &board)
	if len(board) != 2 || board[0].ID != alice.ID || board[0].Mmr != 1016 {
		t.Errorf("leaderboard = %+v", board)
	}

	var history []models.MmrHistory
	a.mustDo(http.MethodGet, fmt.Sprintf("/players/%d/mmr-history", bob.ID), nil, http.StatusOK, &history)
	if len(history) != 1 || history[0].MmrChange != -16 {
		t.Errorf("bob history = %+v", history)
	}

	var stats models.Stats
	a.mustDo(http.MethodGet, fmt.Sprintf("/kickers/%d/stats", kicker.ID), nil, http.StatusOK, &stats)
	if stats.EndedMatches != 1 || stats.TotalGoals != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestErrorStatuses(t *testing.T) {
	a := newAPI(t)
	kicker, alice, _ := a.setup()

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"invalid id", http.MethodGet, "/kickers/abc", nil, http.StatusBadRequest},
		{"unknown kicker", http.MethodGet, "/kickers/999", nil, http.StatusNotFound},
		{"unknown kicker stats", http.MethodGet, "/kickers/999/stats", nil, http.StatusNotFound},
		{"duplicate kicker", http.MethodPost, "/kickers", gin.H{"name": "office"}, http.StatusConflict},
		{"missing name", http.MethodPost, "/kickers", gin.H{}, http.StatusBadRequest},
		{"duplicate player", http.MethodPost, fmt.Sprintf("/kickers/%d/players", kicker.ID), gin.H{"name": "alice"}, http.StatusConflict},
		{"same player twice", http.MethodPost, fmt.Sprintf("/kickers/%d/matches", kicker.ID), gin.H{"player1_id": alice.ID, "player2_id": alice.ID}, http.StatusBadRequest},
		{"no active match", http.MethodGet, fmt.Sprintf("/kickers/%d/matches/active", kicker.ID), nil, http.StatusNotFound},
		{"no active season", http.MethodPost, fmt.Sprintf("/kickers/%d/seasons/end", kicker.ID), nil, http.StatusConflict},
		{"bad mode", http.MethodGet, fmt.Sprintf("/kickers/%d/leaderboard?mode=3on3", kicker.ID), nil, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, fmt.Sprintf("/kickers/%d/matches?status=pending", kicker.ID), nil, http.StatusBadRequest},
		{"unknown match", http.MethodPost, "/matches/999/end", nil, http.StatusNotFound},
		{"unknown player", http.MethodGet, "/players/999/matches", nil, http.StatusNotFound},
		{"both filters", http.MethodGet, fmt.Sprintf("/players/%d/matches?wins=1&losses=1", alice.ID), nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.do(tt.method, tt.path, tt.body, nil); got != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestEndMatchBodyOfUnknownLength(t *testing.T) {
	a := newAPI(t)
	kicker, alice, bob := a.setup()

	var match models.Match
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/matches", kicker.ID),
		gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusCreated, &match)
	a.mustDo(http.MethodPost, fmt.Sprintf("/matches/%d/goals", match.ID),
		gin.H{"player_id": bob.ID}, http.StatusCreated, nil)

	endChunked := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/matches/%d/end", match.ID), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		return w
	}

	if w := endChunked(`{"score1":100,"score2":3}`); w.Code != http.StatusBadRequest {
		t.Fatalf("score above cap = %d, want 400: %s", w.Code, w.Body.String())
	}

	w := endChunked(`{"score1":10,"score2":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("end = %d: %s", w.Code, w.Body.String())
	}
	var ended models.Match
	if err := json.Unmarshal(w.Body.Bytes(), &ended); err != nil {
		t.Fatal(err)
	}
	if ended.Score1 != 10 || ended.Score2 != 3 {
		t.Fatalf("score = %d-%d, want 10-3", ended.Score1, ended.Score2)
	}

	var got models.Player
	a.mustDo(http.MethodGet, fmt.Sprintf("/players/%d", alice.ID), nil, http.StatusOK, &got)
	if got.Mmr != 1016 || got.Wins != 1 {
		t.Errorf("alice = mmr %d wins %d, want 1016 and 1", got.Mmr, got.Wins)
	}
}

func TestEndMatchWithoutBodyUsesGoalLog(t *testing.T) {
	a := newAPI(t)
	kicker, alice, bob := a.setup()

	var match models.Match
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/matches", kicker.ID),
		gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusCreated, &match)
	a.mustDo(http.MethodPost, fmt.Sprintf("/matches/%d/goals", match.ID),
		gin.H{"player_id": bob.ID}, http.StatusCreated, nil)

	var ended models.Match
	a.mustDo(http.MethodPost, fmt.Sprintf("/matches/%d/end", match.ID), nil, http.StatusOK, &ended)
	if ended.Score1 != 0 || ended.Score2 != 1 {
		t.Errorf("score = %d-%d, want 0-1", ended.Score1, ended.Score2)
	}
}

func TestSeasonsOverHTTP(t *testing.T) {
	a := newAPI(t)
	kicker, alice, bob := a.setup()

	var season models.Season
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/seasons", kicker.ID), gin.H{"name": "Autumn"}, http.StatusCreated, &season)
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/seasons", kicker.ID), nil, http.StatusConflict, nil)

	var active models.Season
	a.mustDo(http.MethodGet, fmt.Sprintf("/kickers/%d/seasons/active", kicker.ID), nil, http.StatusOK, &active)
	if active.ID != season.ID {
		t.Errorf("active season = %d, want %d", active.ID, season.ID)
	}

	var match models.Match
	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/matches", kicker.ID), gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusCreated, &match)
	a.mustDo(http.MethodPost, fmt.Sprintf("/matches/%d/end", match.ID), gin.H{"score1": 4, "score2": 10}, http.StatusOK, nil)

	var rankings []models.SeasonRanking
	a.mustDo(http.MethodGet, fmt.Sprintf("/seasons/%d/rankings?mode=1on1", season.ID), nil, http.StatusOK, &rankings)
	if len(rankings) != 2 || rankings[0].PlayerID != bob.ID || rankings[0].Mmr != 1016 {
		t.Errorf("rankings = %+v", rankings)
	}

	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/seasons/end", kicker.ID), nil, http.StatusOK, nil)

	var seasons []models.Season
	a.mustDo(http.MethodGet, fmt.Sprintf("/kickers/%d/seasons", kicker.ID), nil, http.StatusOK, &seasons)
	if len(seasons) != 1 || seasons[0].IsActive {
		t.Errorf("seasons = %+v", seasons)
	}
}

func TestLiveFeed(t *testing.T) {
	a := newAPI(t)
	if err := a.module.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(a.module.Stop)

	kicker, alice, bob := a.setup()
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/kickers/%d/live", kicker.ID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for a.module.Hub.Subscribers(kicker.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	a.mustDo(http.MethodPost, fmt.Sprintf("/kickers/%d/matches", kicker.ID), gin.H{"player1_id": alice.ID, "player2_id": bob.ID}, http.StatusCreated, nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg realtime.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "match_created" {
		t.Errorf("event = %s", msg.Type)
	}

	if got := a.do(http.MethodGet, "/kickers/999/live", nil, nil); got != http.StatusNotFound {
		t.Errorf("live feed for unknown kicker = %d", got)
	}
}
