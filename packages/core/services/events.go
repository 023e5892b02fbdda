package services

import (
	"time"

	"kicker-api/packages/core/models"
)

type MatchEventType string

const (
	EventMatchCreated   MatchEventType = "match_created"
	EventGoalScored     MatchEventType = "goal_scored"
	EventGoalUndone     MatchEventType = "goal_undone"
	EventMatchEnded     MatchEventType = "match_ended"
	EventMatchCancelled MatchEventType = "match_cancelled"
)

type MatchEvent struct {
	Type     MatchEventType `json:"type"`
	KickerID uint           `json:"kicker_id"`
	MatchID  uint           `json:"match_id"`
	Match    *models.Match  `json:"match,omitempty"`
	Goal     *models.Goal   `json:"goal,omitempty"`
	At       time.Time      `json:"at"`
}

// Notifier receives match lifecycle events after they are committed.
// Delivery is fire-and-forget: Publish must not block and has no error.
type Notifier interface {
	Publish(event MatchEvent)
}

type NopNotifier struct{}

func (NopNotifier) Publish(MatchEvent) {}
