package utils

import "math"

const (
	// KFactor scales every rating change.
	KFactor = 32.0

	// DefaultRating is the starting MMR of a new player and of every
	// season ranking seeded at season start.
	DefaultRating = 1000
)

// Outcome is a match result from one side's point of view.
type Outcome int

const (
	Loss Outcome = 0
	Win  Outcome = 1
)

// OutcomeFor converts a win flag to an Outcome.
func OutcomeFor(won bool) Outcome {
	if won {
		return Win
	}
	return Loss
}

// ExpectedScore returns the expected score of A against B:
// E = 1 / (1 + 10^((ratingB - ratingA) / 400))
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400))
}

// ComputeRatingChange returns A's rating delta: K * (S - E).
// B's delta is the negation.
func ComputeRatingChange(ratingA, ratingB float64, resultForA Outcome) float64 {
	return KFactor * (float64(resultForA) - ExpectedScore(ratingA, ratingB))
}

// RoundedRatingChange is ComputeRatingChange rounded half away from zero.
// Ratings are stored as integers, so rounding happens once per match and
// the opponent receives exactly the negated value.
func RoundedRatingChange(ratingA, ratingB float64, resultForA Outcome) int {
	return int(math.Round(ComputeRatingChange(ratingA, ratingB, resultForA)))
}

// TeamRating is the mean rating of a side. A 1-on-1 side is its single player.
func TeamRating(ratings ...int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
