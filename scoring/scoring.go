// Package scoring turns objectives and accumulated progress into point totals.
// Everything here is pure computation: no I/O, no state, no error returns.
// Malformed input (a progress record pointing at an unknown objective) is
// skipped, not reported.
package scoring

import (
	"time"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/progress"
)

// PointsForObjective computes the points one objective is worth at the given
// accumulated value. With capPoints set, credit beyond the target value is
// discarded. Negative values pass through unclamped; an entry edit that drives
// the sum negative shows up as negative points.
func PointsForObjective(obj challenge.Objective, currentValue int, capPoints bool) int {
	effective := currentValue
	if capPoints && effective > obj.TargetValue {
		effective = obj.TargetValue
	}
	return effective * obj.PointsPerUnit
}

// TotalPoints computes a user's score for one challenge from pre-aggregated
// progress records. The rule applied depends on the challenge type:
//
//   - standard, bingo, weekly: points-per-unit sum, optionally capped per
//     objective. Weekly differs from standard only by its creation-time
//     window validation, not by scoring.
//   - completion: sum of the records' values. The caller supplies one record
//     per calendar day with value 1 when every objective was logged that day,
//     so the sum is "days completed".
//   - collection, checklist: count of objectives with at least one unit
//     logged. Rates and targets are ignored; each objective counts at most once.
func TotalPoints(objectives []challenge.Objective, records []progress.ProgressRecord, capPoints bool, challengeType challenge.ChallengeType) int {
	switch challengeType {
	case challenge.TypeCompletion:
		return CompletionDays(records)
	case challenge.TypeCollection, challenge.TypeChecklist:
		return CompletedObjectives(objectives, records)
	default:
		byID := objectivesByID(objectives)
		total := 0
		for _, rec := range records {
			obj, ok := byID[rec.ObjectiveID.String()]
			if !ok {
				continue
			}
			total += PointsForObjective(obj, rec.CurrentValue, capPoints)
		}
		return total
	}
}

// CompletionDays sums the values of date-normalized completion records.
func CompletionDays(records []progress.ProgressRecord) int {
	days := 0
	for _, rec := range records {
		days += rec.CurrentValue
	}
	return days
}

// CompletedObjectives counts how many known objectives have accumulated at
// least one unit. Used as the numerator of the collection/checklist ratio.
func CompletedObjectives(objectives []challenge.Objective, records []progress.ProgressRecord) int {
	byID := objectivesByID(objectives)
	completed := 0
	for _, rec := range records {
		if _, ok := byID[rec.ObjectiveID.String()]; !ok {
			continue
		}
		if rec.CurrentValue >= 1 {
			completed++
		}
	}
	return completed
}

// TotalChallengeDays returns the inclusive day count of a challenge window,
// the denominator for completion-type percentages.
func TotalChallengeDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

func objectivesByID(objectives []challenge.Objective) map[string]challenge.Objective {
	byID := make(map[string]challenge.Objective, len(objectives))
	for _, obj := range objectives {
		byID[obj.ID.String()] = obj
	}
	return byID
}
