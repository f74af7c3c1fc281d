package store

import (
	"sort"

	"github.com/lifelog/lifelog-server/internal/model"
)

// ComputeHealthStats folds health entries within [start, end] into averages
// and the longest run of consecutive recorded days. Shared by backends so
// every driver reports identical statistics.
func ComputeHealthStats(entries []*model.HealthEntry, start, end model.Date) *model.HealthStats {
	stats := &model.HealthStats{Period: start.String() + " to " + end.String()}
	if len(entries) == 0 {
		return stats
	}
	sorted := append([]*model.HealthEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var water, steps, calories, calorieDays int
	for _, e := range sorted {
		water += e.Water
		steps += e.Steps
		if e.Calories != nil {
			calories += *e.Calories
			calorieDays++
		}
	}
	n := len(sorted)
	stats.TotalDays = n
	stats.AvgWater = float64(water) / float64(n)
	stats.AvgSteps = float64(steps) / float64(n)
	if calorieDays > 0 {
		avg := float64(calories) / float64(calorieDays)
		stats.AvgCalories = &avg
	}

	streak, best := 1, 1
	for i := 1; i < n; i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date.AddDays(1)) {
			streak++
		} else {
			streak = 1
		}
		if streak > best {
			best = streak
		}
	}
	stats.Streak = best
	return stats
}
