// Package schedule decides which assignments are currently due. Everything
// here is pure: callers pass the evaluation instant, and the zone attached
// to it defines the calendar boundaries.
package schedule

import (
	"sort"
	"time"

	"github.com/mwhite/chorechamp/internal/model"
)

// IsAvailable reports whether the assignment is due at the given instant.
//
// DAILY resets when the calendar date changes, not on a rolling 24h window:
// finishing at 11:59pm makes the chore due again two minutes later. WEEKLY
// resets at Sunday midnight, not seven days after completion. An unknown
// frequency is treated as always due.
func IsAvailable(a model.Assignment, now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.LastCompletedAt == nil {
		return true
	}

	last := a.LastCompletedAt.In(now.Location())

	switch a.Frequency {
	case model.FrequencyOnce:
		// Completion already deactivated it; this is a double check for
		// stale records.
		return false
	case model.FrequencyDaily:
		ly, lm, ld := last.Date()
		ny, nm, nd := now.Date()
		return ly != ny || lm != nm || ld != nd
	case model.FrequencyWeekly:
		return last.Before(StartOfWeek(now))
	}
	return true
}

// StartOfWeek returns the most recent Sunday at local midnight on or before t.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(t.Weekday()))
}

// Task pairs an available assignment with its resolved chore.
type Task struct {
	Assignment model.Assignment `json:"assignment"`
	Chore      model.Chore      `json:"chore"`
}

// AvailableTasks filters a person's assignments down to those currently due
// and resolvable, ordered for display: due-dated entries first in ascending
// date order, then the rest by descending point value.
func AvailableTasks(assignments []model.Assignment, chores []model.Chore, personID int64, now time.Time) []Task {
	byID := make(map[int64]model.Chore, len(chores))
	for _, c := range chores {
		byID[c.ID] = c
	}

	var tasks []Task
	for _, a := range assignments {
		if a.PersonID != personID || !IsAvailable(a, now) {
			continue
		}
		chore, ok := byID[a.ChoreID]
		if !ok {
			// Dangling chore reference; skip silently.
			continue
		}
		tasks = append(tasks, Task{Assignment: a, Chore: chore})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := tasks[i].Assignment.DueDate, tasks[j].Assignment.DueDate
		switch {
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		case di != nil && dj != nil:
			// ISO dates order lexicographically; equal dates keep
			// insertion order.
			return *di < *dj
		}
		return tasks[i].Chore.Points > tasks[j].Chore.Points
	})

	return tasks
}
