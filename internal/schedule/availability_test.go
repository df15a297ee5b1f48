package schedule

import (
	"testing"
	"time"

	"github.com/mwhite/chorechamp/internal/model"
)

func assignment(freq model.Frequency, last *time.Time, active bool) model.Assignment {
	return model.Assignment{
		ID:              1,
		ChoreID:         1,
		PersonID:        1,
		Frequency:       freq,
		LastCompletedAt: last,
		IsActive:        active,
	}
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestIsAvailableInactive(t *testing.T) {
	if IsAvailable(assignment(model.FrequencyDaily, nil, false), time.Now()) {
		t.Error("inactive assignment must not be available")
	}
}

func TestIsAvailableNeverCompleted(t *testing.T) {
	for _, freq := range []model.Frequency{model.FrequencyOnce, model.FrequencyDaily, model.FrequencyWeekly} {
		if !IsAvailable(assignment(freq, nil, true), time.Now()) {
			t.Errorf("%s assignment never completed must be available", freq)
		}
	}
}

func TestIsAvailableOnceCompleted(t *testing.T) {
	last := at(2024, 1, 1, 10, 0)
	// Even while still active (stale record), a completed ONCE assignment
	// is done forever.
	if IsAvailable(assignment(model.FrequencyOnce, &last, true), at(2024, 3, 1, 10, 0)) {
		t.Error("completed ONCE assignment must not be available")
	}
}

func TestIsAvailableDaily(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"same day, seconds later", at(2024, 1, 1, 23, 59), at(2024, 1, 1, 23, 59), false},
		{"crossed midnight", at(2024, 1, 1, 23, 59), at(2024, 1, 2, 0, 0), true},
		{"same calendar day, hours apart", at(2024, 1, 1, 6, 0), at(2024, 1, 1, 22, 0), false},
		{"same day number, different month", at(2024, 1, 15, 10, 0), at(2024, 2, 15, 10, 0), true},
		{"same day and month, different year", at(2023, 1, 15, 10, 0), at(2024, 1, 15, 10, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAvailable(assignment(model.FrequencyDaily, &tt.last, true), tt.now)
			if got != tt.want {
				t.Errorf("IsAvailable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAvailableWeekly(t *testing.T) {
	// 2024-01-06 is a Saturday; the next reset boundary is Sunday 2024-01-07
	// at local midnight.
	saturday := at(2024, 1, 6, 15, 0)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"later the same saturday", at(2024, 1, 6, 20, 0), false},
		{"sunday morning", at(2024, 1, 7, 8, 0), true},
		{"following saturday morning", at(2024, 1, 13, 9, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAvailable(assignment(model.FrequencyWeekly, &saturday, true), tt.now)
			if got != tt.want {
				t.Errorf("IsAvailable = %v, want %v", got, tt.want)
			}
		})
	}

	// Completed on a Sunday: unavailable all that week, available the
	// following Sunday.
	sunday := at(2024, 1, 7, 9, 0)
	if IsAvailable(assignment(model.FrequencyWeekly, &sunday, true), at(2024, 1, 12, 18, 0)) {
		t.Error("completed this week, must wait for the Sunday boundary")
	}
	if !IsAvailable(assignment(model.FrequencyWeekly, &sunday, true), at(2024, 1, 14, 0, 30)) {
		t.Error("past the Sunday boundary, must be available")
	}
}

func TestIsAvailableUnknownFrequencyFailsOpen(t *testing.T) {
	last := at(2024, 1, 1, 10, 0)
	if !IsAvailable(assignment("MONTHLY", &last, true), at(2024, 1, 1, 12, 0)) {
		t.Error("unknown frequency must be treated as available")
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{"wednesday", at(2024, 1, 10, 15, 30), at(2024, 1, 7, 0, 0)},
		{"sunday midday", at(2024, 1, 7, 12, 0), at(2024, 1, 7, 0, 0)},
		{"sunday midnight", at(2024, 1, 7, 0, 0), at(2024, 1, 7, 0, 0)},
		{"saturday night", at(2024, 1, 13, 23, 59), at(2024, 1, 7, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartOfWeek(tt.t); !got.Equal(tt.want) {
				t.Errorf("StartOfWeek = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvailableTasksFilteringAndOrdering(t *testing.T) {
	now := at(2024, 1, 10, 9, 0)

	chores := []model.Chore{
		{ID: 1, Title: "Dishes", Points: 50},
		{ID: 2, Title: "Laundry", Points: 80},
		{ID: 3, Title: "Vacuum", Points: 30},
		{ID: 4, Title: "Windows", Points: 120},
	}

	dueEarly := "2024-01-11"
	dueLate := "2024-01-20"
	yesterday := at(2024, 1, 9, 18, 0)

	assignments := []model.Assignment{
		// Undated, lower points: sorts after the dated ones, before Vacuum.
		{ID: 1, ChoreID: 2, PersonID: 7, Frequency: model.FrequencyWeekly, IsActive: true},
		// Later due date: second.
		{ID: 2, ChoreID: 3, PersonID: 7, Frequency: model.FrequencyDaily, DueDate: &dueLate, IsActive: true, LastCompletedAt: &yesterday},
		// Earliest due date: first.
		{ID: 3, ChoreID: 1, PersonID: 7, Frequency: model.FrequencyDaily, DueDate: &dueEarly, IsActive: true},
		// Someone else's assignment: excluded.
		{ID: 4, ChoreID: 4, PersonID: 8, Frequency: model.FrequencyDaily, IsActive: true},
		// Dangling chore: excluded.
		{ID: 5, ChoreID: 99, PersonID: 7, Frequency: model.FrequencyDaily, IsActive: true},
		// Inactive: excluded.
		{ID: 6, ChoreID: 4, PersonID: 7, Frequency: model.FrequencyDaily, IsActive: false},
	}

	tasks := AvailableTasks(assignments, chores, 7, now)

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	wantOrder := []int64{3, 2, 1}
	for i, want := range wantOrder {
		if tasks[i].Assignment.ID != want {
			t.Errorf("tasks[%d].Assignment.ID = %d, want %d", i, tasks[i].Assignment.ID, want)
		}
	}
}

func TestAvailableTasksPointOrderingWhenUndated(t *testing.T) {
	now := at(2024, 1, 10, 9, 0)

	chores := []model.Chore{
		{ID: 1, Title: "Dishes", Points: 50},
		{ID: 2, Title: "Laundry", Points: 80},
		{ID: 3, Title: "Vacuum", Points: 30},
	}
	assignments := []model.Assignment{
		{ID: 1, ChoreID: 1, PersonID: 7, Frequency: model.FrequencyDaily, IsActive: true},
		{ID: 2, ChoreID: 2, PersonID: 7, Frequency: model.FrequencyDaily, IsActive: true},
		{ID: 3, ChoreID: 3, PersonID: 7, Frequency: model.FrequencyDaily, IsActive: true},
	}

	tasks := AvailableTasks(assignments, chores, 7, now)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, want := range []int{80, 50, 30} {
		if tasks[i].Chore.Points != want {
			t.Errorf("tasks[%d].Chore.Points = %d, want %d", i, tasks[i].Chore.Points, want)
		}
	}
}
