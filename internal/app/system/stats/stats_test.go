package stats

import (
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCompute_Empty(t *testing.T) {
	d := Compute(Input{}, time.Now())
	assert.Zero(t, d.TotalSlots)
	assert.Zero(t, d.FillRate)
	assert.Empty(t, d.ShiftFill)
}

func TestCompute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := models.Shift{
		ID:             primitive.NewObjectID(),
		Name:           "Morning",
		StartTime:      now.Add(-4 * time.Hour),
		EndTime:        now.Add(-1 * time.Hour),
		RequiredGroups: map[string]int{"Medical": 1, "Runners": 2},
	}
	future := models.Shift{
		ID:             primitive.NewObjectID(),
		Name:           "Evening",
		StartTime:      now.Add(4 * time.Hour),
		EndTime:        now.Add(6 * time.Hour),
		RequiredGroups: map[string]int{"Runners": 1},
	}
	out := now.Add(-time.Hour)
	in := Input{
		Shifts: []models.Shift{future, past},
		Assignments: []models.Assignment{
			{ShiftID: past.ID, CheckedIn: true},                     // active
			{ShiftID: past.ID, CheckedIn: true, CheckedOutAt: &out}, // done
			{ShiftID: past.ID},                                      // late
			{ShiftID: future.ID},                                    // not late yet
			{ShiftID: past.ID, LateDismissed: true},                 // dismissed
		},
		Volunteers: []models.Volunteer{
			{Group: "Medical"}, {Group: "Runners"}, {Group: "Runners"}, {},
		},
	}

	d := Compute(in, now)
	assert.Equal(t, 4, d.TotalSlots)
	assert.Equal(t, 5, d.Filled)
	assert.Equal(t, 0, d.Unfilled)
	assert.Equal(t, 125, d.FillRate)
	assert.Equal(t, 5.0, d.TotalHours)
	assert.Equal(t, 2, d.CheckedIn)
	assert.Equal(t, 1, d.ActiveNow)
	assert.Equal(t, 1, d.Late)

	assert.Equal(t, []GroupCount{{"Runners", 2}, {"Medical", 1}, {models.UnassignedGroup, 1}}, d.VolunteersByGroup)

	require.Len(t, d.ShiftFill, 2)
	assert.Equal(t, "Morning", d.ShiftFill[0].Name, "sorted by start")
	assert.Equal(t, StatusFilled, d.ShiftFill[0].Status)
	assert.Equal(t, 0, d.ShiftFill[0].Remaining)
	assert.Equal(t, 1, d.ShiftFill[1].Filled)
	assert.Equal(t, StatusFilled, d.ShiftFill[1].Status)

	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, "Evening", d.Upcoming[0].Name)
}

func TestCompute_FillRateRounds(t *testing.T) {
	s := models.Shift{ID: primitive.NewObjectID(), RequiredGroups: map[string]int{"A": 3}}
	d := Compute(Input{
		Shifts:      []models.Shift{s},
		Assignments: []models.Assignment{{ShiftID: s.ID}},
	}, time.Now())
	assert.Equal(t, 33, d.FillRate)
	assert.Equal(t, 2, d.Unfilled)
	assert.Equal(t, 2, d.ShiftFill[0].Remaining)
	assert.Equal(t, StatusUnfilled, d.ShiftFill[0].Status)
}

func TestNormalizeGroups(t *testing.T) {
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, NormalizeGroups([]string{"A:2", "B"}))
}
