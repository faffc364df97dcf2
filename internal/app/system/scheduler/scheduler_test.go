package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOptimize_NotConfigured(t *testing.T) {
	c := New("", "", zap.NewNop())
	_, err := c.Optimize(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestOptimize_PostsRequest(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimize", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"assigned_shifts": {"s1": ["v1","v2"], "s2": "v3", "s3": null},
			"unfilled_shifts": ["s4"],
			"fairness_score": 0.82,
			"conflicts": [{"volunteer":"v9"}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", zap.NewNop())
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	resp, err := c.Optimize(context.Background(), Request{
		Volunteers:       []Volunteer{{ID: "v1", Name: "Ada", Group: "Medical", MaxHours: DefaultMaxHours}},
		UnassignedShifts: []Shift{{ID: "s1", Start: start, End: start.Add(time.Hour), RequiredGroups: map[string]int{"Medical": 2}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	require.Len(t, got.Volunteers, 1)
	assert.Equal(t, float64(999), got.Volunteers[0].MaxHours)
	assert.Equal(t, 2, got.UnassignedShifts[0].RequiredGroups["Medical"])

	plan, err := resp.Flatten()
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{ShiftID: "s1", VolunteerID: "v1"},
		{ShiftID: "s1", VolunteerID: "v2"},
		{ShiftID: "s2", VolunteerID: "v3"},
	}, plan.Assignments)
	assert.Equal(t, []string{"s3"}, plan.PartiallyFilled)
	assert.Equal(t, []string{"s4"}, plan.Unfilled)
	assert.True(t, plan.Partial())
	assert.Equal(t, 1, plan.Conflicts)
	require.NotNil(t, plan.FairnessScore)
	assert.InDelta(t, 0.82, *plan.FairnessScore, 1e-9)
}

func TestOptimize_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	_, err := c.Optimize(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestFlatten_BadValue(t *testing.T) {
	r := Response{AssignedShifts: map[string]json.RawMessage{"s1": json.RawMessage(`42`)}}
	_, err := r.Flatten()
	assert.Error(t, err)
}

func TestFlatten_Complete(t *testing.T) {
	r := Response{AssignedShifts: map[string]json.RawMessage{"s1": json.RawMessage(`["v1"]`)}}
	p, err := r.Flatten()
	require.NoError(t, err)
	assert.False(t, p.Partial())
}
