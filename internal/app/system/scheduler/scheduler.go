// Package scheduler is the client for the external shift optimizer that
// powers auto-assign. The optimizer is a separate service.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no optimizer URL is set.
var ErrNotConfigured = errors.New("auto-assign is not configured")

// DefaultMaxHours is sent for volunteers without a limit; the optimizer
// requires a number.
const DefaultMaxHours = 999

const optimizePath = "/optimize"

type Volunteer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Group    string  `json:"group"`
	MaxHours float64 `json:"max_hours"`
}

type Shift struct {
	ID             string         `json:"id"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	RequiredGroups map[string]int `json:"required_groups"`
}

type Pair struct {
	ShiftID     string `json:"shift_id"`
	VolunteerID string `json:"volunteer_id"`
}

// Request is the optimizer's input document.
type Request struct {
	Volunteers         []Volunteer `json:"volunteers"`
	UnassignedShifts   []Shift     `json:"unassigned_shifts"`
	CurrentAssignments []Pair      `json:"current_assignments"`
}

// Response is the optimizer's answer. AssignedShifts values may be a list,
// a single id or null; null marks a shift the optimizer could only
// partially fill.
type Response struct {
	AssignedShifts map[string]json.RawMessage `json:"assigned_shifts"`
	UnfilledShifts []string                   `json:"unfilled_shifts"`
	FairnessScore  *float64                   `json:"fairness_score,omitempty"`
	Conflicts      []json.RawMessage          `json:"conflicts,omitempty"`
}

// Plan is Response flattened into assignments.
type Plan struct {
	Assignments     []Pair
	Unfilled        []string
	PartiallyFilled []string
	FairnessScore   *float64
	Conflicts       int
}

// Partial reports whether some shifts could not be fully staffed.
func (p Plan) Partial() bool {
	return len(p.Unfilled) > 0 || len(p.PartiallyFilled) > 0
}

// Flatten converts the raw response into assignment pairs.
func (r Response) Flatten() (Plan, error) {
	p := Plan{
		Unfilled:      r.UnfilledShifts,
		FairnessScore: r.FairnessScore,
		Conflicts:     len(r.Conflicts),
	}
	ids := make([]string, 0, len(r.AssignedShifts))
	for id := range r.AssignedShifts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, shiftID := range ids {
		raw := r.AssignedShifts[shiftID]
		if len(raw) == 0 || string(raw) == "null" {
			p.PartiallyFilled = append(p.PartiallyFilled, shiftID)
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			var one string
			if err2 := json.Unmarshal(raw, &one); err2 != nil {
				return Plan{}, fmt.Errorf("shift %s: unexpected assignment value %s", shiftID, raw)
			}
			many = []string{one}
		}
		for _, vid := range many {
			if vid != "" {
				p.Assignments = append(p.Assignments, Pair{ShiftID: shiftID, VolunteerID: vid})
			}
		}
	}
	return p, nil
}

// Client calls the optimizer over HTTP.
type Client struct {
	httpClient *resty.Client
	configured bool
	logger     *zap.Logger
}

// New creates a client. An empty baseURL yields a client whose Optimize
// returns ErrNotConfigured.
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{httpClient: client, configured: baseURL != "", logger: logger}
}

// Configured reports whether an optimizer URL was set.
func (c *Client) Configured() bool { return c != nil && c.configured }

// Optimize posts req to /optimize and returns the decoded response.
func (c *Client) Optimize(ctx context.Context, req Request) (Response, error) {
	if !c.Configured() {
		return Response{}, ErrNotConfigured
	}

	c.logger.Info("calling scheduler",
		zap.Int("volunteers", len(req.Volunteers)),
		zap.Int("shifts", len(req.UnassignedShifts)))

	var out Response
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(optimizePath)
	if err != nil {
		c.logger.Error("scheduler call failed", zap.Error(err))
		return Response{}, fmt.Errorf("scheduler request: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("scheduler returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 512)))
		return Response{}, fmt.Errorf("API Error: %d %s", resp.StatusCode(), httpStatusText(resp))
	}
	if out.AssignedShifts == nil && len(resp.Body()) > 0 {
		// resty leaves out untouched when the body is not JSON
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return Response{}, errors.New("API returned invalid JSON response")
		}
	}
	return out, nil
}

func httpStatusText(resp *resty.Response) string {
	s := resp.Status()
	if s == "" {
		return "error"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
