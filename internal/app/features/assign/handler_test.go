package assign_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/features/assign"
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	assignmentstore "github.com/dalemusser/shiftboard/internal/app/store/assignments"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/scheduler"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h    *assign.Handler
	sm   *auth.SessionManager
	db   *mongo.Database
	fx   *testutil.Fixtures
	ev   models.Event
	user testutil.TestUser
}

func setup(t *testing.T, sched *scheduler.Client) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, assignmentstore.New(db).EnsureIndexes(ctx))
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	if sched == nil {
		sched = scheduler.New("", "", logger)
	}
	return env{
		h:    assign.NewHandler(db, sm, sched, uierrors.NewErrorLogger(logger), logger),
		sm:   sm,
		db:   db,
		fx:   fx,
		ev:   ev,
		user: testutil.UserFor(u.ID, u.FullName, u.Email),
	}
}

func (e env) post(h http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	req := gates.WithEvent(testutil.NewFormRequest("/assign", form, e.user), e.ev)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// flash replays the response cookie through the flash middleware.
func (e env) flash(t *testing.T, rec *httptest.ResponseRecorder) *auth.Flash {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "expected a flash cookie")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[len(cookies)-1])
	var got *auth.Flash
	e.sm.Flashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FlashFrom(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	return got
}

func (e env) assignments(t *testing.T) []models.Assignment {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	list, err := assignmentstore.New(e.db).ListByEvent(ctx, e.ev.ID)
	require.NoError(t, err)
	return list
}

func TestHandleAssign_DuplicateAndOverstaffed(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	start := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	sh := e.fx.CreateShift(ctx, e.ev.ID, "Gate", start, start.Add(2*time.Hour), map[string]int{"Runners": 1})
	v1 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan", "Runners")
	v2 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Grace", "Runners")

	rec := e.post(e.h.HandleAssign, url.Values{"shift_id": {sh.ID.Hex()}, "volunteer_id": {v1.ID.Hex()}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.FlashSuccess, e.flash(t, rec).Kind)

	rec = e.post(e.h.HandleAssign, url.Values{"shift_id": {sh.ID.Hex()}, "volunteer_id": {v1.ID.Hex()}})
	f := e.flash(t, rec)
	assert.Equal(t, auth.FlashError, f.Kind)
	assert.Equal(t, "This volunteer is already assigned to this shift.", f.Message)

	rec = e.post(e.h.HandleAssign, url.Values{"shift_id": {sh.ID.Hex()}, "volunteer_id": {v2.ID.Hex()}})
	f = e.flash(t, rec)
	assert.Equal(t, auth.FlashWarning, f.Kind)
	assert.Equal(t, "This shift is now overstaffed. More volunteers are assigned than required.", f.Message)

	assert.Len(t, e.assignments(t), 2)
}

func TestHandleAssign_OtherEventShift(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	other := e.fx.CreateEvent(ctx, "Other", e.fx.CreateUser(ctx, "Bob", "bob@example.com").ID, time.Now())
	sh := e.fx.CreateShift(ctx, other.ID, "Gate", time.Now(), time.Now().Add(time.Hour), nil)
	v := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan", "")

	rec := e.post(e.h.HandleAssign, url.Values{"shift_id": {sh.ID.Hex()}, "volunteer_id": {v.ID.Hex()}})
	assert.Equal(t, "Shift not found.", e.flash(t, rec).Message)
	assert.Empty(t, e.assignments(t))
}

func TestUnassignSwapClear(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	start := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	s1 := e.fx.CreateShift(ctx, e.ev.ID, "Early", start, start.Add(time.Hour), map[string]int{"Any": 1})
	s2 := e.fx.CreateShift(ctx, e.ev.ID, "Late", start.Add(2*time.Hour), start.Add(3*time.Hour), map[string]int{"Any": 1})
	v1 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan", "")
	v2 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Grace", "")
	a1 := e.fx.CreateAssignment(ctx, e.ev.ID, s1.ID, v1.ID)
	a2 := e.fx.CreateAssignment(ctx, e.ev.ID, s2.ID, v2.ID)

	rec := e.post(e.h.HandleSwap, url.Values{"assignment_a": {a1.ID.Hex()}, "assignment_b": {a2.ID.Hex()}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, a := range e.assignments(t) {
		if a.ShiftID == s1.ID {
			assert.Equal(t, v2.ID, a.VolunteerID)
		} else {
			assert.Equal(t, v1.ID, a.VolunteerID)
		}
	}

	rec = e.post(e.h.HandleSwap, url.Values{"assignment_a": {a1.ID.Hex()}, "assignment_b": {a1.ID.Hex()}})
	assert.Equal(t, auth.FlashError, e.flash(t, rec).Kind)

	e.post(e.h.HandleUnassign, url.Values{"assignment_id": {a1.ID.Hex()}})
	assert.Len(t, e.assignments(t), 1)

	e.post(e.h.HandleClear, url.Values{})
	assert.Empty(t, e.assignments(t))
}

func TestHandleAuto(t *testing.T) {
	var got scheduler.Request
	var shiftA, shiftB, volA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"assigned_shifts":{"` + shiftA + `":["` + volA + `","ffffffffffffffffffffffff"],"` + shiftB + `":null},"unfilled_shifts":[]}`))
	}))
	defer srv.Close()

	e := setup(t, scheduler.New(srv.URL, "secret", zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()
	start := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	s1 := e.fx.CreateShift(ctx, e.ev.ID, "Early", start, start.Add(time.Hour), map[string]int{"Runners": 1})
	s2 := e.fx.CreateShift(ctx, e.ev.ID, "Late", start.Add(2*time.Hour), start.Add(3*time.Hour), map[string]int{"Runners": 2})
	v1 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan", "Runners")
	v2 := e.fx.CreateVolunteer(ctx, e.ev.ID, "Grace", "Runners")
	e.fx.CreateAssignment(ctx, e.ev.ID, s2.ID, v2.ID)
	shiftA, shiftB, volA = s1.ID.Hex(), s2.ID.Hex(), v1.ID.Hex()

	rec := e.post(e.h.HandleAuto, url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.Len(t, got.Volunteers, 2)
	assert.Equal(t, float64(scheduler.DefaultMaxHours), got.Volunteers[0].MaxHours)
	assert.Len(t, got.UnassignedShifts, 2)

	list := e.assignments(t)
	require.Len(t, list, 1, "old assignments replaced; unknown volunteer ids dropped")
	assert.Equal(t, s1.ID, list[0].ShiftID)
	assert.Equal(t, v1.ID, list[0].VolunteerID)

	f := e.flash(t, rec)
	assert.Equal(t, auth.FlashWarning, f.Kind)
	assert.True(t, strings.Contains(f.Message, "1 partially filled"), f.Message)
}

func TestHandleAuto_NotConfigured(t *testing.T) {
	e := setup(t, nil)
	rec := e.post(e.h.HandleAuto, url.Values{})
	assert.Equal(t, "Auto-assign is not configured on this server.", e.flash(t, rec).Message)
}

func TestServeBoard_Renders(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	sh := e.fx.CreateShift(ctx, e.ev.ID, "Gate", time.Now(), time.Now().Add(time.Hour), map[string]int{"Any": 1})
	v := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan", "")
	e.fx.CreateAssignment(ctx, e.ev.ID, sh.ID, v.ID)

	req := gates.WithEvent(testutil.NewAuthenticatedRequest(http.MethodGet, "/assign", e.user), e.ev)
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }() // render needs a template engine
		e.h.ServeBoard(rec, req)
	}()
	assert.NotEqual(t, http.StatusInternalServerError, rec.Code)
}
