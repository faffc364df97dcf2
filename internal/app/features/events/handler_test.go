package events_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/features/events"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	shiftstore "github.com/dalemusser/shiftboard/internal/app/store/shifts"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*events.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)
	return events.NewHandler(db, sm, nil, uierrors.NewErrorLogger(logger), logger), db
}

func call(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }() // render needs a template engine
		h(rec, req)
	}()
	return rec
}

func flashOf(t *testing.T, h *events.Handler, rec *httptest.ResponseRecorder) *auth.Flash {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "expected a flash cookie")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[len(cookies)-1])
	var got *auth.Flash
	h.SessionMgr.Flashes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FlashFrom(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	return got
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHandleCreate_AddsOwnerAsAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ada Lovelace", "ada@example.com")

	rec := call(h.HandleCreate, testutil.NewFormRequest("/events", url.Values{
		"name":            {"Spring Fair"},
		"date":            {"2026-04-18"},
		"timezone":        {"America/Chicago"},
		"description":     {"<b>Bring</b> water<script>alert(1)</script>"},
		"recurrence_rule": {"weekly"},
	}, testutil.UserFor(u.ID, u.FullName, u.Email)))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/events/"), "location %q", loc)

	list, err := eventstore.New(db).ListOwnedBy(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	ev := list[0]
	assert.Equal(t, "Spring Fair", ev.Name)
	assert.Equal(t, models.RecurrenceWeekly, ev.RecurrenceRule)
	assert.Equal(t, "America/Chicago", ev.TimeZone)
	assert.NotContains(t, ev.Description, "<script>")
	// Midnight in Chicago is 05:00 UTC during daylight time.
	assert.Equal(t, time.Date(2026, 4, 18, 5, 0, 0, 0, time.UTC), ev.Date.UTC())
	assert.Equal(t, "/events/"+ev.ID.Hex(), loc)

	ok, err := eventadminstore.New(db).IsAdmin(ctx, ev.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, ok, "creator should be an admin")
}

func TestHandleCreate_InvalidNotSaved(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	user := testutil.UserFor(u.ID, u.FullName, u.Email)

	cases := []url.Values{
		{"name": {""}, "date": {"2026-04-18"}, "timezone": {"UTC"}},
		{"name": {"Fair"}, "date": {"18/04/2026"}, "timezone": {"UTC"}},
		{"name": {"Fair"}, "date": {"2026-04-18"}, "timezone": {"Mars/Olympus"}},
		{"name": {"Fair"}, "date": {"2026-04-18"}, "timezone": {"UTC"}, "recurrence_rule": {"DAILY"}},
	}
	for _, form := range cases {
		rec := call(h.HandleCreate, testutil.NewFormRequest("/events", form, user))
		assert.NotEqual(t, http.StatusSeeOther, rec.Code, "form %v", form)
	}

	n, err := db.Collection("events").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleSettings_Updates(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, day(2026, 4, 18))

	req := testutil.NewFormRequest("/events/"+ev.ID.Hex()+"/settings", url.Values{
		"name":            {"Autumn Fair"},
		"date":            {"2026-10-03"},
		"timezone":        {"UTC"},
		"recurrence_rule": {"MONTHLY"},
	}, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := call(h.HandleSettings, gates.WithEvent(req, ev))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	got, err := eventstore.New(db).GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Autumn Fair", got.Name)
	assert.Equal(t, day(2026, 10, 3), got.Date.UTC())
	assert.Equal(t, models.RecurrenceMonthly, got.RecurrenceRule)
}

func TestHandleDelete_OwnerOnly(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	other := fx.CreateUser(ctx, "Grace Hopper", "grace@example.com")
	ev := fx.CreateEvent(ctx, "Fair", owner.ID, day(2026, 4, 18))
	require.NoError(t, eventadminstore.New(db).Add(ctx, ev.ID, other.ID))

	form := url.Values{"confirm_name": {"Fair"}}

	req := testutil.NewFormRequest("/events/x/delete", form, testutil.UserFor(other.ID, other.FullName, other.Email))
	rec := call(h.HandleDelete, gates.WithEvent(req, ev))
	assert.Equal(t, "/events/"+ev.ID.Hex()+"/settings", rec.Header().Get("Location"))
	_, err := eventstore.New(db).GetByID(ctx, ev.ID)
	require.NoError(t, err, "non-owner must not delete")

	req = testutil.NewFormRequest("/events/x/delete", url.Values{"confirm_name": {"Fai"}}, testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	call(h.HandleDelete, gates.WithEvent(req, ev))
	_, err = eventstore.New(db).GetByID(ctx, ev.ID)
	require.NoError(t, err, "wrong confirmation must not delete")

	req = testutil.NewFormRequest("/events/x/delete", url.Values{"confirm_name": {"fair"}}, testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec = call(h.HandleDelete, gates.WithEvent(req, ev))
	assert.Equal(t, "/events", rec.Header().Get("Location"))
	_, err = eventstore.New(db).GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestHandleClone_CopiesAndOffsetsShifts(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	src := fx.CreateEvent(ctx, "Fair", u.ID, day(2026, 3, 7))
	fx.CreateGroup(ctx, src.ID, "Ushers")
	fx.CreateVolunteer(ctx, src.ID, "Alan Turing", "Ushers")
	fx.CreateShift(ctx, src.ID, "Morning",
		time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC),
		map[string]int{"Ushers": 2})

	req := testutil.NewFormRequest("/events/x/clone", url.Values{
		"name":            {"Fair Again"},
		"date":            {"2026-03-14"},
		"copy_volunteers": {"on"},
		"copy_shifts":     {"on"},
	}, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := call(h.HandleClone, gates.WithEvent(req, src))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	owned, err := eventstore.New(db).ListOwnedBy(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	var clone models.Event
	for _, e := range owned {
		if e.ID != src.ID {
			clone = e
		}
	}
	assert.Equal(t, "Fair Again", clone.Name)
	assert.Equal(t, "/events/"+clone.ID.Hex(), rec.Header().Get("Location"))

	shifts, err := shiftstore.New(db).List(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), shifts[0].StartTime.UTC())
	assert.Equal(t, 2, shifts[0].RequiredGroups["Ushers"])

	vols, err := volunteerstore.New(db).List(ctx, clone.ID, "")
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, "Alan Turing", vols[0].Name)

	isAdmin, _ := eventadminstore.New(db).IsAdmin(ctx, clone.ID, u.ID)
	assert.True(t, isAdmin)
}

func TestHandleNext_RequiresRule(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, day(2026, 3, 7))

	req := testutil.NewFormRequest("/events/x/next", url.Values{}, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := call(h.HandleNext, gates.WithEvent(req, ev))

	assert.Equal(t, "/events/"+ev.ID.Hex()+"/settings", rec.Header().Get("Location"))
	assert.Equal(t, "Set a recurrence rule in Event Settings first (e.g. Weekly, Biweekly, Monthly).", flashOf(t, h, rec).Message)
	owned, _ := eventstore.New(db).ListOwnedBy(ctx, u.ID)
	assert.Len(t, owned, 1)
}

func TestHandleNext_WeeklySeries(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Sunday Service", u.ID, day(2026, 3, 1))
	_, err := db.Collection("events").UpdateOne(ctx, bson.M{"_id": ev.ID},
		bson.M{"$set": bson.M{"recurrence_rule": models.RecurrenceWeekly}})
	require.NoError(t, err)
	ev.RecurrenceRule = models.RecurrenceWeekly

	req := testutil.NewFormRequest("/events/x/next", url.Values{}, testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := call(h.HandleNext, gates.WithEvent(req, ev))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	owned, _ := eventstore.New(db).ListOwnedBy(ctx, u.ID)
	require.Len(t, owned, 2)
	for _, e := range owned {
		if e.ID == ev.ID {
			continue
		}
		assert.Equal(t, "Sunday Service – Mar 8, 2026", e.Name)
		assert.Equal(t, day(2026, 3, 8), e.Date.UTC())
		assert.Equal(t, models.RecurrenceWeekly, e.RecurrenceRule)
	}
}

func TestNextName(t *testing.T) {
	d := day(2026, 3, 8)
	assert.Equal(t, "Service – Mar 8, 2026", events.NextName("Service", d))
	assert.Equal(t, "Service – Mar 8, 2026", events.NextName("Service – Mar 1, 2026", d))
	// A dash that isn't a date suffix stays.
	assert.Equal(t, "Fair – East – Mar 8, 2026", events.NextName("Fair – East", d))
}
