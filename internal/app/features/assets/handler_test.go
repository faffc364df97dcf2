package assets_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/features/assets"
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	h    *assets.Handler
	sm   *auth.SessionManager
	fx   *testutil.Fixtures
	ev   models.Event
	user testutil.TestUser
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	return env{
		h:    assets.NewHandler(db, sm, uierrors.NewErrorLogger(logger), logger),
		sm:   sm,
		fx:   fx,
		ev:   ev,
		user: testutil.UserFor(u.ID, u.FullName, u.Email),
	}
}

func (e env) post(h http.HandlerFunc, form url.Values, assetID string) *httptest.ResponseRecorder {
	req := gates.WithEvent(testutil.NewFormRequest("/assets", form, e.user), e.ev)
	if assetID != "" {
		req = testutil.WithChiURLParam(req, "assetID", assetID)
	}
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }() // render needs a template engine
		h(rec, req)
	}()
	return rec
}

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

func (e env) asset(t *testing.T, a models.Asset) models.Asset {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := e.h.OnSite.Assets.GetByID(ctx, e.ev.ID, a.ID)
	require.NoError(t, err)
	return got
}

func TestHandleCreate(t *testing.T) {
	e := setup(t)
	rec := e.post(e.h.HandleCreate, url.Values{"name": {"  Radio   7 "}, "type": {"Radio"}, "identifier": {"SN-7"}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Radio 7 added.", e.flash(t, rec).Message)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	list, err := e.h.OnSite.Assets.List(ctx, e.ev.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Radio 7", list[0].Name)
	assert.Equal(t, models.AssetAvailable, list[0].Status)

	rec = e.post(e.h.HandleCreate, url.Values{"name": {""}}, "")
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestHandleAssignAndReturn_LogsActivity(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	radio := e.fx.CreateAsset(ctx, e.ev.ID, "Radio 1")
	v := e.fx.CreateVolunteer(ctx, e.ev.ID, "Alan Turing", "")

	rec := e.post(e.h.HandleAssign, url.Values{"volunteer_id": {v.ID.Hex()}}, radio.ID.Hex())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	got := e.asset(t, radio)
	assert.Equal(t, models.AssetAssigned, got.Status)
	require.NotNil(t, got.VolunteerID)
	assert.Equal(t, v.ID, *got.VolunteerID)

	// A second hand-out is refused.
	grace := e.fx.CreateVolunteer(ctx, e.ev.ID, "Grace", "")
	rec = e.post(e.h.HandleAssign, url.Values{"volunteer_id": {grace.ID.Hex()}}, radio.ID.Hex())
	f := e.flash(t, rec)
	assert.Equal(t, auth.FlashError, f.Kind)
	assert.Equal(t, "Radio 1 is already checked out.", f.Message)

	rec = e.post(e.h.HandleReturn, url.Values{}, radio.ID.Hex())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, models.AssetAvailable, e.asset(t, radio).Status)

	feed, err := e.h.OnSite.Activity.ListByEvent(ctx, e.ev.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "Radio 1 returned by Alan Turing.", feed[0].Description)
	assert.Equal(t, "Radio 1 checked out to Alan Turing.", feed[1].Description)
}

func TestHandleHandOut_FromActivePage(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	vest := e.fx.CreateAsset(ctx, e.ev.ID, "Vest 3")
	v := e.fx.CreateVolunteer(ctx, e.ev.ID, "Grace Hopper", "")

	rec := e.post(e.h.HandleHandOut, url.Values{
		"asset_id":     {vest.ID.Hex()},
		"volunteer_id": {v.ID.Hex()},
		"back":         {"active"},
	}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events/"+e.ev.ID.Hex()+"/active", rec.Header().Get("Location"))
	assert.Equal(t, models.AssetAssigned, e.asset(t, vest).Status)
}

func TestHandleEditAndDelete(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	radio := e.fx.CreateAsset(ctx, e.ev.ID, "Radio 1")

	rec := e.post(e.h.HandleEdit, url.Values{"name": {"Radio One"}, "type": {"Radio"}}, radio.ID.Hex())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	got := e.asset(t, radio)
	assert.Equal(t, "Radio One", got.Name)
	assert.Equal(t, "Radio", got.Type)

	rec = e.post(e.h.HandleDelete, url.Values{}, radio.ID.Hex())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list, err := e.h.OnSite.Assets.List(ctx, e.ev.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHandleDelete_OtherEvent(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := e.fx.CreateUser(ctx, "Grace", "grace@example.com")
	other := e.fx.CreateEvent(ctx, "Other", owner.ID, time.Now())
	radio := e.fx.CreateAsset(ctx, other.ID, "Radio 1")

	rec := e.post(e.h.HandleDelete, url.Values{}, radio.ID.Hex())
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
	list, err := e.h.OnSite.Assets.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
