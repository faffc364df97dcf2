package share_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/features/share"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h    *share.Handler
	sm   *auth.SessionManager
	db   *mongo.Database
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
	require.NoError(t, eventadminstore.New(db).EnsureIndexes(ctx))
	require.NoError(t, invitationstore.New(db).EnsureIndexes(ctx))
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))

	return env{
		h:    share.NewHandler(db, sm, nil, "https://shiftboard.test", uierrors.NewErrorLogger(logger), logger),
		sm:   sm,
		db:   db,
		fx:   fx,
		ev:   ev,
		user: testutil.UserFor(u.ID, u.FullName, u.Email),
	}
}

func (e env) post(h http.HandlerFunc, user testutil.TestUser, form url.Values, token string) *httptest.ResponseRecorder {
	req := gates.WithEvent(testutil.NewFormRequest("/share", form, user), e.ev)
	if token != "" {
		req = testutil.WithChiURLParam(req, "token", token)
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

func (e env) pending(t *testing.T) []models.Invitation {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	list, err := invitationstore.New(e.db).ListPending(ctx, e.ev.ID)
	require.NoError(t, err)
	return list
}

func TestHandleInvite_WithoutMailerShowsLink(t *testing.T) {
	e := setup(t)

	rec := e.post(e.h.HandleInvite, e.user, url.Values{"email": {" Grace@Example.com "}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events/"+e.ev.ID.Hex()+"/share", rec.Header().Get("Location"))

	list := e.pending(t)
	require.Len(t, list, 1)
	assert.Equal(t, "grace@example.com", list[0].Email)

	f := e.flash(t, rec)
	assert.Equal(t, auth.FlashWarning, f.Kind)
	assert.True(t, strings.Contains(f.Message, "https://shiftboard.test/invite/"+list[0].Token), f.Message)
}

func TestHandleInvite_Rejects(t *testing.T) {
	e := setup(t)

	rec := e.post(e.h.HandleInvite, e.user, url.Values{"email": {"grace@example.com"}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cases := map[string]string{
		"pending":       "grace@example.com",
		"invalid":       "not-an-email",
		"already admin": "ada@example.com",
	}
	for name, email := range cases {
		rec := e.post(e.h.HandleInvite, e.user, url.Values{"email": {email}}, "")
		assert.NotEqual(t, http.StatusSeeOther, rec.Code, name)
	}
	assert.Len(t, e.pending(t), 1)
}

func TestHandleRevoke(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	inv, err := invitationstore.New(e.db).Create(ctx, e.ev.ID, "grace@example.com", e.fx.CreateUser(ctx, "X", "x@example.com").ID)
	require.NoError(t, err)

	rec := e.post(e.h.HandleRevoke, e.user, url.Values{"invitation_id": {inv.ID.Hex()}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Invitation revoked.", e.flash(t, rec).Message)
	assert.Empty(t, e.pending(t))

	rec = e.post(e.h.HandleRevoke, e.user, url.Values{"invitation_id": {inv.ID.Hex()}}, "")
	assert.Equal(t, auth.FlashError, e.flash(t, rec).Kind)
}

func TestHandleRemove_LastAdmin(t *testing.T) {
	e := setup(t)

	rec := e.post(e.h.HandleRemove, e.user, url.Values{"user_id": {e.user.ID}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	f := e.flash(t, rec)
	assert.Equal(t, auth.FlashError, f.Kind)
	assert.Equal(t, "Cannot remove the last admin.", f.Message)
}

func TestAcceptThenLeave(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	grace := e.fx.CreateUser(ctx, "Grace Hopper", "grace@example.com")
	graceUser := testutil.UserFor(grace.ID, grace.FullName, grace.Email)

	e.post(e.h.HandleInvite, e.user, url.Values{"email": {"grace@example.com"}}, "")
	list := e.pending(t)
	require.Len(t, list, 1)

	rec := e.post(e.h.HandleAccept, graceUser, url.Values{}, list[0].Token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events/"+e.ev.ID.Hex(), rec.Header().Get("Location"))
	assert.Equal(t, "You now help manage Fair.", e.flash(t, rec).Message)

	admins := eventadminstore.New(e.db)
	ok, err := admins.IsAdmin(ctx, e.ev.ID, grace.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Grace leaves; Ada remains the only admin.
	rec = e.post(e.h.HandleRemove, graceUser, url.Values{"user_id": {grace.ID.Hex()}}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events", rec.Header().Get("Location"))
	ok, err = admins.IsAdmin(ctx, e.ev.ID, grace.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleAccept_EmailMismatch(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	bob := e.fx.CreateUser(ctx, "Bob", "bob@example.com")

	e.post(e.h.HandleInvite, e.user, url.Values{"email": {"grace@example.com"}}, "")
	list := e.pending(t)
	require.Len(t, list, 1)

	rec := e.post(e.h.HandleAccept, testutil.UserFor(bob.ID, bob.FullName, bob.Email), url.Values{}, list[0].Token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.FlashError, e.flash(t, rec).Kind)

	ok, err := eventadminstore.New(e.db).IsAdmin(ctx, e.ev.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, e.pending(t), 1, "invitation stays pending")
}

func TestHandleDecline(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	grace := e.fx.CreateUser(ctx, "Grace Hopper", "grace@example.com")

	e.post(e.h.HandleInvite, e.user, url.Values{"email": {"grace@example.com"}}, "")
	list := e.pending(t)
	require.Len(t, list, 1)

	rec := e.post(e.h.HandleDecline, testutil.UserFor(grace.ID, grace.FullName, grace.Email), url.Values{}, list[0].Token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Invitation declined.", e.flash(t, rec).Message)
	assert.Empty(t, e.pending(t))
}
