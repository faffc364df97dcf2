package account_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/features/account"
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	volunteerstore "github.com/dalemusser/shiftboard/internal/app/store/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*account.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return account.NewHandler(db, sm, nil, uierrors.NewErrorLogger(logger), logger), db
}

func createPasswordUser(t *testing.T, db *mongo.Database, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := userstore.New(db).CreateWithPassword(ctx, "Ada Lovelace", "ada@example.com", password)
	if err != nil {
		t.Fatalf("CreateWithPassword failed: %v", err)
	}
	return u
}

func call(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }() // render needs a template engine
		h(rec, req)
	}()
	return rec
}

func passwordMatches(t *testing.T, db *mongo.Database, u models.User, pw string) bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	return authutil.CheckPassword(pw, got.PasswordHash)
}

func TestHandleUpdatePassword_RequiresCurrent(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "Original-Pass-1")
	user := testutil.UserFor(u.ID, u.FullName, u.Email)

	call(h.HandleUpdatePassword, testutil.NewFormRequest("/account/update-password", url.Values{
		"current_password": {"Wrong-Pass-123"},
		"new_password":     {"Brand-New-Pass-2"},
		"confirm_password": {"Brand-New-Pass-2"},
	}, user))

	if !passwordMatches(t, db, u, "Original-Pass-1") {
		t.Error("password changed without the correct current password")
	}
}

func TestHandleUpdatePassword_Success(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "Original-Pass-1")
	user := testutil.UserFor(u.ID, u.FullName, u.Email)

	rec := call(h.HandleUpdatePassword, testutil.NewFormRequest("/account/update-password", url.Values{
		"current_password": {"Original-Pass-1"},
		"new_password":     {"Brand-New-Pass-2"},
		"confirm_password": {"Brand-New-Pass-2"},
	}, user))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if !passwordMatches(t, db, u, "Brand-New-Pass-2") {
		t.Error("expected new password to be stored")
	}
}

func TestHandleUpdatePassword_ResetFlagSkipsCurrent(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "Original-Pass-1")
	user := testutil.UserFor(u.ID, u.FullName, u.Email)

	// Simulate a redeemed reset link.
	flagRec := httptest.NewRecorder()
	if err := h.SessionMgr.SetFlag(flagRec, httptest.NewRequest("POST", "/reset-password/x", nil), auth.ResetKey, true); err != nil {
		t.Fatalf("SetFlag failed: %v", err)
	}

	req := testutil.NewFormRequest("/account/update-password", url.Values{
		"new_password":     {"Brand-New-Pass-2"},
		"confirm_password": {"Brand-New-Pass-2"},
	}, user)
	for _, c := range flagRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := call(h.HandleUpdatePassword, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if !passwordMatches(t, db, u, "Brand-New-Pass-2") {
		t.Error("expected reset flow to set the new password")
	}
}

func TestHandleUpdatePassword_MismatchRejected(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "Original-Pass-1")

	call(h.HandleUpdatePassword, testutil.NewFormRequest("/account/update-password", url.Values{
		"current_password": {"Original-Pass-1"},
		"new_password":     {"Brand-New-Pass-2"},
		"confirm_password": {"Brand-New-Pass-3"},
	}, testutil.UserFor(u.ID, u.FullName, u.Email)))

	if !passwordMatches(t, db, u, "Original-Pass-1") {
		t.Error("mismatched confirmation must not change the password")
	}
}

func TestHandleDelete_CascadesOwnedEvents(t *testing.T) {
	h, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	other := fx.CreateUser(ctx, "Grace Hopper", "grace@example.com")
	mine := fx.CreateEvent(ctx, "Marathon", owner.ID, time.Now().AddDate(0, 1, 0))
	theirs := fx.CreateEvent(ctx, "Fun Run", other.ID, time.Now().AddDate(0, 1, 0))
	fx.CreateVolunteer(ctx, mine.ID, "Vol One", "")
	fx.CreateVolunteer(ctx, theirs.ID, "Vol Two", "")

	rec := call(h.HandleDelete, testutil.NewFormRequest("/account/delete", url.Values{"confirm": {"DELETE"}},
		testutil.UserFor(owner.ID, owner.FullName, owner.Email)))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := userstore.New(db).GetByID(ctx, owner.ID); err == nil {
		t.Error("expected user to be deleted")
	}
	if _, err := eventstore.New(db).GetByID(ctx, mine.ID); err == nil {
		t.Error("expected owned event to be deleted")
	}
	if n, _ := volunteerstore.New(db).CountByEvent(ctx, mine.ID); n != 0 {
		t.Errorf("expected owned event volunteers removed, got %d", n)
	}
	if _, err := eventstore.New(db).GetByID(ctx, theirs.ID); err != nil {
		t.Errorf("other user's event must survive: %v", err)
	}
}

func TestHandleDelete_RequiresConfirmWord(t *testing.T) {
	h, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")

	call(h.HandleDelete, testutil.NewFormRequest("/account/delete", url.Values{"confirm": {"delete please"}},
		testutil.UserFor(owner.ID, owner.FullName, owner.Email)))

	if _, err := userstore.New(db).GetByID(ctx, owner.ID); err != nil {
		t.Errorf("account deleted without confirmation: %v", err)
	}
}

func TestHandleTutorialComplete(t *testing.T) {
	h, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")

	req := testutil.NewAuthenticatedRequest("POST", "/account/tutorial-complete", testutil.UserFor(u.ID, u.FullName, u.Email))
	rec := httptest.NewRecorder()
	h.HandleTutorialComplete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	got, _ := userstore.New(db).GetByID(ctx, u.ID)
	if !got.HasCompletedTutorial {
		t.Error("expected tutorial flag to be set")
	}
}

func TestHandleTutorialComplete_SignedOut(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.HandleTutorialComplete(rec, httptest.NewRequest("POST", "/account/tutorial-complete", strings.NewReader("")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
