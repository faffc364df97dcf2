package broadcast_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/features/broadcast"
	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	sysbroadcast "github.com/dalemusser/shiftboard/internal/app/system/broadcast"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/shiftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type fakeSender struct {
	addr string
	mu   *sync.Mutex
	sent *[]mailer.Email
}

func (f fakeSender) Address() string { return f.addr }

func (f fakeSender) Send(_ context.Context, e mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.sent = append(*f.sent, e)
	return nil
}

type env struct {
	h    *broadcast.Handler
	fx   *testutil.Fixtures
	ev   models.Event
	user testutil.TestUser
	sent *[]mailer.Email
}

func setup(t *testing.T, accounts int) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	ev := fx.CreateEvent(ctx, "Fair", u.ID, time.Now())

	var mu sync.Mutex
	sent := &[]mailer.Email{}
	var senders []sysbroadcast.Sender
	for i := 0; i < accounts; i++ {
		senders = append(senders, fakeSender{addr: string(rune('a'+i)) + "@fair.example", mu: &mu, sent: sent})
	}
	return env{
		h:    broadcast.NewHandler(db, sm, senders, 2, uierrors.NewErrorLogger(logger), logger),
		fx:   fx,
		ev:   ev,
		user: testutil.UserFor(u.ID, u.FullName, u.Email),
		sent: sent,
	}
}

func (e env) volunteer(t *testing.T, name, email, group string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	v := e.fx.CreateVolunteer(ctx, e.ev.ID, name, group)
	if email != "" {
		_, err := e.fx.DB().Collection("volunteers").UpdateByID(ctx, v.ID, bson.M{"$set": bson.M{"email": email}})
		require.NoError(t, err)
	}
}

func (e env) send(form url.Values) *httptest.ResponseRecorder {
	req := gates.WithEvent(testutil.NewFormRequest("/broadcast", form, e.user), e.ev)
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }() // render needs a template engine
		e.h.HandleSend(rec, req)
	}()
	return rec
}

func TestHandleSend_GroupFilterAndBatches(t *testing.T) {
	e := setup(t, 3)
	e.volunteer(t, "Alan", "alan@example.com", "Medical")
	e.volunteer(t, "Grace", "grace@example.com", "Medical")
	e.volunteer(t, "Ada", "ada.v@example.com", "Medical")
	e.volunteer(t, "Linus", "linus@example.com", "Parking")
	e.volunteer(t, "Nobody", "", "Medical")

	rec := e.send(url.Values{"subject": {"Briefing"}, "body": {"Meet at 8.\nBring water."}, "group": {"Medical"}, "reply_to": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.Len(t, *e.sent, 2, "3 recipients in batches of 2")
	var bcc []string
	for _, m := range *e.sent {
		bcc = append(bcc, m.Bcc...)
		assert.Equal(t, "b@fair.example", m.ReplyTo)
		assert.Equal(t, "Briefing", m.Subject)
		assert.Contains(t, m.HTMLBody, "<br>")
	}
	sort.Strings(bcc)
	assert.Equal(t, []string{"ada.v@example.com", "alan@example.com", "grace@example.com"}, bcc)
}

func TestHandleSend_RequiresAccountsAndFields(t *testing.T) {
	e := setup(t, 2)
	e.volunteer(t, "Alan", "alan@example.com", "")
	rec := e.send(url.Values{"subject": {"Hi"}, "body": {"Hello"}})
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, *e.sent)

	e = setup(t, 3)
	e.volunteer(t, "Alan", "alan@example.com", "")
	for _, form := range []url.Values{
		{"subject": {""}, "body": {"Hello"}},
		{"subject": {"Hi"}, "body": {"  "}},
		{"subject": {"Hi"}, "body": {"Hello"}, "group": {"Nobody Here"}},
	} {
		rec := e.send(form)
		assert.NotEqual(t, http.StatusSeeOther, rec.Code, "form %v", form)
	}
	assert.Empty(t, *e.sent)
}
