// Package gates holds the per-event authorization gate.
//
// Route-level middleware (auth.RequireSignedIn) proves who the user is.
// EventAccess then proves they may manage the event named in the URL:
// the user must hold an event_admins row for it. The loaded event is
// stored in the request context so handlers don't read it again.
package gates

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventadminstore "github.com/dalemusser/shiftboard/internal/app/store/eventadmins"
	eventstore "github.com/dalemusser/shiftboard/internal/app/store/events"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EventParam is the chi URL parameter carrying the event id.
const EventParam = "eventID"

type ctxKey struct{}

// EventGate checks event admin membership.
type EventGate struct {
	events *eventstore.Store
	admins *eventadminstore.Store
	log    *zap.Logger
}

// NewEventGate builds a gate over the events and event_admins collections.
func NewEventGate(db *mongo.Database, logger *zap.Logger) *EventGate {
	return &EventGate{
		events: eventstore.New(db),
		admins: eventadminstore.New(db),
		log:    logger,
	}
}

// EventAccess loads {eventID}, requires the signed-in user to administer it
// and stores the event in context. Unknown ids get 404, outsiders 403.
func (g *EventGate) EventAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, uid, ok := authz.UserCtx(r)
		if !ok {
			deny(w, r, http.StatusUnauthorized, "")
			return
		}

		eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, EventParam))
		if err != nil {
			deny(w, r, http.StatusNotFound, "Event not found.")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		ev, err := g.events.GetByID(ctx, eventID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			deny(w, r, http.StatusNotFound, "Event not found.")
			return
		}
		if err != nil {
			g.log.Error("event gate: load event failed", zap.Error(err), zap.String("event_id", eventID.Hex()))
			deny(w, r, http.StatusInternalServerError, "")
			return
		}

		isAdmin, err := g.admins.IsAdmin(ctx, eventID, uid)
		if err != nil {
			g.log.Error("event gate: admin lookup failed", zap.Error(err), zap.String("event_id", eventID.Hex()))
			deny(w, r, http.StatusInternalServerError, "")
			return
		}
		if !isAdmin {
			deny(w, r, http.StatusForbidden, "You do not have access to this event.")
			return
		}

		next.ServeHTTP(w, WithEvent(r, ev))
	})
}

// EventFrom returns the event stored by EventAccess.
func EventFrom(r *http.Request) (models.Event, bool) {
	ev, ok := r.Context().Value(ctxKey{}).(models.Event)
	return ev, ok
}

// WithEvent stores ev in the request context. Tests use it to skip the gate.
func WithEvent(r *http.Request, ev models.Event) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, ev))
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if !wantsHTML(r) {
		if msg == "" {
			msg = http.StatusText(status)
		}
		http.Error(w, msg, status)
		return
	}
	switch status {
	case http.StatusUnauthorized:
		uierrors.RenderUnauthorized(w, r, "/login")
	case http.StatusNotFound:
		uierrors.RenderNotFound(w, r, msg, "/events")
	case http.StatusForbidden:
		uierrors.RenderForbidden(w, r, msg, "/events")
	default:
		http.Error(w, "Something went wrong.", status)
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}
