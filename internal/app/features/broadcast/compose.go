// internal/app/features/broadcast/compose.go
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/broadcast"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const msgNotConfigured = "Broadcast email is not configured on this server."

type composeForm struct {
	Subject string
	Body    string
	Group   string
	ReplyTo int
}

type accountOption struct {
	Value    int
	Address  string
	Selected bool
}

type groupOption struct {
	Name  string
	Count int
}

type composeData struct {
	formutil.EventBase

	Ready      bool
	Accounts   []accountOption
	Groups     []groupOption
	Recipients int
	Form       composeForm
}

func composeURL(ev models.Event) string { return "/events/" + ev.ID.Hex() + "/broadcast" }

// ServeCompose renders GET /events/{eventID}/broadcast.
func (h *Handler) ServeCompose(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	h.render(w, r, ev, composeForm{ReplyTo: 1}, "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, ev models.Event, form composeForm, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vols, err := h.Volunteers.ListWithEmail(ctx, ev.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list volunteers with email failed", err, "A database error occurred.", "/events/"+ev.ID.Hex())
		return
	}

	data := composeData{
		Ready:      len(h.Senders) >= broadcast.MinAccounts,
		Recipients: len(vols),
		Form:       form,
	}
	for i, s := range h.Senders {
		data.Accounts = append(data.Accounts, accountOption{Value: i + 1, Address: s.Address(), Selected: i+1 == form.ReplyTo})
	}
	counts := map[string]int{}
	var order []string
	for _, v := range vols {
		if v.Group == "" {
			continue
		}
		if _, ok := counts[v.Group]; !ok {
			order = append(order, v.Group)
		}
		counts[v.Group]++
	}
	for _, g := range order {
		data.Groups = append(data.Groups, groupOption{Name: g, Count: counts[g]})
	}

	formutil.SetEventBase(&data.EventBase, r, ev, "Broadcast", "broadcast")
	switch {
	case msg != "":
		data.SetError(msg)
	case !data.Ready:
		data.SetError(msgNotConfigured)
	}
	templates.Render(w, r, "broadcast_compose", data)
}

// HandleSend processes POST /events/{eventID}/broadcast.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ev, _ := gates.EventFrom(r)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", composeURL(ev))
		return
	}
	form := composeForm{
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Body:    strings.TrimSpace(r.FormValue("body")),
		Group:   normalize.Group(r.FormValue("group")),
	}
	form.ReplyTo, _ = strconv.Atoi(r.FormValue("reply_to"))

	switch {
	case len(h.Senders) < broadcast.MinAccounts:
		h.render(w, r, ev, form, msgNotConfigured)
		return
	case form.Subject == "":
		h.render(w, r, ev, form, "Subject is required.")
		return
	case form.Body == "":
		h.render(w, r, ev, form, "Message is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	vols, err := h.Volunteers.ListWithEmail(ctx, ev.ID, form.Group)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list recipients failed", err, "A database error occurred.", composeURL(ev))
		return
	}
	recipients := make([]string, 0, len(vols))
	for _, v := range vols {
		recipients = append(recipients, v.Email)
	}

	res, err := broadcast.Dispatch(ctx, h.Senders, broadcast.Message{
		Subject:        form.Subject,
		Body:           form.Body,
		ReplyToAccount: form.ReplyTo,
	}, recipients, h.BatchSize)
	if errors.Is(err, broadcast.ErrNoRecipients) {
		h.render(w, r, ev, form, "No volunteers with an email address match this selection.")
		return
	}
	if err != nil {
		h.Log.Error("broadcast failed", zap.Error(err), zap.String("event_id", ev.ID.Hex()), zap.Strings("errors", res.Errors))
		h.render(w, r, ev, form, "The message could not be sent. Check the mail settings and try again.")
		return
	}

	h.Log.Info("broadcast sent",
		zap.String("event_id", ev.ID.Hex()),
		zap.Int("batches", res.Batches),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))

	if res.Failed > 0 {
		h.Log.Warn("broadcast partially failed", zap.Strings("errors", res.Errors))
		h.SessionMgr.AddFlash(w, r, auth.FlashWarning,
			fmt.Sprintf("Sent to %d volunteers; %d could not be reached.", res.Sent, res.Failed))
	} else {
		h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, fmt.Sprintf("Sent to %d volunteers.", res.Sent))
	}
	http.Redirect(w, r, composeURL(ev), http.StatusSeeOther)
}
