// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	contactstore "github.com/dalemusser/shiftboard/internal/app/store/contact"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/limits"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SuccessMessage is shown after a submission is stored.
const SuccessMessage = "Thanks for reaching out! We'll get back to you soon."

type formData struct {
	formutil.Base
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *contactstore.Store
	Mailer   *mailer.Mailer
	NotifyTo string
}

func NewHandler(db *mongo.Database, m *mailer.Mailer, notifyTo string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Store:    contactstore.New(db),
		Mailer:   m,
		NotifyTo: strings.TrimSpace(notifyTo),
	}
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	var data formData
	formutil.SetBase(&data.Base, r, "Contact us", "/")
	if u := data.UserEmail; u != "" {
		data.Email = u
	}
	templates.Render(w, r, "contact", data)
}

func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Bad request.", "/contact")
		return
	}

	data := formData{
		FirstName: normalize.Name(r.FormValue("first_name")),
		LastName:  normalize.Name(r.FormValue("last_name")),
		Email:     normalize.Email(r.FormValue("email")),
		Subject:   strings.TrimSpace(r.FormValue("subject")),
		Message:   strings.TrimSpace(r.FormValue("message")),
	}
	formutil.SetBase(&data.Base, r, "Contact us", "/")

	res := inputval.Validate(inputval.ContactInput{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Subject:   data.Subject,
		Message:   data.Message,
	})
	if res.HasErrors() {
		data.SetError(res.First())
		templates.Render(w, r, "contact", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Store.Create(ctx, models.ContactSubmission{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Subject:   data.Subject,
		Message:   data.Message,
		IP:        ratelimit.ClientIP(r),
	})
	if err != nil {
		h.Log.Error("contact: store submission failed", zap.Error(err))
		data.SetError("We couldn't send your message. Please try again.")
		templates.Render(w, r, "contact", data)
		return
	}

	h.notify(r.Context(), data)

	sent := formData{}
	formutil.SetBase(&sent.Base, r, "Contact us", "/")
	sent.Success = SuccessMessage
	templates.Render(w, r, "contact", sent)
}

// notify emails staff when SMTP is configured. Failures are logged only.
func (h *Handler) notify(parent context.Context, data formData) {
	if h.Mailer == nil || !h.Mailer.Configured() || h.NotifyTo == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 15*time.Second)
	defer cancel()

	msg := mailer.BuildContactNotification(mailer.ContactData{
		SiteName:  viewdata.SiteName,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Subject:   data.Subject,
		Message:   data.Message,
	})
	msg.To = []string{h.NotifyTo}
	msg.ReplyTo = data.Email
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Log.Warn("contact: notification email failed", zap.Error(err))
	}
}
