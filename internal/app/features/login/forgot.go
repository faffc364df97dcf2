// internal/app/features/login/forgot.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ForgotSentMessage is shown whether or not the account exists.
const ForgotSentMessage = "If an account exists for that email, a reset link has been sent."

// demoEmail never receives mail; it is the address printed in the docs.
const demoEmail = "test@example.com"

func (h *Handler) ServeForgot(w http.ResponseWriter, r *http.Request) {
	var data forgotFormData
	formutil.SetBase(&data.Base, r, "Reset your password", "/login")
	templates.Render(w, r, "forgot_password", data)
}

func (h *Handler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/forgot-password")
		return
	}

	data := forgotFormData{Email: normalize.Email(r.FormValue("email"))}
	formutil.SetBase(&data.Base, r, "Reset your password", "/login")

	if !inputval.IsValidEmail(data.Email) {
		data.SetError("Please enter a valid email address.")
		templates.Render(w, r, "forgot_password", data)
		return
	}

	if data.Email != demoEmail {
		h.sendReset(r, data.Email)
	}

	data.Success = ForgotSentMessage
	templates.Render(w, r, "forgot_password", data)
}

// sendReset issues a token and mails the link. Every failure is logged and
// swallowed so the response never reveals whether the account exists.
func (h *Handler) sendReset(r *http.Request, email string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.AuditLog.PasswordResetRequested(ctx, r, email)

	if h.ResetLimiter != nil && !h.ResetLimiter.Allow(email) {
		h.Log.Warn("forgot password: reset mail limit reached", zap.String("email", email))
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return
	}
	if err != nil {
		h.Log.Error("forgot password: user lookup failed", zap.Error(err))
		return
	}

	token, err := h.Resets.Create(ctx, u.ID, u.Email)
	if err != nil {
		h.Log.Error("forgot password: create token failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		return
	}

	if h.Mailer == nil || !h.Mailer.Configured() {
		h.Log.Warn("forgot password: mail not configured; reset link not sent", zap.String("user_id", u.ID.Hex()))
		return
	}

	msg := mailer.BuildPasswordResetEmail(mailer.PasswordResetData{
		SiteName:  viewdata.SiteName,
		ResetLink: strings.TrimRight(h.BaseURL, "/") + "/reset-password/" + token,
		ExpiresIn: humanDuration(h.Resets.Expiry()),
	})
	msg.To = []string{u.Email}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Log.Error("forgot password: send failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
}
