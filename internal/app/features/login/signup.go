// internal/app/features/login/signup.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.uber.org/zap"
)

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, _, _, ok := authzUser(r); ok {
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}
	h.renderSignup(w, r, "", "", "")
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	name := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")

	if res := inputval.ValidateSignup(inputval.SignupInput{FullName: name, Email: email, Password: password}); res.HasErrors() {
		h.renderSignup(w, r, name, email, res.First())
		return
	}
	if password != r.FormValue("confirm_password") {
		h.renderSignup(w, r, name, email, "Passwords do not match.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.CreateWithPassword(ctx, name, email, password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.renderSignup(w, r, name, email, "An account with this email already exists. Try signing in.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create user failed", err, "We couldn't create your account. Please try again.", "/signup")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed after signup", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.Logins.CreateFrom(ctx, r, u.ID, models.AuthPassword); err != nil {
		h.Log.Warn("login record insert failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	h.AuditLog.Signup(ctx, r, u.ID, models.AuthPassword)

	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Welcome to Shiftboard! Create your first event to get started.")
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
