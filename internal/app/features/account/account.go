// internal/app/features/account/account.go
package account

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type loginRow struct {
	When     string
	Provider string
	IP       string
}

type accountData struct {
	viewdata.BaseVM

	FullName    string
	Email       string
	AuthMethod  string
	HasPassword bool
	MemberSince string
	OwnedEvents int
	Logins      []loginRow
}

// ServeAccount renders GET /account.
func (h *Handler) ServeAccount(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	owned, err := h.Events.ListOwnedBy(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list owned events failed", err, "A database error occurred.", "/events")
		return
	}

	recent, err := h.Logins.ListRecent(ctx, uid, 5)
	if err != nil {
		h.Log.Warn("list recent logins failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}

	data := accountData{
		BaseVM:      viewdata.NewBaseVM(r, "Account", "/events"),
		FullName:    user.FullName,
		Email:       user.Email,
		AuthMethod:  formatAuthMethod(user.AuthMethod),
		HasPassword: user.PasswordHash != "",
		MemberSince: user.CreatedAt.Format("January 2, 2006"),
		OwnedEvents: len(owned),
	}
	for _, l := range recent {
		data.Logins = append(data.Logins, loginRow{
			When:     l.CreatedAt.Format("Jan 2, 2006 3:04 PM MST"),
			Provider: formatAuthMethod(l.Provider),
			IP:       l.IP,
		})
	}

	templates.Render(w, r, "account", data)
}

func formatAuthMethod(method string) string {
	switch method {
	case models.AuthPassword:
		return "Password"
	case models.AuthGoogle:
		return "Google"
	default:
		return method
	}
}
