// internal/app/features/terms/handler.go
package terms

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type pageData struct {
	viewdata.BaseVM
	Updated string
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

const lastUpdated = "March 1, 2026"

func (h *Handler) ServeTerms(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "terms", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Terms of Service", "/"),
		Updated: lastUpdated,
	})
}

func (h *Handler) ServePrivacy(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "privacy", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Privacy Policy", "/"),
		Updated: lastUpdated,
	})
}
