package home

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public marketing pages.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type tier struct {
	Name     string
	Price    string
	Features []string
}

type pageData struct {
	viewdata.BaseVM
	Tiers []tier
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", pageData{BaseVM: viewdata.NewBaseVM(r, "Volunteer scheduling made simple", "/")})
}

func (h *Handler) ServeFeatures(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "features", pageData{BaseVM: viewdata.NewBaseVM(r, "Features", "/")})
}

func (h *Handler) ServePricing(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "pricing", pageData{
		BaseVM: viewdata.NewBaseVM(r, "Pricing", "/"),
		Tiers:  pricingTiers(),
	})
}

func (h *Handler) ServeHelp(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "help", pageData{BaseVM: viewdata.NewBaseVM(r, "Help", "/")})
}

func pricingTiers() []tier {
	return []tier{
		{Name: "Community", Price: "Free", Features: []string{
			"Unlimited events", "Up to 100 volunteers per event", "CSV import and export",
		}},
		{Name: "Organizer", Price: "$19/mo", Features: []string{
			"Everything in Community", "Auto-assign", "Kiosk check-in", "Asset tracking",
		}},
		{Name: "Festival", Price: "Contact us", Features: []string{
			"Everything in Organizer", "Email broadcasts", "Shared admin teams",
		}},
	}
}
