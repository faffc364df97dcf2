// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/authz"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the title bar and footer.
const SiteName = "Shiftboard"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn           bool
	Role                 string
	UserName             string
	UserEmail            string
	HasCompletedTutorial bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// One-shot banner from the previous request
	Flash *auth.Flash
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Flash:       auth.FlashFrom(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.UserEmail = u.Email
		vm.HasCompletedTutorial = u.HasCompletedTutorial
	}
	return vm
}

// EventVM is the base for pages under /events/{eventID}. Tab selects the
// highlighted entry in the event navigation.
type EventVM struct {
	BaseVM
	EventID   string
	EventName string
	EventDate string
	TimeZone  string
	Tab       string
}

// NewEventVM creates an EventVM for the given event and tab.
func NewEventVM(r *http.Request, e models.Event, title, tab string) EventVM {
	return EventVM{
		BaseVM:    NewBaseVM(r, title, "/events"),
		EventID:   e.ID.Hex(),
		EventName: e.Name,
		EventDate: e.Date.In(e.Location()).Format("Mon, Jan 2, 2006"),
		TimeZone:  e.TimeZone,
		Tab:       tab,
	}
}
