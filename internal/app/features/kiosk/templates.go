// internal/app/features/kiosk/templates.go
package kiosk

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "kiosk",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
