// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
const (
	// MaxCSVUploadSize bounds volunteer and shift CSV uploads.
	MaxCSVUploadSize = 5 << 20 // 5 MB

	// MaxFormSize bounds ordinary form posts (settings, broadcast body).
	MaxFormSize = 1 << 20 // 1 MB

	// MaxBeaconSize bounds analytics page-view, event and error payloads.
	MaxBeaconSize = 16 << 10 // 16 KB
)
