package constants

// Pagination constants
const (
	// DefaultPage is used when the page query parameter is missing or invalid
	DefaultPage = 1
	// DefaultPageLimit is used when the limit query parameter is missing or invalid
	DefaultPageLimit = 10
	// MaxPageLimit caps the limit query parameter
	MaxPageLimit = 100
)

// Toggle constants
const (
	// DefaultMaxToggleAttempts bounds how often a toggle that lost a
	// concurrent insert on the same edge key is re-run
	DefaultMaxToggleAttempts = 5
)

// Entity names used in error messages and metrics labels
const (
	EntityUser     = "user"
	EntityVideo    = "video"
	EntityComment  = "comment"
	EntityTweet    = "tweet"
	EntityPlaylist = "playlist"
	EntityChannel  = "channel"
)

// Context keys
const (
	// ViewerKey is the gin context key holding the authenticated viewer id
	ViewerKey = "viewer_id"
)
