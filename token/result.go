package token

// Result reports what EnsureFresh did to a session's tokens.
type Result int

const (
	// Unchanged means no refresh was needed.
	Unchanged Result = iota
	// Refreshed means new tokens were obtained and stored.
	Refreshed
	// RefreshFailed means a refresh was attempted and failed; the previous tokens were kept.
	RefreshFailed
)

func (r Result) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Refreshed:
		return "refreshed"
	case RefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}
