// Package domain holds the persisted entity model for the weighbridge
// transaction engine. All rows are tenant scoped.
package domain

const (
	SessionStatusOpen      = "open"
	SessionStatusWeighing  = "weighing"
	SessionStatusFinalized = "finalized"
	SessionStatusCancelled = "cancelled"
)

const (
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
)

// SessionStatusTerminal reports whether a session status admits no further
// transitions.
func SessionStatusTerminal(status string) bool {
	return status == SessionStatusFinalized || status == SessionStatusCancelled
}
