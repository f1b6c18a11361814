package audits

import (
	"fmt"
	"strings"
)

// Status is the extraction lifecycle state of an audit.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransition, s)
	}
}

// CanTransition reports whether the lifecycle permits moving to the target
// state. Legal transitions: pending→processing, processing→completed,
// processing→failed, and reprocessing from either terminal state back to
// pending.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted, StatusFailed:
		return to == StatusPending
	default:
		return false
	}
}

// Terminal reports whether the status is a resting state that permits
// reprocessing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
