package recipe

import "strings"

// Status describes the recipe lifecycle label used by domain decisions.
type Status string

const (
	StatusUnspecified Status = ""
	StatusDraft       Status = "draft"
	StatusSaved       Status = "saved"
	StatusSubmitted   Status = "submitted"
	StatusApproved    Status = "approved"
	StatusOrdered     Status = "ordered"
	StatusCompleted   Status = "completed"
	StatusArchived    Status = "archived"
	StatusRejected    Status = "rejected"
)

// allowedTransitions is the authoritative lifecycle table. A status absent
// from a source's target set is not reachable from it; archived is terminal.
var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusSaved},
	StatusSaved:     {StatusSubmitted, StatusDraft},
	StatusSubmitted: {StatusApproved, StatusRejected, StatusDraft},
	StatusApproved:  {StatusOrdered},
	StatusOrdered:   {StatusCompleted},
	StatusCompleted: {StatusArchived},
	StatusRejected:  {StatusDraft},
	StatusArchived:  {},
}

// privilegedTransitions marks transitions that require an approver identity.
var privilegedTransitions = map[Status][]Status{
	StatusSubmitted: {StatusApproved, StatusRejected},
}

// ParseStatus canonicalizes a recipe status label.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusSaved:
		return StatusSaved, true
	case StatusSubmitted:
		return StatusSubmitted, true
	case StatusApproved:
		return StatusApproved, true
	case StatusOrdered:
		return StatusOrdered, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusArchived:
		return StatusArchived, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return StatusUnspecified, false
	}
}

// IsStatusTransitionAllowed reports whether a lifecycle transition is permitted.
func IsStatusTransitionAllowed(from, to Status) bool {
	return statusListContains(allowedTransitions[from], to)
}

// TransitionRequiresPrivilege reports whether a transition needs an approver.
func TransitionRequiresPrivilege(from, to Status) bool {
	return statusListContains(privilegedTransitions[from], to)
}

// AllowedTargets returns the target set reachable from a status.
func AllowedTargets(from Status) []Status {
	targets := allowedTransitions[from]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

func statusListContains(list []Status, target Status) bool {
	for _, candidate := range list {
		if candidate == target {
			return true
		}
	}
	return false
}
