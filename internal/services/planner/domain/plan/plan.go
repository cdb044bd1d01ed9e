// Package plan holds the weekly meal plan aggregate: plans, meal slots,
// proposed alternatives, and the append-only change ledger.
package plan

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

// Status is the lifecycle status of a weekly plan.
type Status string

const (
	// StatusUnspecified is the zero value for plan statuses.
	StatusUnspecified Status = ""
	// StatusDraft is a plan being assembled.
	StatusDraft Status = "draft"
	// StatusActive is the plan currently in use.
	StatusActive Status = "active"
	// StatusCompleted is a plan whose week has been cooked through.
	StatusCompleted Status = "completed"
	// StatusArchived is a plan put away for reference.
	StatusArchived Status = "archived"
)

var allowedStatusTransitions = map[Status][]Status{
	StatusDraft:     {StatusActive},
	StatusActive:    {StatusCompleted, StatusArchived},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {StatusDraft},
}

// ParseStatus parses a plan status from its string form.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusActive:
		return StatusActive, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusArchived:
		return StatusArchived, true
	default:
		return StatusUnspecified, false
	}
}

// IsStatusTransitionAllowed reports whether from -> to is a legal plan transition.
func IsStatusTransitionAllowed(from, to Status) bool {
	for _, target := range allowedStatusTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// IsLocked reports whether a plan in the given status rejects slot edits.
func (s Status) IsLocked() bool {
	return s == StatusCompleted || s == StatusArchived
}

// WeeklyPlan is one user's plan for a single week. WeekEnd is derived and
// always WeekStart plus six days.
type WeeklyPlan struct {
	ID        string
	UserID    string
	WeekStart time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeekEnd is the last day covered by the plan, inclusive.
func (p WeeklyPlan) WeekEnd() time.Time {
	return p.WeekStart.AddDate(0, 0, 6)
}

// ContainsDay reports whether day falls inside the plan's week.
func (p WeeklyPlan) ContainsDay(day time.Time) bool {
	day = normalizeDay(day)
	return !day.Before(p.WeekStart) && !day.After(p.WeekEnd())
}

// CreateWeeklyPlanInput describes the metadata needed to start a plan.
type CreateWeeklyPlanInput struct {
	UserID    string
	WeekStart time.Time
}

// CreateWeeklyPlan creates a new draft plan with a generated ID and timestamps.
func CreateWeeklyPlan(input CreateWeeklyPlanInput, now func() time.Time, idGenerator func() (string, error)) (WeeklyPlan, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return WeeklyPlan{}, apperrors.New(apperrors.CodePlanUserRequired, "plan user is required")
	}
	if input.WeekStart.IsZero() {
		return WeeklyPlan{}, apperrors.New(apperrors.CodePlanInvalidWeekStart, "plan week start is required")
	}
	weekStart := normalizeDay(input.WeekStart)
	if weekStart.Weekday() != time.Monday {
		return WeeklyPlan{}, apperrors.WithMetadata(
			apperrors.CodePlanInvalidWeekStart,
			fmt.Sprintf("plan week must start on a Monday, got %s", weekStart.Weekday()),
			map[string]string{"WeekStart": weekStart.Format(dayFormat)},
		)
	}

	planID, err := idGenerator()
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("generate plan id: %w", err)
	}

	createdAt := now().UTC()
	return WeeklyPlan{
		ID:        planID,
		UserID:    input.UserID,
		WeekStart: weekStart,
		Status:    StatusDraft,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// TransitionStatus applies a plan lifecycle transition and updates timestamps.
func TransitionStatus(current WeeklyPlan, target Status, now func() time.Time) (WeeklyPlan, error) {
	if now == nil {
		now = time.Now
	}
	if !IsStatusTransitionAllowed(current.Status, target) {
		return WeeklyPlan{}, apperrors.WithMetadata(
			apperrors.CodePlanInvalidStatusTransition,
			fmt.Sprintf("plan status transition not allowed: %s -> %s", current.Status, target),
			map[string]string{"FromStatus": string(current.Status), "ToStatus": string(target)},
		)
	}
	updated := current
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

const dayFormat = "2006-01-02"

// normalizeDay truncates a timestamp to a UTC calendar date.
func normalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
