package plan

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

// MealType identifies which meal of the day a slot covers.
type MealType string

const (
	// MealTypeUnspecified is the zero value for meal types.
	MealTypeUnspecified MealType = ""
	// MealTypeBreakfast is the morning meal.
	MealTypeBreakfast MealType = "breakfast"
	// MealTypeLunch is the midday meal.
	MealTypeLunch MealType = "lunch"
	// MealTypeSnack is a between-meals slot.
	MealTypeSnack MealType = "snack"
	// MealTypeDinner is the evening meal.
	MealTypeDinner MealType = "dinner"
)

// ParseMealType parses a meal type from its string form.
func ParseMealType(value string) (MealType, bool) {
	switch MealType(strings.ToLower(strings.TrimSpace(value))) {
	case MealTypeBreakfast:
		return MealTypeBreakfast, true
	case MealTypeLunch:
		return MealTypeLunch, true
	case MealTypeSnack:
		return MealTypeSnack, true
	case MealTypeDinner:
		return MealTypeDinner, true
	default:
		return MealTypeUnspecified, false
	}
}

// MealStatus is the user's verdict on a slot's assigned recipe. Unlike the
// recipe lifecycle there is no ordering between these values; any one may
// move to any other while the plan stays editable.
type MealStatus string

const (
	// MealStatusUnspecified is the zero value for meal statuses.
	MealStatusUnspecified MealStatus = ""
	// MealStatusPending means the user has not decided on the slot yet.
	MealStatusPending MealStatus = "pending"
	// MealStatusAccepted means the user will cook the assigned recipe.
	MealStatusAccepted MealStatus = "accepted"
	// MealStatusDeclined means the user passed on the assigned recipe.
	MealStatusDeclined MealStatus = "declined"
)

// ParseMealStatus parses a meal status from its string form.
func ParseMealStatus(value string) (MealStatus, bool) {
	switch MealStatus(strings.ToLower(strings.TrimSpace(value))) {
	case MealStatusPending:
		return MealStatusPending, true
	case MealStatusAccepted:
		return MealStatusAccepted, true
	case MealStatusDeclined:
		return MealStatusDeclined, true
	default:
		return MealStatusUnspecified, false
	}
}

// MealSlot is one meal on one day of a weekly plan. A plan holds at most one
// slot per (day, meal type) pair.
type MealSlot struct {
	ID        string
	PlanID    string
	Day       time.Time
	MealType  MealType
	RecipeID  string
	Status    MealStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateMealSlotInput describes a new slot added to a plan.
type CreateMealSlotInput struct {
	PlanID   string
	Day      time.Time
	MealType MealType
	RecipeID string
	Notes    string
}

// CreateMealSlot creates a pending slot for owner, validating the day against
// the owning plan's week.
func CreateMealSlot(owner WeeklyPlan, input CreateMealSlotInput, now func() time.Time, idGenerator func() (string, error)) (MealSlot, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if _, ok := ParseMealType(string(input.MealType)); !ok {
		return MealSlot{}, apperrors.WithMetadata(
			apperrors.CodeMealInvalidType,
			fmt.Sprintf("unknown meal type %q", input.MealType),
			map[string]string{"MealType": string(input.MealType)},
		)
	}
	if input.Day.IsZero() || !owner.ContainsDay(input.Day) {
		return MealSlot{}, apperrors.WithMetadata(
			apperrors.CodeMealSlotDayOutOfRange,
			fmt.Sprintf("day %s is outside the plan week %s..%s",
				normalizeDay(input.Day).Format(dayFormat),
				owner.WeekStart.Format(dayFormat),
				owner.WeekEnd().Format(dayFormat)),
			map[string]string{
				"Day":       normalizeDay(input.Day).Format(dayFormat),
				"WeekStart": owner.WeekStart.Format(dayFormat),
				"WeekEnd":   owner.WeekEnd().Format(dayFormat),
			},
		)
	}

	slotID, err := idGenerator()
	if err != nil {
		return MealSlot{}, fmt.Errorf("generate meal slot id: %w", err)
	}

	createdAt := now().UTC()
	return MealSlot{
		ID:        slotID,
		PlanID:    owner.ID,
		Day:       normalizeDay(input.Day),
		MealType:  input.MealType,
		RecipeID:  strings.TrimSpace(input.RecipeID),
		Status:    MealStatusPending,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}
