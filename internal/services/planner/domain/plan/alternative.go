package plan

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

// Reason classifies why a user proposed swapping a slot's recipe.
type Reason string

const (
	// ReasonUnspecified is the zero value for reasons.
	ReasonUnspecified Reason = ""
	// ReasonIngredientsMissing means required ingredients are unavailable.
	ReasonIngredientsMissing Reason = "ingredients-missing"
	// ReasonTimeConstraint means the recipe takes too long that day.
	ReasonTimeConstraint Reason = "time-constraint"
	// ReasonDifficulty means the recipe is too involved.
	ReasonDifficulty Reason = "difficulty"
	// ReasonPreference means the user simply prefers something else.
	ReasonPreference Reason = "preference"
	// ReasonSeasonal means the recipe does not fit the season.
	ReasonSeasonal Reason = "seasonal"
	// ReasonDietary means the recipe conflicts with a dietary choice.
	ReasonDietary Reason = "dietary"
	// ReasonAllergy means the recipe conflicts with an allergy.
	ReasonAllergy Reason = "allergy"
	// ReasonBudget means the recipe is too expensive this week.
	ReasonBudget Reason = "budget"
	// ReasonOther covers everything else, usually with details attached.
	ReasonOther Reason = "other"
)

// ParseReason parses a swap reason from its string form.
func ParseReason(value string) (Reason, bool) {
	switch Reason(strings.ToLower(strings.TrimSpace(value))) {
	case ReasonIngredientsMissing:
		return ReasonIngredientsMissing, true
	case ReasonTimeConstraint:
		return ReasonTimeConstraint, true
	case ReasonDifficulty:
		return ReasonDifficulty, true
	case ReasonPreference:
		return ReasonPreference, true
	case ReasonSeasonal:
		return ReasonSeasonal, true
	case ReasonDietary:
		return ReasonDietary, true
	case ReasonAllergy:
		return ReasonAllergy, true
	case ReasonBudget:
		return ReasonBudget, true
	case ReasonOther:
		return ReasonOther, true
	default:
		return ReasonUnspecified, false
	}
}

// Alternative is a candidate replacement recipe proposed for a meal slot.
// At most one alternative per slot carries IsSelected at any time.
type Alternative struct {
	ID            string
	MealSlotID    string
	RecipeID      string
	Reason        Reason
	ReasonDetails string
	IsSelected    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProposeAlternativeInput describes a new candidate for a slot.
type ProposeAlternativeInput struct {
	MealSlotID    string
	RecipeID      string
	Reason        Reason
	ReasonDetails string
}

// NewAlternative creates an unselected alternative for a slot.
func NewAlternative(input ProposeAlternativeInput, now func() time.Time, idGenerator func() (string, error)) (Alternative, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if _, ok := ParseReason(string(input.Reason)); !ok {
		return Alternative{}, apperrors.WithMetadata(
			apperrors.CodeAlternativeInvalidReason,
			fmt.Sprintf("unknown alternative reason %q", input.Reason),
			map[string]string{"Reason": string(input.Reason)},
		)
	}

	alternativeID, err := idGenerator()
	if err != nil {
		return Alternative{}, fmt.Errorf("generate alternative id: %w", err)
	}

	createdAt := now().UTC()
	return Alternative{
		ID:            alternativeID,
		MealSlotID:    strings.TrimSpace(input.MealSlotID),
		RecipeID:      strings.TrimSpace(input.RecipeID),
		Reason:        input.Reason,
		ReasonDetails: strings.TrimSpace(input.ReasonDetails),
		IsSelected:    false,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}
