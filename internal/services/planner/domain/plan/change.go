package plan

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

// ChangeType classifies a ledger entry by the mutation it documents.
type ChangeType string

const (
	// ChangeTypeUnspecified is the zero value for change types.
	ChangeTypeUnspecified ChangeType = ""
	// ChangeTypeRecipeSwitch records a slot's recipe being replaced.
	ChangeTypeRecipeSwitch ChangeType = "recipe-switch"
	// ChangeTypeStatusChange records a slot status verdict.
	ChangeTypeStatusChange ChangeType = "status-change"
	// ChangeTypeAlternativeSelected records an alternative being promoted
	// into the slot.
	ChangeTypeAlternativeSelected ChangeType = "alternative-selected"
	// ChangeTypeNotesUpdated records the slot's notes being edited.
	ChangeTypeNotesUpdated ChangeType = "notes-updated"
)

// ParseChangeType parses a change type from its string form.
func ParseChangeType(value string) (ChangeType, bool) {
	switch ChangeType(strings.ToLower(strings.TrimSpace(value))) {
	case ChangeTypeRecipeSwitch:
		return ChangeTypeRecipeSwitch, true
	case ChangeTypeStatusChange:
		return ChangeTypeStatusChange, true
	case ChangeTypeAlternativeSelected:
		return ChangeTypeAlternativeSelected, true
	case ChangeTypeNotesUpdated:
		return ChangeTypeNotesUpdated, true
	default:
		return ChangeTypeUnspecified, false
	}
}

// ChangeRecord is one append-only ledger entry for a meal slot. Entries are
// written in the same transaction as the mutation they document and are
// never updated or deleted afterwards.
type ChangeRecord struct {
	ID               string
	MealSlotID       string
	ChangeType       ChangeType
	Reason           Reason
	ReasonDetails    string
	PreviousValue    string
	NewValue         string
	PreviousRecipeID string
	NewRecipeID      string
	ActorUserID      string
	CreatedAt        time.Time
}

// ChangeInput carries everything a ledger entry captures about one mutation.
type ChangeInput struct {
	MealSlotID       string
	ChangeType       ChangeType
	Reason           Reason
	ReasonDetails    string
	PreviousValue    string
	NewValue         string
	PreviousRecipeID string
	NewRecipeID      string
	ActorUserID      string
}

// NewChangeRecord validates a mutation description and builds its ledger
// entry. Recipe switches must name both recipes involved; every other change
// type must carry at least one value snapshot, since an entry with no
// observable delta documents nothing.
func NewChangeRecord(input ChangeInput, now func() time.Time, idGenerator func() (string, error)) (ChangeRecord, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if _, ok := ParseChangeType(string(input.ChangeType)); !ok {
		return ChangeRecord{}, apperrors.WithMetadata(
			apperrors.CodeChangeInvalidType,
			fmt.Sprintf("unknown change type %q", input.ChangeType),
			map[string]string{"ChangeType": string(input.ChangeType)},
		)
	}

	input.PreviousValue = strings.TrimSpace(input.PreviousValue)
	input.NewValue = strings.TrimSpace(input.NewValue)
	input.PreviousRecipeID = strings.TrimSpace(input.PreviousRecipeID)
	input.NewRecipeID = strings.TrimSpace(input.NewRecipeID)

	if input.ChangeType == ChangeTypeRecipeSwitch {
		if input.PreviousRecipeID == "" || input.NewRecipeID == "" {
			return ChangeRecord{}, apperrors.New(
				apperrors.CodeChangeMissingRecipeReference,
				"recipe switch change requires both the previous and new recipe",
			)
		}
	} else if input.PreviousValue == "" && input.NewValue == "" {
		return ChangeRecord{}, apperrors.WithMetadata(
			apperrors.CodeChangeEmpty,
			fmt.Sprintf("%s change carries no previous or new value", input.ChangeType),
			map[string]string{"ChangeType": string(input.ChangeType)},
		)
	}

	changeID, err := idGenerator()
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("generate change id: %w", err)
	}

	return ChangeRecord{
		ID:               changeID,
		MealSlotID:       strings.TrimSpace(input.MealSlotID),
		ChangeType:       input.ChangeType,
		Reason:           input.Reason,
		ReasonDetails:    strings.TrimSpace(input.ReasonDetails),
		PreviousValue:    input.PreviousValue,
		NewValue:         input.NewValue,
		PreviousRecipeID: input.PreviousRecipeID,
		NewRecipeID:      input.NewRecipeID,
		ActorUserID:      strings.TrimSpace(input.ActorUserID),
		CreatedAt:        now().UTC(),
	}, nil
}
