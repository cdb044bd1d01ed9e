// Package recipe holds the recipe lifecycle state machine and its records.
package recipe

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

// Recipe represents one recipe and its lifecycle position. Descriptive
// content beyond the title is carried opaquely so content editing stays a
// separate concern from lifecycle decisions.
type Recipe struct {
	ID           string
	AuthorUserID string
	Title        string
	ContentJSON  string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateRecipeInput describes the metadata needed to create a recipe.
type CreateRecipeInput struct {
	AuthorUserID string
	Title        string
	ContentJSON  string
}

// CreateRecipe creates a new draft recipe with a generated ID and timestamps.
func CreateRecipe(input CreateRecipeInput, now func() time.Time, idGenerator func() (string, error)) (Recipe, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateRecipeInput(input)
	if err != nil {
		return Recipe{}, err
	}

	recipeID, err := idGenerator()
	if err != nil {
		return Recipe{}, fmt.Errorf("generate recipe id: %w", err)
	}

	createdAt := now().UTC()
	return Recipe{
		ID:           recipeID,
		AuthorUserID: normalized.AuthorUserID,
		Title:        normalized.Title,
		ContentJSON:  normalized.ContentJSON,
		Status:       StatusDraft,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// NormalizeCreateRecipeInput trims and validates recipe input metadata.
func NormalizeCreateRecipeInput(input CreateRecipeInput) (CreateRecipeInput, error) {
	input.AuthorUserID = strings.TrimSpace(input.AuthorUserID)
	input.Title = strings.TrimSpace(input.Title)
	input.ContentJSON = strings.TrimSpace(input.ContentJSON)
	if input.Title == "" {
		return CreateRecipeInput{}, apperrors.New(apperrors.CodeRecipeTitleEmpty, "recipe title is required")
	}
	if input.ContentJSON == "" {
		input.ContentJSON = "{}"
	}
	return input, nil
}

// Transition applies a lifecycle transition and updates timestamps.
//
// The decision is pure: the same (current status, target, privilege) inputs
// always yield the same outcome, and on success the status and UpdatedAt are
// the only fields that change.
func Transition(current Recipe, target Status, callerPrivileged bool, now func() time.Time) (Recipe, error) {
	if now == nil {
		now = time.Now
	}
	if !IsStatusTransitionAllowed(current.Status, target) {
		return Recipe{}, apperrors.WithMetadata(
			apperrors.CodeRecipeInvalidStatusTransition,
			fmt.Sprintf("recipe status transition not allowed: %s -> %s", current.Status, target),
			map[string]string{"FromStatus": string(current.Status), "ToStatus": string(target)},
		)
	}
	if TransitionRequiresPrivilege(current.Status, target) && !callerPrivileged {
		return Recipe{}, apperrors.WithMetadata(
			apperrors.CodeRecipeTransitionForbidden,
			fmt.Sprintf("recipe status transition requires privilege: %s -> %s", current.Status, target),
			map[string]string{"FromStatus": string(current.Status), "ToStatus": string(target)},
		)
	}

	updated := current
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}
