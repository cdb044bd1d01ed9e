// Package storage defines persistence records and interfaces for planner state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested planner record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a conditional write lost to a concurrent change.
	ErrConflict = errors.New("record conflict")
	// ErrDuplicateSlot indicates the plan already holds a slot for the day and meal type.
	ErrDuplicateSlot = errors.New("meal slot already exists")
)

// RecipeRecord stores one recipe and its lifecycle status.
type RecipeRecord struct {
	ID           string
	AuthorUserID string
	Title        string
	ContentJSON  string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlanRecord stores one weekly plan.
type PlanRecord struct {
	ID        string
	UserID    string
	WeekStart time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MealSlotRecord stores one meal slot of a plan.
type MealSlotRecord struct {
	ID        string
	PlanID    string
	Day       time.Time
	MealType  string
	RecipeID  string
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlternativeRecord stores one proposed replacement recipe for a slot.
type AlternativeRecord struct {
	ID            string
	MealSlotID    string
	RecipeID      string
	Reason        string
	ReasonDetails string
	IsSelected    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChangeRecord stores one append-only ledger entry for a slot.
type ChangeRecord struct {
	ID               string
	MealSlotID       string
	ChangeType       string
	Reason           string
	ReasonDetails    string
	PreviousValue    string
	NewValue         string
	PreviousRecipeID string
	NewRecipeID      string
	ActorUserID      string
	CreatedAt        time.Time
}

// RecipeStore persists recipe lifecycle state.
type RecipeStore interface {
	PutRecipe(ctx context.Context, record RecipeRecord) error
	GetRecipe(ctx context.Context, recipeID string) (RecipeRecord, error)
	// UpdateRecipeStatus commits a transition only when the stored status
	// still matches expected; a stale expectation returns ErrConflict.
	UpdateRecipeStatus(ctx context.Context, recipeID string, expected string, target string, updatedAt time.Time) (RecipeRecord, error)
	RecipeExists(ctx context.Context, recipeID string) (bool, error)
}

// PlanStore persists weekly plan state.
type PlanStore interface {
	PutPlan(ctx context.Context, record PlanRecord) error
	GetPlan(ctx context.Context, planID string) (PlanRecord, error)
	UpdatePlanStatus(ctx context.Context, planID string, expected string, target string, updatedAt time.Time) (PlanRecord, error)
}

// MealSlotStore persists meal slot state together with its ledger.
type MealSlotStore interface {
	PutMealSlot(ctx context.Context, record MealSlotRecord) error
	GetMealSlot(ctx context.Context, slotID string) (MealSlotRecord, error)
	ListMealSlotsByPlan(ctx context.Context, planID string) ([]MealSlotRecord, error)
	// UpdateMealSlotWithChange writes the mutated slot and appends its ledger
	// entry in a single transaction.
	UpdateMealSlotWithChange(ctx context.Context, slot MealSlotRecord, change ChangeRecord) error
}

// AlternativeStore persists proposed alternatives and their selection flag.
type AlternativeStore interface {
	PutAlternative(ctx context.Context, record AlternativeRecord) error
	GetAlternative(ctx context.Context, alternativeID string) (AlternativeRecord, error)
	ListAlternativesBySlot(ctx context.Context, slotID string) ([]AlternativeRecord, error)
	// SetAlternativeSelection flips one alternative's flag; selecting also
	// clears every sibling of the same slot in the same transaction.
	SetAlternativeSelection(ctx context.Context, alternativeID string, selected bool, updatedAt time.Time) (AlternativeRecord, error)
	// PromoteAlternative selects the alternative, writes the updated slot,
	// and appends the ledger entries, all in a single transaction.
	PromoteAlternative(ctx context.Context, slot MealSlotRecord, alternativeID string, changes []ChangeRecord) error
}

// ChangeStore reads the append-only slot ledger.
type ChangeStore interface {
	// ListChangesBySlot returns entries newest-first.
	ListChangesBySlot(ctx context.Context, slotID string) ([]ChangeRecord, error)
}
