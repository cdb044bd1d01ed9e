package recipe

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/weekbite/weekbite.app/internal/platform/id"
)

var (
	// ErrNotFound indicates a recipe record was not found.
	ErrNotFound = errors.New("recipe not found")
	// ErrConflict indicates a write conflicted with a concurrent lifecycle change.
	ErrConflict = errors.New("recipe conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("recipe store is not configured")
	// ErrRecipeIDRequired indicates a recipe ID is required.
	ErrRecipeIDRequired = errors.New("recipe id is required")
)

// Store is the domain persistence boundary for recipe lifecycle behavior.
type Store interface {
	GetRecipe(ctx context.Context, recipeID string) (Recipe, error)
	PutRecipe(ctx context.Context, recipe Recipe) error
	// UpdateRecipeStatus commits a transition conditional on the expected
	// current status so concurrent transitions cannot silently overwrite
	// each other; a stale expectation surfaces as ErrConflict.
	UpdateRecipeStatus(ctx context.Context, recipeID string, expected Status, target Status, updatedAt time.Time) (Recipe, error)
}

// Service orchestrates recipe lifecycle behavior.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs recipe domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// Create stores a new draft recipe.
func (s *Service) Create(ctx context.Context, input CreateRecipeInput) (Recipe, error) {
	if s == nil || s.store == nil {
		return Recipe{}, ErrStoreNotConfigured
	}
	created, err := CreateRecipe(input, s.clock, s.newID)
	if err != nil {
		return Recipe{}, err
	}
	if err := s.store.PutRecipe(ctx, created); err != nil {
		return Recipe{}, err
	}
	return created, nil
}

// Get loads one recipe by ID.
func (s *Service) Get(ctx context.Context, recipeID string) (Recipe, error) {
	if s == nil || s.store == nil {
		return Recipe{}, ErrStoreNotConfigured
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return Recipe{}, ErrRecipeIDRequired
	}
	return s.store.GetRecipe(ctx, recipeID)
}

// TransitionStatus validates and commits one lifecycle transition.
//
// Validation happens against the loaded recipe before any write; the commit
// re-checks the expected source status at the storage boundary so a losing
// racer fails with ErrConflict instead of skipping a lifecycle step.
func (s *Service) TransitionStatus(ctx context.Context, recipeID string, target Status, callerPrivileged bool) (Recipe, error) {
	if s == nil || s.store == nil {
		return Recipe{}, ErrStoreNotConfigured
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return Recipe{}, ErrRecipeIDRequired
	}

	current, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return Recipe{}, err
	}

	updated, err := Transition(current, target, callerPrivileged, s.clock)
	if err != nil {
		return Recipe{}, err
	}

	return s.store.UpdateRecipeStatus(ctx, recipeID, current.Status, updated.Status, updated.UpdatedAt)
}
