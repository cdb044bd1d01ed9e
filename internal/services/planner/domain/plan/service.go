package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/id"
)

var (
	// ErrNotFound indicates a plan, slot, or alternative record was not found.
	ErrNotFound = errors.New("plan record not found")
	// ErrConflict indicates a write conflicted with a concurrent lifecycle change.
	ErrConflict = errors.New("plan conflict")
	// ErrDuplicateSlot indicates the plan already has a slot for the day and meal type.
	ErrDuplicateSlot = errors.New("meal slot already exists")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("plan store is not configured")
	// ErrPlanIDRequired indicates a plan ID is required.
	ErrPlanIDRequired = errors.New("plan id is required")
	// ErrSlotIDRequired indicates a meal slot ID is required.
	ErrSlotIDRequired = errors.New("meal slot id is required")
	// ErrAlternativeIDRequired indicates an alternative ID is required.
	ErrAlternativeIDRequired = errors.New("alternative id is required")
)

// Store is the domain persistence boundary for weekly plan behavior. Methods
// that pair a slot mutation with ledger entries must apply both in a single
// transaction so an aborted call never leaves the slot updated without its
// change record.
type Store interface {
	GetPlan(ctx context.Context, planID string) (WeeklyPlan, error)
	PutPlan(ctx context.Context, plan WeeklyPlan) error
	// UpdatePlanStatus commits a plan transition conditional on the expected
	// current status; a stale expectation surfaces as ErrConflict.
	UpdatePlanStatus(ctx context.Context, planID string, expected Status, target Status, updatedAt time.Time) (WeeklyPlan, error)

	GetMealSlot(ctx context.Context, slotID string) (MealSlot, error)
	ListMealSlots(ctx context.Context, planID string) ([]MealSlot, error)
	// PutMealSlot inserts a slot, surfacing ErrDuplicateSlot when the plan
	// already holds one for the same day and meal type.
	PutMealSlot(ctx context.Context, slot MealSlot) error
	// UpdateMealSlot writes a mutated slot together with the ledger entry
	// documenting the mutation, atomically.
	UpdateMealSlot(ctx context.Context, slot MealSlot, change ChangeRecord) error

	// RecipeExists reports whether a recipe ID resolves to a stored recipe.
	RecipeExists(ctx context.Context, recipeID string) (bool, error)

	GetAlternative(ctx context.Context, alternativeID string) (Alternative, error)
	ListAlternatives(ctx context.Context, slotID string) ([]Alternative, error)
	PutAlternative(ctx context.Context, alternative Alternative) error
	// SetAlternativeSelection flips one alternative's selection flag. When
	// selecting, every sibling of the same slot is deselected in the same
	// transaction so at most one stays selected.
	SetAlternativeSelection(ctx context.Context, alternativeID string, selected bool, updatedAt time.Time) (Alternative, error)
	// PromoteAlternative selects the alternative, moves its recipe into the
	// slot, and appends the supplied ledger entries, all atomically. The
	// entries are appended in order, so the last one is the newest.
	PromoteAlternative(ctx context.Context, slot MealSlot, alternativeID string, changes []ChangeRecord) error

	// ListChanges returns a slot's ledger entries newest-first.
	ListChanges(ctx context.Context, slotID string) ([]ChangeRecord, error)
}

// View is a plan with its slots loaded.
type View struct {
	Plan  WeeklyPlan
	Slots []MealSlot
}

// Service orchestrates weekly plan behavior. Mutations on the same meal slot
// are serialized through a per-slot lock; operations on different slots run
// concurrently.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)

	slots keyedMutex
}

// NewService constructs plan domain use-cases.
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

// CreatePlan stores a new draft plan for a week.
func (s *Service) CreatePlan(ctx context.Context, input CreateWeeklyPlanInput) (WeeklyPlan, error) {
	if s == nil || s.store == nil {
		return WeeklyPlan{}, ErrStoreNotConfigured
	}
	created, err := CreateWeeklyPlan(input, s.clock, s.newID)
	if err != nil {
		return WeeklyPlan{}, err
	}
	if err := s.store.PutPlan(ctx, created); err != nil {
		return WeeklyPlan{}, err
	}
	return created, nil
}

// GetPlan loads a plan and its slots.
func (s *Service) GetPlan(ctx context.Context, planID string) (View, error) {
	if s == nil || s.store == nil {
		return View{}, ErrStoreNotConfigured
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return View{}, ErrPlanIDRequired
	}
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return View{}, err
	}
	slots, err := s.store.ListMealSlots(ctx, planID)
	if err != nil {
		return View{}, err
	}
	return View{Plan: plan, Slots: slots}, nil
}

// TransitionPlan validates and commits one plan lifecycle transition.
func (s *Service) TransitionPlan(ctx context.Context, planID string, target Status) (WeeklyPlan, error) {
	if s == nil || s.store == nil {
		return WeeklyPlan{}, ErrStoreNotConfigured
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return WeeklyPlan{}, ErrPlanIDRequired
	}

	current, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return WeeklyPlan{}, err
	}
	updated, err := TransitionStatus(current, target, s.clock)
	if err != nil {
		return WeeklyPlan{}, err
	}
	return s.store.UpdatePlanStatus(ctx, planID, current.Status, updated.Status, updated.UpdatedAt)
}

// AddMealSlot adds a slot to an editable plan.
func (s *Service) AddMealSlot(ctx context.Context, input CreateMealSlotInput) (MealSlot, error) {
	if s == nil || s.store == nil {
		return MealSlot{}, ErrStoreNotConfigured
	}
	input.PlanID = strings.TrimSpace(input.PlanID)
	if input.PlanID == "" {
		return MealSlot{}, ErrPlanIDRequired
	}

	owner, err := s.store.GetPlan(ctx, input.PlanID)
	if err != nil {
		return MealSlot{}, err
	}
	if owner.Status.IsLocked() {
		return MealSlot{}, planLockedError(owner)
	}

	slot, err := CreateMealSlot(owner, input, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}
	if slot.RecipeID != "" {
		if err := s.requireRecipe(ctx, slot.RecipeID); err != nil {
			return MealSlot{}, err
		}
	}

	if err := s.store.PutMealSlot(ctx, slot); err != nil {
		if errors.Is(err, ErrDuplicateSlot) {
			return MealSlot{}, apperrors.WithMetadata(
				apperrors.CodeMealSlotDuplicate,
				fmt.Sprintf("plan already has a %s slot on %s", slot.MealType, slot.Day.Format(dayFormat)),
				map[string]string{"Day": slot.Day.Format(dayFormat), "MealType": string(slot.MealType)},
			)
		}
		return MealSlot{}, err
	}
	return slot, nil
}

// SwitchRecipeInput describes a recipe replacement on one slot.
type SwitchRecipeInput struct {
	MealSlotID    string
	NewRecipeID   string
	Reason        Reason
	ReasonDetails string
	ActorUserID   string
}

// SwitchRecipe replaces a slot's recipe and appends the documenting ledger
// entry in one transaction. Switching to the recipe already assigned is
// rejected rather than recorded, since it would produce an audit entry with
// no delta.
func (s *Service) SwitchRecipe(ctx context.Context, input SwitchRecipeInput) (MealSlot, error) {
	if s == nil || s.store == nil {
		return MealSlot{}, ErrStoreNotConfigured
	}
	input.MealSlotID = strings.TrimSpace(input.MealSlotID)
	if input.MealSlotID == "" {
		return MealSlot{}, ErrSlotIDRequired
	}

	unlock := s.slots.lock(input.MealSlotID)
	defer unlock()

	slot, err := s.store.GetMealSlot(ctx, input.MealSlotID)
	if err != nil {
		return MealSlot{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return MealSlot{}, err
	}

	newRecipeID := strings.TrimSpace(input.NewRecipeID)
	if newRecipeID == slot.RecipeID {
		return MealSlot{}, apperrors.WithMetadata(
			apperrors.CodeMealSwitchNoOp,
			fmt.Sprintf("slot already uses recipe %s", newRecipeID),
			map[string]string{"RecipeID": newRecipeID},
		)
	}
	if err := s.requireRecipe(ctx, newRecipeID); err != nil {
		return MealSlot{}, err
	}

	change, err := NewChangeRecord(ChangeInput{
		MealSlotID:       slot.ID,
		ChangeType:       ChangeTypeRecipeSwitch,
		Reason:           input.Reason,
		ReasonDetails:    input.ReasonDetails,
		PreviousValue:    slot.RecipeID,
		NewValue:         newRecipeID,
		PreviousRecipeID: slot.RecipeID,
		NewRecipeID:      newRecipeID,
		ActorUserID:      input.ActorUserID,
	}, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}

	slot.RecipeID = newRecipeID
	slot.UpdatedAt = change.CreatedAt
	if err := s.store.UpdateMealSlot(ctx, slot, change); err != nil {
		return MealSlot{}, err
	}
	return slot, nil
}

// SetMealStatusInput describes a slot verdict change.
type SetMealStatusInput struct {
	MealSlotID  string
	Status      MealStatus
	ActorUserID string
}

// SetMealStatus moves a slot between pending, accepted, and declined. Any of
// the three may follow any other while the plan stays editable.
func (s *Service) SetMealStatus(ctx context.Context, input SetMealStatusInput) (MealSlot, error) {
	if s == nil || s.store == nil {
		return MealSlot{}, ErrStoreNotConfigured
	}
	input.MealSlotID = strings.TrimSpace(input.MealSlotID)
	if input.MealSlotID == "" {
		return MealSlot{}, ErrSlotIDRequired
	}
	target, ok := ParseMealStatus(string(input.Status))
	if !ok {
		return MealSlot{}, apperrors.WithMetadata(
			apperrors.CodeMealInvalidStatus,
			fmt.Sprintf("unknown meal status %q", input.Status),
			map[string]string{"Status": string(input.Status)},
		)
	}

	unlock := s.slots.lock(input.MealSlotID)
	defer unlock()

	slot, err := s.store.GetMealSlot(ctx, input.MealSlotID)
	if err != nil {
		return MealSlot{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return MealSlot{}, err
	}

	change, err := NewChangeRecord(ChangeInput{
		MealSlotID:    slot.ID,
		ChangeType:    ChangeTypeStatusChange,
		PreviousValue: string(slot.Status),
		NewValue:      string(target),
		ActorUserID:   input.ActorUserID,
	}, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}

	slot.Status = target
	slot.UpdatedAt = change.CreatedAt
	if err := s.store.UpdateMealSlot(ctx, slot, change); err != nil {
		return MealSlot{}, err
	}
	return slot, nil
}

// UpdateNotesInput describes a slot notes edit.
type UpdateNotesInput struct {
	MealSlotID  string
	Notes       string
	ActorUserID string
}

// UpdateNotes replaces a slot's free-text notes and records the edit.
func (s *Service) UpdateNotes(ctx context.Context, input UpdateNotesInput) (MealSlot, error) {
	if s == nil || s.store == nil {
		return MealSlot{}, ErrStoreNotConfigured
	}
	input.MealSlotID = strings.TrimSpace(input.MealSlotID)
	if input.MealSlotID == "" {
		return MealSlot{}, ErrSlotIDRequired
	}

	unlock := s.slots.lock(input.MealSlotID)
	defer unlock()

	slot, err := s.store.GetMealSlot(ctx, input.MealSlotID)
	if err != nil {
		return MealSlot{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return MealSlot{}, err
	}

	notes := strings.TrimSpace(input.Notes)
	change, err := NewChangeRecord(ChangeInput{
		MealSlotID:    slot.ID,
		ChangeType:    ChangeTypeNotesUpdated,
		PreviousValue: slot.Notes,
		NewValue:      notes,
		ActorUserID:   input.ActorUserID,
	}, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}

	slot.Notes = notes
	slot.UpdatedAt = change.CreatedAt
	if err := s.store.UpdateMealSlot(ctx, slot, change); err != nil {
		return MealSlot{}, err
	}
	return slot, nil
}

// ProposeAlternative registers a candidate replacement recipe for a slot.
func (s *Service) ProposeAlternative(ctx context.Context, input ProposeAlternativeInput) (Alternative, error) {
	if s == nil || s.store == nil {
		return Alternative{}, ErrStoreNotConfigured
	}
	input.MealSlotID = strings.TrimSpace(input.MealSlotID)
	if input.MealSlotID == "" {
		return Alternative{}, ErrSlotIDRequired
	}

	slot, err := s.store.GetMealSlot(ctx, input.MealSlotID)
	if err != nil {
		return Alternative{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return Alternative{}, err
	}
	if err := s.requireRecipe(ctx, strings.TrimSpace(input.RecipeID)); err != nil {
		return Alternative{}, err
	}

	alternative, err := NewAlternative(input, s.clock, s.newID)
	if err != nil {
		return Alternative{}, err
	}
	if err := s.store.PutAlternative(ctx, alternative); err != nil {
		return Alternative{}, err
	}
	return alternative, nil
}

// ListAlternatives returns every candidate proposed for a slot.
func (s *Service) ListAlternatives(ctx context.Context, slotID string) ([]Alternative, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, ErrSlotIDRequired
	}
	if _, err := s.store.GetMealSlot(ctx, slotID); err != nil {
		return nil, err
	}
	return s.store.ListAlternatives(ctx, slotID)
}

// SelectAlternative marks one alternative as the slot's chosen candidate, or
// clears it. Selecting deselects every sibling so at most one alternative per
// slot stays selected even when callers race.
func (s *Service) SelectAlternative(ctx context.Context, alternativeID string, selected bool) (Alternative, error) {
	if s == nil || s.store == nil {
		return Alternative{}, ErrStoreNotConfigured
	}
	alternativeID = strings.TrimSpace(alternativeID)
	if alternativeID == "" {
		return Alternative{}, ErrAlternativeIDRequired
	}

	alternative, err := s.store.GetAlternative(ctx, alternativeID)
	if err != nil {
		return Alternative{}, err
	}

	unlock := s.slots.lock(alternative.MealSlotID)
	defer unlock()

	slot, err := s.store.GetMealSlot(ctx, alternative.MealSlotID)
	if err != nil {
		return Alternative{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return Alternative{}, err
	}

	return s.store.SetAlternativeSelection(ctx, alternativeID, selected, s.clock().UTC())
}

// PromoteAlternative selects an alternative and switches the slot's recipe to
// its candidate in one transaction, carrying the alternative's stored reason
// into the ledger. The slot ends up on the candidate recipe with a
// recipe-switch entry followed by an alternative-selected entry, the latter
// being the newest.
func (s *Service) PromoteAlternative(ctx context.Context, alternativeID string, actorUserID string) (MealSlot, error) {
	if s == nil || s.store == nil {
		return MealSlot{}, ErrStoreNotConfigured
	}
	alternativeID = strings.TrimSpace(alternativeID)
	if alternativeID == "" {
		return MealSlot{}, ErrAlternativeIDRequired
	}

	alternative, err := s.store.GetAlternative(ctx, alternativeID)
	if err != nil {
		return MealSlot{}, err
	}

	unlock := s.slots.lock(alternative.MealSlotID)
	defer unlock()

	slot, err := s.store.GetMealSlot(ctx, alternative.MealSlotID)
	if err != nil {
		return MealSlot{}, err
	}
	if err := s.requireEditable(ctx, slot.PlanID); err != nil {
		return MealSlot{}, err
	}
	if alternative.RecipeID == slot.RecipeID {
		return MealSlot{}, apperrors.WithMetadata(
			apperrors.CodeMealSwitchNoOp,
			fmt.Sprintf("slot already uses recipe %s", alternative.RecipeID),
			map[string]string{"RecipeID": alternative.RecipeID},
		)
	}

	switched, err := NewChangeRecord(ChangeInput{
		MealSlotID:       slot.ID,
		ChangeType:       ChangeTypeRecipeSwitch,
		Reason:           alternative.Reason,
		ReasonDetails:    alternative.ReasonDetails,
		PreviousValue:    slot.RecipeID,
		NewValue:         alternative.RecipeID,
		PreviousRecipeID: slot.RecipeID,
		NewRecipeID:      alternative.RecipeID,
		ActorUserID:      actorUserID,
	}, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}
	selectedRecord, err := NewChangeRecord(ChangeInput{
		MealSlotID:       slot.ID,
		ChangeType:       ChangeTypeAlternativeSelected,
		Reason:           alternative.Reason,
		ReasonDetails:    alternative.ReasonDetails,
		PreviousValue:    slot.RecipeID,
		NewValue:         alternative.RecipeID,
		PreviousRecipeID: slot.RecipeID,
		NewRecipeID:      alternative.RecipeID,
		ActorUserID:      actorUserID,
	}, s.clock, s.newID)
	if err != nil {
		return MealSlot{}, err
	}

	slot.RecipeID = alternative.RecipeID
	slot.UpdatedAt = selectedRecord.CreatedAt
	if err := s.store.PromoteAlternative(ctx, slot, alternativeID, []ChangeRecord{switched, selectedRecord}); err != nil {
		return MealSlot{}, err
	}
	return slot, nil
}

// ChangeHistory returns a slot's ledger entries, newest first.
func (s *Service) ChangeHistory(ctx context.Context, slotID string) ([]ChangeRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, ErrSlotIDRequired
	}
	if _, err := s.store.GetMealSlot(ctx, slotID); err != nil {
		return nil, err
	}
	return s.store.ListChanges(ctx, slotID)
}

func (s *Service) requireEditable(ctx context.Context, planID string) error {
	owner, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if owner.Status.IsLocked() {
		return planLockedError(owner)
	}
	return nil
}

func (s *Service) requireRecipe(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return unknownRecipeError(recipeID)
	}
	exists, err := s.store.RecipeExists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return unknownRecipeError(recipeID)
	}
	return nil
}

func planLockedError(owner WeeklyPlan) error {
	return apperrors.WithMetadata(
		apperrors.CodePlanLocked,
		fmt.Sprintf("plan %s is %s and can no longer be edited", owner.ID, owner.Status),
		map[string]string{"PlanID": owner.ID, "PlanStatus": string(owner.Status)},
	)
}

func unknownRecipeError(recipeID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeRecipeUnknown,
		fmt.Sprintf("recipe %q does not exist", recipeID),
		map[string]string{"RecipeID": recipeID},
	)
}

// keyedMutex serializes callers per string key. Idle keys are released so the
// map does not grow with every slot ever touched.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
