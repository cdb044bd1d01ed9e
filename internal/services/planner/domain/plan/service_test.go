package plan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
)

func sequentialIDs(prefix string) func() (string, error) {
	var mu sync.Mutex
	counter := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter), nil
	}
}

type fakeStore struct {
	mu           sync.Mutex
	plans        map[string]WeeklyPlan
	slots        map[string]MealSlot
	alternatives map[string]Alternative
	recipes      map[string]bool
	changes      []ChangeRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans:        make(map[string]WeeklyPlan),
		slots:        make(map[string]MealSlot),
		alternatives: make(map[string]Alternative),
		recipes:      make(map[string]bool),
	}
}

func (f *fakeStore) GetPlan(_ context.Context, planID string) (WeeklyPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[planID]
	if !ok {
		return WeeklyPlan{}, ErrNotFound
	}
	return plan, nil
}

func (f *fakeStore) PutPlan(_ context.Context, plan WeeklyPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeStore) UpdatePlanStatus(_ context.Context, planID string, expected Status, target Status, updatedAt time.Time) (WeeklyPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[planID]
	if !ok {
		return WeeklyPlan{}, ErrNotFound
	}
	if plan.Status != expected {
		return WeeklyPlan{}, ErrConflict
	}
	plan.Status = target
	plan.UpdatedAt = updatedAt
	f.plans[planID] = plan
	return plan, nil
}

func (f *fakeStore) GetMealSlot(_ context.Context, slotID string) (MealSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return MealSlot{}, ErrNotFound
	}
	return slot, nil
}

func (f *fakeStore) ListMealSlots(_ context.Context, planID string) ([]MealSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []MealSlot
	for _, slot := range f.slots {
		if slot.PlanID == planID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeStore) PutMealSlot(_ context.Context, slot MealSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.slots {
		if existing.PlanID == slot.PlanID && existing.Day.Equal(slot.Day) && existing.MealType == slot.MealType {
			return ErrDuplicateSlot
		}
	}
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeStore) UpdateMealSlot(_ context.Context, slot MealSlot, change ChangeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[slot.ID]; !ok {
		return ErrNotFound
	}
	f.slots[slot.ID] = slot
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeStore) RecipeExists(_ context.Context, recipeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[recipeID], nil
}

func (f *fakeStore) GetAlternative(_ context.Context, alternativeID string) (Alternative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alternative, ok := f.alternatives[alternativeID]
	if !ok {
		return Alternative{}, ErrNotFound
	}
	return alternative, nil
}

func (f *fakeStore) ListAlternatives(_ context.Context, slotID string) ([]Alternative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Alternative
	for _, alternative := range f.alternatives {
		if alternative.MealSlotID == slotID {
			out = append(out, alternative)
		}
	}
	return out, nil
}

func (f *fakeStore) PutAlternative(_ context.Context, alternative Alternative) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alternatives[alternative.ID] = alternative
	return nil
}

func (f *fakeStore) SetAlternativeSelection(_ context.Context, alternativeID string, selected bool, updatedAt time.Time) (Alternative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setSelectionLocked(alternativeID, selected, updatedAt)
}

func (f *fakeStore) setSelectionLocked(alternativeID string, selected bool, updatedAt time.Time) (Alternative, error) {
	target, ok := f.alternatives[alternativeID]
	if !ok {
		return Alternative{}, ErrNotFound
	}
	if selected {
		for id, sibling := range f.alternatives {
			if sibling.MealSlotID == target.MealSlotID && sibling.IsSelected {
				sibling.IsSelected = false
				sibling.UpdatedAt = updatedAt
				f.alternatives[id] = sibling
			}
		}
	}
	target.IsSelected = selected
	target.UpdatedAt = updatedAt
	f.alternatives[alternativeID] = target
	return target, nil
}

func (f *fakeStore) PromoteAlternative(_ context.Context, slot MealSlot, alternativeID string, changes []ChangeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[slot.ID]; !ok {
		return ErrNotFound
	}
	if _, err := f.setSelectionLocked(alternativeID, true, slot.UpdatedAt); err != nil {
		return err
	}
	f.slots[slot.ID] = slot
	f.changes = append(f.changes, changes...)
	return nil
}

func (f *fakeStore) ListChanges(_ context.Context, slotID string) ([]ChangeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ChangeRecord
	for i := len(f.changes) - 1; i >= 0; i-- {
		if f.changes[i].MealSlotID == slotID {
			out = append(out, f.changes[i])
		}
	}
	return out, nil
}

// seedWeek stores an active plan for the week of 2025-01-20 with a declined
// dinner slot on the Monday, assigned recipe-3, plus recipe-4 as a known
// recipe.
func seedWeek(store *fakeStore) (WeeklyPlan, MealSlot) {
	plan := WeeklyPlan{
		ID:        "plan-1",
		UserID:    "user-1",
		WeekStart: monday(),
		Status:    StatusActive,
		CreatedAt: fixedClock(),
		UpdatedAt: fixedClock(),
	}
	slot := MealSlot{
		ID:        "slot-1",
		PlanID:    plan.ID,
		Day:       monday(),
		MealType:  MealTypeDinner,
		RecipeID:  "recipe-3",
		Status:    MealStatusDeclined,
		CreatedAt: fixedClock(),
		UpdatedAt: fixedClock(),
	}
	store.plans[plan.ID] = plan
	store.slots[slot.ID] = slot
	store.recipes["recipe-3"] = true
	store.recipes["recipe-4"] = true
	return plan, slot
}

func newTestService(store Store) *Service {
	return NewService(store, fixedClock, sequentialIDs("id"))
}

func TestServiceCreateAndGetPlan(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	service := newTestService(store)
	ctx := context.Background()

	created, err := service.CreatePlan(ctx, CreateWeeklyPlanInput{UserID: "user-1", WeekStart: monday()})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	view, err := service.GetPlan(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if view.Plan.ID != created.ID || len(view.Slots) != 0 {
		t.Errorf("view = %+v, want created plan with no slots", view)
	}
}

func TestServiceAddMealSlot(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	plan, _ := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	slot, err := service.AddMealSlot(ctx, CreateMealSlotInput{
		PlanID:   plan.ID,
		Day:      monday().AddDate(0, 0, 1),
		MealType: MealTypeLunch,
		RecipeID: "recipe-4",
	})
	if err != nil {
		t.Fatalf("AddMealSlot: %v", err)
	}
	if slot.Status != MealStatusPending {
		t.Errorf("Status = %q, want %q", slot.Status, MealStatusPending)
	}

	// Same day and meal type again.
	_, err = service.AddMealSlot(ctx, CreateMealSlotInput{
		PlanID:   plan.ID,
		Day:      monday().AddDate(0, 0, 1),
		MealType: MealTypeLunch,
		RecipeID: "recipe-3",
	})
	if apperrors.CodeOf(err) != apperrors.CodeMealSlotDuplicate {
		t.Errorf("duplicate slot: code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMealSlotDuplicate)
	}

	_, err = service.AddMealSlot(ctx, CreateMealSlotInput{
		PlanID:   plan.ID,
		Day:      monday().AddDate(0, 0, 9),
		MealType: MealTypeDinner,
		RecipeID: "recipe-4",
	})
	if apperrors.CodeOf(err) != apperrors.CodeMealSlotDayOutOfRange {
		t.Errorf("day out of range: code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMealSlotDayOutOfRange)
	}

	_, err = service.AddMealSlot(ctx, CreateMealSlotInput{
		PlanID:   plan.ID,
		Day:      monday(),
		MealType: MealTypeBreakfast,
		RecipeID: "recipe-99",
	})
	if apperrors.CodeOf(err) != apperrors.CodeRecipeUnknown {
		t.Errorf("unknown recipe: code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeRecipeUnknown)
	}
}

func TestServiceSwitchRecipeAppendsLedgerEntry(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	updated, err := service.SwitchRecipe(ctx, SwitchRecipeInput{
		MealSlotID:  slot.ID,
		NewRecipeID: "recipe-4",
		Reason:      ReasonTimeConstraint,
		ActorUserID: "user-1",
	})
	if err != nil {
		t.Fatalf("SwitchRecipe: %v", err)
	}
	if updated.RecipeID != "recipe-4" {
		t.Errorf("RecipeID = %q, want recipe-4", updated.RecipeID)
	}

	history, err := service.ChangeHistory(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ChangeHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	entry := history[0]
	if entry.ChangeType != ChangeTypeRecipeSwitch {
		t.Errorf("ChangeType = %q, want %q", entry.ChangeType, ChangeTypeRecipeSwitch)
	}
	if entry.PreviousRecipeID != "recipe-3" || entry.NewRecipeID != "recipe-4" {
		t.Errorf("recipe refs = %q -> %q, want recipe-3 -> recipe-4", entry.PreviousRecipeID, entry.NewRecipeID)
	}
	if entry.Reason != ReasonTimeConstraint {
		t.Errorf("Reason = %q, want %q", entry.Reason, ReasonTimeConstraint)
	}
}

func TestServiceSwitchRecipeNoOpLeavesNoTrace(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	_, err := service.SwitchRecipe(ctx, SwitchRecipeInput{
		MealSlotID:  slot.ID,
		NewRecipeID: "recipe-3",
		Reason:      ReasonPreference,
	})
	if apperrors.CodeOf(err) != apperrors.CodeMealSwitchNoOp {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMealSwitchNoOp)
	}

	history, err := service.ChangeHistory(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ChangeHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}

func TestServiceSwitchRecipeUnknownRecipe(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)

	_, err := service.SwitchRecipe(context.Background(), SwitchRecipeInput{
		MealSlotID:  slot.ID,
		NewRecipeID: "recipe-99",
		Reason:      ReasonPreference,
	})
	if apperrors.CodeOf(err) != apperrors.CodeRecipeUnknown {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeRecipeUnknown)
	}
}

func TestServiceMutationsRejectedOnLockedPlan(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusCompleted, StatusArchived} {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			plan, slot := seedWeek(store)
			plan.Status = status
			store.plans[plan.ID] = plan

			alternative := Alternative{ID: "alt-1", MealSlotID: slot.ID, RecipeID: "recipe-4", Reason: ReasonPreference}
			store.alternatives[alternative.ID] = alternative

			service := newTestService(store)
			ctx := context.Background()

			calls := map[string]func() error{
				"switch recipe": func() error {
					_, err := service.SwitchRecipe(ctx, SwitchRecipeInput{MealSlotID: slot.ID, NewRecipeID: "recipe-4", Reason: ReasonPreference})
					return err
				},
				"set meal status": func() error {
					_, err := service.SetMealStatus(ctx, SetMealStatusInput{MealSlotID: slot.ID, Status: MealStatusAccepted})
					return err
				},
				"update notes": func() error {
					_, err := service.UpdateNotes(ctx, UpdateNotesInput{MealSlotID: slot.ID, Notes: "late edit"})
					return err
				},
				"propose alternative": func() error {
					_, err := service.ProposeAlternative(ctx, ProposeAlternativeInput{MealSlotID: slot.ID, RecipeID: "recipe-4", Reason: ReasonPreference})
					return err
				},
				"select alternative": func() error {
					_, err := service.SelectAlternative(ctx, alternative.ID, true)
					return err
				},
				"promote alternative": func() error {
					_, err := service.PromoteAlternative(ctx, alternative.ID, "user-1")
					return err
				},
				"add meal slot": func() error {
					_, err := service.AddMealSlot(ctx, CreateMealSlotInput{PlanID: plan.ID, Day: monday(), MealType: MealTypeSnack, RecipeID: "recipe-4"})
					return err
				},
			}
			for name, call := range calls {
				if err := call(); apperrors.CodeOf(err) != apperrors.CodePlanLocked {
					t.Errorf("%s: code = %q, want %q", name, apperrors.CodeOf(err), apperrors.CodePlanLocked)
				}
			}

			if got := store.slots[slot.ID]; got.RecipeID != "recipe-3" || got.Status != MealStatusDeclined {
				t.Errorf("slot mutated despite lock: %+v", got)
			}
			if len(store.changes) != 0 {
				t.Errorf("ledger entries written despite lock: %d", len(store.changes))
			}
		})
	}
}

func TestServiceSetMealStatusMovesFreely(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	for _, target := range []MealStatus{MealStatusAccepted, MealStatusPending, MealStatusDeclined, MealStatusAccepted} {
		updated, err := service.SetMealStatus(ctx, SetMealStatusInput{MealSlotID: slot.ID, Status: target})
		if err != nil {
			t.Fatalf("SetMealStatus(%s): %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("Status = %q, want %q", updated.Status, target)
		}
	}

	history, err := service.ChangeHistory(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ChangeHistory: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("len(history) = %d, want 4", len(history))
	}
	newest := history[0]
	if newest.ChangeType != ChangeTypeStatusChange || newest.PreviousValue != "declined" || newest.NewValue != "accepted" {
		t.Errorf("newest entry = %+v, want declined -> accepted status change", newest)
	}

	_, err = service.SetMealStatus(ctx, SetMealStatusInput{MealSlotID: slot.ID, Status: MealStatus("eaten")})
	if apperrors.CodeOf(err) != apperrors.CodeMealInvalidStatus {
		t.Errorf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMealInvalidStatus)
	}
}

func TestServiceProposeSelectRoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	first, err := service.ProposeAlternative(ctx, ProposeAlternativeInput{
		MealSlotID: slot.ID,
		RecipeID:   "recipe-4",
		Reason:     ReasonPreference,
	})
	if err != nil {
		t.Fatalf("ProposeAlternative: %v", err)
	}
	if first.IsSelected {
		t.Error("new alternative must start unselected")
	}

	store.recipes["recipe-5"] = true
	second, err := service.ProposeAlternative(ctx, ProposeAlternativeInput{
		MealSlotID: slot.ID,
		RecipeID:   "recipe-5",
		Reason:     ReasonDietary,
	})
	if err != nil {
		t.Fatalf("ProposeAlternative: %v", err)
	}

	if _, err := service.SelectAlternative(ctx, first.ID, true); err != nil {
		t.Fatalf("SelectAlternative: %v", err)
	}
	if _, err := service.SelectAlternative(ctx, second.ID, true); err != nil {
		t.Fatalf("SelectAlternative: %v", err)
	}

	listed, err := service.ListAlternatives(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ListAlternatives: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("len(listed) = %d, want 2", len(listed))
	}
	for _, alternative := range listed {
		switch alternative.ID {
		case first.ID:
			if alternative.IsSelected {
				t.Error("first alternative must be deselected after second selection")
			}
		case second.ID:
			if !alternative.IsSelected {
				t.Error("second alternative must be selected")
			}
		}
	}

	cleared, err := service.SelectAlternative(ctx, second.ID, false)
	if err != nil {
		t.Fatalf("SelectAlternative(false): %v", err)
	}
	if cleared.IsSelected {
		t.Error("deselect must clear the flag")
	}
}

func TestServiceProposeAlternativeValidation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	_, err := service.ProposeAlternative(ctx, ProposeAlternativeInput{
		MealSlotID: slot.ID,
		RecipeID:   "recipe-4",
		Reason:     Reason("bored"),
	})
	if apperrors.CodeOf(err) != apperrors.CodeAlternativeInvalidReason {
		t.Errorf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeAlternativeInvalidReason)
	}

	_, err = service.ProposeAlternative(ctx, ProposeAlternativeInput{
		MealSlotID: slot.ID,
		RecipeID:   "recipe-99",
		Reason:     ReasonPreference,
	})
	if apperrors.CodeOf(err) != apperrors.CodeRecipeUnknown {
		t.Errorf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeRecipeUnknown)
	}
}

func TestServicePromoteAlternative(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	proposed, err := service.ProposeAlternative(ctx, ProposeAlternativeInput{
		MealSlotID: slot.ID,
		RecipeID:   "recipe-4",
		Reason:     ReasonPreference,
	})
	if err != nil {
		t.Fatalf("ProposeAlternative: %v", err)
	}

	promoted, err := service.PromoteAlternative(ctx, proposed.ID, "user-1")
	if err != nil {
		t.Fatalf("PromoteAlternative: %v", err)
	}
	if promoted.RecipeID != "recipe-4" {
		t.Errorf("RecipeID = %q, want recipe-4", promoted.RecipeID)
	}

	selected, err := service.SelectAlternative(ctx, proposed.ID, true)
	if err != nil {
		t.Fatalf("SelectAlternative: %v", err)
	}
	if !selected.IsSelected {
		t.Error("promoted alternative must be selected")
	}

	history, err := service.ChangeHistory(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ChangeHistory: %v", err)
	}
	if len(history) < 2 {
		t.Fatalf("len(history) = %d, want at least 2", len(history))
	}
	newest := history[0]
	if newest.ChangeType != ChangeTypeAlternativeSelected {
		t.Errorf("newest ChangeType = %q, want %q", newest.ChangeType, ChangeTypeAlternativeSelected)
	}
	if newest.PreviousRecipeID != "recipe-3" || newest.NewRecipeID != "recipe-4" {
		t.Errorf("recipe refs = %q -> %q, want recipe-3 -> recipe-4", newest.PreviousRecipeID, newest.NewRecipeID)
	}
	if history[1].ChangeType != ChangeTypeRecipeSwitch {
		t.Errorf("second entry = %q, want %q", history[1].ChangeType, ChangeTypeRecipeSwitch)
	}
}

func TestServicePromoteAlternativeNoOp(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	alternative := Alternative{ID: "alt-1", MealSlotID: slot.ID, RecipeID: "recipe-3", Reason: ReasonPreference}
	store.alternatives[alternative.ID] = alternative
	service := newTestService(store)

	_, err := service.PromoteAlternative(context.Background(), alternative.ID, "user-1")
	if apperrors.CodeOf(err) != apperrors.CodeMealSwitchNoOp {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMealSwitchNoOp)
	}
}

func TestServiceConcurrentSelectKeepsSingleWinner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	for i := 1; i <= 2; i++ {
		id := fmt.Sprintf("alt-%d", i)
		store.alternatives[id] = Alternative{ID: id, MealSlotID: slot.ID, RecipeID: fmt.Sprintf("recipe-%d", 3+i), Reason: ReasonPreference}
	}
	service := newTestService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 2; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := service.SelectAlternative(ctx, id, true); err != nil {
				t.Errorf("SelectAlternative(%s): %v", id, err)
			}
		}(fmt.Sprintf("alt-%d", i))
	}
	wg.Wait()

	listed, err := service.ListAlternatives(ctx, slot.ID)
	if err != nil {
		t.Fatalf("ListAlternatives: %v", err)
	}
	selectedCount := 0
	for _, alternative := range listed {
		if alternative.IsSelected {
			selectedCount++
		}
	}
	if selectedCount != 1 {
		t.Fatalf("selected alternatives = %d, want exactly 1", selectedCount)
	}
}

func TestServiceNotFoundPaths(t *testing.T) {
	t.Parallel()

	service := newTestService(newFakeStore())
	ctx := context.Background()

	if _, err := service.GetPlan(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPlan: %v, want ErrNotFound", err)
	}
	if _, err := service.SwitchRecipe(ctx, SwitchRecipeInput{MealSlotID: "missing", NewRecipeID: "recipe-1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SwitchRecipe: %v, want ErrNotFound", err)
	}
	if _, err := service.SelectAlternative(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SelectAlternative: %v, want ErrNotFound", err)
	}
	if _, err := service.ChangeHistory(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ChangeHistory: %v, want ErrNotFound", err)
	}
}

func TestServiceUpdateNotesRecordsDelta(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	_, slot := seedWeek(store)
	service := newTestService(store)
	ctx := context.Background()

	updated, err := service.UpdateNotes(ctx, UpdateNotesInput{MealSlotID: slot.ID, Notes: "double the garlic"})
	if err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	if updated.Notes != "double the garlic" {
		t.Errorf("Notes = %q", updated.Notes)
	}

	// Clearing empty notes has no observable delta.
	if _, err := service.UpdateNotes(ctx, UpdateNotesInput{MealSlotID: slot.ID, Notes: ""}); err != nil {
		t.Fatalf("UpdateNotes(clear): %v", err)
	}
	_, err = service.UpdateNotes(ctx, UpdateNotesInput{MealSlotID: slot.ID, Notes: "   "})
	if apperrors.CodeOf(err) != apperrors.CodeChangeEmpty {
		t.Errorf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeChangeEmpty)
	}
}
