package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/weekbite/weekbite.app/internal/services/planner/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "planner.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func seedRecipe(t *testing.T, store *Store, id string, status string) {
	t.Helper()
	now := time.Date(2026, 2, 21, 21, 0, 0, 0, time.UTC)
	if err := store.PutRecipe(context.Background(), storage.RecipeRecord{
		ID:        id,
		Title:     "Test Recipe " + id,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("put recipe: %v", err)
	}
}

func seedPlanWithSlot(t *testing.T, store *Store) (storage.PlanRecord, storage.MealSlotRecord) {
	t.Helper()
	ctx := context.Background()
	weekStart := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	plan := storage.PlanRecord{
		ID:        "plan-1",
		UserID:    "user-1",
		WeekStart: weekStart,
		Status:    "active",
		CreatedAt: weekStart,
		UpdatedAt: weekStart,
	}
	if err := store.PutPlan(ctx, plan); err != nil {
		t.Fatalf("put plan: %v", err)
	}
	slot := storage.MealSlotRecord{
		ID:        "slot-1",
		PlanID:    plan.ID,
		Day:       weekStart,
		MealType:  "dinner",
		RecipeID:  "recipe-3",
		Status:    "declined",
		CreatedAt: weekStart,
		UpdatedAt: weekStart,
	}
	if err := store.PutMealSlot(ctx, slot); err != nil {
		t.Fatalf("put meal slot: %v", err)
	}
	return plan, slot
}

func TestRecipeRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedRecipe(t, store, "recipe-1", "draft")

	got, err := store.GetRecipe(ctx, "recipe-1")
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got.Status != "draft" || got.ContentJSON != "{}" {
		t.Errorf("record = %+v, want draft status with default content", got)
	}

	exists, err := store.RecipeExists(ctx, "recipe-1")
	if err != nil || !exists {
		t.Errorf("RecipeExists = %v, %v, want true", exists, err)
	}
	exists, err = store.RecipeExists(ctx, "recipe-99")
	if err != nil || exists {
		t.Errorf("RecipeExists(missing) = %v, %v, want false", exists, err)
	}

	if _, err := store.GetRecipe(ctx, "recipe-99"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get missing recipe: %v, want ErrNotFound", err)
	}
}

func TestUpdateRecipeStatusConditional(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedRecipe(t, store, "recipe-1", "saved")
	updatedAt := time.Date(2026, 2, 22, 8, 0, 0, 0, time.UTC)

	got, err := store.UpdateRecipeStatus(ctx, "recipe-1", "saved", "submitted", updatedAt)
	if err != nil {
		t.Fatalf("update recipe status: %v", err)
	}
	if got.Status != "submitted" || !got.UpdatedAt.Equal(updatedAt) {
		t.Errorf("record = %+v, want submitted at %v", got, updatedAt)
	}

	// Stale expectation loses.
	if _, err := store.UpdateRecipeStatus(ctx, "recipe-1", "saved", "submitted", updatedAt); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("stale update: %v, want ErrConflict", err)
	}
	if _, err := store.UpdateRecipeStatus(ctx, "recipe-99", "saved", "submitted", updatedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing recipe update: %v, want ErrNotFound", err)
	}
}

func TestPlanStatusConditionalUpdate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	plan, _ := seedPlanWithSlot(t, store)
	updatedAt := time.Date(2026, 2, 22, 8, 0, 0, 0, time.UTC)

	got, err := store.UpdatePlanStatus(ctx, plan.ID, "active", "completed", updatedAt)
	if err != nil {
		t.Fatalf("update plan status: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if _, err := store.UpdatePlanStatus(ctx, plan.ID, "active", "completed", updatedAt); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("stale update: %v, want ErrConflict", err)
	}
}

func TestPutMealSlotRejectsDuplicateDayAndType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, slot := seedPlanWithSlot(t, store)

	duplicate := slot
	duplicate.ID = "slot-2"
	err := store.PutMealSlot(context.Background(), duplicate)
	if !errors.Is(err, storage.ErrDuplicateSlot) {
		t.Fatalf("duplicate insert: %v, want ErrDuplicateSlot", err)
	}
}

func TestUpdateMealSlotWithChange(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, slot := seedPlanWithSlot(t, store)
	changedAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	slot.RecipeID = "recipe-4"
	slot.UpdatedAt = changedAt
	err := store.UpdateMealSlotWithChange(ctx, slot, storage.ChangeRecord{
		ID:               "change-1",
		MealSlotID:       slot.ID,
		ChangeType:       "recipe-switch",
		Reason:           "preference",
		PreviousValue:    "recipe-3",
		NewValue:         "recipe-4",
		PreviousRecipeID: "recipe-3",
		NewRecipeID:      "recipe-4",
		CreatedAt:        changedAt,
	})
	if err != nil {
		t.Fatalf("update meal slot with change: %v", err)
	}

	got, err := store.GetMealSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("get meal slot: %v", err)
	}
	if got.RecipeID != "recipe-4" {
		t.Errorf("RecipeID = %q, want recipe-4", got.RecipeID)
	}

	changes, err := store.ListChangesBySlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(changes) != 1 || changes[0].ID != "change-1" {
		t.Fatalf("changes = %+v, want the appended entry", changes)
	}

	// A missing slot leaves no orphan ledger entry.
	orphan := slot
	orphan.ID = "slot-missing"
	err = store.UpdateMealSlotWithChange(ctx, orphan, storage.ChangeRecord{
		ID:         "change-orphan",
		MealSlotID: "slot-missing",
		ChangeType: "recipe-switch",
		CreatedAt:  changedAt,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing slot update: %v, want ErrNotFound", err)
	}
	changes, err = store.ListChangesBySlot(ctx, "slot-missing")
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("orphan change persisted: %+v", changes)
	}
}

func TestListChangesNewestFirstWithEqualTimestamps(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, slot := seedPlanWithSlot(t, store)
	changedAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	// Two entries from one compound operation share a timestamp; insertion
	// order breaks the tie.
	for _, id := range []string{"change-1", "change-2"} {
		slot.UpdatedAt = changedAt
		if err := store.UpdateMealSlotWithChange(ctx, slot, storage.ChangeRecord{
			ID:            id,
			MealSlotID:    slot.ID,
			ChangeType:    "status-change",
			PreviousValue: "pending",
			NewValue:      "accepted",
			CreatedAt:     changedAt,
		}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	changes, err := store.ListChangesBySlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	if changes[0].ID != "change-2" || changes[1].ID != "change-1" {
		t.Errorf("order = [%s, %s], want newest first", changes[0].ID, changes[1].ID)
	}
}

func TestSetAlternativeSelectionSingleSelect(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, slot := seedPlanWithSlot(t, store)
	createdAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		if err := store.PutAlternative(ctx, storage.AlternativeRecord{
			ID:         fmt.Sprintf("alt-%d", i),
			MealSlotID: slot.ID,
			RecipeID:   fmt.Sprintf("recipe-%d", 3+i),
			Reason:     "preference",
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}); err != nil {
			t.Fatalf("put alternative: %v", err)
		}
	}

	if _, err := store.SetAlternativeSelection(ctx, "alt-1", true, createdAt); err != nil {
		t.Fatalf("select alt-1: %v", err)
	}
	selected, err := store.SetAlternativeSelection(ctx, "alt-2", true, createdAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("select alt-2: %v", err)
	}
	if !selected.IsSelected {
		t.Error("alt-2 must be selected")
	}

	listed, err := store.ListAlternativesBySlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("list alternatives: %v", err)
	}
	selectedCount := 0
	for _, alternative := range listed {
		if alternative.IsSelected {
			selectedCount++
			if alternative.ID != "alt-2" {
				t.Errorf("selected = %s, want alt-2", alternative.ID)
			}
		}
	}
	if selectedCount != 1 {
		t.Fatalf("selected alternatives = %d, want exactly 1", selectedCount)
	}

	cleared, err := store.SetAlternativeSelection(ctx, "alt-2", false, createdAt.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("deselect alt-2: %v", err)
	}
	if cleared.IsSelected {
		t.Error("deselect must clear the flag")
	}

	if _, err := store.SetAlternativeSelection(ctx, "alt-missing", true, createdAt); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing alternative: %v, want ErrNotFound", err)
	}
}

func TestConcurrentSelectionKeepsSingleWinner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, slot := seedPlanWithSlot(t, store)
	createdAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	for i := 1; i <= 4; i++ {
		if err := store.PutAlternative(ctx, storage.AlternativeRecord{
			ID:         fmt.Sprintf("alt-%d", i),
			MealSlotID: slot.ID,
			RecipeID:   fmt.Sprintf("recipe-%d", 3+i),
			Reason:     "preference",
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}); err != nil {
			t.Fatalf("put alternative: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := store.SetAlternativeSelection(ctx, id, true, time.Now().UTC()); err != nil {
				t.Errorf("select %s: %v", id, err)
			}
		}(fmt.Sprintf("alt-%d", i))
	}
	wg.Wait()

	listed, err := store.ListAlternativesBySlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("list alternatives: %v", err)
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

func TestPromoteAlternativeAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, slot := seedPlanWithSlot(t, store)
	createdAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	if err := store.PutAlternative(ctx, storage.AlternativeRecord{
		ID:         "alt-1",
		MealSlotID: slot.ID,
		RecipeID:   "recipe-4",
		Reason:     "preference",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}); err != nil {
		t.Fatalf("put alternative: %v", err)
	}

	slot.RecipeID = "recipe-4"
	slot.UpdatedAt = createdAt
	changes := []storage.ChangeRecord{
		{
			ID:               "change-1",
			MealSlotID:       slot.ID,
			ChangeType:       "recipe-switch",
			Reason:           "preference",
			PreviousValue:    "recipe-3",
			NewValue:         "recipe-4",
			PreviousRecipeID: "recipe-3",
			NewRecipeID:      "recipe-4",
			CreatedAt:        createdAt,
		},
		{
			ID:               "change-2",
			MealSlotID:       slot.ID,
			ChangeType:       "alternative-selected",
			Reason:           "preference",
			PreviousValue:    "recipe-3",
			NewValue:         "recipe-4",
			PreviousRecipeID: "recipe-3",
			NewRecipeID:      "recipe-4",
			CreatedAt:        createdAt,
		},
	}
	if err := store.PromoteAlternative(ctx, slot, "alt-1", changes); err != nil {
		t.Fatalf("promote alternative: %v", err)
	}

	gotSlot, err := store.GetMealSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("get meal slot: %v", err)
	}
	if gotSlot.RecipeID != "recipe-4" {
		t.Errorf("RecipeID = %q, want recipe-4", gotSlot.RecipeID)
	}
	gotAlternative, err := store.GetAlternative(ctx, "alt-1")
	if err != nil {
		t.Fatalf("get alternative: %v", err)
	}
	if !gotAlternative.IsSelected {
		t.Error("promoted alternative must be selected")
	}
	history, err := store.ListChangesBySlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].ChangeType != "alternative-selected" {
		t.Errorf("newest ChangeType = %q, want alternative-selected", history[0].ChangeType)
	}
}

func TestPlanDeleteCascades(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	plan, slot := seedPlanWithSlot(t, store)
	createdAt := time.Date(2026, 2, 22, 19, 0, 0, 0, time.UTC)

	if err := store.PutAlternative(ctx, storage.AlternativeRecord{
		ID:         "alt-1",
		MealSlotID: slot.ID,
		RecipeID:   "recipe-4",
		Reason:     "preference",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}); err != nil {
		t.Fatalf("put alternative: %v", err)
	}

	if _, err := store.sqlDB.ExecContext(ctx, "DELETE FROM weekly_plans WHERE id = ?", plan.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if _, err := store.GetMealSlot(ctx, slot.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("slot after cascade: %v, want ErrNotFound", err)
	}
	if _, err := store.GetAlternative(ctx, "alt-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("alternative after cascade: %v, want ErrNotFound", err)
	}
}
