package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weekbite/weekbite.app/internal/services/planner/domain/plan"
	"github.com/weekbite/weekbite.app/internal/services/planner/domain/recipe"
	"github.com/weekbite/weekbite.app/internal/services/planner/storage"
)

type recipeStoreAdapter struct {
	store storage.RecipeStore
}

func newRecipeStoreAdapter(store storage.RecipeStore) *recipeStoreAdapter {
	return &recipeStoreAdapter{store: store}
}

func (a *recipeStoreAdapter) GetRecipe(ctx context.Context, recipeID string) (recipe.Recipe, error) {
	if a == nil || a.store == nil {
		return recipe.Recipe{}, recipe.ErrStoreNotConfigured
	}
	record, err := a.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return recipe.Recipe{}, mapRecipeStorageError(err)
	}
	return toDomainRecipe(record), nil
}

func (a *recipeStoreAdapter) PutRecipe(ctx context.Context, value recipe.Recipe) error {
	if a == nil || a.store == nil {
		return recipe.ErrStoreNotConfigured
	}
	if err := a.store.PutRecipe(ctx, toStorageRecipe(value)); err != nil {
		return mapRecipeStorageError(err)
	}
	return nil
}

func (a *recipeStoreAdapter) UpdateRecipeStatus(ctx context.Context, recipeID string, expected recipe.Status, target recipe.Status, updatedAt time.Time) (recipe.Recipe, error) {
	if a == nil || a.store == nil {
		return recipe.Recipe{}, recipe.ErrStoreNotConfigured
	}
	record, err := a.store.UpdateRecipeStatus(ctx, recipeID, string(expected), string(target), updatedAt)
	if err != nil {
		return recipe.Recipe{}, mapRecipeStorageError(err)
	}
	return toDomainRecipe(record), nil
}

func toDomainRecipe(record storage.RecipeRecord) recipe.Recipe {
	return recipe.Recipe{
		ID:           record.ID,
		AuthorUserID: record.AuthorUserID,
		Title:        record.Title,
		ContentJSON:  record.ContentJSON,
		Status:       recipe.Status(record.Status),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func toStorageRecipe(value recipe.Recipe) storage.RecipeRecord {
	return storage.RecipeRecord{
		ID:           value.ID,
		AuthorUserID: value.AuthorUserID,
		Title:        value.Title,
		ContentJSON:  value.ContentJSON,
		Status:       string(value.Status),
		CreatedAt:    value.CreatedAt,
		UpdatedAt:    value.UpdatedAt,
	}
}

func mapRecipeStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return recipe.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return recipe.ErrConflict
	default:
		return fmt.Errorf("recipe storage: %w", err)
	}
}

type planStoreAdapter struct {
	plans        storage.PlanStore
	slots        storage.MealSlotStore
	alternatives storage.AlternativeStore
	changes      storage.ChangeStore
	recipes      storage.RecipeStore
}

func newPlanStoreAdapter(plans storage.PlanStore, slots storage.MealSlotStore, alternatives storage.AlternativeStore, changes storage.ChangeStore, recipes storage.RecipeStore) *planStoreAdapter {
	return &planStoreAdapter{
		plans:        plans,
		slots:        slots,
		alternatives: alternatives,
		changes:      changes,
		recipes:      recipes,
	}
}

func (a *planStoreAdapter) GetPlan(ctx context.Context, planID string) (plan.WeeklyPlan, error) {
	if a == nil || a.plans == nil {
		return plan.WeeklyPlan{}, plan.ErrStoreNotConfigured
	}
	record, err := a.plans.GetPlan(ctx, planID)
	if err != nil {
		return plan.WeeklyPlan{}, mapPlanStorageError(err)
	}
	return toDomainPlan(record), nil
}

func (a *planStoreAdapter) PutPlan(ctx context.Context, value plan.WeeklyPlan) error {
	if a == nil || a.plans == nil {
		return plan.ErrStoreNotConfigured
	}
	if err := a.plans.PutPlan(ctx, toStoragePlan(value)); err != nil {
		return mapPlanStorageError(err)
	}
	return nil
}

func (a *planStoreAdapter) UpdatePlanStatus(ctx context.Context, planID string, expected plan.Status, target plan.Status, updatedAt time.Time) (plan.WeeklyPlan, error) {
	if a == nil || a.plans == nil {
		return plan.WeeklyPlan{}, plan.ErrStoreNotConfigured
	}
	record, err := a.plans.UpdatePlanStatus(ctx, planID, string(expected), string(target), updatedAt)
	if err != nil {
		return plan.WeeklyPlan{}, mapPlanStorageError(err)
	}
	return toDomainPlan(record), nil
}

func (a *planStoreAdapter) GetMealSlot(ctx context.Context, slotID string) (plan.MealSlot, error) {
	if a == nil || a.slots == nil {
		return plan.MealSlot{}, plan.ErrStoreNotConfigured
	}
	record, err := a.slots.GetMealSlot(ctx, slotID)
	if err != nil {
		return plan.MealSlot{}, mapPlanStorageError(err)
	}
	return toDomainMealSlot(record), nil
}

func (a *planStoreAdapter) ListMealSlots(ctx context.Context, planID string) ([]plan.MealSlot, error) {
	if a == nil || a.slots == nil {
		return nil, plan.ErrStoreNotConfigured
	}
	records, err := a.slots.ListMealSlotsByPlan(ctx, planID)
	if err != nil {
		return nil, mapPlanStorageError(err)
	}
	slots := make([]plan.MealSlot, 0, len(records))
	for _, record := range records {
		slots = append(slots, toDomainMealSlot(record))
	}
	return slots, nil
}

func (a *planStoreAdapter) PutMealSlot(ctx context.Context, slot plan.MealSlot) error {
	if a == nil || a.slots == nil {
		return plan.ErrStoreNotConfigured
	}
	if err := a.slots.PutMealSlot(ctx, toStorageMealSlot(slot)); err != nil {
		return mapPlanStorageError(err)
	}
	return nil
}

func (a *planStoreAdapter) UpdateMealSlot(ctx context.Context, slot plan.MealSlot, change plan.ChangeRecord) error {
	if a == nil || a.slots == nil {
		return plan.ErrStoreNotConfigured
	}
	if err := a.slots.UpdateMealSlotWithChange(ctx, toStorageMealSlot(slot), toStorageChange(change)); err != nil {
		return mapPlanStorageError(err)
	}
	return nil
}

func (a *planStoreAdapter) RecipeExists(ctx context.Context, recipeID string) (bool, error) {
	if a == nil || a.recipes == nil {
		return false, plan.ErrStoreNotConfigured
	}
	exists, err := a.recipes.RecipeExists(ctx, recipeID)
	if err != nil {
		return false, mapPlanStorageError(err)
	}
	return exists, nil
}

func (a *planStoreAdapter) GetAlternative(ctx context.Context, alternativeID string) (plan.Alternative, error) {
	if a == nil || a.alternatives == nil {
		return plan.Alternative{}, plan.ErrStoreNotConfigured
	}
	record, err := a.alternatives.GetAlternative(ctx, alternativeID)
	if err != nil {
		return plan.Alternative{}, mapPlanStorageError(err)
	}
	return toDomainAlternative(record), nil
}

func (a *planStoreAdapter) ListAlternatives(ctx context.Context, slotID string) ([]plan.Alternative, error) {
	if a == nil || a.alternatives == nil {
		return nil, plan.ErrStoreNotConfigured
	}
	records, err := a.alternatives.ListAlternativesBySlot(ctx, slotID)
	if err != nil {
		return nil, mapPlanStorageError(err)
	}
	alternatives := make([]plan.Alternative, 0, len(records))
	for _, record := range records {
		alternatives = append(alternatives, toDomainAlternative(record))
	}
	return alternatives, nil
}

func (a *planStoreAdapter) PutAlternative(ctx context.Context, alternative plan.Alternative) error {
	if a == nil || a.alternatives == nil {
		return plan.ErrStoreNotConfigured
	}
	if err := a.alternatives.PutAlternative(ctx, toStorageAlternative(alternative)); err != nil {
		return mapPlanStorageError(err)
	}
	return nil
}

func (a *planStoreAdapter) SetAlternativeSelection(ctx context.Context, alternativeID string, selected bool, updatedAt time.Time) (plan.Alternative, error) {
	if a == nil || a.alternatives == nil {
		return plan.Alternative{}, plan.ErrStoreNotConfigured
	}
	record, err := a.alternatives.SetAlternativeSelection(ctx, alternativeID, selected, updatedAt)
	if err != nil {
		return plan.Alternative{}, mapPlanStorageError(err)
	}
	return toDomainAlternative(record), nil
}

func (a *planStoreAdapter) PromoteAlternative(ctx context.Context, slot plan.MealSlot, alternativeID string, changes []plan.ChangeRecord) error {
	if a == nil || a.alternatives == nil {
		return plan.ErrStoreNotConfigured
	}
	records := make([]storage.ChangeRecord, 0, len(changes))
	for _, change := range changes {
		records = append(records, toStorageChange(change))
	}
	if err := a.alternatives.PromoteAlternative(ctx, toStorageMealSlot(slot), alternativeID, records); err != nil {
		return mapPlanStorageError(err)
	}
	return nil
}

func (a *planStoreAdapter) ListChanges(ctx context.Context, slotID string) ([]plan.ChangeRecord, error) {
	if a == nil || a.changes == nil {
		return nil, plan.ErrStoreNotConfigured
	}
	records, err := a.changes.ListChangesBySlot(ctx, slotID)
	if err != nil {
		return nil, mapPlanStorageError(err)
	}
	changes := make([]plan.ChangeRecord, 0, len(records))
	for _, record := range records {
		changes = append(changes, toDomainChange(record))
	}
	return changes, nil
}

func toDomainPlan(record storage.PlanRecord) plan.WeeklyPlan {
	return plan.WeeklyPlan{
		ID:        record.ID,
		UserID:    record.UserID,
		WeekStart: record.WeekStart,
		Status:    plan.Status(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func toStoragePlan(value plan.WeeklyPlan) storage.PlanRecord {
	return storage.PlanRecord{
		ID:        value.ID,
		UserID:    value.UserID,
		WeekStart: value.WeekStart,
		Status:    string(value.Status),
		CreatedAt: value.CreatedAt,
		UpdatedAt: value.UpdatedAt,
	}
}

func toDomainMealSlot(record storage.MealSlotRecord) plan.MealSlot {
	return plan.MealSlot{
		ID:        record.ID,
		PlanID:    record.PlanID,
		Day:       record.Day,
		MealType:  plan.MealType(record.MealType),
		RecipeID:  record.RecipeID,
		Status:    plan.MealStatus(record.Status),
		Notes:     record.Notes,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func toStorageMealSlot(value plan.MealSlot) storage.MealSlotRecord {
	return storage.MealSlotRecord{
		ID:        value.ID,
		PlanID:    value.PlanID,
		Day:       value.Day,
		MealType:  string(value.MealType),
		RecipeID:  value.RecipeID,
		Status:    string(value.Status),
		Notes:     value.Notes,
		CreatedAt: value.CreatedAt,
		UpdatedAt: value.UpdatedAt,
	}
}

func toDomainAlternative(record storage.AlternativeRecord) plan.Alternative {
	return plan.Alternative{
		ID:            record.ID,
		MealSlotID:    record.MealSlotID,
		RecipeID:      record.RecipeID,
		Reason:        plan.Reason(record.Reason),
		ReasonDetails: record.ReasonDetails,
		IsSelected:    record.IsSelected,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func toStorageAlternative(value plan.Alternative) storage.AlternativeRecord {
	return storage.AlternativeRecord{
		ID:            value.ID,
		MealSlotID:    value.MealSlotID,
		RecipeID:      value.RecipeID,
		Reason:        string(value.Reason),
		ReasonDetails: value.ReasonDetails,
		IsSelected:    value.IsSelected,
		CreatedAt:     value.CreatedAt,
		UpdatedAt:     value.UpdatedAt,
	}
}

func toDomainChange(record storage.ChangeRecord) plan.ChangeRecord {
	return plan.ChangeRecord{
		ID:               record.ID,
		MealSlotID:       record.MealSlotID,
		ChangeType:       plan.ChangeType(record.ChangeType),
		Reason:           plan.Reason(record.Reason),
		ReasonDetails:    record.ReasonDetails,
		PreviousValue:    record.PreviousValue,
		NewValue:         record.NewValue,
		PreviousRecipeID: record.PreviousRecipeID,
		NewRecipeID:      record.NewRecipeID,
		ActorUserID:      record.ActorUserID,
		CreatedAt:        record.CreatedAt,
	}
}

func toStorageChange(value plan.ChangeRecord) storage.ChangeRecord {
	return storage.ChangeRecord{
		ID:               value.ID,
		MealSlotID:       value.MealSlotID,
		ChangeType:       string(value.ChangeType),
		Reason:           string(value.Reason),
		ReasonDetails:    value.ReasonDetails,
		PreviousValue:    value.PreviousValue,
		NewValue:         value.NewValue,
		PreviousRecipeID: value.PreviousRecipeID,
		NewRecipeID:      value.NewRecipeID,
		ActorUserID:      value.ActorUserID,
		CreatedAt:        value.CreatedAt,
	}
}

func mapPlanStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return plan.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return plan.ErrConflict
	case errors.Is(err, storage.ErrDuplicateSlot):
		return plan.ErrDuplicateSlot
	default:
		return fmt.Errorf("plan storage: %w", err)
	}
}
