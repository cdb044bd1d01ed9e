// Package sqlite provides SQLite-backed persistence for planner state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/weekbite/weekbite.app/internal/platform/storage/sqlitemigrate"
	"github.com/weekbite/weekbite.app/internal/services/planner/storage"
	"github.com/weekbite/weekbite.app/internal/services/planner/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for planner state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a planner SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// PutRecipe persists one recipe row.
func (s *Store) PutRecipe(ctx context.Context, record storage.RecipeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeRecipeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO recipes (id, author_user_id, title, content_json, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  author_user_id = excluded.author_user_id,
  title = excluded.title,
  content_json = excluded.content_json,
  status = excluded.status,
  updated_at = excluded.updated_at
`, normalized.ID, normalized.AuthorUserID, normalized.Title, normalized.ContentJSON,
		normalized.Status, toMillis(normalized.CreatedAt), toMillis(normalized.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put recipe: %w", err)
	}
	return nil
}

// GetRecipe loads one recipe row by ID.
func (s *Store) GetRecipe(ctx context.Context, recipeID string) (storage.RecipeRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RecipeRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RecipeRecord{}, fmt.Errorf("storage is not configured")
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return storage.RecipeRecord{}, fmt.Errorf("recipe id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, author_user_id, title, content_json, status, created_at, updated_at
FROM recipes
WHERE id = ?
`, recipeID)
	record, err := scanRecipe(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RecipeRecord{}, storage.ErrNotFound
		}
		return storage.RecipeRecord{}, fmt.Errorf("get recipe: %w", err)
	}
	return record, nil
}

// UpdateRecipeStatus commits one recipe transition conditional on the expected status.
func (s *Store) UpdateRecipeStatus(ctx context.Context, recipeID string, expected string, target string, updatedAt time.Time) (storage.RecipeRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RecipeRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RecipeRecord{}, fmt.Errorf("storage is not configured")
	}
	recipeID = strings.TrimSpace(recipeID)
	expected = strings.TrimSpace(expected)
	target = strings.TrimSpace(target)
	if recipeID == "" {
		return storage.RecipeRecord{}, fmt.Errorf("recipe id is required")
	}
	if expected == "" || target == "" {
		return storage.RecipeRecord{}, fmt.Errorf("expected and target statuses are required")
	}
	if updatedAt.IsZero() {
		return storage.RecipeRecord{}, fmt.Errorf("updated at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE recipes
SET status = ?, updated_at = ?
WHERE id = ? AND status = ?
`, target, toMillis(updatedAt), recipeID, expected)
	if err != nil {
		return storage.RecipeRecord{}, fmt.Errorf("update recipe status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.RecipeRecord{}, fmt.Errorf("update recipe status rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetRecipe(ctx, recipeID); getErr != nil {
			return storage.RecipeRecord{}, getErr
		}
		return storage.RecipeRecord{}, storage.ErrConflict
	}
	return s.GetRecipe(ctx, recipeID)
}

// RecipeExists reports whether a recipe row exists.
func (s *Store) RecipeExists(ctx context.Context, recipeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return false, nil
	}

	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id = ?`, recipeID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check recipe exists: %w", err)
	}
	return true, nil
}

// PutPlan persists one weekly plan row.
func (s *Store) PutPlan(ctx context.Context, record storage.PlanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizePlanRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO weekly_plans (id, user_id, week_start, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  user_id = excluded.user_id,
  week_start = excluded.week_start,
  status = excluded.status,
  updated_at = excluded.updated_at
`, normalized.ID, normalized.UserID, toMillis(normalized.WeekStart), normalized.Status,
		toMillis(normalized.CreatedAt), toMillis(normalized.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put plan: %w", err)
	}
	return nil
}

// GetPlan loads one weekly plan row by ID.
func (s *Store) GetPlan(ctx context.Context, planID string) (storage.PlanRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlanRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PlanRecord{}, fmt.Errorf("storage is not configured")
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return storage.PlanRecord{}, fmt.Errorf("plan id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, user_id, week_start, status, created_at, updated_at
FROM weekly_plans
WHERE id = ?
`, planID)
	record, err := scanPlan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlanRecord{}, storage.ErrNotFound
		}
		return storage.PlanRecord{}, fmt.Errorf("get plan: %w", err)
	}
	return record, nil
}

// UpdatePlanStatus commits one plan transition conditional on the expected status.
func (s *Store) UpdatePlanStatus(ctx context.Context, planID string, expected string, target string, updatedAt time.Time) (storage.PlanRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlanRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PlanRecord{}, fmt.Errorf("storage is not configured")
	}
	planID = strings.TrimSpace(planID)
	expected = strings.TrimSpace(expected)
	target = strings.TrimSpace(target)
	if planID == "" {
		return storage.PlanRecord{}, fmt.Errorf("plan id is required")
	}
	if expected == "" || target == "" {
		return storage.PlanRecord{}, fmt.Errorf("expected and target statuses are required")
	}
	if updatedAt.IsZero() {
		return storage.PlanRecord{}, fmt.Errorf("updated at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE weekly_plans
SET status = ?, updated_at = ?
WHERE id = ? AND status = ?
`, target, toMillis(updatedAt), planID, expected)
	if err != nil {
		return storage.PlanRecord{}, fmt.Errorf("update plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.PlanRecord{}, fmt.Errorf("update plan status rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetPlan(ctx, planID); getErr != nil {
			return storage.PlanRecord{}, getErr
		}
		return storage.PlanRecord{}, storage.ErrConflict
	}
	return s.GetPlan(ctx, planID)
}

// PutMealSlot inserts one meal slot row.
func (s *Store) PutMealSlot(ctx context.Context, record storage.MealSlotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeMealSlotRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO meal_slots (id, plan_id, day, meal_type, recipe_id, status, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, normalized.ID, normalized.PlanID, toMillis(normalized.Day), normalized.MealType,
		normalized.RecipeID, normalized.Status, normalized.Notes,
		toMillis(normalized.CreatedAt), toMillis(normalized.UpdatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrDuplicateSlot
		}
		return fmt.Errorf("put meal slot: %w", err)
	}
	return nil
}

// GetMealSlot loads one meal slot row by ID.
func (s *Store) GetMealSlot(ctx context.Context, slotID string) (storage.MealSlotRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MealSlotRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MealSlotRecord{}, fmt.Errorf("storage is not configured")
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, plan_id, day, meal_type, recipe_id, status, notes, created_at, updated_at
FROM meal_slots
WHERE id = ?
`, slotID)
	record, err := scanMealSlot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MealSlotRecord{}, storage.ErrNotFound
		}
		return storage.MealSlotRecord{}, fmt.Errorf("get meal slot: %w", err)
	}
	return record, nil
}

// ListMealSlotsByPlan lists a plan's slots ordered by day then meal type.
func (s *Store) ListMealSlotsByPlan(ctx context.Context, planID string) ([]storage.MealSlotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, plan_id, day, meal_type, recipe_id, status, notes, created_at, updated_at
FROM meal_slots
WHERE plan_id = ?
ORDER BY day ASC, meal_type ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list meal slots: %w", err)
	}
	defer rows.Close()

	var results []storage.MealSlotRecord
	for rows.Next() {
		record, scanErr := scanMealSlot(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan meal slot row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal slot rows: %w", err)
	}
	return results, nil
}

// UpdateMealSlotWithChange writes the slot and appends its ledger entry atomically.
func (s *Store) UpdateMealSlotWithChange(ctx context.Context, slot storage.MealSlotRecord, change storage.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedSlot, err := normalizeMealSlotRecord(slot)
	if err != nil {
		return err
	}
	normalizedChange, err := normalizeChangeRecord(change)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meal slot write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback meal slot write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := updateMealSlotExec(ctx, tx, normalizedSlot); err != nil {
		return rollbackWith(err)
	}
	if err := appendChangeExec(ctx, tx, normalizedChange); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit meal slot write: %w", err)
	}
	return nil
}

// PutAlternative persists one alternative row.
func (s *Store) PutAlternative(ctx context.Context, record storage.AlternativeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeAlternativeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO meal_alternatives (id, meal_slot_id, recipe_id, reason, reason_details, is_selected, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  recipe_id = excluded.recipe_id,
  reason = excluded.reason,
  reason_details = excluded.reason_details,
  updated_at = excluded.updated_at
`, normalized.ID, normalized.MealSlotID, normalized.RecipeID, normalized.Reason,
		normalized.ReasonDetails, boolToInt(normalized.IsSelected),
		toMillis(normalized.CreatedAt), toMillis(normalized.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put alternative: %w", err)
	}
	return nil
}

// GetAlternative loads one alternative row by ID.
func (s *Store) GetAlternative(ctx context.Context, alternativeID string) (storage.AlternativeRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AlternativeRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AlternativeRecord{}, fmt.Errorf("storage is not configured")
	}
	alternativeID = strings.TrimSpace(alternativeID)
	if alternativeID == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, meal_slot_id, recipe_id, reason, reason_details, is_selected, created_at, updated_at
FROM meal_alternatives
WHERE id = ?
`, alternativeID)
	record, err := scanAlternative(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AlternativeRecord{}, storage.ErrNotFound
		}
		return storage.AlternativeRecord{}, fmt.Errorf("get alternative: %w", err)
	}
	return record, nil
}

// ListAlternativesBySlot lists a slot's alternatives oldest-first.
func (s *Store) ListAlternativesBySlot(ctx context.Context, slotID string) ([]storage.AlternativeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, fmt.Errorf("meal slot id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, meal_slot_id, recipe_id, reason, reason_details, is_selected, created_at, updated_at
FROM meal_alternatives
WHERE meal_slot_id = ?
ORDER BY created_at ASC, id ASC
`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list alternatives: %w", err)
	}
	defer rows.Close()

	var results []storage.AlternativeRecord
	for rows.Next() {
		record, scanErr := scanAlternative(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan alternative row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alternative rows: %w", err)
	}
	return results, nil
}

// SetAlternativeSelection flips one alternative's selection flag, clearing
// siblings first when selecting so the single-select index never trips.
func (s *Store) SetAlternativeSelection(ctx context.Context, alternativeID string, selected bool, updatedAt time.Time) (storage.AlternativeRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AlternativeRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AlternativeRecord{}, fmt.Errorf("storage is not configured")
	}
	alternativeID = strings.TrimSpace(alternativeID)
	if alternativeID == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative id is required")
	}
	if updatedAt.IsZero() {
		return storage.AlternativeRecord{}, fmt.Errorf("updated at is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.AlternativeRecord{}, fmt.Errorf("begin alternative selection: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback alternative selection: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := setSelectionExec(ctx, tx, alternativeID, selected, updatedAt); err != nil {
		return storage.AlternativeRecord{}, rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return storage.AlternativeRecord{}, fmt.Errorf("commit alternative selection: %w", err)
	}
	return s.GetAlternative(ctx, alternativeID)
}

// PromoteAlternative selects the alternative, updates the slot, and appends
// the ledger entries in one transaction.
func (s *Store) PromoteAlternative(ctx context.Context, slot storage.MealSlotRecord, alternativeID string, changes []storage.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	alternativeID = strings.TrimSpace(alternativeID)
	if alternativeID == "" {
		return fmt.Errorf("alternative id is required")
	}
	normalizedSlot, err := normalizeMealSlotRecord(slot)
	if err != nil {
		return err
	}
	normalizedChanges := make([]storage.ChangeRecord, 0, len(changes))
	for _, change := range changes {
		normalizedChange, normalizeErr := normalizeChangeRecord(change)
		if normalizeErr != nil {
			return normalizeErr
		}
		normalizedChanges = append(normalizedChanges, normalizedChange)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alternative promotion: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback alternative promotion: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := setSelectionExec(ctx, tx, alternativeID, true, normalizedSlot.UpdatedAt); err != nil {
		return rollbackWith(err)
	}
	if err := updateMealSlotExec(ctx, tx, normalizedSlot); err != nil {
		return rollbackWith(err)
	}
	for _, change := range normalizedChanges {
		if err := appendChangeExec(ctx, tx, change); err != nil {
			return rollbackWith(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alternative promotion: %w", err)
	}
	return nil
}

// ListChangesBySlot lists a slot's ledger entries newest-first.
func (s *Store) ListChangesBySlot(ctx context.Context, slotID string) ([]storage.ChangeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, fmt.Errorf("meal slot id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, meal_slot_id, change_type, reason, reason_details, previous_value, new_value, previous_recipe_id, new_recipe_id, actor_user_id, created_at
FROM meal_changes
WHERE meal_slot_id = ?
ORDER BY created_at DESC, seq DESC
`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var results []storage.ChangeRecord
	for rows.Next() {
		record, scanErr := scanChange(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan change row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change rows: %w", err)
	}
	return results, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateMealSlotExec(ctx context.Context, db execer, slot storage.MealSlotRecord) error {
	result, err := db.ExecContext(ctx, `
UPDATE meal_slots
SET recipe_id = ?, status = ?, notes = ?, updated_at = ?
WHERE id = ?
`, slot.RecipeID, slot.Status, slot.Notes, toMillis(slot.UpdatedAt), slot.ID)
	if err != nil {
		return fmt.Errorf("update meal slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update meal slot rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func appendChangeExec(ctx context.Context, db execer, change storage.ChangeRecord) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO meal_changes (id, meal_slot_id, change_type, reason, reason_details, previous_value, new_value, previous_recipe_id, new_recipe_id, actor_user_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, change.ID, change.MealSlotID, change.ChangeType, change.Reason, change.ReasonDetails,
		change.PreviousValue, change.NewValue, change.PreviousRecipeID, change.NewRecipeID,
		change.ActorUserID, toMillis(change.CreatedAt))
	if err != nil {
		return fmt.Errorf("append change: %w", err)
	}
	return nil
}

func setSelectionExec(ctx context.Context, db execer, alternativeID string, selected bool, updatedAt time.Time) error {
	if selected {
		// Clearing siblings first keeps the partial unique index satisfied
		// within the transaction.
		if _, err := db.ExecContext(ctx, `
UPDATE meal_alternatives
SET is_selected = 0, updated_at = ?
WHERE is_selected = 1
  AND meal_slot_id = (SELECT meal_slot_id FROM meal_alternatives WHERE id = ?)
  AND id <> ?
`, toMillis(updatedAt), alternativeID, alternativeID); err != nil {
			return fmt.Errorf("deselect sibling alternatives: %w", err)
		}
	}

	result, err := db.ExecContext(ctx, `
UPDATE meal_alternatives
SET is_selected = ?, updated_at = ?
WHERE id = ?
`, boolToInt(selected), toMillis(updatedAt), alternativeID)
	if err != nil {
		return fmt.Errorf("set alternative selection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set alternative selection rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func normalizeRecipeRecord(record storage.RecipeRecord) (storage.RecipeRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.AuthorUserID = strings.TrimSpace(record.AuthorUserID)
	record.Title = strings.TrimSpace(record.Title)
	record.ContentJSON = strings.TrimSpace(record.ContentJSON)
	record.Status = strings.TrimSpace(record.Status)
	if record.ID == "" {
		return storage.RecipeRecord{}, fmt.Errorf("recipe id is required")
	}
	if record.Title == "" {
		return storage.RecipeRecord{}, fmt.Errorf("recipe title is required")
	}
	if record.Status == "" {
		return storage.RecipeRecord{}, fmt.Errorf("recipe status is required")
	}
	if record.ContentJSON == "" {
		record.ContentJSON = "{}"
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func normalizePlanRecord(record storage.PlanRecord) (storage.PlanRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.UserID = strings.TrimSpace(record.UserID)
	record.Status = strings.TrimSpace(record.Status)
	if record.ID == "" {
		return storage.PlanRecord{}, fmt.Errorf("plan id is required")
	}
	if record.UserID == "" {
		return storage.PlanRecord{}, fmt.Errorf("plan user id is required")
	}
	if record.WeekStart.IsZero() {
		return storage.PlanRecord{}, fmt.Errorf("plan week start is required")
	}
	if record.Status == "" {
		return storage.PlanRecord{}, fmt.Errorf("plan status is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func normalizeMealSlotRecord(record storage.MealSlotRecord) (storage.MealSlotRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.PlanID = strings.TrimSpace(record.PlanID)
	record.MealType = strings.TrimSpace(record.MealType)
	record.RecipeID = strings.TrimSpace(record.RecipeID)
	record.Status = strings.TrimSpace(record.Status)
	record.Notes = strings.TrimSpace(record.Notes)
	if record.ID == "" {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot id is required")
	}
	if record.PlanID == "" {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot plan id is required")
	}
	if record.Day.IsZero() {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot day is required")
	}
	if record.MealType == "" {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot type is required")
	}
	if record.Status == "" {
		return storage.MealSlotRecord{}, fmt.Errorf("meal slot status is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func normalizeAlternativeRecord(record storage.AlternativeRecord) (storage.AlternativeRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.MealSlotID = strings.TrimSpace(record.MealSlotID)
	record.RecipeID = strings.TrimSpace(record.RecipeID)
	record.Reason = strings.TrimSpace(record.Reason)
	record.ReasonDetails = strings.TrimSpace(record.ReasonDetails)
	if record.ID == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative id is required")
	}
	if record.MealSlotID == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative meal slot id is required")
	}
	if record.RecipeID == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative recipe id is required")
	}
	if record.Reason == "" {
		return storage.AlternativeRecord{}, fmt.Errorf("alternative reason is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func normalizeChangeRecord(record storage.ChangeRecord) (storage.ChangeRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.MealSlotID = strings.TrimSpace(record.MealSlotID)
	record.ChangeType = strings.TrimSpace(record.ChangeType)
	record.Reason = strings.TrimSpace(record.Reason)
	record.ReasonDetails = strings.TrimSpace(record.ReasonDetails)
	record.PreviousValue = strings.TrimSpace(record.PreviousValue)
	record.NewValue = strings.TrimSpace(record.NewValue)
	record.PreviousRecipeID = strings.TrimSpace(record.PreviousRecipeID)
	record.NewRecipeID = strings.TrimSpace(record.NewRecipeID)
	record.ActorUserID = strings.TrimSpace(record.ActorUserID)
	if record.ID == "" {
		return storage.ChangeRecord{}, fmt.Errorf("change id is required")
	}
	if record.MealSlotID == "" {
		return storage.ChangeRecord{}, fmt.Errorf("change meal slot id is required")
	}
	if record.ChangeType == "" {
		return storage.ChangeRecord{}, fmt.Errorf("change type is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return record, nil
}

func scanRecipe(scan func(dest ...any) error) (storage.RecipeRecord, error) {
	var record storage.RecipeRecord
	var createdAtMillis, updatedAtMillis int64
	if err := scan(&record.ID, &record.AuthorUserID, &record.Title, &record.ContentJSON,
		&record.Status, &createdAtMillis, &updatedAtMillis); err != nil {
		return storage.RecipeRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAtMillis)
	record.UpdatedAt = fromMillis(updatedAtMillis)
	return record, nil
}

func scanPlan(scan func(dest ...any) error) (storage.PlanRecord, error) {
	var record storage.PlanRecord
	var weekStartMillis, createdAtMillis, updatedAtMillis int64
	if err := scan(&record.ID, &record.UserID, &weekStartMillis, &record.Status,
		&createdAtMillis, &updatedAtMillis); err != nil {
		return storage.PlanRecord{}, err
	}
	record.WeekStart = fromMillis(weekStartMillis)
	record.CreatedAt = fromMillis(createdAtMillis)
	record.UpdatedAt = fromMillis(updatedAtMillis)
	return record, nil
}

func scanMealSlot(scan func(dest ...any) error) (storage.MealSlotRecord, error) {
	var record storage.MealSlotRecord
	var dayMillis, createdAtMillis, updatedAtMillis int64
	if err := scan(&record.ID, &record.PlanID, &dayMillis, &record.MealType, &record.RecipeID,
		&record.Status, &record.Notes, &createdAtMillis, &updatedAtMillis); err != nil {
		return storage.MealSlotRecord{}, err
	}
	record.Day = fromMillis(dayMillis)
	record.CreatedAt = fromMillis(createdAtMillis)
	record.UpdatedAt = fromMillis(updatedAtMillis)
	return record, nil
}

func scanAlternative(scan func(dest ...any) error) (storage.AlternativeRecord, error) {
	var record storage.AlternativeRecord
	var selected int
	var createdAtMillis, updatedAtMillis int64
	if err := scan(&record.ID, &record.MealSlotID, &record.RecipeID, &record.Reason,
		&record.ReasonDetails, &selected, &createdAtMillis, &updatedAtMillis); err != nil {
		return storage.AlternativeRecord{}, err
	}
	record.IsSelected = selected == 1
	record.CreatedAt = fromMillis(createdAtMillis)
	record.UpdatedAt = fromMillis(updatedAtMillis)
	return record, nil
}

func scanChange(scan func(dest ...any) error) (storage.ChangeRecord, error) {
	var record storage.ChangeRecord
	var createdAtMillis int64
	if err := scan(&record.ID, &record.MealSlotID, &record.ChangeType, &record.Reason,
		&record.ReasonDetails, &record.PreviousValue, &record.NewValue,
		&record.PreviousRecipeID, &record.NewRecipeID, &record.ActorUserID,
		&createdAtMillis); err != nil {
		return storage.ChangeRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAtMillis)
	return record, nil
}
