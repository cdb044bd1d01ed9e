// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Recipe lifecycle errors
	CodeRecipeTitleEmpty              Code = "RECIPE_TITLE_EMPTY"
	CodeRecipeInvalidStatus           Code = "RECIPE_INVALID_STATUS"
	CodeRecipeInvalidStatusTransition Code = "RECIPE_INVALID_STATUS_TRANSITION"
	CodeRecipeTransitionForbidden     Code = "RECIPE_TRANSITION_FORBIDDEN"
	CodeRecipeUnknown                 Code = "RECIPE_UNKNOWN"

	// Weekly plan errors
	CodePlanUserRequired            Code = "PLAN_USER_REQUIRED"
	CodePlanInvalidWeekStart        Code = "PLAN_INVALID_WEEK_START"
	CodePlanInvalidStatus           Code = "PLAN_INVALID_STATUS"
	CodePlanInvalidStatusTransition Code = "PLAN_INVALID_STATUS_TRANSITION"
	CodePlanLocked                  Code = "PLAN_LOCKED"

	// Meal slot errors
	CodeMealInvalidType       Code = "MEAL_INVALID_TYPE"
	CodeMealInvalidStatus     Code = "MEAL_INVALID_STATUS"
	CodeMealSlotDuplicate     Code = "MEAL_SLOT_DUPLICATE"
	CodeMealSlotDayOutOfRange Code = "MEAL_SLOT_DAY_OUT_OF_RANGE"
	CodeMealSwitchNoOp        Code = "MEAL_SWITCH_NOOP"

	// Alternative errors
	CodeAlternativeInvalidReason Code = "ALTERNATIVE_INVALID_REASON"

	// Change ledger errors
	CodeChangeInvalidType            Code = "CHANGE_INVALID_TYPE"
	CodeChangeEmpty                  Code = "CHANGE_EMPTY"
	CodeChangeMissingRecipeReference Code = "CHANGE_MISSING_RECIPE_REFERENCE"

	// Caller identity errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP response status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeRecipeTitleEmpty,
		CodeRecipeInvalidStatus,
		CodePlanUserRequired,
		CodePlanInvalidWeekStart,
		CodePlanInvalidStatus,
		CodeMealInvalidType,
		CodeMealInvalidStatus,
		CodeMealSlotDayOutOfRange,
		CodeAlternativeInvalidReason,
		CodeChangeInvalidType,
		CodeChangeEmpty,
		CodeChangeMissingRecipeReference,
		CodeRecipeUnknown:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodeRecipeInvalidStatusTransition,
		CodePlanInvalidStatusTransition,
		CodePlanLocked,
		CodeMealSwitchNoOp,
		CodeMealSlotDuplicate:
		return http.StatusConflict

	// Forbidden - caller lacks required privilege
	case CodeRecipeTransitionForbidden:
		return http.StatusForbidden

	// Unauthorized - caller identity missing or invalid
	case CodeUnauthenticated:
		return http.StatusUnauthorized

	// Not found - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Service unavailable - transient persistence failure, retryable
	case CodeStorageFailure:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may retry the failed operation as-is.
// Only collaborator I/O failures qualify; validation and policy rejections
// require a change in caller state first.
func (c Code) Retryable() bool {
	return c == CodeStorageFailure
}
