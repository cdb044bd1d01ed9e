package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeRecipeTitleEmpty              = "RECIPE_TITLE_EMPTY"
	CodeRecipeInvalidStatus           = "RECIPE_INVALID_STATUS"
	CodeRecipeInvalidStatusTransition = "RECIPE_INVALID_STATUS_TRANSITION"
	CodeRecipeTransitionForbidden     = "RECIPE_TRANSITION_FORBIDDEN"
	CodeRecipeUnknown                 = "RECIPE_UNKNOWN"
	CodePlanUserRequired              = "PLAN_USER_REQUIRED"
	CodePlanInvalidWeekStart          = "PLAN_INVALID_WEEK_START"
	CodePlanInvalidStatus             = "PLAN_INVALID_STATUS"
	CodePlanInvalidStatusTransition   = "PLAN_INVALID_STATUS_TRANSITION"
	CodePlanLocked                    = "PLAN_LOCKED"
	CodeMealInvalidType               = "MEAL_INVALID_TYPE"
	CodeMealInvalidStatus             = "MEAL_INVALID_STATUS"
	CodeMealSlotDuplicate             = "MEAL_SLOT_DUPLICATE"
	CodeMealSlotDayOutOfRange         = "MEAL_SLOT_DAY_OUT_OF_RANGE"
	CodeMealSwitchNoOp                = "MEAL_SWITCH_NOOP"
	CodeAlternativeInvalidReason      = "ALTERNATIVE_INVALID_REASON"
	CodeChangeInvalidType             = "CHANGE_INVALID_TYPE"
	CodeChangeEmpty                   = "CHANGE_EMPTY"
	CodeChangeMissingRecipeReference  = "CHANGE_MISSING_RECIPE_REFERENCE"
	CodeUnauthenticated               = "UNAUTHENTICATED"
	CodeNotFound                      = "NOT_FOUND"
	CodeStorageFailure                = "STORAGE_FAILURE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Recipe lifecycle errors
		CodeRecipeTitleEmpty:              "Recipe title cannot be empty",
		CodeRecipeInvalidStatus:           "Invalid recipe status specified",
		CodeRecipeInvalidStatusTransition: "Cannot move recipe from {{.FromStatus}} to {{.ToStatus}}",
		CodeRecipeTransitionForbidden:     "Moving a recipe from {{.FromStatus}} to {{.ToStatus}} requires an approver",
		CodeRecipeUnknown:                 "Recipe {{.RecipeID}} could not be found",

		// Weekly plan errors
		CodePlanUserRequired:            "An owning user is required for a weekly plan",
		CodePlanInvalidWeekStart:        "Week start date is invalid",
		CodePlanInvalidStatus:           "Invalid weekly plan status specified",
		CodePlanInvalidStatusTransition: "Cannot move plan from {{.FromStatus}} to {{.ToStatus}}",
		CodePlanLocked:                  "This plan is {{.PlanStatus}} and can no longer be edited",

		// Meal slot errors
		CodeMealInvalidType:       "Invalid meal type specified",
		CodeMealInvalidStatus:     "Invalid meal status specified",
		CodeMealSlotDuplicate:     "This plan already has a {{.MealType}} meal on {{.Day}}",
		CodeMealSlotDayOutOfRange: "Day {{.Day}} is outside the plan week",
		CodeMealSwitchNoOp:        "The meal already uses this recipe",

		// Alternative errors
		CodeAlternativeInvalidReason: "Invalid alternative reason specified",

		// Change ledger errors
		CodeChangeInvalidType:            "Invalid change type specified",
		CodeChangeEmpty:                  "A change record needs a previous or new value",
		CodeChangeMissingRecipeReference: "A recipe switch needs both the previous and new recipe",

		// Caller identity errors
		CodeUnauthenticated: "Sign in to continue",

		// Storage errors
		CodeNotFound:       "The requested record was not found",
		CodeStorageFailure: "Something went wrong saving your changes, please try again",
	},
}
