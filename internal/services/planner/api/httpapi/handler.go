// Package httpapi exposes the planner services over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/weekbite/weekbite.app/internal/platform/errors"
	"github.com/weekbite/weekbite.app/internal/platform/errors/i18n"
	"github.com/weekbite/weekbite.app/internal/services/planner/domain/plan"
	"github.com/weekbite/weekbite.app/internal/services/planner/domain/recipe"
	"github.com/weekbite/weekbite.app/internal/services/shared/authctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const dayFormat = "2006-01-02"

// Handler serves the planner HTTP API.
type Handler struct {
	recipes *recipe.Service
	plans   *plan.Service
}

// NewHandler builds an HTTP handler over the planner domain services.
func NewHandler(recipes *recipe.Service, plans *plan.Service) *Handler {
	return &Handler{recipes: recipes, plans: plans}
}

// RegisterRoutes registers planner HTTP endpoints on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}

	mux.HandleFunc("POST /v1/recipes", h.handleCreateRecipe)
	mux.HandleFunc("GET /v1/recipes/{id}", h.handleGetRecipe)
	mux.HandleFunc("POST /v1/recipes/{id}/transition", h.handleTransitionRecipe)

	mux.HandleFunc("POST /v1/plans", h.handleCreatePlan)
	mux.HandleFunc("GET /v1/plans/{id}", h.handleGetPlan)
	mux.HandleFunc("POST /v1/plans/{id}/transition", h.handleTransitionPlan)
	mux.HandleFunc("POST /v1/plans/{id}/meals", h.handleAddMealSlot)

	mux.HandleFunc("POST /v1/meals/{id}/switch-recipe", h.handleSwitchRecipe)
	mux.HandleFunc("POST /v1/meals/{id}/status", h.handleSetMealStatus)
	mux.HandleFunc("POST /v1/meals/{id}/notes", h.handleUpdateNotes)
	mux.HandleFunc("POST /v1/meals/{id}/alternatives", h.handleProposeAlternative)
	mux.HandleFunc("GET /v1/meals/{id}/alternatives", h.handleListAlternatives)
	mux.HandleFunc("GET /v1/meals/{id}/changes", h.handleChangeHistory)

	mux.HandleFunc("POST /v1/alternatives/{id}/select", h.handleSelectAlternative)
	mux.HandleFunc("POST /v1/alternatives/{id}/promote", h.handlePromoteAlternative)

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// WithTracing wraps next with a per-request server span.
func WithTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("planner/httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type createRecipeRequest struct {
	Title       string `json:"title"`
	ContentJSON string `json:"content,omitempty"`
}

type transitionRequest struct {
	Target string `json:"target"`
}

type recipeResponse struct {
	ID           string `json:"id"`
	AuthorUserID string `json:"author_user_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toRecipeResponse(value recipe.Recipe) recipeResponse {
	return recipeResponse{
		ID:           value.ID,
		AuthorUserID: value.AuthorUserID,
		Title:        value.Title,
		Content:      value.ContentJSON,
		Status:       string(value.Status),
		CreatedAt:    value.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    value.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req createRecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.recipes.Create(r.Context(), recipe.CreateRecipeInput{
		AuthorUserID: caller.UserID,
		Title:        req.Title,
		ContentJSON:  req.ContentJSON,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecipeResponse(created))
}

func (h *Handler) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	found, err := h.recipes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(found))
}

func (h *Handler) handleTransitionRecipe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, ok := recipe.ParseStatus(req.Target)
	if !ok {
		writeError(w, r, apperrors.WithMetadata(
			apperrors.CodeRecipeInvalidStatus,
			fmt.Sprintf("unknown recipe status %q", req.Target),
			map[string]string{"Status": req.Target},
		))
		return
	}
	updated, err := h.recipes.TransitionStatus(r.Context(), r.PathValue("id"), target, caller.Privileged)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(updated))
}

type createPlanRequest struct {
	WeekStart string `json:"week_start"`
}

type planResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type planViewResponse struct {
	planResponse
	Meals []mealSlotResponse `json:"meals"`
}

func toPlanResponse(value plan.WeeklyPlan) planResponse {
	return planResponse{
		ID:        value.ID,
		UserID:    value.UserID,
		WeekStart: value.WeekStart.Format(dayFormat),
		WeekEnd:   value.WeekEnd().Format(dayFormat),
		Status:    string(value.Status),
		CreatedAt: value.CreatedAt.Format(time.RFC3339),
		UpdatedAt: value.UpdatedAt.Format(time.RFC3339),
	}
}

type mealSlotResponse struct {
	ID        string `json:"id"`
	PlanID    string `json:"plan_id"`
	Day       string `json:"day"`
	MealType  string `json:"meal_type"`
	RecipeID  string `json:"recipe_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toMealSlotResponse(value plan.MealSlot) mealSlotResponse {
	return mealSlotResponse{
		ID:        value.ID,
		PlanID:    value.PlanID,
		Day:       value.Day.Format(dayFormat),
		MealType:  string(value.MealType),
		RecipeID:  value.RecipeID,
		Status:    string(value.Status),
		Notes:     value.Notes,
		CreatedAt: value.CreatedAt.Format(time.RFC3339),
		UpdatedAt: value.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req createPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	weekStart, err := parseDay(req.WeekStart)
	if err != nil {
		writeError(w, r, apperrors.WithMetadata(
			apperrors.CodePlanInvalidWeekStart,
			fmt.Sprintf("invalid week start %q", req.WeekStart),
			map[string]string{"WeekStart": req.WeekStart},
		))
		return
	}
	created, err := h.plans.CreatePlan(r.Context(), plan.CreateWeeklyPlanInput{
		UserID:    caller.UserID,
		WeekStart: weekStart,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanResponse(created))
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	view, err := h.plans.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := planViewResponse{
		planResponse: toPlanResponse(view.Plan),
		Meals:        make([]mealSlotResponse, 0, len(view.Slots)),
	}
	for _, slot := range view.Slots {
		response.Meals = append(response.Meals, toMealSlotResponse(slot))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleTransitionPlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, ok := plan.ParseStatus(req.Target)
	if !ok {
		writeError(w, r, apperrors.WithMetadata(
			apperrors.CodePlanInvalidStatus,
			fmt.Sprintf("unknown plan status %q", req.Target),
			map[string]string{"Status": req.Target},
		))
		return
	}
	updated, err := h.plans.TransitionPlan(r.Context(), r.PathValue("id"), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanResponse(updated))
}

type addMealSlotRequest struct {
	Day      string `json:"day"`
	MealType string `json:"meal_type"`
	RecipeID string `json:"recipe_id"`
	Notes    string `json:"notes,omitempty"`
}

func (h *Handler) handleAddMealSlot(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	var req addMealSlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		writeError(w, r, apperrors.WithMetadata(
			apperrors.CodeMealSlotDayOutOfRange,
			fmt.Sprintf("invalid day %q", req.Day),
			map[string]string{"Day": req.Day},
		))
		return
	}
	created, err := h.plans.AddMealSlot(r.Context(), plan.CreateMealSlotInput{
		PlanID:   r.PathValue("id"),
		Day:      day,
		MealType: plan.MealType(req.MealType),
		RecipeID: req.RecipeID,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMealSlotResponse(created))
}

type switchRecipeRequest struct {
	NewRecipeID   string `json:"new_recipe_id"`
	Reason        string `json:"reason"`
	ReasonDetails string `json:"reason_details,omitempty"`
}

func (h *Handler) handleSwitchRecipe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req switchRecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.plans.SwitchRecipe(r.Context(), plan.SwitchRecipeInput{
		MealSlotID:    r.PathValue("id"),
		NewRecipeID:   req.NewRecipeID,
		Reason:        plan.Reason(req.Reason),
		ReasonDetails: req.ReasonDetails,
		ActorUserID:   caller.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMealSlotResponse(updated))
}

type setMealStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetMealStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req setMealStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.plans.SetMealStatus(r.Context(), plan.SetMealStatusInput{
		MealSlotID:  r.PathValue("id"),
		Status:      plan.MealStatus(req.Status),
		ActorUserID: caller.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMealSlotResponse(updated))
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req updateNotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.plans.UpdateNotes(r.Context(), plan.UpdateNotesInput{
		MealSlotID:  r.PathValue("id"),
		Notes:       req.Notes,
		ActorUserID: caller.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMealSlotResponse(updated))
}

type proposeAlternativeRequest struct {
	RecipeID      string `json:"recipe_id"`
	Reason        string `json:"reason"`
	ReasonDetails string `json:"reason_details,omitempty"`
}

type alternativeResponse struct {
	ID            string `json:"id"`
	MealSlotID    string `json:"meal_slot_id"`
	RecipeID      string `json:"recipe_id"`
	Reason        string `json:"reason"`
	ReasonDetails string `json:"reason_details,omitempty"`
	IsSelected    bool   `json:"is_selected"`
	CreatedAt     string `json:"created_at"`
}

func toAlternativeResponse(value plan.Alternative) alternativeResponse {
	return alternativeResponse{
		ID:            value.ID,
		MealSlotID:    value.MealSlotID,
		RecipeID:      value.RecipeID,
		Reason:        string(value.Reason),
		ReasonDetails: value.ReasonDetails,
		IsSelected:    value.IsSelected,
		CreatedAt:     value.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleProposeAlternative(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	var req proposeAlternativeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.plans.ProposeAlternative(r.Context(), plan.ProposeAlternativeInput{
		MealSlotID:    r.PathValue("id"),
		RecipeID:      req.RecipeID,
		Reason:        plan.Reason(req.Reason),
		ReasonDetails: req.ReasonDetails,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAlternativeResponse(created))
}

func (h *Handler) handleListAlternatives(w http.ResponseWriter, r *http.Request) {
	listed, err := h.plans.ListAlternatives(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := make([]alternativeResponse, 0, len(listed))
	for _, alternative := range listed {
		response = append(response, toAlternativeResponse(alternative))
	}
	writeJSON(w, http.StatusOK, response)
}

type changeResponse struct {
	ID               string `json:"id"`
	MealSlotID       string `json:"meal_slot_id"`
	ChangeType       string `json:"change_type"`
	Reason           string `json:"reason,omitempty"`
	ReasonDetails    string `json:"reason_details,omitempty"`
	PreviousValue    string `json:"previous_value,omitempty"`
	NewValue         string `json:"new_value,omitempty"`
	PreviousRecipeID string `json:"previous_recipe_id,omitempty"`
	NewRecipeID      string `json:"new_recipe_id,omitempty"`
	ActorUserID      string `json:"actor_user_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func (h *Handler) handleChangeHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.plans.ChangeHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := make([]changeResponse, 0, len(history))
	for _, entry := range history {
		response = append(response, changeResponse{
			ID:               entry.ID,
			MealSlotID:       entry.MealSlotID,
			ChangeType:       string(entry.ChangeType),
			Reason:           string(entry.Reason),
			ReasonDetails:    entry.ReasonDetails,
			PreviousValue:    entry.PreviousValue,
			NewValue:         entry.NewValue,
			PreviousRecipeID: entry.PreviousRecipeID,
			NewRecipeID:      entry.NewRecipeID,
			ActorUserID:      entry.ActorUserID,
			CreatedAt:        entry.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

type selectAlternativeRequest struct {
	Selected bool `json:"selected"`
}

func (h *Handler) handleSelectAlternative(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	var req selectAlternativeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.plans.SelectAlternative(r.Context(), r.PathValue("id"), req.Selected)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlternativeResponse(updated))
}

func (h *Handler) handlePromoteAlternative(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	updated, err := h.plans.PromoteAlternative(r.Context(), r.PathValue("id"), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMealSlotResponse(updated))
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("day is required")
	}
	return time.ParseInLocation(dayFormat, value, time.UTC)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (authctx.Caller, bool) {
	caller, ok := authctx.CallerFromContext(r.Context())
	if !ok || strings.TrimSpace(caller.UserID) == "" {
		writeError(w, r, apperrors.New(apperrors.CodeUnauthenticated, "authentication is required"))
		return authctx.Caller{}, false
	}
	return caller, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeJSONError(w, http.StatusBadRequest, string(apperrors.CodeUnknown), "invalid request body")
		return false
	}
	return true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps any planner error onto its HTTP status and localized
// message. Unknown errors are treated as transient persistence failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	metadata := apperrors.MetadataOf(err)
	switch {
	case code != apperrors.CodeUnknown:
		// Mapped below.
	case errors.Is(err, recipe.ErrNotFound), errors.Is(err, plan.ErrNotFound):
		code = apperrors.CodeNotFound
	case errors.Is(err, recipe.ErrConflict), errors.Is(err, plan.ErrConflict):
		code = apperrors.CodeRecipeInvalidStatusTransition
		if errors.Is(err, plan.ErrConflict) {
			code = apperrors.CodePlanInvalidStatusTransition
		}
	case errors.Is(err, recipe.ErrRecipeIDRequired),
		errors.Is(err, plan.ErrPlanIDRequired),
		errors.Is(err, plan.ErrSlotIDRequired),
		errors.Is(err, plan.ErrAlternativeIDRequired):
		writeJSONError(w, http.StatusBadRequest, string(apperrors.CodeUnknown), err.Error())
		return
	default:
		code = apperrors.CodeStorageFailure
	}

	catalog := i18n.GetCatalog(r.Header.Get("Accept-Language"))
	writeJSONError(w, code.HTTPStatus(), string(code), catalog.Format(string(code), metadata))
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
