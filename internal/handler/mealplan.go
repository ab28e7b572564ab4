package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/mealplan/internal/auth"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/projection"
)

type MealPlanHandler struct {
	service *projection.Service
	logger  *slog.Logger
}

func NewMealPlanHandler(service *projection.Service, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{service: service, logger: logger.With("component", "meal_plan_handler")}
}

type addMealRequest struct {
	Day      string `json:"day"`
	MealType string `json:"meal_type"`
	MealID   string `json:"meal_id"`
}

func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.MealPlan(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get meal plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	var req addMealRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	plan, err := h.service.AddMeal(r.Context(), auth.UserID(r.Context()), req.Day, req.MealType, req.MealID)
	if err != nil {
		writeServiceError(w, h.logger, "add meal", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.RemoveMeal(r.Context(), auth.UserID(r.Context()), r.PathValue("day"), r.PathValue("meal_type"))
	if err != nil {
		writeServiceError(w, h.logger, "remove meal", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Clear(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.ClearMealPlan(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "clear meal plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Events(w http.ResponseWriter, r *http.Request) {
	listEvents(w, r, h.service, h.logger, model.StreamMealPlan)
}

func (h *MealPlanHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.service.Rebuild(r.Context(), userID, model.StreamMealPlan); err != nil {
		writeServiceError(w, h.logger, "rebuild meal plan", err)
		return
	}
	h.Get(w, r)
}

func listEvents(w http.ResponseWriter, r *http.Request, service *projection.Service, logger *slog.Logger, stream model.Stream) {
	tr, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid since or until")
		return
	}
	events, err := service.History(r.Context(), auth.UserID(r.Context()), stream, tr)
	if err != nil {
		writeServiceError(w, logger, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
