package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/mealplan/internal/grocery"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/store"
)

// CatalogHandler serves the meal catalog and the shared grocery library.
type CatalogHandler struct {
	meals   *store.MealStore
	library *store.LibraryStore
	logger  *slog.Logger
}

func NewCatalogHandler(meals *store.MealStore, library *store.LibraryStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{meals: meals, library: library, logger: logger.With("component", "catalog_handler")}
}

type mealRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Cuisine     string             `json:"cuisine"`
	ImageURL    string             `json:"image_url"`
	Ingredients []model.Ingredient `json:"ingredients"`
}

func (req mealRequest) meal() (model.Meal, bool) {
	meal := model.Meal{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Cuisine:     req.Cuisine,
		ImageURL:    req.ImageURL,
		Ingredients: make([]model.Ingredient, 0, len(req.Ingredients)),
	}
	if meal.Name == "" {
		return meal, false
	}
	for _, ing := range req.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			return meal, false
		}
		if ing.Category == "" {
			ing.Category = grocery.Categorize(ing.Name)
		}
		meal.Ingredients = append(meal.Ingredients, ing)
	}
	return meal, true
}

func (h *CatalogHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.meals.List(r.Context())
	if err != nil {
		h.logger.Error("list meals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meals")
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (h *CatalogHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := h.meals.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meal")
		return
	}
	if meal == nil {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (h *CatalogHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	meal, ok := req.meal()
	if !ok {
		writeError(w, http.StatusBadRequest, "meal and ingredient names are required")
		return
	}

	created, err := h.meals.Create(r.Context(), meal)
	if err != nil {
		h.logger.Error("create meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create meal")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	meal, ok := req.meal()
	if !ok {
		writeError(w, http.StatusBadRequest, "meal and ingredient names are required")
		return
	}
	meal.ID = r.PathValue("id")

	updated, err := h.meals.Update(r.Context(), meal)
	if err != nil {
		h.logger.Error("update meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update meal")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := h.meals.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Error("delete meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := h.library.List(r.Context())
	if err != nil {
		h.logger.Error("list library", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list library")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateLibraryItem adds an item to the shared library. A name that already
// exists (ignoring case) returns the existing entry.
func (h *CatalogHandler) CreateLibraryItem(w http.ResponseWriter, r *http.Request) {
	var ing model.Ingredient
	if err := decode(w, r, &ing); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := h.library.FindByName(r.Context(), ing.Name)
	if err != nil {
		h.logger.Error("find library item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create library item")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	ing.ID = ""
	if ing.Category == "" {
		ing.Category = grocery.Categorize(ing.Name)
	}
	item, err := h.library.Create(r.Context(), ing)
	if err != nil {
		h.logger.Error("create library item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create library item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateLibraryItem(w http.ResponseWriter, r *http.Request) {
	var ing model.Ingredient
	if err := decode(w, r, &ing); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	ing.ID = r.PathValue("id")

	item, err := h.library.Update(r.Context(), ing)
	if err != nil {
		h.logger.Error("update library item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update library item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "library item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) DeleteLibraryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Error("delete library item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete library item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
