package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/mealplan/internal/auth"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/projection"
)

type GroceryListHandler struct {
	service *projection.Service
	logger  *slog.Logger
}

func NewGroceryListHandler(service *projection.Service, logger *slog.Logger) *GroceryListHandler {
	return &GroceryListHandler{service: service, logger: logger.With("component", "grocery_list_handler")}
}

type addItemRequest struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Count    *int   `json:"count"`
	Details  string `json:"details"`
}

type updateItemRequest struct {
	Quantity  string `json:"quantity"`
	Count     *int   `json:"count"`
	Purchased *bool  `json:"purchased"`
}

func (h *GroceryListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.GroceryList(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get grocery list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	list, err := h.service.AddItem(r.Context(), auth.UserID(r.Context()), model.GroceryItemPayload{
		ItemID:   req.ItemID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
		Count:    req.Count,
		Details:  req.Details,
	})
	if err != nil {
		writeServiceError(w, h.logger, "add item", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	list, err := h.service.UpdateItem(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), model.GroceryItemPayload{
		Quantity:  req.Quantity,
		Count:     req.Count,
		Purchased: req.Purchased,
	})
	if err != nil {
		writeServiceError(w, h.logger, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.RemoveItem(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) MarkPurchased(w http.ResponseWriter, r *http.Request) {
	h.setPurchased(w, r, true)
}

func (h *GroceryListHandler) UnmarkPurchased(w http.ResponseWriter, r *http.Request) {
	h.setPurchased(w, r, false)
}

func (h *GroceryListHandler) setPurchased(w http.ResponseWriter, r *http.Request, purchased bool) {
	list, err := h.service.SetPurchased(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), purchased)
	if err != nil {
		writeServiceError(w, h.logger, "set purchased", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) Clear(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ClearGroceryList(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "clear grocery list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) Generate(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.GenerateGroceryList(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "generate grocery list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryListHandler) Events(w http.ResponseWriter, r *http.Request) {
	listEvents(w, r, h.service, h.logger, model.StreamGroceryList)
}

func (h *GroceryListHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Rebuild(r.Context(), auth.UserID(r.Context()), model.StreamGroceryList); err != nil {
		writeServiceError(w, h.logger, "rebuild grocery list", err)
		return
	}
	h.Get(w, r)
}
