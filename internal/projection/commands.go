package projection

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/mealplan/internal/grocery"
	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/reducer"
)

func (s *Service) AddMeal(ctx context.Context, userID, day, mealType, mealID string) (model.MealPlan, error) {
	if day == "" || mealType == "" || mealID == "" {
		return model.MealPlan{}, fmt.Errorf("%w: day, meal type and meal id are required", ErrInvalidCommand)
	}
	return s.RecordMealPlanEvent(ctx, userID, model.MealAdded, model.MealPlanPayload{Day: day, MealType: mealType, MealID: mealID})
}

func (s *Service) RemoveMeal(ctx context.Context, userID, day, mealType string) (model.MealPlan, error) {
	if day == "" || mealType == "" {
		return model.MealPlan{}, fmt.Errorf("%w: day and meal type are required", ErrInvalidCommand)
	}
	return s.RecordMealPlanEvent(ctx, userID, model.MealRemoved, model.MealPlanPayload{Day: day, MealType: mealType})
}

func (s *Service) ClearMealPlan(ctx context.Context, userID string) (model.MealPlan, error) {
	return s.RecordMealPlanEvent(ctx, userID, model.MealPlanCleared, nil)
}

func (s *Service) CreateMealPlan(ctx context.Context, userID string) (model.MealPlan, error) {
	return s.RecordMealPlanEvent(ctx, userID, model.MealPlanCreated, nil)
}

// AddItem puts item on the grocery list. Ad hoc items without an item id get
// a fresh one, a missing category is guessed from the name and the count
// defaults to 1. Adding an item already on the list raises its count.
func (s *Service) AddItem(ctx context.Context, userID string, item model.GroceryItemPayload) (model.GroceryList, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return model.GroceryList{}, fmt.Errorf("%w: item name is required", ErrInvalidCommand)
	}
	if item.ItemID == "" {
		item.ItemID = s.NewID()
	}
	if item.Category == "" {
		item.Category = grocery.Categorize(item.Name)
	}
	if item.Count == nil || *item.Count < 1 {
		one := 1
		item.Count = &one
	}
	if item.Purchased == nil {
		no := false
		item.Purchased = &no
	}
	return s.RecordGroceryListEvent(ctx, userID, model.ItemAdded, item)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (model.GroceryList, error) {
	if itemID == "" {
		return model.GroceryList{}, fmt.Errorf("%w: item id is required", ErrInvalidCommand)
	}
	return s.RecordGroceryListEvent(ctx, userID, model.ItemRemoved, model.GroceryItemPayload{ItemID: itemID})
}

// UpdateItem patches the fields set in patch. Counts below 1 are rejected
// before anything is recorded.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, patch model.GroceryItemPayload) (model.GroceryList, error) {
	if itemID == "" {
		return model.GroceryList{}, fmt.Errorf("%w: item id is required", ErrInvalidCommand)
	}
	if patch.Count != nil && *patch.Count < 1 {
		return model.GroceryList{}, ErrInvalidCount
	}
	return s.RecordGroceryListEvent(ctx, userID, model.ItemUpdated, model.GroceryItemPayload{
		ItemID:    itemID,
		Quantity:  patch.Quantity,
		Count:     patch.Count,
		Purchased: patch.Purchased,
	})
}

func (s *Service) SetPurchased(ctx context.Context, userID, itemID string, purchased bool) (model.GroceryList, error) {
	if itemID == "" {
		return model.GroceryList{}, fmt.Errorf("%w: item id is required", ErrInvalidCommand)
	}
	typ := model.UnmarkedPurchased
	if purchased {
		typ = model.MarkedPurchased
	}
	return s.RecordGroceryListEvent(ctx, userID, typ, model.GroceryItemPayload{ItemID: itemID})
}

func (s *Service) ClearGroceryList(ctx context.Context, userID string) (model.GroceryList, error) {
	return s.RecordGroceryListEvent(ctx, userID, model.ListCleared, nil)
}

// GenerateGroceryList records one ITEM_ADDED per distinct ingredient of the
// user's current meal plan and returns the resulting list. Running it twice
// adds the ingredients twice.
func (s *Service) GenerateGroceryList(ctx context.Context, userID string) (model.GroceryList, error) {
	if s.Generator == nil {
		return model.GroceryList{}, fmt.Errorf("%w: grocery list generation is not configured", ErrInvalidCommand)
	}
	plan, err := s.MealPlan(ctx, userID)
	if err != nil {
		return model.GroceryList{}, err
	}
	items, err := s.Generator.Generate(ctx, plan)
	if err != nil {
		return model.GroceryList{}, fmt.Errorf("generate grocery list: %w: %w", ErrStoreUnavailable, err)
	}

	recorded := make([]model.Event, 0, len(items))
	for _, item := range items {
		evt, err := s.append(ctx, userID, model.StreamGroceryList, model.ItemAdded, item)
		if err != nil {
			return model.GroceryList{}, err
		}
		recorded = append(recorded, evt)
	}

	list, err := project(ctx, s, userID, model.StreamGroceryList, reducer.GroceryList)
	if err != nil {
		return model.GroceryList{}, err
	}
	for _, evt := range recorded {
		s.notify(ctx, evt)
	}
	s.Logger.Info("grocery list generated", "user_id", userID, "meals", len(plan.Items), "items", len(items))
	return list, nil
}
