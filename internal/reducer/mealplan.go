package reducer

import "github.com/dukerupert/mealplan/internal/model"

// MealPlan replays events from an empty plan.
func MealPlan(userID string, events []model.Event) model.MealPlan {
	plan := model.MealPlan{UserID: userID, Items: []model.MealPlanItem{}}
	for _, evt := range events {
		plan = ApplyMealPlan(plan, evt)
	}
	return plan
}

// ApplyMealPlan folds a single event into plan and returns the new plan.
// The input is not modified.
func ApplyMealPlan(plan model.MealPlan, evt model.Event) model.MealPlan {
	items := make([]model.MealPlanItem, 0, len(plan.Items)+1)
	items = append(items, plan.Items...)
	next := model.MealPlan{UserID: plan.UserID, Items: items}
	next.Version = evt.Seq
	next.LastUpdated = evt.Timestamp

	switch evt.Type {
	case model.MealAdded:
		var p model.MealPlanPayload
		if !decode(evt.Data, &p) {
			break
		}
		next.Items = removeSlot(next.Items, p.Day, p.MealType)
		if p.MealID != "" {
			next.Items = append(next.Items, model.MealPlanItem{Day: p.Day, MealType: p.MealType, MealID: p.MealID})
		}
	case model.MealRemoved:
		var p model.MealPlanPayload
		if !decode(evt.Data, &p) {
			break
		}
		next.Items = removeSlot(next.Items, p.Day, p.MealType)
	case model.MealPlanCleared:
		next.Items = next.Items[:0]
	case model.MealPlanCreated:
	}
	return next
}

func removeSlot(items []model.MealPlanItem, day, mealType string) []model.MealPlanItem {
	for i, item := range items {
		if item.Day == day && item.MealType == mealType {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}
