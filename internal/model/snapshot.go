package model

import "time"

type MealPlanItem struct {
	Day      string `json:"day"`
	MealType string `json:"meal_type"`
	MealID   string `json:"meal_id"`
}

// MealPlan is the materialized "current" meal plan of one user. Version is
// the sequence number of the last event folded into it.
type MealPlan struct {
	UserID      string         `json:"user_id"`
	Items       []MealPlanItem `json:"items"`
	Version     int64          `json:"version"`
	LastUpdated time.Time      `json:"last_updated"`
}

type GroceryListItem struct {
	ID        string `json:"id"`
	ItemID    string `json:"item_id,omitempty"`
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Category  string `json:"category"`
	Count     int    `json:"count"`
	Purchased bool   `json:"purchased"`
	Details   string `json:"details,omitempty"`
}

// GroceryList is the materialized "current" grocery list of one user.
type GroceryList struct {
	UserID      string            `json:"user_id"`
	Items       []GroceryListItem `json:"items"`
	Version     int64             `json:"version"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Item returns the entry with the given identity, or nil.
func (l GroceryList) Item(id string) *GroceryListItem {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}

// Slot returns the meal id planned for day/mealType, or "".
func (p MealPlan) Slot(day, mealType string) string {
	for _, item := range p.Items {
		if item.Day == day && item.MealType == mealType {
			return item.MealID
		}
	}
	return ""
}
