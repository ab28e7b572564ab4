package model

import (
	"encoding/json"
	"time"
)

// Stream names one of the two per-user event logs.
type Stream string

const (
	StreamMealPlan    Stream = "meal_plan"
	StreamGroceryList Stream = "grocery_list"
)

// Valid reports whether s is a known stream.
func (s Stream) Valid() bool {
	return s == StreamMealPlan || s == StreamGroceryList
}

type EventType string

// Meal plan stream.
const (
	MealAdded       EventType = "MEAL_ADDED"
	MealRemoved     EventType = "MEAL_REMOVED"
	MealPlanCreated EventType = "MEAL_PLAN_CREATED"
	MealPlanCleared EventType = "MEAL_PLAN_CLEARED"
)

// Grocery list stream.
const (
	ItemAdded         EventType = "ITEM_ADDED"
	ItemRemoved       EventType = "ITEM_REMOVED"
	ItemUpdated       EventType = "ITEM_UPDATED"
	MarkedPurchased   EventType = "MARKED_PURCHASED"
	UnmarkedPurchased EventType = "UNMARKED_PURCHASED"
	ListCleared       EventType = "LIST_CLEARED"
)

// Event is an immutable record in a user's stream. ID, Seq and Timestamp are
// assigned by the event store at append time.
type Event struct {
	ID        string          `json:"id"`
	Stream    Stream          `json:"stream"`
	Type      EventType       `json:"type"`
	UserID    string          `json:"user_id"`
	Seq       int64           `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent is what a caller hands to the event store; the store fills in
// the rest.
type NewEvent struct {
	UserID string
	Stream Stream
	Type   EventType
	Data   json.RawMessage
}

// TimeRange bounds an event listing. Zero values are unbounded and both ends
// are inclusive.
type TimeRange struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && t.After(r.Until) {
		return false
	}
	return true
}

type MealPlanPayload struct {
	Day      string `json:"day,omitempty"`
	MealType string `json:"meal_type,omitempty"`
	MealID   string `json:"meal_id,omitempty"`
}

// GroceryItemPayload carries the grocery list event fields. Count and
// Purchased are pointers so ITEM_UPDATED can tell "absent" from zero.
type GroceryItemPayload struct {
	ItemID    string `json:"item_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  string `json:"quantity,omitempty"`
	Category  string `json:"category,omitempty"`
	Details   string `json:"details,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Purchased *bool  `json:"purchased,omitempty"`
}
