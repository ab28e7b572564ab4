package model

import "time"

// Ingredient is one line of a meal's recipe. The shared grocery library
// stores items of the same shape.
type Ingredient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Details  string `json:"details,omitempty"`
}

type Meal struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Cuisine     string       `json:"cuisine"`
	ImageURL    string       `json:"image_url,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type LibraryItem struct {
	Ingredient
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
