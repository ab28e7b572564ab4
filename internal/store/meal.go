package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/google/uuid"
)

// MealStore is the meal catalog. Meals and their ingredient lines are
// written together.
type MealStore struct {
	db    *sql.DB
	NewID func() string
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db, NewID: uuid.NewString}
}

func scanMeal(scanner interface{ Scan(...any) error }) (*model.Meal, error) {
	var m model.Meal
	err := scanner.Scan(&m.ID, &m.Name, &m.Description, &m.Cuisine, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Ingredients = []model.Ingredient{}
	return &m, nil
}

const mealCols = `id, name, description, cuisine, image_url, created_at, updated_at`

// Create stores a new meal. An empty ID is replaced by a UUID, as are empty
// ingredient IDs.
func (s *MealStore) Create(ctx context.Context, meal model.Meal) (*model.Meal, error) {
	now := time.Now().UTC()
	if meal.ID == "" {
		meal.ID = s.NewID()
	}
	meal.Ingredients = s.withIDs(meal.Ingredients)
	meal.CreatedAt = now
	meal.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create meal: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meals (`+mealCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.Name, meal.Description, meal.Cuisine, meal.ImageURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	if err := insertIngredients(ctx, tx, meal.ID, meal.Ingredients); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create meal: %w", err)
	}
	return &meal, nil
}

func (s *MealStore) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mealCols+` FROM meals WHERE id = ?`, id)
	m, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal %s: %w", id, err)
	}

	byMeal, err := s.ingredients(ctx, `WHERE meal_id = ?`, id)
	if err != nil {
		return nil, err
	}
	if ings, ok := byMeal[id]; ok {
		m.Ingredients = ings
	}
	return m, nil
}

// MealByID satisfies grocery.MealCatalog.
func (s *MealStore) MealByID(ctx context.Context, id string) (*model.Meal, error) {
	return s.GetByID(ctx, id)
}

func (s *MealStore) List(ctx context.Context) ([]model.Meal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mealCols+` FROM meals ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byMeal, err := s.ingredients(ctx, ``)
	if err != nil {
		return nil, err
	}
	for i := range meals {
		if ings, ok := byMeal[meals[i].ID]; ok {
			meals[i].Ingredients = ings
		}
	}
	return meals, nil
}

// Update replaces the meal's fields and ingredient lines.
func (s *MealStore) Update(ctx context.Context, meal model.Meal) (*model.Meal, error) {
	now := time.Now().UTC()
	meal.Ingredients = s.withIDs(meal.Ingredients)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update meal: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE meals SET name = ?, description = ?, cuisine = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		meal.Name, meal.Description, meal.Cuisine, meal.ImageURL, now, meal.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_ingredients WHERE meal_id = ?`, meal.ID); err != nil {
		return nil, fmt.Errorf("clear ingredients: %w", err)
	}
	if err := insertIngredients(ctx, tx, meal.ID, meal.Ingredients); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update meal: %w", err)
	}
	return s.GetByID(ctx, meal.ID)
}

func (s *MealStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

func (s *MealStore) withIDs(ings []model.Ingredient) []model.Ingredient {
	out := make([]model.Ingredient, len(ings))
	for i, ing := range ings {
		if ing.ID == "" {
			ing.ID = s.NewID()
		}
		out[i] = ing
	}
	return out
}

func insertIngredients(ctx context.Context, tx *sql.Tx, mealID string, ings []model.Ingredient) error {
	for i, ing := range ings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO meal_ingredients (meal_id, position, id, name, quantity, category, details) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			mealID, i, ing.ID, ing.Name, ing.Quantity, ing.Category, ing.Details,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}
	return nil
}

// ingredients loads ingredient lines grouped by meal, in recipe order.
func (s *MealStore) ingredients(ctx context.Context, where string, args ...any) (map[string][]model.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT meal_id, id, name, quantity, category, details FROM meal_ingredients `+where+` ORDER BY meal_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Ingredient)
	for rows.Next() {
		var mealID string
		var ing model.Ingredient
		if err := rows.Scan(&mealID, &ing.ID, &ing.Name, &ing.Quantity, &ing.Category, &ing.Details); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out[mealID] = append(out[mealID], ing)
	}
	return out, rows.Err()
}
