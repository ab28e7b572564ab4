package grocery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/google/uuid"
)

// MealCatalog looks up meals by id. A nil meal with a nil error means the
// meal does not exist.
type MealCatalog interface {
	MealByID(ctx context.Context, id string) (*model.Meal, error)
}

// Generator turns a meal plan into ITEM_ADDED payloads, one per distinct
// ingredient name.
type Generator struct {
	Catalog MealCatalog
	NewID   func() string
	Logger  *slog.Logger
}

// NewGenerator returns a Generator that mints UUID item ids.
func NewGenerator(catalog MealCatalog, logger *slog.Logger) *Generator {
	return &Generator{
		Catalog: catalog,
		NewID:   uuid.NewString,
		Logger:  logger,
	}
}

// Generate aggregates the ingredients of every planned meal by exact name.
// The first occurrence of a name fixes its quantity, category and details;
// each further occurrence bumps the count. Payloads come back in the order
// names were first seen. Meals missing from the catalog are skipped.
//
// Every call mints fresh item ids, so recording the result twice adds a
// second set of entries rather than merging with the first.
func (g *Generator) Generate(ctx context.Context, plan model.MealPlan) ([]model.GroceryItemPayload, error) {
	var (
		order  []string
		byName = make(map[string]*model.GroceryItemPayload)
	)

	for _, slot := range plan.Items {
		meal, err := g.Catalog.MealByID(ctx, slot.MealID)
		if err != nil {
			return nil, fmt.Errorf("lookup meal %s: %w", slot.MealID, err)
		}
		if meal == nil {
			if g.Logger != nil {
				g.Logger.Debug("meal not found, skipping", "meal_id", slot.MealID, "day", slot.Day, "meal_type", slot.MealType)
			}
			continue
		}

		for _, ing := range meal.Ingredients {
			if agg, ok := byName[ing.Name]; ok {
				*agg.Count++
				continue
			}
			category := ing.Category
			if category == "" {
				category = Categorize(ing.Name)
			}
			count := 1
			byName[ing.Name] = &model.GroceryItemPayload{
				ItemID:   g.newID(),
				Name:     ing.Name,
				Quantity: ing.Quantity,
				Category: category,
				Details:  ing.Details,
				Count:    &count,
			}
			order = append(order, ing.Name)
		}
	}

	out := make([]model.GroceryItemPayload, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func (g *Generator) newID() string {
	if g.NewID != nil {
		return g.NewID()
	}
	return uuid.NewString()
}
