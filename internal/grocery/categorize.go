package grocery

import "strings"

// Category names used by the starter library and meal catalog.
const (
	CategoryProduce = "Produce"
	CategoryMeat    = "Meat"
	CategorySeafood = "Seafood"
	CategoryDairy   = "Dairy"
	CategoryBakery  = "Bakery"
	CategoryGrains  = "Grains"
	CategoryPantry  = "Pantry"
	CategoryOther   = "Other"
)

// Categorize guesses the aisle for an ingredient name. Exact names are
// checked before keywords; unknown names land in Other.
func Categorize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CategoryOther
	}
	if cat, ok := exactNames[n]; ok {
		return cat
	}
	for _, kw := range keywords {
		if strings.Contains(n, kw.word) {
			return kw.category
		}
	}
	return CategoryOther
}

var exactNames = map[string]string{
	"onion":         CategoryProduce,
	"onions":        CategoryProduce,
	"garlic":        CategoryProduce,
	"lemon":         CategoryProduce,
	"lime":          CategoryProduce,
	"ginger":        CategoryProduce,
	"cilantro":      CategoryProduce,
	"basil":         CategoryProduce,
	"rosemary":      CategoryProduce,
	"thyme":         CategoryProduce,
	"avocado":       CategoryProduce,
	"broccoli":      CategoryProduce,
	"lettuce":       CategoryProduce,
	"snow peas":     CategoryProduce,
	"mushrooms":     CategoryProduce,
	"bacon":         CategoryMeat,
	"pepperoni":     CategoryMeat,
	"ground beef":   CategoryMeat,
	"shrimp":        CategorySeafood,
	"eggs":          CategoryDairy,
	"milk":          CategoryDairy,
	"butter":        CategoryDairy,
	"bread":         CategoryBakery,
	"pizza dough":   CategoryBakery,
	"tortillas":     CategoryBakery,
	"rice":          CategoryGrains,
	"pasta":         CategoryGrains,
	"spaghetti":     CategoryGrains,
	"quinoa":        CategoryGrains,
	"oats":          CategoryGrains,
	"salt":          CategoryPantry,
	"sugar":         CategoryPantry,
	"flour":         CategoryPantry,
	"honey":         CategoryPantry,
	"coconut milk":  CategoryPantry,
	"peanut butter": CategoryPantry,
	"garlic powder": CategoryPantry,
	"black pepper":  CategoryPantry,
}

type keyword struct {
	word     string
	category string
}

// Longer phrases first so "tomato paste" wins over "tomato".
var keywords = []keyword{
	{"tomato paste", CategoryPantry},
	{"tomato sauce", CategoryPantry},
	{"canned tomato", CategoryPantry},
	{"pasta sauce", CategoryPantry},
	{"soy sauce", CategoryPantry},
	{"taco shell", CategoryPantry},
	{"seasoning", CategoryPantry},
	{"powder", CategoryPantry},
	{"broth", CategoryPantry},
	{"beans", CategoryPantry},
	{"oil", CategoryPantry},

	{"salmon", CategorySeafood},
	{"cod", CategorySeafood},
	{"tuna", CategorySeafood},
	{"shrimp", CategorySeafood},
	{"fillet", CategorySeafood},

	{"chicken", CategoryMeat},
	{"beef", CategoryMeat},
	{"pork", CategoryMeat},
	{"sausage", CategoryMeat},
	{"turkey", CategoryMeat},

	{"cheese", CategoryDairy},
	{"yogurt", CategoryDairy},
	{"cream", CategoryDairy},

	{"buns", CategoryBakery},
	{"dough", CategoryBakery},
	{"bread", CategoryBakery},

	{"rice", CategoryGrains},
	{"noodle", CategoryGrains},

	{"pepper", CategoryProduce},
	{"tomato", CategoryProduce},
	{"potato", CategoryProduce},
	{"carrot", CategoryProduce},
	{"dill", CategoryProduce},
	{"onion", CategoryProduce},
}
