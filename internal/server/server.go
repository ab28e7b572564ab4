package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/mealplan/internal/backup"
	"github.com/dukerupert/mealplan/internal/grocery"
	"github.com/dukerupert/mealplan/internal/handler"
	"github.com/dukerupert/mealplan/internal/middleware"
	"github.com/dukerupert/mealplan/internal/projection"
	"github.com/dukerupert/mealplan/internal/store"
	ws "github.com/dukerupert/mealplan/internal/websocket"
)

// Deps are the stores and collaborators the server is built from. Backups
// and Publisher may be nil.
type Deps struct {
	Events    projection.EventStore
	Snapshots projection.SnapshotStore
	Meals     *store.MealStore
	Library   *store.LibraryStore
	Verifier  middleware.TokenVerifier
	Backups   *backup.Manager
	Publisher projection.Notifier

	AllowedOrigins     []string
	GenerateRateLimit  int
	GenerateRateWindow time.Duration
}

type Server struct {
	hub           *ws.Hub
	service       *projection.Service
	mealPlanH     *handler.MealPlanHandler
	groceryListH  *handler.GroceryListHandler
	catalogH      *handler.CatalogHandler
	verifier      middleware.TokenVerifier
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	deps          Deps
	logger        *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Server {
	if deps.GenerateRateLimit < 1 {
		deps.GenerateRateLimit = 10
	}
	if deps.GenerateRateWindow <= 0 {
		deps.GenerateRateWindow = time.Minute
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	generator := grocery.NewGenerator(deps.Meals, logger.With("component", "generator"))
	service := projection.NewService(deps.Events, deps.Snapshots, generator, logger)
	service.Subscribe(hub)
	if deps.Publisher != nil {
		service.Subscribe(deps.Publisher)
	}

	return &Server{
		hub:           hub,
		service:       service,
		mealPlanH:     handler.NewMealPlanHandler(service, logger),
		groceryListH:  handler.NewGroceryListHandler(service, logger),
		catalogH:      handler.NewCatalogHandler(deps.Meals, deps.Library, logger),
		verifier:      deps.Verifier,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: deps.Backups,
		deps:          deps,
		logger:        logger,
	}
}

// Service returns the projection service.
func (s *Server) Service() *projection.Service {
	return s.service
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.verifier)
	outerMux.Handle("/", authMiddleware(middleware.LogUser(protectedMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "clients": s.hub.ClientCount()}
	if s.backupManager != nil {
		resp["backup"] = s.backupManager.Status()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.Handler {
	rl := middleware.RateLimit(s.rateLimiter, middleware.UserKey, s.deps.GenerateRateLimit, s.deps.GenerateRateWindow)
	return rl(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Meal plan
	mux.HandleFunc("GET /api/meal-plan", s.mealPlanH.Get)
	mux.HandleFunc("POST /api/meal-plan/meals", s.mealPlanH.AddMeal)
	mux.HandleFunc("DELETE /api/meal-plan/meals/{day}/{meal_type}", s.mealPlanH.RemoveMeal)
	mux.HandleFunc("POST /api/meal-plan/clear", s.mealPlanH.Clear)
	mux.HandleFunc("GET /api/meal-plan/events", s.mealPlanH.Events)
	mux.HandleFunc("POST /api/meal-plan/rebuild", s.mealPlanH.Rebuild)

	// Grocery list
	mux.HandleFunc("GET /api/grocery-list", s.groceryListH.Get)
	mux.HandleFunc("POST /api/grocery-list/items", s.groceryListH.AddItem)
	mux.HandleFunc("PATCH /api/grocery-list/items/{id}", s.groceryListH.UpdateItem)
	mux.HandleFunc("DELETE /api/grocery-list/items/{id}", s.groceryListH.RemoveItem)
	mux.HandleFunc("PUT /api/grocery-list/items/{id}/purchased", s.groceryListH.MarkPurchased)
	mux.HandleFunc("DELETE /api/grocery-list/items/{id}/purchased", s.groceryListH.UnmarkPurchased)
	mux.HandleFunc("POST /api/grocery-list/clear", s.groceryListH.Clear)
	mux.Handle("POST /api/grocery-list/generate", s.rateLimitedHandler(s.groceryListH.Generate))
	mux.HandleFunc("GET /api/grocery-list/events", s.groceryListH.Events)
	mux.HandleFunc("POST /api/grocery-list/rebuild", s.groceryListH.Rebuild)

	// Catalog
	mux.HandleFunc("GET /api/meals", s.catalogH.ListMeals)
	mux.HandleFunc("POST /api/meals", s.catalogH.CreateMeal)
	mux.HandleFunc("GET /api/meals/{id}", s.catalogH.GetMeal)
	mux.HandleFunc("PUT /api/meals/{id}", s.catalogH.UpdateMeal)
	mux.HandleFunc("DELETE /api/meals/{id}", s.catalogH.DeleteMeal)
	mux.HandleFunc("GET /api/library", s.catalogH.ListLibrary)
	mux.HandleFunc("POST /api/library", s.catalogH.CreateLibraryItem)
	mux.HandleFunc("PUT /api/library/{id}", s.catalogH.UpdateLibraryItem)
	mux.HandleFunc("DELETE /api/library/{id}", s.catalogH.DeleteLibraryItem)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.deps.AllowedOrigins))
}
