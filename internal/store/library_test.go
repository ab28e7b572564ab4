package store

import (
	"context"
	"testing"

	"github.com/dukerupert/mealplan/internal/model"
)

func TestLibrarySeedData(t *testing.T) {
	ls := NewLibraryStore(setupTestDB(t))
	items, err := ls.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 68 {
		t.Fatalf("library items = %d, want 68", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Category > items[i].Category {
			t.Fatalf("items not grouped by category at %d: %q > %q", i, items[i-1].Category, items[i].Category)
		}
	}
}

func TestLibraryFindByName(t *testing.T) {
	ls := NewLibraryStore(setupTestDB(t))
	ctx := context.Background()

	item, err := ls.FindByName(ctx, "gARLIC")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if item == nil || item.ID != "lib-prod-2" {
		t.Fatalf("expected lib-prod-2, got %+v", item)
	}

	missing, err := ls.FindByName(ctx, "Durian")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestLibraryCRUD(t *testing.T) {
	ls := NewLibraryStore(setupTestDB(t))
	ctx := context.Background()

	created, err := ls.Create(ctx, model.Ingredient{Name: "Miso", Quantity: "1 tub", Category: "Pantry"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	created.Quantity = "2 tubs"
	updated, err := ls.Update(ctx, created.Ingredient)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != "2 tubs" {
		t.Errorf("quantity = %q, want %q", updated.Quantity, "2 tubs")
	}

	if err := ls.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := ls.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gone != nil {
		t.Errorf("expected deleted, got %+v", gone)
	}
}
