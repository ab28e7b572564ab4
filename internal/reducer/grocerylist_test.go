package reducer

import (
	"encoding/json"
	"testing"

	"github.com/dukerupert/mealplan/internal/model"
)

func TestGroceryListAdditiveAdd(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Milk", Quantity: "1 gallon", Category: "Dairy", Count: intPtr(1)})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Milk", Quantity: "2 gallons", Category: "Dairy", Count: intPtr(1)})

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Count != 2 {
		t.Errorf("count = %d, want 2", item.Count)
	}
	if item.Quantity != "1 gallon" {
		t.Errorf("quantity = %q, want first add's %q", item.Quantity, "1 gallon")
	}
	if item.ID != "lib-1" || item.ItemID != "lib-1" {
		t.Errorf("identity = %q/%q, want lib-1", item.ID, item.ItemID)
	}
	if item.Purchased {
		t.Error("expected not purchased")
	}
}

func TestGroceryListAddDefaultsCount(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Eggs"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Eggs", Count: intPtr(3)})

	list := GroceryList("user-1", l.events)
	if got := list.Item("lib-1").Count; got != 4 {
		t.Errorf("count = %d, want 4", got)
	}
}

func TestGroceryListAddWithoutIDIgnored(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{Name: "Mystery"})

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 0 {
		t.Errorf("expected empty list, got %v", list.Items)
	}
	if list.Version != 1 {
		t.Errorf("version = %d, want 1", list.Version)
	}
}

func TestGroceryListRemoveDeletesOutright(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Milk", Count: intPtr(1)})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Milk", Count: intPtr(1)})
	l.add(model.ItemRemoved, model.GroceryItemPayload{ItemID: "lib-1"})

	list := GroceryList("user-1", l.events)
	if list.Item("lib-1") != nil {
		t.Errorf("expected entry removed, got %+v", list.Item("lib-1"))
	}
}

func TestGroceryListPartialUpdate(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Flour", Quantity: "5 lb", Category: "Pantry", Count: intPtr(2)})
	l.add(model.ItemUpdated, model.GroceryItemPayload{ItemID: "lib-1", Purchased: boolPtr(true)})

	item := GroceryList("user-1", l.events).Item("lib-1")
	if !item.Purchased {
		t.Error("expected purchased")
	}
	if item.Quantity != "5 lb" {
		t.Errorf("quantity = %q, want %q", item.Quantity, "5 lb")
	}
	if item.Count != 2 {
		t.Errorf("count = %d, want 2", item.Count)
	}

	l.add(model.ItemUpdated, model.GroceryItemPayload{ItemID: "lib-1", Quantity: "10 lb", Count: intPtr(5)})
	item = GroceryList("user-1", l.events).Item("lib-1")
	if item.Quantity != "10 lb" || item.Count != 5 || !item.Purchased {
		t.Errorf("unexpected item after update: %+v", item)
	}
}

func TestGroceryListUpdateDoesNotClamp(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Salt"})
	l.add(model.ItemUpdated, model.GroceryItemPayload{ItemID: "lib-1", Count: intPtr(0)})

	if got := GroceryList("user-1", l.events).Item("lib-1").Count; got != 0 {
		t.Errorf("count = %d, want 0 applied verbatim", got)
	}
}

func TestGroceryListUpdateMissingIsNoop(t *testing.T) {
	var l eventLog
	l.add(model.ItemUpdated, model.GroceryItemPayload{ItemID: "ghost", Count: intPtr(4)})
	l.add(model.MarkedPurchased, model.GroceryItemPayload{ItemID: "ghost"})

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 0 {
		t.Errorf("expected empty list, got %v", list.Items)
	}
}

func TestGroceryListPurchaseToggle(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Bread"})
	l.add(model.MarkedPurchased, model.GroceryItemPayload{ItemID: "lib-1"})
	if !GroceryList("user-1", l.events).Item("lib-1").Purchased {
		t.Fatal("expected purchased after MARKED_PURCHASED")
	}

	l.add(model.UnmarkedPurchased, model.GroceryItemPayload{ItemID: "lib-1"})
	if GroceryList("user-1", l.events).Item("lib-1").Purchased {
		t.Fatal("expected not purchased after UNMARKED_PURCHASED")
	}
}

func TestGroceryListClear(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Bread"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-2", Name: "Butter"})
	l.add(model.ListCleared, nil)
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-2", Name: "Butter"})

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list.Items))
	}
	if list.Items[0].Count != 1 {
		t.Errorf("count = %d, want 1 (clear resets aggregation)", list.Items[0].Count)
	}
}

func TestGroceryListClearIgnoresPayload(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Bread"})
	l.add(model.ListCleared, json.RawMessage(`{"count":"x"}`))

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 0 {
		t.Errorf("expected empty list, got %d entries", len(list.Items))
	}
	if list.Version != 2 {
		t.Errorf("version = %d, want 2", list.Version)
	}
}

func TestGroceryListAddNonPositiveCountAddsOne(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Eggs", Count: intPtr(2)})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Eggs", Count: intPtr(-3)})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "lib-1", Name: "Eggs", Count: intPtr(0)})

	list := GroceryList("user-1", l.events)
	if got := list.Item("lib-1").Count; got != 4 {
		t.Errorf("count = %d, want 4", got)
	}
}

func TestGroceryListKeepsFirstInsertionOrder(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "b", Name: "Garlic"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "c", Name: "Salmon"})

	list := GroceryList("user-1", l.events)
	var names []string
	for _, item := range list.Items {
		names = append(names, item.Name)
	}
	if mustJSON(t, names) != `["Onion","Garlic","Salmon"]` {
		t.Errorf("order = %v", names)
	}
}

func TestGroceryListIgnoresUnknownType(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	l.add(model.EventType("ITEM_SHARED"), model.GroceryItemPayload{ItemID: "a"})

	list := GroceryList("user-1", l.events)
	if len(list.Items) != 1 || list.Version != 2 {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestApplyGroceryListMatchesFullReplay(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "b", Name: "Garlic", Count: intPtr(2)})
	l.add(model.MarkedPurchased, model.GroceryItemPayload{ItemID: "a"})
	l.add(model.ItemUpdated, model.GroceryItemPayload{ItemID: "b", Quantity: "3 cloves"})
	l.add(model.ItemRemoved, model.GroceryItemPayload{ItemID: "a"})
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "b", Name: "Garlic"})

	full := mustJSON(t, GroceryList("user-1", l.events))
	for split := 0; split <= len(l.events); split++ {
		cached := GroceryList("user-1", l.events[:split])
		for _, evt := range l.events[split:] {
			cached = ApplyGroceryList(cached, evt)
		}
		if got := mustJSON(t, cached); got != full {
			t.Errorf("split %d: incremental = %s, full = %s", split, got, full)
		}
	}
}

func TestApplyGroceryListDoesNotMutateInput(t *testing.T) {
	var l eventLog
	l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	before := GroceryList("user-1", l.events)
	snapshot := mustJSON(t, before)

	again := l.add(model.ItemAdded, model.GroceryItemPayload{ItemID: "a", Name: "Onion"})
	_ = ApplyGroceryList(before, again)

	if mustJSON(t, before) != snapshot {
		t.Errorf("input list was modified")
	}
}
