package reducer

import "github.com/dukerupert/mealplan/internal/model"

// GroceryList replays events from an empty list.
func GroceryList(userID string, events []model.Event) model.GroceryList {
	list := model.GroceryList{UserID: userID, Items: []model.GroceryListItem{}}
	for _, evt := range events {
		list = ApplyGroceryList(list, evt)
	}
	return list
}

// ApplyGroceryList folds a single event into list and returns the new list.
// The input is not modified. Entries keep the position of their first add.
//
// Counts are not clamped here: an ITEM_UPDATED carrying count 0 is applied
// as written. Writers are responsible for the floor of 1. An ITEM_ADDED with
// a missing or non-positive count adds 1.
func ApplyGroceryList(list model.GroceryList, evt model.Event) model.GroceryList {
	items := make([]model.GroceryListItem, 0, len(list.Items)+1)
	items = append(items, list.Items...)
	next := model.GroceryList{UserID: list.UserID, Items: items}
	next.Version = evt.Seq
	next.LastUpdated = evt.Timestamp

	if evt.Type == model.ListCleared {
		next.Items = next.Items[:0]
		return next
	}

	var p model.GroceryItemPayload
	if !decode(evt.Data, &p) {
		return next
	}

	switch evt.Type {
	case model.ItemAdded:
		if p.ItemID == "" {
			break
		}
		count := 1
		if p.Count != nil && *p.Count > 0 {
			count = *p.Count
		}
		if i := indexOf(next.Items, p.ItemID); i >= 0 {
			next.Items[i].Count += count
			break
		}
		entry := model.GroceryListItem{
			ID:       p.ItemID,
			ItemID:   p.ItemID,
			Name:     p.Name,
			Quantity: p.Quantity,
			Category: p.Category,
			Count:    count,
			Details:  p.Details,
		}
		if p.Purchased != nil {
			entry.Purchased = *p.Purchased
		}
		next.Items = append(next.Items, entry)
	case model.ItemRemoved:
		if i := indexOf(next.Items, p.ItemID); i >= 0 {
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		}
	case model.ItemUpdated:
		i := indexOf(next.Items, p.ItemID)
		if i < 0 {
			break
		}
		if p.Quantity != "" {
			next.Items[i].Quantity = p.Quantity
		}
		if p.Count != nil {
			next.Items[i].Count = *p.Count
		}
		if p.Purchased != nil {
			next.Items[i].Purchased = *p.Purchased
		}
	case model.MarkedPurchased, model.UnmarkedPurchased:
		if i := indexOf(next.Items, p.ItemID); i >= 0 {
			next.Items[i].Purchased = evt.Type == model.MarkedPurchased
		}
	}
	return next
}

func indexOf(items []model.GroceryListItem, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
