package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/google/uuid"
)

// LibraryStore is the shared grocery library users pick list items from.
type LibraryStore struct {
	db    *sql.DB
	NewID func() string
}

func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db, NewID: uuid.NewString}
}

func scanLibraryItem(scanner interface{ Scan(...any) error }) (*model.LibraryItem, error) {
	var item model.LibraryItem
	err := scanner.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &item.Details, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const libraryCols = `id, name, quantity, category, details, created_at, updated_at`

func (s *LibraryStore) Create(ctx context.Context, ing model.Ingredient) (*model.LibraryItem, error) {
	now := time.Now().UTC()
	if ing.ID == "" {
		ing.ID = s.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grocery_library (`+libraryCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ing.ID, ing.Name, ing.Quantity, ing.Category, ing.Details, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create library item: %w", err)
	}
	return &model.LibraryItem{Ingredient: ing, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *LibraryStore) GetByID(ctx context.Context, id string) (*model.LibraryItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+libraryCols+` FROM grocery_library WHERE id = ?`, id)
	item, err := scanLibraryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get library item: %w", err)
	}
	return item, nil
}

// FindByName matches case-insensitively on the full name.
func (s *LibraryStore) FindByName(ctx context.Context, name string) (*model.LibraryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+libraryCols+` FROM grocery_library WHERE name = ? COLLATE NOCASE ORDER BY created_at ASC LIMIT 1`, name)
	item, err := scanLibraryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find library item: %w", err)
	}
	return item, nil
}

// List returns the library grouped by category, then by name.
func (s *LibraryStore) List(ctx context.Context) ([]model.LibraryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+libraryCols+` FROM grocery_library ORDER BY category ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	items := []model.LibraryItem{}
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan library item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *LibraryStore) Update(ctx context.Context, ing model.Ingredient) (*model.LibraryItem, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE grocery_library SET name = ?, quantity = ?, category = ?, details = ?, updated_at = ? WHERE id = ?`,
		ing.Name, ing.Quantity, ing.Category, ing.Details, time.Now().UTC(), ing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update library item: %w", err)
	}
	return s.GetByID(ctx, ing.ID)
}

func (s *LibraryStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM grocery_library WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	return nil
}
