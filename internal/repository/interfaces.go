package repository

import (
	"context"
	"errors"

	"produce-lookup-api/internal/model"
)

// ErrNotFound indicates the requested produce item does not exist.
// Callers must be able to tell this apart from infrastructure errors,
// so detail views can render "not found" instead of a generic failure.
var ErrNotFound = errors.New("produce item not found")

// ProduceRepository defines produce data access methods.
type ProduceRepository interface {
	// ListRecent returns up to limit items, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.ProduceItem, error)

	// Search returns items whose name, PLU code or description contains
	// the query substring case-insensitively, ordered by name.
	Search(ctx context.Context, query string) ([]model.ProduceItem, error)

	// GetByID returns the item with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.ProduceItem, error)

	// Insert stores a new item. The item's CreatedAt is set if zero.
	Insert(ctx context.Context, item *model.ProduceItem) error

	// BulkInsert stores multiple items in a single transaction.
	BulkInsert(ctx context.Context, items []model.ProduceItem) error

	// Update rewrites an existing item's fields by id, or ErrNotFound.
	Update(ctx context.Context, item *model.ProduceItem) error

	// Delete removes the item with the given id, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// ListAll returns every item ordered by name.
	ListAll(ctx context.Context) ([]model.ProduceItem, error)

	// Count returns the total number of items.
	Count(ctx context.Context) (int64, error)

	// IncrementSearchCount bumps the usage counter for an item.
	IncrementSearchCount(ctx context.Context, id string) error

	// Close closes the repository connection.
	Close() error
}
