package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"produce-lookup-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteProduceRepository implements ProduceRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteProduceRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteProduceRepository creates a new SQLite produce repository.
// dbPath is the path to the SQLite database file (e.g., "./data/produce.db")
func NewSQLiteProduceRepository(dbPath string) (*SQLiteProduceRepository, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteProduceRepository{db: db}, nil
}

// createSQLiteTables creates the produce_items table.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS produce_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plu_code TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		photo_url TEXT,
		searched_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_produce_created_at ON produce_items(created_at);
	CREATE INDEX IF NOT EXISTS idx_produce_name ON produce_items(name);
	`
	_, err := db.Exec(query)
	return err
}

const sqliteProduceColumns = "id, name, plu_code, description, photo_url, searched_count, created_at"

func scanSQLiteItem(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.ProduceItem, error) {
	var item model.ProduceItem
	var photoURL sql.NullString

	err := scanner.Scan(&item.ID, &item.Name, &item.PLUCode, &item.Description,
		&photoURL, &item.SearchedCount, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	if photoURL.Valid {
		item.PhotoURL = &photoURL.String
	}
	return &item, nil
}

func collectSQLiteItems(rows *sql.Rows) ([]model.ProduceItem, error) {
	defer rows.Close()

	items := []model.ProduceItem{}
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produce item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func nullablePhotoURL(item *model.ProduceItem) interface{} {
	if item.HasPhoto() {
		return *item.PhotoURL
	}
	return nil
}

// ListRecent returns up to limit items, newest first.
func (r *SQLiteProduceRepository) ListRecent(ctx context.Context, limit int) ([]model.ProduceItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := fmt.Sprintf("SELECT %s FROM produce_items ORDER BY created_at DESC LIMIT ?", sqliteProduceColumns)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent produce: %w", err)
	}
	return collectSQLiteItems(rows)
}

// Search returns items matching the query substring case-insensitively.
func (r *SQLiteProduceRepository) Search(ctx context.Context, query string) ([]model.ProduceItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern := "%" + query + "%"
	stmt := fmt.Sprintf(`SELECT %s FROM produce_items
		WHERE name LIKE ? COLLATE NOCASE
		   OR plu_code LIKE ? COLLATE NOCASE
		   OR description LIKE ? COLLATE NOCASE
		ORDER BY name ASC`, sqliteProduceColumns)

	rows, err := r.db.QueryContext(ctx, stmt, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search produce: %w", err)
	}
	return collectSQLiteItems(rows)
}

// GetByID returns the item with the given id, or ErrNotFound.
func (r *SQLiteProduceRepository) GetByID(ctx context.Context, id string) (*model.ProduceItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := fmt.Sprintf("SELECT %s FROM produce_items WHERE id = ?", sqliteProduceColumns)
	item, err := scanSQLiteItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get produce item: %w", err)
	}
	return item, nil
}

// Insert stores a new item.
func (r *SQLiteProduceRepository) Insert(ctx context.Context, item *model.ProduceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO produce_items (id, name, plu_code, description, photo_url, searched_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, item.ID, item.Name, item.PLUCode,
		item.Description, nullablePhotoURL(item), item.SearchedCount, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert produce item: %w", err)
	}
	return nil
}

// BulkInsert stores multiple items in a single transaction.
func (r *SQLiteProduceRepository) BulkInsert(ctx context.Context, items []model.ProduceItem) error {
	if len(items) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO produce_items
		(id, name, plu_code, description, photo_url, searched_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		_, err := stmt.ExecContext(ctx, item.ID, item.Name, item.PLUCode,
			item.Description, nullablePhotoURL(item), item.SearchedCount, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to bulk insert item %s: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update rewrites an existing item's fields by id.
func (r *SQLiteProduceRepository) Update(ctx context.Context, item *model.ProduceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `UPDATE produce_items SET name = ?, plu_code = ?, description = ?, photo_url = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, item.Name, item.PLUCode,
		item.Description, nullablePhotoURL(item), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update produce item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the item with the given id.
func (r *SQLiteProduceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, "DELETE FROM produce_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete produce item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every item ordered by name.
func (r *SQLiteProduceRepository) ListAll(ctx context.Context) ([]model.ProduceItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := fmt.Sprintf("SELECT %s FROM produce_items ORDER BY name ASC", sqliteProduceColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list produce: %w", err)
	}
	return collectSQLiteItems(rows)
}

// Count returns the total number of items.
func (r *SQLiteProduceRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM produce_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count produce items: %w", err)
	}
	return count, nil
}

// IncrementSearchCount bumps the usage counter for an item.
func (r *SQLiteProduceRepository) IncrementSearchCount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		"UPDATE produce_items SET searched_count = searched_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment search count: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteProduceRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteProduceRepository implements ProduceRepository
var _ ProduceRepository = (*SQLiteProduceRepository)(nil)
