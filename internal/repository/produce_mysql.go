package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"produce-lookup-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLProduceRepository implements ProduceRepository using MySQL.
type MySQLProduceRepository struct {
	db *sql.DB
}

// NewMySQLProduceRepository creates a new MySQL produce repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLProduceRepository(dsn string) (*MySQLProduceRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &MySQLProduceRepository{db: db}, nil
}

// createMySQLTables creates the produce_items table.
func createMySQLTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS produce_items (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		plu_code VARCHAR(64) NOT NULL,
		description TEXT NOT NULL,
		photo_url TEXT,
		searched_count BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		INDEX idx_produce_created_at (created_at),
		INDEX idx_produce_name (name)
	)`
	_, err := db.Exec(query)
	return err
}

const mysqlProduceColumns = "id, name, plu_code, description, photo_url, searched_count, created_at"

func collectMySQLItems(rows *sql.Rows) ([]model.ProduceItem, error) {
	defer rows.Close()

	items := []model.ProduceItem{}
	for rows.Next() {
		var item model.ProduceItem
		var photoURL sql.NullString

		err := rows.Scan(&item.ID, &item.Name, &item.PLUCode, &item.Description,
			&photoURL, &item.SearchedCount, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produce item: %w", err)
		}
		if photoURL.Valid {
			item.PhotoURL = &photoURL.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListRecent returns up to limit items, newest first.
func (r *MySQLProduceRepository) ListRecent(ctx context.Context, limit int) ([]model.ProduceItem, error) {
	query := fmt.Sprintf("SELECT %s FROM produce_items ORDER BY created_at DESC LIMIT ?", mysqlProduceColumns)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent produce: %w", err)
	}
	return collectMySQLItems(rows)
}

// Search returns items matching the query substring case-insensitively.
// MySQL LIKE is already case-insensitive under the default *_ci collations;
// LOWER() keeps the behavior stable for case-sensitive setups.
func (r *MySQLProduceRepository) Search(ctx context.Context, query string) ([]model.ProduceItem, error) {
	pattern := "%" + query + "%"
	stmt := fmt.Sprintf(`SELECT %s FROM produce_items
		WHERE LOWER(name) LIKE LOWER(?)
		   OR LOWER(plu_code) LIKE LOWER(?)
		   OR LOWER(description) LIKE LOWER(?)
		ORDER BY name ASC`, mysqlProduceColumns)

	rows, err := r.db.QueryContext(ctx, stmt, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search produce: %w", err)
	}
	return collectMySQLItems(rows)
}

// GetByID returns the item with the given id, or ErrNotFound.
func (r *MySQLProduceRepository) GetByID(ctx context.Context, id string) (*model.ProduceItem, error) {
	query := fmt.Sprintf("SELECT %s FROM produce_items WHERE id = ?", mysqlProduceColumns)

	var item model.ProduceItem
	var photoURL sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.PLUCode,
		&item.Description, &photoURL, &item.SearchedCount, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get produce item: %w", err)
	}

	if photoURL.Valid {
		item.PhotoURL = &photoURL.String
	}
	return &item, nil
}

// Insert stores a new item.
func (r *MySQLProduceRepository) Insert(ctx context.Context, item *model.ProduceItem) error {
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
func (r *MySQLProduceRepository) BulkInsert(ctx context.Context, items []model.ProduceItem) error {
	if len(items) == 0 {
		return nil
	}

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
func (r *MySQLProduceRepository) Update(ctx context.Context, item *model.ProduceItem) error {
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
func (r *MySQLProduceRepository) Delete(ctx context.Context, id string) error {
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
func (r *MySQLProduceRepository) ListAll(ctx context.Context) ([]model.ProduceItem, error) {
	query := fmt.Sprintf("SELECT %s FROM produce_items ORDER BY name ASC", mysqlProduceColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list produce: %w", err)
	}
	return collectMySQLItems(rows)
}

// Count returns the total number of items.
func (r *MySQLProduceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM produce_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count produce items: %w", err)
	}
	return count, nil
}

// IncrementSearchCount bumps the usage counter for an item.
func (r *MySQLProduceRepository) IncrementSearchCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE produce_items SET searched_count = searched_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment search count: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *MySQLProduceRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLProduceRepository implements ProduceRepository
var _ ProduceRepository = (*MySQLProduceRepository)(nil)
