package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"produce-lookup-api/internal/model"
)

func newMockPostgresRepo(t *testing.T) (*PostgresProduceRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresProduceRepository{db: db}, mock
}

func pgRows(items ...model.ProduceItem) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "plu_code", "description", "photo_url", "searched_count", "created_at"})
	for _, item := range items {
		var photoURL interface{}
		if item.PhotoURL != nil {
			photoURL = *item.PhotoURL
		}
		rows.AddRow(item.ID, item.Name, item.PLUCode, item.Description, photoURL, item.SearchedCount, item.CreatedAt)
	}
	return rows
}

func TestPostgres_ListRecent(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	items := []model.ProduceItem{
		{ID: "b", Name: "Banana", PLUCode: "4011", CreatedAt: time.Now().UTC()},
		{ID: "a", Name: "Apple", PLUCode: "4131", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	mock.ExpectQuery(`SELECT (.+) FROM produce_items ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(30).
		WillReturnRows(pgRows(items...))

	got, err := repo.ListRecent(context.Background(), 30)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Banana", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Search_SinglePatternArg(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM produce_items\s+WHERE name ILIKE \$1 OR plu_code ILIKE \$1 OR description ILIKE \$1`).
		WithArgs("%apple%").
		WillReturnRows(pgRows(model.ProduceItem{ID: "a", Name: "Apple", PLUCode: "4131", CreatedAt: time.Now().UTC()}))

	got, err := repo.Search(context.Background(), "apple")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM produce_items WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByID_NullPhoto(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM produce_items WHERE id = \$1`).
		WithArgs("a").
		WillReturnRows(pgRows(model.ProduceItem{ID: "a", Name: "Apple", PLUCode: "4131", CreatedAt: time.Now().UTC()}))

	got, err := repo.GetByID(context.Background(), "a")
	assert.NoError(t, err)
	assert.Nil(t, got.PhotoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Insert_SetsCreatedAt(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	item := model.ProduceItem{ID: "a", Name: "Apple", PLUCode: "4131"}
	mock.ExpectExec(`INSERT INTO produce_items`).
		WithArgs("a", "Apple", "4131", "", nil, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Insert(context.Background(), &item))
	assert.False(t, item.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_NotFound(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectExec(`UPDATE produce_items SET`).
		WithArgs("Ghost", "0000", "", nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.ProduceItem{ID: "missing", Name: "Ghost", PLUCode: "0000"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectExec(`DELETE FROM produce_items WHERE id = \$1`).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_BulkInsert_SingleTransaction(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectBegin()
	stmt := mock.ExpectPrepare(`INSERT INTO produce_items`)
	stmt.ExpectExec().
		WithArgs("a", "Apple", "4131", "", nil, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	stmt.ExpectExec().
		WithArgs("b", "Banana", "4011", "", nil, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	items := []model.ProduceItem{
		{ID: "a", Name: "Apple", PLUCode: "4131"},
		{ID: "b", Name: "Banana", PLUCode: "4011"},
	}
	assert.NoError(t, repo.BulkInsert(context.Background(), items))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Count(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM produce_items`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_IncrementSearchCount(t *testing.T) {
	repo, mock := newMockPostgresRepo(t)

	mock.ExpectExec(`UPDATE produce_items SET searched_count = searched_count \+ 1 WHERE id = \$1`).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.IncrementSearchCount(context.Background(), "a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
