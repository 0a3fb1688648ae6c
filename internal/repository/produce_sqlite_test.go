package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"produce-lookup-api/internal/model"
	"produce-lookup-api/pkg/uid"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteProduceRepository {
	t.Helper()

	repo, err := NewSQLiteProduceRepository(filepath.Join(t.TempDir(), "produce.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mkProduce(name, plu, description string) model.ProduceItem {
	return model.ProduceItem{
		ID:          uid.New(),
		Name:        name,
		PLUCode:     plu,
		Description: description,
	}
}

func TestSQLite_InsertAndGetByID(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	item := mkProduce("Apple", "4131", "Crisp and sweet")
	assert.NoError(t, repo.Insert(ctx, &item))
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, item.ID)
	assert.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "Apple", got.Name)
	assert.Equal(t, "4131", got.PLUCode)
	assert.Equal(t, "Crisp and sweet", got.Description)
	assert.Nil(t, got.PhotoURL)
	assert.Equal(t, int64(0), got.SearchedCount)
}

func TestSQLite_GetByID_NotFound(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	_, err := repo.GetByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_PhotoURLRoundTrip(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	url := "http://photos/produce/a.png"
	item := mkProduce("Apple", "4131", "")
	item.PhotoURL = &url
	assert.NoError(t, repo.Insert(ctx, &item))

	got, err := repo.GetByID(ctx, item.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got.PhotoURL)
	assert.Equal(t, url, *got.PhotoURL)
}

func TestSQLite_ListRecent_NewestFirst(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Apple", "Banana", "Cherry"}
	for i, name := range names {
		item := mkProduce(name, "4000", "")
		item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		assert.NoError(t, repo.Insert(ctx, &item))
	}

	got, err := repo.ListRecent(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Cherry", got[0].Name)
	assert.Equal(t, "Banana", got[1].Name)
}

func TestSQLite_Search_CaseInsensitiveAcrossColumns(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	rows := []model.ProduceItem{
		mkProduce("Fuji Apple", "4131", "Sweet red apple"),
		mkProduce("Banana", "4011", "Yellow"),
		mkProduce("Pineapple", "4430", "Tropical"),
	}
	assert.NoError(t, repo.BulkInsert(ctx, rows))

	// substring of name, any case, ordered by name
	got, err := repo.Search(ctx, "APPLE")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Fuji Apple", got[0].Name)
	assert.Equal(t, "Pineapple", got[1].Name)

	// PLU code column
	got, err = repo.Search(ctx, "4011")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Banana", got[0].Name)

	// description column
	got, err = repo.Search(ctx, "tropical")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Pineapple", got[0].Name)

	// no match
	got, err = repo.Search(ctx, "kiwi")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_Update(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	item := mkProduce("Apple", "4131", "Crisp")
	assert.NoError(t, repo.Insert(ctx, &item))

	item.Name = "Fuji Apple"
	item.Description = "Sweet"
	assert.NoError(t, repo.Update(ctx, &item))

	got, err := repo.GetByID(ctx, item.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Fuji Apple", got.Name)
	assert.Equal(t, "Sweet", got.Description)
}

func TestSQLite_Update_NotFound(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	missing := mkProduce("Ghost", "0000", "")
	err := repo.Update(context.Background(), &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Delete(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	item := mkProduce("Apple", "4131", "")
	assert.NoError(t, repo.Insert(ctx, &item))

	assert.NoError(t, repo.Delete(ctx, item.ID))

	_, err := repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, item.ID), ErrNotFound)
}

func TestSQLite_BulkInsertAndCount(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	rows := []model.ProduceItem{
		mkProduce("Apple", "4131", ""),
		mkProduce("Banana", "4011", ""),
		mkProduce("Cherry", "4045", ""),
	}
	assert.NoError(t, repo.BulkInsert(ctx, rows))

	count, err = repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSQLite_ListAll_OrderedByName(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	rows := []model.ProduceItem{
		mkProduce("Cherry", "4045", ""),
		mkProduce("Apple", "4131", ""),
		mkProduce("Banana", "4011", ""),
	}
	assert.NoError(t, repo.BulkInsert(ctx, rows))

	got, err := repo.ListAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Apple", got[0].Name)
	assert.Equal(t, "Banana", got[1].Name)
	assert.Equal(t, "Cherry", got[2].Name)
}

func TestSQLite_IncrementSearchCount(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	item := mkProduce("Apple", "4131", "")
	assert.NoError(t, repo.Insert(ctx, &item))

	assert.NoError(t, repo.IncrementSearchCount(ctx, item.ID))
	assert.NoError(t, repo.IncrementSearchCount(ctx, item.ID))

	got, err := repo.GetByID(ctx, item.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), got.SearchedCount)
}
