package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"produce-lookup-api/internal/model"
)

// mockProduceRepo is a testify mock for the produce repository.
type mockProduceRepo struct {
	mock.Mock
}

func (m *mockProduceRepo) ListRecent(ctx context.Context, limit int) ([]model.ProduceItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProduceItem), args.Error(1)
}

func (m *mockProduceRepo) Search(ctx context.Context, query string) ([]model.ProduceItem, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProduceItem), args.Error(1)
}

func (m *mockProduceRepo) GetByID(ctx context.Context, id string) (*model.ProduceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProduceItem), args.Error(1)
}

func (m *mockProduceRepo) Insert(ctx context.Context, item *model.ProduceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockProduceRepo) BulkInsert(ctx context.Context, items []model.ProduceItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *mockProduceRepo) Update(ctx context.Context, item *model.ProduceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockProduceRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProduceRepo) ListAll(ctx context.Context) ([]model.ProduceItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProduceItem), args.Error(1)
}

func (m *mockProduceRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProduceRepo) IncrementSearchCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProduceRepo) Close() error {
	return m.Called().Error(0)
}

// mockPhotoStorage is a testify mock for photo blob storage.
type mockPhotoStorage struct {
	mock.Mock
}

func (m *mockPhotoStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockPhotoStorage) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *mockPhotoStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
