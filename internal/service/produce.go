package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"produce-lookup-api/internal/cache"
	"produce-lookup-api/internal/model"
	"produce-lookup-api/internal/repository"
	"produce-lookup-api/internal/storage"
	"produce-lookup-api/pkg/uid"

	"go.uber.org/zap"
)

const (
	// RecentLimit is how many items the recent list returns.
	RecentLimit = 30

	// produceKeyPrefix covers every cached produce query. Mutations
	// invalidate the whole prefix: recent list, per-query search
	// results and the total count all may include the changed row.
	produceKeyPrefix = "produce:"

	cacheKeyRecent       = produceKeyPrefix + "recent"
	cacheKeyCount        = produceKeyPrefix + "count"
	cacheKeySearchPrefix = produceKeyPrefix + "search:"
)

// ErrMissingFields indicates name or PLU code was empty after trimming.
var ErrMissingFields = errors.New("name and PLU code are required")

// PhotoUpload carries an uploaded photo through the service layer.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProduceInput is the validated payload for create and update.
type ProduceInput struct {
	Name        string
	PLUCode     string
	Description string
	Photo       *PhotoUpload
}

// ProduceService handles produce business logic: cached reads, validated
// writes, photo lifecycle and cache invalidation.
type ProduceService struct {
	repo     repository.ProduceRepository
	photos   storage.PhotoStorage
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewProduceService creates a new produce service.
func NewProduceService(
	repo repository.ProduceRepository,
	photos storage.PhotoStorage,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.SugaredLogger,
) *ProduceService {
	return &ProduceService{
		repo:     repo,
		photos:   photos,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// cachedItems wraps a repository list call with the cache layer, keyed
// so identical concurrent reads share one stored result.
func (s *ProduceService) cachedItems(ctx context.Context, key string, fetch func() ([]model.ProduceItem, error)) ([]model.ProduceItem, error) {
	data, err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() ([]byte, error) {
		items, err := fetch()
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}

	var items []model.ProduceItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cached produce list: %w", err)
	}
	return items, nil
}

// ListRecent returns the newest items, most recent first.
func (s *ProduceService) ListRecent(ctx context.Context) ([]model.ProduceItem, error) {
	return s.cachedItems(ctx, cacheKeyRecent, func() ([]model.ProduceItem, error) {
		return s.repo.ListRecent(ctx, RecentLimit)
	})
}

// Search returns items matching the query across name, PLU code and
// description. An empty or whitespace-only query short-circuits to an
// empty result without touching the repository or the cache. Results
// are keyed by the exact trimmed query string, so a stale in-flight
// response can never overwrite results for a different query.
func (s *ProduceService) Search(ctx context.Context, query string) ([]model.ProduceItem, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []model.ProduceItem{}, nil
	}

	return s.cachedItems(ctx, cacheKeySearchPrefix+trimmed, func() ([]model.ProduceItem, error) {
		return s.repo.Search(ctx, trimmed)
	})
}

// Get returns a single item by id. Looking at an item bumps its usage
// counter best-effort; a counter failure never fails the read.
func (s *ProduceService) Get(ctx context.Context, id string) (*model.ProduceItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementSearchCount(ctx, id); err != nil {
		s.logger.Warnw("failed to increment search count", "id", id, "error", err)
	} else {
		item.SearchedCount++
	}

	return item, nil
}

// Count returns the total number of items, cached.
func (s *ProduceService) Count(ctx context.Context) (int64, error) {
	data, err := s.cache.GetOrSet(ctx, cacheKeyCount, s.cacheTTL, func() ([]byte, error) {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(count, 10)), nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(data), 10, 64)
}

// validateInput enforces the local pre-network validation: name and PLU
// code must be non-empty after trimming. Rejected input never reaches
// the repository or storage.
func validateInput(in *ProduceInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.PLUCode = strings.TrimSpace(in.PLUCode)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" || in.PLUCode == "" {
		return ErrMissingFields
	}
	return nil
}

// Create validates and stores a new item, uploading its photo first if
// one was supplied.
func (s *ProduceService) Create(ctx context.Context, in ProduceInput) (*model.ProduceItem, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	item := &model.ProduceItem{
		ID:          uid.New(),
		Name:        in.Name,
		PLUCode:     in.PLUCode,
		Description: in.Description,
	}

	if in.Photo != nil {
		key := storage.PhotoKey(item.ID, in.Photo.Filename)
		url, err := s.photos.Upload(ctx, key, in.Photo.Data, in.Photo.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
		item.PhotoURL = &url
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		// Don't leave an unreachable blob behind if the row never made it.
		if item.HasPhoto() {
			if delErr := s.photos.Delete(ctx, storage.KeyFromURL(*item.PhotoURL)); delErr != nil {
				s.logger.Warnw("failed to clean up photo after insert failure", "error", delErr)
			}
		}
		return nil, err
	}

	s.invalidateQueries(ctx)
	return item, nil
}

// Update validates and rewrites an existing item. A replacement photo
// deletes the prior blob best-effort before the new one is uploaded.
func (s *ProduceService) Update(ctx context.Context, id string, in ProduceInput) (*model.ProduceItem, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item := &model.ProduceItem{
		ID:            existing.ID,
		Name:          in.Name,
		PLUCode:       in.PLUCode,
		Description:   in.Description,
		PhotoURL:      existing.PhotoURL,
		SearchedCount: existing.SearchedCount,
		CreatedAt:     existing.CreatedAt,
	}

	if in.Photo != nil {
		if existing.HasPhoto() {
			if err := s.photos.Delete(ctx, storage.KeyFromURL(*existing.PhotoURL)); err != nil {
				s.logger.Warnw("failed to delete replaced photo", "id", id, "error", err)
			}
		}

		key := storage.PhotoKey(item.ID, in.Photo.Filename)
		url, err := s.photos.Upload(ctx, key, in.Photo.Data, in.Photo.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
		item.PhotoURL = &url
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateQueries(ctx)
	return item, nil
}

// Delete removes an item. Its photo blob is deleted first; a blob
// failure is logged and the row delete proceeds regardless, so a
// storage hiccup cannot strand an undeletable record.
func (s *ProduceService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if item.HasPhoto() {
		if err := s.photos.Delete(ctx, storage.KeyFromURL(*item.PhotoURL)); err != nil {
			s.logger.Warnw("failed to delete photo, proceeding with row delete", "id", id, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateQueries(ctx)
	return nil
}

// invalidateQueries drops every cached produce query after a mutation.
// Stale cached data after a mutation is an observable bug, not an
// optimization concern.
func (s *ProduceService) invalidateQueries(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, produceKeyPrefix); err != nil {
		s.logger.Warnw("failed to invalidate produce cache", "error", err)
	}
}
