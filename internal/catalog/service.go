// Package catalog wires the search index, the store of record, the cache,
// and the event bus into one service behind services.Catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/findmepls/catalog/config"
	apperrors "github.com/findmepls/catalog/internal/errors"
	"github.com/findmepls/catalog/internal/events"
	"github.com/findmepls/catalog/internal/index"
	"github.com/findmepls/catalog/internal/metrics"
	"github.com/findmepls/catalog/model"
	"github.com/findmepls/catalog/services"
)

// Service implements services.Catalog. The store is authoritative; the index
// is derived state rebuilt via Reindex at startup and kept in step by
// AddItem/DeleteItem. Cache and publisher are optional (nil disables them),
// metrics are required.
type Service struct {
	store   services.CatalogStore
	engine  *index.Engine[model.ID, model.ItemDocument]
	cache   services.RecordCache
	events  services.EventPublisher
	metrics *metrics.Metrics

	boosts        map[string]float64
	defaultPolicy index.Autocorrect
	logger        *slog.Logger
}

// NewService builds the service and its empty index. Call Reindex before
// serving queries.
func NewService(
	store services.CatalogStore,
	cache services.RecordCache,
	publisher services.EventPublisher,
	m *metrics.Metrics,
	cfg config.SearchConfig,
) *Service {
	fields := []index.Field[model.ItemDocument]{
		{Name: model.FieldTitle, Extract: model.TitleValues},
		{Name: model.FieldDescription, Extract: model.DescriptionValues},
	}
	engine := index.New[model.ID](fields, index.Options{
		PruneOnRemove: cfg.PruneVocabularyOnRemove,
	})
	return &Service{
		store:   store,
		engine:  engine,
		cache:   cache,
		events:  publisher,
		metrics: m,
		boosts: map[string]float64{
			model.FieldTitle:       cfg.TitleBoost,
			model.FieldDescription: cfg.DescriptionBoost,
		},
		defaultPolicy: policyFromConfig(cfg),
		logger:        slog.Default().With("component", "catalog"),
	}
}

func policyFromConfig(cfg config.SearchConfig) index.Autocorrect {
	switch cfg.Autocorrect {
	case "off":
		return index.Autocorrect{Mode: index.ExpandOff}
	case "fixed":
		return index.Autocorrect{Mode: index.ExpandFixed, MaxDistance: cfg.MaxDistance}
	case "unlimited":
		return index.Autocorrect{Mode: index.ExpandUnlimited}
	default:
		return index.Autocorrect{Mode: index.ExpandWordLength}
	}
}

// Reindex rebuilds the index from every row in the store.
func (s *Service) Reindex(ctx context.Context) error {
	docs, err := s.store.SearchRows(ctx)
	if err != nil {
		return fmt.Errorf("loading rows for reindex: %w", err)
	}
	for _, doc := range docs {
		s.engine.Insert(doc.ID, doc)
		s.metrics.DocsIndexedTotal.Inc()
	}
	s.logger.Info("index rebuilt", "documents", len(docs))
	return nil
}

// AddItem persists the item first; only a stored item gets indexed.
func (s *Service) AddItem(ctx context.Context, item model.Item) (model.Item, error) {
	if item.Name == "" {
		return model.Item{}, fmt.Errorf("%w: item name is required", apperrors.ErrInvalidInput)
	}
	stored, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return model.Item{}, err
	}

	s.engine.Insert(stored.ID, stored.SearchDocument())
	s.metrics.DocsIndexedTotal.Inc()

	s.publish(ctx, events.KeyItemCreated, events.ItemIndexed{
		ID:   stored.ID,
		Name: stored.Name,
		At:   time.Now().UTC(),
	})
	return stored, nil
}

func (s *Service) GetItem(ctx context.Context, id model.ID) (model.Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *Service) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.store.ListItems(ctx)
}

// DeleteItem removes the row, then unindexes and invalidates it.
func (s *Service) DeleteItem(ctx context.Context, id model.ID) (model.Item, error) {
	deleted, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return model.Item{}, err
	}

	s.engine.Remove(id)
	s.metrics.DocsRemovedTotal.Inc()

	if s.cache != nil {
		if err := s.cache.InvalidateItem(ctx, id); err != nil {
			s.logger.Warn("cache invalidation failed", "item_id", id, "error", err)
		}
	}
	s.publish(ctx, events.KeyItemDeleted, events.ItemRemoved{
		ID: id,
		At: time.Now().UTC(),
	})
	return deleted, nil
}

// SearchItems runs query under the configured default autocorrect policy.
func (s *Service) SearchItems(ctx context.Context, query string) (services.SearchResult, error) {
	return s.SearchItemsWith(ctx, query, s.defaultPolicy)
}

// SearchItemsWith expands, scores, and resolves query against the store.
// Results come back sorted by descending score, ties broken by ascending ID.
// A query with no matching documents returns ErrNoMatches.
func (s *Service) SearchItemsWith(ctx context.Context, query string, policy index.Autocorrect) (services.SearchResult, error) {
	start := time.Now()
	queryID := uuid.NewString()

	expanded := s.engine.Expand(query, policy)
	hits := s.engine.Query(expanded, s.boosts)
	if len(hits) == 0 {
		s.metrics.SearchesTotal.WithLabelValues("no_matches").Inc()
		return services.SearchResult{}, fmt.Errorf("searching for %q: %w", query, apperrors.ErrNoMatches)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	items, dropped, err := s.fetchRecords(ctx, hits)
	if err != nil {
		return services.SearchResult{}, err
	}
	if len(dropped) > 0 {
		s.logger.Warn("ranked items missing from store",
			"query_id", queryID,
			"dropped_ids", dropped,
		)
		s.metrics.StoreDivergenceTotal.Add(float64(len(dropped)))
	}

	took := time.Since(start)
	s.metrics.SearchesTotal.WithLabelValues("hit").Inc()
	s.metrics.SearchLatency.Observe(took.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(len(items)))

	s.publish(ctx, events.KeySearchPerformed, events.SearchPerformed{
		Query:         query,
		ExpandedQuery: expanded,
		Results:       len(items),
		TookMS:        took.Milliseconds(),
		QueryID:       queryID,
		At:            time.Now().UTC(),
	})

	return services.SearchResult{
		Items:   items,
		Total:   len(items),
		TookMS:  took.Milliseconds(),
		QueryID: queryID,
	}, nil
}

// fetchRecords resolves ranked hits to item rows, cache first, then one
// batched store fetch for the misses. IDs the store no longer has are
// dropped from the result and reported back.
func (s *Service) fetchRecords(ctx context.Context, hits []index.Hit[model.ID]) ([]model.Item, []model.ID, error) {
	ids := make([]model.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	found := make(map[model.ID]model.Item, len(ids))
	missing := ids
	if s.cache != nil {
		cached, misses, err := s.cache.GetItems(ctx, ids)
		if err != nil {
			s.logger.Warn("cache read failed", "error", err)
			misses = ids
			cached = nil
		}
		for id, item := range cached {
			found[id] = item
		}
		missing = misses
		s.metrics.CacheHitsTotal.Add(float64(len(cached)))
		s.metrics.CacheMissesTotal.Add(float64(len(misses)))
	}

	if len(missing) > 0 {
		fetched, err := s.store.FetchItemsByIDs(ctx, missing)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching ranked items: %w", err)
		}
		for _, item := range fetched {
			found[item.ID] = item
		}
		if s.cache != nil && len(fetched) > 0 {
			if err := s.cache.SetItems(ctx, fetched); err != nil {
				s.logger.Warn("cache write failed", "error", err)
			}
		}
	}

	items := make([]model.Item, 0, len(hits))
	var dropped []model.ID
	for _, h := range hits {
		item, ok := found[h.ID]
		if !ok {
			dropped = append(dropped, h.ID)
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}

func (s *Service) CreateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	if cat.Name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", apperrors.ErrInvalidInput)
	}
	return s.store.CreateCategory(ctx, cat)
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCollection(ctx context.Context, col model.Collection) (model.Collection, error) {
	if col.Name == "" {
		return model.Collection{}, fmt.Errorf("%w: collection name is required", apperrors.ErrInvalidInput)
	}
	return s.store.CreateCollection(ctx, col)
}

func (s *Service) ListCollections(ctx context.Context) ([]model.Collection, error) {
	return s.store.ListCollections(ctx)
}

func (s *Service) GetCollection(ctx context.Context, id model.ID) (model.Collection, error) {
	return s.store.GetCollection(ctx, id)
}

func (s *Service) AddItemToCollection(ctx context.Context, collectionID, itemID model.ID) error {
	return s.store.AddItemToCollection(ctx, collectionID, itemID)
}

func (s *Service) RemoveItemFromCollection(ctx context.Context, collectionID, itemID model.ID) error {
	return s.store.RemoveItemFromCollection(ctx, collectionID, itemID)
}

func (s *Service) ListCollectionItems(ctx context.Context, collectionID model.ID) ([]model.Item, error) {
	return s.store.ListCollectionItems(ctx, collectionID)
}

// DocCount reports the number of indexed documents, for health reporting.
func (s *Service) DocCount() int {
	return s.engine.DocCount()
}

func (s *Service) publish(ctx context.Context, key string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.logger.Warn("event publish failed", "key", key, "error", err)
	}
}
