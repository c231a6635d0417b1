// Package services defines the interfaces between the HTTP layer, the
// catalog service, and its backing infrastructure.
package services

import (
	"context"

	"github.com/findmepls/catalog/internal/index"
	"github.com/findmepls/catalog/model"
)

// CatalogStore is the persistent store of record for catalog data. The
// search index is rebuilt from it at startup and is never authoritative.
type CatalogStore interface {
	CreateItem(ctx context.Context, item model.Item) (model.Item, error)
	GetItem(ctx context.Context, id model.ID) (model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	DeleteItem(ctx context.Context, id model.ID) (model.Item, error)

	// FetchItemsByIDs returns the items that still exist, in no particular
	// order. IDs with no backing row are silently absent from the result.
	FetchItemsByIDs(ctx context.Context, ids []model.ID) ([]model.Item, error)

	// SearchRows streams the indexable projection of every item.
	SearchRows(ctx context.Context) ([]model.ItemDocument, error)

	CreateCategory(ctx context.Context, cat model.Category) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateCollection(ctx context.Context, col model.Collection) (model.Collection, error)
	ListCollections(ctx context.Context) ([]model.Collection, error)
	GetCollection(ctx context.Context, id model.ID) (model.Collection, error)
	AddItemToCollection(ctx context.Context, collectionID, itemID model.ID) error
	RemoveItemFromCollection(ctx context.Context, collectionID, itemID model.ID) error
	ListCollectionItems(ctx context.Context, collectionID model.ID) ([]model.Item, error)
}

// RecordCache is a read-through cache in front of the store's item rows.
// Implementations must treat every operation as best-effort: a cache outage
// degrades latency, not correctness.
type RecordCache interface {
	// GetItems returns the cached items keyed by ID plus the IDs it could
	// not serve.
	GetItems(ctx context.Context, ids []model.ID) (map[model.ID]model.Item, []model.ID, error)
	SetItems(ctx context.Context, items []model.Item) error
	InvalidateItem(ctx context.Context, id model.ID) error
}

// EventPublisher emits catalog lifecycle events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// SearchResult is the ranked outcome of one search query.
type SearchResult struct {
	Items   []model.Item `json:"items"`
	Total   int          `json:"total"`
	TookMS  int64        `json:"took_ms"`
	QueryID string       `json:"query_id"`
}

// Catalog is the service surface the HTTP handlers depend on.
type Catalog interface {
	AddItem(ctx context.Context, item model.Item) (model.Item, error)
	GetItem(ctx context.Context, id model.ID) (model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	DeleteItem(ctx context.Context, id model.ID) (model.Item, error)

	// SearchItems runs query under the configured default autocorrect
	// policy; SearchItemsWith overrides it per call.
	SearchItems(ctx context.Context, query string) (SearchResult, error)
	SearchItemsWith(ctx context.Context, query string, policy index.Autocorrect) (SearchResult, error)

	CreateCategory(ctx context.Context, cat model.Category) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateCollection(ctx context.Context, col model.Collection) (model.Collection, error)
	ListCollections(ctx context.Context) ([]model.Collection, error)
	GetCollection(ctx context.Context, id model.ID) (model.Collection, error)
	AddItemToCollection(ctx context.Context, collectionID, itemID model.ID) error
	RemoveItemFromCollection(ctx context.Context, collectionID, itemID model.ID) error
	ListCollectionItems(ctx context.Context, collectionID model.ID) ([]model.Item, error)
}
