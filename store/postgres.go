// Package store implements the PostgreSQL store of record for the catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/findmepls/catalog/config"
	apperrors "github.com/findmepls/catalog/internal/errors"
	"github.com/findmepls/catalog/model"
)

// Store wraps a pooled *sql.DB and implements services.CatalogStore.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres, configures the pool, and verifies the
// connection with a ping.
func Open(cfg config.PostgresConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the catalog tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			parent_category BIGINT REFERENCES categories(id),
			thumbnail TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS category_name ON categories(name)`,
		`CREATE TABLE IF NOT EXISTS items (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category_id BIGINT REFERENCES categories(id),
			price DOUBLE PRECISION,
			thumbnail TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS collections_name ON collections(name)`,
		`CREATE TABLE IF NOT EXISTS collection_items (
			collection_id BIGINT REFERENCES collections(id),
			item_id BIGINT REFERENCES items(id),
			PRIMARY KEY (collection_id, item_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const itemColumns = "id, name, description, category_id, price, thumbnail"

func scanItem(row interface{ Scan(...any) error }) (model.Item, error) {
	var (
		item        model.Item
		description sql.NullString
		categoryID  sql.NullInt64
		price       sql.NullFloat64
		thumbnail   sql.NullString
	)
	err := row.Scan(&item.ID, &item.Name, &description, &categoryID, &price, &thumbnail)
	if err != nil {
		return model.Item{}, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	if price.Valid {
		item.Price = &price.Float64
	}
	if thumbnail.Valid {
		item.Thumbnail = &thumbnail.String
	}
	return item, nil
}

// CreateItem inserts the item and returns it with its assigned ID.
func (s *Store) CreateItem(ctx context.Context, item model.Item) (model.Item, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO items (name, description, category_id, price, thumbnail)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.Name, item.Description, item.CategoryID, item.Price, item.Thumbnail,
	).Scan(&item.ID)
	if err != nil {
		return model.Item{}, fmt.Errorf("inserting item: %w", err)
	}
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, id model.ID) (model.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, apperrors.NewNotFoundError("item", id)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("fetching item %d: %w", id, err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM items ORDER BY id")
}

// DeleteItem removes the item and its collection memberships in one
// transaction, returning the deleted row.
func (s *Store) DeleteItem(ctx context.Context, id model.ID) (model.Item, error) {
	var item model.Item
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+itemColumns+" FROM items WHERE id = $1", id)
		var err error
		item, err = scanItem(row)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("item", id)
		}
		if err != nil {
			return fmt.Errorf("fetching item %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM collection_items WHERE item_id = $1", id); err != nil {
			return fmt.Errorf("deleting collection memberships of item %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM items WHERE id = $1", id); err != nil {
			return fmt.Errorf("deleting item %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// FetchItemsByIDs returns the items that still exist, in no particular order.
func (s *Store) FetchItemsByIDs(ctx context.Context, ids []model.ID) ([]model.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryItems(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ANY($1)", pq.Array(ids))
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SearchRows returns the indexable projection of every item.
func (s *Store) SearchRows(ctx context.Context) ([]model.ItemDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM items")
	if err != nil {
		return nil, fmt.Errorf("querying search rows: %w", err)
	}
	defer rows.Close()

	var docs []model.ItemDocument
	for rows.Next() {
		var (
			doc         model.ItemDocument
			description sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &description); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if description.Valid {
			doc.Description = &description.String
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CreateCategory inserts the category. A duplicate name yields an
// AlreadyExistsError.
func (s *Store) CreateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, parent_category, thumbnail)
		 VALUES ($1, $2, $3) RETURNING id`,
		cat.Name, cat.ParentCategory, cat.Thumbnail,
	).Scan(&cat.ID)
	if isUniqueViolation(err) {
		return model.Category{}, apperrors.NewAlreadyExistsError("category", cat.Name)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("inserting category: %w", err)
	}
	return cat, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, parent_category, thumbnail FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var (
			cat       model.Category
			parent    sql.NullInt64
			thumbnail sql.NullString
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &parent, &thumbnail); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		if parent.Valid {
			cat.ParentCategory = &parent.Int64
		}
		if thumbnail.Valid {
			cat.Thumbnail = &thumbnail.String
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// CreateCollection inserts the collection. A duplicate name yields an
// AlreadyExistsError.
func (s *Store) CreateCollection(ctx context.Context, col model.Collection) (model.Collection, error) {
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO collections (name) VALUES ($1) RETURNING id", col.Name,
	).Scan(&col.ID)
	if isUniqueViolation(err) {
		return model.Collection{}, apperrors.NewAlreadyExistsError("collection", col.Name)
	}
	if err != nil {
		return model.Collection{}, fmt.Errorf("inserting collection: %w", err)
	}
	return col, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM collections ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var cols []model.Collection
	for rows.Next() {
		var col model.Collection
		if err := rows.Scan(&col.ID, &col.Name); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (s *Store) GetCollection(ctx context.Context, id model.ID) (model.Collection, error) {
	var col model.Collection
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM collections WHERE id = $1", id,
	).Scan(&col.ID, &col.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Collection{}, apperrors.NewNotFoundError("collection", id)
	}
	if err != nil {
		return model.Collection{}, fmt.Errorf("fetching collection %d: %w", id, err)
	}
	return col, nil
}

// AddItemToCollection links the item into the collection. Adding an existing
// member is a no-op.
func (s *Store) AddItemToCollection(ctx context.Context, collectionID, itemID model.ID) error {
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return err
	}
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collection_items (collection_id, item_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		collectionID, itemID)
	if err != nil {
		return fmt.Errorf("adding item %d to collection %d: %w", itemID, collectionID, err)
	}
	return nil
}

func (s *Store) RemoveItemFromCollection(ctx context.Context, collectionID, itemID model.ID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM collection_items WHERE collection_id = $1 AND item_id = $2",
		collectionID, itemID)
	if err != nil {
		return fmt.Errorf("removing item %d from collection %d: %w", itemID, collectionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking removal of item %d: %w", itemID, err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("collection item", itemID)
	}
	return nil
}

func (s *Store) ListCollectionItems(ctx context.Context, collectionID model.ID) ([]model.Item, error) {
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}
	return s.queryItems(ctx,
		`SELECT i.id, i.name, i.description, i.category_id, i.price, i.thumbnail
		 FROM items i
		 JOIN collection_items ci ON ci.item_id = i.id
		 WHERE ci.collection_id = $1
		 ORDER BY i.id`, collectionID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
