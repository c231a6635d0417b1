package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/findmepls/catalog/internal/errors"
	"github.com/findmepls/catalog/internal/index"
	"github.com/findmepls/catalog/model"
	"github.com/findmepls/catalog/services"
)

// fakeCatalog implements services.Catalog with canned data.
type fakeCatalog struct {
	items map[model.ID]model.Item
	next  model.ID

	lastQuery  string
	lastPolicy *index.Autocorrect
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: make(map[model.ID]model.Item)}
}

func (f *fakeCatalog) AddItem(_ context.Context, item model.Item) (model.Item, error) {
	if item.Name == "" {
		return model.Item{}, apperrors.ErrInvalidInput
	}
	f.next++
	item.ID = f.next
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCatalog) GetItem(_ context.Context, id model.ID) (model.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return model.Item{}, apperrors.NewNotFoundError("item", id)
	}
	return item, nil
}

func (f *fakeCatalog) ListItems(_ context.Context) ([]model.Item, error) {
	out := make([]model.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeCatalog) DeleteItem(_ context.Context, id model.ID) (model.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return model.Item{}, apperrors.NewNotFoundError("item", id)
	}
	delete(f.items, id)
	return item, nil
}

func (f *fakeCatalog) SearchItems(_ context.Context, query string) (services.SearchResult, error) {
	f.lastQuery = query
	f.lastPolicy = nil
	return f.search(query)
}

func (f *fakeCatalog) SearchItemsWith(_ context.Context, query string, policy index.Autocorrect) (services.SearchResult, error) {
	f.lastQuery = query
	f.lastPolicy = &policy
	return f.search(query)
}

func (f *fakeCatalog) search(query string) (services.SearchResult, error) {
	var matches []model.Item
	for _, item := range f.items {
		if item.Name == query {
			matches = append(matches, item)
		}
	}
	if len(matches) == 0 {
		return services.SearchResult{}, apperrors.ErrNoMatches
	}
	return services.SearchResult{
		Items:   matches,
		Total:   len(matches),
		QueryID: "test-query",
	}, nil
}

func (f *fakeCatalog) CreateCategory(_ context.Context, cat model.Category) (model.Category, error) {
	if cat.Name == "taken" {
		return model.Category{}, apperrors.NewAlreadyExistsError("category", cat.Name)
	}
	f.next++
	cat.ID = f.next
	return cat, nil
}

func (f *fakeCatalog) ListCategories(_ context.Context) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeCatalog) CreateCollection(_ context.Context, col model.Collection) (model.Collection, error) {
	f.next++
	col.ID = f.next
	return col, nil
}

func (f *fakeCatalog) ListCollections(_ context.Context) ([]model.Collection, error) {
	return nil, nil
}

func (f *fakeCatalog) GetCollection(_ context.Context, id model.ID) (model.Collection, error) {
	return model.Collection{}, apperrors.NewNotFoundError("collection", id)
}

func (f *fakeCatalog) AddItemToCollection(_ context.Context, _, _ model.ID) error {
	return nil
}

func (f *fakeCatalog) RemoveItemFromCollection(_ context.Context, _, _ model.ID) error {
	return nil
}

func (f *fakeCatalog) ListCollectionItems(_ context.Context, _ model.ID) ([]model.Item, error) {
	return nil, nil
}

func setupTestRouter(catalog services.Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, catalog)
	return router
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())
	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAndGetItem(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	w := doRequest(router, http.MethodPost, "/items", model.Item{Name: "lamp"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "lamp", created.Name)
	assert.NotZero(t, created.ID)

	w = doRequest(router, http.MethodGet, "/items/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateItemInvalidJSON(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeInvalidJSON, apiErr.Code)
}

func TestGetItemNotFound(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	w := doRequest(router, http.MethodGet, "/items/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeNotFound, apiErr.Code)
}

func TestGetItemInvalidID(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	w := doRequest(router, http.MethodGet, "/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteItem(t *testing.T) {
	catalog := newFakeCatalog()
	router := setupTestRouter(catalog)

	doRequest(router, http.MethodPost, "/items", model.Item{Name: "lamp"})
	w := doRequest(router, http.MethodDelete, "/items/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, catalog.items)
}

func TestSearch(t *testing.T) {
	catalog := newFakeCatalog()
	router := setupTestRouter(catalog)
	doRequest(router, http.MethodPost, "/items", model.Item{Name: "lamp"})

	t.Run("hit", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/lamp", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result services.SearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Total)
		assert.Nil(t, catalog.lastPolicy, "no query param means the default policy")
	})

	t.Run("no matches is 404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/nothing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var apiErr APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, ErrorCodeNoMatches, apiErr.Code)
	})

	t.Run("autocorrect override", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/lamp?autocorrect=fixed&distance=3", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, catalog.lastPolicy)
		assert.Equal(t, index.ExpandFixed, catalog.lastPolicy.Mode)
		assert.Equal(t, 3, catalog.lastPolicy.MaxDistance)
	})

	t.Run("autocorrect off", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/lamp?autocorrect=off", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, catalog.lastPolicy)
		assert.Equal(t, index.ExpandOff, catalog.lastPolicy.Mode)
	})

	t.Run("bad autocorrect value", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/lamp?autocorrect=fuzzy", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad distance value", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/search/lamp?autocorrect=fixed&distance=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateCategoryConflict(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	w := doRequest(router, http.MethodPost, "/categories", model.Category{Name: "taken"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeAlreadyExists, apiErr.Code)
}

func TestCollectionItemRoutes(t *testing.T) {
	router := setupTestRouter(newFakeCatalog())

	w := doRequest(router, http.MethodPost, "/collections/1/items/2", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodDelete, "/collections/1/items/2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/collections/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
