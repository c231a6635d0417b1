// Package api exposes the catalog service over HTTP with gin.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/findmepls/catalog/internal/index"
	"github.com/findmepls/catalog/model"
	"github.com/findmepls/catalog/services"
)

var (
	errInvalidAutocorrect = errors.New("autocorrect must be one of: off, word-length, fixed, unlimited")
	errInvalidDistance    = errors.New("distance must be a non-negative integer")
)

// API holds dependencies for the HTTP handlers.
type API struct {
	catalog services.Catalog
}

// NewAPI creates a new API handler structure.
func NewAPI(catalog services.Catalog) *API {
	return &API{catalog: catalog}
}

// SetupRoutes defines all the API routes for the catalog service.
func SetupRoutes(router *gin.Engine, catalog services.Catalog) {
	apiHandler := NewAPI(catalog)

	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(1 << 20))

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Search route; autocorrect policy is tunable per request
	router.GET("/search/:query", apiHandler.SearchHandler)

	// Item management routes
	itemRoutes := router.Group("/items")
	{
		itemRoutes.POST("", apiHandler.CreateItemHandler)
		itemRoutes.GET("", apiHandler.ListItemsHandler)
		itemRoutes.GET("/:id", apiHandler.GetItemHandler)
		itemRoutes.DELETE("/:id", apiHandler.DeleteItemHandler)
	}

	// Category routes
	categoryRoutes := router.Group("/categories")
	{
		categoryRoutes.POST("", apiHandler.CreateCategoryHandler)
		categoryRoutes.GET("", apiHandler.ListCategoriesHandler)
	}

	// Collection routes
	collectionRoutes := router.Group("/collections")
	{
		collectionRoutes.POST("", apiHandler.CreateCollectionHandler)
		collectionRoutes.GET("", apiHandler.ListCollectionsHandler)
		collectionRoutes.GET("/:id", apiHandler.GetCollectionHandler)
		collectionRoutes.GET("/:id/items", apiHandler.ListCollectionItemsHandler)
		collectionRoutes.POST("/:id/items/:itemID", apiHandler.AddCollectionItemHandler)
		collectionRoutes.DELETE("/:id/items/:itemID", apiHandler.RemoveCollectionItemHandler)
	}
}

// HealthCheckHandler reports service liveness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SearchHandler runs a ranked search over the catalog.
// Query params: autocorrect (off|word-length|fixed|unlimited), distance (for fixed).
func (api *API) SearchHandler(c *gin.Context) {
	query := c.Param("query")

	policy, ok, err := policyFromRequest(c)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		return
	}

	var result services.SearchResult
	if ok {
		result, err = api.catalog.SearchItemsWith(c.Request.Context(), query, policy)
	} else {
		result, err = api.catalog.SearchItems(c.Request.Context(), query)
	}
	if err != nil {
		SendServiceError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// policyFromRequest parses the optional autocorrect override. The second
// return value reports whether the request carried one.
func policyFromRequest(c *gin.Context) (index.Autocorrect, bool, error) {
	mode := c.Query("autocorrect")
	if mode == "" {
		return index.Autocorrect{}, false, nil
	}
	switch mode {
	case "off":
		return index.Autocorrect{Mode: index.ExpandOff}, true, nil
	case "word-length":
		return index.Autocorrect{Mode: index.ExpandWordLength}, true, nil
	case "unlimited":
		return index.Autocorrect{Mode: index.ExpandUnlimited}, true, nil
	case "fixed":
		distance := 2
		if raw := c.Query("distance"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return index.Autocorrect{}, false, errInvalidDistance
			}
			distance = parsed
		}
		return index.Autocorrect{Mode: index.ExpandFixed, MaxDistance: distance}, true, nil
	default:
		return index.Autocorrect{}, false, errInvalidAutocorrect
	}
}

// CreateItemHandler adds an item to the catalog and the search index.
func (api *API) CreateItemHandler(c *gin.Context) {
	var item model.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	created, err := api.catalog.AddItem(c.Request.Context(), item)
	if err != nil {
		SendServiceError(c, "item creation", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListItemsHandler returns every item in the catalog.
func (api *API) ListItemsHandler(c *gin.Context) {
	items, err := api.catalog.ListItems(c.Request.Context())
	if err != nil {
		SendServiceError(c, "item listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetItemHandler returns one item by ID.
func (api *API) GetItemHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := api.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "item lookup", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItemHandler removes an item, returning the deleted record.
func (api *API) DeleteItemHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deleted, err := api.catalog.DeleteItem(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "item deletion", err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// CreateCategoryHandler adds a category.
func (api *API) CreateCategoryHandler(c *gin.Context) {
	var cat model.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	created, err := api.catalog.CreateCategory(c.Request.Context(), cat)
	if err != nil {
		SendServiceError(c, "category creation", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCategoriesHandler returns every category.
func (api *API) ListCategoriesHandler(c *gin.Context) {
	cats, err := api.catalog.ListCategories(c.Request.Context())
	if err != nil {
		SendServiceError(c, "category listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "total": len(cats)})
}

// CreateCollectionHandler adds a collection.
func (api *API) CreateCollectionHandler(c *gin.Context) {
	var col model.Collection
	if err := c.ShouldBindJSON(&col); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	created, err := api.catalog.CreateCollection(c.Request.Context(), col)
	if err != nil {
		SendServiceError(c, "collection creation", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCollectionsHandler returns every collection.
func (api *API) ListCollectionsHandler(c *gin.Context) {
	cols, err := api.catalog.ListCollections(c.Request.Context())
	if err != nil {
		SendServiceError(c, "collection listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": cols, "total": len(cols)})
}

// GetCollectionHandler returns one collection by ID.
func (api *API) GetCollectionHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	col, err := api.catalog.GetCollection(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "collection lookup", err)
		return
	}
	c.JSON(http.StatusOK, col)
}

// ListCollectionItemsHandler returns the items of one collection.
func (api *API) ListCollectionItemsHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := api.catalog.ListCollectionItems(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, "collection items listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// AddCollectionItemHandler links an item into a collection.
func (api *API) AddCollectionItemHandler(c *gin.Context) {
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	if err := api.catalog.AddItemToCollection(c.Request.Context(), collectionID, itemID); err != nil {
		SendServiceError(c, "collection item addition", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection_id": collectionID, "item_id": itemID})
}

// RemoveCollectionItemHandler unlinks an item from a collection.
func (api *API) RemoveCollectionItemHandler(c *gin.Context) {
	collectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	if err := api.catalog.RemoveItemFromCollection(c.Request.Context(), collectionID, itemID); err != nil {
		SendServiceError(c, "collection item removal", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses a numeric path parameter, sending the error response itself
// when the value is not a valid ID.
func pathID(c *gin.Context, name string) (model.ID, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
			"Invalid ID '"+raw+"'")
		return 0, false
	}
	return id, true
}
