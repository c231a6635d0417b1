// Package model defines the catalog's persisted record types and the
// projection of an item that gets indexed for search.
package model

// ID is the primary key type shared by all catalog records.
type ID = int64

// Item is a sellable catalog entry. Only ID and Name are required; the
// remaining columns are nullable in the store.
type Item struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	CategoryID  *ID      `json:"category_id,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
}

// Category groups items into an optional hierarchy via ParentCategory.
type Category struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	ParentCategory *ID     `json:"parent_category,omitempty"`
	Thumbnail      *string `json:"thumbnail,omitempty"`
}

// Collection is a curated, ordered-by-insertion set of items.
type Collection struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CollectionItem links one item into one collection.
type CollectionItem struct {
	CollectionID ID `json:"collection_id"`
	ItemID       ID `json:"item_id"`
}

// Search field names. The index is built over exactly these two fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// ItemDocument is the searchable projection of an Item.
type ItemDocument struct {
	ID          ID
	Name        string
	Description *string
}

// SearchDocument projects the item down to its indexed fields.
func (i Item) SearchDocument() ItemDocument {
	return ItemDocument{ID: i.ID, Name: i.Name, Description: i.Description}
}

// TitleValues extracts the title field text. An item always has a name, so
// this always yields one value.
func TitleValues(doc ItemDocument) []string {
	return []string{doc.Name}
}

// DescriptionValues extracts the description field text, empty when the item
// has none.
func DescriptionValues(doc ItemDocument) []string {
	if doc.Description == nil {
		return nil
	}
	return []string{*doc.Description}
}
