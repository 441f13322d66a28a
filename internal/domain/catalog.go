package domain

// Cursor is the server-issued address of the next catalog page.
// The empty cursor means there are no more pages.
type Cursor string

const NoCursor Cursor = ""

func (c Cursor) String() string {
	return string(c)
}

func (c Cursor) IsNone() bool {
	return c == NoCursor
}

type CatalogPage struct {
	Count int         `json:"count"` // Total characters in the catalog, when reported
	Pages int         `json:"pages"` // Total pages, when reported
	Next  Cursor      `json:"next"`  // Empty on the last page
	Items []Character `json:"items"` // Characters on this page, in server order
}
