package domain

// Listing is one row of the property metadata table, joined to results by name.
type Listing struct {
	PropertyName string
	Link         *string
	Price        *string           // as listed, e.g. "1.2 - 1.6 Cr"
	Fields       map[string]string // every other metadata column, passed through
}
