package artifacts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"estate_hub/internal/domain"
)

/********** header alias registry **********/

var listingAliases = map[string][]string{
	"name":  {"PropertyName", "property_name", "name", "society", "Property"},
	"link":  {"Link", "link", "url", "URL"},
	"price": {"Price", "price", "price_range"},
}

// firstAlias returns the value of the first alias column present in row.
func firstAlias(row map[string]string, key string) (string, string, bool) {
	for _, col := range listingAliases[key] {
		if v, ok := row[col]; ok {
			return col, v, true
		}
	}
	return "", "", false
}

func ptrStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

/********** listing mapper **********/

func mapListing(row map[string]string) (domain.Listing, bool) {
	nameCol, name, ok := firstAlias(row, "name")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return domain.Listing{}, false
	}
	l := domain.Listing{PropertyName: name, Fields: make(map[string]string, len(row))}
	known := map[string]struct{}{nameCol: {}}
	if col, v, ok := firstAlias(row, "link"); ok {
		l.Link = ptrStr(v)
		known[col] = struct{}{}
	}
	if col, v, ok := firstAlias(row, "price"); ok {
		l.Price = ptrStr(v)
		known[col] = struct{}{}
	}
	for k, v := range row {
		if _, skip := known[k]; skip {
			continue
		}
		l.Fields[k] = v
	}
	return l, true
}

// ParseListings reads the property metadata table. Rows without a property
// name are skipped; when a name repeats, the first row wins.
func ParseListings(name string, r io.Reader) ([]domain.Listing, error) {
	recs, err := readRows(name, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	header := trimAll(recs[0])
	seen := make(map[string]struct{}, len(recs))
	out := make([]domain.Listing, 0, len(recs)-1)
	skipped := 0
	for _, rec := range recs[1:] {
		row := make(map[string]string, len(header))
		for j, col := range header {
			if col == "" {
				continue // unnamed pandas index column
			}
			if j < len(rec) {
				row[col] = rec[j]
			} else {
				row[col] = ""
			}
		}
		l, ok := mapListing(row)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[l.PropertyName]; dup {
			continue
		}
		seen[l.PropertyName] = struct{}{}
		out = append(out, l)
	}
	if skipped > 0 {
		log.Warn().Str("artifact", name).Int("skipped", skipped).Msg("listing rows without property name")
	}
	return out, nil
}

// ListingTable is an in-memory domain.ListingRepository.
type ListingTable struct {
	byName map[string]domain.Listing
}

func NewListingTable(ls []domain.Listing) *ListingTable {
	m := make(map[string]domain.Listing, len(ls))
	for _, l := range ls {
		if _, ok := m[l.PropertyName]; !ok {
			m[l.PropertyName] = l
		}
	}
	return &ListingTable{byName: m}
}

func (t *ListingTable) Len() int { return len(t.byName) }

func (t *ListingTable) GetListings(ctx context.Context, names []string) (map[string]domain.Listing, error) {
	out := make(map[string]domain.Listing, len(names))
	for _, n := range names {
		if l, ok := t.byName[n]; ok {
			out[n] = l
		}
	}
	return out, nil
}
