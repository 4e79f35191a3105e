package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"estate_hub/internal/domain"
)

// MySQL caps prepared statement placeholders at 65535.
const maxNamesPerQuery = 1000

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	extras := l.Fields
	if extras == nil {
		extras = map[string]string{}
	}
	b, err := json.Marshal(extras)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertListingSQL,
		l.PropertyName,
		valStr(l.Link),
		valStr(l.Price),
		string(b),
	)
	return err
}

func (r *Repo) GetListings(ctx context.Context, names []string) (map[string]domain.Listing, error) {
	out := make(map[string]domain.Listing, len(names))
	for start := 0; start < len(names); start += maxNamesPerQuery {
		end := min(start+maxNamesPerQuery, len(names))
		if err := r.getBatch(ctx, names[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) getBatch(ctx context.Context, names []string, out map[string]domain.Listing) error {
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := r.db.QueryContext(ctx, getListingsPrefix+inPlaceholders(len(names)), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l           domain.Listing
			link, price sql.NullString
			extras      []byte
		)
		if err := rows.Scan(&l.PropertyName, &link, &price, &extras); err != nil {
			return err
		}
		if link.Valid {
			s := link.String
			l.Link = &s
		}
		if price.Valid {
			s := price.String
			l.Price = &s
		}
		fields, err := decodeExtras(l.PropertyName, extras)
		if err != nil {
			return err
		}
		l.Fields = fields
		out[l.PropertyName] = l
	}
	return rows.Err()
}

// decodeExtras reads the extras JSON column; NULL or empty means no fields.
func decodeExtras(name string, b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("listing %q: extras: %w", name, err)
	}
	return out, nil
}

func (r *Repo) CountListings(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countListingsSQL).Scan(&n)
	return n, err
}

// inPlaceholders returns "(?,?,...)" with n markers.
func inPlaceholders(n int) string {
	if n == 0 {
		return "(NULL)"
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}
