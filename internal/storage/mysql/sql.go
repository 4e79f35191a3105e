package mysql

const upsertListingSQL = `
INSERT INTO listings
  (name, link, price, extras)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  link       = VALUES(link),
  price      = VALUES(price),
  extras     = VALUES(extras),
  updated_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// The IN list is expanded per call; see inPlaceholders.
const getListingsPrefix = `
SELECT name, link, price, extras
FROM listings
WHERE name IN `

const countListingsSQL = `SELECT COUNT(*) FROM listings`
