package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schemaSQL creates the fixed schema. Column order is load-bearing: rows are
// decoded positionally.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT NOT NULL PRIMARY KEY,
	description TEXT,
	is_container BOOLEAN NOT NULL,
	checked_out TIMESTAMP,
	destroyed TIMESTAMP,
	parent_container TEXT REFERENCES items(id)
);

CREATE TABLE IF NOT EXISTS tag_associations (
	item_id TEXT NOT NULL REFERENCES items(id),
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (item_id, key)
);

CREATE INDEX IF NOT EXISTS idx_items_parent_container ON items(parent_container);
CREATE INDEX IF NOT EXISTS idx_tag_associations_key ON tag_associations(key);
`

// CreateSchema creates the items and tag_associations tables if missing
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w\nStatement: %s", err, stmt)
		}
	}
	return nil
}
