package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lib/pq"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
)

// CallOutcomeColumns must exist on calls before outcomes can be saved.
var CallOutcomeColumns = []string{"reached_customer", "outcome_code", "outcome_notes", "outcome_recorded_at"}

// SchemaCache remembers which tables have passed verification. It is
// created by the caller and scoped to whatever lifetime the caller wants
// (one per process in cmd/server, one per test).
type SchemaCache struct {
	entries *lru.Cache[string, time.Time]
}

func NewSchemaCache(size int) (*SchemaCache, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &SchemaCache{entries: c}, nil
}

func (c *SchemaCache) Verified(table string) bool {
	return c != nil && c.entries.Contains(table)
}

func (c *SchemaCache) MarkVerified(table string, at time.Time) {
	if c != nil {
		c.entries.Add(table, at)
	}
}

// Forget drops a table so the next check hits the database again.
func (c *SchemaCache) Forget(table string) {
	if c != nil {
		c.entries.Remove(table)
	}
}

// SchemaVerifier checks information_schema for columns the code depends on.
type SchemaVerifier struct {
	DB    *sql.DB
	Cache *SchemaCache
}

func (v *SchemaVerifier) VerifyCallOutcomeColumns(ctx context.Context) error {
	return v.verifyColumns(ctx, "calls", CallOutcomeColumns)
}

func (v *SchemaVerifier) Invalidate(table string) {
	v.Cache.Forget(table)
}

func (v *SchemaVerifier) verifyColumns(ctx context.Context, table string, required []string) error {
	if v.Cache.Verified(table) {
		return nil
	}

	query := `
        SELECT column_name
        FROM information_schema.columns
        WHERE table_name = $1 AND column_name = ANY($2)
    `
	rows, err := v.DB.QueryContext(ctx, query, table, pq.Array(required))
	if err != nil {
		return ClassifyPgError("failed to inspect schema", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(required))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return ClassifyPgError("failed to inspect schema", err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return ClassifyPgError("failed to inspect schema", err)
	}

	var missing []string
	for _, col := range required {
		if !found[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.NewSchemaOutOfDate(
			fmt.Sprintf("%s table is missing columns %s; run pending migrations", table, strings.Join(missing, ", ")), nil)
	}

	v.Cache.MarkVerified(table, time.Now())
	return nil
}
