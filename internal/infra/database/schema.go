package database

import (
	"context"
	"database/sql"
	"strings"
)

// leadColumnTypes overrides the TEXT default for the lead table.
var leadColumnTypes = map[string]string{
	"table_id":   "BIGSERIAL PRIMARY KEY",
	"status":     "VARCHAR(20) NOT NULL DEFAULT 'pending'",
	"updated_at": "TIMESTAMPTZ",
}

func leadTableDDL() string {
	defs := make([]string, 0, len(leadColumns)+1)
	for _, c := range leadColumns {
		typ, ok := leadColumnTypes[c.name]
		if !ok {
			typ = "TEXT"
		}
		defs = append(defs, c.name+" "+typ)
	}
	defs = append(defs, "inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()")
	return "CREATE TABLE IF NOT EXISTS lead (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
}

var schemaStatements = []string{
	leadTableDDL(),
	`CREATE INDEX IF NOT EXISTS lead_status_idx ON lead (status)`,
	`CREATE TABLE IF NOT EXISTS marketing_permission (
		contact_uuid VARCHAR(36) PRIMARY KEY,
		business_partner_id TEXT,
		general_consent VARCHAR(1),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS employee (
		employee_id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		department TEXT,
		country TEXT,
		business_partner_id TEXT,
		kind VARCHAR(20) NOT NULL DEFAULT 'employee',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the staging tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return wrapPQ("ensure schema", err)
			}
		}
		return nil
	})
}
