package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The repositories write raw SQL against migrations/001_init.sql. These
// checks catch column drift between the two without a live database.

func loadSchema(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	return string(b)
}

func tableDDL(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(schema, marker)
	require.GreaterOrEqual(t, start, 0, "table %s missing from migration", table)
	rest := schema[start:]
	end := strings.Index(rest, ");")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}

func TestUsersTableCarriesEveryWrittenColumn(t *testing.T) {
	ddl := tableDDL(t, loadSchema(t), "users")

	// UpdateUser stamps updated_at; the rest are scanned on every read.
	for _, col := range []string{
		"id", "name", "email", "phone_number", "password_hash",
		"role", "company_name", "company_logo", "created_at", "updated_at",
	} {
		require.Contains(t, ddl, col, "users.%s referenced by repository SQL", col)
	}
	require.Contains(t, ddl, "DEFAULT 'USER'", "role default must match the domain enum")
}

func TestContactsTableCarriesEveryWrittenColumn(t *testing.T) {
	ddl := tableDDL(t, loadSchema(t), "contacts")

	for _, col := range []string{
		"id", "name", "email", "phone_number", "address", "status",
		"tags", "pipeline_stage", "created_by", "created_at",
	} {
		require.Contains(t, ddl, col, "contacts.%s referenced by repository SQL", col)
	}
	require.Contains(t, ddl, "TEXT[] NOT NULL DEFAULT '{}'",
		"tag updates replace the whole array and never expect NULL")
}

func TestSettingsTableBacksTheUpsert(t *testing.T) {
	ddl := tableDDL(t, loadSchema(t), "notification_settings")
	require.Contains(t, ddl, "UNIQUE (user_id, event_type)",
		"the lazy seed and partial upsert rely on this constraint")
}
