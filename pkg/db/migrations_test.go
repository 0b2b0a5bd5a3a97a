package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(migrationsFS, "migrations/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestMigrations_SeedMatchesParserCategories(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, "migrations/00002_seed_categories.sql")
	require.NoError(t, err)

	up, _, _ := strings.Cut(string(body), "-- +goose Down")
	for _, name := range parser.DefaultKnowledgeBase().Categories() {
		assert.Contains(t, up, "('"+name+"')", "category %q is not seeded", name)
	}
}
