// Package testutil provides in-memory fakes for the engine's collaborators.
package testutil

import (
	"testing"

	"mo-go/internal/database"
	"mo-go/internal/mo"
)

// NewTestInventory creates a new in-memory SQLite inventory with schema
// applied. The inventory is automatically closed when the test completes.
func NewTestInventory(t *testing.T) mo.Inventory {
	t.Helper()

	inv, err := database.NewSQLiteInventory(":memory:")
	if err != nil {
		t.Fatalf("failed to open inventory: %v", err)
	}

	t.Cleanup(func() {
		inv.Close()
	})

	return inv
}
