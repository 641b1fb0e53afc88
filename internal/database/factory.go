package database

import (
	"fmt"
	"path/filepath"

	"mo-go/internal/config"
	"mo-go/internal/mo"
)

// NewInventoryFromConfig creates an Inventory implementation based on the
// database config type. The SQLite path defaults to inventory.db under
// baseDir when not set explicitly.
func NewInventoryFromConfig(cfg config.DatabaseConfig, baseDir string) (mo.Inventory, error) {
	switch cfg.Type {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			if baseDir == "" {
				return nil, fmt.Errorf("base_dir or database path required for sqlite inventory")
			}
			path = filepath.Join(baseDir, "inventory.db")
		}
		return NewSQLiteInventory(path)
	case "memory":
		return NewMemoryInventory(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
