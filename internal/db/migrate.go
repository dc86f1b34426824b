package db

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded schema files in lexical order. Every
// statement is idempotent (CREATE ... IF NOT EXISTS), so running them on
// an existing database is safe.
func RunMigrations(db *sql.DB) error {
	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := embeddedMigrations.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read embedded migration %s: %w", name, err)
		}
		if len(data) == 0 {
			continue
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}
