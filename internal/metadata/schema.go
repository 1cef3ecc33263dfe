package metadata

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS commands (
    name    TEXT NOT NULL,
    package TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (name, package)
);

CREATE TABLE IF NOT EXISTS environments (
    name    TEXT NOT NULL,
    package TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (name, package)
);

CREATE TABLE IF NOT EXISTS colors (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS relevance (
    uri     TEXT NOT NULL,
    package TEXT NOT NULL,
    PRIMARY KEY (uri, package)
);

CREATE INDEX IF NOT EXISTS idx_commands_package ON commands(package);
CREATE INDEX IF NOT EXISTS idx_environments_package ON environments(package);
`

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return seed(db)
}

// seed loads the built-in component data. Inserts are idempotent so an
// existing database is left alone.
func seed(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for pkg, commands := range builtinCommands {
		for _, name := range commands {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO commands (name, package) VALUES (?, ?)", name, pkg,
			); err != nil {
				return fmt.Errorf("failed to seed command %s: %w", name, err)
			}
		}
	}
	for pkg, environments := range builtinEnvironments {
		for _, name := range environments {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO environments (name, package) VALUES (?, ?)", name, pkg,
			); err != nil {
				return fmt.Errorf("failed to seed environment %s: %w", name, err)
			}
		}
	}
	for _, name := range builtinColors {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO colors (name) VALUES (?)", name,
		); err != nil {
			return fmt.Errorf("failed to seed color %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
