package metadata

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the on-disk Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the metadata database at path and
// ensures the schema and seed data are present. Use ":memory:" for an
// ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode
	if _, err := db.Exec(`
        PRAGMA foreign_keys = ON;
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CommandsOf(packages []string) ([]Component, error) {
	return s.componentsOf("commands", packages)
}

func (s *SQLiteStore) EnvironmentsOf(packages []string) ([]Component, error) {
	return s.componentsOf("environments", packages)
}

func (s *SQLiteStore) componentsOf(table string, packages []string) ([]Component, error) {
	// The kernel package is always in scope.
	scoped := append([]string{""}, packages...)
	placeholders := strings.Repeat("?,", len(scoped))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(scoped))
	for i, pkg := range scoped {
		args[i] = pkg
	}

	query := fmt.Sprintf(
		"SELECT name, package FROM %s WHERE package IN (%s) ORDER BY name",
		table, placeholders,
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var component Component
		if err := rows.Scan(&component.Name, &component.Package); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		components = append(components, component)
	}
	return components, rows.Err()
}

func (s *SQLiteStore) Colors() ([]string, error) {
	return s.stringColumn("SELECT name FROM colors ORDER BY name")
}

func (s *SQLiteStore) AllPackages() ([]string, error) {
	return s.stringColumn("SELECT DISTINCT package FROM commands WHERE package != '' ORDER BY package")
}

func (s *SQLiteStore) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// UpsertRelevance replaces the set of packages recorded as relevant to uri.
func (s *SQLiteStore) UpsertRelevance(uri string, packages []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM relevance WHERE uri = ?", uri); err != nil {
		return fmt.Errorf("failed to clear relevance: %w", err)
	}
	for _, pkg := range packages {
		if _, err := tx.Exec(
			"INSERT INTO relevance (uri, package) VALUES (?, ?)", uri, pkg,
		); err != nil {
			return fmt.Errorf("failed to insert relevance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RelevantPackages(uri string) ([]string, error) {
	packages, err := s.stringColumn(
		"SELECT package FROM relevance WHERE uri = ? ORDER BY package", uri,
	)
	if err != nil {
		return nil, err
	}
	if packages == nil {
		return nil, ErrNotFound
	}
	return packages, nil
}
