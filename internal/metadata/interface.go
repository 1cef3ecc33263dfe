package metadata

import "errors"

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// Component is a command or environment contributed by a package. Package
// is empty for kernel built-ins.
type Component struct {
	Name    string
	Package string
}

// Store is the component metadata database: which commands, environments
// and colors exist, which package provides them, and which packages are
// currently relevant to each document.
type Store interface {
	// Component queries. The empty package name (kernel) is always
	// included.
	CommandsOf(packages []string) ([]Component, error)
	EnvironmentsOf(packages []string) ([]Component, error)
	Colors() ([]string, error)
	AllPackages() ([]string, error)

	// Per-document relevance, maintained by the background refresh.
	UpsertRelevance(uri string, packages []string) error
	RelevantPackages(uri string) ([]string, error)

	Close() error
}
