package metadata

// EmptyStore is the degraded fallback used when the database cannot be
// opened. Every query succeeds with no results.
type EmptyStore struct{}

// NewEmptyStore returns the fallback as a Store so it can stand in
// wherever the real database is expected.
func NewEmptyStore() Store { return &EmptyStore{} }

func (*EmptyStore) CommandsOf([]string) ([]Component, error)     { return nil, nil }
func (*EmptyStore) EnvironmentsOf([]string) ([]Component, error) { return nil, nil }
func (*EmptyStore) Colors() ([]string, error)                    { return nil, nil }
func (*EmptyStore) AllPackages() ([]string, error)               { return nil, nil }
func (*EmptyStore) UpsertRelevance(string, []string) error       { return nil }
func (*EmptyStore) RelevantPackages(string) ([]string, error)    { return nil, ErrNotFound }
func (*EmptyStore) Close() error                                 { return nil }
