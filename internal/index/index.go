package index

// IngotIndex defines the read/write surface of the index. Consumers depend
// on it rather than on *DB so tests can substitute it.
type IngotIndex interface {
	UpsertIngot(row IngotRow, body string) error
	DeleteIngot(path string) error
	GetChecksum(path string) (string, error)
	GetIngot(path string) (*IngotRow, error)
	ListIngots(f ListFilter) ([]IngotRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	TermCounts(kind string) (map[uint64]int, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ IngotIndex = (*DB)(nil)
