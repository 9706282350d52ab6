package catalog

// NewForTesting builds a Store directly from in-memory records, bypassing
// the SQLite file entirely. Callers outside this package (the validator and
// auto-fix test suites) use it to exercise catalog-consuming logic against a
// small fixed fixture without needing a bundled database file. Search and
// SuggestSimilarType still work since they read s.records; only searchFTS is
// unreachable (hasFTS stays false).
func NewForTesting(records []*Record) *Store {
	s := &Store{records: records, byType: make(map[string]*Record, len(records))}
	for _, r := range records {
		s.byType[r.Type] = r
	}
	return s
}
