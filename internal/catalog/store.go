package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/logging"
)

// Logger is the minimal logging surface Store needs, satisfied by
// *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// Store is the read-only query surface over the bundled node catalog (spec
// §4.1 "Catalog Store"). A Store is safe for concurrent reads; it is opened
// once at startup and closed once at process exit (spec §5 "Shared
// resources").
type Store struct {
	db      *sql.DB
	hasFTS  bool
	log     Logger
	records []*Record // loaded once; the catalog is small (~800 rows)
	byType  map[string]*Record
}

// Open opens the bundled SQLite catalog file read-only (spec §6 "Bundled
// catalog"). path is resolved by the caller (relative to the executable
// unless overridden by dbPath config).
func Open(ctx context.Context, path string, log *logging.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "opening catalog database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.Internal, "catalog database unreachable", err)
	}

	s := &Store{db: db, log: log, byType: map[string]*Record{}}
	s.hasFTS = s.detectFTS(ctx)
	if err := s.loadRecords(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) detectFTS(ctx context.Context) bool {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='nodes_fts'`).Scan(&name)
	return err == nil && name == "nodes_fts"
}

func (s *Store) loadRecords(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, display_name, category, package, description,
		       is_ai_tool, is_trigger, is_webhook, versions_json, version_specs_json
		FROM nodes`)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "loading catalog records", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Record
		var versionsJSON, specsJSON string
		if err := rows.Scan(&r.Type, &r.DisplayName, &r.Category, &r.Package,
			&r.Description, &r.IsAITool, &r.IsTrigger, &r.IsWebhook,
			&versionsJSON, &specsJSON); err != nil {
			return apperr.Wrap(apperr.Internal, "scanning catalog record", err)
		}
		if versionsJSON != "" {
			_ = json.Unmarshal([]byte(versionsJSON), &r.Versions)
		}
		if specsJSON != "" {
			_ = json.Unmarshal([]byte(specsJSON), &r.VersionSpecs)
		}
		rec := r
		s.records = append(s.records, &rec)
		s.byType[rec.Type] = &rec
	}
	return rows.Err()
}

// LookupByType normalizes input and returns the matching record (spec §4.1
// "lookupByType").
func (s *Store) LookupByType(input string) (*Record, bool) {
	return s.lookupByType(input, false)
}

// LookupTriggerByType is LookupByType but prefers the trigger variant when
// a short name resolves ambiguously.
func (s *Store) LookupTriggerByType(input string) (*Record, bool) {
	return s.lookupByType(input, true)
}

func (s *Store) lookupByType(input string, preferTrigger bool) (*Record, bool) {
	res := normalizeType(input,
		func(t string) bool { _, ok := s.byType[t]; return ok },
		func(short string) []string { return s.shortNameCandidates(short) },
		preferTrigger)
	if !res.ok {
		return nil, false
	}
	r, ok := s.byType[res.fullType]
	return r, ok
}

func (s *Store) shortNameCandidates(short string) []string {
	var out []string
	for t := range s.byType {
		if shortNameLower(t) == short {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func shortNameLower(fullType string) string {
	return toLowerASCII(shortName(fullType))
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// ListByCategory returns every record in the given category (spec §4.1
// "listByCategory"; supplemented catalog-browse feature, SPEC_FULL §1).
func (s *Store) ListByCategory(category string) []*Record {
	var out []*Record
	for _, r := range s.records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Versions returns the ordered known versions for type (spec §4.1
// "versions").
func (s *Store) Versions(input string) ([]float64, bool) {
	r, ok := s.LookupByType(input)
	if !ok {
		return nil, false
	}
	return r.Versions, true
}

// PropertySchema returns the property schema for type at version (spec
// §4.1 "propertySchema").
func (s *Store) PropertySchema(input string, version float64) ([]PropertySchema, bool) {
	r, ok := s.LookupByType(input)
	if !ok {
		return nil, false
	}
	vs, found := r.VersionSchemaFor(version)
	if !found {
		return nil, false
	}
	return vs.Properties, true
}

// SearchEnvelope is the result of Search, surfacing which backend method
// produced the results (spec §9 design note).
type SearchEnvelope struct {
	Results []Result
	Method  Method
}

// Search runs a full-text or fuzzy search (spec §4.1 "search"), falling
// back silently to substring matching when the FTS index is absent or
// errors (spec §4.1 "Fallback"; §8 property "Search safety": completes
// without error for all inputs).
func (s *Store) Search(ctx context.Context, query string, mode Mode, limit int) SearchEnvelope {
	if mode == ModeFuzzy {
		scored := FuzzyMatch(query, "", s.records, limit)
		results := make([]Result, len(scored))
		for i, sc := range scored {
			results[i] = Result{Record: sc.Record, Score: sc.Score, Method: MethodFuzzy}
		}
		return SearchEnvelope{Results: results, Method: MethodFuzzy}
	}

	if s.hasFTS {
		if results, err := s.searchFTS(ctx, query, mode, limit); err == nil {
			return SearchEnvelope{Results: results, Method: MethodFTS}
		}
		s.log.Debug("catalog: FTS search failed, falling back to substring", "query", query)
	}

	return SearchEnvelope{
		Results: RankSubstringMatches(query, s.records, limit),
		Method:  MethodSubstring,
	}
}

func (s *Store) searchFTS(ctx context.Context, query string, mode Mode, limit int) ([]Result, error) {
	matchExpr := BuildFTSQuery(query, mode)
	if matchExpr == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.type, bm25(nodes_fts) AS rank
		FROM nodes_fts
		JOIN nodes n ON n.rowid = nodes_fts.rowid
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, matchExpr, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var typ string
		var rank float64
		if err := rows.Scan(&typ, &rank); err != nil {
			return nil, err
		}
		if r, ok := s.byType[typ]; ok {
			out = append(out, Result{Record: r, Score: -rank, Method: MethodFTS})
		}
	}
	return out, rows.Err()
}

// SuggestSimilarType returns the best similarity-ranked suggestion for an
// unrecognized type string, for the Auto-Fix Engine's node-type-correction
// detector (spec §4.3 "Node-type correction" — accepts only
// NameSimilarity >= AutoFixThreshold). Matching runs on the short name: an
// unrecognized type typically still carries a valid package prefix, and
// comparing the full dotted string against the catalog's bare short names
// would unfairly punish every candidate for the shared prefix.
func (s *Store) SuggestSimilarType(input string) (ScoredRecord, bool) {
	return BestNameMatch(shortName(input), s.records)
}
