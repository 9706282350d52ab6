package catalog

import "strings"

// Mode is the closed set of search modes (spec §4.1 "Search ranking").
type Mode string

const (
	ModeOR    Mode = "OR"
	ModeAND   Mode = "AND"
	ModeFuzzy Mode = "FUZZY"
)

// Method records which backend actually produced a SearchResult list, so
// tests (and verbose output) can assert the degraded mode was taken (spec
// §9 "surface the degraded mode in a results envelope").
type Method string

const (
	MethodFTS       Method = "fts"
	MethodSubstring Method = "substring"
	MethodFuzzy     Method = "fuzzy"
)

// ftsMetaChars is the closed set of FTS5 meta-characters that must never
// reach the backend unescaped (spec §4.1).
const ftsMetaChars = `"(){}[]*+-:^~`

// tokenize splits a raw query into whitespace-separated tokens, each
// stripped of FTS meta-characters. Empty tokens are dropped.
func tokenize(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		clean := stripMeta(f)
		if clean != "" {
			tokens = append(tokens, clean)
		}
	}
	return tokens
}

func stripMeta(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsMetaChars, r) {
			return -1
		}
		return r
	}, s)
}

// BuildFTSQuery turns a raw user query into a syntactically safe FTS5 MATCH
// expression for the given mode, with every token double-quoted so stray
// meta-characters stripped during tokenize can never recombine into FTS
// syntax (spec §4.1, §8 property "Search safety").
func BuildFTSQuery(query string, mode Mode) string {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	switch mode {
	case ModeAND:
		return strings.Join(quoted, " AND ")
	default: // OR and FUZZY both degrade to an OR prefilter at the FTS layer
		return strings.Join(quoted, " OR ")
	}
}

// SubstringFallback reports whether query, lower-cased, is a substring of
// name or displayName (spec §4.1 "Fallback").
func SubstringFallback(query, name, displayName string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(displayName), q)
}

// Result is one ranked search hit, carrying the method that produced it.
type Result struct {
	Record *Record
	Score  float64
	Method Method
}

// rankField classifies which field matched, used to order name > display
// name > description (spec §4.1 "Name matches outrank display-name
// matches; display-name matches outrank description matches").
type rankField int

const (
	rankNone rankField = iota
	rankDescription
	rankDisplayName
	rankName
)

func classify(query string, r *Record) rankField {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(shortName(r.Type)), q) {
		return rankName
	}
	if strings.Contains(strings.ToLower(r.DisplayName), q) {
		return rankDisplayName
	}
	if strings.Contains(strings.ToLower(r.Description), q) {
		return rankDescription
	}
	return rankNone
}

// RankSubstringMatches implements the fallback substring search over an
// in-memory candidate list, applying the field-precedence and
// lexicographic tie-break rules from spec §4.1.
func RankSubstringMatches(query string, candidates []*Record, limit int) []Result {
	var out []Result
	for _, r := range candidates {
		field := classify(query, r)
		if field == rankNone {
			continue
		}
		out = append(out, Result{Record: r, Score: float64(field), Method: MethodSubstring})
	}
	sortResultsDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortResultsDesc(s []Result) {
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && resultLess(s[j], s[j-1]) {
			s[j], s[j-1] = s[j-1], s[j]
			j--
		}
	}
}

func resultLess(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Record.Type < b.Record.Type
}
