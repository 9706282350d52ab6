package catalog

import "strings"

// levenshtein computes the edit distance between a and b, bounded: once the
// running minimum across a row exceeds maxDistance, the value maxDistance+1
// is returned early (spec §4.1.1 "bounded at maxDistance=5"). Grounded on
// the teacher's ComputeDistance matrix implementation
// (internal/utils/string_distance.go), extended with the early-exit bound.
func levenshtein(a, b string, maxDistance int) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return min(len(b), maxDistance+1)
	}
	if len(b) == 0 {
		return min(len(a), maxDistance+1)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			v := del
			if ins < v {
				v = ins
			}
			if sub < v {
				v = sub
			}
			curr[j] = v
			if v < rowMin {
				rowMin = v
			}
		}
		if rowMin > maxDistance {
			return maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// nameSimilarity returns 1 - editDistance/max(len) per spec §4.1.1.
func nameSimilarity(query, candidate string, maxDistance int) float64 {
	maxLen := len(query)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein(query, candidate, maxDistance)
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		sim = 0
	}
	return sim
}

// FuzzyScore computes the weighted fuzzy match score for a candidate record
// against a query (spec §4.1.1). Weights are {name:40, category:20,
// package:15, pattern:25}.
func FuzzyScore(query string, categoryQuery string, r *Record) float64 {
	const (
		wName     = 40.0
		wCategory = 20.0
		wPackage  = 15.0
		wPattern  = 25.0
		maxDist   = 5
	)

	nameSim := nameSimilarity(query, shortName(r.Type), maxDist)
	score := wName * nameSim

	if categoryQuery != "" && strings.EqualFold(categoryQuery, r.Category) {
		score += wCategory
	}
	if strings.Contains(strings.ToLower(r.Type), strings.ToLower(query)) {
		score += wPackage
	}

	// Pattern bonus: short queries get a substring-prefix bonus to avoid
	// pathological fuzzy matches on common trigrams (spec §4.1.1).
	lq := strings.ToLower(query)
	if len(lq) <= 5 {
		if strings.HasPrefix(strings.ToLower(shortName(r.Type)), lq) ||
			strings.HasPrefix(strings.ToLower(r.DisplayName), lq) {
			score += wPattern
		}
	} else if strings.Contains(strings.ToLower(r.DisplayName), lq) {
		score += wPattern
	}

	return score
}

func shortName(fullType string) string {
	if idx := strings.LastIndex(fullType, "."); idx >= 0 {
		return fullType[idx+1:]
	}
	return fullType
}

// FuzzyMatch ranks candidates by FuzzyScore, keeps only those scoring >= 50
// (spec §4.1.1 "Candidates with score >= 50 are returned"), and returns at
// most limit results sorted descending by score.
func FuzzyMatch(query, categoryQuery string, candidates []*Record, limit int) []ScoredRecord {
	var out []ScoredRecord
	for _, r := range candidates {
		s := FuzzyScore(query, categoryQuery, r)
		if s >= 50 {
			out = append(out, ScoredRecord{
				Record:         r,
				Score:          s,
				NameSimilarity: nameSimilarity(shortName(query), shortName(r.Type), 5),
			})
		}
	}
	sortScoredDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ScoredRecord pairs a catalog Record with its match score. NameSimilarity
// is the unweighted 0-1 name-only closeness, independent of the category
// bonus FuzzyScore folds into Score — it's what callers of
// SuggestSimilarType gate on,
// since a typo-correction candidate has no category to compare against.
type ScoredRecord struct {
	Record         *Record
	Score          float64
	NameSimilarity float64
}

func sortScoredDesc(s []ScoredRecord) {
	// Simple insertion sort: candidate lists are small (catalog search
	// limits are in the tens), and stability on ties (lexicographic type,
	// per spec §4.1) matters more than asymptotic speed here.
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && less(s[j], s[j-1]) {
			s[j], s[j-1] = s[j-1], s[j]
			j--
		}
	}
}

func less(a, b ScoredRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Record.Type < b.Record.Type
}

// BestNameMatch ranks candidates purely by short-name closeness to query,
// bypassing FuzzyMatch's >=50 composite-score floor: a single-character typo
// in an otherwise-correct type name can legitimately score low on the
// composite formula (which rewards category/package/pattern bonuses a typo
// fix has no use for) while still being the obviously-right suggestion.
// Used by SuggestSimilarType, where the candidate pool is the full node
// catalog and the only signal available is "how close is this spelling".
func BestNameMatch(query string, candidates []*Record) (ScoredRecord, bool) {
	var best ScoredRecord
	found := false
	for _, r := range candidates {
		sim := nameSimilarity(query, shortName(r.Type), 5)
		if !found || sim > best.NameSimilarity {
			best = ScoredRecord{Record: r, Score: sim * 100, NameSimilarity: sim}
			found = true
		}
	}
	return best, found
}

// AutoFixThreshold is the normalized score (0-1) a similarity suggestion
// must meet to be auto-applied (spec §4.1.1 "Auto-fix suggestions require
// score >= 0.9 normalized").
const AutoFixThreshold = 0.9

// Normalized returns the score on a 0-1 scale (raw score is out of the sum
// of weights, 100).
func (s ScoredRecord) Normalized() float64 { return s.Score / 100.0 }
