package catalog

import "testing"

func recs() []*Record {
	return []*Record{
		{Type: "n8n-nodes-base.httpRequest", DisplayName: "HTTP Request", Category: "Core", Versions: []float64{1, 2, 3}},
		{Type: "n8n-nodes-base.webhook", DisplayName: "Webhook", Category: "Trigger", IsTrigger: true, IsWebhook: true, Versions: []float64{1, 2}},
		{Type: "n8n-nodes-base.httpRequestTrigger", DisplayName: "HTTP Request Trigger", Category: "Trigger", IsTrigger: true, Versions: []float64{1}},
	}
}

func TestNormalizeFullType(t *testing.T) {
	byType := map[string]*Record{}
	for _, r := range recs() {
		byType[r.Type] = r
	}
	exists := func(t string) bool { _, ok := byType[t]; return ok }
	res := normalizeType("n8n-nodes-base.httpRequest", exists, nil, false)
	if !res.ok || res.fullType != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %+v", res)
	}
}

func TestNormalizeDBForm(t *testing.T) {
	byType := map[string]*Record{"n8n-nodes-base.httpRequest": {}}
	exists := func(t string) bool { _, ok := byType[t]; return ok }
	res := normalizeType("nodes-base.httpRequest", exists, nil, false)
	if !res.ok || res.fullType != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %+v", res)
	}
}

func TestNormalizeShortNamePrefersNonTrigger(t *testing.T) {
	exists := func(string) bool { return false }
	byShort := func(short string) []string {
		if short == "httprequest" {
			return []string{"n8n-nodes-base.httpRequest", "n8n-nodes-base.httpRequestTrigger"}
		}
		return nil
	}
	res := normalizeType("httpRequest", exists, byShort, false)
	if !res.ok || res.fullType != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %+v, want non-trigger variant", res)
	}

	resTrigger := normalizeType("httpRequest", exists, byShort, true)
	if !resTrigger.ok || resTrigger.fullType != "n8n-nodes-base.httpRequestTrigger" {
		t.Fatalf("got %+v, want trigger variant", resTrigger)
	}
}

func TestNormalizeFailure(t *testing.T) {
	exists := func(string) bool { return false }
	byShort := func(string) []string { return nil }
	res := normalizeType("totallyUnknown", exists, byShort, false)
	if res.ok {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestBuildFTSQuerySanitizesMetaChars(t *testing.T) {
	q := BuildFTSQuery(`http-request OR *`, ModeOR)
	// The raw '-', 'OR', '*' tokens must not survive verbatim as FTS syntax
	// beyond the deliberate " OR " joiner this function itself inserts.
	if q == "" {
		t.Fatal("expected non-empty query")
	}
	for _, bad := range []string{"-", "*", "(", ")", "[", "]", "{", "}", "^", "~"} {
		if containsRune(q, bad) && bad != "" {
			// Only the literal token characters must be stripped; quotes and
			// the word OR are expected output syntax, not meta-characters.
			t.Fatalf("query %q still contains meta char %q", q, bad)
		}
	}
}

func containsRune(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestFuzzyMatchRanksAndThresholds(t *testing.T) {
	candidates := recs()
	// A one-letter typo alone scores 40*(6/7) ≈ 34 on the name weight; the
	// category bonus (+20) lifts webhook over the 50 floor, while the
	// same-category httpRequestTrigger stays below it.
	results := FuzzyMatch("webhok", "Trigger", candidates, 5)
	if len(results) == 0 {
		t.Fatal("expected at least one fuzzy match for near-typo query")
	}
	if results[0].Record.Type != "n8n-nodes-base.webhook" {
		t.Fatalf("top match = %s, want webhook", results[0].Record.Type)
	}
}

func TestFuzzyMatchNoMatchBelowThreshold(t *testing.T) {
	candidates := recs()
	results := FuzzyMatch("zzzzzzzzzzzzzzzzzzzz", "", candidates, 5)
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %v", results)
	}
}

func TestLevenshteinBounded(t *testing.T) {
	if d := levenshtein("abcdefgh", "zyxwvuts", 5); d != 6 {
		t.Fatalf("expected bounded distance 6 (maxDistance+1), got %d", d)
	}
}

func TestBestNameMatchFindsSingleCharTypo(t *testing.T) {
	best, ok := BestNameMatch("httpRequst", recs())
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Record.Type != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %s", best.Record.Type)
	}
	if best.NameSimilarity < AutoFixThreshold {
		t.Fatalf("similarity %.3f below AutoFixThreshold for a 1-char typo", best.NameSimilarity)
	}
}

func TestSuggestSimilarTypeStripsPackagePrefix(t *testing.T) {
	store := NewForTesting(recs())
	best, ok := store.SuggestSimilarType("n8n-nodes-base.httpRequst")
	if !ok || best.Record.Type != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %+v, ok=%v", best, ok)
	}
}

func TestRankSubstringMatchesPrecedence(t *testing.T) {
	candidates := []*Record{
		{Type: "n8n-nodes-base.slack", DisplayName: "Slack", Description: "send a webhook message"},
		{Type: "n8n-nodes-base.webhook", DisplayName: "Webhook", Description: "http trigger"},
	}
	results := RankSubstringMatches("webhook", candidates, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.Type != "n8n-nodes-base.webhook" {
		t.Fatalf("expected name match to outrank description match, got %s first", results[0].Record.Type)
	}
}
