package jsonpath

import "testing"

func TestParse(t *testing.T) {
	p, err := Parse("conditions.options[0].value")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"conditions", "options", "[0]", "value"}
	if len(p) != len(want) {
		t.Fatalf("got %d segments, want %d: %v", len(p), len(want), p)
	}
	if p[2].IsIndex != true || p[2].Index != 0 {
		t.Fatalf("segment 2 = %+v, want index 0", p[2])
	}
}

func TestSetCreatesIntermediateContainers(t *testing.T) {
	root := map[string]any{}
	path, _ := Parse("conditions.options.caseSensitive")
	if err := Set(root, path, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := Get(root, path)
	if !ok || got != true {
		t.Fatalf("Get after Set = %v, %v", got, ok)
	}
}

func TestSetIntoArray(t *testing.T) {
	root := map[string]any{"rules": []any{map[string]any{}}}
	path, _ := Parse("rules[0].fallbackOutput")
	if err := Set(root, path, "none"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := Get(root, path)
	if !ok || got != "none" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestDelete(t *testing.T) {
	root := map[string]any{"options": map[string]any{}}
	path, _ := Parse("options")
	if !Delete(root, path) {
		t.Fatal("Delete returned false")
	}
	if _, ok := root["options"]; ok {
		t.Fatal("key still present after Delete")
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	root := map[string]any{"a": map[string]any{}}
	path, _ := Parse("a.b.c")
	if _, ok := Get(root, path); ok {
		t.Fatal("expected Get to report missing path")
	}
}
