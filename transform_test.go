package cloak

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"testing"
	"time"
)

// markLeaf tags each selected value with its canonical JSON form so tests
// can see exactly what the traversal handed to the leaf operation.
func markLeaf(v any) (any, error) {
	text, err := serializeValue(v)
	if err != nil {
		return nil, err
	}
	return "leaf:" + text, nil
}

func TestTransformSelectionScoping(t *testing.T) {
	input := map[string]any{
		"name":  "John Doe",
		"email": "john@example.com",
	}

	out, err := transformObject(input, NewPathSet("email"), markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	if out["name"] != "John Doe" {
		t.Errorf("unselected field changed: %v", out["name"])
	}
	if out["email"] != `leaf:"john@example.com"` {
		t.Errorf("selected field = %v", out["email"])
	}
}

func TestTransformNestedNarrowing(t *testing.T) {
	input := map[string]any{
		"id": "u-1",
		"profile": map[string]any{
			"email": "john@example.com",
			"name":  "John",
		},
	}

	out, err := transformObject(input, NewPathSet("profile.email"), markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	if out["id"] != "u-1" {
		t.Errorf("unselected top-level field changed: %v", out["id"])
	}

	profile, ok := out["profile"].(map[string]any)
	if !ok {
		t.Fatalf("profile = %T, want object", out["profile"])
	}
	if profile["email"] != `leaf:"john@example.com"` {
		t.Errorf("nested selected field = %v", profile["email"])
	}
	if profile["name"] != "John" {
		t.Errorf("nested unselected field changed: %v", profile["name"])
	}
}

func TestTransformSelectedSubtreeIsAtomic(t *testing.T) {
	input := map[string]any{
		"profile": map[string]any{
			"email": "john@example.com",
		},
	}

	// Selecting both the subtree and a descendant transforms the subtree
	// whole; the descendant path never gets its own visit.
	out, err := transformObject(input, NewPathSet("profile", "profile.email"), markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	want := `leaf:{"email":"john@example.com"}`
	if out["profile"] != want {
		t.Errorf("profile = %v, want %v", out["profile"], want)
	}
}

func TestTransformArrayAtomicity(t *testing.T) {
	input := map[string]any{
		"tags":  []any{"a", "b", "c"},
		"other": []any{1.0, 2.0},
	}

	out, err := transformObject(input, NewPathSet("tags", "other.0", "other.1"), markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	if out["tags"] != `leaf:["a","b","c"]` {
		t.Errorf("selected array = %v", out["tags"])
	}

	// Index paths never select elements; the unselected array passes
	// through verbatim.
	if !reflect.DeepEqual(out["other"], []any{1.0, 2.0}) {
		t.Errorf("array with index paths = %v, want verbatim", out["other"])
	}
}

func TestTransformDefaultSelection(t *testing.T) {
	input := map[string]any{
		"name":    "John",
		"profile": map[string]any{"email": "john@example.com"},
	}

	out, err := transformObject(input, nil, markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	if out["name"] != `leaf:"John"` {
		t.Errorf("name = %v", out["name"])
	}
	// The whole top-level field is transformed as a unit.
	if out["profile"] != `leaf:{"email":"john@example.com"}` {
		t.Errorf("profile = %v", out["profile"])
	}
}

func TestTransformScalarKinds(t *testing.T) {
	input := map[string]any{
		"null":   nil,
		"bool":   true,
		"int":    42,
		"float":  3.5,
		"string": "text",
	}

	out, err := transformObject(input, nil, markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	want := map[string]any{
		"null":   "leaf:null",
		"bool":   "leaf:true",
		"int":    "leaf:42",
		"float":  "leaf:3.5",
		"string": `leaf:"text"`,
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestTransformUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		path  string
	}{
		{
			"time value",
			map[string]any{"created": time.Now()},
			"created",
		},
		{
			"regexp value",
			map[string]any{"pattern": regexp.MustCompile("a+")},
			"pattern",
		},
		{
			"func value",
			map[string]any{"callback": func() {}},
			"callback",
		},
		{
			"nested in unselected object",
			map[string]any{"meta": map[string]any{"stamp": time.Now()}},
			"meta.stamp",
		},
		{
			"inside selected subtree",
			map[string]any{"doc": map[string]any{"when": time.Now()}},
			"doc.when",
		},
		{
			"inside selected array",
			map[string]any{"items": []any{"ok", time.Now()}},
			"items.1",
		},
		{
			"struct value",
			map[string]any{"entry": struct{ A int }{1}},
			"entry",
		},
		{
			"int-keyed map",
			map[string]any{"byID": map[int]string{1: "a"}},
			"byID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := transformObject(tt.input, nil, markLeaf)
			if err == nil {
				t.Fatal("expected UnsupportedType error")
			}
			if out != nil {
				t.Error("partial result returned after failure")
			}
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("error = %v, want ErrUnsupportedType", err)
			}

			var te *TransformError
			if !errors.As(err, &te) {
				t.Fatalf("error = %T, want *TransformError", err)
			}
			if te.Path != tt.path {
				t.Errorf("path = %q, want %q", te.Path, tt.path)
			}
		})
	}
}

func TestTransformLeafErrorCarriesPath(t *testing.T) {
	failing := func(any) (any, error) {
		return nil, fmt.Errorf("%w: boom", ErrEncryptionFailed)
	}

	input := map[string]any{"outer": map[string]any{"inner": "v"}}

	out, err := transformObject(input, NewPathSet("outer.inner"), failing)
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Error("partial result returned after failure")
	}
	if !errors.Is(err, ErrEncryptionFailed) {
		t.Errorf("error = %v, want ErrEncryptionFailed", err)
	}

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("error = %T, want *TransformError", err)
	}
	if te.Path != "outer.inner" {
		t.Errorf("path = %q, want %q", te.Path, "outer.inner")
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	input := map[string]any{
		"name": "John",
		"profile": map[string]any{
			"email": "john@example.com",
			"tags":  []any{"a", "b"},
		},
	}
	snapshot := map[string]any{
		"name": "John",
		"profile": map[string]any{
			"email": "john@example.com",
			"tags":  []any{"a", "b"},
		},
	}

	if _, err := transformObject(input, NewPathSet("name", "profile.email"), markLeaf); err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	if !reflect.DeepEqual(input, snapshot) {
		t.Errorf("input mutated: %v", input)
	}
}

func TestTransformStringKeyedMapNormalization(t *testing.T) {
	input := map[string]any{
		"attrs": map[string]string{"k": "v"},
	}

	out, err := transformObject(input, NewPathSet("attrs.k"), markLeaf)
	if err != nil {
		t.Fatalf("transformObject: %v", err)
	}

	attrs, ok := out["attrs"].(map[string]any)
	if !ok {
		t.Fatalf("attrs = %T, want map[string]any", out["attrs"])
	}
	if attrs["k"] != `leaf:"v"` {
		t.Errorf("attrs.k = %v", attrs["k"])
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want valueKind
	}{
		{"nil", nil, kindScalar},
		{"bool", false, kindScalar},
		{"int", 1, kindScalar},
		{"float", 1.5, kindScalar},
		{"string", "s", kindScalar},
		{"nil pointer", (*string)(nil), kindScalar},
		{"object", map[string]any{}, kindObject},
		{"string map", map[string]int{}, kindObject},
		{"array", []any{}, kindArray},
		{"typed slice", []string{}, kindArray},
		{"time", time.Time{}, kindUnsupported},
		{"func", func() {}, kindUnsupported},
		{"chan", make(chan int), kindUnsupported},
		{"int map", map[int]any{}, kindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindOf(tt.v); got != tt.want {
				t.Errorf("kindOf(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
