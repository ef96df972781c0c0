package value

import "testing"

func TestOfCoversSupportedShapes(t *testing.T) {
	t.Parallel()

	if v, ok := Of("hello"); !ok || v != Text("hello") {
		t.Fatalf("expected Text, got %v (ok=%v)", v, ok)
	}
	if v, ok := Of(3); !ok || v != Number(3) {
		t.Fatalf("expected Number, got %v (ok=%v)", v, ok)
	}
	if v, ok := Of(true); !ok || v != Bool(true) {
		t.Fatalf("expected Bool, got %v (ok=%v)", v, ok)
	}
	if v, ok := Of(nil); !ok || v != nil {
		t.Fatalf("expected nil value, got %v (ok=%v)", v, ok)
	}
	if _, ok := Of(struct{}{}); ok {
		t.Fatalf("expected unsupported shape to report false")
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, true},
		{"blank text", Text("   "), true},
		{"text", Text("x"), false},
		{"false boolean", Bool(false), false},
		{"true boolean", Bool(true), false},
		{"zero number", Number(0), false},
	}
	for _, tc := range cases {
		if got := IsEmpty(tc.v); got != tc.want {
			t.Fatalf("%s: IsEmpty = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCoercions(t *testing.T) {
	t.Parallel()

	if got := AsString(Number(5)); got != "5" {
		t.Fatalf("AsString(Number(5)) = %q", got)
	}
	if got := AsString(Bool(true)); got != "true" {
		t.Fatalf("AsString(Bool(true)) = %q", got)
	}

	if n, ok := AsNumber(Text(" 4.5 ")); !ok || n != 4.5 {
		t.Fatalf("AsNumber text = %v (ok=%v)", n, ok)
	}
	if _, ok := AsNumber(Text("not a number")); ok {
		t.Fatalf("expected coercion failure for non-numeric text")
	}
	if _, ok := AsNumber(Bool(true)); ok {
		t.Fatalf("expected coercion failure for bool")
	}

	if !AsBool(Text("true")) || AsBool(Text("false")) || !AsBool(Text("yes?")) {
		t.Fatalf("AsBool text coercion mismatch")
	}
}

func TestPlainAndClone(t *testing.T) {
	t.Parallel()

	m := Map{"a": Text("x"), "b": Number(2), "c": Bool(true)}
	plain := Plain(m)
	if plain["a"] != "x" || plain["b"] != 2.0 || plain["c"] != true {
		t.Fatalf("unexpected plain map: %#v", plain)
	}

	clone := m.Clone()
	clone["a"] = Text("mutated")
	if m["a"] != Text("x") {
		t.Fatalf("clone aliases the source map")
	}
}
