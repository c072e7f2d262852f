package typemap

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"V", "Vec"},
		{"O", "Option"},
		{"R", "Result"},
		{"HM", "HashMap"},
		{"HS", "HashSet"},
		{"Str", "String"},
		{"X", "Mutex"},
		{"Point", "Point"},
		{"Vec", "Vec"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupCpp(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		known bool
	}{
		{"i32", "int32_t", true},
		{"u64", "uint64_t", true},
		{"usize", "size_t", true},
		{"isize", "ptrdiff_t", true},
		{"f32", "float", true},
		{"f64", "double", true},
		{"char", "char32_t", true},
		{"Str", "std::string", true},
		{"str", "std::string_view", true},
		{"V", "std::vector", true},
		{"O", "std::optional", true},
		{"R", "std::expected", true},
		{"HM", "std::unordered_map", true},
		{"B", "std::unique_ptr", true},
		{"A", "std::shared_ptr", true},
		{"W", "std::weak_ptr", true},
		{"X", "nu::Mutex", true},
		{"Shape", "Shape", false},
	}
	for _, tt := range tests {
		got, known := Lookup(Cpp, tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("Lookup(Cpp, %q) = (%q, %v), want (%q, %v)", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestLookupTypeScript(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"i32", "number"},
		{"f64", "number"},
		{"usize", "number"},
		{"bool", "boolean"},
		{"String", "string"},
		{"()", "void"},
		{"V", "Array"},
		{"HM", "Map"},
		{"HS", "Set"},
		{"Point", "Point"},
	}
	for _, tt := range tests {
		if got, _ := Lookup(TypeScript, tt.in); got != tt.want {
			t.Errorf("Lookup(TypeScript, %q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRustIsIdentityAfterExpansion(t *testing.T) {
	if got, _ := Lookup(Rust, "HM"); got != "HashMap" {
		t.Errorf("Expected HashMap, got %q", got)
	}
	if got, _ := Lookup(Rust, "i32"); got != "i32" {
		t.Errorf("Expected i32, got %q", got)
	}
}

func TestTransparentAndPrimitive(t *testing.T) {
	if !IsTransparent(TypeScript, "B") || !IsTransparent(TypeScript, "Arc") {
		t.Errorf("Expected Box and Arc to be transparent in TypeScript")
	}
	if IsTransparent(Cpp, "Box") {
		t.Errorf("Expected Box to be a real wrapper in C++")
	}
	if !IsPrimitive("u8") || IsPrimitive("String") {
		t.Errorf("Unexpected primitive classification")
	}
}
