// Package typemap holds the fixed tables that spell abstract primitive and
// container names in each target language.
package typemap

// Target selects a spelling table
type Target int

const (
	Cpp Target = iota
	TypeScript
	Rust
)

// abbreviations are the surface short forms of standard library names
var abbreviations = map[string]string{
	"V":   "Vec",
	"O":   "Option",
	"R":   "Result",
	"B":   "Box",
	"A":   "Arc",
	"W":   "Weak",
	"X":   "Mutex",
	"HM":  "HashMap",
	"HS":  "HashSet",
	"Str": "String",
}

var primitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true, "bool": true, "char": true,
}

var cppTable = map[string]string{
	"i8":       "int8_t",
	"i16":      "int16_t",
	"i32":      "int32_t",
	"i64":      "int64_t",
	"i128":     "__int128",
	"isize":    "ptrdiff_t",
	"u8":       "uint8_t",
	"u16":      "uint16_t",
	"u32":      "uint32_t",
	"u64":      "uint64_t",
	"u128":     "unsigned __int128",
	"usize":    "size_t",
	"f32":      "float",
	"f64":      "double",
	"bool":     "bool",
	"char":     "char32_t",
	"()":       "void",
	"String":   "std::string",
	"str":      "std::string_view",
	"Vec":      "std::vector",
	"VecDeque": "std::deque",
	"Option":   "std::optional",
	"Result":   "std::expected",
	"HashMap":  "std::unordered_map",
	"HashSet":  "std::unordered_set",
	"BTreeMap": "std::map",
	"BTreeSet": "std::set",
	"Box":      "std::unique_ptr",
	"Rc":       "std::shared_ptr",
	"Arc":      "std::shared_ptr",
	"Weak":     "std::weak_ptr",
	"Mutex":    "nu::Mutex",
	"RefCell":  "nu::RefCell",
}

var tsTable = map[string]string{
	"i8": "number", "i16": "number", "i32": "number", "i64": "number", "i128": "number", "isize": "number",
	"u8": "number", "u16": "number", "u32": "number", "u64": "number", "u128": "number", "usize": "number",
	"f32": "number", "f64": "number",
	"bool":     "boolean",
	"char":     "string",
	"()":       "void",
	"String":   "string",
	"str":      "string",
	"Vec":      "Array",
	"VecDeque": "Array",
	"HashMap":  "Map",
	"BTreeMap": "Map",
	"HashSet":  "Set",
	"BTreeSet": "Set",
	"Result":   "Result",
	"Weak":     "WeakRef",
}

// tsTransparent wrappers have no runtime representation in TypeScript
var tsTransparent = map[string]bool{
	"Box": true, "Rc": true, "Arc": true, "Mutex": true, "RwLock": true, "RefCell": true, "Cell": true,
}

// Canonical expands a surface abbreviation to its full standard name.
// Unknown names are returned unchanged.
func Canonical(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

// Lookup returns the target spelling of name. The second result is false
// for names the table does not know, which are assumed to be user-defined
// and passed through unchanged.
func Lookup(target Target, name string) (string, bool) {
	name = Canonical(name)
	var table map[string]string
	switch target {
	case Cpp:
		table = cppTable
	case TypeScript:
		table = tsTable
	default:
		return name, true
	}
	if spelled, ok := table[name]; ok {
		return spelled, true
	}
	return name, false
}

// IsPrimitive reports whether name is a scalar primitive of the notation.
func IsPrimitive(name string) bool {
	return primitives[name]
}

// IsTransparent reports whether the wrapper name collapses to its single
// type argument in target.
func IsTransparent(target Target, name string) bool {
	return target == TypeScript && tsTransparent[Canonical(name)]
}
