package cppast

import (
	"strings"
	"testing"
)

func i32() Type { return &Primitive{Name: "int32_t"} }

func TestTypeStringNestedTemplates(t *testing.T) {
	tests := []struct {
		typ    Type
		expect string
	}{
		{&Template{Base: "std::vector", Args: []Type{i32()}}, "std::vector<int32_t>"},
		{&Template{Base: "std::vector", Args: []Type{&Template{Base: "std::optional", Args: []Type{i32()}}}},
			"std::vector<std::optional<int32_t> >"},
		{&Template{Base: "std::vector", Args: []Type{&Template{Base: "std::vector", Args: []Type{
			&Template{Base: "std::optional", Args: []Type{i32()}}}}}},
			"std::vector<std::vector<std::optional<int32_t> > >"},
		{&Template{Base: "std::unordered_map", Args: []Type{&Named{Name: "std::string"}, &Template{Base: "std::vector", Args: []Type{i32()}}}},
			"std::unordered_map<std::string, std::vector<int32_t> >"},
		{&Reference{Inner: &Named{Name: "Point"}, Const: true}, "const Point&"},
		{&Pointer{Inner: i32()}, "int32_t*"},
		{&Void{}, "void"},
		{&Auto{}, "auto"},
	}

	for _, tt := range tests {
		got := TypeString(tt.typ)
		if got != tt.expect {
			t.Errorf("Expected %q, got %q", tt.expect, got)
		}
		if strings.Contains(got, ">>") {
			t.Errorf("Expected no glued closing brackets in %q", got)
		}
	}
}

func TestExprStringParenthesizesByPrecedence(t *testing.T) {
	a, b, c := &Var{Name: "a"}, &Var{Name: "b"}, &Var{Name: "c"}
	tests := []struct {
		expr   Expr
		expect string
	}{
		{&BinOp{Op: "*", Left: &BinOp{Op: "+", Left: a, Right: b}, Right: c}, "(a + b) * c"},
		{&BinOp{Op: "+", Left: a, Right: &BinOp{Op: "*", Left: b, Right: c}}, "a + b * c"},
		{&BinOp{Op: "-", Left: a, Right: &BinOp{Op: "-", Left: b, Right: c}}, "a - (b - c)"},
		{&BinOp{Op: "=", Left: a, Right: &BinOp{Op: "=", Left: b, Right: c}}, "a = b = c"},
		{&UnaryOp{Op: "!", Operand: &BinOp{Op: "&&", Left: a, Right: b}}, "!(a && b)"},
		{&MethodCall{Object: &BinOp{Op: "+", Left: a, Right: b}, Method: "size"}, "(a + b).size()"},
		{&ArrowAccess{Object: &This{}, Member: "count"}, "this->count"},
		{&Ternary{Cond: a, Then: b, Else: c}, "a ? b : c"},
		{&Cast{Kind: "static_cast", Target: &Primitive{Name: "double"}, Expr: a}, "static_cast<double>(a)"},
		{&BraceInit{Type: &Named{Name: "Point"}, Fields: []FieldInit{{Name: "x", Value: a}, {Name: "y", Value: b}}},
			"Point{.x = a, .y = b}"},
		{&Move{Expr: a}, "std::move(a)"},
	}

	for _, tt := range tests {
		if got := ExprString(tt.expr); got != tt.expect {
			t.Errorf("Expected %q, got %q", tt.expect, got)
		}
	}
}

func TestLambdaCaptures(t *testing.T) {
	single := &Lambda{
		Mode:   CaptureExplicit,
		Params: []*Param{{Name: "x", Type: &Auto{}}},
		Captures: []Capture{
			{Name: "total", ByRef: true},
			{Name: "buf", Moved: true},
		},
		Body: []Stmt{&Return{Value: &BinOp{Op: "+", Left: &Var{Name: "x"}, Right: &Var{Name: "total"}}}},
	}
	expect := "[&total, buf = std::move(buf)](auto x) { return x + total; }"
	if got := ExprString(single); got != expect {
		t.Errorf("Expected %q, got %q", expect, got)
	}

	iife := &Call{Callee: &Lambda{Mode: CaptureRef, Body: []Stmt{
		&VarDecl{Name: "t", Type: &Auto{}, Init: &Var{Name: "x"}, Const: true},
		&Return{Value: &Var{Name: "t"}},
	}}}
	got := ExprString(iife)
	if !strings.HasPrefix(got, "[&]() {\n") || !strings.HasSuffix(got, "}()") {
		t.Errorf("Expected immediately invoked lambda, got:\n%s", got)
	}
	if !strings.Contains(got, "    const auto t = x;\n") {
		t.Errorf("Expected indented lambda body, got:\n%s", got)
	}
}

func TestPrintClassVisibilityGrouping(t *testing.T) {
	cls := &Class{
		Name: "Counter",
		Fields: []*Field{
			{Name: "count", Type: i32(), Visibility: Private},
			{Name: "step", Type: i32(), Visibility: Private},
		},
		Methods: []*Function{
			{Name: "get", Return: i32(), Const: true, Visibility: Public,
				Body: []Stmt{&Return{Value: &ArrowAccess{Object: &This{}, Member: "count"}}}},
			{Name: "reset", Return: &Void{}, Visibility: Public,
				Body: []Stmt{&ExprStmt{Expr: &BinOp{Op: "=", Left: &ArrowAccess{Object: &This{}, Member: "count"}, Right: &Literal{Text: "0"}}}}},
		},
	}
	out := Print(&TranslationUnit{Items: []Item{cls}})

	if strings.Count(out, "public:") != 1 {
		t.Errorf("Expected a single public label, got:\n%s", out)
	}
	if strings.Contains(out, "private:") {
		t.Errorf("Expected class default section to need no private label, got:\n%s", out)
	}
	for _, want := range []string{
		"class Counter {",
		"    int32_t count;",
		"public:",
		"    int32_t get() const {",
		"        return this->count;",
		"        this->count = 0;",
		"};",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintStructDerivesAndTemplate(t *testing.T) {
	cls := &Class{
		Name:     "Pair",
		Struct:   true,
		Template: []string{"T"},
		Fields: []*Field{
			{Name: "first", Type: &Named{Name: "T"}, Visibility: Public},
			{Name: "second", Type: &Named{Name: "T"}, Visibility: Public},
		},
		Derives: []string{"Debug", "Clone", "Copy", "PartialEq", "Default"},
	}
	out := Print(&TranslationUnit{Items: []Item{cls}})

	for _, want := range []string{
		"template<typename T>\nstruct Pair {",
		"bool operator==(const Pair&) const = default;",
		"Pair(const Pair&) = default;",
		"Pair& operator=(const Pair&) = default;",
		"Pair() = default;",
		"// derive(Debug) has no C++ counterpart",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "Pair(const Pair&) = default;") != 1 {
		t.Errorf("Expected Clone and Copy to share one copy constructor, got:\n%s", out)
	}
	if strings.Contains(out, "public:") {
		t.Errorf("Expected no label in a struct, got:\n%s", out)
	}
}

func TestPrintVirtualBase(t *testing.T) {
	trait := &Class{
		Name: "Shape",
		Methods: []*Function{
			{Name: "~Shape", Virtual: true, Defaulted: true, Visibility: Public},
			{Name: "area", Return: &Primitive{Name: "double"}, Const: true, Virtual: true, Abstract: true, Visibility: Public},
		},
	}
	impl := &Class{
		Name:   "Circle",
		Struct: true,
		Bases:  []Base{{Name: "Shape", Visibility: Public}},
		Methods: []*Function{
			{Name: "area", Return: &Primitive{Name: "double"}, Const: true, Override: true, Visibility: Public,
				Body: []Stmt{&Return{Value: &Literal{Text: "1.0"}}}},
		},
	}
	out := Print(&TranslationUnit{Items: []Item{trait, impl}})

	for _, want := range []string{
		"virtual ~Shape() = default;",
		"virtual double area() const = 0;",
		"struct Circle : public Shape {",
		"double area() const override {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintEnumAliasAndVariant(t *testing.T) {
	unit := &TranslationUnit{
		Includes: []*Include{{Path: "variant", System: true}, {Path: "nu_core.hpp"}},
		Items: []Item{
			&Enum{Name: "Color", Class: true, Values: []EnumValue{{Name: "Red", Value: "1"}, {Name: "Green"}}},
			&Class{Name: "Circle", Struct: true, Fields: []*Field{{Name: "_0", Type: &Primitive{Name: "float"}, Visibility: Public}}},
			&Class{Name: "Square", Struct: true, Fields: []*Field{{Name: "_0", Type: &Primitive{Name: "float"}, Visibility: Public}}},
			&TypeAlias{Name: "Shape", Target: &Template{Base: "std::variant", Args: []Type{&Named{Name: "Circle"}, &Named{Name: "Square"}}}},
		},
	}
	out := Print(unit)

	for _, want := range []string{
		"#include <variant>\n#include \"nu_core.hpp\"\n",
		"enum class Color {\n    Red = 1,\n    Green\n};",
		"struct Circle {\n    float _0;\n};",
		"using Shape = std::variant<Circle, Square>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintStatements(t *testing.T) {
	x := &Var{Name: "x"}
	fn := &Function{
		Name:   "classify",
		Return: i32(),
		Params: []*Param{{Name: "x", Type: i32()}},
		Body: []Stmt{
			&If{
				Cond: &BinOp{Op: "<", Left: x, Right: &Literal{Text: "0"}},
				Then: []Stmt{&Return{Value: &Literal{Text: "-1"}}},
				Else: []Stmt{&If{
					Cond: &BinOp{Op: "==", Left: x, Right: &Literal{Text: "0"}},
					Then: []Stmt{&Return{Value: &Literal{Text: "0"}}},
					Else: []Stmt{&Comment{Text: "positive"}},
				}},
			},
			&Switch{
				Expr: x,
				Cases: []Case{
					{Values: []Expr{&Literal{Text: "1"}, &Literal{Text: "2"}}, Body: []Stmt{&Return{Value: &Literal{Text: "10"}}}},
					{Values: []Expr{&Literal{Text: "3"}}, Body: []Stmt{&VarDecl{Name: "y", Type: &Auto{}, Init: x}}},
				},
				HasDefault: true,
			},
			&ForRange{Var: "v", Type: &Reference{Inner: &Auto{}, Const: true}, Range: &Var{Name: "items"}},
			&ForEnumerate{Index: "i", Value: "item", Collection: &Var{Name: "items"}},
			&For{Init: &VarDecl{Name: "i", Type: i32(), Init: &Literal{Text: "0"}},
				Cond: &BinOp{Op: "<", Left: &Var{Name: "i"}, Right: &Literal{Text: "3"}},
				Update: &UnaryOp{Op: "++", Operand: &Var{Name: "i"}, Postfix: true}},
			&RawStmt{Text: "asm volatile(\"nop\");"},
			&Return{Value: &Literal{Text: "1"}},
		},
	}
	out := Print(&TranslationUnit{Items: []Item{fn}})

	for _, want := range []string{
		"int32_t classify(int32_t x) {",
		"    if (x < 0) {\n        return -1;\n    } else if (x == 0) {\n        return 0;\n    } else {\n        // positive\n    }",
		"    switch (x) {\n    case 1:\n    case 2:\n        return 10;\n    case 3:\n        {\n",
		"        break;\n    default:\n        break;\n    }",
		"    for (const auto& v : items) {",
		"    {\n        size_t i = SIZE_MAX;\n        for (const auto& item : items) {\n            ++i;\n        }\n    }",
		"    for (int32_t i = 0; i < 3; i++) {",
		"    asm volatile(\"nop\");",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestStandardIncludesByDialect(t *testing.T) {
	has := func(incs []*Include, name string) bool {
		for _, inc := range incs {
			if inc.Path == name {
				return true
			}
		}
		return false
	}
	if !has(StandardIncludes(true), "expected") || !has(StandardIncludes(true), "print") {
		t.Error("Expected cpp23 includes to carry <expected> and <print>")
	}
	if has(StandardIncludes(false), "expected") || !has(StandardIncludes(false), "iostream") {
		t.Error("Expected cpp20 includes to use <iostream> instead of <expected>")
	}
}
