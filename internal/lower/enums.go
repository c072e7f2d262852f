package lower

import (
	"fmt"

	"github.com/lhaig/nu/internal/ast"
)

// FieldPlan is one field of a per-variant product type
type FieldPlan struct {
	Name string
	Type ast.Type
}

// VariantPlan is the product type synthesized for one enum variant. Unit
// variants get an empty field list so every variant is discriminable the
// same way.
type VariantPlan struct {
	Name         string
	Kind         ast.VariantKind
	Fields       []FieldPlan
	Discriminant string
}

// EnumPlan describes how an enum is represented in a target
type EnumPlan struct {
	Name     string
	Generics []*ast.GenericParam
	// Native is set when no variant carries a payload, so the target's
	// plain enumeration type can represent it.
	Native   bool
	Variants []VariantPlan
}

// PlanEnum builds the per-variant product types of e. Tuple fields are
// named positionally as _0, _1, ...; record fields keep their names.
func PlanEnum(e *ast.EnumDef) *EnumPlan {
	plan := &EnumPlan{Name: e.Name, Generics: e.Generics, Native: e.IsUnitOnly()}
	for _, v := range e.Variants {
		vp := VariantPlan{Name: v.Name, Kind: v.Kind, Discriminant: v.Discriminant}
		switch v.Kind {
		case ast.TupleVariant:
			for i, t := range v.Types {
				vp.Fields = append(vp.Fields, FieldPlan{Name: PositionalField(i), Type: t})
			}
		case ast.RecordVariant:
			for _, f := range v.Fields {
				vp.Fields = append(vp.Fields, FieldPlan{Name: f.Name, Type: f.Type})
			}
		}
		plan.Variants = append(plan.Variants, vp)
	}
	return plan
}

// PositionalField names the i-th unnamed payload field.
func PositionalField(i int) string {
	return fmt.Sprintf("_%d", i)
}

// Variant returns the plan of the named variant.
func (p *EnumPlan) Variant(name string) (VariantPlan, bool) {
	for _, v := range p.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantPlan{}, false
}

// EnumIndex resolves variant names to their declaring enums across a file.
type EnumIndex struct {
	enums    map[string]*ast.EnumDef
	variants map[string]string
}

// NewEnumIndex indexes every enum declared in items, including those in
// inline modules and function bodies.
func NewEnumIndex(items []ast.Item) *EnumIndex {
	x := &EnumIndex{enums: make(map[string]*ast.EnumDef), variants: make(map[string]string)}
	x.addItems(items)
	return x
}

func (x *EnumIndex) addItems(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.EnumDef:
			x.Add(it)
		case *ast.ModDecl:
			x.addItems(it.Items)
		case *ast.FunctionDef:
			x.addBlock(it.Body)
		case *ast.ImplDef:
			for _, m := range it.Methods {
				x.addBlock(m.Body)
			}
		}
	}
}

func (x *EnumIndex) addBlock(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		if is, ok := s.(*ast.ItemStmt); ok {
			x.addItems([]ast.Item{is.Item})
		}
	}
}

// Add registers e. The first enum declaring a variant name owns it for
// unqualified lookups.
func (x *EnumIndex) Add(e *ast.EnumDef) {
	x.enums[e.Name] = e
	for _, v := range e.Variants {
		if _, taken := x.variants[v.Name]; !taken {
			x.variants[v.Name] = e.Name
		}
	}
}

// Lookup returns the enum called name.
func (x *EnumIndex) Lookup(name string) (*ast.EnumDef, bool) {
	e, ok := x.enums[name]
	return e, ok
}

// Resolve returns the enum that declares variant. A non-empty enum name is
// trusted as written; otherwise the index is consulted.
func (x *EnumIndex) Resolve(enum, variant string) string {
	if enum != "" {
		return enum
	}
	return x.variants[variant]
}

// IsNative reports whether the named enum has only unit variants.
func (x *EnumIndex) IsNative(enum string) bool {
	e, ok := x.enums[enum]
	return ok && e.IsUnitOnly()
}

// Variant returns the declaration of enum::variant when known.
func (x *EnumIndex) Variant(enum, variant string) (*ast.EnumVariant, bool) {
	e, ok := x.enums[enum]
	if !ok {
		return nil, false
	}
	for _, v := range e.Variants {
		if v.Name == variant {
			return v, true
		}
	}
	return nil, false
}
