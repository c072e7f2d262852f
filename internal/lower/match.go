// Package lower holds the target-neutral plans that backends follow when
// they lower match expressions and algebraic enums.
package lower

import (
	"fmt"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/scope"
)

// Want is the result a lowered construct must deliver to its context
type Want int

const (
	// Void executes the construct for its effects only.
	Void Want = iota
	// Value assigns the construct's result to a destination.
	Value
	// Return returns the construct's result from the enclosing function.
	Return
)

func (w Want) String() string {
	switch w {
	case Value:
		return "value"
	case Return:
		return "return"
	default:
		return "void"
	}
}

// CondKind is the shape of the test an arm performs on the scrutinee
type CondKind int

const (
	CondTrue CondKind = iota
	CondOk
	CondErr
	CondSome
	CondNone
	CondVariant
	CondLiteral
	CondRaw
)

// Condition is a compiled pattern test
type Condition struct {
	Kind     CondKind
	Enum     string // declaring enum of a variant, "" when unknown
	Variant  string
	Native   bool // the enum is a plain enumeration, compared by value
	Literals []*ast.Literal
	Raw      string
}

// Binding extracts one payload value into a name
type Binding struct {
	Name  string
	Field string // payload field: "_0".. for tuple variants, declared name for records
	Whole bool   // binds the scrutinee itself
}

// ArmPlan is one compiled arm, tested in source order
type ArmPlan struct {
	Cond     Condition
	Bindings []Binding
	Guard    ast.Expr
	Body     ast.Expr
}

// MatchPlan is the lowering recipe for a MatchExpr: bind the scrutinee to
// Temp once, then test Arms top to bottom and take the first that holds.
type MatchPlan struct {
	Temp      string
	Scrutinee ast.Expr
	Arms      []ArmPlan
	Want      Want
	// UseSwitch is set when every arm is a flat comparison with no
	// extraction, so a native switch may replace the if/else-if chain.
	UseSwitch bool
}

// Planner compiles match expressions for one source unit. Temporaries are
// numbered per planner.
type Planner struct {
	enums   *EnumIndex
	tracker *scope.Tracker
	next    int
}

// NewPlanner returns a planner resolving variants through enums and `Self`
// through tracker. Either may be nil.
func NewPlanner(enums *EnumIndex, tracker *scope.Tracker) *Planner {
	if enums == nil {
		enums = NewEnumIndex(nil)
	}
	if tracker == nil {
		tracker = scope.New()
	}
	return &Planner{enums: enums, tracker: tracker}
}

// Enums returns the planner's enum index.
func (p *Planner) Enums() *EnumIndex { return p.enums }

// Temp returns a fresh hidden temporary name.
func (p *Planner) Temp() string {
	name := fmt.Sprintf("_m%d", p.next)
	p.next++
	return name
}

// Reset restarts temporary numbering.
func (p *Planner) Reset() { p.next = 0 }

// PlanMatch compiles m for the given expected result.
func (p *Planner) PlanMatch(m *ast.MatchExpr, want Want) *MatchPlan {
	plan := &MatchPlan{Temp: p.Temp(), Scrutinee: m.Scrutinee, Want: want}
	for _, arm := range m.Arms {
		cond, bindings := p.compilePattern(arm.Pattern)
		plan.Arms = append(plan.Arms, ArmPlan{Cond: cond, Bindings: bindings, Guard: arm.Guard, Body: arm.Body})
	}
	plan.UseSwitch = switchable(plan.Arms)
	return plan
}

func (p *Planner) compilePattern(pat ast.Pattern) (Condition, []Binding) {
	switch pt := pat.(type) {
	case *ast.WildcardPattern:
		return Condition{Kind: CondTrue}, nil
	case *ast.IdentPattern:
		return Condition{Kind: CondTrue}, []Binding{{Name: pt.Name, Whole: true}}
	case *ast.ResultOkPattern:
		return Condition{Kind: CondOk}, payload(pt.Binding, "")
	case *ast.ResultErrPattern:
		return Condition{Kind: CondErr}, payload(pt.Binding, "")
	case *ast.OptionSomePattern:
		return Condition{Kind: CondSome}, payload(pt.Binding, "")
	case *ast.OptionNonePattern:
		return Condition{Kind: CondNone}, nil
	case *ast.LiteralPattern:
		return Condition{Kind: CondLiteral, Literals: pt.Values}, nil
	case *ast.EnumVariantPattern:
		return p.compileVariant(pt)
	case *ast.RawPattern:
		return Condition{Kind: CondRaw, Raw: pt.Text}, nil
	}
	return Condition{Kind: CondRaw, Raw: pat.String()}, nil
}

func (p *Planner) compileVariant(pt *ast.EnumVariantPattern) (Condition, []Binding) {
	enum := p.tracker.ResolveSelf(pt.Enum())
	enum = p.enums.Resolve(enum, pt.Variant())
	cond := Condition{Kind: CondVariant, Enum: enum, Variant: pt.Variant(), Native: p.enums.IsNative(enum)}

	var bindings []Binding
	for i, name := range pt.Bindings {
		field := PositionalField(i)
		if pt.Record && i < len(pt.Fields) {
			field = pt.Fields[i]
		}
		bindings = append(bindings, payload(name, field)...)
	}
	return cond, bindings
}

// payload binds name to a payload field unless name is the wildcard.
func payload(name, field string) []Binding {
	if name == "" || name == ast.Wildcard {
		return nil
	}
	return []Binding{{Name: name, Field: field}}
}

// switchable reports whether arms can lower to a native switch: flat
// integer, char or plain-enumeration comparisons, at most one trailing
// default, no guards, no bindings and no arm body that breaks out of an
// enclosing loop.
func switchable(arms []ArmPlan) bool {
	cases := 0
	for i, arm := range arms {
		if arm.Guard != nil || len(arm.Bindings) > 0 || BreaksOut(arm.Body) {
			return false
		}
		switch arm.Cond.Kind {
		case CondTrue:
			if i != len(arms)-1 {
				return false
			}
		case CondLiteral:
			for _, lit := range arm.Cond.Literals {
				if lit.Kind != ast.IntLit && lit.Kind != ast.CharLit {
					return false
				}
			}
			cases++
		case CondVariant:
			if !arm.Cond.Native || arm.Cond.Enum == "" {
				return false
			}
			cases++
		default:
			return false
		}
	}
	return cases > 0
}

// HasDefault reports whether the plan's last arm always matches.
func (m *MatchPlan) HasDefault() bool {
	if len(m.Arms) == 0 {
		return false
	}
	last := m.Arms[len(m.Arms)-1]
	return last.Cond.Kind == CondTrue && last.Guard == nil
}

// Shadowed returns the indices of arms that can never be selected because
// an earlier unguarded arm matches every value.
func Shadowed(m *ast.MatchExpr) []int {
	var out []int
	for i, arm := range m.Arms {
		if !ast.IsIrrefutable(arm.Pattern) || arm.Guard != nil {
			continue
		}
		for j := i + 1; j < len(m.Arms); j++ {
			out = append(out, j)
		}
		break
	}
	return out
}
