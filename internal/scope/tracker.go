// Package scope tracks the enclosing aggregate, the current visibility
// section and the brace depth while a tree is parsed or lowered.
package scope

// Visibility is an access section inside an aggregate body
type Visibility int

const (
	Unset Visibility = iota
	Public
	Private
	Protected
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	case Protected:
		return "protected"
	default:
		return ""
	}
}

// frame is one aggregate body being visited
type frame struct {
	name    string
	depth   int // brace depth at which the body was opened
	section Visibility
}

// Tracker is threaded through a traversal by pointer. The zero value is
// ready to use.
type Tracker struct {
	frames []frame
	depth  int
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Enter pushes an aggregate frame at the current depth and opens its body.
func (t *Tracker) Enter(name string, section Visibility) {
	t.frames = append(t.frames, frame{name: name, depth: t.depth, section: section})
	t.depth++
}

// Leave closes the innermost aggregate body and pops its frame. Any blocks
// still open inside the aggregate are closed with it.
func (t *Tracker) Leave() {
	if len(t.frames) == 0 {
		return
	}
	top := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	t.depth = top.depth
}

// Current returns the innermost aggregate name, or "" outside any aggregate.
func (t *Tracker) Current() string {
	if len(t.frames) == 0 {
		return ""
	}
	return t.frames[len(t.frames)-1].name
}

// InAggregate reports whether an aggregate frame is open.
func (t *Tracker) InAggregate() bool { return len(t.frames) > 0 }

// Section returns the visibility section of the innermost aggregate.
func (t *Tracker) Section() Visibility {
	if len(t.frames) == 0 {
		return Unset
	}
	return t.frames[len(t.frames)-1].section
}

// SwitchSection moves the innermost aggregate to section v and reports
// whether that changed the current section, i.e. whether an access label is
// needed before the next member.
func (t *Tracker) SwitchSection(v Visibility) bool {
	if len(t.frames) == 0 {
		return false
	}
	top := &t.frames[len(t.frames)-1]
	if top.section == v {
		return false
	}
	top.section = v
	return true
}

// Open records n opening braces.
func (t *Tracker) Open(n int) { t.depth += n }

// Close records n closing braces and pops every aggregate frame whose body
// the braces closed. Depth never goes below zero.
func (t *Tracker) Close(n int) {
	t.depth -= n
	if t.depth < 0 {
		t.depth = 0
	}
	for len(t.frames) > 0 && t.frames[len(t.frames)-1].depth >= t.depth {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// Depth returns the current brace depth.
func (t *Tracker) Depth() int { return t.depth }

// AtTopLevel reports whether no brace is open.
func (t *Tracker) AtTopLevel() bool { return t.depth == 0 }

// Reset clears all state between independent top-level items.
func (t *Tracker) Reset() {
	t.frames = t.frames[:0]
	t.depth = 0
}

// ResolveSelf replaces the `Self` type name with the current aggregate.
func (t *Tracker) ResolveSelf(name string) string {
	if name == "Self" && t.Current() != "" {
		return t.Current()
	}
	return name
}
