package scope

import "testing"

func TestEnterLeave(t *testing.T) {
	tr := New()
	if tr.Current() != "" {
		t.Fatalf("Expected empty current aggregate, got %q", tr.Current())
	}

	tr.Enter("Point", Public)
	if tr.Current() != "Point" {
		t.Errorf("Expected Point, got %q", tr.Current())
	}
	if tr.Depth() != 1 {
		t.Errorf("Expected depth 1, got %d", tr.Depth())
	}

	tr.Enter("Inner", Private)
	if tr.Current() != "Inner" {
		t.Errorf("Expected Inner, got %q", tr.Current())
	}
	tr.Leave()
	if tr.Current() != "Point" {
		t.Errorf("Expected Point after leaving Inner, got %q", tr.Current())
	}
	tr.Leave()
	if tr.InAggregate() || !tr.AtTopLevel() {
		t.Errorf("Expected top level after leaving all frames, depth=%d", tr.Depth())
	}
}

func TestCloseBracePopsFrame(t *testing.T) {
	tr := New()
	tr.Enter("Stack", Public)
	tr.Open(2) // nested method body and an if block
	tr.Close(1)
	if tr.Current() != "Stack" {
		t.Fatalf("Expected frame to survive inner close, got %q", tr.Current())
	}
	tr.Close(1)
	if tr.Current() != "Stack" {
		t.Fatalf("Expected frame to survive method close, got %q", tr.Current())
	}
	tr.Close(1)
	if tr.InAggregate() {
		t.Errorf("Expected matching top-level brace to pop frame")
	}
	tr.Close(5)
	if tr.Depth() != 0 {
		t.Errorf("Expected depth clamped at 0, got %d", tr.Depth())
	}
}

func TestSwitchSection(t *testing.T) {
	tr := New()
	if tr.SwitchSection(Public) {
		t.Errorf("Expected no label outside an aggregate")
	}

	tr.Enter("Widget", Private)
	tests := []struct {
		section Visibility
		changed bool
	}{
		{Private, false},
		{Public, true},
		{Public, false},
		{Public, false},
		{Private, true},
	}
	for i, tt := range tests {
		if got := tr.SwitchSection(tt.section); got != tt.changed {
			t.Errorf("step %d: SwitchSection(%s) = %v, want %v", i, tt.section, got, tt.changed)
		}
	}
	if tr.Section() != Private {
		t.Errorf("Expected private section, got %s", tr.Section())
	}
}

func TestResolveSelfAndReset(t *testing.T) {
	tr := New()
	if got := tr.ResolveSelf("Self"); got != "Self" {
		t.Errorf("Expected Self unchanged outside aggregate, got %q", got)
	}
	tr.Enter("Counter", Public)
	if got := tr.ResolveSelf("Self"); got != "Counter" {
		t.Errorf("Expected Counter, got %q", got)
	}
	if got := tr.ResolveSelf("Other"); got != "Other" {
		t.Errorf("Expected Other unchanged, got %q", got)
	}
	tr.Open(3)
	tr.Reset()
	if tr.InAggregate() || tr.Depth() != 0 {
		t.Errorf("Expected clean tracker after Reset")
	}
}
