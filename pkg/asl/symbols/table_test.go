package symbols

import (
	"testing"

	"aslc/pkg/asl/types"
)

func TestScopeStack(t *testing.T) {
	tb := NewTable()
	global := tb.PushNewScope("$global$")

	tb.AddFunction("main", types.ID(0))
	if !tb.FindInCurrentScope("main") {
		t.Errorf("main not found in current scope after AddFunction")
	}

	tb.PushNewScope("main")
	tb.AddParameter("x", types.ID(1))
	tb.AddLocalVar("y", types.ID(2))

	if tb.FindInStack("main") != 1 {
		t.Errorf("FindInStack(main) from inside main's scope should be 1 (enclosing), got %d", tb.FindInStack("main"))
	}
	if tb.FindInStack("x") != 0 {
		t.Errorf("FindInStack(x) should be 0 (current scope), got %d", tb.FindInStack("x"))
	}
	if !tb.IsParameterClass("x") {
		t.Errorf("x should be classified as a parameter")
	}
	if !tb.IsLocalVarClass("y") {
		t.Errorf("y should be classified as a local var")
	}
	if !tb.IsFunctionClass("main") {
		t.Errorf("main should be classified as a function")
	}

	tb.PopScope()
	if tb.CurrentScopeID() != global {
		t.Errorf("after popping main, current scope should be global")
	}
	if tb.FindInStack("x") != -1 {
		t.Errorf("x should no longer be visible after popping main's scope")
	}
}

func TestPushThisScopeReentry(t *testing.T) {
	tb := NewTable()
	tb.PushNewScope("$global$")
	fn := tb.PushNewScope("f")
	tb.AddLocalVar("z", types.ID(3))
	tb.PopScope()
	tb.PopScope()

	tb.PushThisScope(fn)
	if !tb.FindInCurrentScope("z") {
		t.Errorf("re-entering scope %v should still see z", fn)
	}
}

func TestNoMainProperlyDeclared(t *testing.T) {
	reg := types.NewRegistry()

	t.Run("NoMainAtAll", func(t *testing.T) {
		tb := NewTable()
		g := tb.PushNewScope("$global$")
		if !tb.NoMainProperlyDeclared(g, reg) {
			t.Errorf("expected true when main is not declared at all")
		}
	})

	t.Run("MainWithWrongShape", func(t *testing.T) {
		tb := NewTable()
		g := tb.PushNewScope("$global$")
		badMain := reg.CreateFunctionTy([]types.ID{reg.CreateIntegerTy()}, reg.CreateVoidTy())
		tb.AddFunction("main", badMain)
		if !tb.NoMainProperlyDeclared(g, reg) {
			t.Errorf("expected true when main takes parameters")
		}
	})

	t.Run("MainProperlyDeclared", func(t *testing.T) {
		tb := NewTable()
		g := tb.PushNewScope("$global$")
		goodMain := reg.CreateFunctionTy(nil, reg.CreateVoidTy())
		tb.AddFunction("main", goodMain)
		if tb.NoMainProperlyDeclared(g, reg) {
			t.Errorf("expected false for a no-arg, void-returning main")
		}
	})
}

func TestScopeEntriesOrder(t *testing.T) {
	tb := NewTable()
	tb.PushNewScope("$global$")
	fn := tb.PushNewScope("f")
	tb.AddParameter("a", types.ID(0))
	tb.AddParameter("b", types.ID(0))
	tb.AddLocalVar("c", types.ID(0))

	entries := tb.ScopeEntries(fn)
	if len(entries) != 3 {
		t.Fatalf("ScopeEntries returned %d entries, want 3", len(entries))
	}
	names := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ScopeEntries()[%d].Name = %q, want %q", i, names[i], want[i])
		}
	}
}
