package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"aslc/pkg/asl/config"
	"aslc/pkg/asl/decor"
	"aslc/pkg/asl/diag"
	"aslc/pkg/asl/parser"
	"aslc/pkg/asl/sema"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/types"
)

func compile(t *testing.T, src string, cfg *config.Config) *Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	reg := types.NewRegistry()
	syms := symbols.NewTable()
	dec := decor.New()
	errs := &diag.Sink{}

	sema.NewSymbolPass(reg, syms, dec, errs).Run(prog)
	sema.NewTypeCheckPass(reg, syms, dec, errs).Run(prog)
	require.False(t, errs.HasErrors(), "source must be clean: %v", errs.Items())

	return NewCodePass(reg, syms, dec, cfg).Run(prog)
}

func sub(t *testing.T, p *Program, name string) *Subroutine {
	t.Helper()
	for _, s := range p.Subroutines {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no subroutine named %q in program", name)
	return nil
}

func codeStrings(s *Subroutine) []string {
	out := make([]string, len(s.Code))
	for i, in := range s.Code {
		out[i] = in.String()
	}
	return out
}

func TestArithmeticScenario(t *testing.T) {
	p := compile(t, `
func main()
var a, b, c: int
a = 1
b = 2
c = a + b * 2
endfunc
`, nil)
	m := sub(t, p, "main")

	require.Equal(t, []string{
		"ILOAD %t0, 1",
		"LOAD a, %t0",
		"ILOAD %t1, 2",
		"LOAD b, %t1",
		"ILOAD %t2, 2",
		"MUL %t3, b, %t2",
		"ADD %t4, a, %t3",
		"LOAD c, %t4",
		"RETURN",
	}, codeStrings(m))
}

func TestModuloLowering(t *testing.T) {
	p := compile(t, `
func main()
var a, b, c: int
c = a % b
endfunc
`, nil)
	m := sub(t, p, "main")
	tail := codeStrings(m)
	require.Contains(t, tail, "DIV %t0, a, b")
	require.Contains(t, tail, "MUL %t0, %t0, b")
	require.Contains(t, tail, "SUB %t0, a, %t0")
}

func TestRelationalDerivedOperators(t *testing.T) {
	p := compile(t, `
func main()
var a, b: int
var r: bool
r = a != b
r = a > b
r = a >= b
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "EQ %t0, a, b")
	require.Contains(t, code, "NOT %t0, %t0")
	require.Contains(t, code, "LE %t1, a, b")
	require.Contains(t, code, "NOT %t1, %t1")
	require.Contains(t, code, "LT %t2, a, b")
	require.Contains(t, code, "NOT %t2, %t2")
}

func TestIfElseLabelScheme(t *testing.T) {
	p := compile(t, `
func main()
var x: bool
if x then
write(1)
else
write(2)
endif
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "FJUMP x, else1")
	require.Contains(t, code, "UJUMP endif1")
	require.Contains(t, code, "LABEL else1")
	require.Contains(t, code, "LABEL endif1")
}

func TestIfNoElseLabelScheme(t *testing.T) {
	p := compile(t, `
func main()
var x: bool
if x then
write(1)
endif
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "FJUMP x, endif1")
	require.Contains(t, code, "LABEL endif1")
}

func TestWhileLabelScheme(t *testing.T) {
	p := compile(t, `
func main()
var x: bool
while x do
write(1)
endwhile
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Equal(t, "LABEL while1", code[0])
	require.Contains(t, code, "FJUMP x, endwhile1")
	require.Contains(t, code, "UJUMP while1")
	require.Contains(t, code, "LABEL endwhile1")
}

func TestArrayWholeAssignIsACountedLoop(t *testing.T) {
	p := compile(t, `
func main()
var a, b: array[3] of int
a = b
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "LABEL while1")
	require.Contains(t, code, "LABEL endwhile1")

	var sawLoadX, sawXLoad bool
	for _, in := range m.Code {
		if in.Op == OpLOADX {
			sawLoadX = true
		}
		if in.Op == OpXLOAD {
			sawXLoad = true
		}
	}
	require.True(t, sawLoadX, "array copy should load each source element")
	require.True(t, sawXLoad, "array copy should store each destination element")
}

func TestFunctionCallConvention(t *testing.T) {
	p := compile(t, `
func add(a: int, b: int): int
return a + b
endfunc
func main()
var c: int
c = add(1, 2)
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)

	pushIdx, callIdx := -1, -1
	for i, line := range code {
		if line == "PUSH" {
			pushIdx = i
		}
		if line == "CALL add" {
			callIdx = i
		}
	}
	require.GreaterOrEqual(t, pushIdx, 0, "expected a reserved-result PUSH()")
	require.Greater(t, callIdx, pushIdx)

	popAfterCall := 0
	for i := callIdx + 1; i < len(code); i++ {
		if code[i] == "POP" {
			popAfterCall++
			continue
		}
		break
	}
	require.Equal(t, 2, popAfterCall, "one discard POP per actual")
	require.Contains(t, code, "POP %t2")
}

func TestIntegerToFloatWideningAtAssignment(t *testing.T) {
	p := compile(t, `
func main()
var f: float
f = 1
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "FLOAT %t1, %t0")
	require.Contains(t, code, "LOAD f, %t1")
}

func TestWriteStringEscapes(t *testing.T) {
	p := compile(t, `
func main()
write("a\n\tb")
endfunc
`, nil)
	m := sub(t, p, "main")
	code := codeStrings(m)
	require.Contains(t, code, "WRITELN")

	var chloads []string
	for _, in := range m.Code {
		if in.Op == OpCHLOAD {
			chloads = append(chloads, in.Args[1])
		}
	}
	require.Equal(t, []string{"'a'", "'\t'", "'b'"}, chloads)
}

func TestBoundsCheckIsOptIn(t *testing.T) {
	withoutChecks := compile(t, `
func main()
var a: array[3] of int
a[0] = 1
endfunc
`, nil)
	unchecked := sub(t, withoutChecks, "main")
	for _, in := range unchecked.Code {
		require.NotEqual(t, OpTRAP, in.Op)
	}

	withChecks := compile(t, `
func main()
var a: array[3] of int
a[0] = 1
endfunc
`, &config.Config{BoundsChecked: true})
	checked := sub(t, withChecks, "main")

	var sawTrap bool
	for _, in := range checked.Code {
		if in.Op == OpTRAP {
			sawTrap = true
		}
	}
	require.True(t, sawTrap, "bounds-checked config should emit a TRAP guard")
}

func TestBuildIDIsStamped(t *testing.T) {
	p := compile(t, `
func main()
endfunc
`, nil)
	require.NotEqual(t, "", p.BuildID.String())
	require.Contains(t, p.String(), "; build "+p.BuildID.String())
}
