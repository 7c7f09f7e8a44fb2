package parser

import (
	"strings"
	"testing"

	"aslc/pkg/asl/ast"
)

// TestParseFunctionShape verifies that Parse produces the expected node
// shape for a function with parameters, a return type, declarations, and
// statements.
func TestParseFunctionShape(t *testing.T) {
	prog, err := Parse(`
func add(a: int, b: int): int
var t: int
t = a + b
return t
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}

	fn := prog.Functions[0]
	if fn.Name.Lexeme != "add" {
		t.Errorf("function name = %q, want add", fn.Name.Lexeme)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name.Lexeme != "a" || fn.Params[1].Name.Lexeme != "b" {
		t.Errorf("unexpected params: %+v", fn.Params)
	}
	if fn.RetType == nil || fn.RetType.Tok.Lexeme != "int" {
		t.Errorf("expected a declared int return type")
	}
	if len(fn.Decls.Vars) != 1 || fn.Decls.Vars[0].Names[0].Lexeme != "t" {
		t.Errorf("unexpected declarations: %+v", fn.Decls.Vars)
	}
	if len(fn.Body.List) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Body.List))
	}
	if _, ok := fn.Body.List[0].(*ast.Assign); !ok {
		t.Errorf("statement 0 = %T, want *ast.Assign", fn.Body.List[0])
	}
	if _, ok := fn.Body.List[1].(*ast.Return); !ok {
		t.Errorf("statement 1 = %T, want *ast.Return", fn.Body.List[1])
	}
}

func TestParseArrayDeclAndIndex(t *testing.T) {
	prog, err := Parse(`
func main()
var a: array[3] of int
a[0] = 1
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	fn := prog.Functions[0]

	vd := fn.Decls.Vars[0]
	if vd.Type.Array == nil || vd.Type.Array.SizeTok.Lexeme != "3" || vd.Type.Array.Elem.Tok.Lexeme != "int" {
		t.Fatalf("unexpected array decl: %+v", vd.Type)
	}

	assign, ok := fn.Body.List[0].(*ast.Assign)
	if !ok {
		t.Fatalf("statement 0 = %T, want *ast.Assign", fn.Body.List[0])
	}
	if assign.Left.Index == nil {
		t.Errorf("expected an indexed left expr")
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	prog, err := Parse(`
func main()
var x: bool
if x then
write(1)
else
write(2)
endif
while x do
write(3)
endwhile
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	fn := prog.Functions[0]
	if len(fn.Body.List) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Body.List))
	}

	ifStmt, ok := fn.Body.List[0].(*ast.If)
	if !ok {
		t.Fatalf("statement 0 = %T, want *ast.If", fn.Body.List[0])
	}
	if ifStmt.Else == nil {
		t.Errorf("expected an else branch")
	}

	whileStmt, ok := fn.Body.List[1].(*ast.While)
	if !ok {
		t.Fatalf("statement 1 = %T, want *ast.While", fn.Body.List[1])
	}
	if len(whileStmt.Body.List) != 1 {
		t.Errorf("while body has %d statements, want 1", len(whileStmt.Body.List))
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog, err := Parse(`
func main()
var x: int
x = 1 + 2 * 3
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	assign := prog.Functions[0].Body.List[0].(*ast.Assign)

	top, ok := assign.Right.(*ast.Arithmetic)
	if !ok {
		t.Fatalf("top-level expr = %T, want *ast.Arithmetic", assign.Right)
	}
	if top.Op.Lexeme != "+" {
		t.Errorf("top-level operator = %q, want +", top.Op.Lexeme)
	}
	if _, ok := top.Right.(*ast.Arithmetic); !ok {
		t.Errorf("right operand = %T, want *ast.Arithmetic (2 * 3 binds tighter)", top.Right)
	}
}

func TestParseWriteString(t *testing.T) {
	prog, err := Parse(`
func main()
write("hello")
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := prog.Functions[0].Body.List[0].(*ast.WriteString); !ok {
		t.Errorf("statement 0 = %T, want *ast.WriteString", prog.Functions[0].Body.List[0])
	}
}

func TestParseFuncCallAndProcCall(t *testing.T) {
	prog, err := Parse(`
func helper(a: int)
return
endfunc
func main()
var x: int
x = helper(1)
helper(2)
endfunc
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	main := prog.Functions[1]

	assign := main.Body.List[0].(*ast.Assign)
	if _, ok := assign.Right.(*ast.FuncCall); !ok {
		t.Errorf("assignment rhs = %T, want *ast.FuncCall", assign.Right)
	}
	if _, ok := main.Body.List[1].(*ast.ProcCall); !ok {
		t.Errorf("statement 1 = %T, want *ast.ProcCall", main.Body.List[1])
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse(`
func main()
x =
endfunc
`)
	if err == nil {
		t.Fatalf("expected a parse error for a missing right-hand side")
	}
	if !strings.Contains(err.Error(), "4:1") {
		t.Errorf("parse error = %q, want it to report position 4:1 (the endfunc found in place of an expression)", err.Error())
	}
}
