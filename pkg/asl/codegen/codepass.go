package codegen

import (
	"strconv"

	"github.com/google/uuid"

	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/config"
	"aslc/pkg/asl/decor"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/token"
	"aslc/pkg/asl/types"
)

// CodePass walks a tree already validated by sema.TypeCheckPass and
// emits three-address code, re-entering the scope SymbolPass attached
// to each Function so that names resolve exactly as they did for the
// earlier passes.
type CodePass struct {
	Types   *types.Registry
	Symbols *symbols.Table
	Decor   *decor.Table
	Config  *config.Config

	tempN  int
	labelN int
}

// NewCodePass wires a CodePass to the registries SymbolPass and
// TypeCheckPass already populated. cfg may be nil, meaning the default
// configuration (no bounds checking).
func NewCodePass(reg *types.Registry, syms *symbols.Table, dec *decor.Table, cfg *config.Config) *CodePass {
	if cfg == nil {
		cfg = config.Default()
	}
	return &CodePass{Types: reg, Symbols: syms, Decor: dec, Config: cfg}
}

// Run compiles every function of prog into a Program, stamped with a
// fresh build id.
func (p *CodePass) Run(prog *ast.Program) *Program {
	out := &Program{BuildID: uuid.New()}
	p.Symbols.PushThisScope(p.Decor.GetScope(prog))
	for _, fn := range prog.Functions {
		out.Subroutines = append(out.Subroutines, p.genFunction(fn))
	}
	p.Symbols.PopScope()
	return out
}

func (p *CodePass) newTemp() string {
	name := "%t" + strconv.Itoa(p.tempN)
	p.tempN++
	return name
}

func (p *CodePass) newLabel() string {
	p.labelN++
	return strconv.Itoa(p.labelN)
}

func (p *CodePass) genFunction(fn *ast.Function) *Subroutine {
	p.tempN, p.labelN = 0, 0
	sub := &Subroutine{Name: fn.Name.Lexeme}
	if fn.RetType != nil {
		sub.Params = append(sub.Params, "_result")
	}
	for _, param := range fn.Params {
		sub.Params = append(sub.Params, param.Name.Lexeme)
	}

	p.Symbols.PushThisScope(p.Decor.GetScope(fn))
	for _, vd := range fn.Decls.Vars {
		ty := p.Decor.GetType(vd.Type)
		size := p.Types.SizeOf(ty)
		for _, name := range vd.Names {
			sub.Locals = append(sub.Locals, LocalVar{Name: name.Lexeme, Size: size})
		}
	}

	body := p.genStatements(fn.Body)
	p.Symbols.PopScope()

	sub.Code = append(body, RETURN())
	return sub
}

func (p *CodePass) genStatements(stmts *ast.Statements) []Instruction {
	var code []Instruction
	for _, s := range stmts.List {
		code = append(code, p.genStmt(s)...)
	}
	return code
}

func (p *CodePass) genStmt(s ast.Stmt) []Instruction {
	switch n := s.(type) {
	case *ast.Assign:
		return p.genAssign(n)
	case *ast.If:
		return p.genIf(n)
	case *ast.While:
		return p.genWhile(n)
	case *ast.ProcCall:
		_, code := p.genCall(n.Name, n.Args, false)
		return code
	case *ast.Return:
		return p.genReturn(n)
	case *ast.Read:
		return p.genRead(n)
	case *ast.WriteExpr:
		return p.genWriteExpr(n)
	case *ast.WriteString:
		return p.genWriteString(n)
	}
	return nil
}

// genAssign implements the array-copy loop, the Integer->Float
// widening at assignment, and the indexed/non-indexed store choice.
func (p *CodePass) genAssign(a *ast.Assign) []Instruction {
	lhsTy := p.Decor.GetType(a.Left)
	if p.Types.IsArrayTy(lhsTy) {
		return p.genArrayCopy(a.Left, a.Right, lhsTy)
	}

	lhsAddr, lhsOffset, lhsCode := p.genLeftExpr(a.Left)
	rhsAddr, rhsCode := p.genExpr(a.Right)

	code := append(lhsCode, rhsCode...)
	rhsTy := p.Decor.GetType(a.Right)
	if p.Types.IsFloatTy(lhsTy) && p.Types.IsIntegerTy(rhsTy) {
		t := p.newTemp()
		code = append(code, FLOATOP(t, rhsAddr))
		rhsAddr = t
	}

	if a.Left.Index != nil {
		code = append(code, XLOAD(lhsAddr, lhsOffset, rhsAddr))
	} else {
		code = append(code, LOAD(lhsAddr, rhsAddr))
	}
	return code
}

// genArrayCopy emits a counted while loop copying one element at a
// time from the right-hand array to the left-hand array.
func (p *CodePass) genArrayCopy(lhs *ast.LeftExpr, rhs ast.Expr, arrTy types.ID) []Instruction {
	lhsBase, lhsCode := p.arrayBase(lhs.Ident.Lexeme)
	rhsBase, rhsCode := p.arrayBase(identName(rhs))

	counter := p.newTemp()
	sizeT := p.newTemp()
	oneT := p.newTemp()
	code := append(lhsCode, rhsCode...)
	code = append(code, ILOAD(counter, "0"))
	code = append(code, ILOAD(sizeT, strconv.Itoa(int(p.Types.GetArraySize(arrTy)))))
	code = append(code, ILOAD(oneT, "1"))

	n := p.newLabel()
	loopLabel := "while" + n
	endLabel := "endwhile" + n
	code = append(code, LABEL(loopLabel))

	condT := p.newTemp()
	code = append(code, LT(condT, counter, sizeT))
	code = append(code, FJUMP(condT, endLabel))

	elemT := p.newTemp()
	code = append(code, LOADX(elemT, rhsBase, counter))
	code = append(code, XLOAD(lhsBase, counter, elemT))
	code = append(code, ADD(counter, counter, oneT))
	code = append(code, UJUMP(loopLabel))
	code = append(code, LABEL(endLabel))
	return code
}

// identName extracts the identifier name a whole-array expression
// refers to, unwrapping Parenthesis. Arrays are only ever named by
// reference, never built from a composite expression.
func identName(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.ExprIdent:
		return n.Ident.Name()
	case *ast.Parenthesis:
		return identName(n.Expr)
	}
	return ""
}

// arrayBase resolves an array variable's base address: the name
// itself when it is a local array held by value, or a dereferenced
// temp when it names a reference-passed parameter.
func (p *CodePass) arrayBase(name string) (string, []Instruction) {
	if p.Symbols.IsLocalVarClass(name) {
		return name, nil
	}
	t := p.newTemp()
	return t, []Instruction{LOAD(t, name)}
}

func (p *CodePass) genIf(n *ast.If) []Instruction {
	condAddr, condCode := p.genExpr(n.Cond)
	lbl := p.newLabel()
	code := append([]Instruction{}, condCode...)

	if n.Else == nil {
		endLabel := "endif" + lbl
		code = append(code, FJUMP(condAddr, endLabel))
		code = append(code, p.genStatements(n.Then)...)
		code = append(code, LABEL(endLabel))
		return code
	}

	elseLabel := "else" + lbl
	endLabel := "endif" + lbl
	code = append(code, FJUMP(condAddr, elseLabel))
	code = append(code, p.genStatements(n.Then)...)
	code = append(code, UJUMP(endLabel))
	code = append(code, LABEL(elseLabel))
	code = append(code, p.genStatements(n.Else)...)
	code = append(code, LABEL(endLabel))
	return code
}

func (p *CodePass) genWhile(n *ast.While) []Instruction {
	lbl := p.newLabel()
	loopLabel := "while" + lbl
	endLabel := "endwhile" + lbl

	condAddr, condCode := p.genExpr(n.Cond)
	body := p.genStatements(n.Body)

	code := []Instruction{LABEL(loopLabel)}
	code = append(code, condCode...)
	code = append(code, FJUMP(condAddr, endLabel))
	code = append(code, body...)
	code = append(code, UJUMP(loopLabel))
	code = append(code, LABEL(endLabel))
	return code
}

func (p *CodePass) genReturn(r *ast.Return) []Instruction {
	if r.Expr == nil {
		return []Instruction{RETURN()}
	}
	addr, code := p.genExpr(r.Expr)
	return append(code, LOAD("_result", addr), RETURN())
}

func (p *CodePass) genRead(r *ast.Read) []Instruction {
	ty := p.Decor.GetType(r.Target)
	addr, offset, code := p.genLeftExpr(r.Target)

	readOp := readOpFor(p.Types, ty)
	if r.Target.Index == nil {
		return append(code, readOp(addr))
	}
	t := p.newTemp()
	code = append(code, readOp(t))
	code = append(code, XLOAD(addr, offset, t))
	return code
}

func readOpFor(reg *types.Registry, ty types.ID) func(string) Instruction {
	switch {
	case reg.IsFloatTy(ty):
		return READF
	case reg.IsCharacterTy(ty):
		return READC
	default:
		return READI
	}
}

func (p *CodePass) genWriteExpr(w *ast.WriteExpr) []Instruction {
	addr, code := p.genExpr(w.Expr)
	ty := p.Decor.GetType(w.Expr)
	switch {
	case p.Types.IsFloatTy(ty):
		return append(code, WRITEF(addr))
	case p.Types.IsCharacterTy(ty):
		return append(code, WRITEC(addr))
	default:
		return append(code, WRITEI(addr))
	}
}

// genWriteString lowers a string literal into a sequence of per-rune
// CHLOAD/WRITEC instructions, with \n lowered to WRITELN instead of a
// literal newline character.
func (p *CodePass) genWriteString(w *ast.WriteString) []Instruction {
	lit := w.Tok.Lexeme
	body := lit
	if len(lit) >= 2 {
		body = lit[1 : len(lit)-1]
	}

	var code []Instruction
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				code = append(code, WRITELN())
				continue
			case 't':
				c = '\t'
			case '"':
				c = '"'
			case '\\':
				c = '\\'
			default:
				c = runes[i]
			}
		}
		t := p.newTemp()
		code = append(code, CHLOAD(t, "'"+string(c)+"'"))
		code = append(code, WRITEC(t))
	}
	return code
}

// genLeftExpr resolves an assignment/read target, returning its base
// address and (for an indexed target) its element offset.
func (p *CodePass) genLeftExpr(l *ast.LeftExpr) (addr, offset string, code []Instruction) {
	if l.Index == nil {
		return l.Ident.Lexeme, "", nil
	}
	base, off, c := p.genArrayAccess(l.Ident.Lexeme, l.Index)
	return base, off, c
}

// genArrayAccess computes the element offset (always stride 1) and
// selects the array's base address, loading it through a temp when
// the array is held by reference (a parameter) rather than by value.
func (p *CodePass) genArrayAccess(name string, index ast.Expr) (base, offset string, code []Instruction) {
	idxAddr, idxCode := p.genExpr(index)
	code = append(code, idxCode...)

	if p.Config.BoundsChecked {
		arrTy := p.Symbols.GetType(name)
		code = append(code, p.genBoundsCheck(idxAddr, p.Types.GetArraySize(arrTy))...)
	}

	strideT := p.newTemp()
	code = append(code, ILOAD(strideT, "1"))
	offT := p.newTemp()
	code = append(code, MUL(offT, strideT, idxAddr))

	if p.Symbols.IsLocalVarClass(name) {
		base = name
	} else {
		baseT := p.newTemp()
		code = append(code, LOAD(baseT, name))
		base = baseT
	}
	return base, offT, code
}

// genBoundsCheck emits "index < size ? continue : trap", a pure
// addition gated behind config.BoundsChecked and never on by default.
func (p *CodePass) genBoundsCheck(idxAddr string, size uint32) []Instruction {
	sizeT := p.newTemp()
	okT := p.newTemp()
	lbl := p.newLabel()
	trapLabel := "boundstrap" + lbl
	contLabel := "boundsok" + lbl

	return []Instruction{
		ILOAD(sizeT, strconv.Itoa(int(size))),
		LT(okT, idxAddr, sizeT),
		FJUMP(okT, trapLabel),
		UJUMP(contLabel),
		LABEL(trapLabel),
		TRAP(),
		LABEL(contLabel),
	}
}

// genExpr compiles an expression, returning the name holding its
// value and the code to compute it.
func (p *CodePass) genExpr(e ast.Expr) (string, []Instruction) {
	switch n := e.(type) {
	case *ast.ExprIdent:
		return n.Ident.Name(), nil
	case *ast.Ident:
		return n.Name(), nil
	case *ast.Value:
		return p.genValue(n)
	case *ast.Parenthesis:
		return p.genExpr(n.Expr)
	case *ast.ArrayIndex:
		base, offset, code := p.genArrayAccess(n.Ident.Lexeme, n.Index)
		t := p.newTemp()
		code = append(code, LOADX(t, base, offset))
		return t, code
	case *ast.FuncCall:
		return p.genCall(n.Name, n.Args, true)
	case *ast.Unary:
		return p.genUnary(n)
	case *ast.Arithmetic:
		return p.genArithmetic(n)
	case *ast.Relational:
		return p.genRelational(n)
	case *ast.Logical:
		return p.genLogical(n)
	case *ast.LeftExpr:
		return p.genLeftExprAsValue(n)
	}
	return "", nil
}

func (p *CodePass) genLeftExprAsValue(l *ast.LeftExpr) (string, []Instruction) {
	if l.Index == nil {
		return l.Ident.Lexeme, nil
	}
	base, offset, code := p.genArrayAccess(l.Ident.Lexeme, l.Index)
	t := p.newTemp()
	code = append(code, LOADX(t, base, offset))
	return t, code
}

func (p *CodePass) genValue(v *ast.Value) (string, []Instruction) {
	t := p.newTemp()
	switch v.Tok.Type {
	case token.INTVAL:
		return t, []Instruction{ILOAD(t, v.Tok.Lexeme)}
	case token.FLOATVAL:
		return t, []Instruction{FLOAD(t, v.Tok.Lexeme)}
	case token.BOOLVAL:
		n := "0"
		if v.Tok.Lexeme == "true" {
			n = "1"
		}
		return t, []Instruction{ILOAD(t, n)}
	case token.CHARVAL:
		return t, []Instruction{CHLOAD(t, v.Tok.Lexeme)}
	}
	return t, []Instruction{ILOAD(t, "0")}
}

func (p *CodePass) genUnary(u *ast.Unary) (string, []Instruction) {
	addr, code := p.genExpr(u.Expr)
	t := p.newTemp()
	if u.Op.Type == token.NOT {
		code = append(code, NOT(t, addr))
		return t, code
	}
	ty := p.Decor.GetType(u.Expr)
	if p.Types.IsFloatTy(ty) {
		code = append(code, FNEG(t, addr))
	} else {
		code = append(code, NEG(t, addr))
	}
	return t, code
}

// genArithmetic chooses the integer or float opcode family, widening
// one Integer operand to Float first when the other is Float, and
// lowers `%` to `a - (a/b)*b` reusing one temp for every step.
func (p *CodePass) genArithmetic(a *ast.Arithmetic) (string, []Instruction) {
	lAddr, lCode := p.genExpr(a.Left)
	rAddr, rCode := p.genExpr(a.Right)
	code := append(lCode, rCode...)

	lTy := p.Decor.GetType(a.Left)
	rTy := p.Decor.GetType(a.Right)
	isFloat := p.Types.IsFloatTy(lTy) || p.Types.IsFloatTy(rTy)

	if isFloat {
		if p.Types.IsIntegerTy(lTy) {
			t := p.newTemp()
			code = append(code, FLOATOP(t, lAddr))
			lAddr = t
		}
		if p.Types.IsIntegerTy(rTy) {
			t := p.newTemp()
			code = append(code, FLOATOP(t, rAddr))
			rAddr = t
		}
		d := p.newTemp()
		switch a.Op.Type {
		case token.PLUS:
			code = append(code, FADD(d, lAddr, rAddr))
		case token.MINUS:
			code = append(code, FSUB(d, lAddr, rAddr))
		case token.STAR:
			code = append(code, FMUL(d, lAddr, rAddr))
		case token.SLASH:
			code = append(code, FDIV(d, lAddr, rAddr))
		}
		return d, code
	}

	d := p.newTemp()
	switch a.Op.Type {
	case token.PLUS:
		code = append(code, ADD(d, lAddr, rAddr))
	case token.MINUS:
		code = append(code, SUB(d, lAddr, rAddr))
	case token.STAR:
		code = append(code, MUL(d, lAddr, rAddr))
	case token.SLASH:
		code = append(code, DIV(d, lAddr, rAddr))
	case token.PERCENT:
		code = append(code, DIV(d, lAddr, rAddr))
		code = append(code, MUL(d, d, rAddr))
		code = append(code, SUB(d, lAddr, d))
	}
	return d, code
}

// genRelational chooses EQ/LT/LE (or their float counterparts),
// deriving NE from EQ+NOT, GT from LE+NOT, and GE from LT+NOT.
func (p *CodePass) genRelational(r *ast.Relational) (string, []Instruction) {
	lAddr, lCode := p.genExpr(r.Left)
	rAddr, rCode := p.genExpr(r.Right)
	code := append(lCode, rCode...)

	lTy := p.Decor.GetType(r.Left)
	rTy := p.Decor.GetType(r.Right)
	isFloat := p.Types.IsFloatTy(lTy) || p.Types.IsFloatTy(rTy)

	if isFloat {
		if p.Types.IsIntegerTy(lTy) {
			t := p.newTemp()
			code = append(code, FLOATOP(t, lAddr))
			lAddr = t
		}
		if p.Types.IsIntegerTy(rTy) {
			t := p.newTemp()
			code = append(code, FLOATOP(t, rAddr))
			rAddr = t
		}
		d := p.newTemp()
		switch r.Op.Type {
		case token.EQ:
			code = append(code, FEQ(d, lAddr, rAddr))
		case token.NEQ:
			code = append(code, FEQ(d, lAddr, rAddr), NOT(d, d))
		case token.LT:
			code = append(code, FLT(d, lAddr, rAddr))
		case token.LTE:
			code = append(code, FLE(d, lAddr, rAddr))
		case token.GT:
			code = append(code, FLE(d, lAddr, rAddr), NOT(d, d))
		case token.GTE:
			code = append(code, FLT(d, lAddr, rAddr), NOT(d, d))
		}
		return d, code
	}

	d := p.newTemp()
	switch r.Op.Type {
	case token.EQ:
		code = append(code, EQ(d, lAddr, rAddr))
	case token.NEQ:
		code = append(code, EQ(d, lAddr, rAddr), NOT(d, d))
	case token.LT:
		code = append(code, LT(d, lAddr, rAddr))
	case token.LTE:
		code = append(code, LE(d, lAddr, rAddr))
	case token.GT:
		code = append(code, LE(d, lAddr, rAddr), NOT(d, d))
	case token.GTE:
		code = append(code, LT(d, lAddr, rAddr), NOT(d, d))
	}
	return d, code
}

func (p *CodePass) genLogical(l *ast.Logical) (string, []Instruction) {
	lAddr, lCode := p.genExpr(l.Left)
	rAddr, rCode := p.genExpr(l.Right)
	code := append(lCode, rCode...)
	d := p.newTemp()
	if l.Op.Type == token.AND {
		code = append(code, AND(d, lAddr, rAddr))
	} else {
		code = append(code, OR(d, lAddr, rAddr))
	}
	return d, code
}

// genCall lowers a call's actuals, widening Integer->Float and
// passing arrays by reference (ALOAD), then emits the richer
// PUSH/.../CALL/POP.../POP convention: one reserved result slot, one
// PUSH per actual in source order, the call, one discard POP per
// actual, and a final POP either captured into a fresh temp
// (FuncCall) or discarded (ProcCall).
func (p *CodePass) genCall(name token.Token, args []ast.Expr, wantResult bool) (string, []Instruction) {
	calleeTy := p.Symbols.GetType(name.Lexeme)
	paramTys := p.Types.GetFuncParams(calleeTy)

	var code []Instruction
	addrs := make([]string, len(args))
	for i, arg := range args {
		addr, c := p.genExpr(arg)
		code = append(code, c...)

		argTy := p.Decor.GetType(arg)
		switch {
		case i < len(paramTys) && p.Types.IsFloatTy(paramTys[i]) && p.Types.IsIntegerTy(argTy):
			t := p.newTemp()
			code = append(code, FLOATOP(t, addr))
			addr = t
		case p.Types.IsArrayTy(argTy):
			t := p.newTemp()
			code = append(code, ALOAD(t, addr))
			addr = t
		}
		addrs[i] = addr
	}

	code = append(code, PUSH())
	for _, addr := range addrs {
		code = append(code, PUSH(addr))
	}
	code = append(code, CALL(name.Lexeme))
	for range addrs {
		code = append(code, POP())
	}

	if wantResult {
		t := p.newTemp()
		code = append(code, POP(t))
		return t, code
	}
	code = append(code, POP())
	return "", code
}
