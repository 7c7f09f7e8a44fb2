package sema

import (
	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/decor"
	"aslc/pkg/asl/diag"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/token"
	"aslc/pkg/asl/types"
)

// TypeCheckPass walks the tree a second time, re-entering the scopes
// SymbolPass attached, and decorates every expression node with a type
// and an l-value flag while emitting diagnostics. CodePass depends on
// every decoration this pass writes.
type TypeCheckPass struct {
	Types   *types.Registry
	Symbols *symbols.Table
	Decor   *decor.Table
	Errors  *diag.Sink

	curRet   types.ID
	curRetOK bool
}

// NewTypeCheckPass wires a TypeCheckPass to the same shared registries
// SymbolPass used.
func NewTypeCheckPass(reg *types.Registry, syms *symbols.Table, dec *decor.Table, errs *diag.Sink) *TypeCheckPass {
	return &TypeCheckPass{Types: reg, Symbols: syms, Decor: dec, Errors: errs}
}

// Run walks prog, re-entering the global scope SymbolPass created.
func (p *TypeCheckPass) Run(prog *ast.Program) {
	sc := p.Decor.GetScope(prog)
	p.Symbols.PushThisScope(sc)
	for _, fn := range prog.Functions {
		p.visitFunction(fn)
	}
	if p.Symbols.NoMainProperlyDeclared(sc, p.Types) {
		p.Errors.NoMainProperlyDeclared(prog.Pos())
	}
	p.Symbols.PopScope()
}

func (p *TypeCheckPass) visitFunction(fn *ast.Function) {
	sc := p.Decor.GetScope(fn)
	p.Symbols.PushThisScope(sc)

	prevRet, prevOK := p.curRet, p.curRetOK
	if fn.RetType != nil {
		p.curRet = p.Decor.GetType(fn.RetType)
	} else {
		p.curRet = p.Types.CreateVoidTy()
	}
	p.curRetOK = true

	p.visitStatements(fn.Body)

	p.curRet, p.curRetOK = prevRet, prevOK
	p.Symbols.PopScope()
}

func (p *TypeCheckPass) visitStatements(stmts *ast.Statements) {
	for _, s := range stmts.List {
		p.visitStmt(s)
	}
}

func (p *TypeCheckPass) visitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Assign:
		p.visitAssign(n)
	case *ast.If:
		p.visitIf(n)
	case *ast.While:
		p.visitWhile(n)
	case *ast.ProcCall:
		p.visitProcCall(n)
	case *ast.Return:
		p.visitReturn(n)
	case *ast.Read:
		p.visitRead(n)
	case *ast.WriteExpr:
		p.visitWriteExpr(n)
	case *ast.WriteString:
		// no type information to compute
	}
}

func (p *TypeCheckPass) visitAssign(n *ast.Assign) {
	p.visitLeftExpr(n.Left)
	p.visitExpr(n.Right)

	t1 := p.Decor.GetType(n.Left)
	t2 := p.Decor.GetType(n.Right)

	if !p.Types.IsErrorTy(t1) && !p.Types.IsErrorTy(t2) && !p.Types.CopyableTypes(t1, t2) {
		p.Errors.IncompatibleAssignment(n.AssignTok.Pos)
	}
	if !p.Types.IsErrorTy(t1) && !p.Decor.GetIsLValue(n.Left) {
		p.Errors.NonReferenceableLeftExpr(n.Left.Pos())
	}
}

func (p *TypeCheckPass) visitIf(n *ast.If) {
	p.visitExpr(n.Cond)
	t := p.Decor.GetType(n.Cond)
	if !p.Types.IsErrorTy(t) && !p.Types.IsBooleanTy(t) {
		p.Errors.BooleanRequired(n.Pos())
	}
	p.visitStatements(n.Then)
	if n.Else != nil {
		p.visitStatements(n.Else)
	}
}

func (p *TypeCheckPass) visitWhile(n *ast.While) {
	p.visitExpr(n.Cond)
	t := p.Decor.GetType(n.Cond)
	if !p.Types.IsErrorTy(t) && !p.Types.IsBooleanTy(t) {
		p.Errors.BooleanRequired(n.Pos())
	}
	p.visitStatements(n.Body)
}

// visitCallArgs validates a call's callee and argument list, shared by
// ProcCall and FuncCall. requireNonVoid is set for FuncCall, which must
// name a function with a declared return type.
func (p *TypeCheckPass) visitCallArgs(name string, pos ast.Node, args []ast.Expr, requireNonVoid bool) types.ID {
	for _, a := range args {
		p.visitExpr(a)
	}

	idx := p.Symbols.FindInStack(name)
	if idx == -1 {
		p.Errors.UndeclaredIdent(pos.Pos(), name)
		return p.Types.CreateErrorTy()
	}
	calleeTy := p.Symbols.GetType(name)
	if !p.Types.IsFunctionTy(calleeTy) {
		p.Errors.IsNotCallable(pos.Pos(), name)
		return p.Types.CreateErrorTy()
	}
	retTy := p.Types.GetFuncRet(calleeTy)
	if requireNonVoid && p.Types.IsVoidTy(retTy) {
		p.Errors.IsNotFunction(pos.Pos(), name)
	}

	params := p.Types.GetFuncParams(calleeTy)
	if len(params) != len(args) {
		p.Errors.NumberOfParameters(pos.Pos(), name)
	} else {
		for i, a := range args {
			at := p.Decor.GetType(a)
			pt := params[i]
			if p.Types.IsErrorTy(at) {
				continue
			}
			if p.Types.EqualTypes(pt, at) {
				continue
			}
			if p.Types.IsFloatTy(pt) && p.Types.IsIntegerTy(at) {
				continue
			}
			p.Errors.IncompatibleParameter(a.Pos(), i+1, name)
		}
	}
	return retTy
}

func (p *TypeCheckPass) visitProcCall(n *ast.ProcCall) {
	p.visitCallArgs(n.Name.Lexeme, n, n.Args, false)
}

func (p *TypeCheckPass) visitReturn(n *ast.Return) {
	if n.Expr == nil {
		if !p.Types.IsVoidTy(p.curRet) {
			p.Errors.IncompatibleReturn(n.Tok.Pos)
		}
		return
	}
	p.visitExpr(n.Expr)
	t := p.Decor.GetType(n.Expr)
	if p.Types.IsErrorTy(t) {
		return
	}
	if !p.Types.IsPrimitiveNonVoidTy(t) {
		p.Errors.IncompatibleReturn(n.Tok.Pos)
		return
	}
	if !p.Types.EqualTypes(p.curRet, t) && !(p.Types.IsFloatTy(p.curRet) && p.Types.IsIntegerTy(t)) {
		p.Errors.IncompatibleReturn(n.Tok.Pos)
	}
}

func (p *TypeCheckPass) visitRead(n *ast.Read) {
	p.visitLeftExpr(n.Target)
	t := p.Decor.GetType(n.Target)
	if !p.Types.IsErrorTy(t) && !p.Types.IsPrimitiveTy(t) && !p.Types.IsFunctionTy(t) {
		p.Errors.ReadWriteRequireBasic(n.Pos())
	}
	if !p.Types.IsErrorTy(t) && !p.Decor.GetIsLValue(n.Target) {
		p.Errors.NonReferenceableExpression(n.Pos())
	}
}

func (p *TypeCheckPass) visitWriteExpr(n *ast.WriteExpr) {
	p.visitExpr(n.Expr)
	t := p.Decor.GetType(n.Expr)
	if !p.Types.IsErrorTy(t) && !p.Types.IsPrimitiveTy(t) {
		p.Errors.ReadWriteRequireBasic(n.Pos())
	}
}

// visitLeftExpr decorates a Left_expr node (id or id[e]).
func (p *TypeCheckPass) visitLeftExpr(n *ast.LeftExpr) {
	name := n.Ident.Lexeme
	idx := p.Symbols.FindInStack(name)
	if idx == -1 {
		p.Errors.UndeclaredIdent(n.Ident.Pos, name)
		p.Decor.PutType(n, p.Types.CreateErrorTy())
		p.Decor.PutIsLValue(n, true)
		if n.Index != nil {
			p.visitExpr(n.Index)
		}
		return
	}
	idTy := p.Symbols.GetType(name)

	if n.Index == nil {
		p.Decor.PutType(n, idTy)
		p.Decor.PutIsLValue(n, !p.Symbols.IsFunctionClass(name))
		return
	}

	p.visitExpr(n.Index)
	idxTy := p.Decor.GetType(n.Index)

	elemTy := p.Types.CreateErrorTy()
	valid := true
	if !p.Types.IsArrayTy(idTy) {
		p.Errors.NonArrayInArrayAccess(n.Pos())
		valid = false
	} else {
		elemTy = p.Types.GetArrayElemType(idTy)
	}
	if !p.Types.IsIntegerTy(idxTy) {
		p.Errors.NonIntegerIndexInArrayAccess(n.Index.Pos())
	}
	p.Decor.PutType(n, elemTy)
	p.Decor.PutIsLValue(n, valid)
}

func (p *TypeCheckPass) visitExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.ExprIdent:
		p.visitIdent(n.Ident)
		p.Decor.PutType(n, p.Decor.GetType(n.Ident))
		p.Decor.PutIsLValue(n, p.Decor.GetIsLValue(n.Ident))
	case *ast.Value:
		p.visitValue(n)
	case *ast.Parenthesis:
		p.visitExpr(n.Expr)
		p.Decor.PutType(n, p.Decor.GetType(n.Expr))
		p.Decor.PutIsLValue(n, p.Decor.GetIsLValue(n.Expr))
	case *ast.Unary:
		p.visitUnary(n)
	case *ast.Arithmetic:
		p.visitArithmetic(n)
	case *ast.Relational:
		p.visitRelational(n)
	case *ast.Logical:
		p.visitLogical(n)
	case *ast.ArrayIndex:
		p.visitArrayIndex(n)
	case *ast.FuncCall:
		ret := p.visitCallArgs(n.Name.Lexeme, n, n.Args, true)
		p.Decor.PutType(n, ret)
		p.Decor.PutIsLValue(n, false)
	case *ast.LeftExpr:
		p.visitLeftExpr(n)
	}
}

func (p *TypeCheckPass) visitIdent(id *ast.Ident) {
	name := id.Name()
	if p.Symbols.FindInStack(name) == -1 {
		p.Errors.UndeclaredIdent(id.Pos(), name)
		p.Decor.PutType(id, p.Types.CreateErrorTy())
		p.Decor.PutIsLValue(id, true)
		return
	}
	t := p.Symbols.GetType(name)
	p.Decor.PutType(id, t)
	p.Decor.PutIsLValue(id, !p.Symbols.IsFunctionClass(name))
}

func (p *TypeCheckPass) visitValue(v *ast.Value) {
	var t types.ID
	switch v.Tok.Type {
	case token.INTVAL:
		t = p.Types.CreateIntegerTy()
	case token.FLOATVAL:
		t = p.Types.CreateFloatTy()
	case token.BOOLVAL:
		t = p.Types.CreateBooleanTy()
	case token.CHARVAL:
		t = p.Types.CreateCharacterTy()
	default:
		t = p.Types.CreateErrorTy()
	}
	p.Decor.PutType(v, t)
	p.Decor.PutIsLValue(v, false)
}

func (p *TypeCheckPass) visitUnary(u *ast.Unary) {
	p.visitExpr(u.Expr)
	t := p.Decor.GetType(u.Expr)

	if u.Op.Type == token.NOT {
		if !p.Types.IsErrorTy(t) && !p.Types.IsBooleanTy(t) {
			p.Errors.IncompatibleOperator(u.Op.Pos, u.Op.Lexeme)
		}
		p.Decor.PutType(u, p.Types.CreateBooleanTy())
	} else {
		if !p.Types.IsErrorTy(t) && !p.Types.IsIntegerTy(t) && !p.Types.IsFloatTy(t) {
			p.Errors.IncompatibleOperator(u.Op.Pos, u.Op.Lexeme)
		}
		if p.Types.IsFloatTy(t) {
			p.Decor.PutType(u, t)
		} else {
			p.Decor.PutType(u, p.Types.CreateIntegerTy())
		}
	}
	p.Decor.PutIsLValue(u, false)
}

func (p *TypeCheckPass) visitArithmetic(n *ast.Arithmetic) {
	p.visitExpr(n.Left)
	p.visitExpr(n.Right)
	t1 := p.Decor.GetType(n.Left)
	t2 := p.Decor.GetType(n.Right)

	if n.Op.Lexeme == "%" {
		if (!p.Types.IsErrorTy(t1) && !p.Types.IsIntegerTy(t1)) || (!p.Types.IsErrorTy(t2) && !p.Types.IsIntegerTy(t2)) {
			p.Errors.IncompatibleOperator(n.Op.Pos, n.Op.Lexeme)
		}
	} else {
		if (!p.Types.IsErrorTy(t1) && !p.Types.IsNumericTy(t1)) || (!p.Types.IsErrorTy(t2) && !p.Types.IsNumericTy(t2)) {
			p.Errors.IncompatibleOperator(n.Op.Pos, n.Op.Lexeme)
		}
	}

	var t types.ID
	if p.Types.IsFloatTy(t1) || p.Types.IsFloatTy(t2) {
		t = p.Types.CreateFloatTy()
	} else {
		t = p.Types.CreateIntegerTy()
	}
	p.Decor.PutType(n, t)
	p.Decor.PutIsLValue(n, false)
}

func (p *TypeCheckPass) visitRelational(n *ast.Relational) {
	p.visitExpr(n.Left)
	p.visitExpr(n.Right)
	t1 := p.Decor.GetType(n.Left)
	t2 := p.Decor.GetType(n.Right)

	if !p.Types.IsErrorTy(t1) && !p.Types.IsErrorTy(t2) && !p.Types.ComparableTypes(t1, t2, n.Op.Lexeme) {
		p.Errors.IncompatibleOperator(n.Op.Pos, n.Op.Lexeme)
	}
	p.Decor.PutType(n, p.Types.CreateBooleanTy())
	p.Decor.PutIsLValue(n, false)
}

func (p *TypeCheckPass) visitLogical(n *ast.Logical) {
	p.visitExpr(n.Left)
	p.visitExpr(n.Right)
	t1 := p.Decor.GetType(n.Left)
	t2 := p.Decor.GetType(n.Right)

	if !p.Types.IsErrorTy(t1) && !p.Types.IsErrorTy(t2) {
		if !p.Types.IsBooleanTy(t1) || !p.Types.IsBooleanTy(t2) {
			p.Errors.IncompatibleOperator(n.Op.Pos, n.Op.Lexeme)
		}
	}
	p.Decor.PutType(n, p.Types.CreateBooleanTy())
	p.Decor.PutIsLValue(n, false)
}

func (p *TypeCheckPass) visitArrayIndex(n *ast.ArrayIndex) {
	name := n.Ident.Lexeme
	tArr := p.Types.CreateErrorTy()

	if p.Symbols.FindInStack(name) == -1 {
		p.Errors.UndeclaredIdent(n.Ident.Pos, name)
		p.visitExpr(n.Index)
	} else {
		p.visitExpr(n.Index)
		idxTy := p.Decor.GetType(n.Index)
		idTy := p.Symbols.GetType(name)

		if !p.Types.IsArrayTy(idTy) {
			p.Errors.NonArrayInArrayAccess(n.Pos())
		} else {
			tArr = p.Types.GetArrayElemType(idTy)
		}
		if !p.Types.IsIntegerTy(idxTy) {
			p.Errors.NonIntegerIndexInArrayAccess(n.Index.Pos())
		}
	}

	p.Decor.PutType(n, tArr)
	p.Decor.PutIsLValue(n, true)
}
