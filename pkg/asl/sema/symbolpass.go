// Package sema implements SymbolPass and TypeCheckPass: the two tree
// walks that populate scopes, assign declaration types, and compute a
// type and l-value flag for every expression, rule for rule as
// original_source/SymbolsListener.cpp and TypeCheckListener.cpp do.
package sema

import (
	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/decor"
	"aslc/pkg/asl/diag"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/types"
)

// SymbolPass walks the tree once, declaring every function, parameter,
// and local variable and attaching a scope id to Program and Function
// nodes.
type SymbolPass struct {
	Types   *types.Registry
	Symbols *symbols.Table
	Decor   *decor.Table
	Errors  *diag.Sink
}

// NewSymbolPass wires a SymbolPass to shared registries; all four must
// outlive the pass, since TypeCheckPass and CodePass read what it wrote.
func NewSymbolPass(reg *types.Registry, syms *symbols.Table, dec *decor.Table, errs *diag.Sink) *SymbolPass {
	return &SymbolPass{Types: reg, Symbols: syms, Decor: dec, Errors: errs}
}

// Run walks prog, declaring $global$ and every function.
func (p *SymbolPass) Run(prog *ast.Program) {
	sc := p.Symbols.PushNewScope("$global$")
	p.Decor.PutScope(prog, sc)
	for _, fn := range prog.Functions {
		p.visitFunction(fn)
	}
	p.Symbols.PopScope()
}

func (p *SymbolPass) visitFunction(fn *ast.Function) {
	sc := p.Symbols.PushNewScope(fn.Name.Lexeme)
	p.Decor.PutScope(fn, sc)

	for _, param := range fn.Params {
		p.Symbols.AddParameter(param.Name.Lexeme, p.resolveType(param.Type))
	}
	p.visitDeclarations(fn.Decls)

	p.Symbols.PopScope()

	if p.Symbols.FindInCurrentScope(fn.Name.Lexeme) {
		p.Errors.DeclaredIdent(fn.Name.Pos, fn.Name.Lexeme)
		return
	}

	retTy := p.Types.CreateVoidTy()
	if fn.RetType != nil {
		retTy = p.resolveBasicType(fn.RetType)
	}
	paramTys := make([]types.ID, len(fn.Params))
	for i, param := range fn.Params {
		paramTys[i] = p.resolveType(param.Type)
	}
	fnTy := p.Types.CreateFunctionTy(paramTys, retTy)
	p.Symbols.AddFunction(fn.Name.Lexeme, fnTy)
}

func (p *SymbolPass) visitDeclarations(decls *ast.Declarations) {
	for _, vd := range decls.Vars {
		ty := p.resolveType(vd.Type)
		for _, name := range vd.Names {
			if p.Symbols.FindInCurrentScope(name.Lexeme) {
				p.Errors.DeclaredIdent(name.Pos, name.Lexeme)
				continue
			}
			p.Symbols.AddLocalVar(name.Lexeme, ty)
		}
	}
}

// resolveType decorates and returns the type id of a Type node,
// re-resolving it each time it is referenced (parameter lists and
// declarations reuse Type nodes independently, so nothing is cached
// on the node itself beyond this call's return value).
func (p *SymbolPass) resolveType(t *ast.Type) types.ID {
	if t.Basic != nil {
		ty := p.resolveBasicType(t.Basic)
		p.Decor.PutType(t, ty)
		return ty
	}
	elem := p.resolveBasicType(t.Array.Elem)
	size := parseArraySize(t.Array.SizeTok.Lexeme)
	ty := p.Types.CreateArrayTy(size, elem)
	p.Decor.PutType(t, ty)
	return ty
}

func (p *SymbolPass) resolveBasicType(b *ast.BasicType) types.ID {
	var ty types.ID
	switch b.Tok.Lexeme {
	case "int":
		ty = p.Types.CreateIntegerTy()
	case "float":
		ty = p.Types.CreateFloatTy()
	case "bool":
		ty = p.Types.CreateBooleanTy()
	case "char":
		ty = p.Types.CreateCharacterTy()
	default:
		ty = p.Types.CreateErrorTy()
	}
	p.Decor.PutType(b, ty)
	return ty
}

func parseArraySize(lexeme string) uint32 {
	var n uint32
	for _, c := range lexeme {
		n = n*10 + uint32(c-'0')
	}
	return n
}
