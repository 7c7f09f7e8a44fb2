// Package decor implements the side table from syntax node to semantic
// attributes. Attributes are never attached to the tree nodes
// themselves (per spec §9's "dynamic-style attribute decoration" design
// note); instead each node is looked up by its own pointer identity,
// grounded on original_source's TreeDecoration get/put pairs.
package decor

import (
	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/symbols"
	"aslc/pkg/asl/types"
)

// Record holds every attribute a node may carry. Not every field is
// meaningful for every node kind: Scope is set only on Program and
// Function; Type/IsLValue are set by TypeCheckPass on expression nodes.
// Addr/Offset/Code are per-node code slots; CodePass does not write
// them, it returns each expression's address and instructions directly.
type Record struct {
	Scope    symbols.ScopeID
	HasScope bool

	Type    types.ID
	HasType bool

	IsLValue bool

	Addr   string
	Offset string
	Code   []Instruction
}

// Instruction is an opaque payload for a node's emitted code list; it is
// defined with a concrete shape in pkg/asl/codegen and referenced here
// only as an interface to avoid decor depending on codegen.
type Instruction interface {
	String() string
}

// Table maps ast.Node identity to its Record. A map keyed by the
// interface value is safe here because every concrete node is a
// pointer type, so identity comparison is pointer comparison.
type Table struct {
	records map[ast.Node]*Record
}

// New creates an empty decoration table.
func New() *Table {
	return &Table{records: map[ast.Node]*Record{}}
}

func (t *Table) rec(n ast.Node) *Record {
	r, ok := t.records[n]
	if !ok {
		r = &Record{}
		t.records[n] = r
	}
	return r
}

func (t *Table) PutScope(n ast.Node, s symbols.ScopeID) {
	r := t.rec(n)
	r.Scope, r.HasScope = s, true
}

func (t *Table) GetScope(n ast.Node) symbols.ScopeID {
	r, ok := t.records[n]
	if !ok || !r.HasScope {
		panic("decor: no scope decoration for node")
	}
	return r.Scope
}

func (t *Table) PutType(n ast.Node, ty types.ID) {
	r := t.rec(n)
	r.Type, r.HasType = ty, true
}

func (t *Table) GetType(n ast.Node) types.ID {
	r, ok := t.records[n]
	if !ok || !r.HasType {
		panic("decor: no type decoration for node")
	}
	return r.Type
}

func (t *Table) PutIsLValue(n ast.Node, b bool) { t.rec(n).IsLValue = b }

func (t *Table) GetIsLValue(n ast.Node) bool {
	r, ok := t.records[n]
	return ok && r.IsLValue
}

func (t *Table) PutAddr(n ast.Node, addr string) { t.rec(n).Addr = addr }
func (t *Table) GetAddr(n ast.Node) string        { return t.rec(n).Addr }

func (t *Table) PutOffset(n ast.Node, offset string) { t.rec(n).Offset = offset }
func (t *Table) GetOffset(n ast.Node) string          { return t.rec(n).Offset }

func (t *Table) PutCode(n ast.Node, code []Instruction) { t.rec(n).Code = code }
func (t *Table) GetCode(n ast.Node) []Instruction        { return t.rec(n).Code }
