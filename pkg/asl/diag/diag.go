// Package diag implements the ordered diagnostic collector that
// SymbolPass and TypeCheckPass append to. Diagnostics are data, never
// Go errors: they describe a semantic fault at a source position and
// flow through the sink to the driver, which decides whether and how
// to report them.
package diag

import (
	"fmt"
	"strings"

	"aslc/pkg/asl/token"
)

// Kind is the closed set of diagnostic kinds this compiler can emit.
type Kind int

const (
	DeclaredIdent Kind = iota
	UndeclaredIdent
	IncompatibleAssignment
	NonReferenceableLeftExpr
	NonReferenceableExpression
	BooleanRequired
	IsNotCallable
	IsNotFunction
	NumberOfParameters
	IncompatibleParameter
	IncompatibleReturn
	ReadWriteRequireBasic
	NonArrayInArrayAccess
	NonIntegerIndexInArrayAccess
	IncompatibleOperator
	NoMainProperlyDeclared
)

var kindNames = [...]string{
	DeclaredIdent:                "declaredIdent",
	UndeclaredIdent:              "undeclaredIdent",
	IncompatibleAssignment:       "incompatibleAssignment",
	NonReferenceableLeftExpr:     "nonReferenceableLeftExpr",
	NonReferenceableExpression:   "nonReferenceableExpression",
	BooleanRequired:              "booleanRequired",
	IsNotCallable:                "isNotCallable",
	IsNotFunction:                "isNotFunction",
	NumberOfParameters:           "numberOfParameters",
	IncompatibleParameter:        "incompatibleParameter",
	IncompatibleReturn:           "incompatibleReturn",
	ReadWriteRequireBasic:        "readWriteRequireBasic",
	NonArrayInArrayAccess:        "nonArrayInArrayAccess",
	NonIntegerIndexInArrayAccess: "nonIntegerIndexInArrayAccess",
	IncompatibleOperator:         "incompatibleOperator",
	NoMainProperlyDeclared:       "noMainProperlyDeclared",
}

func (k Kind) String() string { return kindNames[k] }

// Diagnostic is one reported semantic fault.
type Diagnostic struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Message)
}

// Sink collects diagnostics in insertion order. A zero Sink is ready to
// use.
type Sink struct {
	items []Diagnostic
}

func (s *Sink) add(k Kind, pos token.Position, format string, args ...any) {
	s.items = append(s.items, Diagnostic{Kind: k, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) DeclaredIdent(pos token.Position, name string) {
	s.add(DeclaredIdent, pos, "identifier %q already declared in this scope", name)
}

func (s *Sink) UndeclaredIdent(pos token.Position, name string) {
	s.add(UndeclaredIdent, pos, "identifier %q is not declared", name)
}

func (s *Sink) IncompatibleAssignment(pos token.Position) {
	s.add(IncompatibleAssignment, pos, "incompatible types in assignment")
}

func (s *Sink) NonReferenceableLeftExpr(pos token.Position) {
	s.add(NonReferenceableLeftExpr, pos, "left side of assignment is not referenceable")
}

func (s *Sink) NonReferenceableExpression(pos token.Position) {
	s.add(NonReferenceableExpression, pos, "expression is not referenceable")
}

func (s *Sink) BooleanRequired(pos token.Position) {
	s.add(BooleanRequired, pos, "a boolean expression is required")
}

func (s *Sink) IsNotCallable(pos token.Position, name string) {
	s.add(IsNotCallable, pos, "%q is not callable", name)
}

func (s *Sink) IsNotFunction(pos token.Position, name string) {
	s.add(IsNotFunction, pos, "%q does not return a value", name)
}

func (s *Sink) NumberOfParameters(pos token.Position, name string) {
	s.add(NumberOfParameters, pos, "wrong number of arguments calling %q", name)
}

func (s *Sink) IncompatibleParameter(pos token.Position, argPos int, name string) {
	s.add(IncompatibleParameter, pos, "incompatible type for argument %d of %q", argPos, name)
}

func (s *Sink) IncompatibleReturn(pos token.Position) {
	s.add(IncompatibleReturn, pos, "incompatible return type")
}

func (s *Sink) ReadWriteRequireBasic(pos token.Position) {
	s.add(ReadWriteRequireBasic, pos, "read/write require a primitive type")
}

func (s *Sink) NonArrayInArrayAccess(pos token.Position) {
	s.add(NonArrayInArrayAccess, pos, "indexed expression is not an array")
}

func (s *Sink) NonIntegerIndexInArrayAccess(pos token.Position) {
	s.add(NonIntegerIndexInArrayAccess, pos, "array index is not an integer")
}

func (s *Sink) IncompatibleOperator(pos token.Position, op string) {
	s.add(IncompatibleOperator, pos, "incompatible operand types for operator %q", op)
}

func (s *Sink) NoMainProperlyDeclared(pos token.Position) {
	s.add(NoMainProperlyDeclared, pos, "program has no properly declared main function")
}

// Items returns the diagnostics in insertion order.
func (s *Sink) Items() []Diagnostic { return s.items }

// HasErrors reports whether any diagnostic was added.
func (s *Sink) HasErrors() bool { return len(s.items) > 0 }

// String prints every diagnostic, one per line, in insertion order.
func (s *Sink) String() string {
	var sb strings.Builder
	for _, d := range s.items {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
