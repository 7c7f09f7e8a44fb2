// Package types implements the ASL type descriptor registry: interned
// primitive singletons plus structurally-interned array and function
// types, and the structural predicates the checker and codegen rely on.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the shape of a Type.
type Kind int

const (
	KError Kind = iota
	KVoid
	KInteger
	KFloat
	KBoolean
	KCharacter
	KArray
	KFunction
)

// ID is an interned type's identity. Two Types with the same ID are the
// same type; for Array and Function this means structurally equal.
type ID int

// Type is one descriptor: a primitive, Error, Void, or a structural
// Array{size, elem} / Function{params, ret}.
type Type struct {
	id     ID
	kind   Kind
	size   uint32 // Array only
	elem   ID     // Array only
	params []ID   // Function only
	ret    ID     // Function only
}

func (t Type) Kind() Kind { return t.kind }
func (t Type) ID() ID     { return t.id }

// Registry interns every type descriptor created during a compilation.
// All primitives are singletons; Array and Function types are interned
// by their structural key so that repeated calls with the same shape
// return the same ID.
type Registry struct {
	types []Type

	errorID, voidID, intID, floatID, boolID, charID ID

	arrayKeys map[string]ID
	funcKeys  map[string]ID
}

// NewRegistry creates a Registry with the primitive singletons already
// interned.
func NewRegistry() *Registry {
	r := &Registry{arrayKeys: map[string]ID{}, funcKeys: map[string]ID{}}
	r.errorID = r.intern(Type{kind: KError})
	r.voidID = r.intern(Type{kind: KVoid})
	r.intID = r.intern(Type{kind: KInteger})
	r.floatID = r.intern(Type{kind: KFloat})
	r.boolID = r.intern(Type{kind: KBoolean})
	r.charID = r.intern(Type{kind: KCharacter})
	return r
}

func (r *Registry) intern(t Type) ID {
	id := ID(len(r.types))
	t.id = id
	r.types = append(r.types, t)
	return id
}

func (r *Registry) Get(id ID) Type { return r.types[id] }

func (r *Registry) CreateErrorTy() ID     { return r.errorID }
func (r *Registry) CreateVoidTy() ID      { return r.voidID }
func (r *Registry) CreateIntegerTy() ID   { return r.intID }
func (r *Registry) CreateFloatTy() ID     { return r.floatID }
func (r *Registry) CreateBooleanTy() ID   { return r.boolID }
func (r *Registry) CreateCharacterTy() ID { return r.charID }

// CreateArrayTy interns Array{size, elem}, returning the existing ID for
// a prior call with the same (size, elem).
func (r *Registry) CreateArrayTy(size uint32, elem ID) ID {
	key := fmt.Sprintf("array(%d,%d)", size, elem)
	if id, ok := r.arrayKeys[key]; ok {
		return id
	}
	id := r.intern(Type{kind: KArray, size: size, elem: elem})
	r.arrayKeys[key] = id
	return id
}

// CreateFunctionTy interns Function{params, ret}, returning the existing
// ID for a prior call with the same (params, ret).
func (r *Registry) CreateFunctionTy(params []ID, ret ID) ID {
	var sb strings.Builder
	sb.WriteString("func(")
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", p)
	}
	fmt.Fprintf(&sb, ")->%d", ret)
	key := sb.String()
	if id, ok := r.funcKeys[key]; ok {
		return id
	}
	cp := append([]ID(nil), params...)
	id := r.intern(Type{kind: KFunction, params: cp, ret: ret})
	r.funcKeys[key] = id
	return id
}

func (r *Registry) IsErrorTy(id ID) bool     { return r.Get(id).kind == KError }
func (r *Registry) IsVoidTy(id ID) bool      { return r.Get(id).kind == KVoid }
func (r *Registry) IsIntegerTy(id ID) bool   { return r.Get(id).kind == KInteger }
func (r *Registry) IsFloatTy(id ID) bool     { return r.Get(id).kind == KFloat }
func (r *Registry) IsBooleanTy(id ID) bool   { return r.Get(id).kind == KBoolean }
func (r *Registry) IsCharacterTy(id ID) bool { return r.Get(id).kind == KCharacter }
func (r *Registry) IsArrayTy(id ID) bool     { return r.Get(id).kind == KArray }
func (r *Registry) IsFunctionTy(id ID) bool  { return r.Get(id).kind == KFunction }

func (r *Registry) IsNumericTy(id ID) bool { return r.IsIntegerTy(id) || r.IsFloatTy(id) }

func (r *Registry) IsPrimitiveTy(id ID) bool {
	switch r.Get(id).kind {
	case KInteger, KFloat, KBoolean, KCharacter:
		return true
	}
	return false
}

func (r *Registry) IsPrimitiveNonVoidTy(id ID) bool { return r.IsPrimitiveTy(id) }

func (r *Registry) GetArrayElemType(id ID) ID { return r.Get(id).elem }
func (r *Registry) GetArraySize(id ID) uint32 { return r.Get(id).size }
func (r *Registry) GetFuncParams(id ID) []ID  { return r.Get(id).params }
func (r *Registry) GetFuncRet(id ID) ID       { return r.Get(id).ret }

// EqualTypes is identity equality after interning: structural by
// construction for Array/Function, identity for primitives.
func (r *Registry) EqualTypes(a, b ID) bool { return a == b }

// CopyableTypes reports whether a value of type `from` may be assigned,
// passed, or returned where `to` is expected: equal types always; the
// single implicit widening Integer->Float; arrays only when identical.
func (r *Registry) CopyableTypes(to, from ID) bool {
	if r.EqualTypes(to, from) {
		return true
	}
	return r.IsFloatTy(to) && r.IsIntegerTy(from)
}

// ComparableTypes implements the relational-operator compatibility
// table: ==/!= over equal primitives or numeric-numeric; ordering only
// over numeric; Character compares only for equality.
func (r *Registry) ComparableTypes(a, b ID, op string) bool {
	switch op {
	case "==", "!=":
		if r.IsNumericTy(a) && r.IsNumericTy(b) {
			return true
		}
		return r.EqualTypes(a, b) && r.IsPrimitiveTy(a)
	case "<", "<=", ">", ">=":
		return r.IsNumericTy(a) && r.IsNumericTy(b)
	default:
		return false
	}
}

// SizeOf returns the storage size in elements: 1 for primitives, the
// declared size for arrays of primitives.
func (r *Registry) SizeOf(id ID) uint32 {
	t := r.Get(id)
	if t.kind == KArray {
		return t.size
	}
	return 1
}

func (r *Registry) TypeName(id ID) string {
	t := r.Get(id)
	switch t.kind {
	case KError:
		return "error-type"
	case KVoid:
		return "void"
	case KInteger:
		return "int"
	case KFloat:
		return "float"
	case KBoolean:
		return "bool"
	case KCharacter:
		return "char"
	case KArray:
		return fmt.Sprintf("array[%d] of %s", t.size, r.TypeName(t.elem))
	case KFunction:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = r.TypeName(p)
		}
		return fmt.Sprintf("func(%s):%s", strings.Join(parts, ", "), r.TypeName(t.ret))
	default:
		return "?"
	}
}
