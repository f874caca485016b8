// Package types implements the value and function types of the source
// language and their structural equality.
//
// DESIGN CHOICE: A single Type struct tagged by Kind, rather than an
// interface with one implementation per kind, because:
// - Types form a small closed set (Int, Char, Pointer, Array, FunTy, Struct)
// - Structural equality is a single recursive function instead of a
//   type switch spread across N files
// - Construction sites stay explicit (NewInt(), NewPointer(elem), ...);
//   the zero value Type{} reads as int, because Int is Kind 0
package types

import (
	"fmt"
	"strings"
)

// Kind distinguishes the members of the Type sum type.
type Kind int

const (
	Int Kind = iota
	Char
	Pointer
	Array
	FunTy
	Struct
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Char:
		return "char"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case FunTy:
		return "funty"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// Type is the uniform representation for every type in the language.
//
// Only the fields relevant to Kind are meaningful; e.g. Elem is set for
// Pointer and Array, Len only for Array, Ret/Params/ParamNames only for
// FunTy, Name/MemberTypes/MemberNames only for Struct.
type Type struct {
	Kind Kind

	// Pointer, Array
	Elem *Type
	Len  uint32 // Array only

	// FunTy
	Ret        *Type
	Params     []*Type
	ParamNames []string

	// Struct
	Name        string
	MemberTypes []*Type
	MemberNames []string
}

// NewInt returns the builtin int type. Callers should treat the result as
// immutable; Type values are never mutated after construction.
func NewInt() *Type { return &Type{Kind: Int} }

// NewChar returns the builtin char type.
func NewChar() *Type { return &Type{Kind: Char} }

// NewPointer returns a pointer to elem.
func NewPointer(elem *Type) *Type { return &Type{Kind: Pointer, Elem: elem} }

// NewArray returns an array of n elements of type elem.
func NewArray(elem *Type, n uint32) *Type { return &Type{Kind: Array, Elem: elem, Len: n} }

// NewFunTy returns a function type. paramNames is carried for diagnostics
// and emission but ignored by Equals.
func NewFunTy(ret *Type, params []*Type, paramNames []string) *Type {
	return &Type{Kind: FunTy, Ret: ret, Params: params, ParamNames: paramNames}
}

// NewStructTag returns a reference to a struct by name with no body; it is
// only valid once a matching definition has been installed in the tag
// scope (see package scope). A tag with no name and no body is a
// construction error the caller must reject.
func NewStructTag(name string) *Type {
	return &Type{Kind: Struct, Name: name}
}

// NewStructDef returns a struct definition. name may be empty for an
// anonymous struct; the caller is responsible for synthesizing a unique
// tag to register it under (see OPEN QUESTIONS in DESIGN.md).
func NewStructDef(name string, memberTypes []*Type, memberNames []string) *Type {
	return &Type{Kind: Struct, Name: name, MemberTypes: memberTypes, MemberNames: memberNames}
}

// IsVoid reports whether t denotes the absence of a value. This language
// has no explicit void type; by convention a nil *Type stands for void
// (used for function calls whose result is discarded).
func IsVoid(t *Type) bool { return t == nil }

// Equals reports whether t and other are structurally identical.
//
// FunTy equality ignores ParamNames so that a declaration and a later
// definition or redeclaration match when only parameter naming differs
// (see §4.1). Struct equality compares by name alone when either side is
// a bare tag reference (no member information); two definitions compare
// full bodies.
func (t *Type) Equals(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Int, Char:
		return true
	case Pointer:
		return t.Elem.Equals(other.Elem)
	case Array:
		return t.Len == other.Len && t.Elem.Equals(other.Elem)
	case FunTy:
		if !t.Ret.Equals(other.Ret) {
			return false
		}
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equals(other.Params[i]) {
				return false
			}
		}
		return true
	case Struct:
		if t.Name != other.Name {
			return false
		}
		if len(t.MemberTypes) == 0 || len(other.MemberTypes) == 0 {
			// At least one side is a bare tag reference; names already matched.
			return true
		}
		if len(t.MemberTypes) != len(other.MemberTypes) {
			return false
		}
		for i := range t.MemberTypes {
			if !t.MemberTypes[i].Equals(other.MemberTypes[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsPointer reports whether t is a pointer type.
func (t *Type) IsPointer() bool { return t != nil && t.Kind == Pointer }

// IsInteger reports whether t is an integer-family scalar (int or char).
func (t *Type) IsInteger() bool { return t != nil && (t.Kind == Int || t.Kind == Char) }

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t != nil && t.Kind == Array }

// IsStruct reports whether t is a struct type.
func (t *Type) IsStruct() bool { return t != nil && t.Kind == Struct }

// Decay returns the pointer-to-element-type that an array decays to when
// used as a value, or t unchanged if it is not an array.
func (t *Type) Decay() *Type {
	if t.IsArray() {
		return NewPointer(t.Elem)
	}
	return t
}

func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case Int:
		return "int"
	case Char:
		return "char"
	case Pointer:
		return t.Elem.String() + "*"
	case Array:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Len)
	case FunTy:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s(%s)", t.Ret.String(), strings.Join(parts, ", "))
	case Struct:
		if t.Name != "" {
			return "struct " + t.Name
		}
		return "struct <anonymous>"
	default:
		return "<invalid type>"
	}
}
