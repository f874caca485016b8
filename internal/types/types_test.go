package types

import "testing"

func TestEquals_FunTyIgnoresParamNames(t *testing.T) {
	a := NewFunTy(NewInt(), []*Type{NewInt(), NewChar()}, []string{"x", "y"})
	b := NewFunTy(NewInt(), []*Type{NewInt(), NewChar()}, []string{"a", "b"})
	if !a.Equals(b) {
		t.Fatal("FunTy.Equals must ignore ParamNames")
	}
}

func TestEquals_FunTyDifferentParamCount(t *testing.T) {
	a := NewFunTy(NewInt(), []*Type{NewInt()}, []string{"x"})
	b := NewFunTy(NewInt(), []*Type{NewInt(), NewChar()}, []string{"x", "y"})
	if a.Equals(b) {
		t.Fatal("FunTy with different arity must not be equal")
	}
}

func TestEquals_StructTagMatchesDefinitionByName(t *testing.T) {
	tag := NewStructTag("point")
	def := NewStructDef("point", []*Type{NewInt(), NewInt()}, []string{"x", "y"})
	if !tag.Equals(def) {
		t.Fatal("a bare tag reference must equal a definition sharing its name")
	}
	if !def.Equals(tag) {
		t.Fatal("Equals must be symmetric for tag-vs-definition")
	}
}

func TestEquals_StructDifferentNamesNeverEqual(t *testing.T) {
	a := NewStructTag("point")
	b := NewStructTag("vector")
	if a.Equals(b) {
		t.Fatal("structs with different names must never be equal, tag or not")
	}
}

func TestEquals_StructDefinitionsCompareMembers(t *testing.T) {
	a := NewStructDef("point", []*Type{NewInt(), NewInt()}, []string{"x", "y"})
	b := NewStructDef("point", []*Type{NewInt(), NewChar()}, []string{"x", "y"})
	if a.Equals(b) {
		t.Fatal("struct definitions with differing member types must not be equal")
	}
}

func TestEquals_PointerAndArrayAreStructural(t *testing.T) {
	p1 := NewPointer(NewInt())
	p2 := NewPointer(NewInt())
	if !p1.Equals(p2) {
		t.Fatal("pointers to equal element types must be equal")
	}
	arr1 := NewArray(NewChar(), 4)
	arr2 := NewArray(NewChar(), 8)
	if arr1.Equals(arr2) {
		t.Fatal("arrays of different length must not be equal")
	}
}

func TestEquals_NilIsVoidAndOnlyEqualsNil(t *testing.T) {
	if !IsVoid(nil) {
		t.Fatal("nil must be treated as void")
	}
	var a, b *Type
	if !a.Equals(b) {
		t.Fatal("nil must equal nil (void == void)")
	}
	if a.Equals(NewInt()) {
		t.Fatal("void must not equal int")
	}
}

func TestDecay_ArrayBecomesPointerToElement(t *testing.T) {
	arr := NewArray(NewInt(), 10)
	decayed := arr.Decay()
	if !decayed.IsPointer() || !decayed.Elem.Equals(NewInt()) {
		t.Fatalf("expected array to decay to int*, got %s", decayed.String())
	}
}

func TestDecay_NonArrayIsUnchanged(t *testing.T) {
	i := NewInt()
	if i.Decay() != i {
		t.Fatal("Decay on a non-array type must return the same type unchanged")
	}
}

func TestString_RendersReadableForms(t *testing.T) {
	cases := []struct {
		ty   *Type
		want string
	}{
		{NewInt(), "int"},
		{NewChar(), "char"},
		{NewPointer(NewInt()), "int*"},
		{NewArray(NewChar(), 4), "char[4]"},
		{NewStructDef("point", nil, nil), "struct point"},
		{NewStructDef("", nil, nil), "struct <anonymous>"},
		{nil, "void"},
	}
	for _, c := range cases {
		if got := c.ty.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
