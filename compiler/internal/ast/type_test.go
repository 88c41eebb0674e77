package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func id(name string) *Identifier { return NewIdentifier(Pos{Line: 1, Col: 1}, name) }

func named(d Decl) *NamedType {
	t := NewNamedType(id(d.DeclName().Name))
	t.Decl = d

	return t
}

func TestConvertibleTo(t *testing.T) {
	iface := NewInterfaceDecl(id("I"), nil)
	a := NewClassDecl(id("A"), nil, nil, nil)
	b := NewClassDecl(id("B"), nil, nil, nil)
	b.Base = a
	c := NewClassDecl(id("C"), nil, nil, nil)
	a.Interfaces = []*InterfaceDecl{iface}

	intArr := NewArrayType(Pos{}, IntType)
	aArr := NewArrayType(Pos{}, named(a))
	bArr := NewArrayType(Pos{}, named(b))

	testData := []struct {
		From, To Type
		Want     bool
	}{
		{From: IntType, To: IntType, Want: true},
		{From: IntType, To: DoubleType, Want: false},
		{From: DoubleType, To: IntType, Want: false},
		{From: NullType, To: NullType, Want: true},
		{From: NullType, To: named(a), Want: true},
		{From: NullType, To: named(iface), Want: true},
		{From: NullType, To: IntType, Want: false},
		{From: NullType, To: StringType, Want: false},
		{From: named(b), To: named(a), Want: true},
		{From: named(a), To: named(b), Want: false},
		{From: named(b), To: named(iface), Want: true},
		{From: named(c), To: named(iface), Want: false},
		{From: named(c), To: named(a), Want: false},
		{From: intArr, To: NewArrayType(Pos{}, IntType), Want: true},
		{From: bArr, To: aArr, Want: false},
		{From: VoidType, To: VoidType, Want: true},
		{From: VoidType, To: IntType, Want: false},
		{From: ErrorType, To: ErrorType, Want: true},
		{From: IntType, To: VoidType, Want: false},
	}

	for _, data := range testData {
		assert.Equal(t, data.Want, ConvertibleTo(data.From, data.To), "%v -> %v", data.From, data.To)
	}
}

func TestConvertibleTo_Reflexive(t *testing.T) {
	a := NewClassDecl(id("A"), nil, nil, nil)
	for _, tp := range []Type{IntType, DoubleType, BoolType, StringType, VoidType, NullType, ErrorType,
		named(a), NewArrayType(Pos{}, NewArrayType(Pos{}, named(a)))} {
		assert.True(t, ConvertibleTo(tp, tp), tp.String())
	}
}

func TestAncestors_Cycle(t *testing.T) {
	a := NewClassDecl(id("A"), nil, nil, nil)
	b := NewClassDecl(id("B"), nil, nil, nil)
	a.Base, b.Base = b, a

	assert.Equal(t, []*ClassDecl{b}, a.Ancestors())
	assert.True(t, a.IsSubclassOf(b))
}

func TestSameSignature(t *testing.T) {
	f := func(ret Type, formals ...Type) *FnDecl {
		var fs []*VarDecl
		for _, tp := range formals {
			fs = append(fs, NewVarDecl(id("p"), tp))
		}

		return NewFnDecl(id("f"), ret, fs, nil)
	}

	testData := []struct {
		A, B *FnDecl
		Want bool
	}{
		{A: f(VoidType), B: f(VoidType), Want: true},
		{A: f(IntType, IntType), B: f(IntType, IntType), Want: true},
		{A: f(IntType, IntType), B: f(IntType, BoolType), Want: false},
		{A: f(IntType, IntType), B: f(IntType), Want: false},
		{A: f(IntType), B: f(VoidType), Want: false},
	}

	for _, data := range testData {
		assert.Equal(t, data.Want, data.A.SameSignature(data.B))
	}
}

func TestLookupMember(t *testing.T) {
	x := NewVarDecl(id("x"), IntType)
	f := NewFnDecl(id("f"), VoidType, nil, nil)
	g := NewFnDecl(id("f"), VoidType, nil, nil)
	a := NewClassDecl(id("A"), nil, nil, []Decl{x, f})
	b := NewClassDecl(id("B"), NewNamedType(id("A")), nil, []Decl{g})
	b.Base = a

	assert.Equal(t, Decl(x), b.LookupMember("x"))
	assert.Equal(t, Decl(g), b.LookupMember("f"))
	assert.Nil(t, b.LookupMember("y"))
	assert.Equal(t, a, x.Class)
	assert.True(t, g.IsMethod())
}

func TestImplementsInterface(t *testing.T) {
	iface := NewInterfaceDecl(id("I"), nil)
	other := NewInterfaceDecl(id("J"), nil)

	a := NewClassDecl(id("A"), nil, nil, nil)
	a.Interfaces = []*InterfaceDecl{iface}

	b := NewClassDecl(id("B"), nil, nil, nil)
	b.Base = a

	c := NewClassDecl(id("C"), nil, nil, nil)
	c.Base = b

	assert.True(t, a.ImplementsInterface(iface))
	assert.True(t, c.ImplementsInterface(iface))
	assert.False(t, c.ImplementsInterface(other))

	assert.True(t, ConvertibleTo(named(c), named(iface)))
	assert.False(t, ConvertibleTo(named(c), named(other)))
	assert.False(t, ConvertibleTo(named(iface), named(c)))
}
