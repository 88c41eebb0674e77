package ast

import (
	"github.com/xiaobogaga/decaf/compiler/internal/scope"
	"github.com/xiaobogaga/decaf/compiler/internal/tac"
)

type (
	// Decl is one of *VarDecl, *FnDecl, *ClassDecl, *InterfaceDecl.
	Decl interface {
		Node
		DeclName() *Identifier
		decl()
	}

	VarDecl struct {
		Name *Identifier
		Type Type

		// Class owns the variable when it is an instance field.
		Class  *ClassDecl
		Offset int

		// Loc is assigned by code generation for globals, params and locals.
		Loc *tac.Location
	}

	FnDecl struct {
		Name       *Identifier
		Formals    []*VarDecl
		ReturnType Type
		Body       *StmtBlock // nil for interface prototypes

		Scope scope.ID

		Class     *ClassDecl
		Interface *InterfaceDecl

		Slot  int
		Label string
	}

	ClassDecl struct {
		Name       *Identifier
		Extends    *NamedType
		Implements []*NamedType
		Members    []Decl

		Scope scope.ID
		State CheckState

		// Base and Interfaces are the resolved Extends and Implements.
		Base       *ClassDecl
		Interfaces []*InterfaceDecl

		Layout *ClassLayout
	}

	InterfaceDecl struct {
		Name    *Identifier
		Members []*FnDecl

		Scope scope.ID
		State CheckState
	}

	CheckState int

	// ClassLayout is the object and dispatch layout computed by code generation.
	ClassLayout struct {
		Fields  []*VarDecl
		Methods []*FnDecl // by slot
		Size    int

		Emitted bool
	}
)

const (
	Unchecked CheckState = iota
	Checking
	Checked
)

func (*VarDecl) decl()       {}
func (*FnDecl) decl()        {}
func (*ClassDecl) decl()     {}
func (*InterfaceDecl) decl() {}

func NewVarDecl(name *Identifier, t Type) *VarDecl {
	return &VarDecl{Name: name, Type: t}
}

func NewFnDecl(name *Identifier, ret Type, formals []*VarDecl, body *StmtBlock) *FnDecl {
	return &FnDecl{Name: name, ReturnType: ret, Formals: formals, Body: body, Scope: scope.None, Slot: -1}
}

func NewClassDecl(name *Identifier, ext *NamedType, impl []*NamedType, members []Decl) *ClassDecl {
	c := &ClassDecl{Name: name, Extends: ext, Implements: impl, Members: members, Scope: scope.None}

	for _, m := range members {
		switch m := m.(type) {
		case *VarDecl:
			m.Class = c
		case *FnDecl:
			m.Class = c
		}
	}

	return c
}

func NewInterfaceDecl(name *Identifier, members []*FnDecl) *InterfaceDecl {
	d := &InterfaceDecl{Name: name, Members: members, Scope: scope.None}

	for _, m := range members {
		m.Interface = d
	}

	return d
}

func (d *VarDecl) DeclName() *Identifier       { return d.Name }
func (d *FnDecl) DeclName() *Identifier        { return d.Name }
func (d *ClassDecl) DeclName() *Identifier     { return d.Name }
func (d *InterfaceDecl) DeclName() *Identifier { return d.Name }

func (d *VarDecl) Position() Pos       { return d.Name.Pos }
func (d *FnDecl) Position() Pos        { return d.Name.Pos }
func (d *ClassDecl) Position() Pos     { return d.Name.Pos }
func (d *InterfaceDecl) Position() Pos { return d.Name.Pos }

func (d *VarDecl) IsField() bool { return d.Class != nil }

func (d *FnDecl) IsMethod() bool { return d.Class != nil || d.Interface != nil }

func (d *FnDecl) HasReturn() bool { return !Is(d.ReturnType, Void) }

// SameSignature compares return types and formal types in order.
func (d *FnDecl) SameSignature(o *FnDecl) bool {
	if !Equal(d.ReturnType, o.ReturnType) || len(d.Formals) != len(o.Formals) {
		return false
	}

	for i, f := range d.Formals {
		if !Equal(f.Type, o.Formals[i].Type) {
			return false
		}
	}

	return true
}

// Ancestors returns the base chain, nearest first.
// The walk stops if it meets a class twice.
func (c *ClassDecl) Ancestors() (r []*ClassDecl) {
	seen := map[*ClassDecl]bool{c: true}

	for b := c.Base; b != nil && !seen[b]; b = b.Base {
		seen[b] = true
		r = append(r, b)
	}

	return r
}

func (c *ClassDecl) IsSubclassOf(target *ClassDecl) bool {
	if c == target {
		return true
	}

	for _, a := range c.Ancestors() {
		if a == target {
			return true
		}
	}

	return false
}

// ImplementsInterface reports whether c or any of its ancestors implements i.
func (c *ClassDecl) ImplementsInterface(i *InterfaceDecl) bool {
	for _, x := range append([]*ClassDecl{c}, c.Ancestors()...) {
		for _, ii := range x.Interfaces {
			if ii == i {
				return true
			}
		}
	}

	return false
}

// OwnMember finds a member declared directly in c.
func (c *ClassDecl) OwnMember(name string) Decl {
	for _, m := range c.Members {
		if m.DeclName().Name == name {
			return m
		}
	}

	return nil
}

// LookupMember finds a member of c or of its nearest ancestor declaring it.
func (c *ClassDecl) LookupMember(name string) Decl {
	if m := c.OwnMember(name); m != nil {
		return m
	}

	for _, a := range c.Ancestors() {
		if m := a.OwnMember(name); m != nil {
			return m
		}
	}

	return nil
}

func (c *ClassDecl) Type() *NamedType {
	return &NamedType{Pos: c.Name.Pos, Name: c.Name, Decl: c}
}

func (d *InterfaceDecl) LookupMethod(name string) *FnDecl {
	for _, m := range d.Members {
		if m.Name.Name == name {
			return m
		}
	}

	return nil
}
