package ast

import (
	"fmt"

	"github.com/xiaobogaga/decaf/compiler/internal/scope"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Pos is a source position, 1-based.
	Pos struct {
		Line int
		Col  int
	}

	Node interface {
		Position() Pos
	}

	Identifier struct {
		Pos
		Name string
	}

	Program struct {
		Decls []Decl

		Scope scope.ID
	}
)

func (p Pos) Position() Pos { return p }

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Before orders positions by line then column.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}

	return p.Col < q.Col
}

func (p Pos) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%d:%d", p.Line, p.Col)
}

func NewIdentifier(pos Pos, name string) *Identifier {
	return &Identifier{Pos: pos, Name: name}
}

func (id *Identifier) String() string { return id.Name }

func NewProgram(decls []Decl) *Program {
	return &Program{Decls: decls, Scope: scope.None}
}
