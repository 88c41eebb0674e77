package ast

import "github.com/xiaobogaga/decaf/compiler/internal/scope"

type (
	// Stmt is a sealed sum of statement nodes.
	Stmt interface {
		Node
		stmt()
	}

	StmtBlock struct {
		Pos
		Decls []*VarDecl
		Stmts []Stmt

		Scope scope.ID
	}

	IfStmt struct {
		Pos
		Test Expr
		Body Stmt
		Else Stmt // may be nil
	}

	WhileStmt struct {
		Pos
		Test Expr
		Body Stmt
	}

	ForStmt struct {
		Pos
		Init, Test, Step Expr
		Body             Stmt
	}

	BreakStmt struct {
		Pos
	}

	ReturnStmt struct {
		Pos
		Expr Expr // nil for a bare return
	}

	PrintStmt struct {
		Pos
		Args []Expr
	}

	ExprStmt struct {
		X Expr
	}
)

func (*StmtBlock) stmt()  {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}
func (*ForStmt) stmt()    {}
func (*BreakStmt) stmt()  {}
func (*ReturnStmt) stmt() {}
func (*PrintStmt) stmt()  {}
func (*ExprStmt) stmt()   {}

func (s *ExprStmt) Position() Pos { return s.X.Position() }

func NewStmtBlock(pos Pos, decls []*VarDecl, stmts []Stmt) *StmtBlock {
	return &StmtBlock{Pos: pos, Decls: decls, Stmts: stmts, Scope: scope.None}
}
