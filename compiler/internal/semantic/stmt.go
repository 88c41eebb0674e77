package semantic

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/diag"
)

func (a *Analyzer) checkBlock(e env, b *ast.StmtBlock) {
	b.Scope = a.table.Push()

	for _, d := range b.Decls {
		a.declare(d)
	}

	for _, d := range b.Decls {
		a.checkType(d.Type)
	}

	for _, s := range b.Stmts {
		a.checkStmt(e, s)
	}

	a.table.Pop()
}

func (a *Analyzer) checkStmt(e env, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.StmtBlock:
		a.checkBlock(e, s)
	case *ast.IfStmt:
		a.checkTest(e, s.Test)
		a.checkStmt(e, s.Body)

		if s.Else != nil {
			a.checkStmt(e, s.Else)
		}
	case *ast.WhileStmt:
		a.checkTest(e, s.Test)

		e.loops++
		a.checkStmt(e, s.Body)
	case *ast.ForStmt:
		a.expr(e, s.Init)
		a.checkTest(e, s.Test)
		a.expr(e, s.Step)

		e.loops++
		a.checkStmt(e, s.Body)
	case *ast.BreakStmt:
		if e.loops == 0 {
			a.report(diag.NewBreakOutsideLoop(s.Pos))
		}
	case *ast.ReturnStmt:
		a.checkReturn(e, s)
	case *ast.PrintStmt:
		for i, arg := range s.Args {
			t := a.expr(e, arg)

			if isError(t) || ast.Is(t, ast.Int) || ast.Is(t, ast.Bool) || ast.Is(t, ast.String) {
				continue
			}

			a.report(diag.NewPrintArgMismatch(arg.Position(), i+1, t))
		}
	case *ast.ExprStmt:
		a.expr(e, s.X)
	default:
		panic(s)
	}
}

func (a *Analyzer) checkTest(e env, x ast.Expr) {
	t := a.expr(e, x)

	if !isError(t) && !ast.Is(t, ast.Bool) {
		a.report(diag.NewTestNotBoolean(x.Position()))
	}
}

func (a *Analyzer) checkReturn(e env, s *ast.ReturnStmt) {
	given := ast.Type(ast.VoidType)

	if s.Expr != nil {
		given = a.expr(e, s.Expr)
	}

	expected := valueType(e.fn.ReturnType)

	if isError(given) || isError(expected) || ast.ConvertibleTo(given, expected) {
		return
	}

	a.report(diag.NewReturnMismatch(s.Pos, given, expected))
}
