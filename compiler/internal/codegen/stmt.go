package codegen

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/tac"
	"tlog.app/go/errors"
)

// generateBlockCode re-enters the frame analysis built for b.
func (g *CodeGenerator) generateBlockCode(e env, b *ast.StmtBlock) {
	prev := g.table.Reenter(b.Scope)

	for _, d := range b.Decls {
		setLoc(d, e.frame.alloc(d.Name.Name))
	}

	for _, s := range b.Stmts {
		g.generateStmtCode(e, s)
	}

	g.table.Reenter(prev)
}

func (g *CodeGenerator) generateStmtCode(e env, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.StmtBlock:
		g.generateBlockCode(e, s)
	case *ast.IfStmt:
		g.generateIfStmtCode(e, s)
	case *ast.WhileStmt:
		g.generateWhileStmtCode(e, s)
	case *ast.ForStmt:
		g.generateForStmtCode(e, s)
	case *ast.BreakStmt:
		if e.exit == "" {
			panic(errors.New("%v: break outside of a loop", s.Pos))
		}

		g.out.Goto(e.exit)
	case *ast.ReturnStmt:
		var v *tac.Location

		if s.Expr != nil {
			v = g.generateExprCode(e, s.Expr)
		}

		g.out.Return(v)
	case *ast.PrintStmt:
		g.generatePrintStmtCode(e, s)
	case *ast.ExprStmt:
		g.generateExprCode(e, s.X)
	default:
		panic(errors.New("unsupported statement %T", s))
	}
}

func (g *CodeGenerator) generateIfStmtCode(e env, s *ast.IfStmt) {
	test := g.generateExprCode(e, s.Test)

	skip := g.out.NewLabel()
	g.out.IfZ(test, skip)

	g.generateStmtCode(e, s.Body)

	if s.Else == nil {
		g.out.Label(skip)
		return
	}

	end := g.out.NewLabel()
	g.out.Goto(end)

	g.out.Label(skip)
	g.generateStmtCode(e, s.Else)
	g.out.Label(end)
}

func (g *CodeGenerator) generateWhileStmtCode(e env, s *ast.WhileStmt) {
	top := g.out.NewLabel()
	e.exit = g.out.NewLabel()

	g.out.Label(top)

	test := g.generateExprCode(e, s.Test)
	g.out.IfZ(test, e.exit)

	g.generateStmtCode(e, s.Body)

	g.out.Goto(top)
	g.out.Label(e.exit)
}

func (g *CodeGenerator) generateForStmtCode(e env, s *ast.ForStmt) {
	g.generateExprCode(e, s.Init)

	top := g.out.NewLabel()
	e.exit = g.out.NewLabel()

	g.out.Label(top)

	test := g.generateExprCode(e, s.Test)
	g.out.IfZ(test, e.exit)

	g.generateStmtCode(e, s.Body)
	g.generateExprCode(e, s.Step)

	g.out.Goto(top)
	g.out.Label(e.exit)
}

// generatePrintStmtCode prints the arguments in order, then a newline.
func (g *CodeGenerator) generatePrintStmtCode(e env, s *ast.PrintStmt) {
	for _, arg := range s.Args {
		v := g.generateExprCode(e, arg)

		switch t := arg.Type(); {
		case ast.Is(t, ast.Int):
			g.out.BuiltInCall(tac.PrintInt, nil, v)
		case ast.Is(t, ast.Bool):
			g.out.BuiltInCall(tac.PrintBool, nil, v)
		case ast.Is(t, ast.String):
			g.out.BuiltInCall(tac.PrintString, nil, v)
		default:
			panic(errors.New("%v: cannot print %v", arg.Position(), t))
		}
	}

	nl := g.temp(e)
	g.out.LoadStringConstant(nl, "\n")
	g.out.BuiltInCall(tac.PrintString, nil, nl)
}
