package semantic

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/diag"
	"tlog.app/go/tlog"
)

func isError(t ast.Type) bool { return ast.Is(t, ast.Error) }

// valueType is t, or error if t names an unresolved class.
func valueType(t ast.Type) ast.Type {
	switch x := t.(type) {
	case *ast.NamedType:
		if x.Decl == nil {
			return ast.ErrorType
		}
	case *ast.ArrayType:
		if isError(valueType(x.Elem)) {
			return ast.ErrorType
		}
	}

	return t
}

// expr computes and records the type of x.
func (a *Analyzer) expr(e env, x ast.Expr) ast.Type {
	t := a.typeOf(e, x)
	x.SetType(t)

	if tlog.If("semantic_expr") {
		tlog.Printw("expr type", "pos", x.Position(), "typ", tlog.NextAsType, x, "type", t.String())
	}

	return t
}

func (a *Analyzer) typeOf(e env, x ast.Expr) ast.Type {
	switch x := x.(type) {
	case *ast.IntConstant:
		return ast.IntType
	case *ast.DoubleConstant:
		return ast.DoubleType
	case *ast.BoolConstant:
		return ast.BoolType
	case *ast.StringConstant:
		return ast.StringType
	case *ast.NullConstant:
		return ast.NullType
	case *ast.EmptyExpr:
		return ast.VoidType
	case *ast.ReadIntegerExpr:
		return ast.IntType
	case *ast.ReadLineExpr:
		return ast.StringType
	case *ast.ArithmeticExpr:
		return a.arithmetic(e, x)
	case *ast.RelationalExpr:
		l, r := a.expr(e, x.Left), a.expr(e, x.Right)

		if !isError(l) && !isError(r) && !sameValueType(l, r) {
			a.report(diag.NewIncompatibleOperands(x.Pos, x.Op, l, r))
		}

		return ast.BoolType
	case *ast.EqualityExpr:
		l, r := a.expr(e, x.Left), a.expr(e, x.Right)

		if !isError(l) && !isError(r) && !comparable(l, r) {
			a.report(diag.NewIncompatibleOperands(x.Pos, x.Op, l, r))
		}

		return ast.BoolType
	case *ast.LogicalExpr:
		return a.logical(e, x)
	case *ast.AssignExpr:
		return a.assign(e, x)
	case *ast.This:
		if e.class == nil {
			a.report(diag.NewThisOutsideClassScope(x.Pos))
			return ast.ErrorType
		}

		return e.class.Type()
	case *ast.ArrayAccess:
		return a.arrayAccess(e, x)
	case *ast.FieldAccess:
		return a.fieldAccess(e, x)
	case *ast.Call:
		return a.call(e, x)
	case *ast.NewExpr:
		c, ok := a.global(x.Class.Name.Name).(*ast.ClassDecl)
		if !ok {
			a.report(diag.NewIdentifierNotDeclared(x.Class.Name, diag.LookingForClass))
			return ast.ErrorType
		}

		x.Class.Decl = c

		return x.Class
	case *ast.NewArrayExpr:
		if t := a.expr(e, x.Size); !isError(t) && !ast.Is(t, ast.Int) {
			a.report(diag.NewNewArraySizeNotInteger(x.Size.Position()))
		}

		a.checkType(x.Elem)

		if isError(valueType(x.Elem)) {
			return ast.ErrorType
		}

		return ast.NewArrayType(x.Pos, x.Elem)
	default:
		panic(x)
	}
}

func comparable(l, r ast.Type) bool {
	if ast.Is(l, ast.Void) || ast.Is(r, ast.Void) {
		return false
	}

	return ast.ConvertibleTo(l, r) || ast.ConvertibleTo(r, l)
}

func (a *Analyzer) arithmetic(e env, x *ast.ArithmeticExpr) ast.Type {
	r := a.expr(e, x.Right)

	if x.Left == nil {
		if isError(r) {
			return r
		}

		if !ast.IsNumeric(r) {
			a.report(diag.NewIncompatibleOperand(x.Pos, x.Op, r))
			return ast.ErrorType
		}

		return r
	}

	l := a.expr(e, x.Left)

	if isError(l) || isError(r) {
		return ast.ErrorType
	}

	if !sameValueType(l, r) {
		a.report(diag.NewIncompatibleOperands(x.Pos, x.Op, l, r))
		return ast.ErrorType
	}

	return l
}

// sameValueType accepts binary operands of one non-void type.
func sameValueType(l, r ast.Type) bool {
	return !ast.Is(l, ast.Void) && ast.Equal(l, r)
}

func (a *Analyzer) logical(e env, x *ast.LogicalExpr) ast.Type {
	r := a.expr(e, x.Right)

	if x.Left == nil {
		if !isError(r) && !ast.Is(r, ast.Bool) {
			a.report(diag.NewIncompatibleOperand(x.Pos, x.Op, r))
		}

		return ast.BoolType
	}

	l := a.expr(e, x.Left)

	if !isError(l) && !isError(r) && !(ast.Is(l, ast.Bool) && ast.Is(r, ast.Bool)) {
		a.report(diag.NewIncompatibleOperands(x.Pos, x.Op, l, r))
	}

	return ast.BoolType
}

func (a *Analyzer) assign(e env, x *ast.AssignExpr) ast.Type {
	l := a.expr(e, x.Left)
	r := a.expr(e, x.Right)

	if !ast.Addressable(x.Left) {
		a.report(diag.NewInvalidAssignTarget(x.Left.Position()))
		return ast.ErrorType
	}

	if isError(l) || isError(r) {
		return l
	}

	if !ast.ConvertibleTo(r, l) {
		a.report(diag.NewIncompatibleOperands(x.Pos, ast.OpAssign, l, r))
	}

	return l
}

func (a *Analyzer) arrayAccess(e env, x *ast.ArrayAccess) ast.Type {
	bt := a.expr(e, x.Base)

	if st := a.expr(e, x.Subscript); !isError(st) && !ast.Is(st, ast.Int) {
		a.report(diag.NewSubscriptNotInteger(x.Subscript.Position()))
	}

	if isError(bt) {
		return ast.ErrorType
	}

	at, ok := bt.(*ast.ArrayType)
	if !ok {
		a.report(diag.NewBracketsOnNonArray(x.Pos))
		return ast.ErrorType
	}

	return valueType(at.Elem)
}

func (a *Analyzer) fieldAccess(e env, x *ast.FieldAccess) ast.Type {
	if x.Base == nil {
		v, ok := a.lookup(e, x.Field.Name).(*ast.VarDecl)
		if !ok {
			a.report(diag.NewIdentifierNotDeclared(x.Field, diag.LookingForVariable))
			return ast.ErrorType
		}

		x.Decl = v

		return valueType(v.Type)
	}

	bt := a.expr(e, x.Base)
	if isError(bt) {
		return ast.ErrorType
	}

	if c := classOf(bt); c != nil {
		if v, ok := c.LookupMember(x.Field.Name).(*ast.VarDecl); ok {
			x.Decl = v
			return valueType(v.Type)
		}
	}

	a.report(diag.NewFieldNotFoundInBase(x.Field, bt))

	return ast.ErrorType
}

func classOf(t ast.Type) *ast.ClassDecl {
	nt, ok := t.(*ast.NamedType)
	if !ok {
		return nil
	}

	c, _ := nt.Decl.(*ast.ClassDecl)

	return c
}

func (a *Analyzer) call(e env, x *ast.Call) ast.Type {
	var fn *ast.FnDecl

	if x.Base == nil {
		fn, _ = a.lookup(e, x.Field.Name).(*ast.FnDecl)
		if fn == nil {
			a.report(diag.NewIdentifierNotDeclared(x.Field, diag.LookingForFunction))
			a.actuals(e, x)

			return ast.ErrorType
		}
	} else {
		bt := a.expr(e, x.Base)
		if isError(bt) {
			a.actuals(e, x)
			return ast.ErrorType
		}

		if _, ok := bt.(*ast.ArrayType); ok && x.Field.Name == "length" {
			x.ArrayLength = true

			if n := len(a.actuals(e, x)); n != 0 {
				a.report(diag.NewNumArgsMismatch(x.Field, 0, n))
			}

			return ast.IntType
		}

		if nt, ok := bt.(*ast.NamedType); ok {
			switch d := nt.Decl.(type) {
			case *ast.ClassDecl:
				fn, _ = d.LookupMember(x.Field.Name).(*ast.FnDecl)
			case *ast.InterfaceDecl:
				fn = d.LookupMethod(x.Field.Name)
			}
		}

		if fn == nil {
			a.report(diag.NewFieldNotFoundInBase(x.Field, bt))
			a.actuals(e, x)

			return ast.ErrorType
		}
	}

	x.Fn = fn

	types := a.actuals(e, x)

	if len(types) != len(fn.Formals) {
		a.report(diag.NewNumArgsMismatch(x.Field, len(fn.Formals), len(types)))
		return valueType(fn.ReturnType)
	}

	for i, t := range types {
		want := fn.Formals[i].Type

		if isError(t) || isError(valueType(want)) || ast.ConvertibleTo(t, want) {
			continue
		}

		a.report(diag.NewArgMismatch(x.Actuals[i].Position(), i+1, t, want))
	}

	return valueType(fn.ReturnType)
}

func (a *Analyzer) actuals(e env, x *ast.Call) []ast.Type {
	types := make([]ast.Type, len(x.Actuals))

	for i, arg := range x.Actuals {
		types[i] = a.expr(e, arg)
	}

	return types
}
