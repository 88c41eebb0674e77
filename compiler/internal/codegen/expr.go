package codegen

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/semantic"
	"github.com/xiaobogaga/decaf/compiler/internal/tac"
	"tlog.app/go/errors"
)

const (
	outOfBoundsMsg  = "Decaf runtime error: Array subscript out of bounds\n"
	badArraySizeMsg = "Decaf runtime error: Array size is <= 0\n"
)

var arithmeticOps = map[ast.Op]tac.Opcode{
	ast.OpAdd: tac.Add,
	ast.OpSub: tac.Sub,
	ast.OpMul: tac.Mul,
	ast.OpDiv: tac.Div,
	ast.OpMod: tac.Mod,
}

// generateExprCode emits x and returns the location holding its value.
// It returns nil for expressions without a value.
func (g *CodeGenerator) generateExprCode(e env, x ast.Expr) *tac.Location {
	switch x := x.(type) {
	case *ast.IntConstant:
		return g.constant(e, x.Value)
	case *ast.BoolConstant:
		if x.Value {
			return g.constant(e, 1)
		}

		return g.constant(e, 0)
	case *ast.StringConstant:
		t := g.temp(e)
		g.out.LoadStringConstant(t, x.Value)

		return t
	case *ast.NullConstant:
		return g.constant(e, 0)
	case *ast.DoubleConstant:
		panic(errors.New("%v: double values are not supported", x.Pos))
	case *ast.EmptyExpr:
		return nil
	case *ast.ArithmeticExpr:
		return g.generateArithmeticCode(e, x)
	case *ast.RelationalExpr:
		return g.generateRelationalCode(e, x)
	case *ast.EqualityExpr:
		return g.generateEqualityCode(e, x)
	case *ast.LogicalExpr:
		return g.generateLogicalCode(e, x)
	case *ast.AssignExpr:
		return g.generateAssignCode(e, x)
	case *ast.This:
		return e.this
	case *ast.ArrayAccess:
		addr := g.generateElementAddrCode(e, x)

		t := g.temp(e)
		g.out.Load(t, addr, 0)

		return t
	case *ast.FieldAccess:
		return g.generateFieldAccessCode(e, x)
	case *ast.Call:
		return g.generateCallCode(e, x)
	case *ast.NewExpr:
		return g.generateNewCode(e, x)
	case *ast.NewArrayExpr:
		return g.generateNewArrayCode(e, x)
	case *ast.ReadIntegerExpr:
		t := g.temp(e)
		g.out.BuiltInCall(tac.ReadInteger, t)

		return t
	case *ast.ReadLineExpr:
		t := g.temp(e)
		g.out.BuiltInCall(tac.ReadLine, t)

		return t
	default:
		panic(errors.New("unsupported expression %T", x))
	}
}

func (g *CodeGenerator) constant(e env, v int) *tac.Location {
	t := g.temp(e)
	g.out.LoadConstant(t, v)

	return t
}

func (g *CodeGenerator) binary(e env, op tac.Opcode, a, b *tac.Location) *tac.Location {
	t := g.temp(e)
	g.out.BinaryOp(op, t, a, b)

	return t
}

func noDouble(x ast.Expr, operands ...ast.Expr) {
	for _, o := range operands {
		if o != nil && ast.Is(o.Type(), ast.Double) {
			panic(errors.New("%v: double arithmetic is not supported", x.Position()))
		}
	}
}

func (g *CodeGenerator) generateArithmeticCode(e env, x *ast.ArithmeticExpr) *tac.Location {
	noDouble(x, x.Left, x.Right)

	if x.Left == nil {
		zero := g.constant(e, 0)
		r := g.generateExprCode(e, x.Right)

		return g.binary(e, tac.Sub, zero, r)
	}

	l := g.generateExprCode(e, x.Left)
	r := g.generateExprCode(e, x.Right)

	return g.binary(e, arithmeticOps[x.Op], l, r)
}

// generateRelationalCode builds every comparison from < and ==.
func (g *CodeGenerator) generateRelationalCode(e env, x *ast.RelationalExpr) *tac.Location {
	noDouble(x, x.Left, x.Right)

	l := g.generateExprCode(e, x.Left)
	r := g.generateExprCode(e, x.Right)

	switch x.Op {
	case ast.OpLess:
		return g.binary(e, tac.Less, l, r)
	case ast.OpGreater:
		return g.binary(e, tac.Less, r, l)
	case ast.OpLessEq:
		less := g.binary(e, tac.Less, l, r)
		eq := g.binary(e, tac.Eq, l, r)

		return g.binary(e, tac.Or, less, eq)
	case ast.OpGreaterEq:
		less := g.binary(e, tac.Less, r, l)
		eq := g.binary(e, tac.Eq, l, r)

		return g.binary(e, tac.Or, less, eq)
	default:
		panic(errors.New("%v: unexpected relational operator %s", x.Pos, x.Op))
	}
}

func (g *CodeGenerator) generateEqualityCode(e env, x *ast.EqualityExpr) *tac.Location {
	noDouble(x, x.Left, x.Right)

	l := g.generateExprCode(e, x.Left)
	r := g.generateExprCode(e, x.Right)

	var eq *tac.Location

	if ast.Is(x.Left.Type(), ast.String) && ast.Is(x.Right.Type(), ast.String) {
		eq = g.temp(e)
		g.out.BuiltInCall(tac.StringEqual, eq, l, r)
	} else {
		eq = g.binary(e, tac.Eq, l, r)
	}

	if x.Op == ast.OpNotEq {
		return g.not(e, eq)
	}

	return eq
}

func (g *CodeGenerator) not(e env, v *tac.Location) *tac.Location {
	return g.binary(e, tac.Eq, v, g.constant(e, 0))
}

func (g *CodeGenerator) generateLogicalCode(e env, x *ast.LogicalExpr) *tac.Location {
	if x.Left == nil {
		return g.not(e, g.generateExprCode(e, x.Right))
	}

	l := g.generateExprCode(e, x.Left)
	r := g.generateExprCode(e, x.Right)

	if x.Op == ast.OpAnd {
		return g.binary(e, tac.And, l, r)
	}

	return g.binary(e, tac.Or, l, r)
}

// generateAssignCode evaluates the target address, then the value.
func (g *CodeGenerator) generateAssignCode(e env, x *ast.AssignExpr) *tac.Location {
	switch left := x.Left.(type) {
	case *ast.ArrayAccess:
		addr := g.generateElementAddrCode(e, left)
		r := g.generateExprCode(e, x.Right)

		g.out.Store(addr, 0, r)

		return r
	case *ast.FieldAccess:
		v, recv := g.resolveVariable(e, left)

		r := g.generateExprCode(e, x.Right)

		if recv != nil {
			g.out.Store(recv, v.Offset, r)
		} else {
			g.out.Assign(v.Loc, r)
		}

		return r
	default:
		panic(errors.New("%v: not assignable", x.Pos))
	}
}

// resolveVariable finds the variable x refers to.
// Fields come with the receiver location, other variables with recv nil.
func (g *CodeGenerator) resolveVariable(e env, x *ast.FieldAccess) (v *ast.VarDecl, recv *tac.Location) {
	if x.Base != nil {
		recv = g.generateExprCode(e, x.Base)

		v, _ = classOf(x.Base.Type()).LookupMember(x.Field.Name).(*ast.VarDecl)
		if v == nil {
			panic(errors.New("%v: no field %s in %v", x.Field.Pos, x.Field.Name, x.Base.Type()))
		}

		return v, recv
	}

	v, _ = semantic.Lookup(g.table, e.class, e.classFrame, x.Field.Name).(*ast.VarDecl)
	if v == nil {
		panic(errors.New("%v: no variable %s in scope", x.Field.Pos, x.Field.Name))
	}

	if v.IsField() {
		return v, e.this
	}

	if v.Loc == nil {
		panic(errors.New("%v: variable %s has no location", x.Field.Pos, x.Field.Name))
	}

	return v, nil
}

func (g *CodeGenerator) generateFieldAccessCode(e env, x *ast.FieldAccess) *tac.Location {
	v, recv := g.resolveVariable(e, x)

	if recv == nil {
		return v.Loc
	}

	t := g.temp(e)
	g.out.Load(t, recv, v.Offset)

	return t
}

// generateElementAddrCode computes base + index*word + header
// behind both bounds checks.
func (g *CodeGenerator) generateElementAddrCode(e env, x *ast.ArrayAccess) *tac.Location {
	base := g.generateExprCode(e, x.Base)
	index := g.generateExprCode(e, x.Subscript)

	zero := g.constant(e, 0)
	negative := g.binary(e, tac.Less, index, zero)

	length := g.temp(e)
	g.out.Load(length, base, 0)

	inside := g.binary(e, tac.Less, index, length)
	outside := g.not(e, inside)
	bad := g.binary(e, tac.Or, negative, outside)

	ok := g.out.NewLabel()
	g.out.IfZ(bad, ok)
	g.generateRuntimeErrorCode(e, outOfBoundsMsg)
	g.out.Label(ok)

	word := g.constant(e, tac.WordSize)
	off := g.binary(e, tac.Mul, index, word)
	elem := g.binary(e, tac.Add, base, off)

	header := g.constant(e, tac.ArrayHeader)

	return g.binary(e, tac.Add, elem, header)
}

func (g *CodeGenerator) generateCallCode(e env, x *ast.Call) *tac.Location {
	if x.ArrayLength {
		base := g.generateExprCode(e, x.Base)

		t := g.temp(e)
		g.out.Load(t, base, 0)

		return t
	}

	fn := x.Fn
	if fn == nil {
		panic(errors.New("%v: unresolved call to %s", x.Pos, x.Field.Name))
	}

	var recv *tac.Location

	if fn.IsMethod() {
		if x.Base != nil {
			recv = g.generateExprCode(e, x.Base)
		} else {
			recv = e.this
		}

		if recv == nil {
			panic(errors.New("%v: method %s called without a receiver", x.Pos, fn.Name.Name))
		}
	}

	// rightmost argument first, matching push order
	args := make([]*tac.Location, len(x.Actuals))

	for i := len(x.Actuals) - 1; i >= 0; i-- {
		args[i] = g.generateExprCode(e, x.Actuals[i])
	}

	var dst *tac.Location

	if fn.HasReturn() {
		dst = g.temp(e)
	}

	if recv == nil {
		for i := len(args) - 1; i >= 0; i-- {
			g.out.PushParam(args[i])
		}

		g.out.LCall(fn.Label, dst)
		g.out.PopParams(len(args) * tac.WordSize)

		return dst
	}

	vtable := g.temp(e)
	g.out.Load(vtable, recv, 0)

	addr := g.temp(e)
	g.out.Load(addr, vtable, g.methodOffset(fn))

	for i := len(args) - 1; i >= 0; i-- {
		g.out.PushParam(args[i])
	}

	g.out.PushParam(recv)
	g.out.ACall(addr, dst)
	g.out.PopParams((len(args) + 1) * tac.WordSize)

	return dst
}

func (g *CodeGenerator) generateNewCode(e env, x *ast.NewExpr) *tac.Location {
	c, ok := x.Class.Decl.(*ast.ClassDecl)
	if !ok {
		panic(errors.New("%v: New of unresolved class %s", x.Pos, x.Class.Name.Name))
	}

	size := g.constant(e, Layout(c).Size)

	obj := g.temp(e)
	g.out.BuiltInCall(tac.Alloc, obj, size)

	vtable := g.temp(e)
	g.out.LoadLabel(vtable, c.Name.Name)
	g.out.Store(obj, 0, vtable)

	return obj
}

func (g *CodeGenerator) generateNewArrayCode(e env, x *ast.NewArrayExpr) *tac.Location {
	size := g.generateExprCode(e, x.Size)

	one := g.constant(e, 1)
	bad := g.binary(e, tac.Less, size, one)

	ok := g.out.NewLabel()
	g.out.IfZ(bad, ok)
	g.generateRuntimeErrorCode(e, badArraySizeMsg)
	g.out.Label(ok)

	word := g.constant(e, tac.WordSize)
	bytes := g.binary(e, tac.Mul, size, word)

	header := g.constant(e, tac.ArrayHeader)
	bytes = g.binary(e, tac.Add, bytes, header)

	arr := g.temp(e)
	g.out.BuiltInCall(tac.Alloc, arr, bytes)
	g.out.Store(arr, 0, size)

	return arr
}

func classOf(t ast.Type) *ast.ClassDecl {
	if nt, ok := t.(*ast.NamedType); ok {
		if c, ok := nt.Decl.(*ast.ClassDecl); ok {
			return c
		}
	}

	panic(errors.New("%v is not a class type", t))
}
