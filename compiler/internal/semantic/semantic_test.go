package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/diag"
	"github.com/xiaobogaga/decaf/compiler/internal/parser"
	"github.com/xiaobogaga/decaf/compiler/internal/scope"
)

func check(t *testing.T, src string) (*ast.Program, *scope.Table[ast.Decl], *diag.Bag) {
	t.Helper()

	p, err := parser.ParseString(context.Background(), "test.decaf", src)
	require.Nil(t, err, src)

	table := scope.New[ast.Decl]()
	var bag diag.Bag

	n := New(table, &bag).Check(context.Background(), p)
	assert.Equal(t, bag.Len(), n, src)

	return p, table, &bag
}

func kinds(bag *diag.Bag) (r []diag.Kind) {
	for _, d := range bag.Sorted() {
		r = append(r, d.Kind)
	}

	return r
}

func TestAnalyzer_Diagnostics(t *testing.T) {
	testData := []struct {
		Src   string
		Kinds []diag.Kind
	}{
		// clean programs
		{Src: `void f() { while (true) { if (true) break; } }`},
		{Src: `int a; void f() { bool a; a = true; }`},
		{Src: `class A {} A f() { return null; }`},
		{Src: `class A {} void f() { A a; bool b; b = a == null; }`},
		{Src: `void f() { int a; string s; a = ReadInteger(); s = ReadLine(); }`},
		{Src: `void f() { double d; d = d * 2.0 - 1.5; }`},
		{Src: `void f() { int[] a; int n; n = a.length(); }`},
		{Src: `class A { int x; void set(int v) { this.x = v; } }`},
		{Src: `interface I { int m(); } void f(I i) { int x; x = i.m(); }`},
		{Src: `interface I { void m(); } class C implements I { void m() {} } void f() { I i; i = New(C); }`},
		{Src: `interface I { void m(); } class A { void m() {} } class B extends A implements I { }`},
		{Src: `class A { int x; int get() { return x; } } class B extends A { int twice() { return get() + x; } }`},
		{Src: `class A { int f(int a) { return a; } } class B extends A { int f(int b) { return b + 1; } }`},
		{Src: `class A {} class B extends A {} void f() { A a; a = New(B); Print(a == New(B)); }`},
		{Src: `void f() { string s; Print(s == "x", 1, true); }`},

		// the classic trio
		{Src: `interface I { void m(); } class C implements I { }`, Kinds: []diag.Kind{diag.InterfaceNotImplemented}},
		{Src: `void f() { return 3; }`, Kinds: []diag.Kind{diag.ReturnMismatch}},
		{Src: `void f() { break; }`, Kinds: []diag.Kind{diag.BreakOutsideLoop}},
		{Src: `void f() { if (true) break; }`, Kinds: []diag.Kind{diag.BreakOutsideLoop}},

		{Src: `int a; int a;`, Kinds: []diag.Kind{diag.DeclConflict}},
		{Src: `class A { int x; void x() {} }`, Kinds: []diag.Kind{diag.DeclConflict}},
		{Src: `class A { int x; } class B extends A { int x; }`, Kinds: []diag.Kind{diag.DeclConflict}},
		{Src: `void f(int a, bool a) {}`, Kinds: []diag.Kind{diag.DeclConflict}},

		{Src: `void f() { x = 1; }`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `void f() { g(); }`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `class A extends Z {}`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `class A implements Z {}`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `void f() { Z z; }`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `interface I { void m(); } void f() { I i; i = New(I); }`, Kinds: []diag.Kind{diag.IdentifierNotDeclared}},
		{Src: `void f() { int a; a = b + c; }`, Kinds: []diag.Kind{diag.IdentifierNotDeclared, diag.IdentifierNotDeclared}},

		{Src: `void f() { int a; double b; a = a + b; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { int a; a = 1.5; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { bool b; b = 1 < 2.0; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { bool b; b = 1 && true; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { bool b; b = "a" == 1; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { string s; s = s + s; }`},
		{Src: `void f() { bool b; b = b + b; }`},
		{Src: `void f() { bool b; b = true < false; }`},
		{Src: `void f() { bool b; b = "a" < "b"; }`},
		{Src: `void f() { string s; int a; a = s * a; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void g() {} void f() { int a; a = g() + g(); }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void g() {} void f() { bool b; b = g() < g(); }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `class A {} class B {} void f() { A a; a = New(B); }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { int[] a; double[] b; a = b; }`, Kinds: []diag.Kind{diag.IncompatibleOperands}},
		{Src: `void f() { int a; a = -true; }`, Kinds: []diag.Kind{diag.IncompatibleOperand}},
		{Src: `void f() { bool b; b = !3; }`, Kinds: []diag.Kind{diag.IncompatibleOperand}},

		{Src: `void f() { int[] a; a[true] = 1; }`, Kinds: []diag.Kind{diag.SubscriptNotInteger}},
		{Src: `void f() { int a; a[0] = 1; }`, Kinds: []diag.Kind{diag.BracketsOnNonArray}},
		{Src: `class A { int x; } void f() { A a; a.y = 1; }`, Kinds: []diag.Kind{diag.FieldNotFoundInBase}},
		{Src: `void f() { int a; a.m(); }`, Kinds: []diag.Kind{diag.FieldNotFoundInBase}},
		{Src: `void g(int a) {} void f() { g(); }`, Kinds: []diag.Kind{diag.NumArgsMismatch}},
		{Src: `void g(int a) {} void f() { g(true); }`, Kinds: []diag.Kind{diag.ArgMismatch}},
		{Src: `void f() { int[] a; a.length(1); }`, Kinds: []diag.Kind{diag.NumArgsMismatch}},
		{Src: `void f() { while (1) {} }`, Kinds: []diag.Kind{diag.TestNotBoolean}},
		{Src: `void f() { int i; for (i = 0; i; i = i + 1) {} }`, Kinds: []diag.Kind{diag.TestNotBoolean}},
		{Src: `int f() { return; }`, Kinds: []diag.Kind{diag.ReturnMismatch}},
		{Src: `void f() { Print(1.5); }`, Kinds: []diag.Kind{diag.PrintArgMismatch}},
		{Src: `void f() { this; }`, Kinds: []diag.Kind{diag.ThisOutsideClassScope}},
		{Src: `void f() { int[] a; a = NewArray(true, int); }`, Kinds: []diag.Kind{diag.NewArraySizeNotInteger}},
		{Src: `void f() { 1 = 2; }`, Kinds: []diag.Kind{diag.InvalidAssignTarget}},

		{Src: `class A { void f(int a) {} } class B extends A { void f(bool a) {} }`, Kinds: []diag.Kind{diag.OverrideMismatch}},
		{Src: `class A { int f() { return 1; } } class B extends A { bool f() { return true; } }`, Kinds: []diag.Kind{diag.OverrideMismatch}},
		{Src: `interface I { void m(int a); } class C implements I { void m(bool a) {} }`,
			Kinds: []diag.Kind{diag.InterfaceNotImplemented, diag.OverrideMismatch}},

		{Src: `class A extends B {} class B extends A {}`, Kinds: []diag.Kind{diag.InheritanceCycle, diag.InheritanceCycle}},
		{Src: `class A extends A { int x; }`, Kinds: []diag.Kind{diag.InheritanceCycle}},
	}

	for _, data := range testData {
		_, _, bag := check(t, data.Src)
		assert.Equal(t, data.Kinds, kinds(bag), data.Src)
	}
}

func TestAnalyzer_ErrorsDoNotCascade(t *testing.T) {
	src := `
class A { int x; }
void f() {
	A a;
	int n;
	n = a.y + 1;
	n = q;
	Print(n, 2.5);
	break;
}
`
	_, _, bag := check(t, src)

	require.Equal(t, []diag.Kind{
		diag.FieldNotFoundInBase,
		diag.IdentifierNotDeclared,
		diag.PrintArgMismatch,
		diag.BreakOutsideLoop,
	}, kinds(bag))

	lines := []int{}
	for _, d := range bag.Sorted() {
		lines = append(lines, d.Pos.Line)
	}

	assert.Equal(t, []int{6, 7, 8, 9}, lines)
}

func TestAnalyzer_Annotations(t *testing.T) {
	src := `
class A {
	int x;
	int get() { return x; }
}
class B extends A {
	int y;
}
void main() {
	B b;
	int v;
	v = b.get() + b.x;
}
`
	p, table, bag := check(t, src)
	require.Equal(t, 0, bag.Len())

	a := p.Decls[0].(*ast.ClassDecl)
	b := p.Decls[1].(*ast.ClassDecl)
	main := p.Decls[2].(*ast.FnDecl)

	assert.Equal(t, a, b.Base)
	assert.Equal(t, ast.Checked, a.State)
	assert.Equal(t, ast.Checked, b.State)

	// frames survive their pop
	x, ok := table.Lookup(b.Scope, "x")
	assert.True(t, ok)
	assert.Equal(t, a.Members[0], x)

	_, ok = table.Lookup(b.Scope, "get")
	assert.False(t, ok)

	_, ok = table.Lookup(main.Body.Scope, "v")
	assert.True(t, ok)

	assign := main.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr)
	assert.True(t, ast.Is(assign.Type(), ast.Int))

	sum := assign.Right.(*ast.ArithmeticExpr)
	call := sum.Left.(*ast.Call)
	field := sum.Right.(*ast.FieldAccess)

	assert.Equal(t, a.Members[1], call.Fn)
	assert.Equal(t, a.Members[0], field.Decl)
	assert.Equal(t, "B", field.Base.Type().String())

	// bare names resolve through the re-entered frames
	prev := table.Reenter(main.Body.Scope)
	assert.Equal(t, main.Body.Decls[0], Lookup(table, nil, scope.None, "b"))
	assert.Equal(t, main, Lookup(table, nil, scope.None, "main"))
	table.Reenter(prev)

	get := a.Members[1].(*ast.FnDecl)
	prev = table.Reenter(get.Body.Scope)
	assert.Equal(t, a.Members[0], Lookup(table, a, a.Scope, "x"))
	assert.Equal(t, get, Lookup(table, a, a.Scope, "get"))
	table.Reenter(prev)
}

func TestAnalyzer_CycleDoesNotHang(t *testing.T) {
	src := `
class A extends C { void f() {} }
class B extends A { void g() { f(); } }
class C extends B { }
void main() { A a; a = New(A); }
`
	p, _, bag := check(t, src)

	assert.Equal(t, 3, bag.Count(diag.InheritanceCycle))

	for _, d := range p.Decls[:3] {
		assert.Nil(t, d.(*ast.ClassDecl).Base)
	}
}
