package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
)

func TestBag_Sorted(t *testing.T) {
	var bag Bag

	bag.Report(NewTestNotBoolean(ast.Pos{Line: 7, Col: 3}))
	bag.Report(NewBreakOutsideLoop(ast.Pos{Line: 2, Col: 9}))
	bag.Report(NewSubscriptNotInteger(ast.Pos{Line: 2, Col: 1}))
	bag.Report(NewBracketsOnNonArray(ast.Pos{Line: 2, Col: 1}))

	assert.True(t, bag.HasErrors())
	assert.Equal(t, 4, bag.Len())
	assert.Equal(t, 1, bag.Count(BreakOutsideLoop))

	var kinds []Kind
	for _, d := range bag.Sorted() {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []Kind{SubscriptNotInteger, BracketsOnNonArray, BreakOutsideLoop, TestNotBoolean}, kinds)

	kinds = nil
	for _, d := range bag.Diagnostics() {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []Kind{TestNotBoolean, BreakOutsideLoop, SubscriptNotInteger, BracketsOnNonArray}, kinds)
}

func TestMessages(t *testing.T) {
	pos := ast.Pos{Line: 3, Col: 4}
	x := ast.NewIdentifier(pos, "x")
	prior := ast.NewVarDecl(ast.NewIdentifier(ast.Pos{Line: 1, Col: 1}, "x"), ast.IntType)
	dup := ast.NewVarDecl(x, ast.BoolType)

	testData := []struct {
		D    *Diagnostic
		Kind Kind
		Msg  string
	}{
		{D: NewDeclConflict(dup, prior), Kind: DeclConflict, Msg: "Declaration of 'x' here conflicts with declaration on line 1"},
		{D: NewIdentifierNotDeclared(x, LookingForVariable), Kind: IdentifierNotDeclared, Msg: "No declaration found for variable 'x'"},
		{D: NewIncompatibleOperands(pos, ast.OpAdd, ast.IntType, ast.BoolType), Kind: IncompatibleOperands, Msg: "Incompatible operands: int + bool"},
		{D: NewIncompatibleOperand(pos, ast.OpNot, ast.IntType), Kind: IncompatibleOperand, Msg: "Incompatible operand: ! int"},
		{D: NewNumArgsMismatch(x, 2, 1), Kind: NumArgsMismatch, Msg: "Function 'x' expects 2 arguments but 1 given"},
		{D: NewArgMismatch(pos, 1, ast.StringType, ast.IntType), Kind: ArgMismatch, Msg: "Incompatible argument 1: string given, int expected"},
		{D: NewReturnMismatch(pos, ast.IntType, ast.VoidType), Kind: ReturnMismatch, Msg: "Incompatible return: int given, void expected"},
		{D: NewPrintArgMismatch(pos, 2, ast.DoubleType), Kind: PrintArgMismatch, Msg: "Incompatible argument 2: double given, int/bool/string expected"},
		{D: NewFieldNotFoundInBase(x, ast.IntType), Kind: FieldNotFoundInBase, Msg: "int has no such field 'x'"},
	}
	for _, data := range testData {
		assert.Equal(t, data.Kind, data.D.Kind)
		assert.Equal(t, data.Msg, data.D.Msg)
		assert.Equal(t, pos, data.D.Pos)
	}
}

func TestBag_Print(t *testing.T) {
	var bag Bag
	bag.Report(NewThisOutsideClassScope(ast.Pos{Line: 4, Col: 2}))

	var buf bytes.Buffer
	assert.Nil(t, bag.Print(&buf))
	assert.Equal(t, "\n*** Error line 4.\n*** 'this' is only valid within class scope\n", buf.String())
}
