package diag

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
)

// Reason is what an unresolved identifier was looked up as.
type Reason int

const (
	LookingForType Reason = iota
	LookingForClass
	LookingForInterface
	LookingForVariable
	LookingForFunction
)

var reasonNames = []string{
	LookingForType:      "type",
	LookingForClass:     "class",
	LookingForInterface: "interface",
	LookingForVariable:  "variable",
	LookingForFunction:  "function",
}

func (r Reason) String() string { return reasonNames[r] }

func NewDeclConflict(d, prior ast.Decl) *Diagnostic {
	return New(DeclConflict, d.Position(), "Declaration of '%s' here conflicts with declaration on line %d",
		d.DeclName().Name, prior.Position().Line)
}

func NewIdentifierNotDeclared(id *ast.Identifier, r Reason) *Diagnostic {
	return New(IdentifierNotDeclared, id.Pos, "No declaration found for %v '%s'", r, id.Name)
}

func NewIncompatibleOperands(pos ast.Pos, op ast.Op, l, r ast.Type) *Diagnostic {
	return New(IncompatibleOperands, pos, "Incompatible operands: %v %s %v", l, op, r)
}

func NewIncompatibleOperand(pos ast.Pos, op ast.Op, t ast.Type) *Diagnostic {
	return New(IncompatibleOperand, pos, "Incompatible operand: %s %v", op, t)
}

func NewSubscriptNotInteger(pos ast.Pos) *Diagnostic {
	return New(SubscriptNotInteger, pos, "Array subscript must be an integer")
}

func NewBracketsOnNonArray(pos ast.Pos) *Diagnostic {
	return New(BracketsOnNonArray, pos, "[] can only be applied to arrays")
}

func NewFieldNotFoundInBase(field *ast.Identifier, base ast.Type) *Diagnostic {
	return New(FieldNotFoundInBase, field.Pos, "%v has no such field '%s'", base, field.Name)
}

func NewNumArgsMismatch(fn *ast.Identifier, expected, given int) *Diagnostic {
	return New(NumArgsMismatch, fn.Pos, "Function '%s' expects %d arguments but %d given", fn.Name, expected, given)
}

// NewArgMismatch takes a 1-based argument index.
func NewArgMismatch(pos ast.Pos, n int, given, expected ast.Type) *Diagnostic {
	return New(ArgMismatch, pos, "Incompatible argument %d: %v given, %v expected", n, given, expected)
}

func NewTestNotBoolean(pos ast.Pos) *Diagnostic {
	return New(TestNotBoolean, pos, "Test expression must have boolean type")
}

func NewBreakOutsideLoop(pos ast.Pos) *Diagnostic {
	return New(BreakOutsideLoop, pos, "break is only allowed inside a loop")
}

func NewReturnMismatch(pos ast.Pos, given, expected ast.Type) *Diagnostic {
	return New(ReturnMismatch, pos, "Incompatible return: %v given, %v expected", given, expected)
}

// NewPrintArgMismatch takes a 1-based argument index.
func NewPrintArgMismatch(pos ast.Pos, n int, given ast.Type) *Diagnostic {
	return New(PrintArgMismatch, pos, "Incompatible argument %d: %v given, int/bool/string expected", n, given)
}

func NewOverrideMismatch(fn *ast.FnDecl) *Diagnostic {
	return New(OverrideMismatch, fn.Position(), "Method '%s' must match inherited type signature", fn.Name.Name)
}

func NewInterfaceNotImplemented(c *ast.ClassDecl, iface *ast.NamedType) *Diagnostic {
	return New(InterfaceNotImplemented, iface.Pos, "Class '%s' does not implement entire interface '%s'",
		c.Name.Name, iface.Name.Name)
}

func NewThisOutsideClassScope(pos ast.Pos) *Diagnostic {
	return New(ThisOutsideClassScope, pos, "'this' is only valid within class scope")
}

func NewNewArraySizeNotInteger(pos ast.Pos) *Diagnostic {
	return New(NewArraySizeNotInteger, pos, "Size for NewArray must be an integer")
}

func NewInheritanceCycle(c *ast.ClassDecl) *Diagnostic {
	return New(InheritanceCycle, c.Extends.Pos, "Class '%s' is part of an inheritance cycle", c.Name.Name)
}

func NewInvalidAssignTarget(pos ast.Pos) *Diagnostic {
	return New(InvalidAssignTarget, pos, "Left side of assignment is not assignable")
}

func NewNoMainFunction() *Diagnostic {
	return New(NoMainFunction, ast.Pos{}, "Linker: function 'main' not defined")
}
