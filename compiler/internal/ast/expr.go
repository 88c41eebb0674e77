package ast

type (
	// Expr is a sealed sum of expression nodes.
	// Type is the type computed by semantic analysis.
	Expr interface {
		Node
		Type() Type
		SetType(Type)
		expr()
	}

	Op string

	exprBase struct {
		Pos
		t Type
	}

	IntConstant struct {
		exprBase
		Value int
	}

	DoubleConstant struct {
		exprBase
		Value float64
	}

	BoolConstant struct {
		exprBase
		Value bool
	}

	StringConstant struct {
		exprBase
		Value string
	}

	NullConstant struct {
		exprBase
	}

	// EmptyExpr stands for an omitted for-loop init or step.
	EmptyExpr struct {
		exprBase
	}

	// ArithmeticExpr is binary + - * / % or unary - when Left is nil.
	ArithmeticExpr struct {
		exprBase
		Op          Op
		Left, Right Expr
	}

	RelationalExpr struct {
		exprBase
		Op          Op
		Left, Right Expr
	}

	EqualityExpr struct {
		exprBase
		Op          Op
		Left, Right Expr
	}

	// LogicalExpr is && || or unary ! when Left is nil.
	LogicalExpr struct {
		exprBase
		Op          Op
		Left, Right Expr
	}

	AssignExpr struct {
		exprBase
		Left, Right Expr
	}

	This struct {
		exprBase
	}

	ArrayAccess struct {
		exprBase
		Base, Subscript Expr
	}

	// FieldAccess is a variable reference, with or without a receiver.
	FieldAccess struct {
		exprBase
		Base  Expr // nil when there is no receiver
		Field *Identifier

		Decl *VarDecl
	}

	Call struct {
		exprBase
		Base    Expr // nil when there is no receiver
		Field   *Identifier
		Actuals []Expr

		Fn *FnDecl
		// ArrayLength marks base.length() on an array.
		ArrayLength bool
	}

	NewExpr struct {
		exprBase
		Class *NamedType
	}

	NewArrayExpr struct {
		exprBase
		Size Expr
		Elem Type
	}

	ReadIntegerExpr struct {
		exprBase
	}

	ReadLineExpr struct {
		exprBase
	}
)

const (
	OpAdd       Op = "+"
	OpSub       Op = "-"
	OpMul       Op = "*"
	OpDiv       Op = "/"
	OpMod       Op = "%"
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
	OpEq        Op = "=="
	OpNotEq     Op = "!="
	OpAnd       Op = "&&"
	OpOr        Op = "||"
	OpNot       Op = "!"
	OpAssign    Op = "="
)

func (e *exprBase) Type() Type {
	if e.t == nil {
		return ErrorType
	}

	return e.t
}

func (e *exprBase) SetType(t Type) { e.t = t }

func (*exprBase) expr() {}

func at(pos Pos) exprBase { return exprBase{Pos: pos} }

func NewIntConstant(pos Pos, v int) *IntConstant {
	return &IntConstant{exprBase: at(pos), Value: v}
}

func NewDoubleConstant(pos Pos, v float64) *DoubleConstant {
	return &DoubleConstant{exprBase: at(pos), Value: v}
}

func NewBoolConstant(pos Pos, v bool) *BoolConstant {
	return &BoolConstant{exprBase: at(pos), Value: v}
}

func NewStringConstant(pos Pos, v string) *StringConstant {
	return &StringConstant{exprBase: at(pos), Value: v}
}

func NewNullConstant(pos Pos) *NullConstant { return &NullConstant{exprBase: at(pos)} }

func NewEmptyExpr(pos Pos) *EmptyExpr { return &EmptyExpr{exprBase: at(pos)} }

func NewThis(pos Pos) *This { return &This{exprBase: at(pos)} }

func NewReadIntegerExpr(pos Pos) *ReadIntegerExpr { return &ReadIntegerExpr{exprBase: at(pos)} }

func NewReadLineExpr(pos Pos) *ReadLineExpr { return &ReadLineExpr{exprBase: at(pos)} }

// NewBinary builds the node kind matching op.
// Left is nil for unary - and !.
func NewBinary(pos Pos, op Op, l, r Expr) Expr {
	b := at(pos)

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return &ArithmeticExpr{exprBase: b, Op: op, Left: l, Right: r}
	case OpLess, OpLessEq, OpGreater, OpGreaterEq:
		return &RelationalExpr{exprBase: b, Op: op, Left: l, Right: r}
	case OpEq, OpNotEq:
		return &EqualityExpr{exprBase: b, Op: op, Left: l, Right: r}
	case OpAnd, OpOr, OpNot:
		return &LogicalExpr{exprBase: b, Op: op, Left: l, Right: r}
	case OpAssign:
		return &AssignExpr{exprBase: b, Left: l, Right: r}
	default:
		panic("ast: unknown operator " + string(op))
	}
}

func NewArrayAccess(pos Pos, recv, sub Expr) *ArrayAccess {
	return &ArrayAccess{exprBase: at(pos), Base: recv, Subscript: sub}
}

func NewFieldAccess(recv Expr, field *Identifier) *FieldAccess {
	return &FieldAccess{exprBase: at(field.Pos), Base: recv, Field: field}
}

func NewCall(pos Pos, recv Expr, field *Identifier, actuals []Expr) *Call {
	return &Call{exprBase: at(pos), Base: recv, Field: field, Actuals: actuals}
}

func NewNewExpr(pos Pos, class *NamedType) *NewExpr {
	return &NewExpr{exprBase: at(pos), Class: class}
}

func NewNewArrayExpr(pos Pos, size Expr, elem Type) *NewArrayExpr {
	return &NewArrayExpr{exprBase: at(pos), Size: size, Elem: elem}
}

// Addressable reports whether e may be assigned to.
func Addressable(e Expr) bool {
	switch e.(type) {
	case *FieldAccess, *ArrayAccess:
		return true
	default:
		return false
	}
}
