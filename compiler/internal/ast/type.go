package ast

type (
	// Type is one of *PrimitiveType, *NamedType, *ArrayType.
	Type interface {
		Node
		String() string
		typ()
	}

	Kind int

	PrimitiveType struct {
		Pos
		Kind Kind
	}

	// NamedType refers to a class or an interface.
	// Decl is set once the name is resolved.
	NamedType struct {
		Pos
		Name *Identifier

		Decl Decl
	}

	ArrayType struct {
		Pos
		Elem Type
	}
)

const (
	Int Kind = iota
	Double
	Bool
	String
	Void
	Null
	Error
)

var kindNames = []string{
	Int:    "int",
	Double: "double",
	Bool:   "bool",
	String: "string",
	Void:   "void",
	Null:   "null",
	Error:  "error",
}

var (
	IntType    = &PrimitiveType{Kind: Int}
	DoubleType = &PrimitiveType{Kind: Double}
	BoolType   = &PrimitiveType{Kind: Bool}
	StringType = &PrimitiveType{Kind: String}
	VoidType   = &PrimitiveType{Kind: Void}
	NullType   = &PrimitiveType{Kind: Null}
	ErrorType  = &PrimitiveType{Kind: Error}
)

func (*PrimitiveType) typ() {}
func (*NamedType) typ()     {}
func (*ArrayType) typ()     {}

func (k Kind) String() string { return kindNames[k] }

func NewPrimitiveType(pos Pos, k Kind) *PrimitiveType {
	return &PrimitiveType{Pos: pos, Kind: k}
}

func NewNamedType(id *Identifier) *NamedType {
	return &NamedType{Pos: id.Pos, Name: id}
}

func NewArrayType(pos Pos, elem Type) *ArrayType {
	return &ArrayType{Pos: pos, Elem: elem}
}

func (t *PrimitiveType) String() string { return t.Kind.String() }

func (t *NamedType) String() string { return t.Name.Name }

func (t *ArrayType) String() string { return t.Elem.String() + "[]" }

// Is reports whether t is the primitive of kind k.
func Is(t Type, k Kind) bool {
	p, ok := t.(*PrimitiveType)
	return ok && p.Kind == k
}

func IsNumeric(t Type) bool {
	return Is(t, Int) || Is(t, Double)
}

// Equal is structural type equality.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *PrimitiveType:
		b, ok := b.(*PrimitiveType)
		return ok && a.Kind == b.Kind
	case *NamedType:
		b, ok := b.(*NamedType)
		return ok && a.Name.Name == b.Name.Name
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && Equal(a.Elem, b.Elem)
	default:
		return false
	}
}

// ConvertibleTo reports whether a value of type from may be used where to is expected.
// Named types must be resolved for class and interface conversions to apply.
func ConvertibleTo(from, to Type) bool {
	if Equal(from, to) {
		return true
	}

	nt, ok := to.(*NamedType)
	if !ok {
		return false
	}

	if Is(from, Null) {
		return true
	}

	nf, ok := from.(*NamedType)
	if !ok {
		return false
	}

	c, ok := nf.Decl.(*ClassDecl)
	if !ok {
		return false
	}

	switch target := nt.Decl.(type) {
	case *ClassDecl:
		return c.IsSubclassOf(target)
	case *InterfaceDecl:
		return c.ImplementsInterface(target)
	default:
		return false
	}
}
