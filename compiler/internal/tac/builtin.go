package tac

type BuiltIn int

const (
	Alloc BuiltIn = iota
	ReadLine
	ReadInteger
	StringEqual
	PrintInt
	PrintString
	PrintBool
	Halt

	numBuiltIns
)

var builtIns = [numBuiltIns]struct {
	name      string
	args      int
	hasReturn bool
}{
	Alloc:       {"_Alloc", 1, true},
	ReadLine:    {"_ReadLine", 0, true},
	ReadInteger: {"_ReadInteger", 0, true},
	StringEqual: {"_StringEqual", 2, true},
	PrintInt:    {"_PrintInt", 1, false},
	PrintString: {"_PrintString", 1, false},
	PrintBool:   {"_PrintBool", 1, false},
	Halt:        {"_Halt", 0, false},
}

// Label is the entry label the call is issued to.
func (b BuiltIn) Label() string { return builtIns[b].name }

func (b BuiltIn) NumArgs() int { return builtIns[b].args }

func (b BuiltIn) HasReturn() bool { return builtIns[b].hasReturn }

func (b BuiltIn) String() string { return builtIns[b].name[1:] }

// LookupBuiltIn finds a built-in by its entry label.
func LookupBuiltIn(label string) (BuiltIn, bool) {
	for i, x := range builtIns {
		if x.name == label {
			return BuiltIn(i), true
		}
	}

	return 0, false
}
