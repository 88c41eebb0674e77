package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_WriteTo(t *testing.T) {
	p := New()

	a := NewLocation(GlobalRelative, 0, "a")
	t0 := NewLocation(FrameRelative, -8, "_tmp0")
	t1 := NewLocation(FrameRelative, -12, "_tmp1")

	p.Label("main")
	begin := p.BeginFunc()
	p.LoadConstant(t0, 5)
	p.Assign(a, t0)
	p.BinaryOp(Less, t1, a, t0)
	l := p.NewLabel()
	p.IfZ(t1, l)
	p.BuiltInCall(PrintInt, nil, a)
	p.Label(l)
	p.Store(a, 4, t0)
	p.Load(t1, a, 0)
	p.EndFunc()
	p.VTable("A", []string{"_A.f", "_A.g"})

	begin.FrameSize = 8

	want := `main:
	BeginFunc 8 ;
	_tmp0 = 5 ;
	a = _tmp0 ;
	_tmp1 = a < _tmp0 ;
	IfZ _tmp1 Goto _L0 ;
	PushParam a ;
	LCall _PrintInt ;
	PopParams 4 ;
_L0:
	*(a + 4) = _tmp0 ;
	_tmp1 = *(a) ;
	EndFunc ;
VTable A =
	_A.f,
	_A.g,
;
`
	assert.Equal(t, want, p.String())
}

func TestProgram_BuiltInCall(t *testing.T) {
	testData := []struct {
		BuiltIn BuiltIn
		Args    int
		Want    string
	}{
		{BuiltIn: Alloc, Args: 1, Want: "\tPushParam x0 ;\n\tr = LCall _Alloc ;\n\tPopParams 4 ;\n"},
		{BuiltIn: ReadLine, Args: 0, Want: "\tr = LCall _ReadLine ;\n"},
		{BuiltIn: StringEqual, Args: 2, Want: "\tPushParam x1 ;\n\tPushParam x0 ;\n\tr = LCall _StringEqual ;\n\tPopParams 8 ;\n"},
		{BuiltIn: PrintBool, Args: 1, Want: "\tPushParam x0 ;\n\tLCall _PrintBool ;\n\tPopParams 4 ;\n"},
		{BuiltIn: Halt, Args: 0, Want: "\tLCall _Halt ;\n"},
	}
	for _, data := range testData {
		p := New()
		var args []*Location
		for i := 0; i < data.Args; i++ {
			args = append(args, NewLocation(FrameRelative, -8-4*i, "x"+string(rune('0'+i))))
		}
		p.BuiltInCall(data.BuiltIn, NewLocation(FrameRelative, -100, "r"), args...)
		assert.Equal(t, data.Want, p.String(), data.BuiltIn.String())

		b, ok := LookupBuiltIn(data.BuiltIn.Label())
		assert.True(t, ok)
		assert.Equal(t, data.BuiltIn, b)
	}
	assert.Panics(t, func() { New().BuiltInCall(PrintInt, nil) })
}

func TestLoadStoreOffsets(t *testing.T) {
	ref := NewLocation(FrameRelative, 4, "this")
	dst := NewLocation(FrameRelative, -8, "_tmp0")

	assert.Equal(t, "_tmp0 = *(this - 4)", (&Load{Dst: dst, Ref: ref, Offset: -4}).String())
	assert.Equal(t, "*(this + 8) = _tmp0", (&Store{Ref: ref, Offset: 8, Src: dst}).String())
	assert.Equal(t, `_tmp0 = "a\nb"`, (&LoadString{Dst: dst, Value: "a\nb"}).String())
	assert.Equal(t, "Return", (&Return{}).String())
	assert.Equal(t, "_tmp0 = ACall this", (&ACall{Addr: ref, Dst: dst}).String())
}
