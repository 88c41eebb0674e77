package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/decaf/compiler/internal/diag"
	"github.com/xiaobogaga/decaf/compiler/internal/parser"
)

const queueSrc = `
class Node {
	int value;
	Node next;
}

class Queue {
	Node head;
	Node tail;
	int size;

	void push(int v) {
		Node n;
		n = New(Node);
		n.value = v;
		if (tail == null) head = n; else tail.next = n;
		tail = n;
		size = size + 1;
	}

	int pop() {
		int v;
		v = head.value;
		head = head.next;
		if (head == null) tail = null;
		size = size - 1;
		return v;
	}
}

void main() {
	Queue q;
	int i;
	int n;
	q = New(Queue);
	n = ReadInteger();
	for (i = 1; i <= n; i = i + 1) q.push(i * 10);
	while (q.size > 0) Print(q.pop());
	Print("done");
}
`

func TestCompile_Run(t *testing.T) {
	var out, text bytes.Buffer

	res, err := Compile(context.Background(), "queue.decaf", strings.NewReader(queueSrc), Options{
		Output:   &text,
		Run:      true,
		Stdin:    strings.NewReader("3\n"),
		Stdout:   &out,
		MaxSteps: 100000,
	})
	require.Nil(t, err)

	assert.Equal(t, "10\n20\n30\ndone\n", out.String())
	assert.Empty(t, res.Diagnostics)
	assert.Contains(t, text.String(), "main:\n")
	assert.Contains(t, text.String(), "VTable Queue =\n\t_Queue.push,\n\t_Queue.pop,\n;\n")
}

func TestCompile_Diagnostics(t *testing.T) {
	src := `
void main() {
	int a;
	a = true;
	break;
}
interface I { void m(); }
class C implements I {}
`

	var report bytes.Buffer

	res, err := Compile(context.Background(), "bad.decaf", strings.NewReader(src), Options{Diagnostics: &report})

	var derr *DiagnosticsError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 3, derr.Count)
	assert.Nil(t, res.Code)

	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, diag.IncompatibleOperands, res.Diagnostics[0].Kind)
	assert.Equal(t, diag.BreakOutsideLoop, res.Diagnostics[1].Kind)
	assert.Equal(t, diag.InterfaceNotImplemented, res.Diagnostics[2].Kind)

	assert.Equal(t, "\n*** Error line 4.\n*** Incompatible operands: int = bool\n"+
		"\n*** Error line 5.\n*** break is only allowed inside a loop\n"+
		"\n*** Error line 8.\n*** Class 'C' does not implement entire interface 'I'\n", report.String())
}

func TestCompile_NoMain(t *testing.T) {
	src := `void f() {}`

	res, err := Compile(context.Background(), "lib.decaf", strings.NewReader(src), Options{})
	assert.Error(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.NoMainFunction, res.Diagnostics[0].Kind)

	res, err = Compile(context.Background(), "lib.decaf", strings.NewReader(src), Options{CheckOnly: true})
	assert.Nil(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Nil(t, res.Code)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(context.Background(), "syntax.decaf", strings.NewReader("void main() {\n int a\n}"), Options{})

	var serr *parser.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, serr.Pos.Line)
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.decaf")
	require.Nil(t, os.WriteFile(path, []byte(`void main() { Print("hello"); }`), 0o644))

	var out bytes.Buffer

	_, err := CompileFile(context.Background(), path, Options{Run: true, Stdout: &out})
	require.Nil(t, err)
	assert.Equal(t, "hello\n", out.String())

	_, err = CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.decaf"), Options{})
	assert.Error(t, err)
}
