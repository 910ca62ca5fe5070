package location

import "testing"

func TestPositionLines(t *testing.T) {
	p := Position{Line: 3, Column: 5}
	next := p.Lines(1)
	if next.Line != 4 || next.Column != 1 {
		t.Fatalf("Lines(1) = %+v, want {4 1}", next)
	}
}

func TestPositionColumns(t *testing.T) {
	p := Position{Line: 3, Column: 5}
	next := p.Columns(2)
	if next.Line != 3 || next.Column != 7 {
		t.Fatalf("Columns(2) = %+v, want {3 7}", next)
	}
}

func TestLocationStep(t *testing.T) {
	l := New("file.txt")
	l = l.Columns(4)
	stepped := l.Step()
	if stepped.Begin != l.End || stepped.End != l.End {
		t.Fatalf("Step() = %+v, want begin=end=%v", stepped, l.End)
	}
}

func TestLocationLess(t *testing.T) {
	a := New("f")
	b := a.Columns(3)
	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if b.Less(a) {
		t.Fatalf("did not expect %v < %v", b, a)
	}
}

func TestLocationString(t *testing.T) {
	l := New("main.gvm")
	if got, want := l.String(), "main.gvm:1:1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	multiCol := l.Columns(3)
	if got, want := multiCol.String(), "main.gvm:1:1-4"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	multiLine := multiCol.Lines(1)
	if got, want := multiLine.String(), "main.gvm:1:1-2:1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
