package pauli

import (
	"testing"

	"stabkit/randgen"
)

func TestIdentityString(t *testing.T) {
	p := Identity(4)
	if got := p.String(); got != "+IIII" {
		t.Fatalf("got %q, want +IIII", got)
	}
}

func TestFromStringRoundTrip(t *testing.T) {
	cases := []string{"+IXYZ", "-XYZI", "+____", "+"}
	for _, c := range cases {
		p, err := FromString(c)
		if err != nil {
			t.Fatalf("FromString(%q): %v", c, err)
		}
		want := c
		if c == "+____" {
			want = "+IIII"
		}
		if got := p.String(); got != want {
			t.Fatalf("FromString(%q).String() = %q, want %q", c, got, want)
		}
	}
}

func TestFromStringRejectsBadChar(t *testing.T) {
	if _, err := FromString("+IXQ"); err == nil {
		t.Fatalf("expected error for invalid character")
	}
}

func TestCommutesSymmetricAndFormula(t *testing.T) {
	a, _ := FromString("+XX")
	b, _ := FromString("+ZZ")
	if !a.Ref().Commutes(b.Ref()) {
		t.Fatalf("X0X1 should commute with Z0Z1")
	}
	c, _ := FromString("+XZ")
	d, _ := FromString("+ZX")
	if !c.Ref().Commutes(d.Ref()) {
		t.Fatalf("X0Z1 should commute with Z0X1")
	}
	if a.Ref().Commutes(b.Ref()) != b.Ref().Commutes(a.Ref()) {
		t.Fatalf("commutes should be symmetric")
	}
}

func TestYAnticommutesWithXAndZCommutesWithY(t *testing.T) {
	y, _ := FromString("+Y")
	x, _ := FromString("+X")
	z, _ := FromString("+Z")
	yy, _ := FromString("+Y")
	if y.Ref().Commutes(x.Ref()) {
		t.Fatalf("Y should anticommute with X")
	}
	if y.Ref().Commutes(z.Ref()) {
		t.Fatalf("Y should anticommute with Z")
	}
	if !y.Ref().Commutes(yy.Ref()) {
		t.Fatalf("Y should commute with Y")
	}
}

func TestMulCommutingAssign(t *testing.T) {
	a, _ := FromString("+XI")
	b, _ := FromString("+IX")
	a.Ref().MulCommutingAssign(b.Ref())
	if got := a.String(); got != "+XX" {
		t.Fatalf("X0 * X1 = %q, want +XX", got)
	}

	x, _ := FromString("+X")
	negX, _ := FromString("-X")
	x.Ref().MulCommutingAssign(negX.Ref())
	if got := x.String(); got != "-I" {
		t.Fatalf("X * -X = %q, want -I", got)
	}
}

func TestGatherScatter(t *testing.T) {
	src, _ := FromString("+XYZ")
	out := Identity(2)
	src.Ref().GatherInto(out.Ref(), []int{2, 0})
	if got := out.String(); got != "+ZX" {
		t.Fatalf("gather = %q, want +ZX", got)
	}

	dst := Identity(5)
	small, _ := FromString("-XZ")
	small.Ref().ScatterInto(dst.Ref(), []int{1, 3})
	if got := dst.String(); got != "-IXIZI" {
		t.Fatalf("scatter = %q, want -IXIZI", got)
	}
}

func TestRandomPauliLength(t *testing.T) {
	rng := randgen.New(99)
	p := Random(50, rng)
	if p.Len() != 50 {
		t.Fatalf("expected length 50, got %d", p.Len())
	}
}
