package secp256k1

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
)

var (
	a223 = NewFieldElementInt(0, 223)
	b223 = NewFieldElementInt(7, 223)
)

func pt223(x, y int64) Point[FieldElement] {
	return NewPoint(NewFieldElementInt(x, 223), NewFieldElementInt(y, 223), a223, b223)
}

func TestOnCurve(t *testing.T) {
	valid := [][2]int64{{192, 105}, {17, 56}, {1, 193}}
	invalid := [][2]int64{{200, 119}, {42, 99}}
	for _, v := range valid {
		if recoverErr(func() { pt223(v[0], v[1]) }) != nil {
			t.Error("point should be on curve", v)
		}
	}
	for _, v := range invalid {
		if e := recoverErr(func() { pt223(v[0], v[1]) }); !errors.Is(e, ErrOffCurve) {
			t.Error("point should be off curve", v)
		}
	}
}

func TestPointAdd(t *testing.T) {
	var tv = []struct {
		x1, y1, x2, y2, x3, y3 int64
	}{
		{170, 142, 60, 139, 220, 181},
		{47, 71, 17, 56, 215, 68},
		{192, 105, 192, 105, 49, 71},
	}
	for i, v := range tv {
		res := pt223(v.x1, v.y1).Add(pt223(v.x2, v.y2))
		if !res.Equals(pt223(v.x3, v.y3)) {
			t.Error("Add mismatch at", i, res.String())
		}
	}

	p := pt223(47, 71)
	inf := Infinity(a223, b223)
	if !p.Add(inf).Equals(p) || !inf.Add(p).Equals(p) {
		t.Error("infinity is not the identity")
	}
	if !p.Add(p.Neg()).IsInfinity() {
		t.Error("p + -p is not infinity")
	}
}

func TestPointMul(t *testing.T) {
	p := pt223(15, 86)
	if !p.Mul(big.NewInt(7)).IsInfinity() {
		t.Error("(15,86) should have order 7")
	}
	if !p.Mul(big.NewInt(3)).Equals(p.Add(p).Add(p)) {
		t.Error("3P != P+P+P")
	}
	if !p.Mul(big.NewInt(4)).Equals(pt223(69, 86)) {
		t.Error("4P mismatch")
	}
	if !p.Mul(big.NewInt(8)).Equals(p) {
		t.Error("8P != P")
	}
	if !p.Mul(big.NewInt(0)).IsInfinity() {
		t.Error("0P is not infinity")
	}
}

func TestMismatchedCurve(t *testing.T) {
	other := NewPoint(NewFieldElementInt(18, 223), NewFieldElementInt(77, 223),
		NewFieldElementInt(5, 223), NewFieldElementInt(7, 223))
	e := recoverErr(func() { pt223(47, 71).Add(other) })
	if !errors.Is(e, ErrMismatchedCurve) {
		t.Error("expected ErrMismatchedCurve, got", e)
	}
}
