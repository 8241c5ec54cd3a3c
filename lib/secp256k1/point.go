package secp256k1

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrOffCurve        = errors.New("point is not on the curve")
	ErrMismatchedCurve = errors.New("points are not on the same curve")
)

// Point is an affine point on y^2 = x^3 + a*x + b, or the point at infinity.
type Point[T Element[T]] struct {
	X, Y T
	A, B T
	inf  bool
}

// NewPoint panics with ErrOffCurve if (x, y) does not satisfy the curve equation.
func NewPoint[T Element[T]](x, y, a, b T) Point[T] {
	if !OnCurve(x, y, a, b) {
		panic(errors.Wrapf(ErrOffCurve, "(%v, %v)", x, y))
	}
	return Point[T]{X: x, Y: y, A: a, B: b}
}

// Infinity returns the identity element of the curve (a, b).
func Infinity[T Element[T]](a, b T) Point[T] {
	return Point[T]{A: a, B: b, inf: true}
}

func OnCurve[T Element[T]](x, y, a, b T) bool {
	lhs := y.Mul(y)
	rhs := x.Mul(x).Mul(x).Add(a.Mul(x)).Add(b)
	return lhs.Equals(rhs)
}

func (p Point[T]) IsInfinity() bool {
	return p.inf
}

func (p Point[T]) String() string {
	if p.inf {
		return "Point(infinity)"
	}
	return fmt.Sprintf("Point(%v,%v)_%v_%v", p.X, p.Y, p.A, p.B)
}

func (p Point[T]) sameCurve(o Point[T]) bool {
	return p.A.Equals(o.A) && p.B.Equals(o.B)
}

func (p Point[T]) Equals(o Point[T]) bool {
	if !p.sameCurve(o) || p.inf != o.inf {
		return false
	}
	return p.inf || (p.X.Equals(o.X) && p.Y.Equals(o.Y))
}

// Neg returns the additive inverse (x, -y).
func (p Point[T]) Neg() Point[T] {
	if p.inf {
		return p
	}
	return Point[T]{X: p.X, Y: p.Y.Scale(-1), A: p.A, B: p.B}
}

func (p Point[T]) Add(o Point[T]) Point[T] {
	if !p.sameCurve(o) {
		panic(errors.Wrapf(ErrMismatchedCurve, "%v, %v", p, o))
	}
	if p.inf {
		return o
	}
	if o.inf {
		return p
	}

	// vertical line, p and o are inverses
	if p.X.Equals(o.X) && !p.Y.Equals(o.Y) {
		return Infinity(p.A, p.B)
	}

	var s T
	if !p.X.Equals(o.X) {
		s = o.Y.Sub(p.Y).Div(o.X.Sub(p.X))
	} else {
		// doubling with tangent vertical
		if p.Y.IsZero() {
			return Infinity(p.A, p.B)
		}
		s = p.X.Mul(p.X).Scale(3).Add(p.A).Div(p.Y.Scale(2))
	}
	x := s.Mul(s).Sub(p.X).Sub(o.X)
	y := s.Mul(p.X.Sub(x)).Sub(p.Y)
	return Point[T]{X: x, Y: y, A: p.A, B: p.B}
}

// Mul does double-and-add over the bits of k, lowest first.
func (p Point[T]) Mul(k *big.Int) Point[T] {
	if k.Sign() < 0 {
		return p.Neg().Mul(new(big.Int).Neg(k))
	}
	current := p
	result := Infinity(p.A, p.B)
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = result.Add(current)
		}
		current = current.Add(current)
	}
	return result
}
