package secp256k1

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// Invariant violations. These are raised with panic, they mean a bug in the caller.
var (
	ErrDomain          = errors.New("value outside of field range")
	ErrMismatchedField = errors.New("cannot operate on elements of different fields")
	ErrDivisionByZero  = errors.New("division by zero field element")
)

// Element is the set of field operations a Point needs from its coordinates.
type Element[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Scale(int64) T
	Pow(*big.Int) T
	Div(T) T
	Equals(T) bool
	IsZero() bool
}

// FieldElement is a number modulo a prime.
// Values are never modified after construction.
type FieldElement struct {
	num   *big.Int
	prime *big.Int
}

func NewFieldElement(num, prime *big.Int) FieldElement {
	if num.Sign() < 0 || num.Cmp(prime) >= 0 {
		panic(errors.Wrapf(ErrDomain, "num %s not in range 0 to %s", num, new(big.Int).Sub(prime, big1)))
	}
	return FieldElement{num: new(big.Int).Set(num), prime: prime}
}

// NewFieldElementInt is a shortcut for small fields.
func NewFieldElementInt(num, prime int64) FieldElement {
	return NewFieldElement(big.NewInt(num), big.NewInt(prime))
}

func (a FieldElement) Num() *big.Int {
	return new(big.Int).Set(a.num)
}

func (a FieldElement) Prime() *big.Int {
	return a.prime
}

func (a FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", a.prime.Text(16), a.num.Text(16))
}

func (a FieldElement) with(n *big.Int) FieldElement {
	return FieldElement{num: n.Mod(n, a.prime), prime: a.prime}
}

func (a FieldElement) check(b FieldElement) {
	if a.prime.Cmp(b.prime) != 0 {
		panic(errors.Wrapf(ErrMismatchedField, "%s vs %s", a.prime.Text(16), b.prime.Text(16)))
	}
}

func (a FieldElement) Equals(b FieldElement) bool {
	return a.prime.Cmp(b.prime) == 0 && a.num.Cmp(b.num) == 0
}

func (a FieldElement) IsZero() bool {
	return a.num.Sign() == 0
}

func (a FieldElement) Add(b FieldElement) FieldElement {
	a.check(b)
	return a.with(new(big.Int).Add(a.num, b.num))
}

func (a FieldElement) Sub(b FieldElement) FieldElement {
	a.check(b)
	return a.with(new(big.Int).Sub(a.num, b.num))
}

func (a FieldElement) Mul(b FieldElement) FieldElement {
	a.check(b)
	return a.with(new(big.Int).Mul(a.num, b.num))
}

// Scale multiplies by an integer coefficient.
func (a FieldElement) Scale(c int64) FieldElement {
	return a.with(new(big.Int).Mul(a.num, big.NewInt(c)))
}

// Pow reduces the exponent mod (prime-1) first, so negative exponents work.
func (a FieldElement) Pow(exp *big.Int) FieldElement {
	n := new(big.Int).Mod(exp, new(big.Int).Sub(a.prime, big1))
	return a.with(new(big.Int).Exp(a.num, n, a.prime))
}

// Div uses b^(prime-2) as the inverse of b.
func (a FieldElement) Div(b FieldElement) FieldElement {
	a.check(b)
	if b.IsZero() {
		panic(ErrDivisionByZero)
	}
	inv := new(big.Int).Exp(b.num, new(big.Int).Sub(a.prime, big2), a.prime)
	return a.with(inv.Mul(inv, a.num))
}

// Sqrt is only valid for primes where p % 4 == 3.
func (a FieldElement) Sqrt() FieldElement {
	e := new(big.Int).Add(a.prime, big1)
	return a.Pow(e.Rsh(e, 2))
}
