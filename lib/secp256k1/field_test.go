package secp256k1

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fe31(n int64) FieldElement {
	return NewFieldElementInt(n, 31)
}

func TestFieldArithmetic(t *testing.T) {
	assert.True(t, fe31(2).Add(fe31(15)).Equals(fe31(17)))
	assert.True(t, fe31(17).Add(fe31(21)).Equals(fe31(7)))
	assert.True(t, fe31(29).Sub(fe31(4)).Equals(fe31(25)))
	assert.True(t, fe31(15).Sub(fe31(30)).Equals(fe31(16)))
	assert.True(t, fe31(24).Mul(fe31(19)).Equals(fe31(22)))
	assert.True(t, fe31(17).Pow(big.NewInt(3)).Equals(fe31(15)))
	assert.True(t, fe31(3).Div(fe31(24)).Equals(fe31(4)))
	assert.True(t, fe31(17).Pow(big.NewInt(-3)).Equals(fe31(29)))
	assert.True(t, fe31(4).Pow(big.NewInt(-4)).Mul(fe31(11)).Equals(fe31(13)))
	assert.True(t, fe31(7).Scale(5).Equals(fe31(4)))
}

func TestFieldLaws(t *testing.T) {
	for a := int64(0); a < 31; a += 3 {
		for b := int64(1); b < 31; b += 4 {
			c := fe31((a + b) % 31)
			x, y := fe31(a), fe31(b)
			if !x.Add(y).Add(c).Equals(x.Add(y.Add(c))) {
				t.Error("addition not associative", a, b)
			}
			if !x.Div(y).Mul(y).Equals(x) {
				t.Error("div/mul mismatch", a, b)
			}
			if !y.Pow(big.NewInt(0)).Equals(fe31(1)) {
				t.Error("pow 0 not 1", b)
			}
		}
	}
}

func recoverErr(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return
}

func TestFieldInvariants(t *testing.T) {
	e := recoverErr(func() { fe31(31) })
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrDomain))

	e = recoverErr(func() { fe31(-1) })
	assert.True(t, errors.Is(e, ErrDomain))

	e = recoverErr(func() { fe31(2).Add(NewFieldElementInt(2, 13)) })
	assert.True(t, errors.Is(e, ErrMismatchedField))

	e = recoverErr(func() { fe31(2).Div(fe31(0)) })
	assert.True(t, errors.Is(e, ErrDivisionByZero))
}

func TestIntToBytes(t *testing.T) {
	b, e := IntToBytes(big.NewInt(0x0102), 4, false)
	require.NoError(t, e)
	assert.Equal(t, []byte{0, 0, 1, 2}, b)

	b, e = IntToBytes(big.NewInt(0x0102), 4, true)
	require.NoError(t, e)
	assert.Equal(t, []byte{2, 1, 0, 0}, b)

	_, e = IntToBytes(big.NewInt(0x010203), 2, false)
	assert.True(t, errors.Is(e, ErrNumberTooBig))
}
