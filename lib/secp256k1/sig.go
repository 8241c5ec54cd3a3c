package secp256k1

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

var ErrMalformedSignature = errors.New("malformed DER signature")

type Signature struct {
	R, S *big.Int
}

func NewSignature(r, s *big.Int) *Signature {
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s)}
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%x,%x)", sig.R, sig.S)
}

func (sig *Signature) Equals(o *Signature) bool {
	return sig.R.Cmp(o.R) == 0 && sig.S.Cmp(o.S) == 0
}

// IsLowS tells whether s is not above N/2.
func (sig *Signature) IsLowS() bool {
	return sig.S.Cmp(halfN) <= 0
}

func derInt(n *big.Int) []byte {
	b := get_bin(n)
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return append([]byte{0x02, byte(len(b))}, b...)
}

// DER returns the signature as 0x30 <len> 0x02 <lenR> <R> 0x02 <lenS> <S>.
func (sig *Signature) DER() []byte {
	res := append(derInt(sig.R), derInt(sig.S)...)
	return append([]byte{0x30, byte(len(res))}, res...)
}

// ParseDER decodes a DER signature without a sighash byte.
func ParseDER(b []byte) (*Signature, error) {
	if len(b) < 8 {
		return nil, errors.Wrapf(ErrMalformedSignature, "too short (%d bytes)", len(b))
	}
	if b[0] != 0x30 {
		return nil, errors.Wrap(ErrMalformedSignature, "bad compound marker")
	}
	if int(b[1])+2 != len(b) {
		return nil, errors.Wrap(ErrMalformedSignature, "bad signature length")
	}
	r, rest, e := readDerInt(b[2:])
	if e != nil {
		return nil, e
	}
	s, _, e := readDerInt(rest)
	if e != nil {
		return nil, e
	}
	if len(r)+len(s)+6 != len(b) {
		return nil, errors.Wrap(ErrMalformedSignature, "signature too long")
	}
	return &Signature{R: new(big.Int).SetBytes(r), S: new(big.Int).SetBytes(s)}, nil
}

func readDerInt(b []byte) (val, rest []byte, e error) {
	if len(b) < 2 || b[0] != 0x02 {
		e = errors.Wrap(ErrMalformedSignature, "bad integer marker")
		return
	}
	l := int(b[1])
	if l == 0 || 2+l > len(b) {
		e = errors.Wrapf(ErrMalformedSignature, "bad integer length %d", l)
		return
	}
	return b[2 : 2+l], b[2+l:], nil
}
