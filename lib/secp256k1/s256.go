package secp256k1

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/chainkit/txcore/lib/btc"
)

var (
	// P is the field prime 2^256 - 2^32 - 977.
	P = hexToInt("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	// N is the order of G.
	N = hexToInt("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

	halfN = new(big.Int).Rsh(N, 1)

	A = S256Field(big0)
	B = S256Field(big.NewInt(7))

	G = NewS256Point(
		hexToInt("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
		hexToInt("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"))
)

var ErrBadPubkey = errors.New("malformed SEC public key")

func S256Field(n *big.Int) FieldElement {
	return NewFieldElement(n, P)
}

// S256Point is a point on secp256k1.
type S256Point struct {
	Point[FieldElement]
}

// NewS256Point panics if (x, y) is not on the curve.
func NewS256Point(x, y *big.Int) *S256Point {
	return &S256Point{NewPoint(S256Field(x), S256Field(y), A, B)}
}

func S256Infinity() *S256Point {
	return &S256Point{Infinity(A, B)}
}

func (p *S256Point) String() string {
	if p.IsInfinity() {
		return "S256Point(infinity)"
	}
	return fmt.Sprintf("S256Point(%064x,%064x)", p.X.num, p.Y.num)
}

func (p *S256Point) Equals(o *S256Point) bool {
	return p.Point.Equals(o.Point)
}

func (p *S256Point) Add(o *S256Point) *S256Point {
	return &S256Point{p.Point.Add(o.Point)}
}

// Mul reduces the scalar mod N before multiplying.
func (p *S256Point) Mul(k *big.Int) *S256Point {
	return &S256Point{p.Point.Mul(new(big.Int).Mod(k, N))}
}

// Verify checks the signature against the digest z.
func (p *S256Point) Verify(z *big.Int, sig *Signature) bool {
	if sig == nil || !inOrder(sig.R) || !inOrder(sig.S) || p.IsInfinity() {
		return false
	}
	sInv := new(big.Int).Exp(sig.S, new(big.Int).Sub(N, big2), N)
	u := new(big.Int).Mul(z, sInv)
	u.Mod(u, N)
	v := new(big.Int).Mul(sig.R, sInv)
	v.Mod(v, N)
	total := G.Mul(u).Add(p.Mul(v))
	if total.IsInfinity() {
		return false
	}
	return total.X.num.Cmp(sig.R) == 0
}

func inOrder(n *big.Int) bool {
	return n != nil && n.Sign() > 0 && n.Cmp(N) < 0
}

// Sec returns the serialized key in uncompressed format "<04> <X> <Y>"
// or in compressed format: "<02> <X>", eventually "<03> <X>".
func (p *S256Point) Sec(compressed bool) (raw []byte) {
	if compressed {
		raw = make([]byte, 33)
		if p.Y.num.Bit(0) == 1 {
			raw[0] = 0x03
		} else {
			raw[0] = 0x02
		}
		copy(raw[1:], get_bin(p.X.num))
	} else {
		raw = make([]byte, 65)
		raw[0] = 0x04
		copy(raw[1:33], get_bin(p.X.num))
		copy(raw[33:65], get_bin(p.Y.num))
	}
	return
}

// ParseSec decodes both compressed and uncompressed keys.
func ParseSec(pub []byte) (*S256Point, error) {
	if len(pub) == 65 && pub[0] == 0x04 {
		x := new(big.Int).SetBytes(pub[1:33])
		y := new(big.Int).SetBytes(pub[33:65])
		if x.Cmp(P) >= 0 || y.Cmp(P) >= 0 {
			return nil, errors.Wrap(ErrBadPubkey, "coordinate above field prime")
		}
		fx, fy := S256Field(x), S256Field(y)
		if !OnCurve(fx, fy, A, B) {
			return nil, errors.Wrap(ErrBadPubkey, ErrOffCurve.Error())
		}
		return &S256Point{Point[FieldElement]{X: fx, Y: fy, A: A, B: B}}, nil
	}
	if len(pub) != 33 || (pub[0] != 0x02 && pub[0] != 0x03) {
		return nil, errors.Wrapf(ErrBadPubkey, "length %d", len(pub))
	}
	x := new(big.Int).SetBytes(pub[1:33])
	if x.Cmp(P) >= 0 {
		return nil, errors.Wrap(ErrBadPubkey, "x above field prime")
	}
	fx := S256Field(x)
	alpha := fx.Mul(fx).Mul(fx).Add(B)
	beta := alpha.Sqrt()
	if !beta.Mul(beta).Equals(alpha) {
		return nil, errors.Wrap(ErrBadPubkey, ErrOffCurve.Error())
	}
	even, odd := beta, beta
	if beta.num.Bit(0) == 0 {
		odd = S256Field(new(big.Int).Sub(P, beta.num))
	} else {
		even = S256Field(new(big.Int).Sub(P, beta.num))
	}
	y := even
	if pub[0] == 0x03 {
		y = odd
	}
	return &S256Point{Point[FieldElement]{X: fx, Y: y, A: A, B: B}}, nil
}

func (p *S256Point) Hash160(compressed bool) []byte {
	h := btc.Rimp160AfterSha256(p.Sec(compressed))
	return h[:]
}

// Address returns the base58check P2PKH address of the key.
func (p *S256Point) Address(compressed, testnet bool) string {
	ver := byte(0x00)
	if testnet {
		ver = 0x6f
	}
	return base58.CheckEncode(p.Hash160(compressed), ver)
}
