package secp256k1

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
)

// PrivateKey holds the secret scalar and its public point, computed once.
type PrivateKey struct {
	Secret *big.Int
	Point  *S256Point
}

// NewPrivateKey panics if the secret is not in [1, N-1].
func NewPrivateKey(secret *big.Int) *PrivateKey {
	if !inOrder(secret) {
		panic(errors.Wrap(ErrDomain, "private key must be in range 1 to N-1"))
	}
	s := new(big.Int).Set(secret)
	return &PrivateKey{Secret: s, Point: G.Mul(s)}
}

func (k *PrivateKey) PublicKey() *S256Point {
	return k.Point
}

// Sign produces a low-s signature of z with an RFC6979 nonce.
func (k *PrivateKey) Sign(z *big.Int) *Signature {
	nonce := k.DeterministicK(z)
	r := G.Mul(nonce).X.Num()
	kInv := new(big.Int).Exp(nonce, new(big.Int).Sub(N, big2), N)
	s := new(big.Int).Mul(r, k.Secret)
	s.Add(s, z)
	s.Mul(s, kInv)
	s.Mod(s, N)
	if s.Cmp(halfN) > 0 {
		s.Sub(N, s)
	}
	return &Signature{R: r, S: s}
}

func rfc6979_hmac(key []byte, data ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// DeterministicK derives the signing nonce from the secret and the digest.
func (k *PrivateKey) DeterministicK(z *big.Int) *big.Int {
	kk := make([]byte, 32)
	v := bytes.Repeat([]byte{0x01}, 32)
	zz := new(big.Int).Set(z)
	if zz.Cmp(N) > 0 {
		zz.Sub(zz, N)
	}
	zb, secret := get_bin(zz), get_bin(k.Secret)

	kk = rfc6979_hmac(kk, v, []byte{0x00}, secret, zb)
	v = rfc6979_hmac(kk, v)
	kk = rfc6979_hmac(kk, v, []byte{0x01}, secret, zb)
	v = rfc6979_hmac(kk, v)

	for {
		v = rfc6979_hmac(kk, v)
		candidate := new(big.Int).SetBytes(v)
		if inOrder(candidate) {
			return candidate
		}
		kk = rfc6979_hmac(kk, v, []byte{0x00})
		v = rfc6979_hmac(kk, v)
	}
}

// WIF returns the wallet import format of the secret.
func (k *PrivateKey) WIF(compressed, testnet bool) string {
	ver := byte(0x80)
	if testnet {
		ver = 0xef
	}
	b := get_bin(k.Secret)
	if compressed {
		b = append(b, 0x01)
	}
	return base58.CheckEncode(b, ver)
}
