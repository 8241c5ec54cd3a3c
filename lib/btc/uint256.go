package btc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// Uint256 holds a 32 byte hash in the order it travels on the wire.
// String() shows it the way block explorers do (byte reversed).
type Uint256 struct {
	Hash [32]byte
}

var ErrBadHashString = errors.New("hash string must be 64 hex characters")

func NewUint256(h []byte) (res *Uint256) {
	res = new(Uint256)
	copy(res.Hash[:], h)
	return
}

// NewUint256FromString decodes a MSB hex string (explorer order).
func NewUint256FromString(s string) (*Uint256, error) {
	d, e := hex.DecodeString(s)
	if e != nil {
		return nil, errors.Wrap(e, "decode hash")
	}
	if len(d) != 32 {
		return nil, ErrBadHashString
	}
	res := new(Uint256)
	for i := 0; i < 32; i++ {
		res.Hash[31-i] = d[i]
	}
	return res, nil
}

func NewSha2Hash(data []byte) (res *Uint256) {
	res = new(Uint256)
	ShaHash(data, res.Hash[:])
	return
}

func (u *Uint256) Bytes() []byte {
	return u.Hash[:]
}

func (u *Uint256) String() (s string) {
	for i := 0; i < 32; i++ {
		s += fmt.Sprintf("%02x", u.Hash[31-i])
	}
	return
}

func (u *Uint256) Equal(o *Uint256) bool {
	return bytes.Equal(u.Hash[:], o.Hash[:])
}

func (u *Uint256) IsZero() bool {
	return allzeros(u.Hash[:])
}

// BigInt interprets the hash as a big-endian number, the way a sighash digest is used.
func (u *Uint256) BigInt() *big.Int {
	return new(big.Int).SetBytes(u.Hash[:])
}
