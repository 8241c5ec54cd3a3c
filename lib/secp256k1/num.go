package secp256k1

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
	big3 = big.NewInt(3)
)

var ErrNumberTooBig = errors.New("number does not fit in the requested length")

// IntToBytes returns the magnitude of n as a fixed length byte string.
func IntToBytes(n *big.Int, length int, littleEndian bool) ([]byte, error) {
	b := n.Bytes()
	if len(b) > length {
		return nil, errors.Wrapf(ErrNumberTooBig, "%d bytes into %d", len(b), length)
	}
	res := make([]byte, length)
	copy(res[length-len(b):], b)
	if littleEndian {
		for i, j := 0, length-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
	}
	return res, nil
}

// get_bin returns the 32 byte big endian form of a number known to be below 2^256.
func get_bin(n *big.Int) []byte {
	b, e := IntToBytes(n, 32, false)
	if e != nil {
		panic(e)
	}
	return b
}

func hexToInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("bad hex constant: " + s)
	}
	return n
}
