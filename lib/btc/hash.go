package btc

import (
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Sha256 returns a single SHA256 of the data.
func Sha256(b []byte) (out [32]byte) {
	return sha256.Sum256(b)
}

func ShaHash(b []byte, out []byte) {
	s := sha256.New()
	s.Write(b[:])
	tmp := s.Sum(nil)
	s.Reset()
	s.Write(tmp)
	copy(out[:], s.Sum(nil))
}

// Sha2Sum returns hash: SHA256( SHA256( data ) ).
// Where possible, using ShaHash() should be a bit faster.
func Sha2Sum(b []byte) (out [32]byte) {
	ShaHash(b, out[:])
	return
}

func Sha1Sum(b []byte) (out [20]byte) {
	return sha1.Sum(b)
}

func Ripemd160(b []byte) (out [20]byte) {
	rim := ripemd160.New()
	rim.Write(b)
	copy(out[:], rim.Sum(nil))
	return
}

func RimpHash(in []byte, out []byte) {
	sha := sha256.New()
	sha.Write(in)
	rim := ripemd160.New()
	rim.Write(sha.Sum(nil)[:])
	copy(out, rim.Sum(nil))
}

// Rimp160AfterSha256 returns hash: RIMP160( SHA256( data ) ).
// Where possible, using RimpHash() should be a bit faster.
func Rimp160AfterSha256(b []byte) (out [20]byte) {
	RimpHash(b, out[:])
	return
}
