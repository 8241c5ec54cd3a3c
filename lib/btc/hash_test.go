package btc

import (
	"encoding/hex"
	"testing"
)

func TestHashes(t *testing.T) {
	var tv = []struct {
		fn  func([]byte) []byte
		in  string
		out string
	}{
		{func(b []byte) []byte { h := Sha2Sum(b); return h[:] }, "",
			"5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"},
		{func(b []byte) []byte { h := Sha1Sum(b); return h[:] }, "abc",
			"a9993e364706816aba3e25717850c26c9cd0d89d"},
		{func(b []byte) []byte { h := Ripemd160(b); return h[:] }, "abc",
			"8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{func(b []byte) []byte { h := Rimp160AfterSha256(b); return h[:] }, "",
			"b472a266d0bd89c13706a4132ccfb16f7c3b9fcb"},
	}
	for i := range tv {
		res := hex.EncodeToString(tv[i].fn([]byte(tv[i].in)))
		if res != tv[i].out {
			t.Error("Hash mismatch at", i, res)
		}
	}
}

func TestUint256String(t *testing.T) {
	const s = "d1c789a9c60383bf715f3f6ad9d14b91fe55f3deb369fe5d9280cb1a01793f81"
	u, e := NewUint256FromString(s)
	if e != nil {
		t.Fatal(e.Error())
	}
	if u.Hash[0] != 0x81 || u.Hash[31] != 0xd1 {
		t.Error("Wrong byte order")
	}
	if u.String() != s {
		t.Error("String mismatch", u.String())
	}
	if _, e = NewUint256FromString("abcd"); e == nil {
		t.Error("Short hash accepted")
	}
}
