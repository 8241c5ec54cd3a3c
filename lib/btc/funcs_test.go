package btc

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var var_int_tvs = []uint64{
	0x0,
	0x7f, 0x80,
	0xfc, 0xfd,
	0x407f, 0x4080,
	0xffff, 0x10000,
	0x20407f, 0x204080,
	0x1020407f, 0x10204080,
	0xffffffff, 0x100000000,
	0x81020407f, 0x810204080,
	0xffffffffffffffff,
}

func TestVarInt(t *testing.T) {
	for _, v := range var_int_tvs {
		enc := EncodeVarInt(v)
		if len(enc) != VLenSize(v) {
			t.Error("Bad size for", v, len(enc))
		}
		res, e := ReadVLen(bytes.NewReader(enc))
		if e != nil {
			t.Error(e.Error())
		}
		if res != v {
			t.Error("ReadVLen mismatch", v, res)
		}
		res, n := VULe(enc)
		if res != v || n != len(enc) {
			t.Error("VULe mismatch", v, res, n)
		}
	}
}

func TestVarIntEncoding(t *testing.T) {
	tests := []struct {
		val uint64
		hex string
	}{
		{0x64, "64"},
		{0xfd, "fdfd00"},
		{0xffff, "fdffff"},
		{0x10000, "fe00000100"},
		{0x100000000, "ff0000000001000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.hex, hex.EncodeToString(EncodeVarInt(tt.val)))
	}
}

func TestReadVLenTruncated(t *testing.T) {
	_, e := ReadVLen(bytes.NewReader([]byte{0xfe, 1, 2}))
	require.Error(t, e)
	_, e = ReadVLen(bytes.NewReader(nil))
	require.Error(t, e)
}

func TestLittleEndian(t *testing.T) {
	assert.Equal(t, uint64(0x0102), LittleEndianToUint([]byte{2, 1}))
	assert.Equal(t, []byte{3, 2, 1}, ReverseBytes([]byte{1, 2, 3}))

	var buf bytes.Buffer
	WriteUint32(&buf, 410393)
	v, e := ReadUint32(&buf)
	require.NoError(t, e)
	assert.Equal(t, uint32(410393), v)
}
