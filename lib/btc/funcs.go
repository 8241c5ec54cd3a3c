package btc

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var ErrShortVarInt = errors.New("var_int truncated")

func allzeros(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			return false
		}
	}
	return true
}

// PutULe puts var_uint field into the given buffer (needs at least 9 bytes).
func PutULe(b []byte, uvl uint64) int {
	if uvl < 0xfd {
		b[0] = byte(uvl)
		return 1
	}
	if uvl < 0x10000 {
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:3], uint16(uvl))
		return 3
	}
	if uvl < 0x100000000 {
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:5], uint32(uvl))
		return 5
	}
	b[0] = 0xff
	binary.LittleEndian.PutUint64(b[1:9], uvl)
	return 9
}

// EncodeVarInt returns the var_int encoding of the value.
func EncodeVarInt(uvl uint64) []byte {
	var b [9]byte
	return append([]byte(nil), b[:PutULe(b[:], uvl)]...)
}

// VLenSize returns how many bytes it would take to write this VLen.
func VLenSize(uvl uint64) int {
	if uvl < 0xfd {
		return 1
	}
	if uvl < 0x10000 {
		return 3
	}
	if uvl < 0x100000000 {
		return 5
	}
	return 9
}

// VULe returns var_uint and number of bytes that the var_uint took.
// If there is not enough bytes in the buffer, it returns 0, 0.
func VULe(b []byte) (le uint64, var_int_siz int) {
	if len(b) > 0 {
		switch b[0] {
		case 0xfd:
			if len(b) >= 3 {
				return uint64(binary.LittleEndian.Uint16(b[1:3])), 3
			}
		case 0xfe:
			if len(b) >= 5 {
				return uint64(binary.LittleEndian.Uint32(b[1:5])), 5
			}
		case 0xff:
			if len(b) >= 9 {
				return binary.LittleEndian.Uint64(b[1:9]), 9
			}
		default:
			return uint64(b[0]), 1
		}
	}
	return
}

// ReadVLen reads var_len from the given reader.
func ReadVLen(b io.Reader) (res uint64, e error) {
	var buf [8]byte

	if _, e = io.ReadFull(b, buf[:1]); e != nil {
		e = errors.Wrap(ErrShortVarInt, e.Error())
		return
	}

	if buf[0] < 0xfd {
		res = uint64(buf[0])
		return
	}

	c := 2 << (2 - (0xff - buf[0]))

	if _, e = io.ReadFull(b, buf[:c]); e != nil {
		e = errors.Wrap(ErrShortVarInt, e.Error())
		return
	}
	for i := 0; i < c; i++ {
		res |= (uint64(buf[i]) << uint64(8*i))
	}
	return
}

// WriteVlen writes var_length field into the given writer.
func WriteVlen(b io.Writer, var_len uint64) {
	var buf [9]byte
	b.Write(buf[:PutULe(buf[:], var_len)])
}

// ReadUint32 reads a 4 byte little endian number.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, e := io.ReadFull(r, buf[:]); e != nil {
		return 0, e
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadUint64 reads an 8 byte little endian number.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, e := io.ReadFull(r, buf[:]); e != nil {
		return 0, e
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func WriteUint32(w io.Writer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func WriteUint64(w io.Writer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

// LittleEndianToUint decodes up to 8 little endian bytes.
func LittleEndianToUint(b []byte) (res uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		res = res<<8 | uint64(b[i])
	}
	return
}

// ReverseBytes returns a reversed copy of the slice.
func ReverseBytes(b []byte) []byte {
	res := make([]byte, len(b))
	for i := range b {
		res[len(b)-1-i] = b[i]
	}
	return res
}
