package script

// Script numbers are little endian, sign-magnitude, with the sign in the top bit of the last byte.
// Zero is the empty string.

const nMaxNumSize = 4

func EncodeNum(val int64) []byte {
	var negative bool

	if val == 0 {
		return []byte{}
	}
	abs := uint64(val)
	if val < 0 {
		negative = true
		abs = uint64(-val)
	}
	var d []byte
	for abs != 0 {
		d = append(d, byte(abs))
		abs >>= 8
	}

	if d[len(d)-1]&0x80 != 0 {
		if negative {
			d = append(d, 0x80)
		} else {
			d = append(d, 0x00)
		}
	} else if negative {
		d[len(d)-1] |= 0x80
	}
	return d
}

// DecodeNum is the inverse of EncodeNum. Inputs longer than 8 bytes are not meaningful.
func DecodeNum(d []byte) (res int64) {
	if len(d) == 0 {
		return
	}

	var i int
	for i < len(d)-1 {
		res |= int64(d[i]) << uint(i*8)
		i++
	}

	if (d[i] & 0x80) != 0 {
		res |= int64(d[i]&0x7f) << uint(i*8)
		res = -res
	} else {
		res |= int64(d[i]) << uint(i*8)
	}
	return
}

// castToBool is false for any encoding of zero, negative zero included.
func castToBool(d []byte) bool {
	for i := 0; i < len(d); i++ {
		if d[i] != 0 {
			return i != len(d)-1 || d[i] != 0x80
		}
	}
	return false
}
