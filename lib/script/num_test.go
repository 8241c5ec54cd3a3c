package script

import (
	"encoding/hex"
	"testing"
)

func TestScriptNum(t *testing.T) {
	var tv = []struct {
		val int64
		hex string
	}{
		{0, ""},
		{1, "01"},
		{-1, "81"},
		{127, "7f"},
		{128, "8000"},
		{-128, "8080"},
		{255, "ff00"},
		{256, "0001"},
		{-255, "ff80"},
		{32767, "ff7f"},
		{-32768, "008080"},
		{1 << 31, "0000008000"},
	}
	for _, v := range tv {
		enc := hex.EncodeToString(EncodeNum(v.val))
		if enc != v.hex {
			t.Error("EncodeNum", v.val, enc)
		}
		b, _ := hex.DecodeString(v.hex)
		if DecodeNum(b) != v.val {
			t.Error("DecodeNum", v.hex, DecodeNum(b))
		}
	}
}

func TestCastToBool(t *testing.T) {
	var tv = []struct {
		hex string
		res bool
	}{
		{"", false},
		{"00", false},
		{"0000", false},
		{"80", false},
		{"0080", false},
		{"01", true},
		{"8000", true},
		{"0001", true},
	}
	for _, v := range tv {
		b, _ := hex.DecodeString(v.hex)
		if castToBool(b) != v.res {
			t.Error("castToBool", v.hex)
		}
	}
}
