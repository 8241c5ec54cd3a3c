package script

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/chainkit/txcore/lib/btc"
)

// Scripts longer than this cannot appear in a block.
const MaxScriptLength = 4000000

// Cmd is a single script command: either a data element or an opcode.
type Cmd struct {
	IsData bool
	Data   []byte
	Op     Opcode
}

// Element returns a data push command. An empty element is OP_0, the only
// way it can be encoded.
func Element(b []byte) Cmd {
	if len(b) == 0 {
		return Op(OP_0)
	}
	return Cmd{IsData: true, Data: b}
}

// Op returns an opcode command.
func Op(op Opcode) Cmd {
	return Cmd{Op: op}
}

func (c Cmd) Is(op Opcode) bool {
	return !c.IsData && c.Op == op
}

func (c Cmd) isElement(size int) bool {
	return c.IsData && len(c.Data) == size
}

func (c Cmd) Equal(o Cmd) bool {
	if c.IsData != o.IsData {
		return false
	}
	if c.IsData {
		return bytes.Equal(c.Data, o.Data)
	}
	return c.Op == o.Op
}

func (c Cmd) String() string {
	if c.IsData {
		return hex.EncodeToString(c.Data)
	}
	return c.Op.String()
}

type Script struct {
	Cmds []Cmd
}

func New(cmds ...Cmd) *Script {
	return &Script{Cmds: cmds}
}

// Parse reads a varint length prefixed script.
func Parse(r io.Reader) (*Script, error) {
	raw, e := readRaw(r)
	if e != nil {
		return nil, e
	}
	return ParseRaw(raw)
}

// ParseCoinbase is like Parse but keeps bytes outside the opcode table
// as opcodes. Coinbase scriptSigs carry arbitrary miner data; such
// opcodes still fail if the script is ever executed.
func ParseCoinbase(r io.Reader) (*Script, error) {
	raw, e := readRaw(r)
	if e != nil {
		return nil, e
	}
	return parseRaw(raw, false)
}

func readRaw(r io.Reader) ([]byte, error) {
	length, e := btc.ReadVLen(r)
	if e != nil {
		return nil, errors.Wrap(ErrScriptParse, e.Error())
	}
	if length > MaxScriptLength {
		return nil, errors.Wrapf(ErrScriptParse, "script length %d", length)
	}
	raw := make([]byte, length)
	if _, e = io.ReadFull(r, raw); e != nil {
		return nil, errors.Wrapf(ErrScriptParse, "reading %d bytes: %s", length, e.Error())
	}
	return raw, nil
}

// ParseBytes parses a varint length prefixed script held in memory.
func ParseBytes(b []byte) (*Script, error) {
	rd := bytes.NewReader(b)
	s, e := Parse(rd)
	if e != nil {
		return nil, e
	}
	if rd.Len() != 0 {
		return nil, errors.Wrapf(ErrScriptParse, "%d trailing bytes", rd.Len())
	}
	return s, nil
}

// ParseRaw parses script bytes that carry no length prefix.
func ParseRaw(p []byte) (*Script, error) {
	return parseRaw(p, true)
}

func parseRaw(p []byte, strict bool) (*Script, error) {
	res := &Script{Cmds: []Cmd{}}
	var idx int
	for idx < len(p) {
		b := p[idx]
		idx++
		var n int
		switch {
		case b >= 1 && b <= 75:
			n = int(b)
		case Opcode(b) == OP_PUSHDATA1:
			if idx+1 > len(p) {
				return nil, errors.Wrap(ErrScriptParse, "truncated OP_PUSHDATA1")
			}
			n = int(p[idx])
			idx++
		case Opcode(b) == OP_PUSHDATA2:
			if idx+2 > len(p) {
				return nil, errors.Wrap(ErrScriptParse, "truncated OP_PUSHDATA2")
			}
			n = int(binary.LittleEndian.Uint16(p[idx : idx+2]))
			idx += 2
		default:
			if strict && !Opcode(b).Known() {
				return nil, errors.Wrapf(ErrUnknownOpcode, "0x%02x at offset %d", b, idx-1)
			}
			res.Cmds = append(res.Cmds, Op(Opcode(b)))
			continue
		}
		if idx+n > len(p) {
			return nil, errors.Wrapf(ErrScriptParse, "push of %d bytes overruns script at offset %d", n, idx)
		}
		res.Cmds = append(res.Cmds, Element(append([]byte(nil), p[idx:idx+n]...)))
		idx += n
	}
	return res, nil
}

// RawSerialize returns the script bytes without the length prefix.
func (s *Script) RawSerialize() ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range s.Cmds {
		if !c.IsData {
			buf.WriteByte(byte(c.Op))
			continue
		}
		l := len(c.Data)
		switch {
		case l <= 75:
			buf.WriteByte(byte(l))
		case l <= 0xff:
			buf.WriteByte(byte(OP_PUSHDATA1))
			buf.WriteByte(byte(l))
		case l <= btc.MAX_SCRIPT_ELEMENT_SIZE:
			buf.WriteByte(byte(OP_PUSHDATA2))
			buf.WriteByte(byte(l))
			buf.WriteByte(byte(l >> 8))
		default:
			return nil, errors.Wrapf(ErrElementTooLarge, "%d bytes", l)
		}
		buf.Write(c.Data)
	}
	return buf.Bytes(), nil
}

// Serialize returns the script prefixed with its varint length.
func (s *Script) Serialize() ([]byte, error) {
	raw, e := s.RawSerialize()
	if e != nil {
		return nil, e
	}
	return append(btc.EncodeVarInt(uint64(len(raw))), raw...), nil
}

// Add returns a new script with the commands of s followed by those of o.
func (s *Script) Add(o *Script) *Script {
	cmds := make([]Cmd, 0, len(s.Cmds)+len(o.Cmds))
	cmds = append(cmds, s.Cmds...)
	return &Script{Cmds: append(cmds, o.Cmds...)}
}

func (s *Script) Equal(o *Script) bool {
	if len(s.Cmds) != len(o.Cmds) {
		return false
	}
	for i := range s.Cmds {
		if !s.Cmds[i].Equal(o.Cmds[i]) {
			return false
		}
	}
	return true
}

func (s *Script) String() string {
	res := make([]string, len(s.Cmds))
	for i, c := range s.Cmds {
		res[i] = c.String()
	}
	return strings.Join(res, " ")
}

// FromString builds a script from the format String() produces.
// Tokens starting with "OP_" are opcodes, everything else must be hex.
func FromString(s string) (*Script, error) {
	res := &Script{Cmds: []Cmd{}}
	for _, tok := range strings.Fields(s) {
		if strings.HasPrefix(tok, "OP_") {
			op, ok := OpcodeByName(tok)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownOpcode, "%q", tok)
			}
			res.Cmds = append(res.Cmds, Op(op))
			continue
		}
		d, e := hex.DecodeString(tok)
		if e != nil {
			return nil, errors.Wrapf(ErrScriptParse, "token %q", tok)
		}
		res.Cmds = append(res.Cmds, Element(d))
	}
	return res, nil
}
