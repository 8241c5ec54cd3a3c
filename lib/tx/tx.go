package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/script"
)

// Sanity limits for counts read from the wire.
const (
	MaxTxInOut       = 100000
	MaxWitnessItems  = 100000
	MaxWitnessLength = 4000000
)

// TxPrevOut points at an output of a previous transaction.
// Hash is kept in wire order, String() shows it the explorer way.
type TxPrevOut struct {
	Hash btc.Uint256
	Vout uint32
}

func (po *TxPrevOut) String() string {
	return fmt.Sprintf("%s-%03d", po.Hash.String(), po.Vout)
}

// IsNull tells whether this is the null outpoint of a coinbase input.
func (po *TxPrevOut) IsNull() bool {
	return po.Hash.IsZero() && po.Vout == btc.COINBASE_INDEX
}

type TxIn struct {
	Input     TxPrevOut
	ScriptSig *script.Script
	Sequence  uint32
	Witness   [][]byte
}

type TxOut struct {
	Value    uint64
	PkScript *script.Script
}

type Tx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
	Testnet  bool
	SegWit   bool

	// BIP143 intermediate hashes, computed on first use
	mu           sync.Mutex
	hashPrevouts []byte
	hashSequence []byte
	hashOutputs  []byte
	outputsErr   error
}

func NewTxIn(prev *btc.Uint256, vout uint32) *TxIn {
	return &TxIn{
		Input:     TxPrevOut{Hash: *prev, Vout: vout},
		ScriptSig: script.New(),
		Sequence:  0xffffffff,
	}
}

func NewTxOut(value uint64, pk *script.Script) *TxOut {
	return &TxOut{Value: value, PkScript: pk}
}

func New(version uint32, ins []*TxIn, outs []*TxOut, lockTime uint32, testnet bool) *Tx {
	return &Tx{Version: version, TxIn: ins, TxOut: outs, LockTime: lockTime, Testnet: testnet}
}

// ParseHex decodes a transaction from its hex form.
func ParseHex(s string, testnet bool) (*Tx, error) {
	raw, e := hex.DecodeString(strings.TrimSpace(s))
	if e != nil {
		return nil, errors.Wrap(ErrTxParse, e.Error())
	}
	rd := bytes.NewReader(raw)
	t, e := Parse(rd, testnet)
	if e != nil {
		return nil, e
	}
	if rd.Len() != 0 {
		return nil, errors.Wrapf(ErrTxParse, "%d trailing bytes", rd.Len())
	}
	return t, nil
}

// Parse reads a legacy or segwit serialized transaction.
func Parse(r io.Reader, testnet bool) (t *Tx, e error) {
	t = &Tx{Testnet: testnet}
	defer func() {
		if e != nil {
			e = errors.Wrap(ErrTxParse, e.Error())
			t = nil
		}
	}()

	if t.Version, e = btc.ReadUint32(r); e != nil {
		return
	}

	var first [1]byte
	if _, e = io.ReadFull(r, first[:]); e != nil {
		return
	}
	cntReader := io.MultiReader(bytes.NewReader(first[:]), r)
	if first[0] == 0x00 {
		var flag [1]byte
		if _, e = io.ReadFull(r, flag[:]); e != nil {
			return
		}
		if flag[0] != 0x01 {
			e = errors.Errorf("not a segwit transaction: flag %02x", flag[0])
			return
		}
		t.SegWit = true
		cntReader = r
	}

	var cnt uint64
	if cnt, e = readCount(cntReader, MaxTxInOut); e != nil {
		return
	}
	t.TxIn = make([]*TxIn, cnt)
	for i := range t.TxIn {
		if t.TxIn[i], e = parseTxIn(r); e != nil {
			e = errors.Wrapf(e, "input %d", i)
			return
		}
	}

	if cnt, e = readCount(r, MaxTxInOut); e != nil {
		return
	}
	t.TxOut = make([]*TxOut, cnt)
	for i := range t.TxOut {
		if t.TxOut[i], e = parseTxOut(r); e != nil {
			e = errors.Wrapf(e, "output %d", i)
			return
		}
	}

	if t.SegWit {
		for i, in := range t.TxIn {
			if in.Witness, e = parseWitness(r); e != nil {
				e = errors.Wrapf(e, "witness %d", i)
				return
			}
		}
	}

	t.LockTime, e = btc.ReadUint32(r)
	return
}

func readCount(r io.Reader, max uint64) (uint64, error) {
	cnt, e := btc.ReadVLen(r)
	if e != nil {
		return 0, e
	}
	if cnt > max {
		return 0, errors.Errorf("count %d above limit %d", cnt, max)
	}
	return cnt, nil
}

func parseTxIn(r io.Reader) (in *TxIn, e error) {
	in = new(TxIn)
	if _, e = io.ReadFull(r, in.Input.Hash.Hash[:]); e != nil {
		return
	}
	if in.Input.Vout, e = btc.ReadUint32(r); e != nil {
		return
	}
	if in.Input.IsNull() {
		in.ScriptSig, e = script.ParseCoinbase(r)
	} else {
		in.ScriptSig, e = script.Parse(r)
	}
	if e != nil {
		return
	}
	in.Sequence, e = btc.ReadUint32(r)
	return
}

func parseTxOut(r io.Reader) (out *TxOut, e error) {
	out = new(TxOut)
	if out.Value, e = btc.ReadUint64(r); e != nil {
		return
	}
	out.PkScript, e = script.Parse(r)
	return
}

func parseWitness(r io.Reader) (items [][]byte, e error) {
	var cnt, l uint64
	if cnt, e = readCount(r, MaxWitnessItems); e != nil {
		return
	}
	items = make([][]byte, cnt)
	for i := range items {
		if l, e = readCount(r, MaxWitnessLength); e != nil {
			return
		}
		items[i] = make([]byte, l)
		if _, e = io.ReadFull(r, items[i]); e != nil {
			return
		}
	}
	return
}

func (in *TxIn) serialize(wr io.Writer, scriptSig *script.Script) error {
	raw, e := scriptSig.Serialize()
	if e != nil {
		return e
	}
	wr.Write(in.Input.Hash.Hash[:])
	btc.WriteUint32(wr, in.Input.Vout)
	wr.Write(raw)
	btc.WriteUint32(wr, in.Sequence)
	return nil
}

func (out *TxOut) Serialize() ([]byte, error) {
	raw, e := out.PkScript.Serialize()
	if e != nil {
		return nil, e
	}
	wr := new(bytes.Buffer)
	btc.WriteUint64(wr, out.Value)
	wr.Write(raw)
	return wr.Bytes(), nil
}

func (t *Tx) serialize(segwit bool, scriptSigs func(i int) *script.Script) ([]byte, error) {
	wr := new(bytes.Buffer)
	btc.WriteUint32(wr, t.Version)
	if segwit {
		wr.Write([]byte{0x00, 0x01})
	}

	btc.WriteVlen(wr, uint64(len(t.TxIn)))
	for i, in := range t.TxIn {
		if e := in.serialize(wr, scriptSigs(i)); e != nil {
			return nil, errors.Wrapf(e, "input %d", i)
		}
	}

	btc.WriteVlen(wr, uint64(len(t.TxOut)))
	for i, out := range t.TxOut {
		raw, e := out.Serialize()
		if e != nil {
			return nil, errors.Wrapf(e, "output %d", i)
		}
		wr.Write(raw)
	}

	if segwit {
		for _, in := range t.TxIn {
			btc.WriteVlen(wr, uint64(len(in.Witness)))
			for _, item := range in.Witness {
				btc.WriteVlen(wr, uint64(len(item)))
				wr.Write(item)
			}
		}
	}

	btc.WriteUint32(wr, t.LockTime)
	return wr.Bytes(), nil
}

func (t *Tx) ownScriptSig(i int) *script.Script {
	return t.TxIn[i].ScriptSig
}

// Serialize returns the segwit form for segwit transactions, the legacy one otherwise.
func (t *Tx) Serialize() ([]byte, error) {
	return t.serialize(t.SegWit, t.ownScriptSig)
}

// SerializeLegacy never includes the witness data.
func (t *Tx) SerializeLegacy() ([]byte, error) {
	return t.serialize(false, t.ownScriptSig)
}

// Hash returns hash256 of the legacy serialization, in wire order.
func (t *Tx) Hash() (*btc.Uint256, error) {
	raw, e := t.SerializeLegacy()
	if e != nil {
		return nil, e
	}
	return btc.NewSha2Hash(raw), nil
}

// Id returns the transaction id the way explorers show it.
func (t *Tx) Id() string {
	h, e := t.Hash()
	if e != nil {
		return "<invalid>"
	}
	return h.String()
}

func (t *Tx) IsCoinbase() bool {
	return len(t.TxIn) == 1 && t.TxIn[0].Input.IsNull()
}

// CoinbaseHeight returns the BIP34 block height from a coinbase scriptSig.
func (t *Tx) CoinbaseHeight() (uint32, bool) {
	if !t.IsCoinbase() {
		return 0, false
	}
	cmds := t.TxIn[0].ScriptSig.Cmds
	if len(cmds) == 0 || !cmds[0].IsData || len(cmds[0].Data) > 8 {
		return 0, false
	}
	return uint32(btc.LittleEndianToUint(cmds[0].Data)), true
}

func (t *Tx) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tx: %s\nversion: %d\nsegwit: %t\n", t.Id(), t.Version, t.SegWit)
	sb.WriteString("tx_ins:\n")
	for _, in := range t.TxIn {
		fmt.Fprintf(&sb, "  %s seq:%08x sig:%s\n", in.Input.String(), in.Sequence, in.ScriptSig.String())
		for _, w := range in.Witness {
			fmt.Fprintf(&sb, "    witness:%s\n", hex.EncodeToString(w))
		}
	}
	sb.WriteString("tx_outs:\n")
	for _, out := range t.TxOut {
		fmt.Fprintf(&sb, "  %.8f BTC to %s\n", float64(out.Value)/btc.COIN, out.PkScript.String())
	}
	fmt.Fprintf(&sb, "locktime: %d", t.LockTime)
	return sb.String()
}
