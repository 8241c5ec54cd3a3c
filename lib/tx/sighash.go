package tx

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/script"
)

func (t *Tx) checkIndex(idx int) error {
	if idx < 0 || idx >= len(t.TxIn) {
		return errors.Wrapf(ErrInputIndex, "%d of %d", idx, len(t.TxIn))
	}
	return nil
}

// SigHash returns the legacy (SIGHASH_ALL) digest for input idx.
// The input being signed carries redeem in its scriptSig slot when given,
// otherwise the locking script of the output it spends. All other
// scriptSigs are emptied.
func (t *Tx) SigHash(ctx context.Context, f PrevOutFetcher, idx int, redeem *script.Script) (*btc.Uint256, error) {
	if e := t.checkIndex(idx); e != nil {
		return nil, e
	}
	code := redeem
	if code == nil {
		var e error
		if code, e = t.TxIn[idx].ScriptPubKey(ctx, f, t.Testnet); e != nil {
			return nil, e
		}
	}

	empty := script.New()
	raw, e := t.serialize(false, func(i int) *script.Script {
		if i == idx {
			return code
		}
		return empty
	})
	if e != nil {
		return nil, e
	}
	var ht [4]byte
	binary.LittleEndian.PutUint32(ht[:], btc.SIGHASH_ALL)
	return btc.NewSha2Hash(append(raw, ht[:]...)), nil
}

// HashPrevouts is hash256 of all the outpoints, computed once per transaction.
func (t *Tx) HashPrevouts() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hashPrevouts == nil {
		t.computeInputHashes()
	}
	return t.hashPrevouts
}

// HashSequence is hash256 of all the input sequence numbers.
func (t *Tx) HashSequence() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hashSequence == nil {
		t.computeInputHashes()
	}
	return t.hashSequence
}

// HashOutputs is hash256 of all the serialized outputs. It fails when an
// output script cannot be serialized, e.g. a parsed push above 520 bytes.
func (t *Tx) HashOutputs() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hashOutputs == nil && t.outputsErr == nil {
		t.hashOutputs, t.outputsErr = t.computeOutputsHash()
	}
	return t.hashOutputs, t.outputsErr
}

// Caller must hold t.mu.
func (t *Tx) computeInputHashes() {
	var buf [4]byte
	prevs := new(bytes.Buffer)
	seqs := new(bytes.Buffer)
	for _, in := range t.TxIn {
		prevs.Write(in.Input.Hash.Hash[:])
		binary.LittleEndian.PutUint32(buf[:], in.Input.Vout)
		prevs.Write(buf[:])
		binary.LittleEndian.PutUint32(buf[:], in.Sequence)
		seqs.Write(buf[:])
	}
	hp := btc.Sha2Sum(prevs.Bytes())
	hs := btc.Sha2Sum(seqs.Bytes())
	t.hashPrevouts = hp[:]
	t.hashSequence = hs[:]
}

// Caller must hold t.mu.
func (t *Tx) computeOutputsHash() ([]byte, error) {
	outs := new(bytes.Buffer)
	for i, out := range t.TxOut {
		raw, e := out.Serialize()
		if e != nil {
			log.Warn("output not serializable for BIP143", zap.Int("output", i), zap.Error(e))
			return nil, errors.Wrapf(e, "output %d", i)
		}
		outs.Write(raw)
	}
	ho := btc.Sha2Sum(outs.Bytes())
	return ho[:], nil
}

// ScriptCode picks the BIP143 script code for a witness input: the witness
// script for P2WSH, a P2PKH built from the key hash for P2WPKH. The key hash
// comes from the P2SH redeem script when given, else from the spent output.
func (t *Tx) scriptCode(ctx context.Context, f PrevOutFetcher, idx int, redeem, witnessScript *script.Script) (*script.Script, error) {
	if witnessScript != nil {
		return witnessScript, nil
	}
	src := redeem
	if src == nil {
		var e error
		if src, e = t.TxIn[idx].ScriptPubKey(ctx, f, t.Testnet); e != nil {
			return nil, e
		}
	}
	if !src.IsP2WPKH() {
		return nil, errors.Wrapf(ErrSigHashTemplate, "%s script", src.Type())
	}
	return script.P2PKHScript(src.Hash()), nil
}

// SigHashBIP143 returns the segwit v0 (SIGHASH_ALL) digest for input idx.
func (t *Tx) SigHashBIP143(ctx context.Context, f PrevOutFetcher, idx int, redeem, witnessScript *script.Script) (*btc.Uint256, error) {
	if e := t.checkIndex(idx); e != nil {
		return nil, e
	}
	in := t.TxIn[idx]
	code, e := t.scriptCode(ctx, f, idx, redeem, witnessScript)
	if e != nil {
		return nil, e
	}
	rawCode, e := code.Serialize()
	if e != nil {
		return nil, e
	}
	amount, e := in.Value(ctx, f, t.Testnet)
	if e != nil {
		return nil, e
	}
	hashOutputs, e := t.HashOutputs()
	if e != nil {
		return nil, e
	}

	var buf [8]byte
	wr := new(bytes.Buffer)
	binary.LittleEndian.PutUint32(buf[:4], t.Version)
	wr.Write(buf[:4])
	wr.Write(t.HashPrevouts())
	wr.Write(t.HashSequence())
	wr.Write(in.Input.Hash.Hash[:])
	binary.LittleEndian.PutUint32(buf[:4], in.Input.Vout)
	wr.Write(buf[:4])
	wr.Write(rawCode)
	binary.LittleEndian.PutUint64(buf[:], amount)
	wr.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:4], in.Sequence)
	wr.Write(buf[:4])
	wr.Write(hashOutputs)
	binary.LittleEndian.PutUint32(buf[:4], t.LockTime)
	wr.Write(buf[:4])
	binary.LittleEndian.PutUint32(buf[:4], btc.SIGHASH_ALL)
	wr.Write(buf[:4])
	return btc.NewSha2Hash(wr.Bytes()), nil
}
