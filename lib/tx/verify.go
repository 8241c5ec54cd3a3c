package tx

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/script"
	"github.com/chainkit/txcore/lib/secp256k1"
	"github.com/chainkit/txcore/lib/workerpool"
)

// Fee returns the sum of the spent amounts minus the sum of the outputs.
// A negative result means the transaction creates coins. Any amount or
// total above MAX_MONEY fails with ErrValueRange.
func (t *Tx) Fee(ctx context.Context, f PrevOutFetcher) (int64, error) {
	var in, out uint64
	for i, txin := range t.TxIn {
		v, e := txin.Value(ctx, f, t.Testnet)
		if e != nil {
			return 0, errors.Wrapf(e, "input %d", i)
		}
		if in, e = addMoney(in, v); e != nil {
			return 0, errors.Wrapf(e, "input %d", i)
		}
	}
	for i, txout := range t.TxOut {
		var e error
		if out, e = addMoney(out, txout.Value); e != nil {
			return 0, errors.Wrapf(e, "output %d", i)
		}
	}
	// both sums are within MAX_MONEY, so they fit an int64
	return int64(in) - int64(out), nil
}

// addMoney adds v to sum. Neither may exceed MAX_MONEY.
func addMoney(sum, v uint64) (uint64, error) {
	if v > btc.MAX_MONEY {
		return 0, errors.Wrapf(ErrValueRange, "value %d", v)
	}
	if sum += v; sum > btc.MAX_MONEY {
		return 0, errors.Wrapf(ErrValueRange, "total %d", sum)
	}
	return sum, nil
}

// digestFor classifies the spent output and computes the digest the
// signatures of input idx commit to.
func (t *Tx) digestFor(ctx context.Context, f PrevOutFetcher, idx int, pk *script.Script) (*btc.Uint256, error) {
	in := t.TxIn[idx]
	switch {
	case pk.IsP2SH():
		cmds := in.ScriptSig.Cmds
		if len(cmds) == 0 || !cmds[len(cmds)-1].IsData {
			return nil, ErrMissingRedeem
		}
		redeem, e := script.ParseRaw(cmds[len(cmds)-1].Data)
		if e != nil {
			return nil, errors.Wrap(e, "redeem script")
		}
		switch {
		case redeem.IsP2WPKH():
			return t.SigHashBIP143(ctx, f, idx, redeem, nil)
		case redeem.IsP2WSH():
			ws, e := witnessScript(in)
			if e != nil {
				return nil, e
			}
			return t.SigHashBIP143(ctx, f, idx, redeem, ws)
		}
		return t.SigHash(ctx, f, idx, redeem)

	case pk.IsP2WPKH():
		return t.SigHashBIP143(ctx, f, idx, nil, nil)

	case pk.IsP2WSH():
		ws, e := witnessScript(in)
		if e != nil {
			return nil, e
		}
		return t.SigHashBIP143(ctx, f, idx, nil, ws)
	}
	return t.SigHash(ctx, f, idx, nil)
}

// witnessScript parses the last witness item of a P2WSH spend.
func witnessScript(in *TxIn) (*script.Script, error) {
	if len(in.Witness) == 0 {
		return nil, ErrMissingWitness
	}
	ws, e := script.ParseRaw(in.Witness[len(in.Witness)-1])
	if e != nil {
		return nil, errors.Wrap(e, "witness script")
	}
	return ws, nil
}

// CheckInput evaluates the unlocking data of input idx against the
// output it spends and returns the reason for a failure.
func (t *Tx) CheckInput(ctx context.Context, f PrevOutFetcher, idx int) error {
	if e := t.checkIndex(idx); e != nil {
		return e
	}
	in := t.TxIn[idx]
	pk, e := in.ScriptPubKey(ctx, f, t.Testnet)
	if e != nil {
		return e
	}
	z, e := t.digestFor(ctx, f, idx, pk)
	if e != nil {
		return e
	}
	return in.ScriptSig.Add(pk).EvaluateWithError(z.BigInt(), in.Witness)
}

// VerifyInput reports whether input idx is validly signed.
func (t *Tx) VerifyInput(ctx context.Context, f PrevOutFetcher, idx int) bool {
	if e := t.CheckInput(ctx, f, idx); e != nil {
		log.Debug("input verification failed", zap.String("tx", t.Id()), zap.Int("input", idx), zap.Error(e))
		return false
	}
	return true
}

// Check verifies the fee and every input, returning the first failure.
func (t *Tx) Check(ctx context.Context, f PrevOutFetcher) error {
	fee, e := t.Fee(ctx, f)
	if e != nil {
		return e
	}
	if fee < 0 {
		return errors.Wrapf(ErrNegativeFee, "fee %d", fee)
	}
	for i := range t.TxIn {
		if e = t.CheckInput(ctx, f, i); e != nil {
			return errors.Wrapf(e, "input %d", i)
		}
	}
	return nil
}

// Verify reports whether the transaction creates no coins and all its inputs verify.
func (t *Tx) Verify(ctx context.Context, f PrevOutFetcher) bool {
	if e := t.Check(ctx, f); e != nil {
		log.Debug("transaction verification failed", zap.String("tx", t.Id()), zap.Error(e))
		return false
	}
	return true
}

// VerifyParallel is Check with the inputs spread over workers goroutines.
// The fetcher must be safe for concurrent use.
func (t *Tx) VerifyParallel(ctx context.Context, f PrevOutFetcher, workers int) error {
	fee, e := t.Fee(ctx, f)
	if e != nil {
		return e
	}
	if fee < 0 {
		return errors.Wrapf(ErrNegativeFee, "fee %d", fee)
	}
	// compute the shared BIP143 hashes once up front
	t.HashPrevouts()

	idxs := make([]int, len(t.TxIn))
	for i := range idxs {
		idxs[i] = i
	}
	return workerpool.Process(ctx, workers, idxs, func(ctx context.Context, i int) error {
		if e := t.CheckInput(ctx, f, i); e != nil {
			return errors.Wrapf(e, "input %d", i)
		}
		return nil
	}, nil)
}

// SignInput signs input idx as a P2PKH spend with key, using the
// compressed public key, and verifies the result.
func (t *Tx) SignInput(ctx context.Context, f PrevOutFetcher, idx int, key *secp256k1.PrivateKey) error {
	z, e := t.SigHash(ctx, f, idx, nil)
	if e != nil {
		return e
	}
	der := key.Sign(z.BigInt()).DER()
	sig := append(der, byte(btc.SIGHASH_ALL))
	sec := key.PublicKey().Sec(true)

	prev := t.TxIn[idx].ScriptSig
	t.TxIn[idx].ScriptSig = script.New(script.Element(sig), script.Element(sec))
	if e = t.CheckInput(ctx, f, idx); e != nil {
		t.TxIn[idx].ScriptSig = prev
		return errors.Wrap(ErrSignatureInvalid, e.Error())
	}
	log.Debug("input signed", zap.String("tx", t.Id()), zap.Int("input", idx))
	return nil
}
