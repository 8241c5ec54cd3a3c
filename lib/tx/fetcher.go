package tx

import (
	"context"

	"github.com/chainkit/txcore/lib/script"
)

// PrevOutFetcher looks up the output an input spends.
// Implementations must be safe for concurrent use.
type PrevOutFetcher interface {
	FetchPrevOut(ctx context.Context, prev *TxPrevOut, testnet bool) (*TxOut, error)
}

// FetcherFunc adapts a function to PrevOutFetcher.
type FetcherFunc func(ctx context.Context, prev *TxPrevOut, testnet bool) (*TxOut, error)

func (f FetcherFunc) FetchPrevOut(ctx context.Context, prev *TxPrevOut, testnet bool) (*TxOut, error) {
	return f(ctx, prev, testnet)
}

// Value returns the amount of the output spent by the input.
func (in *TxIn) Value(ctx context.Context, f PrevOutFetcher, testnet bool) (uint64, error) {
	out, e := f.FetchPrevOut(ctx, &in.Input, testnet)
	if e != nil {
		return 0, e
	}
	return out.Value, nil
}

// ScriptPubKey returns the locking script of the output spent by the input.
func (in *TxIn) ScriptPubKey(ctx context.Context, f PrevOutFetcher, testnet bool) (*script.Script, error) {
	out, e := f.FetchPrevOut(ctx, &in.Input, testnet)
	if e != nil {
		return nil, e
	}
	return out.PkScript, nil
}
