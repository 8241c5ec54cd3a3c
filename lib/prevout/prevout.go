// Package prevout provides the previous transaction lookups the verifier
// needs: an in-memory set, a leveldb cache, a bitcoind RPC source and a
// cache in front of any upstream.
package prevout

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/tx"
)

var (
	ErrTxNotFound   = errors.New("transaction not found")
	ErrIdMismatch   = errors.New("fetched transaction has a different id")
	ErrWrongNetwork = errors.New("source serves another network")
)

var log = zap.NewNop()

func UseLogger(logger *zap.Logger) {
	log = logger
}

// Source returns whole transactions by id.
type Source interface {
	FetchTx(ctx context.Context, id *btc.Uint256, testnet bool) (*tx.Tx, error)
}

// Fetcher turns a Source into a tx.PrevOutFetcher.
type Fetcher struct {
	src Source
}

func NewFetcher(src Source) *Fetcher {
	return &Fetcher{src: src}
}

func (f *Fetcher) FetchPrevOut(ctx context.Context, prev *tx.TxPrevOut, testnet bool) (*tx.TxOut, error) {
	t, e := f.src.FetchTx(ctx, &prev.Hash, testnet)
	if e != nil {
		return nil, errors.Wrap(tx.ErrPrevOutNotFound, e.Error())
	}
	if int(prev.Vout) >= len(t.TxOut) {
		return nil, errors.Wrapf(tx.ErrPrevOutNotFound, "%s has %d outputs", prev.String(), len(t.TxOut))
	}
	return t.TxOut[prev.Vout], nil
}

// checkId makes sure a source did not hand back some other transaction.
func checkId(t *tx.Tx, id *btc.Uint256) error {
	h, e := t.Hash()
	if e != nil {
		return e
	}
	if !h.Equal(id) {
		return errors.Wrapf(ErrIdMismatch, "wanted %s, got %s", id.String(), h.String())
	}
	return nil
}
