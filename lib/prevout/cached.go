package prevout

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/tx"
)

// Cached answers from a LevelStore and falls back to an upstream source,
// remembering whatever the upstream returned.
type Cached struct {
	store    *LevelStore
	upstream Source
}

// NewCached returns a cache over upstream. A nil upstream makes it a
// read-only view of the store.
func NewCached(store *LevelStore, upstream Source) *Cached {
	return &Cached{store: store, upstream: upstream}
}

// FetchTx treats a missing entry and an unreadable one alike: both are
// fetched from upstream and the entry is rewritten.
func (c *Cached) FetchTx(ctx context.Context, id *btc.Uint256, testnet bool) (*tx.Tx, error) {
	t, e := c.store.FetchTx(ctx, id, testnet)
	if e == nil {
		if e = checkId(t, id); e == nil {
			return t, nil
		}
		log.Warn("cached transaction has a different id", zap.String("tx", id.String()), zap.Error(e))
	}
	if c.upstream == nil || !cacheMiss(e) {
		return nil, e
	}

	if t, e = c.upstream.FetchTx(ctx, id, testnet); e != nil {
		return nil, e
	}
	if e = checkId(t, id); e != nil {
		return nil, e
	}
	if e = c.store.Put(t); e != nil {
		log.Warn("cannot cache transaction", zap.String("tx", id.String()), zap.Error(e))
	}
	return t, nil
}

func cacheMiss(e error) bool {
	return errors.Is(e, ErrTxNotFound) || errors.Is(e, tx.ErrTxParse) || errors.Is(e, ErrIdMismatch)
}
