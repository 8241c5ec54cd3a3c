package prevout

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/metrics"
	"github.com/chainkit/txcore/lib/tx"
)

const (
	netMain byte = 'm'
	netTest byte = 't'
)

var levelOptions = opt.Options{
	BlockCacheCapacity: 16 * opt.MiB,
	WriteBuffer:        8 * opt.MiB,
}

// LevelStore keeps raw transactions in a leveldb database.
// Keys are a network byte followed by the txid in wire order.
type LevelStore struct {
	db *leveldb.DB
}

// Open opens (or creates) the database in directory path.
func Open(path string) (*LevelStore, error) {
	db, e := leveldb.OpenFile(path, &levelOptions)
	if e != nil {
		return nil, errors.Wrapf(e, "open %s", path)
	}
	return &LevelStore{db: db}, nil
}

// OpenStorage opens the database on an arbitrary storage, e.g. storage.NewMemStorage().
func OpenStorage(stor storage.Storage) (*LevelStore, error) {
	db, e := leveldb.Open(stor, &levelOptions)
	if e != nil {
		return nil, errors.Wrap(e, "open storage")
	}
	return &LevelStore{db: db}, nil
}

func levelKey(id *btc.Uint256, testnet bool) []byte {
	k := make([]byte, 33)
	k[0] = netMain
	if testnet {
		k[0] = netTest
	}
	copy(k[1:], id.Hash[:])
	return k
}

// Put stores t under its id.
func (s *LevelStore) Put(t *tx.Tx) error {
	h, e := t.Hash()
	if e != nil {
		return e
	}
	raw, e := t.Serialize()
	if e != nil {
		return e
	}
	return s.db.Put(levelKey(h, t.Testnet), raw, nil)
}

// Get reads back a transaction stored with Put.
func (s *LevelStore) Get(id *btc.Uint256, testnet bool) (*tx.Tx, error) {
	raw, e := s.db.Get(levelKey(id, testnet), nil)
	if e == leveldb.ErrNotFound {
		return nil, errors.Wrap(ErrTxNotFound, id.String())
	}
	if e != nil {
		return nil, e
	}
	return tx.Parse(bytes.NewReader(raw), testnet)
}

func (s *LevelStore) FetchTx(ctx context.Context, id *btc.Uint256, testnet bool) (t *tx.Tx, e error) {
	started := time.Now()
	defer func() {
		metrics.ObservePrevOutFetch("leveldb", e, started)
	}()
	if e = ctx.Err(); e != nil {
		return nil, e
	}
	if t, e = s.Get(id, testnet); e != nil && !errors.Is(e, ErrTxNotFound) {
		log.Warn("corrupt cache entry", zap.String("tx", id.String()), zap.Error(e))
	}
	return
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
