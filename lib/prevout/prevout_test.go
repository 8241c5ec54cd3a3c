package prevout

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/script"
	"github.com/chainkit/txcore/lib/secp256k1"
	"github.com/chainkit/txcore/lib/tx"
)

const legacyTxHex = "0100000001813f79011acb80925dfe69b3def355fe914bd1d96a3f5f71bf8303c6a989c7d1000000006b483045022100ed81ff192e75a3fd2304004dcadb746fa5e24c5031ccfcf21320b0277457c98f02207a986d955c6e0cb35d446a89d3f56100f4d7f67801c31967743a9c8e10615bed01210349fc4e631e3624a545de3f89f5d8684c7b8138bd94bdd531d2e213bf016b278afeffffff02a135ef01000000001976a914bc3b654dca7e56b04dca18f2566cdaf02e8d9ada88ac99c39800000000001976a9141c4bc762dd5423e332166702cb75f40df79fea1288ac19430600"

func legacyTx(t *testing.T) *tx.Tx {
	t.Helper()
	res, e := tx.ParseHex(legacyTxHex, false)
	require.NoError(t, e)
	return res
}

func txId(t *testing.T, x *tx.Tx) *btc.Uint256 {
	t.Helper()
	h, e := x.Hash()
	require.NoError(t, e)
	return h
}

func memStore(t *testing.T) *LevelStore {
	t.Helper()
	s, e := OpenStorage(storage.NewMemStorage())
	require.NoError(t, e)
	t.Cleanup(func() { s.Close() })
	return s
}

type countingSource struct {
	Source
	calls int32
}

func (c *countingSource) FetchTx(ctx context.Context, id *btc.Uint256, testnet bool) (*tx.Tx, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.Source.FetchTx(ctx, id, testnet)
}

// lyingSource returns the same transaction whatever is asked.
type lyingSource struct{ t *tx.Tx }

func (l lyingSource) FetchTx(context.Context, *btc.Uint256, bool) (*tx.Tx, error) {
	return l.t, nil
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	lt := legacyTx(t)
	require.NoError(t, m.Add(lt))
	assert.Equal(t, 1, m.Len())

	got, e := m.FetchTx(ctx, txId(t, lt), false)
	require.NoError(t, e)
	assert.Same(t, lt, got)

	_, e = m.FetchTx(ctx, txId(t, lt), true)
	assert.ErrorIs(t, e, ErrTxNotFound)
	_, e = m.FetchTx(ctx, btc.NewUint256(make([]byte, 32)), false)
	assert.ErrorIs(t, e, ErrTxNotFound)
}

func TestFetcher(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	lt := legacyTx(t)
	require.NoError(t, m.Add(lt))
	f := NewFetcher(m)

	out, e := f.FetchPrevOut(ctx, &tx.TxPrevOut{Hash: *txId(t, lt), Vout: 1}, false)
	require.NoError(t, e)
	assert.EqualValues(t, 10011545, out.Value)

	_, e = f.FetchPrevOut(ctx, &tx.TxPrevOut{Hash: *txId(t, lt), Vout: 2}, false)
	assert.ErrorIs(t, e, tx.ErrPrevOutNotFound)
	_, e = f.FetchPrevOut(ctx, &tx.TxPrevOut{Vout: 0}, false)
	assert.ErrorIs(t, e, tx.ErrPrevOutNotFound)
}

func TestLevelStore(t *testing.T) {
	ctx := context.Background()
	s := memStore(t)
	lt := legacyTx(t)
	id := txId(t, lt)

	_, e := s.FetchTx(ctx, id, false)
	assert.ErrorIs(t, e, ErrTxNotFound)

	require.NoError(t, s.Put(lt))
	got, e := s.FetchTx(ctx, id, false)
	require.NoError(t, e)
	assert.Equal(t, lt.Id(), got.Id())
	raw, e := got.Serialize()
	require.NoError(t, e)
	assert.Equal(t, legacyTxHex, hex.EncodeToString(raw))

	// networks are kept apart
	_, e = s.FetchTx(ctx, id, true)
	assert.ErrorIs(t, e, ErrTxNotFound)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, e = s.FetchTx(cctx, id, false)
	assert.ErrorIs(t, e, context.Canceled)
}

func TestLevelStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, e := Open(dir)
	require.NoError(t, e)
	lt := legacyTx(t)
	require.NoError(t, s.Put(lt))
	require.NoError(t, s.Close())

	s, e = Open(dir)
	require.NoError(t, e)
	defer s.Close()
	got, e := s.Get(txId(t, lt), false)
	require.NoError(t, e)
	assert.Equal(t, lt.Id(), got.Id())
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	lt := legacyTx(t)
	require.NoError(t, m.Add(lt))
	up := &countingSource{Source: m}
	c := NewCached(memStore(t), up)

	for i := 0; i < 3; i++ {
		got, e := c.FetchTx(ctx, txId(t, lt), false)
		require.NoError(t, e)
		assert.Equal(t, lt.Id(), got.Id())
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))

	_, e := c.FetchTx(ctx, btc.NewUint256(make([]byte, 32)), false)
	assert.ErrorIs(t, e, ErrTxNotFound)

	t.Run("upstream returns another transaction", func(t *testing.T) {
		c := NewCached(memStore(t), lyingSource{t: lt})
		_, e := c.FetchTx(ctx, btc.NewUint256(make([]byte, 32)), false)
		assert.ErrorIs(t, e, ErrIdMismatch)
	})

	t.Run("no upstream", func(t *testing.T) {
		c := NewCached(memStore(t), nil)
		_, e := c.FetchTx(ctx, txId(t, lt), false)
		assert.ErrorIs(t, e, ErrTxNotFound)
	})

	t.Run("corrupt entry is refetched", func(t *testing.T) {
		store := memStore(t)
		id := txId(t, lt)
		require.NoError(t, store.db.Put(levelKey(id, false), []byte{0x01, 0x00}, nil))
		_, e := store.Get(id, false)
		require.ErrorIs(t, e, tx.ErrTxParse)

		up := &countingSource{Source: m}
		c := NewCached(store, up)
		got, e := c.FetchTx(ctx, id, false)
		require.NoError(t, e)
		assert.Equal(t, lt.Id(), got.Id())
		assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))

		got, e = store.Get(id, false)
		require.NoError(t, e)
		assert.Equal(t, lt.Id(), got.Id())
	})

	t.Run("entry under a wrong key is refetched", func(t *testing.T) {
		store := memStore(t)
		other := tx.New(1, []*tx.TxIn{tx.NewTxIn(btc.NewSha2Hash([]byte("other")), 0)},
			[]*tx.TxOut{tx.NewTxOut(1, script.P2PKHScript(bytes.Repeat([]byte{9}, 20)))}, 0, false)
		raw, e := other.Serialize()
		require.NoError(t, e)
		id := txId(t, lt)
		require.NoError(t, store.db.Put(levelKey(id, false), raw, nil))

		up := &countingSource{Source: m}
		got, e := NewCached(store, up).FetchTx(ctx, id, false)
		require.NoError(t, e)
		assert.Equal(t, lt.Id(), got.Id())
		assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))
	})

	t.Run("corrupt entry without upstream", func(t *testing.T) {
		store := memStore(t)
		id := txId(t, lt)
		require.NoError(t, store.db.Put(levelKey(id, false), []byte{0x01}, nil))
		_, e := NewCached(store, nil).FetchTx(ctx, id, false)
		assert.ErrorIs(t, e, tx.ErrTxParse)
	})
}

type fakeRPC struct {
	txs map[chainhash.Hash]*wire.MsgTx
}

func (f *fakeRPC) GetRawTransaction(h *chainhash.Hash) (*btcutil.Tx, error) {
	msg, ok := f.txs[*h]
	if !ok {
		return nil, errors.New("-5: No such mempool or blockchain transaction")
	}
	return btcutil.NewTx(msg), nil
}

func TestRPCSource(t *testing.T) {
	ctx := context.Background()
	raw, e := hex.DecodeString(legacyTxHex)
	require.NoError(t, e)
	msg := new(wire.MsgTx)
	require.NoError(t, msg.Deserialize(bytes.NewReader(raw)))
	client := &fakeRPC{txs: map[chainhash.Hash]*wire.MsgTx{msg.TxHash(): msg}}
	src := NewRPCSource(client, false)

	id, e := btc.NewUint256FromString(msg.TxHash().String())
	require.NoError(t, e)
	got, e := src.FetchTx(ctx, id, false)
	require.NoError(t, e)
	assert.Equal(t, msg.TxHash().String(), got.Id())

	_, e = src.FetchTx(ctx, id, true)
	assert.ErrorIs(t, e, ErrWrongNetwork)

	_, e = src.FetchTx(ctx, btc.NewUint256(make([]byte, 32)), false)
	assert.Error(t, e)

	// wrong answer from the node
	client.txs[chainhash.Hash{}] = msg
	_, e = src.FetchTx(ctx, btc.NewUint256(make([]byte, 32)), false)
	assert.ErrorIs(t, e, ErrIdMismatch)
}

// TestSpendChain funds a key, spends the output and verifies the spend
// through the lookup stack.
func TestSpendChain(t *testing.T) {
	ctx := context.Background()
	k := secp256k1.NewPrivateKey(big.NewInt(0x5eed))
	pk := script.P2PKHScript(k.PublicKey().Hash160(true))

	funding := tx.New(1,
		[]*tx.TxIn{tx.NewTxIn(btc.NewSha2Hash([]byte("coins")), 0)},
		[]*tx.TxOut{tx.NewTxOut(20000, script.New(script.Op(script.OP_RETURN))), tx.NewTxOut(90000, pk)},
		0, false)
	fundId := txId(t, funding)

	spend := tx.New(1,
		[]*tx.TxIn{tx.NewTxIn(fundId, 1)},
		[]*tx.TxOut{tx.NewTxOut(85000, script.P2PKHScript(bytes.Repeat([]byte{7}, 20)))},
		0, false)

	m := NewMemory()
	require.NoError(t, m.Add(funding))
	f := NewFetcher(NewCached(memStore(t), m))

	require.NoError(t, spend.SignInput(ctx, f, 0, k))
	assert.True(t, spend.Verify(ctx, f))
	fee, e := spend.Fee(ctx, f)
	require.NoError(t, e)
	assert.EqualValues(t, 5000, fee)

	// the empty source knows nothing
	assert.False(t, spend.Verify(ctx, NewFetcher(NewMemory())))
}
