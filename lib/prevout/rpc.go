package prevout

import (
	"bytes"
	"context"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/pkg/errors"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/metrics"
	"github.com/chainkit/txcore/lib/tx"
)

// RawTxClient is the part of *rpcclient.Client that RPCSource uses.
// The node must run with -txindex to serve arbitrary transactions.
type RawTxClient interface {
	GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
}

var _ RawTxClient = (*rpcclient.Client)(nil)

// RPCSource fetches transactions from a bitcoind compatible node.
type RPCSource struct {
	client  RawTxClient
	testnet bool
}

func NewRPCSource(client RawTxClient, testnet bool) *RPCSource {
	return &RPCSource{client: client, testnet: testnet}
}

// NewRPCClient connects to a node over plain HTTP POST.
func NewRPCClient(host, user, pass string) (*rpcclient.Client, error) {
	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}

func (s *RPCSource) FetchTx(ctx context.Context, id *btc.Uint256, testnet bool) (t *tx.Tx, e error) {
	started := time.Now()
	defer func() {
		metrics.ObservePrevOutFetch("rpc", e, started)
	}()
	if testnet != s.testnet {
		return nil, ErrWrongNetwork
	}
	if e = ctx.Err(); e != nil {
		return nil, e
	}

	h := chainhash.Hash(id.Hash)
	res, e := s.client.GetRawTransaction(&h)
	if e != nil {
		return nil, errors.Wrapf(e, "getrawtransaction %s", id.String())
	}
	var buf bytes.Buffer
	if e = res.MsgTx().Serialize(&buf); e != nil {
		return nil, e
	}
	if t, e = tx.Parse(&buf, testnet); e != nil {
		return nil, e
	}
	if e = checkId(t, id); e != nil {
		return nil, e
	}
	return t, nil
}
