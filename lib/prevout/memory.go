package prevout

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/tx"
)

// Memory is a Source over transactions added by hand.
type Memory struct {
	mu  sync.RWMutex
	txs map[btc.Uint256]*tx.Tx
}

func NewMemory() *Memory {
	return &Memory{txs: make(map[btc.Uint256]*tx.Tx)}
}

// Add stores t under its id.
func (m *Memory) Add(t *tx.Tx) error {
	h, e := t.Hash()
	if e != nil {
		return e
	}
	m.mu.Lock()
	m.txs[*h] = t
	m.mu.Unlock()
	return nil
}

func (m *Memory) FetchTx(_ context.Context, id *btc.Uint256, testnet bool) (*tx.Tx, error) {
	m.mu.RLock()
	t, ok := m.txs[*id]
	m.mu.RUnlock()
	if !ok || t.Testnet != testnet {
		return nil, errors.Wrap(ErrTxNotFound, id.String())
	}
	return t, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}
