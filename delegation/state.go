// Copyright 2025 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package delegation

import (
	"context"
	"math/big"

	"github.com/chamapay/go-delegate/ethclient"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// DelegationState is the delegation status of an EOA as derived from its code.
type DelegationState uint8

const (
	Undelegated DelegationState = iota // account has no code
	Delegated                          // account has code, normally an EIP-7702 designator
)

func (s DelegationState) String() string {
	switch s {
	case Undelegated:
		return "undelegated"
	case Delegated:
		return "delegated"
	default:
		return "unknown"
	}
}

// StateOf derives the delegation state from an account's code. Any non-empty
// code counts as delegated.
func StateOf(code []byte) DelegationState {
	if len(code) == 0 {
		return Undelegated
	}
	return Delegated
}

// StateBackend is the chain state access needed by the StateReader.
type StateBackend interface {
	Code(ctx context.Context, q ethclient.StateQuery) ([]byte, error)
	TransactionCount(ctx context.Context, q ethclient.StateQuery) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
}

// StateReader reads account state. Every read goes to the node, nothing is
// cached, and every failure is reported as a *ChainReadError.
// StateReader 读取账户状态，不做任何缓存。
type StateReader struct {
	backend StateBackend
	chainID *big.Int
	log     log.Logger
}

// NewStateReader creates a reader for the chain with the given identifier.
func NewStateReader(backend StateBackend, chainID *big.Int, logger log.Logger) *StateReader {
	if logger == nil {
		logger = log.Root()
	}
	return &StateReader{backend: backend, chainID: chainID, log: logger}
}

func (r *StateReader) readError(op string, addr common.Address, err error) error {
	readFailureMeter.Mark(1)
	return &ChainReadError{Op: op, Address: addr, ChainID: r.chainID, Err: err}
}

// Code returns the latest code of addr.
func (r *StateReader) Code(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := r.backend.Code(ctx, ethclient.StateQuery{Account: addr})
	if err != nil {
		return nil, r.readError("eth_getCode", addr, err)
	}
	return code, nil
}

// IsDelegated reports whether addr has code. A failed read is an error, never
// a default state.
func (r *StateReader) IsDelegated(ctx context.Context, addr common.Address) (bool, error) {
	code, err := r.Code(ctx, addr)
	if err != nil {
		return false, err
	}
	return StateOf(code) == Delegated, nil
}

// PendingDelegated reports whether addr has code in the node's pending state,
// which includes the authorizations of transactions still in the pool. Nodes
// without a pending state answer from the latest block.
func (r *StateReader) PendingDelegated(ctx context.Context, addr common.Address) (bool, error) {
	code, err := r.backend.Code(ctx, ethclient.StateQuery{Account: addr, Pending: true})
	if err != nil {
		return false, r.readError("eth_getCode", addr, err)
	}
	return StateOf(code) == Delegated, nil
}

// Delegation returns the delegation state of addr and, if its code is an
// EIP-7702 designator, the delegation target. Code that is not a designator
// still counts as delegated but yields a zero target.
func (r *StateReader) Delegation(ctx context.Context, addr common.Address) (common.Address, DelegationState, error) {
	code, err := r.Code(ctx, addr)
	if err != nil {
		return common.Address{}, Undelegated, err
	}
	state := StateOf(code)
	if state == Undelegated {
		return common.Address{}, state, nil
	}
	target, ok := types.ParseDelegation(code)
	if !ok {
		r.log.Debug("Account code is not a delegation designator", "address", addr, "size", len(code))
	}
	return target, state, nil
}

// Nonce returns the pending transaction count of addr, which includes
// transactions still waiting in the node's pool.
func (r *StateReader) Nonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := r.backend.TransactionCount(ctx, ethclient.StateQuery{Account: addr, Pending: true})
	if err != nil {
		return 0, r.readError("eth_getTransactionCount", addr, err)
	}
	return nonce, nil
}

// LatestNonce returns the transaction count of addr in the latest block.
func (r *StateReader) LatestNonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := r.backend.TransactionCount(ctx, ethclient.StateQuery{Account: addr})
	if err != nil {
		return 0, r.readError("eth_getTransactionCount", addr, err)
	}
	return nonce, nil
}

// GasPrice returns the node's suggested gas price.
func (r *StateReader) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := r.backend.GasPrice(ctx)
	if err != nil {
		return nil, r.readError("eth_gasPrice", common.Address{}, err)
	}
	return price, nil
}
