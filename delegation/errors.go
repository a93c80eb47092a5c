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
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrNotImplemented is matched by every NotImplementedError.
	ErrNotImplemented = errors.New("not implemented")

	// ErrChainMismatch is returned when the RPC endpoint serves a different chain
	// than the configured one.
	ErrChainMismatch = errors.New("rpc endpoint serves a different chain")

	// ErrContractCreation is returned for requests without a recipient. EIP-7702
	// transactions cannot create contracts.
	ErrContractCreation = errors.New("delegated transactions cannot create contracts")

	// ErrNoImplementation is returned when no implementation contract is
	// configured. Delegating to the zero address would clear the account's code.
	ErrNoImplementation = errors.New("no implementation address configured")

	// ErrNoChain is returned when the configured chain has no identifier.
	ErrNoChain = errors.New("no chain configured")

	// ErrDelegationPending is matched by every DelegationPendingError.
	ErrDelegationPending = errors.New("delegation pending")

	// ErrNoRequest is returned when a nil request is sent.
	ErrNoRequest = errors.New("no transaction request")

	// Re-exported from accounts so callers need a single import.
	ErrNoKey             = accounts.ErrNoKey
	ErrAuthorityMismatch = accounts.ErrAuthorityMismatch
)

// ChainReadError is returned when reading chain state (bytecode, nonce, gas
// price, chain id) fails. The operation that needed the value is aborted: a
// failed read is never interpreted as either delegation state.
type ChainReadError struct {
	Op      string         // JSON-RPC method
	Address common.Address // zero for account independent reads
	ChainID *big.Int
	Err     error
}

func (e *ChainReadError) Error() string {
	if e.Address == (common.Address{}) {
		return fmt.Sprintf("chain read %s failed (chain %v): %v", e.Op, e.ChainID, e.Err)
	}
	return fmt.Sprintf("chain read %s failed (address %v, chain %v): %v", e.Op, e.Address, e.ChainID, e.Err)
}

func (e *ChainReadError) Unwrap() error { return e.Err }

// AuthorizationSigningError is returned when an authorization tuple cannot be
// signed. It is never retried: a retry needs a fresh nonce read.
type AuthorizationSigningError struct {
	Address        common.Address
	Implementation common.Address
	ChainID        *big.Int
	Nonce          uint64
	Err            error
}

func (e *AuthorizationSigningError) Error() string {
	return fmt.Sprintf("signing authorization failed (address %v, implementation %v, chain %v, nonce %d): %v",
		e.Address, e.Implementation, e.ChainID, e.Nonce, e.Err)
}

func (e *AuthorizationSigningError) Unwrap() error { return e.Err }

// GasEstimationError describes a failed estimate. It only ever reaches the
// logs, the estimator substitutes the fallback limit instead.
type GasEstimationError struct {
	Address    common.Address
	ChainID    *big.Int
	Authorized bool   // estimate included a pending authorization
	RevertData []byte // revert payload, if the node reported one
	Err        error
}

func (e *GasEstimationError) Error() string {
	msg := fmt.Sprintf("gas estimation failed (address %v, chain %v, authorized %t): %v", e.Address, e.ChainID, e.Authorized, e.Err)
	if len(e.RevertData) > 0 {
		msg += ", revert data " + hexutil.Encode(e.RevertData)
	}
	return msg
}

func (e *GasEstimationError) Unwrap() error { return e.Err }

// SubmissionError is returned when the signed transaction is rejected by the
// node. It is not retried automatically.
type SubmissionError struct {
	Address common.Address
	ChainID *big.Int
	Nonce   uint64
	Hash    common.Hash // locally computed hash of the rejected transaction
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("broadcast failed (address %v, chain %v, nonce %d, tx %v): %v", e.Address, e.ChainID, e.Nonce, e.Hash, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ReceiptTimeoutError is returned when no receipt shows up within the wait
// bound. The transaction may still be mined later: callers must poll again
// rather than resubmit.
type ReceiptTimeoutError struct {
	Hash    common.Hash
	ChainID *big.Int
	Timeout time.Duration
	LastErr error // last lookup failure other than "not found", if any
	Err     error
}

func (e *ReceiptTimeoutError) Error() string {
	msg := fmt.Sprintf("no receipt for %v (chain %v) within %v: %v", e.Hash, e.ChainID, e.Timeout, e.Err)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last lookup error: %v)", e.LastErr)
	}
	return msg
}

func (e *ReceiptTimeoutError) Unwrap() error { return e.Err }

// DelegationPendingError is returned when an account without code has
// transactions waiting in the pool and the node's pending state shows no
// delegation. One of them may carry an authorization, so no new one is signed
// until their receipts are in.
type DelegationPendingError struct {
	Address common.Address
	ChainID *big.Int
	Latest  uint64 // nonce in the latest block
	Pending uint64 // nonce including pooled transactions
}

func (e *DelegationPendingError) Error() string {
	return fmt.Sprintf("%v: account %v (chain %v) has %d pooled transaction(s), wait for their receipts", ErrDelegationPending, e.Address, e.ChainID, e.Pending-e.Latest)
}

// Is makes errors.Is(err, ErrDelegationPending) hold.
func (e *DelegationPendingError) Is(target error) bool { return target == ErrDelegationPending }

// NotImplementedError labels an operation that exists in the API but has no
// design yet.
type NotImplementedError struct {
	Op     string
	Reason string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrNotImplemented, e.Reason)
}

// Is makes errors.Is(err, ErrNotImplemented) hold.
func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }
