// Copyright 2016 The go-ethereum Authors
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

// Package ethclient provides the typed JSON-RPC transport of the delegation
// client. Every suspension point of a delegated send has its own request type:
// StateQuery for account reads, EstimateRequest for gas estimation and
// SubmitRequest for broadcasts.
package ethclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrHashMismatch is returned when the node acknowledges a broadcast under a
// different hash than the one computed locally. The transaction was accepted,
// Submit still returns the local hash.
var ErrHashMismatch = errors.New("node returned unexpected transaction hash")

// Client defines typed wrappers for the subset of the Ethereum RPC API the
// delegation client relies on.
// Client 结构体定义了对以太坊 RPC API 的类型化包装。
type Client struct {
	c       *rpc.Client
	timeout time.Duration // per request bound, zero means only the caller's context applies
}

// Dial connects a client to the given URL.
func Dial(rawurl string) (*Client, error) {
	return DialContext(context.Background(), rawurl)
}

// DialContext connects a client to the given URL with context.
func DialContext(ctx context.Context, rawurl string, options ...rpc.ClientOption) (*Client, error) {
	c, err := rpc.DialOptions(ctx, rawurl, options...)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient creates a client that uses the given RPC client.
func NewClient(c *rpc.Client) *Client {
	return &Client{c: c}
}

// WithTimeout returns a copy of the client bounding each request by d.
func (ec *Client) WithTimeout(d time.Duration) *Client {
	return &Client{c: ec.c, timeout: d}
}

// Close closes the underlying RPC connection.
func (ec *Client) Close() {
	ec.c.Close()
}

// Client gets the underlying RPC client.
func (ec *Client) Client() *rpc.Client {
	return ec.c
}

func (ec *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if ec.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ec.timeout)
		defer cancel()
	}
	return ec.c.CallContext(ctx, result, method, args...)
}

// StateQuery is a read of a single account's state.
type StateQuery struct {
	Account common.Address
	Pending bool // read the pending state instead of the latest block
}

func (q StateQuery) blockArg() string {
	if q.Pending {
		return rpc.PendingBlockNumber.String()
	}
	return rpc.LatestBlockNumber.String()
}

// EstimateRequest is an eth_estimateGas call, optionally carrying the EIP-7702
// authorizations the real transaction will include.
type EstimateRequest struct {
	From      common.Address
	To        *common.Address
	Data      []byte
	Value     *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int

	AuthorizationList []types.SetCodeAuthorization
}

func (r EstimateRequest) toArg() interface{} {
	arg := map[string]interface{}{
		"from": r.From,
		"to":   r.To,
	}
	if len(r.Data) > 0 {
		arg["input"] = hexutil.Bytes(r.Data)
	}
	if r.Value != nil {
		arg["value"] = (*hexutil.Big)(r.Value)
	}
	if r.GasFeeCap != nil {
		arg["maxFeePerGas"] = (*hexutil.Big)(r.GasFeeCap)
	}
	if r.GasTipCap != nil {
		arg["maxPriorityFeePerGas"] = (*hexutil.Big)(r.GasTipCap)
	}
	if len(r.AuthorizationList) > 0 {
		arg["authorizationList"] = r.AuthorizationList
	}
	return arg
}

// SubmitRequest is a signed transaction to broadcast.
type SubmitRequest struct {
	Tx *types.Transaction
}

// ChainID retrieves the current chain ID for transaction replay protection.
func (ec *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := ec.call(ctx, &result, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// Code returns the contract code of the queried account. An empty result means
// the account has no code.
func (ec *Client) Code(ctx context.Context, q StateQuery) ([]byte, error) {
	var result hexutil.Bytes
	err := ec.call(ctx, &result, "eth_getCode", q.Account, q.blockArg())
	return result, err
}

// TransactionCount returns the nonce of the queried account.
func (ec *Client) TransactionCount(ctx context.Context, q StateQuery) (uint64, error) {
	var result hexutil.Uint64
	err := ec.call(ctx, &result, "eth_getTransactionCount", q.Account, q.blockArg())
	return uint64(result), err
}

// GasPrice retrieves the currently suggested gas price.
func (ec *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var hex hexutil.Big
	if err := ec.call(ctx, &hex, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&hex), nil
}

// EstimateGas asks the node how much gas the request needs to succeed. The
// estimate is a raw node figure, callers apply their own margin.
func (ec *Client) EstimateGas(ctx context.Context, req EstimateRequest) (uint64, error) {
	var hex hexutil.Uint64
	if err := ec.call(ctx, &hex, "eth_estimateGas", req.toArg()); err != nil {
		return 0, err
	}
	return uint64(hex), nil
}

// Submit injects a signed transaction into the pending pool for execution and
// returns its hash.
func (ec *Client) Submit(ctx context.Context, req SubmitRequest) (common.Hash, error) {
	if req.Tx == nil {
		return common.Hash{}, errors.New("no transaction to submit")
	}
	data, err := req.Tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	if err := ec.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(data)); err != nil {
		return common.Hash{}, err
	}
	if want := req.Tx.Hash(); hash != (common.Hash{}) && hash != want {
		return want, fmt.Errorf("%w: have %v, want %v", ErrHashMismatch, hash, want)
	}
	return req.Tx.Hash(), nil
}

// TransactionReceipt returns the receipt of a transaction by transaction hash.
// Note that the receipt is not available for pending transactions, in which
// case ethereum.NotFound is returned.
func (ec *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var r *types.Receipt
	err := ec.call(ctx, &r, "eth_getTransactionReceipt", txHash)
	if err == nil && r == nil {
		return nil, ethereum.NotFound
	}
	return r, err
}

// RevertErrorData returns the 'revert reason' data of a contract call.
//
// This can be used with EstimateGas, and only when the server is Geth.
func RevertErrorData(err error) ([]byte, bool) {
	var ec rpc.Error
	var ed rpc.DataError
	if errors.As(err, &ec) && errors.As(err, &ed) && ec.ErrorCode() == 3 {
		if eds, ok := ed.ErrorData().(string); ok {
			revertData, err := hexutil.Decode(eds)
			if err == nil {
				return revertData, true
			}
		}
	}
	return nil, false
}
