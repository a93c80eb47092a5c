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

// Package testchain implements an in-process Ethereum JSON-RPC endpoint with
// just enough state to exercise EIP-7702 delegation flows: account nonces and
// code, gas price, gas estimation, raw transaction inclusion and receipts.
//
// Transactions are applied the way go-ethereum's state transition does it: the
// sender nonce is bumped first, then each authorization is validated and
// applied, invalid ones being skipped silently. By default a transaction
// takes effect when it is sent; with the pool enabled it waits until Mine,
// while pending state reads already see it.
package testchain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	errNonceTooLow   = errors.New("nonce too low")
	errNonceTooHigh  = errors.New("nonce too high")
	errEmptyAuthList = errors.New("EIP-7702 transaction with empty auth list")
	errInvalidChain  = errors.New("invalid chain id for signer")
)

// CallArgs mirrors the eth_estimateGas argument object.
type CallArgs struct {
	From                 common.Address               `json:"from"`
	To                   *common.Address              `json:"to"`
	Input                hexutil.Bytes                `json:"input"`
	Value                *hexutil.Big                 `json:"value"`
	MaxFeePerGas         *hexutil.Big                 `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big                 `json:"maxPriorityFeePerGas"`
	AuthorizationList    []types.SetCodeAuthorization `json:"authorizationList"`
}

// Estimator computes the raw gas estimate of a call.
type Estimator func(args CallArgs) (uint64, error)

// DefaultEstimator charges intrinsic gas, calldata and a flat per-authorization
// cost.
func DefaultEstimator(args CallArgs) (uint64, error) {
	return 21_000 + 16*uint64(len(args.Input)) + 25_000*uint64(len(args.AuthorizationList)), nil
}

type account struct {
	nonce uint64
	code  []byte
}

type state map[common.Address]*account

func (s state) get(addr common.Address) *account {
	acct, ok := s[addr]
	if !ok {
		acct = new(account)
		s[addr] = acct
	}
	return acct
}

func (s state) copy() state {
	cpy := make(state, len(s))
	for addr, acct := range s {
		cpy[addr] = &account{nonce: acct.nonce, code: common.CopyBytes(acct.code)}
	}
	return cpy
}

type pooledTx struct {
	tx   *types.Transaction
	from common.Address
}

// Chain is the in-memory chain state plus the RPC server exposing it.
type Chain struct {
	mu       sync.Mutex
	chainID  *big.Int
	gasPrice *big.Int
	accounts state
	block    uint64

	autoMine        bool
	pooling         bool
	hidePendingCode bool
	pool            []pooledTx
	revert          bool
	pending  []*types.Receipt
	receipts map[common.Hash]*types.Receipt
	txs      []*types.Transaction
	applied  []types.SetCodeAuthorization

	estimator Estimator
	estimates []CallArgs
	failures  map[string]error
	hooks     map[string]func()
	calls     map[string]int

	server *rpc.Server
}

// New creates a chain with the given identifier and a 1 gwei gas price.
func New(chainID *big.Int) *Chain {
	c := &Chain{
		chainID:   new(big.Int).Set(chainID),
		gasPrice:  big.NewInt(1_000_000_000),
		accounts:  make(state),
		block:     1,
		autoMine:  true,
		receipts:  make(map[common.Hash]*types.Receipt),
		estimator: DefaultEstimator,
		failures:  make(map[string]error),
		hooks:     make(map[string]func()),
		calls:     make(map[string]int),
		server:    rpc.NewServer(),
	}
	if err := c.server.RegisterName("eth", &ethAPI{c}); err != nil {
		panic(err)
	}
	return c
}

// Client returns an in-process RPC client connected to the chain.
func (c *Chain) Client() *rpc.Client {
	return rpc.DialInProc(c.server)
}

// Handler returns the chain's JSON-RPC endpoint as an HTTP handler.
func (c *Chain) Handler() http.Handler {
	return c.server
}

// Close stops the RPC server.
func (c *Chain) Close() {
	c.server.Stop()
}

// ChainID returns the chain identifier.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *Chain) account(addr common.Address) *account {
	return c.accounts.get(addr)
}

// pendingState returns the latest state with every pooled transaction applied.
func (c *Chain) pendingState() state {
	s := c.accounts.copy()
	for _, p := range c.pool {
		s.get(p.from).nonce++
		for _, auth := range p.tx.SetCodeAuthorizations() {
			s.applyAuthorization(c.chainID, auth)
		}
	}
	return s
}

func (c *Chain) view(pending bool) state {
	if pending && len(c.pool) > 0 {
		return c.pendingState()
	}
	return c.accounts
}

// SetCode replaces the code of an account.
func (c *Chain) SetCode(addr common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account(addr).code = common.CopyBytes(code)
}

// Code returns the code of an account.
func (c *Chain) Code(addr common.Address) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.CopyBytes(c.account(addr).code)
}

// SetNonce replaces the nonce of an account.
func (c *Chain) SetNonce(addr common.Address, nonce uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account(addr).nonce = nonce
}

// Nonce returns the nonce of an account.
func (c *Chain) Nonce(addr common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account(addr).nonce
}

// SetGasPrice changes the price reported by eth_gasPrice.
func (c *Chain) SetGasPrice(price *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gasPrice = new(big.Int).Set(price)
}

// SetEstimator replaces the gas estimator.
func (c *Chain) SetEstimator(fn Estimator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estimator = fn
}

// SetAutoMine toggles whether receipts become available at inclusion time or
// only after Mine is called.
func (c *Chain) SetAutoMine(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoMine = on
}

// SetPool toggles the transaction pool. With the pool on, accepted
// transactions change the latest state only when Mine is called.
func (c *Chain) SetPool(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pooling = on
}

// HidePendingCode makes pending code reads answer from the latest block, as
// nodes without a pending state do. Pending nonces still count pooled
// transactions.
func (c *Chain) HidePendingCode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hidePendingCode = on
}

// Pooled returns the number of transactions waiting for Mine.
func (c *Chain) Pooled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pool)
}

// SetRevert makes all subsequently mined receipts report a failed execution.
func (c *Chain) SetRevert(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revert = on
}

// Mine executes the pooled transactions and makes all pending receipts
// available in a new block.
func (c *Chain) Mine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pool {
		c.execute(p.tx, p.from)
	}
	c.pool = nil
	c.mine()
}

func (c *Chain) mine() {
	if len(c.pending) == 0 {
		return
	}
	c.block++
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], c.block)
	hash := crypto.Keccak256Hash(num[:])
	for i, r := range c.pending {
		r.BlockNumber = new(big.Int).SetUint64(c.block)
		r.BlockHash = hash
		r.TransactionIndex = uint(i)
		c.receipts[r.TxHash] = r
	}
	c.pending = nil
}

// FailMethod makes every call of the given RPC method fail with err until it is
// reset with a nil error.
func (c *Chain) FailMethod(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, method)
		return
	}
	c.failures[method] = err
}

// OnCall installs a hook run at the start of every call of method, before any
// chain state is touched. The hook may block.
func (c *Chain) OnCall(method string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[method] = fn
}

// Calls returns how often method was called.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls returns the number of RPC calls served.
func (c *Chain) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Transactions returns every transaction included so far.
func (c *Chain) Transactions() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.txs...)
}

// AppliedAuthorizations returns the authorizations that passed validation and
// changed an account's code.
func (c *Chain) AppliedAuthorizations() []types.SetCodeAuthorization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.SetCodeAuthorization(nil), c.applied...)
}

// Estimates returns the arguments of every eth_estimateGas call.
func (c *Chain) Estimates() []CallArgs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CallArgs(nil), c.estimates...)
}

// enter records a call, runs its hook and returns any injected failure.
func (c *Chain) enter(method string) error {
	c.mu.Lock()
	c.calls[method]++
	hook := c.hooks[method]
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[method]
}

func (c *Chain) include(tx *types.Transaction) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tx.ChainId().Cmp(c.chainID) != 0 {
		return common.Hash{}, fmt.Errorf("%w: have %v want %v", errInvalidChain, tx.ChainId(), c.chainID)
	}
	from, err := types.Sender(types.NewPragueSigner(c.chainID), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid sender: %v", err)
	}
	sender := c.view(c.pooling).get(from)
	switch {
	case tx.Nonce() < sender.nonce:
		return common.Hash{}, fmt.Errorf("%w: address %v, tx: %d state: %d", errNonceTooLow, from, tx.Nonce(), sender.nonce)
	case tx.Nonce() > sender.nonce:
		return common.Hash{}, fmt.Errorf("%w: address %v, tx: %d state: %d", errNonceTooHigh, from, tx.Nonce(), sender.nonce)
	}
	if tx.Type() == types.SetCodeTxType && len(tx.SetCodeAuthorizations()) == 0 {
		return common.Hash{}, fmt.Errorf("%w (sender %v)", errEmptyAuthList, from)
	}
	c.txs = append(c.txs, tx)
	if c.pooling {
		c.pool = append(c.pool, pooledTx{tx: tx, from: from})
		return tx.Hash(), nil
	}
	c.execute(tx, from)
	if c.autoMine {
		c.mine()
	}
	return tx.Hash(), nil
}

// execute applies tx to the latest state and queues its receipt.
func (c *Chain) execute(tx *types.Transaction, from common.Address) {
	c.account(from).nonce++
	for _, auth := range tx.SetCodeAuthorizations() {
		if c.accounts.applyAuthorization(c.chainID, auth) {
			c.applied = append(c.applied, auth)
		}
	}
	status := types.ReceiptStatusSuccessful
	if c.revert {
		status = types.ReceiptStatusFailed
	}
	c.pending = append(c.pending, &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		CumulativeGasUsed: tx.Gas() / 2,
		Logs:              []*types.Log{},
		TxHash:            tx.Hash(),
		GasUsed:           tx.Gas() / 2,
		EffectiveGasPrice: tx.GasFeeCap(),
	})
}

// applyAuthorization validates auth against s and installs the delegation,
// reporting whether it was applied.
func (s state) applyAuthorization(chainID *big.Int, auth types.SetCodeAuthorization) bool {
	if !auth.ChainID.IsZero() && auth.ChainID.CmpBig(chainID) != 0 {
		return false
	}
	if auth.Nonce+1 < auth.Nonce {
		return false
	}
	authority, err := auth.Authority()
	if err != nil {
		return false
	}
	acct := s.get(authority)
	if _, ok := types.ParseDelegation(acct.code); len(acct.code) != 0 && !ok {
		return false
	}
	if acct.nonce != auth.Nonce {
		return false
	}
	acct.nonce = auth.Nonce + 1
	if auth.Address == (common.Address{}) {
		acct.code = nil
	} else {
		acct.code = types.AddressToDelegation(auth.Address)
	}
	return true
}

// RevertError builds the error geth returns when execution reverts during
// estimation, carrying the revert data.
func RevertError(data []byte) error {
	return &revertError{reason: hexutil.Encode(data)}
}

type revertError struct {
	reason string
}

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return e.reason }

// ethAPI serves the eth namespace.
type ethAPI struct {
	c *Chain
}

func (api *ethAPI) ChainId() (*hexutil.Big, error) {
	if err := api.c.enter("eth_chainId"); err != nil {
		return nil, err
	}
	return (*hexutil.Big)(api.c.ChainID()), nil
}

func (api *ethAPI) GetCode(address common.Address, blockNrOrHash rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if err := api.c.enter("eth_getCode"); err != nil {
		return nil, err
	}
	api.c.mu.Lock()
	defer api.c.mu.Unlock()
	pending := isPending(blockNrOrHash) && !api.c.hidePendingCode
	return common.CopyBytes(api.c.view(pending).get(address).code), nil
}

func (api *ethAPI) GetTransactionCount(address common.Address, blockNrOrHash rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	if err := api.c.enter("eth_getTransactionCount"); err != nil {
		return 0, err
	}
	api.c.mu.Lock()
	defer api.c.mu.Unlock()
	return hexutil.Uint64(api.c.view(isPending(blockNrOrHash)).get(address).nonce), nil
}

func isPending(b rpc.BlockNumberOrHash) bool {
	n, ok := b.Number()
	return ok && n == rpc.PendingBlockNumber
}

func (api *ethAPI) GasPrice() (*hexutil.Big, error) {
	if err := api.c.enter("eth_gasPrice"); err != nil {
		return nil, err
	}
	api.c.mu.Lock()
	defer api.c.mu.Unlock()
	return (*hexutil.Big)(new(big.Int).Set(api.c.gasPrice)), nil
}

func (api *ethAPI) EstimateGas(args CallArgs, blockNrOrHash *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	if err := api.c.enter("eth_estimateGas"); err != nil {
		return 0, err
	}
	api.c.mu.Lock()
	api.c.estimates = append(api.c.estimates, args)
	estimate := api.c.estimator
	api.c.mu.Unlock()

	gas, err := estimate(args)
	return hexutil.Uint64(gas), err
}

func (api *ethAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	if err := api.c.enter("eth_sendRawTransaction"); err != nil {
		return common.Hash{}, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	return api.c.include(tx)
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	if err := api.c.enter("eth_getTransactionReceipt"); err != nil {
		return nil, err
	}
	api.c.mu.Lock()
	defer api.c.mu.Unlock()
	return api.c.receipts[hash], nil
}
