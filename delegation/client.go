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

// Package delegation implements a client for EIP-7702 delegated EOAs: it
// reads whether an account already delegates its code, signs the one-shot
// authorization that installs the delegation when it does not, and sends
// transactions executed through the delegated code.
//
// Every send runs a small state machine:
//
//	Unauthorized --not delegated--> Authorizing --signed--> Submitting --receipt--> Confirmed
//	Unauthorized --delegated------------------------------> Submitting
//
// Any failure moves to Failed. Delegation state is read afresh on every send
// and sends for one account are serialized through a LockRegistry.
package delegation

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/ethclient"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
)

// State is a step of the send state machine.
type State uint8

const (
	Unauthorized State = iota // initial, delegation status unknown
	Authorizing               // account not delegated, authorization being signed
	Submitting                // transaction being estimated, signed and broadcast
	Confirmed                 // receipt observed
	Failed                    // aborted with an error
)

func (s State) String() string {
	switch s {
	case Unauthorized:
		return "unauthorized"
	case Authorizing:
		return "authorizing"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Backend is the JSON-RPC surface the client needs. *ethclient.Client
// implements it.
type Backend interface {
	StateBackend
	EstimateBackend
	SubmitBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Result describes a completed send.
type Result struct {
	Hash          common.Hash
	Tx            *types.Transaction
	Nonce         uint64
	Gas           uint64
	Authorization *types.SetCodeAuthorization // signed during this send, nil if already delegated
	Receipt       *types.Receipt              // only set by Transact
	Path          []State                     // visited states, in order
}

// State returns the final state of the send.
func (r *Result) State() State {
	if len(r.Path) == 0 {
		return Unauthorized
	}
	return r.Path[len(r.Path)-1]
}

// step is the state threaded through one send. Transitions return a new
// step, the client itself holds no per-send state.
type step struct {
	state     State
	path      []State
	delegated bool
	nonce     uint64
	auth      *types.SetCodeAuthorization
	gas       uint64
	tx        *types.Transaction
	receipt   *types.Receipt
}

func newStep() step {
	return step{state: Unauthorized, path: []State{Unauthorized}}
}

func (s step) to(next State) step {
	s.state = next
	s.path = append(append(make([]State, 0, len(s.path)+1), s.path...), next)
	return s
}

func (s step) result() *Result {
	r := &Result{
		Nonce:         s.nonce,
		Gas:           s.gas,
		Authorization: s.auth,
		Tx:            s.tx,
		Receipt:       s.receipt,
		Path:          s.path,
	}
	if s.tx != nil {
		r.Hash = s.tx.Hash()
	}
	return r
}

type observation struct {
	state DelegationState
}

// Client sends transactions from one EIP-7702 delegated EOA.
type Client struct {
	config  Config
	backend Backend
	key     *accounts.Key
	chainID *big.Int

	state     *StateReader
	signer    *AuthorizationSigner
	gas       *GasEstimator
	submitter *Submitter
	locks     *LockRegistry
	log       log.Logger

	observed atomic.Pointer[observation] // hint for callers, never read by sends
}

// Dial connects to the configured endpoint and creates a client. The endpoint
// must serve the configured chain.
func Dial(ctx context.Context, config Config) (*Client, error) {
	cfg, _, err := config.sanitize()
	if err != nil {
		return nil, err
	}
	ec, err := ethclient.DialContext(ctx, cfg.RPCURL, rpc.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %v endpoint: %w", cfg.Chain, err)
	}
	ec = ec.WithTimeout(cfg.RequestTimeout)

	id, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, &ChainReadError{Op: "eth_chainId", ChainID: cfg.Chain.ChainID, Err: err}
	}
	if id.Cmp(cfg.Chain.ChainID) != 0 {
		ec.Close()
		return nil, fmt.Errorf("%w: endpoint serves chain %v, configured %v", ErrChainMismatch, id, cfg.Chain)
	}
	c, err := NewClient(cfg, ec)
	if err != nil {
		ec.Close()
		return nil, err
	}
	return c, nil
}

// NewClient creates a client on top of an existing backend. The backend is
// trusted to serve the configured chain.
func NewClient(config Config, backend Backend) (*Client, error) {
	cfg, key, err := config.sanitize()
	if err != nil {
		return nil, err
	}
	chainID := new(big.Int).Set(cfg.Chain.ChainID)
	logger := cfg.Logger.New("address", key.Address(), "chain", cfg.Chain.Name)

	signer, err := NewAuthorizationSigner(key, chainID, cfg.Implementation)
	if err != nil {
		return nil, err
	}
	state := NewStateReader(backend, chainID, logger)
	c := &Client{
		config:    cfg,
		backend:   backend,
		key:       key,
		chainID:   chainID,
		state:     state,
		signer:    signer,
		gas:       NewGasEstimator(backend, chainID, logger),
		submitter: NewSubmitter(backend, state, key, chainID, cfg.PollInterval, cfg.ReceiptTimeout, logger),
		locks:     cfg.Locks,
		log:       logger,
	}
	logger.Debug("Created delegation client", "implementation", cfg.Implementation)
	return c, nil
}

// Address returns the EOA address.
func (c *Client) Address() common.Address {
	return c.key.Address()
}

// ImplementationAddress returns the contract the EOA delegates to.
func (c *Client) ImplementationAddress() common.Address {
	return c.config.Implementation
}

// ChainID returns the identifier of the chain the client is bound to.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Close releases the backend connection.
func (c *Client) Close() {
	c.backend.Close()
}

// LastObserved returns the delegation state seen by the most recent read, if
// any. It is a hint only: sends always read the state afresh.
func (c *Client) LastObserved() (DelegationState, bool) {
	obs := c.observed.Load()
	if obs == nil {
		return Undelegated, false
	}
	return obs.state, true
}

func (c *Client) observe(delegated bool) {
	state := Undelegated
	if delegated {
		state = Delegated
	}
	c.observed.Store(&observation{state: state})
}

// IsDelegated reports whether the EOA currently has code.
func (c *Client) IsDelegated(ctx context.Context) (bool, error) {
	delegated, err := c.state.IsDelegated(ctx, c.Address())
	if err != nil {
		return false, err
	}
	c.observe(delegated)
	return delegated, nil
}

// Delegation returns the delegation target of the EOA and whether it is
// delegated at all. A target other than the configured implementation is
// logged, the account still counts as delegated.
func (c *Client) Delegation(ctx context.Context) (common.Address, bool, error) {
	target, state, err := c.state.Delegation(ctx, c.Address())
	if err != nil {
		return common.Address{}, false, err
	}
	delegated := state == Delegated
	c.observe(delegated)
	if delegated && target != c.config.Implementation {
		c.log.Warn("Account delegates to a foreign implementation", "target", target, "implementation", c.config.Implementation)
	}
	return target, delegated, nil
}

// SignAuthorization signs an authorization bound to the EOA's current nonce,
// for a sponsor to include in a transaction it sends. It does not broadcast
// anything. The EOA must not send a transaction of its own before the
// sponsor's transaction is included, or the authorization becomes invalid.
func (c *Client) SignAuthorization(ctx context.Context) (*types.SetCodeAuthorization, error) {
	release, err := c.locks.Acquire(ctx, c.Address())
	if err != nil {
		return nil, fmt.Errorf("cannot lock account %v: %w", c.Address(), err)
	}
	defer release()

	nonce, err := c.state.Nonce(ctx, c.Address())
	if err != nil {
		return nil, err
	}
	auth, err := c.signer.Sign(nonce)
	if err != nil {
		c.log.Error("Authorization signing failed", "nonce", nonce, "err", err)
		return nil, err
	}
	c.log.Info("Signed sponsored authorization", "nonce", nonce, "implementation", auth.Address)
	return auth, nil
}

// SendTransaction executes req from the EOA and returns the transaction hash
// once the node accepted it. An undelegated EOA is delegated in the same
// transaction.
func (c *Client) SendTransaction(ctx context.Context, req *TxRequest) (common.Hash, error) {
	res, err := c.Send(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	return res.Hash, nil
}

// Send is SendTransaction reporting the full result of the send.
func (c *Client) Send(ctx context.Context, req *TxRequest) (*Result, error) {
	s, err := c.send(ctx, req, c.log.New("call", callID()))
	if err != nil {
		return nil, err
	}
	return s.result(), nil
}

// Transact sends req and waits for its receipt. The receipt status is not
// interpreted: a reverted execution is still Confirmed.
func (c *Client) Transact(ctx context.Context, req *TxRequest) (*Result, error) {
	logger := c.log.New("call", callID())
	s, err := c.send(ctx, req, logger)
	if err != nil {
		return nil, err
	}
	if s, err = c.confirm(ctx, s, logger); err != nil {
		return nil, err
	}
	return s.result(), nil
}

// WaitForTransaction waits for the receipt of a previously sent transaction.
func (c *Client) WaitForTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.submitter.Wait(ctx, hash)
}

// RevokeAuthorization is not supported: undoing a delegation depends on the
// implementation contract, which defines no revocation yet. It never touches
// the network.
func (c *Client) RevokeAuthorization(ctx context.Context) (common.Hash, error) {
	return common.Hash{}, &NotImplementedError{
		Op:     "revoke authorization",
		Reason: "the implementation contract defines no revocation",
	}
}

// send runs the state machine up to a successful broadcast. The account lock
// is held from the delegation read until the node accepted the transaction.
func (c *Client) send(ctx context.Context, req *TxRequest, logger log.Logger) (step, error) {
	s := newStep()
	if err := req.validate(); err != nil {
		return s.to(Failed), err
	}
	defer sendTimer.UpdateSince(time.Now())

	release, err := c.locks.Acquire(ctx, c.Address())
	if err != nil {
		return s.to(Failed), fmt.Errorf("cannot lock account %v: %w", c.Address(), err)
	}
	defer release()

	if s, err = c.inspect(ctx, s, logger); err != nil {
		return s.to(Failed), err
	}
	if s.state == Authorizing {
		if s, err = c.authorize(s, logger); err != nil {
			return s.to(Failed), err
		}
	}
	if s, err = c.broadcast(ctx, req, s, logger); err != nil {
		return s.to(Failed), err
	}
	return s, nil
}

// inspect reads the delegation state and nonce, moving to Authorizing or
// straight to Submitting.
//
// An account without code but with pooled transactions may already have a
// delegation on its way in. Signing another authorization would bind a nonce
// that is consumed by the pooled one, so the pending state decides: either it
// shows the delegation, or the send is refused until the pool drains.
func (c *Client) inspect(ctx context.Context, s step, logger log.Logger) (step, error) {
	delegated, err := c.state.IsDelegated(ctx, c.Address())
	if err != nil {
		logger.Warn("Cannot read delegation state", "err", err)
		return s, err
	}
	nonce, err := c.state.Nonce(ctx, c.Address())
	if err != nil {
		logger.Warn("Cannot read account nonce", "err", err)
		return s, err
	}
	if !delegated {
		if delegated, err = c.inspectPool(ctx, nonce, logger); err != nil {
			return s, err
		}
	}
	c.observe(delegated)
	s.delegated, s.nonce = delegated, nonce
	logger.Trace("Inspected account", "delegated", delegated, "nonce", nonce)

	if delegated {
		return s.to(Submitting), nil
	}
	return s.to(Authorizing), nil
}

// inspectPool checks an undelegated account for pooled transactions. It
// reports whether the pending state already carries a delegation.
func (c *Client) inspectPool(ctx context.Context, pending uint64, logger log.Logger) (bool, error) {
	latest, err := c.state.LatestNonce(ctx, c.Address())
	if err != nil {
		logger.Warn("Cannot read account nonce", "err", err)
		return false, err
	}
	if pending <= latest {
		return false, nil
	}
	delegated, err := c.state.PendingDelegated(ctx, c.Address())
	if err != nil {
		logger.Warn("Cannot read pending delegation state", "err", err)
		return false, err
	}
	if delegated {
		logger.Debug("Delegation pending in the pool", "latest", latest, "pending", pending)
		return true, nil
	}
	logger.Warn("Account has pooled transactions, not authorizing", "latest", latest, "pending", pending)
	return false, &DelegationPendingError{Address: c.Address(), ChainID: c.chainID, Latest: latest, Pending: pending}
}

// authorize signs the authorization carried by the transaction. The sender's
// nonce is incremented before authorizations are applied, so a self-sent
// authorization must name the nonce following the transaction's.
func (c *Client) authorize(s step, logger log.Logger) (step, error) {
	auth, err := c.signer.Sign(s.nonce + 1)
	if err != nil {
		logger.Error("Authorization signing failed", "nonce", s.nonce+1, "err", err)
		return s, err
	}
	s.auth = auth
	logger.Debug("Signed authorization", "implementation", auth.Address, "nonce", auth.Nonce)
	return s.to(Submitting), nil
}

// broadcast estimates gas unless given, then signs and broadcasts. Success
// keeps the Submitting state: the transaction is pending.
func (c *Client) broadcast(ctx context.Context, req *TxRequest, s step, logger log.Logger) (step, error) {
	s.gas = req.Gas
	if s.gas == 0 {
		s.gas = c.gas.Estimate(ctx, c.Address(), req, s.auth)
	}
	tx, err := c.submitter.Submit(ctx, Submission{Request: req, Nonce: s.nonce, Gas: s.gas, Authorization: s.auth})
	if err != nil {
		logger.Warn("Transaction submission failed", "nonce", s.nonce, "err", err)
		return s, err
	}
	s.tx = tx
	logger.Info("Submitted transaction", "hash", tx.Hash(), "nonce", s.nonce, "gas", s.gas, "delegating", s.auth != nil)
	return s, nil
}

// confirm waits for the receipt of the broadcast transaction.
func (c *Client) confirm(ctx context.Context, s step, logger log.Logger) (step, error) {
	receipt, err := c.submitter.Wait(ctx, s.tx.Hash())
	if err != nil {
		logger.Warn("Transaction not confirmed", "hash", s.tx.Hash(), "err", err)
		return s.to(Failed), err
	}
	s.receipt = receipt
	logger.Info("Transaction confirmed", "hash", s.tx.Hash(), "block", receipt.BlockNumber, "status", receipt.Status)
	return s.to(Confirmed), nil
}

// callID returns a short identifier correlating the log lines of one call.
func callID() string {
	return uuid.NewString()[:8]
}
