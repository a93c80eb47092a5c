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
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/ethclient"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/time/rate"
)

var (
	errNegativeValue  = errors.New("negative value")
	errNegativeFee    = errors.New("negative fee")
	errTipAboveFeeCap = errors.New("max priority fee per gas higher than max fee per gas")
	errUint256        = errors.New("value exceeds 256 bits")
)

// TxRequest is a call to execute from the delegated EOA. Nil fee fields and a
// zero Gas are filled in at send time, the request itself is never modified.
type TxRequest struct {
	To    *common.Address // required, contract creation is not possible
	Data  []byte
	Value *big.Int

	Gas                  uint64   // zero means estimate
	MaxFeePerGas         *big.Int // nil means the node's gas price
	MaxPriorityFeePerGas *big.Int // nil means a tenth of the node's gas price
}

func (req *TxRequest) validate() error {
	switch {
	case req == nil:
		return ErrNoRequest
	case req.To == nil:
		return ErrContractCreation
	case req.Value != nil && req.Value.Sign() < 0:
		return errNegativeValue
	case req.MaxFeePerGas != nil && req.MaxFeePerGas.Sign() < 0,
		req.MaxPriorityFeePerGas != nil && req.MaxPriorityFeePerGas.Sign() < 0:
		return errNegativeFee
	case req.MaxFeePerGas != nil && req.MaxPriorityFeePerGas != nil && req.MaxPriorityFeePerGas.Cmp(req.MaxFeePerGas) > 0:
		return fmt.Errorf("%w: tip %v, fee cap %v", errTipAboveFeeCap, req.MaxPriorityFeePerGas, req.MaxFeePerGas)
	}
	return nil
}

// Submission is a fully resolved send: the request plus the nonce, gas limit
// and (for undelegated accounts) the authorization chosen for it.
type Submission struct {
	Request       *TxRequest
	Nonce         uint64
	Gas           uint64
	Authorization *types.SetCodeAuthorization
}

// SubmitBackend broadcasts transactions and looks up their receipts.
type SubmitBackend interface {
	Submit(ctx context.Context, req ethclient.SubmitRequest) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Submitter assembles, signs and broadcasts delegated transactions and waits
// for their receipts.
type Submitter struct {
	backend SubmitBackend
	state   *StateReader
	key     *accounts.Key
	chainID *big.Int

	pollInterval   time.Duration
	receiptTimeout time.Duration
	log            log.Logger
}

// NewSubmitter creates a submitter. Gas prices are read through state.
func NewSubmitter(backend SubmitBackend, state *StateReader, key *accounts.Key, chainID *big.Int, pollInterval, receiptTimeout time.Duration, logger log.Logger) *Submitter {
	if logger == nil {
		logger = log.Root()
	}
	if pollInterval <= 0 {
		pollInterval = params.DefaultPollInterval
	}
	return &Submitter{
		backend:        backend,
		state:          state,
		key:            key,
		chainID:        chainID,
		pollInterval:   pollInterval,
		receiptTimeout: receiptTimeout,
		log:            logger,
	}
}

// fees resolves the fee caps of req. The gas price is only read when a field
// is missing.
func (s *Submitter) fees(ctx context.Context, req *TxRequest) (feeCap, tip *big.Int, err error) {
	if req.MaxFeePerGas != nil && req.MaxPriorityFeePerGas != nil {
		return new(big.Int).Set(req.MaxFeePerGas), new(big.Int).Set(req.MaxPriorityFeePerGas), nil
	}
	price, err := s.state.GasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case req.MaxFeePerGas == nil && req.MaxPriorityFeePerGas == nil:
		feeCap = new(big.Int).Set(price)
		tip = new(big.Int).Div(price, big.NewInt(params.PriorityFeeDivisor))
	case req.MaxFeePerGas == nil:
		tip = new(big.Int).Set(req.MaxPriorityFeePerGas)
		feeCap = new(big.Int).Set(price)
		if feeCap.Cmp(tip) < 0 {
			feeCap.Set(tip)
		}
	default:
		feeCap = new(big.Int).Set(req.MaxFeePerGas)
		tip = new(big.Int).Div(price, big.NewInt(params.PriorityFeeDivisor))
		if tip.Cmp(feeCap) > 0 {
			tip.Set(feeCap)
		}
	}
	return feeCap, tip, nil
}

func toUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %v", errUint256, v)
	}
	return u, nil
}

// newTx builds the unsigned transaction. With an authorization it is an
// EIP-7702 set-code transaction, otherwise a plain dynamic fee transaction: a
// set-code transaction with an empty authorization list is invalid.
func (s *Submitter) newTx(sub Submission, feeCap, tip *big.Int) (*types.Transaction, error) {
	req := sub.Request
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	if sub.Authorization == nil {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   new(big.Int).Set(s.chainID),
			Nonce:     sub.Nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       sub.Gas,
			To:        req.To,
			Value:     new(big.Int).Set(value),
			Data:      common.CopyBytes(req.Data),
		}), nil
	}
	var (
		chainID, err1 = toUint256(s.chainID)
		tip256, err2  = toUint256(tip)
		cap256, err3  = toUint256(feeCap)
		val256, err4  = toUint256(value)
	)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}
	return types.NewTx(&types.SetCodeTx{
		ChainID:   chainID,
		Nonce:     sub.Nonce,
		GasTipCap: tip256,
		GasFeeCap: cap256,
		Gas:       sub.Gas,
		To:        *req.To,
		Value:     val256,
		Data:      common.CopyBytes(req.Data),
		AuthList:  []types.SetCodeAuthorization{*sub.Authorization},
	}), nil
}

// Submit fills in the fees, signs and broadcasts the transaction described by
// sub. Broadcast failures are returned as *SubmissionError and not retried.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (*types.Transaction, error) {
	if err := sub.Request.validate(); err != nil {
		return nil, err
	}
	feeCap, tip, err := s.fees(ctx, sub.Request)
	if err != nil {
		return nil, err
	}
	from := s.key.Address()
	tx, err := s.newTx(sub, feeCap, tip)
	if err != nil {
		return nil, &SubmissionError{Address: from, ChainID: s.chainID, Nonce: sub.Nonce, Err: err}
	}
	signed, err := s.key.SignTx(tx, s.chainID)
	if err != nil {
		return nil, &SubmissionError{Address: from, ChainID: s.chainID, Nonce: sub.Nonce, Err: err}
	}
	if _, err := s.backend.Submit(ctx, ethclient.SubmitRequest{Tx: signed}); err != nil {
		// The node took the transaction, only its acknowledgement is off.
		if !errors.Is(err, ethclient.ErrHashMismatch) {
			broadcastFailureMeter.Mark(1)
			return nil, &SubmissionError{Address: from, ChainID: s.chainID, Nonce: sub.Nonce, Hash: signed.Hash(), Err: err}
		}
		s.log.Warn("Node acknowledged transaction under another hash", "hash", signed.Hash(), "nonce", sub.Nonce, "err", err)
	}
	broadcastMeter.Mark(1)
	s.log.Debug("Broadcast transaction", "hash", signed.Hash(), "type", signed.Type(), "nonce", sub.Nonce,
		"gas", sub.Gas, "feecap", feeCap, "tip", tip, "authorized", sub.Authorization != nil)
	return signed, nil
}

// Wait polls for the receipt of hash until it is mined, the receipt timeout
// elapses or ctx is done. The receipt is returned as reported by the node,
// its status is not interpreted. Lookups are paced to one per poll interval.
func (s *Submitter) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if s.receiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.receiptTimeout)
		defer cancel()
	}
	limiter := rate.NewLimiter(rate.Every(s.pollInterval), 1)
	logger := s.log.New("hash", hash)

	var lastErr error
	for {
		if err := limiter.Wait(ctx); err != nil {
			cause := ctx.Err()
			if cause == nil {
				// The limiter gives up early when the next slot lies past the deadline.
				cause = context.DeadlineExceeded
			}
			receiptTimeoutMeter.Mark(1)
			return nil, &ReceiptTimeoutError{Hash: hash, ChainID: s.chainID, Timeout: s.receiptTimeout, LastErr: lastErr, Err: cause}
		}
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			logger.Debug("Transaction mined", "block", receipt.BlockNumber, "status", receipt.Status, "gasused", receipt.GasUsed)
			return receipt, nil
		}
		if errors.Is(err, ethereum.NotFound) {
			logger.Trace("Transaction not yet mined")
		} else {
			logger.Trace("Receipt retrieval failed", "err", err)
			lastErr = err
		}
	}
}
