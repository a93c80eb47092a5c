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
	"math"
	"math/big"
	"math/bits"

	"github.com/chamapay/go-delegate/ethclient"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// EstimateBackend runs gas estimations.
type EstimateBackend interface {
	EstimateGas(ctx context.Context, req ethclient.EstimateRequest) (uint64, error)
}

// GasEstimator picks the gas limit of delegated transactions. It never fails:
// when the node cannot produce an estimate the fixed fallback limit is used.
type GasEstimator struct {
	backend EstimateBackend
	chainID *big.Int
	log     log.Logger
}

// NewGasEstimator creates an estimator on top of backend.
func NewGasEstimator(backend EstimateBackend, chainID *big.Int, logger log.Logger) *GasEstimator {
	if logger == nil {
		logger = log.Root()
	}
	return &GasEstimator{backend: backend, chainID: chainID, log: logger}
}

// Estimate returns the buffered gas estimate of sending req from the given
// account. If auth is not nil the estimate runs with it in the authorization
// list, so the call executes against the delegated code. Estimation errors are
// logged and replaced by params.FallbackGasLimit.
func (e *GasEstimator) Estimate(ctx context.Context, from common.Address, req *TxRequest, auth *types.SetCodeAuthorization) uint64 {
	msg := ethclient.EstimateRequest{
		From:      from,
		To:        req.To,
		Data:      req.Data,
		Value:     req.Value,
		GasFeeCap: req.MaxFeePerGas,
		GasTipCap: req.MaxPriorityFeePerGas,
	}
	if auth != nil {
		msg.AuthorizationList = []types.SetCodeAuthorization{*auth}
	}
	raw, err := e.backend.EstimateGas(ctx, msg)
	if err != nil {
		gasFallbackMeter.Mark(1)
		failure := &GasEstimationError{Address: from, ChainID: e.chainID, Authorized: auth != nil, Err: err}
		failure.RevertData, _ = ethclient.RevertErrorData(err)
		e.log.Warn("Gas estimation failed, using fallback limit", "gas", params.FallbackGasLimit, "err", failure)
		return params.FallbackGasLimit
	}
	gas := bufferedGas(raw)
	e.log.Trace("Estimated gas", "raw", raw, "gas", gas)
	return gas
}

// bufferedGas returns ceil(raw * (100 + GasBufferPercent) / 100), saturating
// at the maximum uint64.
func bufferedGas(raw uint64) uint64 {
	hi, lo := bits.Mul64(raw, params.GasBufferPercent)
	extra, rem := bits.Div64(hi, lo, 100)
	if rem != 0 {
		extra++
	}
	gas, carry := bits.Add64(raw, extra, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return gas
}
