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
	"math"
	"math/big"
	"testing"

	"github.com/chamapay/go-delegate/ethclient"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedGas(t *testing.T) {
	tests := []struct {
		raw, want uint64
	}{
		{0, 0},
		{1, 2},
		{5, 6},
		{10, 12},
		{21_000, 25_200},
		{21_001, 25_202},
		{100_000, 120_000},
		{math.MaxUint64, math.MaxUint64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bufferedGas(tt.raw), "raw %d", tt.raw)
	}
}

type stubEstimator struct {
	gas  uint64
	err  error
	reqs []ethclient.EstimateRequest
}

func (s *stubEstimator) EstimateGas(ctx context.Context, req ethclient.EstimateRequest) (uint64, error) {
	s.reqs = append(s.reqs, req)
	return s.gas, s.err
}

func TestGasEstimator(t *testing.T) {
	backend := &stubEstimator{gas: 50_000}
	est := NewGasEstimator(backend, big.NewInt(8453), log.Root())
	req := &TxRequest{To: &testRecipient, Data: testCallData, MaxFeePerGas: big.NewInt(7)}

	assert.Equal(t, uint64(60_000), est.Estimate(context.Background(), testAddr, req, nil))
	require.Len(t, backend.reqs, 1)
	assert.Equal(t, testAddr, backend.reqs[0].From)
	assert.Equal(t, &testRecipient, backend.reqs[0].To)
	assert.Equal(t, big.NewInt(7), backend.reqs[0].GasFeeCap)
	assert.Empty(t, backend.reqs[0].AuthorizationList)

	auth := &types.SetCodeAuthorization{Address: testImpl, Nonce: 3}
	est.Estimate(context.Background(), testAddr, req, auth)
	require.Len(t, backend.reqs, 2)
	assert.Equal(t, []types.SetCodeAuthorization{*auth}, backend.reqs[1].AuthorizationList)
}

func TestGasEstimatorFallback(t *testing.T) {
	for _, err := range []error{
		errors.New("execution reverted"),
		context.DeadlineExceeded,
		errors.New("method not found"),
	} {
		est := NewGasEstimator(&stubEstimator{gas: 1, err: err}, big.NewInt(1), nil)
		gas := est.Estimate(context.Background(), testAddr, transferRequest(), nil)
		assert.Equal(t, params.FallbackGasLimit, gas, "error %v", err)
	}
}
