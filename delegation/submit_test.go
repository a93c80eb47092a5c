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
	"fmt"
	"math/big"
	"testing"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/ethclient"
	"github.com/chamapay/go-delegate/internal/testchain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFees(t *testing.T) {
	chain := testchain.New(big.NewInt(8453))
	defer chain.Close()
	chain.SetGasPrice(big.NewInt(1000))

	backend := ethclient.NewClient(chain.Client())
	defer backend.Close()
	key, err := accounts.NewKey(testKey)
	require.NoError(t, err)
	state := NewStateReader(backend, chain.ChainID(), nil)
	sub := NewSubmitter(backend, state, key, chain.ChainID(), 0, 0, nil)

	tests := []struct {
		name         string
		feeCap, tip  *big.Int
		wantCap      int64
		wantTip      int64
		wantPriceRPC bool
	}{
		{"both missing", nil, nil, 1000, 100, true},
		{"tip given", nil, big.NewInt(50), 1000, 50, true},
		{"tip above price", nil, big.NewInt(5000), 5000, 5000, true},
		{"fee cap given", big.NewInt(2000), nil, 2000, 100, true},
		{"fee cap below default tip", big.NewInt(60), nil, 60, 60, true},
		{"both given", big.NewInt(3), big.NewInt(2), 3, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := chain.Calls("eth_gasPrice")
			req := &TxRequest{To: &testRecipient, MaxFeePerGas: tt.feeCap, MaxPriorityFeePerGas: tt.tip}
			feeCap, tip, err := sub.fees(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.wantCap), feeCap)
			assert.Equal(t, big.NewInt(tt.wantTip), tip)
			assert.Equal(t, tt.wantPriceRPC, chain.Calls("eth_gasPrice") > before)

			// The request keeps its own values.
			assert.Equal(t, tt.feeCap, req.MaxFeePerGas)
			assert.Equal(t, tt.tip, req.MaxPriorityFeePerGas)
		})
	}
}

func TestTxRequestValidate(t *testing.T) {
	var nilReq *TxRequest
	assert.ErrorIs(t, nilReq.validate(), ErrNoRequest)
	assert.ErrorIs(t, (&TxRequest{}).validate(), ErrContractCreation)
	assert.ErrorIs(t, (&TxRequest{To: &testRecipient, Value: big.NewInt(-1)}).validate(), errNegativeValue)
	assert.ErrorIs(t, (&TxRequest{To: &testRecipient, MaxFeePerGas: big.NewInt(-1)}).validate(), errNegativeFee)
	assert.ErrorIs(t, (&TxRequest{To: &testRecipient, MaxFeePerGas: big.NewInt(1), MaxPriorityFeePerGas: big.NewInt(2)}).validate(), errTipAboveFeeCap)
	assert.NoError(t, (&TxRequest{To: &testRecipient}).validate())
}

func TestNewTxOverflow(t *testing.T) {
	key, err := accounts.NewKey(testKey)
	require.NoError(t, err)
	sub := NewSubmitter(nil, nil, key, big.NewInt(8453), 0, 0, nil)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = sub.newTx(Submission{
		Request:       &TxRequest{To: &testRecipient, Value: huge},
		Authorization: &testAuthorization,
	}, big.NewInt(1), big.NewInt(1))
	assert.ErrorIs(t, err, errUint256)
}

type mismatchBackend struct {
	submitted []*types.Transaction
}

func (b *mismatchBackend) Submit(ctx context.Context, req ethclient.SubmitRequest) (common.Hash, error) {
	b.submitted = append(b.submitted, req.Tx)
	return req.Tx.Hash(), fmt.Errorf("%w: have %v, want %v", ethclient.ErrHashMismatch, common.Hash{1}, req.Tx.Hash())
}

func (b *mismatchBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func TestSubmitAcceptsHashMismatch(t *testing.T) {
	key, err := accounts.NewKey(testKey)
	require.NoError(t, err)
	backend := new(mismatchBackend)
	sub := NewSubmitter(backend, nil, key, big.NewInt(8453), 0, 0, nil)

	req := &TxRequest{To: &testRecipient, MaxFeePerGas: big.NewInt(10), MaxPriorityFeePerGas: big.NewInt(1)}
	tx, err := sub.Submit(context.Background(), Submission{Request: req, Nonce: 4, Gas: 21000})
	require.NoError(t, err)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, backend.submitted[0].Hash(), tx.Hash())
	assert.Equal(t, uint64(4), tx.Nonce())
}
