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
	"math/rand"
	"testing"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/ethclient"
	"github.com/chamapay/go-delegate/internal/testchain"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, Undelegated, StateOf(nil))
	assert.Equal(t, Undelegated, StateOf([]byte{}))
	assert.Equal(t, Delegated, StateOf([]byte{0x00}))
	assert.Equal(t, Delegated, StateOf(types.AddressToDelegation(testImpl)))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		code := make([]byte, rng.Intn(64))
		rng.Read(code)
		assert.Equal(t, len(code) > 0, StateOf(code) == Delegated, "code %x", code)
	}
}

func TestStateReader(t *testing.T) {
	chain := testchain.New(big.NewInt(8453))
	defer chain.Close()
	backend := ethclient.NewClient(chain.Client())
	defer backend.Close()
	reader := NewStateReader(backend, chain.ChainID(), nil)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		code := make([]byte, rng.Intn(4)*12)
		rng.Read(code)
		chain.SetCode(testAddr, code)

		delegated, err := reader.IsDelegated(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, len(code) > 0, delegated)
	}

	// Arbitrary contract code counts as delegated without a target.
	chain.SetCode(testAddr, []byte{0x60, 0x00})
	target, state, err := reader.Delegation(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, Delegated, state)
	assert.Equal(t, common.Address{}, target)

	chain.SetCode(testAddr, types.AddressToDelegation(testImpl))
	target, state, err = reader.Delegation(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, Delegated, state)
	assert.Equal(t, testImpl, target)

	chain.SetNonce(testAddr, 11)
	nonce, err := reader.Nonce(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), nonce)
}

func TestStateReaderPending(t *testing.T) {
	chain := testchain.New(big.NewInt(8453))
	defer chain.Close()
	chain.SetPool(true)
	backend := ethclient.NewClient(chain.Client())
	defer backend.Close()
	reader := NewStateReader(backend, chain.ChainID(), nil)
	ctx := context.Background()

	key, err := accounts.NewKey(testKey)
	require.NoError(t, err)
	signer, err := NewAuthorizationSigner(key, chain.ChainID(), testImpl)
	require.NoError(t, err)
	auth, err := signer.Sign(1)
	require.NoError(t, err)
	tx, err := key.SignTx(types.NewTx(&types.SetCodeTx{
		ChainID:   uint256.NewInt(8453),
		Nonce:     0,
		GasTipCap: uint256.NewInt(1),
		GasFeeCap: uint256.NewInt(params.GWei),
		Gas:       100_000,
		To:        testRecipient,
		Value:     uint256.NewInt(0),
		AuthList:  []types.SetCodeAuthorization{*auth},
	}), chain.ChainID())
	require.NoError(t, err)
	_, err = backend.Submit(ctx, ethclient.SubmitRequest{Tx: tx})
	require.NoError(t, err)

	latest, err := reader.LatestNonce(ctx, testAddr)
	require.NoError(t, err)
	pending, err := reader.Nonce(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), latest)
	assert.Equal(t, uint64(2), pending)

	delegated, err := reader.IsDelegated(ctx, testAddr)
	require.NoError(t, err)
	assert.False(t, delegated)
	delegated, err = reader.PendingDelegated(ctx, testAddr)
	require.NoError(t, err)
	assert.True(t, delegated)

	chain.HidePendingCode(true)
	delegated, err = reader.PendingDelegated(ctx, testAddr)
	require.NoError(t, err)
	assert.False(t, delegated)

	chain.Mine()
	latest, err = reader.LatestNonce(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest)
	delegated, err = reader.IsDelegated(ctx, testAddr)
	require.NoError(t, err)
	assert.True(t, delegated)
}

func TestDelegationStateString(t *testing.T) {
	assert.Equal(t, "undelegated", Undelegated.String())
	assert.Equal(t, "delegated", Delegated.String())
	assert.Equal(t, "unknown", DelegationState(5).String())
}
