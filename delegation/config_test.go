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
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSanitize(t *testing.T) {
	cfg, key, err := Config{PrivateKey: testKey, Implementation: testImpl}.sanitize()
	require.NoError(t, err)
	assert.Equal(t, testAddr, key.Address())
	assert.Equal(t, params.BaseChain, cfg.Chain)
	assert.Equal(t, params.BaseChain.RPCURL, cfg.RPCURL)
	assert.Equal(t, params.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, params.DefaultReceiptTimeout, cfg.ReceiptTimeout)
	assert.Equal(t, params.DefaultPollInterval, cfg.PollInterval)
	assert.Same(t, defaultLocks, cfg.Locks)
	assert.NotNil(t, cfg.Logger)

	cfg, _, err = Config{
		PrivateKey:     testKey,
		Implementation: testImpl,
		Chain:          params.SepoliaChain,
		RPCURL:         "http://localhost:8545",
		PollInterval:   time.Millisecond,
	}.sanitize()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, time.Millisecond, cfg.PollInterval)
}

func TestConfigSanitizeErrors(t *testing.T) {
	_, _, err := Config{Implementation: testImpl}.sanitize()
	assert.ErrorIs(t, err, ErrNoKey)

	_, _, err = Config{PrivateKey: testKey}.sanitize()
	assert.ErrorIs(t, err, ErrNoImplementation)

	_, _, err = Config{PrivateKey: testKey, Implementation: testImpl, Chain: &params.Chain{Name: "void"}}.sanitize()
	assert.ErrorIs(t, err, ErrNoChain)
}

func TestConfigRedactsKey(t *testing.T) {
	cfg := Config{PrivateKey: testKey, Implementation: testImpl, Chain: params.BaseChain}
	secret := common.Bytes2Hex(testKey.D.Bytes())

	for _, out := range []string{
		cfg.String(),
		fmt.Sprintf("%v", cfg),
		fmt.Sprintf("%+v", cfg),
		fmt.Sprintf("%#v", cfg),
	} {
		assert.NotContains(t, out, secret)
		assert.NotContains(t, out, testKey.D.String())
	}
	assert.Contains(t, cfg.String(), "<redacted>")

	enc, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(enc), secret)
	assert.NotContains(t, string(enc), testKey.D.String())
}
