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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erc20ABI = `[{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

func TestEncodeCallData(t *testing.T) {
	to := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	data, err := EncodeCallData(erc20ABI, "transfer", to, big.NewInt(1000))
	require.NoError(t, err)

	require.Len(t, data, 4+32+32)
	assert.Equal(t, "0xa9059cbb", hexutil.Encode(data[:4]))
	assert.Equal(t, to, common.BytesToAddress(data[4:36]))
	assert.Equal(t, big.NewInt(1000), new(big.Int).SetBytes(data[36:]))

	_, err = EncodeCallData(erc20ABI, "approve", to, big.NewInt(1))
	assert.Error(t, err)
	_, err = EncodeCallData(erc20ABI, "transfer", to)
	assert.Error(t, err)
	_, err = EncodeCallData("not json", "transfer")
	assert.ErrorContains(t, err, "invalid abi")
}
