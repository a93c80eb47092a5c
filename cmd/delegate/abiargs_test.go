// Copyright 2025 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}]},
	{"type":"function","name":"configure","inputs":[
		{"name":"enabled","type":"bool"},
		{"name":"fee","type":"uint16"},
		{"name":"delta","type":"int64"},
		{"name":"odd","type":"uint24"},
		{"name":"tag","type":"bytes4"},
		{"name":"blob","type":"bytes"},
		{"name":"label","type":"string"}
	]},
	{"type":"function","name":"batch","inputs":[{"name":"targets","type":"address[]"}]}
]`

func TestParseCallArgs(t *testing.T) {
	args, err := parseCallArgs(testABI, "transfer", []string{"0x000000000000000000000000000000000000dEaD", "0x10"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{common.HexToAddress("0xdead"), big.NewInt(16)}, args)

	args, err = parseCallArgs(testABI, "configure", []string{"true", "500", "-3", "70000", "0x01020304", "0xff", "weekly"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		true,
		uint16(500),
		int64(-3),
		big.NewInt(70000),
		[4]byte{1, 2, 3, 4},
		[]byte{0xff},
		"weekly",
	}, args)
}

func TestParseCallArgsErrors(t *testing.T) {
	tests := []struct {
		method string
		args   []string
	}{
		{"missing", nil},
		{"transfer", []string{"0xdead"}},
		{"transfer", []string{"nothex", "1"}},
		{"transfer", []string{"0x000000000000000000000000000000000000dEaD", "-1"}},
		{"configure", []string{"true", "70000", "0", "0", "0x01020304", "0x", "x"}},
		{"configure", []string{"true", "1", "0", "0", "0x0102", "0x", "x"}},
		{"configure", []string{"maybe", "1", "0", "0", "0x01020304", "0x", "x"}},
		{"batch", []string{"0x000000000000000000000000000000000000dEaD"}},
	}
	for _, tt := range tests {
		_, err := parseCallArgs(testABI, tt.method, tt.args)
		assert.Error(t, err, "%s %v", tt.method, tt.args)
	}
}
