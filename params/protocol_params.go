// Copyright 2015 The go-ethereum Authors
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

package params

import "time"

const (
	// GasBufferPercent is the safety margin added on top of a successful
	// eth_estimateGas result.
	// GasBufferPercent 是在成功的 eth_estimateGas 结果之上增加的安全余量（百分比）。
	GasBufferPercent uint64 = 20

	// FallbackGasLimit is used verbatim whenever gas estimation fails.
	FallbackGasLimit uint64 = 500_000

	// PriorityFeeDivisor derives the default priority fee from the gas price
	// (tip = gasPrice / PriorityFeeDivisor).
	PriorityFeeDivisor = 10

	// SetCodeAuthorizationMagic is the EIP-7702 signing domain byte prefixed to
	// rlp([chain_id, address, nonce]) before hashing.
	SetCodeAuthorizationMagic byte = 0x05
)

const (
	// DefaultRequestTimeout bounds every single JSON-RPC round trip.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultReceiptTimeout bounds how long a receipt is polled for.
	DefaultReceiptTimeout = 2 * time.Minute

	// DefaultPollInterval is the pause between two receipt lookups.
	DefaultPollInterval = time.Second
)
