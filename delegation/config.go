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
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// DefaultConfig contains reasonable default settings: Base mainnet over its
// public endpoint, with the package wide lock registry.
var DefaultConfig = Config{
	Chain:          params.DefaultChain,
	RequestTimeout: params.DefaultRequestTimeout,
	ReceiptTimeout: params.DefaultReceiptTimeout,
	PollInterval:   params.DefaultPollInterval,
}

// Config holds the settings of a delegation client. The client copies it at
// construction, later modifications have no effect.
type Config struct {
	// PrivateKey is the EOA key. It is never logged, printed or serialized.
	PrivateKey *ecdsa.PrivateKey `json:"-" toml:"-"`

	// Implementation is the contract the EOA delegates its code to.
	Implementation common.Address

	// Chain selects the network. Authorizations and transactions are bound to
	// its identifier.
	Chain *params.Chain

	// RPCURL is the JSON-RPC endpoint. Defaults to the chain's public endpoint.
	RPCURL string `toml:",omitempty"`

	RequestTimeout time.Duration // bound of every single RPC request
	ReceiptTimeout time.Duration // bound of a receipt wait
	PollInterval   time.Duration // receipt polling interval

	// Logger receives the client's logs. Defaults to the root logger.
	Logger log.Logger `json:"-" toml:"-"`

	// Locks serializes sends per EOA. Clients sharing a registry never
	// interleave sends for the same address. Defaults to a process wide
	// registry.
	Locks *LockRegistry `json:"-" toml:"-"`
}

// String implements fmt.Stringer. The private key is reported as present or
// absent only.
func (c Config) String() string {
	key := "none"
	if c.PrivateKey != nil {
		key = "<redacted>"
	}
	chain := "none"
	if c.Chain != nil {
		chain = c.Chain.String()
	}
	return fmt.Sprintf("{key: %s, implementation: %v, chain: %s, rpc: %q, request timeout: %v, receipt timeout: %v, poll: %v}",
		key, c.Implementation, chain, c.RPCURL, c.RequestTimeout, c.ReceiptTimeout, c.PollInterval)
}

// GoString keeps %#v from dumping the key.
func (c Config) GoString() string {
	return "delegation.Config" + c.String()
}

// sanitize checks the provided user configurations and changes anything that's
// unreasonable or unworkable. The key is returned wrapped in a signing identity.
func (c Config) sanitize() (Config, *accounts.Key, error) {
	key, err := accounts.NewKey(c.PrivateKey)
	if err != nil {
		return Config{}, nil, err
	}
	if c.Implementation == (common.Address{}) {
		return Config{}, nil, ErrNoImplementation
	}
	logger := c.Logger
	if logger == nil {
		logger = log.Root()
	}
	if c.Chain == nil {
		logger.Info("No chain configured, using default", "chain", DefaultConfig.Chain)
		c.Chain = DefaultConfig.Chain
	}
	if c.Chain.ChainID == nil || c.Chain.ChainID.Sign() <= 0 {
		return Config{}, nil, fmt.Errorf("%w: chain %q has no valid identifier", ErrNoChain, c.Chain.Name)
	}
	if c.RPCURL == "" {
		if c.Chain.RPCURL == "" {
			return Config{}, nil, fmt.Errorf("no rpc endpoint configured for chain %v", c.Chain)
		}
		c.RPCURL = c.Chain.RPCURL
	}
	if c.RequestTimeout <= 0 {
		logger.Warn("Sanitizing invalid request timeout", "provided", c.RequestTimeout, "updated", DefaultConfig.RequestTimeout)
		c.RequestTimeout = DefaultConfig.RequestTimeout
	}
	if c.ReceiptTimeout <= 0 {
		logger.Warn("Sanitizing invalid receipt timeout", "provided", c.ReceiptTimeout, "updated", DefaultConfig.ReceiptTimeout)
		c.ReceiptTimeout = DefaultConfig.ReceiptTimeout
	}
	if c.PollInterval <= 0 {
		logger.Warn("Sanitizing invalid poll interval", "provided", c.PollInterval, "updated", DefaultConfig.PollInterval)
		c.PollInterval = DefaultConfig.PollInterval
	}
	if c.Locks == nil {
		c.Locks = defaultLocks
	}
	c.Logger = logger
	return c, key, nil
}
