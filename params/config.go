// Copyright 2016 The go-ethereum Authors
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

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Chain is the identifier and metadata of the single chain a delegation client
// operates on.
// Chain 是委托客户端所操作的单条链的标识与元数据。
type Chain struct {
	Name     string   // short lowercase name, used by the CLI
	ChainID  *big.Int // EIP-155 chain identifier, also bound into every authorization
	RPCURL   string   // public JSON-RPC endpoint used when none is configured
	Explorer string   // block explorer base URL, informational only
}

// String implements fmt.Stringer.
func (c *Chain) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%v)", c.Name, c.ChainID)
}

// TxURL returns the explorer link of a transaction, or the empty string if the
// chain has no known explorer.
func (c *Chain) TxURL(hash string) string {
	if c == nil || c.Explorer == "" {
		return ""
	}
	return strings.TrimSuffix(c.Explorer, "/") + "/tx/" + hash
}

// MarshalText encodes the chain as its preset name.
func (c *Chain) MarshalText() ([]byte, error) {
	if c == nil || c.Name == "" {
		return nil, errors.New("unnamed chain")
	}
	return []byte(c.Name), nil
}

// UnmarshalText resolves a preset by name or by decimal chain id.
func (c *Chain) UnmarshalText(input []byte) error {
	preset, err := ChainByName(string(input))
	if err != nil {
		id, ok := new(big.Int).SetString(strings.TrimSpace(string(input)), 10)
		if !ok {
			return err
		}
		if preset, ok = ChainByID(id); !ok {
			return err
		}
	}
	*c = *preset
	c.ChainID = new(big.Int).Set(preset.ChainID)
	return nil
}

var (
	// MainnetChain is the Ethereum main network.
	MainnetChain = &Chain{
		Name:     "mainnet",
		ChainID:  big.NewInt(1),
		RPCURL:   "https://ethereum-rpc.publicnode.com",
		Explorer: "https://etherscan.io",
	}

	// SepoliaChain is the Sepolia test network.
	SepoliaChain = &Chain{
		Name:     "sepolia",
		ChainID:  big.NewInt(11155111),
		RPCURL:   "https://ethereum-sepolia-rpc.publicnode.com",
		Explorer: "https://sepolia.etherscan.io",
	}

	// BaseChain is the Base main network, the production chain of the savings
	// group wallet.
	// BaseChain 是 Base 主网，即储蓄小组钱包的生产链。
	BaseChain = &Chain{
		Name:     "base",
		ChainID:  big.NewInt(8453),
		RPCURL:   "https://mainnet.base.org",
		Explorer: "https://basescan.org",
	}

	// BaseSepoliaChain is the Base test network.
	BaseSepoliaChain = &Chain{
		Name:     "base-sepolia",
		ChainID:  big.NewInt(84532),
		RPCURL:   "https://sepolia.base.org",
		Explorer: "https://sepolia.basescan.org",
	}

	// DefaultChain is used when a configuration names no chain.
	DefaultChain = BaseChain
)

// KnownChains maps the CLI name of every preset to its definition.
var KnownChains = map[string]*Chain{
	MainnetChain.Name:     MainnetChain,
	SepoliaChain.Name:     SepoliaChain,
	BaseChain.Name:        BaseChain,
	BaseSepoliaChain.Name: BaseSepoliaChain,
}

// ChainByName looks up a preset by name, case-insensitively.
func ChainByName(name string) (*Chain, error) {
	if c, ok := KnownChains[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown chain %q (known: %s)", name, strings.Join(ChainNames(), ", "))
}

// ChainByID looks up a preset by its chain identifier.
func ChainByID(id *big.Int) (*Chain, bool) {
	if id == nil {
		return nil, false
	}
	for _, c := range KnownChains {
		if c.ChainID.Cmp(id) == 0 {
			return c, true
		}
	}
	return nil, false
}

// ChainNames returns the sorted names of all presets.
func ChainNames() []string {
	names := make([]string, 0, len(KnownChains))
	for name := range KnownChains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
