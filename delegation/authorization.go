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
	"errors"
	"math/big"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// AuthorizationSigner produces EIP-7702 authorizations delegating one EOA to
// one implementation contract on one chain.
type AuthorizationSigner struct {
	key            *accounts.Key
	chainID        *uint256.Int
	chainIDBig     *big.Int
	implementation common.Address
}

// NewAuthorizationSigner creates a signer. The chain identifier must fit in
// 256 bits.
func NewAuthorizationSigner(key *accounts.Key, chainID *big.Int, implementation common.Address) (*AuthorizationSigner, error) {
	if key == nil {
		return nil, accounts.ErrNoKey
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, accounts.ErrNoChainID
	}
	id, overflow := uint256.FromBig(chainID)
	if overflow {
		return nil, errors.New("chain id exceeds 256 bits")
	}
	return &AuthorizationSigner{
		key:            key,
		chainID:        id,
		chainIDBig:     new(big.Int).Set(chainID),
		implementation: implementation,
	}, nil
}

// Sign returns a signed authorization valid only while the EOA's nonce equals
// nonce. The result is meant for exactly one transaction.
func (s *AuthorizationSigner) Sign(nonce uint64) (*types.SetCodeAuthorization, error) {
	auth, err := s.key.SignAuthorization(types.SetCodeAuthorization{
		ChainID: *s.chainID,
		Address: s.implementation,
		Nonce:   nonce,
	})
	if err != nil {
		return nil, &AuthorizationSigningError{
			Address:        s.key.Address(),
			Implementation: s.implementation,
			ChainID:        s.chainIDBig,
			Nonce:          nonce,
			Err:            err,
		}
	}
	authorizationMeter.Mark(1)
	return &auth, nil
}
