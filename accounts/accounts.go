// Copyright 2017 The go-ethereum Authors
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

// Package accounts wraps raw key material into the signing identity used by the
// delegation client.
package accounts

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const redacted = "<redacted>"

// Key is an externally-owned account backed by an in-memory secp256k1 key. It
// produces both EIP-7702 authorization signatures and transaction signatures.
//
// The key material is unexported and every formatting and encoding hook is
// overridden, so a Key can be passed to loggers and fmt verbs safely.
// Key 是由内存中 secp256k1 私钥支持的外部账户（EOA），可同时生成 EIP-7702 授权签名和交易签名。
type Key struct {
	prv     *ecdsa.PrivateKey
	address common.Address
}

// NewKey wraps a private key.
func NewKey(prv *ecdsa.PrivateKey) (*Key, error) {
	if prv == nil || prv.D == nil {
		return nil, ErrNoKey
	}
	return &Key{prv: prv, address: crypto.PubkeyToAddress(prv.PublicKey)}, nil
}

// HexToKey decodes a hex encoded private key, with or without 0x prefix.
func HexToKey(hexkey string) (*Key, error) {
	hexkey = strings.TrimSpace(hexkey)
	if hexkey == "" {
		return nil, ErrNoKey
	}
	prv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(hexkey, "0x"), "0X"))
	if err != nil {
		return nil, ErrInvalidKey
	}
	return NewKey(prv)
}

// LoadKey reads a hex encoded private key from a file.
func LoadKey(file string) (*Key, error) {
	prv, err := crypto.LoadECDSA(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKey, file, err)
	}
	return NewKey(prv)
}

// Address returns the account address derived from the key.
func (k *Key) Address() common.Address {
	return k.address
}

// SignAuthorization signs an EIP-7702 authorization tuple. The signature covers
// keccak256(0x05 || rlp([chain_id, address, nonce])), which is a delegation
// declaration and not a transaction. The recovered authority is checked against
// the key's address before the tuple is handed out.
// SignAuthorization 对 EIP-7702 授权元组进行签名（委托声明，而非交易）。
func (k *Key) SignAuthorization(auth types.SetCodeAuthorization) (types.SetCodeAuthorization, error) {
	signed, err := types.SignSetCode(k.prv, auth)
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	authority, err := signed.Authority()
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	if authority != k.address {
		return types.SetCodeAuthorization{}, fmt.Errorf("%w: recovered %v, want %v", ErrAuthorityMismatch, authority, k.address)
	}
	return signed, nil
}

// SignTx signs a transaction with the latest signer of the given chain, which
// accepts every typed transaction including EIP-7702 set-code transactions.
func (k *Key) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil {
		return nil, ErrNoChainID
	}
	return types.SignTx(tx, types.NewPragueSigner(chainID), k.prv)
}

// String implements fmt.Stringer, exposing the address only.
func (k *Key) String() string {
	if k == nil {
		return "key(nil)"
	}
	return fmt.Sprintf("key(%v)", k.address)
}

// GoString implements fmt.GoStringer so %#v cannot dump the key either.
func (k *Key) GoString() string {
	return k.String()
}

// Format implements fmt.Formatter. Every verb renders the redacted form.
func (k *Key) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, k.String())
}

// LogValue implements slog.LogValuer.
func (k *Key) LogValue() slog.Value {
	if k == nil {
		return slog.StringValue(redacted)
	}
	return slog.GroupValue(slog.String("address", k.address.Hex()), slog.String("key", redacted))
}

// MarshalJSON refuses to encode key material.
func (k *Key) MarshalJSON() ([]byte, error) {
	return nil, ErrNotSerializable
}

// MarshalText refuses to encode key material.
func (k *Key) MarshalText() ([]byte, error) {
	return nil, ErrNotSerializable
}
