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

package accounts

import "errors"

// ErrNoKey is returned when a signing identity is built without key material.
var ErrNoKey = errors.New("no private key")

// ErrInvalidKey is returned when key material cannot be decoded. The offending
// input is never echoed back.
var ErrInvalidKey = errors.New("invalid private key")

// ErrNotSerializable is returned by every encoder hook of Key: key material must
// never leave the process through JSON, text or TOML encoding.
var ErrNotSerializable = errors.New("private key is not serializable")

// ErrAuthorityMismatch is returned when a freshly signed authorization does not
// recover to the signing account.
var ErrAuthorityMismatch = errors.New("authorization authority mismatch")

// ErrNoChainID is returned when a transaction signature is requested without a
// chain identifier.
var ErrNoChainID = errors.New("no chain id specified")
