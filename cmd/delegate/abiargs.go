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
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// parseCallArgs converts command line arguments into the Go values the ABI
// encoder expects for the inputs of method.
func parseCallArgs(abiJSON, method string, args []string) ([]interface{}, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not found in abi", method)
	}
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("method %s takes %d arguments, have %d", m.Sig, len(m.Inputs), len(args))
	}
	values := make([]interface{}, len(args))
	for i, input := range m.Inputs {
		v, err := parseArg(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %v", i, input.Type, input.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

func parseArg(typ abi.Type, arg string) (interface{}, error) {
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(arg) {
			return nil, fmt.Errorf("%q is not a hex address", arg)
		}
		return common.HexToAddress(arg), nil

	case abi.BoolTy:
		return strconv.ParseBool(arg)

	case abi.StringTy:
		return arg, nil

	case abi.BytesTy:
		return hexutil.Decode(arg)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(arg)
		if err != nil {
			return nil, err
		}
		if len(b) != typ.Size {
			return nil, fmt.Errorf("want %d bytes, have %d", typ.Size, len(b))
		}
		v := reflect.New(typ.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil

	case abi.UintTy, abi.IntTy:
		n, ok := math.ParseBig256(arg)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", arg)
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for %s", typ)
		}
		if typ.GetType() == bigIntType {
			return n, nil
		}
		return sizedInt(typ, n)
	}
	return nil, fmt.Errorf("unsupported argument type %s", typ)
}

// sizedInt converts n to the fixed width Go integer type used for typ.
func sizedInt(typ abi.Type, n *big.Int) (interface{}, error) {
	v := reflect.New(typ.GetType()).Elem()
	if typ.T == abi.UintTy {
		if !n.IsUint64() || v.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("%v overflows %s", n, typ)
		}
		v.SetUint(n.Uint64())
	} else {
		if !n.IsInt64() || v.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("%v overflows %s", n, typ)
		}
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}
