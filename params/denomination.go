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

package params

import (
	"fmt"
	"math/big"
	"strings"
)

// These are the multipliers for ether denominations.
// Example: To get the wei value of an amount in 'gwei', use
//
//	new(big.Int).Mul(value, big.NewInt(params.GWei))
//
// 这些是以太币单位的乘数。
const (
	Wei   = 1
	GWei  = 1e9
	Ether = 1e18
)

var units = []struct {
	suffix string
	factor *big.Int
}{
	{"ether", big.NewInt(Ether)},
	{"gwei", big.NewInt(GWei)},
	{"wei", big.NewInt(Wei)},
}

// ParseValue parses an amount such as "1000", "1.5gwei" or "0.01ether" into
// wei. Amounts without a unit are wei. Fractions of a wei are rejected.
func ParseValue(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return new(big.Int), nil
	}
	factor := big.NewInt(Wei)
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s, factor = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.factor
			break
		}
	}
	amount, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	amount.Mul(amount, new(big.Rat).SetInt(factor))
	if !amount.IsInt() {
		return nil, fmt.Errorf("amount %q is not a whole number of wei", s)
	}
	return new(big.Int).Set(amount.Num()), nil
}

// FormatGwei renders a wei amount in gwei with up to nine decimals.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0 gwei"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(GWei))
	s := strings.TrimRight(strings.TrimRight(r.FloatString(9), "0"), ".")
	return s + " gwei"
}
