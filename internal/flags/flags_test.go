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

package flags

import (
	"flag"
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"":                    "",
		"/home/someuser/tmp":  "/home/someuser/tmp",
		"~/tmp":               home + "/tmp",
		"~thisOtherUser/b/":   "~thisOtherUser/b",
		"$DDDXXX/a/b":         "/tmp/a/b",
		"/a/b/":               "/a/b",
		"/a/b/../c/./key.hex": "/a/c/key.hex",
	}
	os.Setenv("DDDXXX", "/tmp")
	defer os.Unsetenv("DDDXXX")
	for test, expected := range tests {
		assert.Equal(t, expected, ExpandPath(test), "input %q", test)
	}
}

func TestWeiValue(t *testing.T) {
	var v weiValue
	assert.Equal(t, "", v.String())
	require.NoError(t, v.Set("1.5gwei"))
	assert.Equal(t, big.NewInt(1_500_000_000), v.Get())
	assert.Error(t, v.Set("1.5wei"))
	assert.Error(t, v.Set("-1"))
}

func TestWeiFlag(t *testing.T) {
	fee := &WeiFlag{Name: "maxfee"}
	tip := &WeiFlag{Name: "tip", Value: big.NewInt(7)}
	unset := &WeiFlag{Name: "value"}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{fee, tip, unset} {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--maxfee", "2gwei"}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	assert.Equal(t, big.NewInt(2_000_000_000), GlobalWei(ctx, "maxfee"))
	assert.Equal(t, big.NewInt(7), GlobalWei(ctx, "tip"))
	assert.Nil(t, GlobalWei(ctx, "value"))
}
