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
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

var testImpl = common.HexToAddress("0x63c0c19a282a1b52b07dd5a65b58948a07dae32b")

const testConfigFile = `
[Delegation]
Implementation = "0x63c0c19a282a1b52b07dd5a65b58948a07dae32b"
Chain = "base-sepolia"
RPCURL = "http://localhost:8545"
ReceiptTimeout = 30000000000

[Account]
KeyFile = "/tmp/delegate.key"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))
	return file
}

func newAppContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(app, set, nil)
}

func TestLoadConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, loadConfig(writeConfig(t, testConfigFile), &cfg))

	assert.Equal(t, testImpl, cfg.Delegation.Implementation)
	assert.Equal(t, "base-sepolia", cfg.Delegation.Chain.Name)
	assert.Equal(t, params.BaseSepoliaChain.ChainID, cfg.Delegation.Chain.ChainID)
	assert.Equal(t, "http://localhost:8545", cfg.Delegation.RPCURL)
	assert.Equal(t, 30*time.Second, cfg.Delegation.ReceiptTimeout)
	assert.Equal(t, params.DefaultPollInterval, cfg.Delegation.PollInterval)
	assert.Equal(t, "/tmp/delegate.key", cfg.Account.KeyFile)

	// Presets are never modified by decoding.
	assert.Equal(t, "base", params.BaseChain.Name)
	assert.Equal(t, "base", params.DefaultChain.Name)
}

func TestLoadConfigRejectsKeyMaterial(t *testing.T) {
	cfg := defaultConfig()
	err := loadConfig(writeConfig(t, "[Delegation]\nPrivateKey = \"b71c71a6\"\n"), &cfg)
	assert.ErrorContains(t, err, "PrivateKey")

	err = loadConfig(writeConfig(t, "[Delegation]\nChain = \"atlantis\"\n"), &cfg)
	assert.Error(t, err)
}

func TestMakeConfigFlagsOverrideFile(t *testing.T) {
	file := writeConfig(t, testConfigFile)
	ctx := newAppContext(t,
		"--config", file,
		"--chain", "sepolia",
		"--receipt.poll", "250ms",
		"--keyfile", "/var/lib/delegate/key",
	)
	cfg, err := makeConfig(ctx)
	require.NoError(t, err)

	assert.Equal(t, params.SepoliaChain, cfg.Delegation.Chain)
	assert.Equal(t, "http://localhost:8545", cfg.Delegation.RPCURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Delegation.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Delegation.ReceiptTimeout)
	assert.Equal(t, "/var/lib/delegate/key", cfg.Account.KeyFile)
	assert.Equal(t, testImpl, cfg.Delegation.Implementation)
}

func TestMakeConfigDefaults(t *testing.T) {
	cfg, err := makeConfig(newAppContext(t))
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Delegation.Chain.Name)
	assert.Equal(t, common.Address{}, cfg.Delegation.Implementation)

	_, err = makeConfig(newAppContext(t, "--implementation", "0x1234"))
	assert.Error(t, err)
}

func TestDumpConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Delegation.Implementation = testImpl
	cfg.Delegation.RPCURL = "https://rpc.example.org"

	out, err := tomlSettings.Marshal(&cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `Chain = "base"`)
	assert.NotContains(t, string(out), "PrivateKey")

	loaded := defaultConfig()
	require.NoError(t, loadConfig(writeConfig(t, string(out)), &loaded))
	assert.Equal(t, cfg.Delegation.Implementation, loaded.Delegation.Implementation)
	assert.Equal(t, cfg.Delegation.RPCURL, loaded.Delegation.RPCURL)
	assert.Equal(t, cfg.Delegation.Chain.Name, loaded.Delegation.Chain.Name)
	assert.Equal(t, cfg.Delegation.RequestTimeout, loaded.Delegation.RequestTimeout)
	assert.Equal(t, cfg.Delegation.ReceiptTimeout, loaded.Delegation.ReceiptTimeout)
	assert.Equal(t, cfg.Delegation.PollInterval, loaded.Delegation.PollInterval)
}
