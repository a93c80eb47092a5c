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

package debug

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func captureTerminal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLog := terminalOutput, log.Root()
	terminalOutput = &buf
	t.Cleanup(func() {
		Exit()
		terminalOutput = prevOut
		log.SetDefault(prevLog)
	})
	return &buf
}

func TestSetupJSONFile(t *testing.T) {
	buf := captureTerminal(t)
	file := filepath.Join(t.TempDir(), "logs", "delegate.log")

	require.NoError(t, Setup(newContext(t, "--log.format", "json", "--log.file", file)))
	log.Info("Submitted transaction", "nonce", 3)
	Exit()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	assert.Equal(t, "Submitted transaction", entry["msg"])
	assert.Equal(t, float64(3), entry["nonce"])
	assert.Contains(t, buf.String(), "Submitted transaction")
}

func TestSetupVerbosity(t *testing.T) {
	buf := captureTerminal(t)

	require.NoError(t, Setup(newContext(t, "--verbosity", "2", "--log.format", "logfmt")))
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupUnknownFormat(t *testing.T) {
	captureTerminal(t)
	assert.ErrorContains(t, Setup(newContext(t, "--log.format", "xml")), "unknown log format")
}
