// Copyright 2014 The go-ethereum Authors
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

// delegate is a command-line client for EIP-7702 delegated accounts.
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/chamapay/go-delegate/cmd/utils"
	"github.com/chamapay/go-delegate/internal/debug"
	"github.com/chamapay/go-delegate/internal/flags"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "delegate" // Client identifier used in the config dump header
)

var app = flags.NewApp("the EIP-7702 delegation command line interface")

func init() {
	app.Commands = []*cli.Command{
		// see accountcmd.go
		addressCommand,
		statusCommand,
		authorizeCommand,
		revokeCommand,
		// see txcmd.go
		sendCommand,
		waitCommand,
		calldataCommand,
		// see config.go
		dumpConfigCommand,
	}
	app.Flags = slices.Concat(
		[]cli.Flag{configFileFlag, utils.KeyFileFlag, utils.PasswordFileFlag, utils.PrivateKeyFlag, utils.ImplementationFlag},
		utils.ChainFlags,
		debug.Flags,
	)
	app.Before = func(ctx *cli.Context) error {
		if err := debug.Setup(ctx); err != nil {
			return err
		}
		return utils.CheckKeyFlags(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
