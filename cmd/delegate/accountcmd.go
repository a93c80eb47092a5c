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
	"encoding/json"
	"fmt"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/cmd/utils"
	"github.com/urfave/cli/v2"
)

var (
	addressCommand = &cli.Command{
		Action: printAddress,
		Name:   "address",
		Usage:  "Print the address of the configured key",
		Description: `
Print the EOA address derived from --keyfile or $DELEGATE_PRIVATE_KEY. Does not
contact the network.`,
	}
	statusCommand = &cli.Command{
		Action: printStatus,
		Name:   "status",
		Usage:  "Show whether the account delegates its code",
	}
	authorizeCommand = &cli.Command{
		Action: signAuthorization,
		Name:   "authorize",
		Usage:  "Sign an authorization for a sponsor to submit",
		Description: `
Sign an EIP-7702 authorization delegating the account to the configured
implementation, bound to the account's current nonce, and print it as JSON.
Nothing is broadcast. The authorization becomes invalid as soon as the account
sends a transaction of its own.`,
	}
	revokeCommand = &cli.Command{
		Action: revokeAuthorization,
		Name:   "revoke",
		Usage:  "Revoke the delegation (not supported yet)",
	}
)

func printAddress(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	prv, err := utils.MakePrivateKey(ctx, cfg.Account.KeyFile)
	if err != nil {
		return err
	}
	key, err := accounts.NewKey(prv)
	if err != nil {
		return err
	}
	fmt.Println(key.Address().Hex())
	return nil
}

func printStatus(ctx *cli.Context) error {
	client, cfg := makeClient(ctx)
	defer client.Close()

	target, delegated, err := client.Delegation(ctx.Context)
	if err != nil {
		return err
	}
	fmt.Printf("Address:        %v\n", client.Address())
	fmt.Printf("Chain:          %v\n", cfg.Delegation.Chain)
	fmt.Printf("Implementation: %v\n", client.ImplementationAddress())
	fmt.Printf("Delegated:      %t\n", delegated)
	if delegated {
		fmt.Printf("Delegated to:   %v\n", target)
		if target != client.ImplementationAddress() {
			fmt.Println("Warning: the account delegates to a different contract")
		}
	}
	return nil
}

func signAuthorization(ctx *cli.Context) error {
	client, _ := makeClient(ctx)
	defer client.Close()

	auth, err := client.SignAuthorization(ctx.Context)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func revokeAuthorization(ctx *cli.Context) error {
	client, _ := makeClient(ctx)
	defer client.Close()

	_, err := client.RevokeAuthorization(ctx.Context)
	return err
}
