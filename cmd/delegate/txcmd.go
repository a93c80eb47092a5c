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
	"errors"
	"fmt"
	"os"

	"github.com/chamapay/go-delegate/cmd/utils"
	"github.com/chamapay/go-delegate/delegation"
	"github.com/chamapay/go-delegate/internal/flags"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

var (
	abiFileFlag = &flags.PathFlag{
		Name:     "abi",
		Usage:    "JSON ABI file of the called contract",
		Required: true,
		Category: flags.TransactionCategory,
	}

	sendCommand = &cli.Command{
		Action: sendTransaction,
		Name:   "send",
		Usage:  "Send a transaction from the delegated account",
		Flags:  append(append([]cli.Flag{}, utils.TxFlags...), utils.WaitFlag),
		Description: `
Send a transaction executed through the account's delegated code. If the
account is not delegated yet, the transaction carries the authorization that
delegates it.`,
	}
	waitCommand = &cli.Command{
		Action:    waitTransaction,
		Name:      "wait",
		Usage:     "Wait for a transaction receipt",
		ArgsUsage: "<txhash>",
	}
	calldataCommand = &cli.Command{
		Action:    encodeCallData,
		Name:      "calldata",
		Usage:     "Encode a contract call for --data",
		ArgsUsage: "<method> [args...]",
		Flags:     []cli.Flag{abiFileFlag},
	}
)

func sendTransaction(ctx *cli.Context) error {
	req, err := utils.MakeTxRequest(ctx)
	if err != nil {
		return err
	}
	client, cfg := makeClient(ctx)
	defer client.Close()

	var res *delegation.Result
	if ctx.Bool(utils.WaitFlag.Name) {
		res, err = client.Transact(ctx.Context, req)
	} else {
		res, err = client.Send(ctx.Context, req)
	}
	if err != nil {
		var timeout *delegation.ReceiptTimeoutError
		if errors.As(err, &timeout) {
			return fmt.Errorf("%v\nThe transaction may still be mined, check with: %s wait %v", err, clientIdentifier, timeout.Hash)
		}
		return err
	}
	printResult(cfg.Delegation.Chain, res)
	return nil
}

func printResult(chain *params.Chain, res *delegation.Result) {
	fmt.Printf("Transaction:    %v\n", res.Hash)
	if url := chain.TxURL(res.Hash.Hex()); url != "" {
		fmt.Printf("Explorer:       %s\n", url)
	}
	fmt.Printf("Nonce:          %d\n", res.Nonce)
	fmt.Printf("Gas limit:      %d\n", res.Gas)
	if res.Tx != nil {
		fmt.Printf("Max fee:        %s\n", params.FormatGwei(res.Tx.GasFeeCap()))
	}
	if res.Authorization != nil {
		fmt.Printf("Delegating to:  %v (authorization nonce %d)\n", res.Authorization.Address, res.Authorization.Nonce)
	}
	if res.Receipt != nil {
		fmt.Printf("Block:          %v\n", res.Receipt.BlockNumber)
		fmt.Printf("Status:         %d\n", res.Receipt.Status)
		fmt.Printf("Gas used:       %d\n", res.Receipt.GasUsed)
	}
}

func waitTransaction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one transaction hash")
	}
	raw, err := hexutil.Decode(ctx.Args().First())
	if err != nil || len(raw) != common.HashLength {
		return fmt.Errorf("invalid transaction hash %q", ctx.Args().First())
	}
	client, _ := makeClient(ctx)
	defer client.Close()

	receipt, err := client.WaitForTransaction(ctx.Context, common.BytesToHash(raw))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func encodeCallData(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing method name")
	}
	abiJSON, err := os.ReadFile(ctx.String(abiFileFlag.Name))
	if err != nil {
		return err
	}
	method := ctx.Args().First()
	args, err := parseCallArgs(string(abiJSON), method, ctx.Args().Tail())
	if err != nil {
		return err
	}
	data, err := delegation.EncodeCallData(string(abiJSON), method, args...)
	if err != nil {
		return err
	}
	fmt.Println(hexutil.Encode(data))
	return nil
}
