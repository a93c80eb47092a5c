// Copyright 2015 The go-ethereum Authors
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

// Package utils contains internal helper functions for the delegate command.
package utils

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chamapay/go-delegate/accounts"
	"github.com/chamapay/go-delegate/delegation"
	"github.com/chamapay/go-delegate/internal/flags"
	"github.com/chamapay/go-delegate/params"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// PrivateKeyEnv names the environment variable holding the hex encoded EOA
// key when no key file is given.
const PrivateKeyEnv = "DELEGATE_PRIVATE_KEY"

// PasswordEnv names the environment variable holding the passphrase of an
// encrypted key file.
const PasswordEnv = "DELEGATE_PASSWORD"

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Chain settings
	ChainFlag = &cli.StringFlag{
		Name:     "chain",
		Usage:    fmt.Sprintf("Chain to operate on (%s)", strings.Join(params.ChainNames(), ", ")),
		Value:    params.DefaultChain.Name,
		Category: flags.ChainCategory,
	}
	RPCURLFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "JSON-RPC endpoint (default: the chain's public endpoint)",
		EnvVars:  []string{"DELEGATE_RPC_URL"},
		Category: flags.ChainCategory,
	}
	RequestTimeoutFlag = &cli.DurationFlag{
		Name:     "rpc.timeout",
		Usage:    "Timeout of a single RPC request",
		Value:    delegation.DefaultConfig.RequestTimeout,
		Category: flags.ChainCategory,
	}
	ReceiptTimeoutFlag = &cli.DurationFlag{
		Name:     "receipt.timeout",
		Usage:    "How long to wait for a transaction receipt",
		Value:    delegation.DefaultConfig.ReceiptTimeout,
		Category: flags.ChainCategory,
	}
	PollIntervalFlag = &cli.DurationFlag{
		Name:     "receipt.poll",
		Usage:    "Interval between two receipt lookups",
		Value:    delegation.DefaultConfig.PollInterval,
		Category: flags.ChainCategory,
	}

	// Account settings
	KeyFileFlag = &flags.PathFlag{
		Name:     "keyfile",
		Usage:    "File holding the hex encoded EOA private key (default: $" + PrivateKeyEnv + ")",
		Category: flags.AccountCategory,
	}
	PasswordFileFlag = &flags.PathFlag{
		Name:     "password",
		Usage:    "File holding the passphrase of an encrypted key file (default: $" + PasswordEnv + ")",
		Category: flags.AccountCategory,
	}
	// Refused, see CheckKeyFlags
	PrivateKeyFlag = &cli.StringFlag{
		Name:     "privatekey",
		Usage:    "Not accepted, keys on the command line leak into shell history (use --keyfile)",
		Hidden:   true,
		Category: flags.AccountCategory,
	}
	ImplementationFlag = &cli.StringFlag{
		Name:     "implementation",
		Usage:    "Address of the contract the EOA delegates to",
		Category: flags.AccountCategory,
	}

	// Transaction settings
	ToFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address of the transaction",
		Category: flags.TransactionCategory,
	}
	DataFlag = &cli.StringFlag{
		Name:     "data",
		Usage:    "Hex encoded call data",
		Category: flags.TransactionCategory,
	}
	ValueFlag = &flags.WeiFlag{
		Name:     "value",
		Usage:    "Amount to transfer, in wei or with a unit (e.g. 0.01ether)",
		Category: flags.TransactionCategory,
	}
	GasFlag = &cli.Uint64Flag{
		Name:     "gas",
		Usage:    "Gas limit (default: estimated)",
		Category: flags.TransactionCategory,
	}
	MaxFeeFlag = &flags.WeiFlag{
		Name:     "maxfee",
		Usage:    "Maximum fee per gas (default: the node's gas price)",
		Category: flags.TransactionCategory,
	}
	TipFlag = &flags.WeiFlag{
		Name:     "tip",
		Usage:    "Maximum priority fee per gas (default: a tenth of the node's gas price)",
		Category: flags.TransactionCategory,
	}
	WaitFlag = &cli.BoolFlag{
		Name:     "wait",
		Usage:    "Wait for the transaction receipt",
		Category: flags.TransactionCategory,
	}
)

// ChainFlags are the flags needed to reach a chain.
var ChainFlags = []cli.Flag{
	ChainFlag,
	RPCURLFlag,
	RequestTimeoutFlag,
	ReceiptTimeoutFlag,
	PollIntervalFlag,
}

// TxFlags describe a transaction request.
var TxFlags = []cli.Flag{
	ToFlag,
	DataFlag,
	ValueFlag,
	GasFlag,
	MaxFeeFlag,
	TipFlag,
}

// SetDelegationConfig applies the flags that were set on the command line to
// cfg, leaving the values from the config file otherwise.
func SetDelegationConfig(ctx *cli.Context, cfg *delegation.Config) error {
	if ctx.IsSet(ChainFlag.Name) || cfg.Chain == nil {
		chain, err := params.ChainByName(ctx.String(ChainFlag.Name))
		if err != nil {
			return err
		}
		cfg.Chain = chain
	}
	if ctx.IsSet(RPCURLFlag.Name) {
		cfg.RPCURL = ctx.String(RPCURLFlag.Name)
	}
	if ctx.IsSet(ImplementationFlag.Name) {
		addr, err := ParseAddress(ctx.String(ImplementationFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid --%s: %v", ImplementationFlag.Name, err)
		}
		cfg.Implementation = addr
	}
	if ctx.IsSet(RequestTimeoutFlag.Name) {
		cfg.RequestTimeout = ctx.Duration(RequestTimeoutFlag.Name)
	}
	if ctx.IsSet(ReceiptTimeoutFlag.Name) {
		cfg.ReceiptTimeout = ctx.Duration(ReceiptTimeoutFlag.Name)
	}
	if ctx.IsSet(PollIntervalFlag.Name) {
		cfg.PollInterval = ctx.Duration(PollIntervalFlag.Name)
	}
	return nil
}

// MakePrivateKey loads the EOA key from the key file, or from the environment
// if no file is given. The key file holds either a hex encoded key or an
// encrypted keystore JSON blob. Key material never appears in the returned
// errors.
func MakePrivateKey(ctx *cli.Context, keyfile string) (*ecdsa.PrivateKey, error) {
	if ctx.IsSet(KeyFileFlag.Name) {
		keyfile = ctx.String(KeyFileFlag.Name)
	}
	if keyfile != "" {
		return loadKeyFile(ctx, flags.ExpandPath(keyfile))
	}
	hexkey := strings.TrimSpace(os.Getenv(PrivateKeyEnv))
	if hexkey == "" {
		return nil, fmt.Errorf("%w: use --%s or $%s", accounts.ErrNoKey, KeyFileFlag.Name, PrivateKeyEnv)
	}
	prv, err := crypto.HexToECDSA(strings.TrimPrefix(hexkey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w in $%s", accounts.ErrInvalidKey, PrivateKeyEnv)
	}
	return prv, nil
}

func loadKeyFile(ctx *cli.Context, path string) (*ecdsa.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", accounts.ErrInvalidKey, err)
	}
	// Keystore files are JSON objects, plain key files are hex.
	if trimmed := bytes.TrimSpace(content); len(trimmed) > 0 && trimmed[0] == '{' {
		password, err := makePassword(ctx)
		if err != nil {
			return nil, err
		}
		key, err := keystore.DecryptKey(trimmed, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", accounts.ErrInvalidKey, path, err)
		}
		return key.PrivateKey, nil
	}
	prv, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", accounts.ErrInvalidKey, path, err)
	}
	return prv, nil
}

// makePassword reads the keystore passphrase from the password file, falling
// back to the environment. Only the first line of the file is used.
func makePassword(ctx *cli.Context) (string, error) {
	if !ctx.IsSet(PasswordFileFlag.Name) {
		return os.Getenv(PasswordEnv), nil
	}
	text, err := os.ReadFile(flags.ExpandPath(ctx.String(PasswordFileFlag.Name)))
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %v", err)
	}
	lines := strings.Split(string(text), "\n")
	return strings.TrimRight(lines[0], "\r"), nil
}

// MakeTxRequest assembles a transaction request from the transaction flags.
func MakeTxRequest(ctx *cli.Context) (*delegation.TxRequest, error) {
	if !ctx.IsSet(ToFlag.Name) {
		return nil, fmt.Errorf("missing --%s", ToFlag.Name)
	}
	to, err := ParseAddress(ctx.String(ToFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %v", ToFlag.Name, err)
	}
	req := &delegation.TxRequest{
		To:                   &to,
		Value:                flags.GlobalWei(ctx, ValueFlag.Name),
		Gas:                  ctx.Uint64(GasFlag.Name),
		MaxFeePerGas:         flags.GlobalWei(ctx, MaxFeeFlag.Name),
		MaxPriorityFeePerGas: flags.GlobalWei(ctx, TipFlag.Name),
	}
	if data := ctx.String(DataFlag.Name); data != "" {
		if req.Data, err = hexutil.Decode(data); err != nil {
			return nil, fmt.Errorf("invalid --%s: %v", DataFlag.Name, err)
		}
	}
	return req, nil
}

// ParseAddress parses a hex address, rejecting anything that is not exactly
// 20 bytes.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, errors.New("zero address")
	}
	return addr, nil
}

// CheckKeyFlags refuses private keys given on the command line.
func CheckKeyFlags(ctx *cli.Context) error {
	if ctx.IsSet(PrivateKeyFlag.Name) {
		log.Error("Private keys on the command line leak into shell history and process listings")
		return fmt.Errorf("--%s is not accepted, use --%s or $%s", PrivateKeyFlag.Name, KeyFileFlag.Name, PrivateKeyEnv)
	}
	return nil
}
