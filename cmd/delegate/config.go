// Copyright 2017 The go-ethereum Authors
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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/chamapay/go-delegate/cmd/utils"
	"github.com/chamapay/go-delegate/delegation"
	"github.com/chamapay/go-delegate/internal/flags"
	"github.com/chamapay/go-delegate/internal/version"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Description: `Export configuration values in TOML format (to stdout by default). Key material is never exported.`,
	}

	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type accountConfig struct {
	KeyFile string `toml:",omitempty"`
}

type delegateConfig struct {
	Delegation delegation.Config
	Account    accountConfig
}

func loadConfig(file string, cfg *delegateConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// defaultConfig returns the built-in defaults. The chain is copied so that
// decoding a config file never rewrites a preset.
func defaultConfig() delegateConfig {
	cfg := delegateConfig{Delegation: delegation.DefaultConfig}
	chain := *delegation.DefaultConfig.Chain
	cfg.Delegation.Chain = &chain
	return cfg
}

// makeConfig loads the configuration file, if any, and applies the command
// line flags on top.
func makeConfig(ctx *cli.Context) (delegateConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := utils.SetDelegationConfig(ctx, &cfg.Delegation); err != nil {
		return cfg, err
	}
	if ctx.IsSet(utils.KeyFileFlag.Name) {
		cfg.Account.KeyFile = ctx.String(utils.KeyFileFlag.Name)
	}
	return cfg, nil
}

// makeClient loads the key and connects a delegation client.
func makeClient(ctx *cli.Context) (*delegation.Client, delegateConfig) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	prv, err := utils.MakePrivateKey(ctx, cfg.Account.KeyFile)
	if err != nil {
		utils.Fatalf("Failed to load account key: %v", err)
	}
	cfg.Delegation.PrivateKey = prv
	client, err := delegation.Dial(ctx.Context, cfg.Delegation)
	if err != nil {
		utils.Fatalf("Failed to connect to %v: %v", cfg.Delegation.Chain, err)
	}
	return client, cfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	git, _ := version.VCS()
	fmt.Fprintf(dump, "# %s %s\n\n", clientIdentifier, version.WithCommit(git.Commit, git.Date))
	dump.Write(out)
	return nil
}
