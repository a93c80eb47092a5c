// Copyright 2015 The go-ethereum Authors
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
	"fmt"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chamapay/go-delegate/params"
	"github.com/urfave/cli/v2"
)

// PathString is custom type which is registered in the flags library which cli uses for
// argument parsing. This allows us to expand Value to an absolute path when
// the argument is parsed.
// PathString 是一个自定义类型，在解析参数时将值扩展为绝对路径。
type PathString string

func (s *PathString) String() string {
	return string(*s)
}

func (s *PathString) Set(value string) error {
	*s = PathString(ExpandPath(value))
	return nil
}

var (
	_ cli.Flag              = (*PathFlag)(nil)
	_ cli.RequiredFlag      = (*PathFlag)(nil)
	_ cli.VisibleFlag       = (*PathFlag)(nil)
	_ cli.DocGenerationFlag = (*PathFlag)(nil)
	_ cli.CategorizableFlag = (*PathFlag)(nil)
)

// PathFlag is custom cli.Flag type which expand the received string to an absolute path.
// e.g. ~/.delegate/key -> /home/username/.delegate/key
// PathFlag 是一个自定义的 CLI 标志类型，将接收到的字符串扩展为绝对路径。
type PathFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value PathString

	Aliases []string
	EnvVars []string
}

// For cli.Flag:
func (f *PathFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *PathFlag) IsSet() bool     { return f.HasBeenSet }
func (f *PathFlag) String() string  { return cli.FlagStringer(f) }

// Apply called by cli library, grabs variable from environment (if in env)
// and adds variable to flag set for parsing.
// Apply 被 CLI 库调用，从环境变量中获取值（如果存在）并将其添加到标志集中进行解析。
func (f *PathFlag) Apply(set *flag.FlagSet) error {
	for _, envVar := range f.EnvVars {
		envVar = strings.TrimSpace(envVar)
		if value, found := syscall.Getenv(envVar); found {
			f.Value.Set(value)
			f.HasBeenSet = true
			break
		}
	}
	eachName(f, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
	return nil
}

// For cli.RequiredFlag:
func (f *PathFlag) IsRequired() bool { return f.Required }

// For cli.VisibleFlag:
func (f *PathFlag) IsVisible() bool { return !f.Hidden }

// For cli.CategorizableFlag:
func (f *PathFlag) GetCategory() string { return f.Category }

// For cli.DocGenerationFlag:
func (f *PathFlag) TakesValue() bool     { return true }
func (f *PathFlag) GetUsage() string     { return f.Usage }
func (f *PathFlag) GetValue() string     { return f.Value.String() }
func (f *PathFlag) GetEnvVars() []string { return f.EnvVars }
func (f *PathFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

var (
	_ cli.Flag              = (*WeiFlag)(nil)
	_ cli.RequiredFlag      = (*WeiFlag)(nil)
	_ cli.VisibleFlag       = (*WeiFlag)(nil)
	_ cli.DocGenerationFlag = (*WeiFlag)(nil)
	_ cli.CategorizableFlag = (*WeiFlag)(nil)
)

// WeiFlag is a command line flag that accepts an amount of ether, either in
// wei or with a unit suffix (e.g. 1.5gwei, 0.01ether).
// WeiFlag 是一个命令行标志，接受以 wei 为单位或带单位后缀的以太币数量。
type WeiFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value *big.Int

	Aliases []string
	EnvVars []string
}

// For cli.Flag:

func (f *WeiFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *WeiFlag) IsSet() bool     { return f.HasBeenSet }
func (f *WeiFlag) String() string  { return cli.FlagStringer(f) }

func (f *WeiFlag) Apply(set *flag.FlagSet) error {
	value := new(weiValue)
	if f.Value != nil {
		value.v = new(big.Int).Set(f.Value)
	}
	for _, envVar := range f.EnvVars {
		envVar = strings.TrimSpace(envVar)
		if env, found := syscall.Getenv(envVar); found {
			if err := value.Set(env); err != nil {
				return fmt.Errorf("could not parse %q from environment variable %q for flag %s: %v", env, envVar, f.Name, err)
			}
			f.HasBeenSet = true
			break
		}
	}
	eachName(f, func(name string) {
		set.Var(value, name, f.Usage)
	})
	return nil
}

// For cli.RequiredFlag:

func (f *WeiFlag) IsRequired() bool { return f.Required }

// For cli.VisibleFlag:

func (f *WeiFlag) IsVisible() bool { return !f.Hidden }

// For cli.CategorizableFlag:

func (f *WeiFlag) GetCategory() string { return f.Category }

// For cli.DocGenerationFlag:

func (f *WeiFlag) TakesValue() bool { return true }
func (f *WeiFlag) GetUsage() string { return f.Usage }
func (f *WeiFlag) GetValue() string {
	if f.Value == nil {
		return ""
	}
	return f.Value.String()
}
func (f *WeiFlag) GetEnvVars() []string { return f.EnvVars }
func (f *WeiFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

// weiValue turns *big.Int into a flag.Value. A nil value means unset.
type weiValue struct {
	v *big.Int
}

func (w *weiValue) String() string {
	if w == nil || w.v == nil {
		return ""
	}
	return w.v.String()
}

func (w *weiValue) Set(s string) error {
	v, err := params.ParseValue(s)
	if err != nil {
		return err
	}
	w.v = v
	return nil
}

// Get implements flag.Getter.
func (w *weiValue) Get() interface{} {
	return w.v
}

// GlobalWei returns the value of a WeiFlag, or nil if it was neither set nor
// given a default.
func GlobalWei(ctx *cli.Context, name string) *big.Int {
	val, ok := ctx.Generic(name).(*weiValue)
	if !ok || val == nil || val.v == nil {
		return nil
	}
	return new(big.Int).Set(val.v)
}

// ExpandPath expands a file path
// 1. replace tilde with users home dir
// 2. expands embedded environment variables
// 3. cleans the path, e.g. /a/b/../c -> /a/c
// Note, it has limitations, e.g. ~someuser/tmp will not be expanded
func ExpandPath(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func eachName(f cli.Flag, fn func(string)) {
	for _, name := range f.Names() {
		name = strings.Trim(name, " ")
		fn(name)
	}
}
