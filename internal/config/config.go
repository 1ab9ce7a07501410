/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config binds the CLI's output-encryption and naming knobs onto a
// viper instance, so they can come from a flag or an environment variable
// (ABTOOL_ prefix), with a flag that was set explicitly always winning. No
// config file is read.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nabbar/abtool/envelope"
)

const envPrefix = "ABTOOL"

// EnvLogLevel is the environment variable internal/obslog's caller reads to
// pick a logrus level; it follows the same ABTOOL_ prefix as every other
// binding here even though it is read directly rather than through viper,
// since the root logger must exist before any subcommand's flags are parsed.
const EnvLogLevel = envPrefix + "_LOG_LEVEL"

// Options is the decoded view of every viper key this package binds. Core
// packages never see *viper.Viper directly — they take an
// envelope.WriteOptions built from this struct, keeping internal/config the
// only place that knows about flags, env vars, or config files.
type Options struct {
	OutputSaltBytes  int    `mapstructure:"output-salt-bytes"`
	OutputIterations int    `mapstructure:"output-iterations"`
	SplitPrefix      string `mapstructure:"prefix"`
}

// New binds flags already registered on fs onto a fresh viper instance with
// ABTOOL_ environment overlay, and returns the decoded Options.
func New(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output-salt-bytes", envelope.DefaultSaltBytes)
	v.SetDefault("output-iterations", envelope.DefaultIterations)
	v.SetDefault("prefix", "backup")

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}

	o := &Options{}
	if err := v.Unmarshal(o); err != nil {
		return nil, err
	}
	return o, nil
}

// WriteOptions adapts the decoded salt/iteration knobs into the shape
// envelope.OpenWrite expects.
func (o *Options) WriteOptions() envelope.WriteOptions {
	return envelope.WriteOptions{
		SaltBytes:  o.OutputSaltBytes,
		Iterations: o.OutputIterations,
	}
}
