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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/nabbar/abtool/envelope"
	"github.com/nabbar/abtool/internal/config"
	"github.com/nabbar/abtool/splitter"
	"github.com/nabbar/abtool/tarstream"
)

func newSplitCommand() *cobra.Command {
	f := &ioFlags{}

	cmd := &cobra.Command{
		Use:     "split <archive>",
		Aliases: []string{"ab2many"},
		Short:   "Split an archive into one output per Android app package",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, f, args[0])
		},
	}

	addInputPassphraseFlags(cmd.Flags(), f)
	addOutputPassphraseFlags(cmd.Flags(), f)
	cmd.Flags().String("prefix", "backup", "filename prefix for each split output")
	return cmd
}

// splitPrefix resolves --prefix through internal/config, so
// ABTOOL_PREFIX can override the default without the flag being passed.
func splitPrefix(cmd *cobra.Command) (string, error) {
	o, err := config.New(cmd.Flags())
	if err != nil {
		return "", ErrorBadArgs.Error(err)
	}
	return o.SplitPrefix, nil
}

func runSplit(cmd *cobra.Command, f *ioFlags, in string) error {
	log := runLogger(cmd, "split")
	ctx, cancel := contextFor(cmd)
	defer cancel()

	prefix, err := splitPrefix(cmd)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	src, err := openInput(in)
	if err != nil {
		return exitWith(cmd, in, err)
	}
	defer func() { _ = src.Close() }()

	inPass, err := inputPassphrase(f, in)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	d, body, err := envelope.OpenRead(ctx, src, inPass, f.ignoreChecksum, log)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	outPass, err := outputPassphrase(f, prefix)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	tmpl := envelope.Descriptor{Version: d.Version, Compressed: d.Compressed, Encrypted: d.Encrypted}
	factory := splitter.DefaultFactory(ctx, prefix, tmpl, outPass, f.writeOptions(cmd))

	err = splitter.Split(tarstream.NewReader(body), factory)
	return exitWith(cmd, in, err)
}
