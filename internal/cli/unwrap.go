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
	"io"

	"github.com/spf13/cobra"

	"github.com/nabbar/abtool/envelope"
)

func newUnwrapCommand() *cobra.Command {
	f := &ioFlags{}
	var out string

	cmd := &cobra.Command{
		Use:     "unwrap <archive> [output.tar]",
		Aliases: []string{"ab2tar"},
		Short:   "Decode an archive's envelope and emit the raw tar stream",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				out = args[1]
			}
			return runUnwrap(cmd, f, args[0], out)
		},
	}

	addInputPassphraseFlags(cmd.Flags(), f)
	return cmd
}

func runUnwrap(cmd *cobra.Command, f *ioFlags, in, out string) error {
	log := runLogger(cmd, "unwrap")
	ctx, cancel := contextFor(cmd)
	defer cancel()

	out, err := resolveDefaultOutput(in, out, ".tar")
	if err != nil {
		return exitWith(cmd, in, err)
	}

	src, err := openInput(in)
	if err != nil {
		return exitWith(cmd, in, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := createOutput(out)
	if err != nil {
		return exitWith(cmd, out, err)
	}
	defer func() { _ = dst.Close() }()

	pass, err := inputPassphrase(f, in)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	_, body, err := envelope.OpenRead(ctx, src, pass, f.ignoreChecksum, log)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	_, err = io.Copy(dst, body)
	return exitWith(cmd, in, err)
}
