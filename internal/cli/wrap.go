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

func newWrapCommand() *cobra.Command {
	f := &ioFlags{}
	b := &bodyFlags{}
	var out string
	var outputVersion int

	cmd := &cobra.Command{
		Use:     "wrap <tar> [output.ab]",
		Aliases: []string{"tar2ab"},
		Short:   "Wrap a raw tar stream in an Android Backup envelope",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				out = args[1]
			}
			return runWrap(cmd, f, b, outputVersion, args[0], out)
		},
	}

	addOutputPassphraseFlags(cmd.Flags(), f)
	addBodyFlags(cmd, b)
	cmd.Flags().IntVar(&outputVersion, "output-version", 0, "backup format version to write (required, 1-5)")
	_ = cmd.MarkFlagRequired("output-version")
	return cmd
}

func runWrap(cmd *cobra.Command, f *ioFlags, b *bodyFlags, version int, in, out string) error {
	ctx, cancel := contextFor(cmd)
	defer cancel()

	out, err := resolveDefaultOutput(in, out, ".ab")
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

	d := &envelope.Descriptor{
		Version:    version,
		Compressed: b.compress,
		Encrypted:  b.encrypt,
	}
	if err = d.Validate(); err != nil {
		return exitWith(cmd, out, err)
	}

	outPass, err := outputPassphrase(f, out)
	if err != nil {
		return exitWith(cmd, out, err)
	}

	sink, err := envelope.OpenWrite(ctx, dst, d, outPass, f.writeOptions(cmd))
	if err != nil {
		return exitWith(cmd, out, err)
	}

	if _, err = io.Copy(sink, src); err != nil {
		_ = sink.Close()
		return exitWith(cmd, in, err)
	}

	return exitWith(cmd, out, sink.Close())
}
