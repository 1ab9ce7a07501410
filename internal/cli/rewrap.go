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
)

type bodyFlags struct {
	compress   bool
	decompress bool
	keep       bool
	encrypt    bool
}

func addBodyFlags(cmd *cobra.Command, b *bodyFlags) {
	cmd.Flags().BoolVarP(&b.compress, "compress", "c", false, "deflate the output body")
	cmd.Flags().BoolVarP(&b.decompress, "decompress", "d", false, "inflate the output body")
	cmd.Flags().BoolVarP(&b.keep, "keep-compression", "k", false, "stream the body's compression state through unchanged")
	cmd.Flags().BoolVarP(&b.encrypt, "encrypt", "e", false, "encrypt the output")
}

// mode resolves -c/-d/-k into a CompressMode; -k wins if more than one is
// given, then -c, with plain decompression (the default, and strip's own
// mode) as the fallback.
func (b *bodyFlags) mode() envelope.CompressMode {
	switch {
	case b.keep:
		return envelope.ModeKeep
	case b.compress:
		return envelope.ModeCompress
	default:
		return envelope.ModeDecompress
	}
}

func newRewrapCommand() *cobra.Command {
	f := &ioFlags{}
	b := &bodyFlags{}
	var out string

	cmd := &cobra.Command{
		Use:     "rewrap <archive> [output]",
		Aliases: []string{"strip", "ab2ab"},
		Short:   "Re-emit an archive with a chosen compression and encryption combination",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				out = args[1]
			}
			return runRewrap(cmd, f, b, args[0], out)
		},
	}

	addInputPassphraseFlags(cmd.Flags(), f)
	addOutputPassphraseFlags(cmd.Flags(), f)
	addBodyFlags(cmd, b)
	return cmd
}

func runRewrap(cmd *cobra.Command, f *ioFlags, b *bodyFlags, in, out string) error {
	log := runLogger(cmd, "rewrap")
	ctx, cancel := contextFor(cmd)
	defer cancel()

	out, err := resolveDefaultOutput(in, out, ".stripped.ab")
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

	inPass, err := inputPassphrase(f, in)
	if err != nil {
		return exitWith(cmd, in, err)
	}

	outPass, err := outputPassphrase(f, out)
	if err != nil {
		return exitWith(cmd, out, err)
	}

	err = envelope.Rewrap(ctx, src, dst, inPass, outPass, b.encrypt, b.mode(), f.ignoreChecksum, f.writeOptions(cmd), log)
	return exitWith(cmd, in, err)
}
