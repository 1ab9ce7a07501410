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
	"github.com/nabbar/abtool/splitter"
	"github.com/nabbar/abtool/tarstream"
)

func newMergeCommand() *cobra.Command {
	f := &ioFlags{}
	var out string

	cmd := &cobra.Command{
		Use:     "merge <output> <archive>...",
		Aliases: []string{"many2ab"},
		Short:   "Merge a set of split archives back into one",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out = args[0]
			return runMerge(cmd, f, out, args[1:])
		},
	}

	addInputPassphraseFlags(cmd.Flags(), f)
	addOutputPassphraseFlags(cmd.Flags(), f)
	return cmd
}

func runMerge(cmd *cobra.Command, f *ioFlags, out string, ins []string) error {
	log := runLogger(cmd, "merge")
	ctx, cancel := contextFor(cmd)
	defer cancel()

	for _, in := range ins {
		if err := refuseOverwrite(in, out); err != nil {
			return exitWith(cmd, out, err)
		}
	}

	var inputs []splitter.Input
	for _, in := range ins {
		src, err := openInput(in)
		if err != nil {
			return exitWith(cmd, in, err)
		}
		defer func() { _ = src.Close() }()

		pass, err := inputPassphrase(f, in)
		if err != nil {
			return exitWith(cmd, in, err)
		}

		d, body, err := envelope.OpenRead(ctx, src, pass, f.ignoreChecksum, log)
		if err != nil {
			return exitWith(cmd, in, err)
		}

		inputs = append(inputs, splitter.Input{Descriptor: d, Reader: tarstream.NewReader(body)})
	}

	dst, err := createOutput(out)
	if err != nil {
		return exitWith(cmd, out, err)
	}
	defer func() { _ = dst.Close() }()

	outPass, err := outputPassphrase(f, out)
	if err != nil {
		return exitWith(cmd, out, err)
	}

	outDescriptor := &envelope.Descriptor{Version: inputs[0].Descriptor.Version}
	err = splitter.Merge(ctx, inputs, dst, outDescriptor, outPass, f.writeOptions(cmd))
	return exitWith(cmd, out, err)
}
