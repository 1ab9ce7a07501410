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
	"github.com/nabbar/abtool/internal/obslog"
	"github.com/nabbar/abtool/listing"
	"github.com/nabbar/abtool/tarstream"
)

func newLsCommand() *cobra.Command {
	f := &ioFlags{}

	cmd := &cobra.Command{
		Use:     "ls <archive>",
		Aliases: []string{"list"},
		Short:   "List an archive's envelope summary and tar entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(cmd, f, args[0])
		},
	}

	addInputPassphraseFlags(cmd.Flags(), f)
	return cmd
}

func runLs(cmd *cobra.Command, f *ioFlags, in string) error {
	log := runLogger(cmd, "ls")
	ctx, cancel := contextFor(cmd)
	defer cancel()

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
	log = obslog.Operation(log, "ls", in, d.Version, d.Encrypted, d.Compressed)
	log.Debug("rendering listing")

	entries := make(chan tarstream.Entry)
	errc := make(chan error, 1)
	go func() {
		defer close(entries)
		r := tarstream.NewReader(body)
		for {
			e, nerr := r.Next()
			if nerr == io.EOF {
				errc <- nil
				return
			}
			if nerr != nil {
				errc <- nerr
				return
			}
			entries <- *e
		}
	}()

	renderErr := listing.Render(cmd.OutOrStdout(), *d, entries)
	if readErr := <-errc; readErr != nil && renderErr == nil {
		renderErr = readErr
	}

	return exitWith(cmd, in, renderErr)
}
