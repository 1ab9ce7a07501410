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

package splitter

import (
	"context"
	"io"

	"github.com/nabbar/abtool/envelope"
	"github.com/nabbar/abtool/tarstream"
)

// Input is one already-opened split archive being fed back into Merge: its
// parsed header and a tar reader positioned at the start of its body.
type Input struct {
	Descriptor *envelope.Descriptor
	Reader     *tarstream.Reader
}

// Merge concatenates every input's entries, in argument order, into a single
// tar body written through one freshly opened envelope. Each input's own
// two-block terminator is discarded by tarstream.Reader at end of stream;
// Merge emits exactly one terminator, after the last input's last entry.
//
// All inputs must carry the same format version, or ErrorVersionMismatch is
// returned before anything is written to dst. ctx is forwarded to
// envelope.OpenWrite and checked on every byte written.
func Merge(ctx context.Context, inputs []Input, dst io.Writer, out *envelope.Descriptor, pass envelope.PassphraseProvider, opt envelope.WriteOptions) error {
	if len(inputs) == 0 {
		return ErrorNoInput.Error()
	}

	version := inputs[0].Descriptor.Version
	for _, in := range inputs[1:] {
		if in.Descriptor.Version != version {
			return ErrorVersionMismatch.Error()
		}
	}
	out.Version = version

	sink, err := envelope.OpenWrite(ctx, dst, out, pass, opt)
	if err != nil {
		return err
	}

	tw := tarstream.NewWriter(sink)

	for _, in := range inputs {
		for {
			e, nerr := in.Reader.Next()
			if nerr == io.EOF {
				break
			}
			if nerr != nil {
				_ = tw.Close()
				_ = sink.Close()
				return nerr
			}
			if werr := tw.WriteEntry(e); werr != nil {
				_ = tw.Close()
				_ = sink.Close()
				return werr
			}
		}
	}

	if cerr := tw.Close(); cerr != nil {
		_ = sink.Close()
		return cerr
	}
	return sink.Close()
}
