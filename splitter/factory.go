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
	"fmt"
	"io"
	"os"

	"github.com/nabbar/abtool/envelope"
)

// fileSink closes an envelope sink before the underlying file, so the final
// cipher block and terminator are flushed before the descriptor goes away.
type fileSink struct {
	sink io.WriteCloser
	file *os.File
}

func (f *fileSink) Write(p []byte) (int, error) {
	return f.sink.Write(p)
}

func (f *fileSink) Close() error {
	serr := f.sink.Close()
	ferr := f.file.Close()
	if serr != nil {
		return serr
	}
	return ferr
}

// DefaultFactory returns a Factory that creates one file per group named
// "<prefix>_<NNN>_<package>.ab" (NNN zero-padded to three digits, package
// empty for the preamble group) and opens it as a freshly written envelope
// using tmpl as the header template for every group. ctx is forwarded to
// every envelope.OpenWrite call, so cancelling it unblocks a Split call
// stuck writing a large group.
func DefaultFactory(ctx context.Context, prefix string, tmpl envelope.Descriptor, pass envelope.PassphraseProvider, opt envelope.WriteOptions) Factory {
	return func(pkg string, idx int) (io.WriteCloser, error) {
		name := fmt.Sprintf("%s_%03d_%s.ab", prefix, idx, pkg)

		f, err := os.Create(name)
		if err != nil {
			return nil, ErrorIOError.Error(err)
		}

		d := tmpl
		sink, err := envelope.OpenWrite(ctx, f, &d, pass, opt)
		if err != nil {
			_ = f.Close()
			return nil, err
		}

		return &fileSink{sink: sink, file: f}, nil
	}
}
