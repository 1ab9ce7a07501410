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

package envelope

import (
	"compress/zlib"
	"context"
	"io"

	"github.com/nabbar/abtool/crypt"
)

// WriteOptions carries the output-encryption knobs the CLI driver collects
// from --output-salt-bytes/--output-iterations; core callers that already
// have an EncParams (e.g. the splitter re-using one passphrase across many
// per-app outputs) may leave Descriptor.Enc populated and these are ignored.
type WriteOptions struct {
	SaltBytes  int
	Iterations int
}

func DefaultWriteOptions() WriteOptions {
	return WriteOptions{SaltBytes: DefaultSaltBytes, Iterations: DefaultIterations}
}

// OpenWrite emits the textual header for d and returns a sink for the raw tar
// bytes, wrapped in the requested compression and/or encryption. ctx is
// checked on every write, the same cooperative-cancellation contract as
// OpenRead. Closing the returned writer finalises padding (and the zlib
// footer, if compressed) and flushes the terminal ciphertext block —
// callers must Close it.
func OpenWrite(ctx context.Context, dst io.Writer, d *Descriptor, pass PassphraseProvider, opt WriteOptions) (io.WriteCloser, error) {
	sink, err := openCipherWrite(dst, d, pass, opt)
	if err != nil {
		return nil, err
	}

	if !d.Compressed {
		return wrapWriteCloserCtx(ctx, sink), nil
	}

	zw, zerr := zlib.NewWriterLevel(sink, zlib.BestCompression)
	if zerr != nil {
		return nil, ErrorZlibError.Error(zerr)
	}

	return wrapWriteCloserCtx(ctx, &bodySink{w: zw, closers: []io.Closer{zw, sink}}), nil
}

// openCipherWrite emits the header and wraps dst in the encryption layer
// only, leaving compression to the caller. Rewrap's "keep" compression mode
// writes at this level so it can stream already-compressed bytes through
// without re-deflating them.
func openCipherWrite(dst io.Writer, d *Descriptor, pass PassphraseProvider, opt WriteOptions) (io.WriteCloser, error) {
	if d.Encrypted && d.Enc == nil {
		e, err := generateEncParams(opt.SaltBytes, opt.Iterations)
		if err != nil {
			return nil, err
		}
		d.Enc = e
	}

	if d.Encrypted {
		passphrase, perr := pass()
		if perr != nil {
			return nil, ErrorWrongPassphrase.Error(perr)
		}

		if err := encryptMasterKeyBlob(d.Enc, passphrase); err != nil {
			return nil, err
		}
	}

	if err := writeHeader(dst, d); err != nil {
		return nil, err
	}

	if !d.Encrypted {
		return &bodySink{w: dst}, nil
	}

	var (
		key [32]byte
		iv  [16]byte
	)
	copy(key[:], d.Enc.MasterKey)
	copy(iv[:], d.Enc.TarIV)

	bodyCipher, err := crypt.New(key, iv)
	if err != nil {
		return nil, ErrorIOError.Error(err)
	}

	wc := bodyCipher.Writer(dst)
	return &bodySink{w: wc, closers: []io.Closer{wc}}, nil
}

// bodySink closes its layers outermost-first: zlib flushes its footer into
// the cipher writer, which then pads and emits the final ciphertext block.
type bodySink struct {
	w       io.Writer
	closers []io.Closer
}

func (b *bodySink) Write(p []byte) (int, error) {
	n, err := b.w.Write(p)
	if err != nil {
		return n, ErrorIOError.Error(err)
	}
	return n, nil
}

func (b *bodySink) Close() error {
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			return ErrorIOError.Error(err)
		}
	}
	return nil
}
