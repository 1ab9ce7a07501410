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
	"bufio"
	"compress/zlib"
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/abtool/crypt"
)

// OpenRead parses the textual header from src, drives the optional AES-256-CBC
// layer and the optional zlib layer, and exposes the raw tar byte stream. ctx
// is checked on every read of the returned stream, giving a caller streaming
// a large body a chance to cancel between buffer fills rather than only at
// the call boundaries; OpenRead never spawns a goroutine of its own. pass is
// called at most once, and only if the descriptor is encrypted. log receives
// a Warn entry if the encrypted master-key checksum falls back to the
// non-default encoding, or is bypassed by ignoreChecksum; a nil log is
// treated as a discard logger.
func OpenRead(ctx context.Context, src io.Reader, pass PassphraseProvider, ignoreChecksum bool, log *logrus.Entry) (*Descriptor, io.Reader, error) {
	d, body, err := openCipherBody(src, pass, ignoreChecksum, log)
	if err != nil {
		return nil, nil, err
	}

	if d.Compressed {
		zr, zerr := zlib.NewReader(body)
		if zerr != nil {
			return nil, nil, ErrorZlibError.Error(zerr)
		}
		body = &zlibErrorReader{r: zr}
	}

	return d, wrapReaderCtx(ctx, body), nil
}

// openCipherBody parses the header and undoes encryption only, leaving the
// body as whatever comes after the cipher layer: still zlib-compressed bytes
// if the descriptor says so, or the raw tar stream if not. Rewrap's "keep"
// compression mode reads at this level so it can pass compressed bytes
// through without inflating and re-deflating them.
func openCipherBody(src io.Reader, pass PassphraseProvider, ignoreChecksum bool, log *logrus.Entry) (*Descriptor, io.Reader, error) {
	br := bufio.NewReader(src)

	d, err := parseHeader(br)
	if err != nil {
		return nil, nil, err
	}

	var body io.Reader = br

	if d.Encrypted {
		passphrase, perr := pass()
		if perr != nil {
			return nil, nil, ErrorWrongPassphrase.Error(perr)
		}

		if err = decryptMasterKeyBlob(d.Enc, passphrase, ignoreChecksum, log); err != nil {
			return nil, nil, err
		}

		var (
			key [32]byte
			iv  [16]byte
		)
		copy(key[:], d.Enc.MasterKey)
		copy(iv[:], d.Enc.TarIV)

		bodyCipher, cerr := crypt.New(key, iv)
		if cerr != nil {
			return nil, nil, ErrorIOError.Error(cerr)
		}

		body = bodyCipher.Reader(body)
	}

	return d, body, nil
}

// zlibErrorReader reclassifies mid-stream inflate failures as ZlibError so
// the driver's error taxonomy doesn't leak a raw compress/zlib message.
type zlibErrorReader struct {
	r io.Reader
}

func (z *zlibErrorReader) Read(p []byte) (int, error) {
	n, err := z.r.Read(p)
	if err != nil && err != io.EOF {
		return n, ErrorZlibError.Error(err)
	}
	return n, err
}
