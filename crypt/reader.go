/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
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

package crypt

import (
	"crypto/cipher"
	"fmt"
	"io"
)

type reader struct {
	f func(p []byte) (n int, err error)
}

func (r *reader) Read(p []byte) (n int, err error) {
	if r.f == nil {
		return 0, fmt.Errorf("invalid reader")
	}
	return r.f(p)
}

// cbcReader holds back the last decrypted block until a short read from src
// confirms it, since only then do we know it carries the PKCS#7 padding.
type cbcReader struct {
	src     io.Reader
	mode    cipher.BlockMode
	bs      int
	pending []byte // one decrypted, unverified block (the padding candidate)
	out     []byte // plaintext ready to hand to the caller
	eof     bool
}

func (o *crt) Reader(r io.Reader) io.Reader {
	c := &cbcReader{src: r, mode: cipher.NewCBCDecrypter(o.blk, o.iv), bs: o.blockSize()}

	return &reader{f: c.read}
}

func (c *cbcReader) read(p []byte) (int, error) {
	for len(c.out) == 0 {
		if c.eof {
			return 0, io.EOF
		}
		if err := c.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, c.out)
	c.out = c.out[n:]
	return n, nil
}

// fill reads one more ciphertext block, decrypts the previous pending block
// into c.out (no longer a padding candidate since more data followed), and
// keeps the freshly decrypted block as the new pending block. When src is
// exhausted, the pending block is unpadded and released as the tail.
func (c *cbcReader) fill() error {
	block := make([]byte, c.bs)
	n, err := io.ReadFull(c.src, block)

	if err == io.ErrUnexpectedEOF || (err == nil && n < c.bs) {
		return ErrorNotBlockAligned.Error()
	}

	if err == io.EOF {
		if len(c.pending) == 0 {
			return ErrorShortCipherText.Error()
		}

		final, uerr := pkcs7Unpad(c.pending, c.bs)
		if uerr != nil {
			return uerr
		}

		c.out = final
		c.pending = nil
		c.eof = true
		return nil
	}

	if err != nil {
		return ErrorCBCDecrypt.Error(err)
	}

	dec := make([]byte, c.bs)
	c.mode.CryptBlocks(dec, block)

	if c.pending != nil {
		c.out = append(c.out, c.pending...)
	}
	c.pending = dec

	return nil
}
