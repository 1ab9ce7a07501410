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

type writer struct {
	f func(p []byte) (n int, err error)
	c func() error
}

func (w *writer) Write(p []byte) (n int, err error) {
	if w.f == nil {
		return 0, fmt.Errorf("invalid writer")
	}
	return w.f(p)
}

func (w *writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c()
}

// cbcWriter buffers less-than-a-block of plaintext between Write calls and
// only applies PKCS#7 padding to the tail on Close, per spec: "flushing the
// sink finalises padding and emits the terminal ciphertext block."
type cbcWriter struct {
	dst    io.Writer
	mode   cipher.BlockMode
	bs     int
	buf    []byte
	closed bool
}

func (o *crt) Writer(w io.Writer) io.WriteCloser {
	c := &cbcWriter{dst: w, mode: cipher.NewCBCEncrypter(o.blk, o.iv), bs: o.blockSize()}

	return &writer{f: c.write, c: c.close}
}

func (c *cbcWriter) write(p []byte) (int, error) {
	if c.closed {
		return 0, fmt.Errorf("write after close")
	}

	c.buf = append(c.buf, p...)

	n := len(c.buf) / c.bs * c.bs
	if n == 0 {
		return len(p), nil
	}

	enc := make([]byte, n)
	c.mode.CryptBlocks(enc, c.buf[:n])

	if _, err := c.dst.Write(enc); err != nil {
		return 0, ErrorCBCEncrypt.Error(err)
	}

	c.buf = c.buf[n:]
	return len(p), nil
}

func (c *cbcWriter) close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	padded, err := pkcs7Pad(c.buf, c.bs)
	if err != nil {
		return err
	}

	enc := make([]byte, len(padded))
	c.mode.CryptBlocks(enc, padded)

	if _, err := c.dst.Write(enc); err != nil {
		return ErrorCBCEncrypt.Error(err)
	}

	return nil
}
