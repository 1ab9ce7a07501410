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

package tarstream

import "io"

var zeroBlock [blockSize]byte

// Writer accepts a sequence of Entry records and re-serialises them
// bit-exact: if every record came from a Reader, the concatenation of
// written bytes reproduces the original stream, modulo any bytes that
// followed the original terminator (spec §4.2).
type Writer struct {
	w      io.Writer
	closed bool
}

// NewWriter wraps w for sequential entry-by-entry writing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEntry writes one record's header, payload, and block padding. The
// number of bytes read off e.Payload must equal e.Size exactly, or
// ErrorSizeMismatch is returned.
func (t *Writer) WriteEntry(e *Entry) error {
	if t.closed {
		return ErrorWriterClosed.Error()
	}

	if _, err := t.w.Write(e.Header[:]); err != nil {
		return ErrorIOError.Error(err)
	}

	var n int64
	if e.Payload != nil {
		written, err := io.Copy(t.w, e.Payload)
		if err != nil {
			return ErrorIOError.Error(err)
		}
		n = written
	}

	if n != e.Size {
		return ErrorSizeMismatch.Error()
	}

	if pad := blockPadding(e.Size); pad > 0 {
		if _, err := t.w.Write(zeroBlock[:pad]); err != nil {
			return ErrorIOError.Error(err)
		}
	}

	return nil
}

// Close emits the two-block terminator and refuses any further WriteEntry
// calls. Calling Close more than once is a no-op.
func (t *Writer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var term [blockSize * 2]byte
	if _, err := t.w.Write(term[:]); err != nil {
		return ErrorIOError.Error(err)
	}
	return nil
}
