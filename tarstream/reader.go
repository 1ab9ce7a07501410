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

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Reader walks a raw tar byte stream (the plaintext, decompressed body of
// an Android Backup archive) and yields one Entry per wire record,
// including PAX extended-header records themselves. It is lazy: a file
// entry's Payload streams straight from the underlying reader, and calling
// Next again discards whatever of the previous entry's payload and padding
// the caller left unread.
type Reader struct {
	r    io.Reader
	done bool

	curPayload *entryReader
	curPadding int64

	carryPax     *PaxRecords
	carryName    string
	hasCarryName bool
	carrySize    int64
	hasCarrySize bool
}

// NewReader wraps r for sequential entry-by-entry reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next entry, or io.EOF once the two-zero-block
// terminator has been consumed (spec §4.2).
func (t *Reader) Next() (*Entry, error) {
	if t.done {
		return nil, io.EOF
	}
	if err := t.discardPending(); err != nil {
		return nil, err
	}

	for {
		var blk block
		if err := readBlock(t.r, blk[:]); err != nil {
			return nil, err
		}

		if blk.isZero() {
			var blk2 block
			if err := readBlock(t.r, blk2[:]); err != nil {
				return nil, err
			}
			if !blk2.isZero() {
				return nil, ErrorMalformedHeader.Error()
			}
			t.done = true
			return nil, io.EOF
		}

		if !blk.verifyChecksum() {
			return nil, ErrorTarChecksum.Error()
		}

		size, serr := parseOctal(blk.size())
		if serr != nil || size < 0 {
			return nil, ErrorMalformedHeader.Error(serr)
		}

		typeflag := blk.typeflag()

		if typeflag == TypePaxExtended || typeflag == TypePaxGlobal {
			entry, err := t.readPaxEntry(&blk, size, typeflag)
			if err != nil {
				return nil, err
			}
			return entry, nil
		}

		return t.readPlainEntry(&blk, size, typeflag), nil
	}
}

func (t *Reader) readPaxEntry(blk *block, size int64, typeflag byte) (*Entry, error) {
	if size > PaxHeaderCap {
		return nil, ErrorPaxHeaderTooLarge.Error()
	}

	pad := blockPadding(size)
	raw := make([]byte, size+pad)
	if _, err := io.ReadFull(t.r, raw); err != nil {
		return nil, ErrorTruncated.Error(err)
	}

	recs, perr := parsePax(raw[:size])
	if perr != nil {
		return nil, perr
	}

	t.carryPax = recs
	if v, ok := recs.Get("path"); ok {
		t.carryName = v
		t.hasCarryName = true
	}
	if v, ok := recs.Get("size"); ok {
		sz, aerr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if aerr != nil {
			return nil, ErrorPaxMalformed.Error(aerr)
		}
		t.carrySize = sz
		t.hasCarrySize = true
	}

	t.curPayload = nil
	t.curPadding = 0

	return &Entry{
		Header:   *blk,
		Typeflag: typeflag,
		Name:     ustarName(blk),
		Size:     size,
		Payload:  bytes.NewReader(raw[:size]),
	}, nil
}

func (t *Reader) readPlainEntry(blk *block, size int64, typeflag byte) *Entry {
	name := ustarName(blk)
	effSize := size

	if t.hasCarryName {
		name = t.carryName
	}
	if t.hasCarrySize {
		effSize = t.carrySize
	}

	mode, _ := parseOctal(blk.mode())

	payload := &entryReader{r: t.r, remaining: effSize}
	t.curPayload = payload
	t.curPadding = blockPadding(effSize)

	e := &Entry{
		Header:   *blk,
		Typeflag: typeflag,
		Name:     name,
		Size:     effSize,
		Mode:     mode,
		Uname:    cString(blk.uname()),
		Gname:    cString(blk.gname()),
		Linkname: cString(blk.linkName()),
		PaxKV:    t.carryPax,
		Payload:  payload,
	}
	if v, ok := t.carryPax.Get("uname"); ok {
		e.Uname = v
	}
	if v, ok := t.carryPax.Get("gname"); ok {
		e.Gname = v
	}

	t.carryPax = nil
	t.carryName = ""
	t.hasCarryName = false
	t.carrySize = 0
	t.hasCarrySize = false

	return e
}

// discardPending skips whatever of the previous entry's payload and block
// padding the caller left unread.
func (t *Reader) discardPending() error {
	if t.curPayload != nil {
		if t.curPayload.remaining > 0 {
			if _, err := io.Copy(io.Discard, t.curPayload); err != nil {
				return err
			}
		}
		t.curPayload = nil
	}

	if t.curPadding > 0 {
		if _, err := io.CopyN(io.Discard, t.r, t.curPadding); err != nil {
			return ErrorTruncated.Error(err)
		}
		t.curPadding = 0
	}

	return nil
}

func readBlock(r io.Reader, p []byte) error {
	if _, err := io.ReadFull(r, p); err != nil {
		return ErrorTruncated.Error(err)
	}
	return nil
}

func ustarName(blk *block) string {
	name := cString(blk.name())
	prefix := cString(blk.prefix())
	if prefix != "" {
		return prefix + "/" + name
	}
	return name
}

// entryReader streams exactly `remaining` bytes from the underlying tar
// stream before reporting io.EOF, and reclassifies a short underlying read
// as a truncated body rather than a clean end of stream.
type entryReader struct {
	r         io.Reader
	remaining int64
}

func (e *entryReader) Read(p []byte) (int, error) {
	if e.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > e.remaining {
		p = p[:e.remaining]
	}

	n, err := e.r.Read(p)
	e.remaining -= int64(n)

	if err == io.EOF && e.remaining > 0 {
		return n, ErrorTruncated.Error(err)
	}
	return n, err
}
