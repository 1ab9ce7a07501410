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

// Package tarstream implements a byte-exact streaming reader/writer for the
// POSIX ustar/PAX tar layout used as the payload of an Android Backup
// archive. Every entry is carried through as raw header and payload bytes;
// the decoded view (effective name, size, PAX key/value table) is derived
// alongside but never required to reproduce the wire bytes, so a reader
// piped straight into a writer reproduces its input verbatim.
package tarstream

import (
	"strconv"
	"strings"
)

const (
	blockSize = 512

	offName     = 0
	lenName     = 100
	offMode     = 100
	lenMode     = 8
	offUID      = 108
	lenUID      = 8
	offGID      = 116
	lenGID      = 8
	offSize     = 124
	lenSize     = 12
	offModTime  = 136
	lenModTime  = 12
	offChksum   = 148
	lenChksum   = 8
	offTypeflag = 156
	lenTypeflag = 1
	offLinkName = 157
	lenLinkName = 100
	offMagic    = 257
	lenMagic    = 6
	offUname    = 265
	lenUname    = 32
	offGname    = 297
	lenGname    = 32
	offDevMajor = 329
	lenDevMajor = 8
	offDevMinor = 337
	lenDevMinor = 8
	offPrefix   = 345
	lenPrefix   = 155

	// TypePaxExtended is the typeflag for a per-entry PAX extended header.
	TypePaxExtended = 'x'
	// TypePaxGlobal is the typeflag for a PAX global extended header.
	TypePaxGlobal = 'g'
	// TypeDir marks a directory entry.
	TypeDir = '5'
	// TypeSymlink marks a symbolic link entry.
	TypeSymlink = '2'
	// TypeReg marks a regular file entry in the ustar '0' spelling; Entry.Typeflag keeps the raw byte, so a V7 '\0' entry is not rewritten to '0'.
	TypeReg = '0'

	// PaxHeaderCap is the maximum decoded byte length of one PAX extended
	// header payload (spec §5, boundary behaviour).
	PaxHeaderCap = 1 << 20
)

// block is a raw 512-byte header as read off (or about to be written to) the
// wire. Field accessors return sub-slices, never copies, so a checksum
// recompute or a field write is visible immediately.
type block [blockSize]byte

func (b *block) field(off, n int) []byte { return b[off:][:n] }

func (b *block) name() []byte     { return b.field(offName, lenName) }
func (b *block) mode() []byte     { return b.field(offMode, lenMode) }
func (b *block) uid() []byte      { return b.field(offUID, lenUID) }
func (b *block) gid() []byte      { return b.field(offGID, lenGID) }
func (b *block) size() []byte     { return b.field(offSize, lenSize) }
func (b *block) modTime() []byte  { return b.field(offModTime, lenModTime) }
func (b *block) chksum() []byte   { return b.field(offChksum, lenChksum) }
func (b *block) typeflag() byte   { return b[offTypeflag] }
func (b *block) linkName() []byte { return b.field(offLinkName, lenLinkName) }
func (b *block) magic() []byte    { return b.field(offMagic, lenMagic) }
func (b *block) uname() []byte    { return b.field(offUname, lenUname) }
func (b *block) gname() []byte    { return b.field(offGname, lenGname) }
func (b *block) devMajor() []byte { return b.field(offDevMajor, lenDevMajor) }
func (b *block) devMinor() []byte { return b.field(offDevMinor, lenDevMinor) }
func (b *block) prefix() []byte   { return b.field(offPrefix, lenPrefix) }

// isZero reports whether the block is all NUL bytes, the marker for one of
// the two archive-terminating blocks.
func (b *block) isZero() bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// computeChecksum sums the block's unsigned byte values, treating the
// checksum field itself as eight spaces (spec §4.2).
func (b *block) computeChecksum() int64 {
	var sum int64
	for i, c := range b {
		if i >= offChksum && i < offChksum+lenChksum {
			c = ' '
		}
		sum += int64(c)
	}
	return sum
}

// verifyChecksum compares the stored octal checksum field against the
// freshly computed one.
func (b *block) verifyChecksum() bool {
	stored, err := parseOctal(b.chksum())
	if err != nil {
		return false
	}
	return stored == b.computeChecksum()
}

// setChecksum recomputes and writes the checksum field in the ustar style:
// six octal digits, a NUL, then a space.
func (b *block) setChecksum() {
	sum := b.computeChecksum()
	field := b.chksum()
	octal := strconv.FormatInt(sum, 8)
	for len(octal) < 6 {
		octal = "0" + octal
	}
	copy(field, octal)
	field[6] = 0
	field[7] = ' '
}

// parseOctal parses a NUL/space-terminated octal numeric field as used
// throughout the ustar header.
func parseOctal(b []byte) (int64, error) {
	s := strings.TrimRight(string(b), "\x00 ")
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 8, 64)
}

// formatOctal renders v as a NUL-terminated, left-padded octal field of
// length n (the field's declared width including the terminator).
func formatOctal(v int64, n int) []byte {
	out := make([]byte, n)
	s := strconv.FormatInt(v, 8)
	for len(s) > n-1 {
		s = s[1:]
	}
	for i := range out {
		out[i] = '0'
	}
	copy(out[n-1-len(s):n-1], s)
	out[n-1] = 0
	return out
}

func cString(b []byte) string {
	if i := indexZero(b); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func indexZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// blockPadding returns the number of padding bytes needed to round size up
// to the next 512-byte boundary.
func blockPadding(size int64) int64 {
	return -size & (blockSize - 1)
}
