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

// Entry is one tar record as it appears on the wire: a raw 512-byte header
// block plus its payload, carried verbatim so a Reader piped straight into
// a Writer reproduces its input byte-for-byte (spec §3, "emittable
// verbatim"). PAX extended-header records ('x'/'g' typeflag) are surfaced
// as ordinary Entry values too — the decoded Name/Size/PaxKV of the entry
// they modify are populated from the nearest preceding one, but the PAX
// record itself still has to be re-emitted for the round-trip to hold.
type Entry struct {
	// Header is the raw 512-byte header block, unmodified from the wire.
	Header [blockSize]byte

	// Payload streams exactly Size bytes of entry content (the decoded,
	// PAX-aware size). Callers must read it to completion, or call Next
	// again to have it discarded automatically.
	Payload io.Reader

	// Typeflag is the raw header typeflag byte.
	Typeflag byte

	// Name is the effective name: the nearest preceding PAX "path" record,
	// else the ustar name+prefix fields (spec §4.2 decoding rules).
	Name string

	// Size is the effective size: the nearest preceding PAX "size" record,
	// else the octal header field.
	Size int64

	// Mode, Uname, Gname, Linkname are decoded straight from the header,
	// for the Listing component (spec §4.6); PAX can override uname/gname
	// too, reflected here when present.
	Mode     int64
	Uname    string
	Gname    string
	Linkname string

	// PaxKV is the PAX record table of the nearest preceding extended
	// header, or nil if this entry had none.
	PaxKV *PaxRecords
}

// IsPaxHeader reports whether this entry is itself a PAX extended-header
// record rather than a regular archive member.
func (e *Entry) IsPaxHeader() bool {
	return e.Typeflag == TypePaxExtended || e.Typeflag == TypePaxGlobal
}
