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

import liberr "github.com/nabbar/abtool/errors"

const (
	ErrorMalformedHeader liberr.CodeError = iota + liberr.MinPkgTar
	ErrorTarChecksum
	ErrorPaxHeaderTooLarge
	ErrorPaxMalformed
	ErrorTruncated
	ErrorIOError
	ErrorWriterClosed
	ErrorSizeMismatch
)

func init() {
	liberr.RegisterIdFctMessage(ErrorMalformedHeader, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorMalformedHeader:
		return "malformed tar header block"
	case ErrorTarChecksum:
		return "tar header checksum mismatch"
	case ErrorPaxHeaderTooLarge:
		return "PAX extended header payload exceeds 1 MiB cap"
	case ErrorPaxMalformed:
		return "malformed PAX extended header record"
	case ErrorTruncated:
		return "tar stream truncated before terminator"
	case ErrorIOError:
		return "tar stream I/O error"
	case ErrorWriterClosed:
		return "write after tar terminator has been emitted"
	case ErrorSizeMismatch:
		return "payload byte count does not match declared entry size"
	}

	return ""
}
