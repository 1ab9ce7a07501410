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

import liberr "github.com/nabbar/abtool/errors"

const (
	ErrorBadMagic liberr.CodeError = iota + liberr.MinPkgEnvelope
	ErrorUnsupportedVersion
	ErrorMalformedHeader
	ErrorWrongPassphrase
	ErrorCorruptedEncryptedHeader
	ErrorTruncatedBody
	ErrorZlibError
	ErrorIOError
	ErrorModeKeepMismatch
)

func init() {
	liberr.RegisterIdFctMessage(ErrorBadMagic, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorBadMagic:
		return "first header line is not \"ANDROID BACKUP\""
	case ErrorUnsupportedVersion:
		return "backup format version is out of the supported range [1, 5]"
	case ErrorMalformedHeader:
		return "header field is missing, non-numeric, or not valid hex"
	case ErrorWrongPassphrase:
		return "master key padding is invalid or descriptor re-parse failed after decrypt"
	case ErrorCorruptedEncryptedHeader:
		return "master key checksum matches neither known encoding"
	case ErrorTruncatedBody:
		return "body ended before a full cipher block or expected trailer"
	case ErrorZlibError:
		return "zlib stream is corrupted"
	case ErrorIOError:
		return "I/O error reading or writing the envelope"
	case ErrorModeKeepMismatch:
		return "ModeKeep requires the output encryption flag to match the input's"
	}

	return ""
}
