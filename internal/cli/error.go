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

package cli

import (
	"fmt"

	liberr "github.com/nabbar/abtool/errors"
	"github.com/nabbar/abtool/crypt"
	"github.com/nabbar/abtool/envelope"
	"github.com/nabbar/abtool/listing"
	"github.com/nabbar/abtool/splitter"
	"github.com/nabbar/abtool/tarstream"
)

// Codes owned by the driver itself: every other entry in kindByCode names a
// code already registered by a core package.
const (
	ErrorRefuseOverwrite liberr.CodeError = iota + liberr.MinPkgCLI
	ErrorBadArgs
	ErrorInterrupted
)

func init() {
	liberr.RegisterIdFctMessage(ErrorRefuseOverwrite, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorRefuseOverwrite:
		return "output path would overwrite the input archive"
	case ErrorBadArgs:
		return "command-line arguments are missing or inconsistent"
	case ErrorInterrupted:
		return "operation interrupted before completion"
	}

	return ""
}

// kindByCode maps every liberr.CodeError the core packages and this driver
// raise to the short taxonomy name spec.md §7 requires in the one-line exit
// message. Codes are never exported from this table: a kind name not listed
// here falls back to "Error" rather than panicking.
var kindByCode = map[liberr.CodeError]string{
	envelope.ErrorBadMagic:                "BadMagic",
	envelope.ErrorUnsupportedVersion:       "UnsupportedVersion",
	envelope.ErrorMalformedHeader:          "MalformedHeader",
	envelope.ErrorWrongPassphrase:          "WrongPassphrase",
	envelope.ErrorCorruptedEncryptedHeader: "CorruptedEncryptedHeader",
	envelope.ErrorTruncatedBody:            "TruncatedBody",
	envelope.ErrorZlibError:                "ZlibError",
	envelope.ErrorIOError:                  "IOError",
	envelope.ErrorModeKeepMismatch:         "MalformedHeader",

	crypt.ErrorParamEmpty:       "MalformedHeader",
	crypt.ErrorKeyDerive:        "IOError",
	crypt.ErrorRandGen:          "IOError",
	crypt.ErrorAESBlock:         "IOError",
	crypt.ErrorCBCEncrypt:       "IOError",
	crypt.ErrorCBCDecrypt:       "TruncatedBody",
	crypt.ErrorPadding:          "TruncatedBody",
	crypt.ErrorUnpadding:        "TruncatedBody",
	crypt.ErrorShortCipherText:  "TruncatedBody",
	crypt.ErrorNotBlockAligned:  "TruncatedBody",
	crypt.ErrorChecksumMismatch: "CorruptedEncryptedHeader",

	tarstream.ErrorMalformedHeader:   "MalformedHeader",
	tarstream.ErrorTarChecksum:       "TarChecksumError",
	tarstream.ErrorPaxHeaderTooLarge: "PaxHeaderTooLarge",
	tarstream.ErrorPaxMalformed:      "MalformedHeader",
	tarstream.ErrorTruncated:         "TruncatedBody",
	tarstream.ErrorIOError:           "IOError",
	tarstream.ErrorWriterClosed:      "IOError",
	tarstream.ErrorSizeMismatch:      "MalformedHeader",

	splitter.ErrorBadPackageName: "BadPackageName",
	splitter.ErrorVersionMismatch: "VersionMismatch",
	splitter.ErrorNoInput:        "IOError",
	splitter.ErrorIOError:        "IOError",

	listing.ErrorIOError: "IOError",

	ErrorRefuseOverwrite: "RefuseOverwrite",
	ErrorBadArgs:         "IOError",
	ErrorInterrupted:     "Interrupted",
}

// kindOf returns the spec taxonomy name for err, or "Error" if err carries
// no recognised code (a bare I/O error from the standard library, say).
func kindOf(err error) string {
	e := liberr.Get(err)
	if e == nil {
		return "Error"
	}
	if k, ok := kindByCode[e.GetCode()]; ok {
		return k
	}
	return "Error"
}

// formatError renders the one-line "kind: message (file)" format; when err
// carries a source trace it is appended as "(file, trace)". The trace is the
// Go source location where the error was raised; no byte offset into the
// archive is reported. file is printed as given, not resolved to a full path.
func formatError(file string, err error) string {
	e := liberr.Get(err)
	kind := kindOf(err)

	if e == nil {
		if file != "" {
			return fmt.Sprintf("%s: %s (%s)", kind, err.Error(), file)
		}
		return fmt.Sprintf("%s: %s", kind, err.Error())
	}

	trace := e.GetTrace()
	if file != "" && trace != "" {
		return fmt.Sprintf("%s: %s (%s, %s)", kind, e.Error(), file, trace)
	}
	if file != "" {
		return fmt.Sprintf("%s: %s (%s)", kind, e.Error(), file)
	}
	if trace != "" {
		return fmt.Sprintf("%s: %s (%s)", kind, e.Error(), trace)
	}
	return fmt.Sprintf("%s: %s", kind, e.Error())
}

// formatErrorJSON renders the same information formatError does as a JSON
// code/message envelope, the machine-readable counterpart of the one-line
// format. No command or flag calls it.
func formatErrorJSON(file string, err error) []byte {
	kind := kindOf(err)
	ret := liberr.NewDefaultReturn()

	e := liberr.Get(err)
	if e == nil {
		ret.SetError(0, fmt.Sprintf("%s: %s", kind, err.Error()), file, 0)
		return ret.JSON()
	}

	ret.SetError(int(e.GetCode()), fmt.Sprintf("%s: %s", kind, e.Error()), file, 0)
	for _, p := range e.GetParent(false) {
		if pe := liberr.Get(p); pe != nil {
			ret.AddParent(int(pe.GetCode()), pe.Error(), file, 0)
		}
	}

	return ret.JSON()
}
