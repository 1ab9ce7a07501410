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
	"fmt"
	"io"
	"strconv"
	"strings"

	enchex "github.com/nabbar/abtool/encoding/hexa"
)

var hx = enchex.New()

// readHeaderLine reads one '\n'-terminated line, trims the newline, and
// rejects the CRLF and EOF-without-newline edge cases the grammar doesn't
// allow (spec §4.1, "ASCII, \n-terminated").
func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		return "", ErrorMalformedHeader.Error(err)
	} else if err != nil {
		return "", ErrorIOError.Error(err)
	}

	return strings.TrimSuffix(line, "\n"), nil
}

func hexDecode(line string) ([]byte, error) {
	b, err := hx.Decode([]byte(line))
	if err != nil {
		return nil, ErrorMalformedHeader.Error(err)
	}
	return b, nil
}

func hexEncode(b []byte) string {
	return string(hx.Encode(b))
}

// parseHeader reads the textual envelope header from r and returns the
// parsed Descriptor. The encryption parameters, when present, are left
// encrypted (MasterKeyBlob only) — decrypting them and populating
// TarIV/MasterKey is OpenRead's job, once the passphrase provider is called.
func parseHeader(r *bufio.Reader) (*Descriptor, error) {
	magic, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrorBadMagic.Error()
	}

	verLine, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	version, err := strconv.Atoi(verLine)
	if err != nil {
		return nil, ErrorMalformedHeader.Error(err)
	}
	if version < MinVersion || version > MaxVersion {
		return nil, ErrorUnsupportedVersion.Error()
	}

	compLine, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	compressed, err := parseBoolFlag(compLine)
	if err != nil {
		return nil, err
	}

	algLine, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{Version: version, Compressed: compressed}

	switch algLine {
	case algNone:
		d.Encrypted = false
	case algAES256:
		d.Encrypted = true
	default:
		return nil, ErrorMalformedHeader.Error()
	}

	if !d.Encrypted {
		return d, nil
	}

	var e EncParams

	if e.UserSalt, err = readHexLine(r); err != nil {
		return nil, err
	}
	if e.ChecksumSalt, err = readHexLine(r); err != nil {
		return nil, err
	}

	iterLine, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	if e.Iterations, err = strconv.Atoi(iterLine); err != nil || e.Iterations < 1 {
		return nil, ErrorMalformedHeader.Error(err)
	}

	if e.UserKeyIV, err = readHexLine(r); err != nil {
		return nil, err
	}
	if e.MasterKeyBlob, err = readHexLine(r); err != nil {
		return nil, err
	}

	d.Enc = &e
	return d, nil
}

func readHexLine(r *bufio.Reader) ([]byte, error) {
	line, err := readHeaderLine(r)
	if err != nil {
		return nil, err
	}
	return hexDecode(line)
}

func parseBoolFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, ErrorMalformedHeader.Error()
	}
}

// writeHeader emits the textual header exactly per the grammar in spec §4.1.
// The caller must have populated Enc.MasterKeyBlob (the already-encrypted
// blob) before calling this for an encrypted descriptor.
func writeHeader(w io.Writer, d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s\n%d\n%s\n", Magic, d.Version, boolFlag(d.Compressed)); err != nil {
		return ErrorIOError.Error(err)
	}

	if !d.Encrypted {
		if _, err := fmt.Fprintf(w, "%s\n", algNone); err != nil {
			return ErrorIOError.Error(err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s\n", algAES256); err != nil {
		return ErrorIOError.Error(err)
	}

	e := d.Enc
	lines := []string{
		hexEncode(e.UserSalt),
		hexEncode(e.ChecksumSalt),
		strconv.Itoa(e.Iterations),
		hexEncode(e.UserKeyIV),
		hexEncode(e.MasterKeyBlob),
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s\n", l); err != nil {
			return ErrorIOError.Error(err)
		}
	}

	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
