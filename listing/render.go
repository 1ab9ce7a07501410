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

// Package listing renders a tar -tvf-style report of an archive's envelope
// and entries: a table on an interactive terminal, tab-separated plain text
// otherwise, so piping into grep/awk keeps working.
package listing

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/nabbar/abtool/envelope"
	fperm "github.com/nabbar/abtool/file/perm"
	"github.com/nabbar/abtool/tarstream"
)

// typeHardlink is the ustar typeflag for a hard link; tarstream only
// declares the constants Render actually needs to decode (Dir, Symlink,
// Reg), so the one extra type this package cares about is named locally.
const typeHardlink = '1'

// Render writes the envelope summary followed by one line per entry drawn
// from entries, which Render consumes to completion (or until it is closed
// early by the caller). The iteration count and salt/IV lengths are
// reported for encrypted archives; no key material or passphrase ever
// appears in the output.
func Render(w io.Writer, d envelope.Descriptor, entries <-chan tarstream.Entry) error {
	if err := writeSummary(w, d); err != nil {
		return err
	}

	rows := [][]string{{"mode", "owner/group", "size", "name"}}
	for e := range entries {
		rows = append(rows, entryRow(e))
	}

	if isTerminal(w) {
		return renderTable(w, rows)
	}
	return renderPlain(w, rows)
}

func writeSummary(w io.Writer, d envelope.Descriptor) error {
	comp := "plain"
	if d.Compressed {
		comp = "zlib"
	}

	enc := "none"
	if d.Encrypted && d.Enc != nil {
		enc = fmt.Sprintf("AES-256 (iterations=%d, user-salt=%dB, checksum-salt=%dB, iv=%dB)",
			d.Enc.Iterations, len(d.Enc.UserSalt), len(d.Enc.ChecksumSalt), len(d.Enc.UserKeyIV))
	}

	_, err := fmt.Fprintf(w, "version: %d\ncompression: %s\nencryption: %s\n\n", d.Version, comp, enc)
	if err != nil {
		return ErrorIOError.Error(err)
	}
	return nil
}

func entryRow(e tarstream.Entry) []string {
	name := e.Name
	if e.Typeflag == tarstream.TypeSymlink || e.Typeflag == typeHardlink {
		name = fmt.Sprintf("%s -> %s", e.Name, e.Linkname)
	}

	return []string{modeString(&e), ownerString(&e), fmt.Sprintf("%d", e.Size), name}
}

func modeString(e *tarstream.Entry) string {
	p, err := fperm.ParseInt64(e.Mode & 0o7777)
	if err != nil {
		return "?---------"
	}

	fm := p.FileMode()
	switch e.Typeflag {
	case tarstream.TypeDir:
		fm |= os.ModeDir
	case tarstream.TypeSymlink:
		fm |= os.ModeSymlink
	}
	return fm.String()
}

func ownerString(e *tarstream.Entry) string {
	return e.Uname + "/" + e.Gname
}

func renderTable(w io.Writer, rows [][]string) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return ErrorIOError.Error(err)
	}
	if _, err := fmt.Fprintln(w, out); err != nil {
		return ErrorIOError.Error(err)
	}
	return nil
}

func renderPlain(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, joinTab(row)); err != nil {
			return ErrorIOError.Error(err)
		}
	}
	return nil
}

func joinTab(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += "\t"
		}
		out += f
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
