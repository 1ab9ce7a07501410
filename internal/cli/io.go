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
	"io"
	"os"
	"path/filepath"
	"strings"
)

const stdioSentinel = "-"

// openInput opens path for reading, treating the "-" sentinel as stdin. The
// caller is responsible for closing the returned closer (a no-op for stdin).
func openInput(path string) (io.ReadCloser, error) {
	if path == stdioSentinel {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrorBadArgs.Error(err)
	}
	return f, nil
}

// createOutput creates path for writing, treating the "-" sentinel as
// stdout and refusing to clobber an existing file at any other path other
// than by truncation semantics the driver itself controls (O_EXCL is not
// used here; the overwrite guard in refuseOverwrite runs first).
func createOutput(path string) (io.WriteCloser, error) {
	if path == stdioSentinel {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, ErrorBadArgs.Error(err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// refuseOverwrite compares the resolved absolute paths of in and out and
// returns ErrorRefuseOverwrite if they name the same file, before any core
// call has opened either stream. Either path being the stdio sentinel never
// collides with the other.
func refuseOverwrite(in, out string) error {
	if in == stdioSentinel || out == stdioSentinel {
		return nil
	}

	inAbs, err := filepath.Abs(in)
	if err != nil {
		return ErrorBadArgs.Error(err)
	}
	outAbs, err := filepath.Abs(out)
	if err != nil {
		return ErrorBadArgs.Error(err)
	}

	if inAbs == outAbs {
		return ErrorRefuseOverwrite.Error()
	}
	return nil
}

// stem strips a trailing ".ab" or ".adb" suffix, or the full extension for
// any other input, so default output names can be derived uniformly.
func stem(path string) string {
	for _, suffix := range []string{".ab", ".adb"} {
		if strings.HasSuffix(path, suffix) {
			return strings.TrimSuffix(path, suffix)
		}
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// defaultOutput derives the output path spec.md §6 names for a subcommand
// when the user did not pass one explicitly; stdin always yields stdout.
func defaultOutput(in, suffix string) string {
	if in == stdioSentinel {
		return stdioSentinel
	}
	return stem(in) + suffix
}
