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

// Package passphrase resolves an input or output passphrase following the
// driver's documented precedence: an explicit flag value, then a sibling
// "<input>.passphrase.txt" file, then an interactive terminal prompt.
package passphrase

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Resolve implements the precedence order for one side (input or output) of
// the CLI: explicit wins over passfile, passfile wins over the sibling
// "<path>.passphrase.txt" file derived from archivePath, and that in turn
// wins over prompting. archivePath may be empty (nothing to derive a sibling
// name from) or "-" (stdin/stdout, also nothing to derive from); in either
// case the sibling lookup is skipped. It is a pure function: reading stdin
// for a prompt happens in Prompt, called separately by the caller only when
// Resolve reports no passphrase could be found non-interactively.
func Resolve(archivePath string, explicit *string, passfile *string) (string, bool, error) {
	if explicit != nil && *explicit != "" {
		return *explicit, true, nil
	}

	if passfile != nil && *passfile != "" {
		p, err := readFile(*passfile)
		if err != nil {
			return "", false, err
		}
		return p, true, nil
	}

	if sib := siblingPath(archivePath); sib != "" {
		if _, err := os.Stat(sib); err == nil {
			p, err := readFile(sib)
			if err != nil {
				return "", false, err
			}
			return p, true, nil
		}
	}

	return "", false, nil
}

// siblingPath derives "<stem>.passphrase.txt" from a path ending in ".ab" or
// ".adb", and returns "" for any path this convention does not apply to
// (empty, "-", or an unrecognised suffix).
func siblingPath(archivePath string) string {
	if archivePath == "" || archivePath == "-" {
		return ""
	}
	for _, suffix := range []string{".ab", ".adb"} {
		if strings.HasSuffix(archivePath, suffix) {
			return strings.TrimSuffix(archivePath, suffix) + ".passphrase.txt"
		}
	}
	return ""
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Prompt reads a passphrase from the controlling terminal without echoing
// it, printing label as a prompt first.
func Prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}

	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
