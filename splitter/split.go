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

// Package splitter cuts one decoded tar body into one archive per Android
// app package, and merges a set of per-package archives back into one tar
// body. App boundaries are detected from the well-known manifest marker
// path each app's backup payload starts with; everything before the first
// marker is carried as an unnamed preamble group.
package splitter

import (
	"io"
	"regexp"
	"strings"

	"github.com/nabbar/abtool/tarstream"
)

// boundary matches the manifest marker that opens one app's section of the
// tar body: apps/<package>/_manifest. The character class already excludes
// '/', so a captured package name can never itself contain a path
// separator; the additional validatePackageName check exists to reject
// other path-traversal shaped names such as "..".
var boundary = regexp.MustCompile(`^apps/([^/]+)/_manifest$`)

// Factory opens the next destination for package pkg (empty for the
// preamble group) at zero-based group index idx. Split calls it once per
// group, in increasing idx order.
type Factory func(pkg string, idx int) (io.WriteCloser, error)

// Split walks r's entries and routes each one, verbatim, into the group
// opened for the app package its nearest preceding apps/<pkg>/_manifest
// marker named, closing each group's writer before opening the next.
// A run of PAX extended-header records is held back until the real entry
// they decorate is seen, so the boundary decision — and the PAX records
// themselves — land in the same group as the entry they belong to.
//
// No group is opened until there is something to put in it: an archive
// that starts immediately with an apps/<pkg>/_manifest marker produces no
// empty preamble group (spec.md §8 S1); only a leading run of non-marker
// entries opens the preamble group at idx 0 (spec.md §8 S2).
func Split(r *tarstream.Reader, newOutput Factory) error {
	var (
		tw   *tarstream.Writer
		sink io.WriteCloser
	)
	idx := -1
	pkg := ""

	var pending []*tarstream.Entry

	finalize := func() error {
		if tw == nil {
			return nil
		}
		cerr := tw.Close()
		serr := sink.Close()
		if cerr != nil {
			return cerr
		}
		return serr
	}

	ensureOpen := func() error {
		if tw != nil {
			return nil
		}
		var err error
		idx++
		tw, sink, err = openGroup(newOutput, pkg, idx)
		return err
	}

	flush := func() error {
		for _, p := range pending {
			if werr := tw.WriteEntry(p); werr != nil {
				return werr
			}
		}
		pending = pending[:0]
		return nil
	}

	for {
		e, nerr := r.Next()
		if nerr == io.EOF {
			break
		}
		if nerr != nil {
			_ = finalize()
			return nerr
		}

		if e.IsPaxHeader() {
			pending = append(pending, e)
			continue
		}

		if m := boundary.FindStringSubmatch(e.Name); m != nil {
			newPkg := m[1]
			if verr := validatePackageName(newPkg); verr != nil {
				_ = finalize()
				return verr
			}

			if tw == nil {
				pkg = newPkg
			} else if newPkg != pkg {
				// pending holds PAX records decorating this very marker, so
				// they belong to the new group, not the one being closed.
				if cerr := finalize(); cerr != nil {
					return cerr
				}

				tw, sink = nil, nil
				pkg = newPkg
			}
		}

		if eerr := ensureOpen(); eerr != nil {
			return eerr
		}

		if ferr := flush(); ferr != nil {
			_ = finalize()
			return ferr
		}
		if werr := tw.WriteEntry(e); werr != nil {
			_ = finalize()
			return werr
		}
	}

	if ferr := flush(); ferr != nil {
		_ = finalize()
		return ferr
	}

	return finalize()
}

func openGroup(newOutput Factory, pkg string, idx int) (*tarstream.Writer, io.WriteCloser, error) {
	sink, err := newOutput(pkg, idx)
	if err != nil {
		return nil, nil, ErrorIOError.Error(err)
	}
	return tarstream.NewWriter(sink), sink, nil
}

func validatePackageName(pkg string) error {
	if pkg == "" || strings.Contains(pkg, "..") || strings.Contains(pkg, "/") {
		return ErrorBadPackageName.Error()
	}
	return nil
}
