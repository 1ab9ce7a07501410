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

// Package obslog wraps sirupsen/logrus with the handful of structured
// fields the driver and core packages share (operation, file, version,
// encrypted, compressed), so a core package logs through a plain
// *logrus.Entry instead of reaching for a process-wide global.
package obslog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Entry writing text-formatted lines to w at level,
// with no fields set. Passing a nil w defaults to os.Stderr.
func New(w io.Writer, level logrus.Level) *logrus.Entry {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return logrus.NewEntry(l)
}

// Discard is the nil-safe default every core package falls back to when no
// logger is supplied: it never writes anywhere.
func Discard() *logrus.Entry {
	return New(io.Discard, logrus.PanicLevel)
}

// Operation tags the common fields for one archive operation (ls, rewrap,
// split, merge, unwrap, wrap) so every log line from a single invocation
// shares them.
func Operation(e *logrus.Entry, op, file string, version int, encrypted, compressed bool) *logrus.Entry {
	if e == nil {
		e = Discard()
	}
	return e.WithFields(logrus.Fields{
		"operation":  op,
		"file":       file,
		"version":    version,
		"encrypted":  encrypted,
		"compressed": compressed,
	})
}
