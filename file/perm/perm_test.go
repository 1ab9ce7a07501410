/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package perm_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/nabbar/abtool/file/perm"
)

var _ = Describe("ParseInt64", func() {
	It("parses a regular-file mode", func() {
		p, err := ParseInt64(0644)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.FileMode()).To(Equal(os.FileMode(0644)))
		Expect(p.String()).To(Equal("0644"))
	})

	It("parses an executable mode", func() {
		p, err := ParseInt64(0755)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.FileMode()).To(Equal(os.FileMode(0755)))
	})

	It("masks down to the low 12 bits the way listing.render calls it", func() {
		// tarstream.Entry.Mode carries the full ustar mode field; only the
		// permission + setuid/setgid/sticky bits are meaningful here.
		p, err := ParseInt64(0100644 & 0o7777)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.FileMode()).To(Equal(os.FileMode(0644)))
	})
})
