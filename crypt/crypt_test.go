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

package crypt_test

import (
	"bytes"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/abtool/crypt"
	liberr "github.com/nabbar/abtool/errors"
)

func fixedKeyIV() ([32]byte, [16]byte) {
	var key [32]byte
	var iv [16]byte
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(0x80 + i)
	}
	return key, iv
}

var _ = Describe("Cipher", func() {
	var (
		key [32]byte
		iv  [16]byte
		c   crypt.Cipher
	)

	BeforeEach(func() {
		key, iv = fixedKeyIV()
		var err error
		c, err = crypt.New(key, iv)
		Expect(err).ToNot(HaveOccurred())
	})

	DescribeTable("Encode/Decode round-trips for any length",
		func(size int) {
			plain := bytes.Repeat([]byte{0x5A}, size)

			enc, err := c.Encode(plain)
			Expect(err).ToNot(HaveOccurred())
			Expect(len(enc) % 16).To(Equal(0))
			Expect(len(enc)).To(BeNumerically(">", 0))

			dec, err := c.Decode(enc)
			Expect(err).ToNot(HaveOccurred())
			Expect(dec).To(Equal(plain))
		},
		Entry("empty", 0),
		Entry("one byte", 1),
		Entry("exactly one block", 16),
		Entry("one block plus one byte", 17),
		Entry("several blocks", 80),
	)

	It("rejects ciphertext shorter than one block", func() {
		_, err := c.Decode([]byte{1, 2, 3})
		Expect(liberr.IsCode(err, crypt.ErrorShortCipherText)).To(BeTrue())
	})

	It("rejects ciphertext not aligned to the block size", func() {
		_, err := c.Decode(bytes.Repeat([]byte{0}, 20))
		Expect(liberr.IsCode(err, crypt.ErrorNotBlockAligned)).To(BeTrue())
	})

	It("rejects ciphertext decrypted under the wrong key as bad padding", func() {
		plain := []byte("the quick brown fox jumps over the lazy dog")
		enc, err := c.Encode(plain)
		Expect(err).ToNot(HaveOccurred())

		wrongKey, _ := fixedKeyIV()
		wrongKey[0] ^= 0xFF
		wrong, err := crypt.New(wrongKey, iv)
		Expect(err).ToNot(HaveOccurred())

		_, err = wrong.Decode(enc)
		Expect(err).To(HaveOccurred())
	})

	Context("streaming Reader/Writer", func() {
		It("agrees with the one-shot Encode/Decode pair", func() {
			plain := bytes.Repeat([]byte("0123456789"), 100) // 1000 bytes, not block-aligned

			var out bytes.Buffer
			wc := c.Writer(&out)
			n, err := wc.Write(plain)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(len(plain)))
			Expect(wc.Close()).To(Succeed())

			oneShot, err := c.Encode(plain)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Bytes()).To(Equal(oneShot))

			rc := c.Reader(bytes.NewReader(out.Bytes()))
			got, err := io.ReadAll(rc)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(plain))
		})

		It("handles writes split across many small Write calls", func() {
			plain := []byte("a slightly awkward length of plain text, 49 bytes")
			Expect(len(plain)).To(Equal(49))

			var out bytes.Buffer
			wc := c.Writer(&out)
			for _, b := range plain {
				_, err := wc.Write([]byte{b})
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(wc.Close()).To(Succeed())

			rc := c.Reader(bytes.NewReader(out.Bytes()))
			got, err := io.ReadAll(rc)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(plain))
		})

		It("refuses writes after Close", func() {
			var out bytes.Buffer
			wc := c.Writer(&out)
			Expect(wc.Close()).To(Succeed())

			_, err := wc.Write([]byte("too late"))
			Expect(err).To(HaveOccurred())
		})

		It("tolerates reads in arbitrarily small chunks", func() {
			plain := bytes.Repeat([]byte{0x11, 0x22, 0x33}, 50)

			var out bytes.Buffer
			wc := c.Writer(&out)
			_, err := wc.Write(plain)
			Expect(err).ToNot(HaveOccurred())
			Expect(wc.Close()).To(Succeed())

			rc := c.Reader(bytes.NewReader(out.Bytes()))
			var got bytes.Buffer
			buf := make([]byte, 1)
			for {
				n, rerr := rc.Read(buf)
				got.Write(buf[:n])
				if rerr == io.EOF {
					break
				}
				Expect(rerr).ToNot(HaveOccurred())
			}
			Expect(got.Bytes()).To(Equal(plain))
		})
	})
})

var _ = Describe("Key derivation", func() {
	It("is deterministic for the same passphrase, salt, and iteration count", func() {
		salt := []byte("0123456789abcdef")
		a := crypt.DeriveUserKey("hunter2", salt, 1000)
		b := crypt.DeriveUserKey("hunter2", salt, 1000)
		Expect(a).To(Equal(b))
	})

	It("differs for different passphrases", func() {
		salt := []byte("0123456789abcdef")
		a := crypt.DeriveUserKey("hunter2", salt, 1000)
		b := crypt.DeriveUserKey("hunter3", salt, 1000)
		Expect(a).ToNot(Equal(b))
	})
})

var _ = Describe("Master-key checksum", func() {
	It("verifies against both candidate encodings", func() {
		masterKey := bytes.Repeat([]byte{0x9A}, 32) // high-bit bytes, exercises the doubling path
		salt := []byte("checksum-salt-0123456789abcdef0")

		withDoubling, plain := crypt.CandidateChecksums(masterKey, salt, 500)
		Expect(withDoubling).ToNot(Equal(plain))

		Expect(crypt.VerifyChecksum(masterKey, salt, 500, withDoubling)).To(BeTrue())
		Expect(crypt.VerifyChecksum(masterKey, salt, 500, plain)).To(BeTrue())
	})

	It("rejects a checksum computed under a different master key", func() {
		salt := []byte("checksum-salt-0123456789abcdef0")
		a := bytes.Repeat([]byte{0x01}, 32)
		b := bytes.Repeat([]byte{0x02}, 32)

		withDoubling, _ := crypt.CandidateChecksums(a, salt, 500)
		Expect(crypt.VerifyChecksum(b, salt, 500, withDoubling)).To(BeFalse())
	})
})

var _ = Describe("GenRandom", func() {
	It("returns the requested number of bytes", func() {
		b, err := crypt.GenRandom(32)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(HaveLen(32))
	})

	It("does not repeat across calls", func() {
		a, err := crypt.GenRandom(32)
		Expect(err).ToNot(HaveOccurred())
		b, err := crypt.GenRandom(32)
		Expect(err).ToNot(HaveOccurred())
		Expect(a).ToNot(Equal(b))
	})
})
