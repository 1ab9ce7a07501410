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

package splitter_test

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	encsha "github.com/nabbar/abtool/encoding/sha256"
	liberr "github.com/nabbar/abtool/errors"
	"github.com/nabbar/abtool/envelope"
	"github.com/nabbar/abtool/splitter"
	"github.com/nabbar/abtool/tarstream"
)

func digest(b []byte) string { return string(encsha.New().Encode(b)) }

var staticPass = envelope.StaticPassphrase("")

func writeOpts() envelope.WriteOptions { return envelope.DefaultWriteOptions() }

func envDescriptor(version int) *envelope.Descriptor {
	return &envelope.Descriptor{Version: version}
}

func readEnvelope(raw []byte) (*envelope.Descriptor, []byte, error) {
	d, r, err := envelope.OpenRead(context.Background(), bytes.NewReader(raw), staticPass, false, nil)
	if err != nil {
		return nil, nil, err
	}
	body, err := io.ReadAll(r)
	return d, body, err
}

// buildTar writes files in order using the standard library as an
// independent fixture generator, the same role it plays in the tarstream
// test suite.
func buildTar(files map[string]string, order []string) []byte {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range order {
		body := files[name]
		Expect(tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(body)),
		})).To(Succeed())
		_, err := tw.Write([]byte(body))
		Expect(err).ToNot(HaveOccurred())
	}
	Expect(tw.Close()).To(Succeed())
	return buf.Bytes()
}

// memFactory is a splitter.Factory backed by in-memory buffers, recording
// the package name and group index it was called with for each group.
type memFactory struct {
	groups []*bytes.Buffer
	pkgs   []string
	idxs   []int
}

func (m *memFactory) factory() splitter.Factory {
	return func(pkg string, idx int) (io.WriteCloser, error) {
		buf := &bytes.Buffer{}
		m.groups = append(m.groups, buf)
		m.pkgs = append(m.pkgs, pkg)
		m.idxs = append(m.idxs, idx)
		return nopCloser{buf}, nil
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func namesIn(raw []byte) []string {
	var names []string
	tr := tar.NewReader(bytes.NewReader(raw))
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		Expect(err).ToNot(HaveOccurred())
		names = append(names, h.Name)
	}
	return names
}

var _ = Describe("Split", func() {
	It("routes a preamble and two app sections into three groups", func() {
		order := []string{
			"manifest.json",
			"apps/com.example.one/_manifest",
			"apps/com.example.one/db/data.db",
			"apps/com.example.two/_manifest",
			"apps/com.example.two/f/file.bin",
		}
		files := map[string]string{
			"manifest.json":                     "root manifest",
			"apps/com.example.one/_manifest":     "manifest one",
			"apps/com.example.one/db/data.db":    "db bytes",
			"apps/com.example.two/_manifest":     "manifest two",
			"apps/com.example.two/f/file.bin":    "file bytes",
		}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		Expect(splitter.Split(r, mf.factory())).To(Succeed())

		Expect(mf.pkgs).To(Equal([]string{"", "com.example.one", "com.example.two"}))
		Expect(mf.idxs).To(Equal([]int{0, 1, 2}))

		Expect(namesIn(mf.groups[0].Bytes())).To(Equal([]string{"manifest.json"}))
		Expect(namesIn(mf.groups[1].Bytes())).To(Equal([]string{
			"apps/com.example.one/_manifest",
			"apps/com.example.one/db/data.db",
		}))
		Expect(namesIn(mf.groups[2].Bytes())).To(Equal([]string{
			"apps/com.example.two/_manifest",
			"apps/com.example.two/f/file.bin",
		}))
	})

	It("opens no preamble group when the archive starts with a marker", func() {
		order := []string{
			"apps/a/_manifest",
			"apps/a/f.dat",
			"apps/b/_manifest",
		}
		files := map[string]string{
			"apps/a/_manifest": "manifest a",
			"apps/a/f.dat":     "data",
			"apps/b/_manifest": "manifest b",
		}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		Expect(splitter.Split(r, mf.factory())).To(Succeed())

		Expect(mf.pkgs).To(Equal([]string{"a", "b"}))
		Expect(mf.idxs).To(Equal([]int{0, 1}))

		Expect(namesIn(mf.groups[0].Bytes())).To(Equal([]string{
			"apps/a/_manifest",
			"apps/a/f.dat",
		}))
		Expect(namesIn(mf.groups[1].Bytes())).To(Equal([]string{
			"apps/b/_manifest",
		}))
	})

	It("does not start a new group on a repeated marker for the same package", func() {
		order := []string{
			"apps/com.example.one/_manifest",
			"apps/com.example.one/_manifest",
			"apps/com.example.one/db/data.db",
		}
		files := map[string]string{
			"apps/com.example.one/_manifest":  "m",
			"apps/com.example.one/db/data.db": "d",
		}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		Expect(splitter.Split(r, mf.factory())).To(Succeed())

		Expect(mf.pkgs).To(Equal([]string{"com.example.one"}))
		Expect(namesIn(mf.groups[0].Bytes())).To(HaveLen(3))
	})

	It("carries a boundary marker's own PAX extended header into the new group, not the closing one", func() {
		// A package name long enough to push "apps/<pkg>/_manifest" past the
		// 100-byte ustar name field forces archive/tar to emit a PAX 'x'
		// record ahead of the header block it decorates (here, the marker
		// itself), exercising the pending-PAX handoff across a boundary.
		longPkg := "com.example." + strings.Repeat("x", 250)
		manifest := "apps/" + longPkg + "/_manifest"
		order := []string{
			"apps/com.example.one/_manifest",
			"apps/com.example.one/db/data.db",
			manifest,
		}
		files := map[string]string{
			"apps/com.example.one/_manifest":  "manifest one",
			"apps/com.example.one/db/data.db": "db bytes",
			manifest:                          "manifest long",
		}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		Expect(splitter.Split(r, mf.factory())).To(Succeed())

		Expect(mf.pkgs).To(Equal([]string{"com.example.one", longPkg}))

		Expect(namesIn(mf.groups[0].Bytes())).To(Equal([]string{
			"apps/com.example.one/_manifest",
			"apps/com.example.one/db/data.db",
		}))
		Expect(namesIn(mf.groups[1].Bytes())).To(Equal([]string{manifest}))
	})

	It("rejects a package name containing '..'", func() {
		order := []string{"apps/../_manifest"}
		files := map[string]string{"apps/../_manifest": "x"}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		err := splitter.Split(r, mf.factory())
		Expect(liberr.IsCode(err, splitter.ErrorBadPackageName)).To(BeTrue())
	})

	It("emits only a preamble group when no marker ever appears", func() {
		order := []string{"a.txt", "b.txt"}
		files := map[string]string{"a.txt": "1", "b.txt": "2"}
		raw := buildTar(files, order)

		mf := &memFactory{}
		r := tarstream.NewReader(bytes.NewReader(raw))
		Expect(splitter.Split(r, mf.factory())).To(Succeed())

		Expect(mf.pkgs).To(Equal([]string{""}))
		Expect(namesIn(mf.groups[0].Bytes())).To(Equal([]string{"a.txt", "b.txt"}))
	})
})

var _ = Describe("Merge", func() {
	It("concatenates every input's entries with a single terminator", func() {
		rawA := buildTar(map[string]string{"a.txt": "1"}, []string{"a.txt"})
		rawB := buildTar(map[string]string{"b.txt": "2"}, []string{"b.txt"})

		inputs := []splitter.Input{
			{Descriptor: envDescriptor(1), Reader: tarstream.NewReader(bytes.NewReader(rawA))},
			{Descriptor: envDescriptor(1), Reader: tarstream.NewReader(bytes.NewReader(rawB))},
		}

		var out bytes.Buffer
		Expect(splitter.Merge(context.Background(), inputs, &out, envDescriptor(1), staticPass, writeOpts())).To(Succeed())

		_, body, err := readEnvelope(out.Bytes())
		Expect(err).ToNot(HaveOccurred())
		Expect(namesIn(body)).To(Equal([]string{"a.txt", "b.txt"}))
	})

	It("rejects inputs carrying different format versions", func() {
		rawA := buildTar(map[string]string{"a.txt": "1"}, []string{"a.txt"})
		rawB := buildTar(map[string]string{"b.txt": "2"}, []string{"b.txt"})

		inputs := []splitter.Input{
			{Descriptor: envDescriptor(1), Reader: tarstream.NewReader(bytes.NewReader(rawA))},
			{Descriptor: envDescriptor(2), Reader: tarstream.NewReader(bytes.NewReader(rawB))},
		}

		var out bytes.Buffer
		err := splitter.Merge(context.Background(), inputs, &out, envDescriptor(1), staticPass, writeOpts())
		Expect(liberr.IsCode(err, splitter.ErrorVersionMismatch)).To(BeTrue())
	})

	It("rejects an empty input list", func() {
		var out bytes.Buffer
		err := splitter.Merge(context.Background(), nil, &out, envDescriptor(1), staticPass, writeOpts())
		Expect(liberr.IsCode(err, splitter.ErrorNoInput)).To(BeTrue())
	})

	It("reassembles content byte-identical to a direct strip, by digest", func() {
		raw := buildTar(map[string]string{"a.txt": "1", "b.txt": "2"}, []string{"a.txt", "b.txt"})

		var wrapped bytes.Buffer
		sink, err := envelope.OpenWrite(context.Background(), &wrapped, envDescriptor(1), staticPass, writeOpts())
		Expect(err).ToNot(HaveOccurred())
		_, err = sink.Write(raw)
		Expect(err).ToNot(HaveOccurred())
		Expect(sink.Close()).To(Succeed())

		var stripped bytes.Buffer
		Expect(envelope.Rewrap(
			context.Background(), bytes.NewReader(wrapped.Bytes()), &stripped,
			staticPass, staticPass, false, envelope.ModeKeep, false, writeOpts(), nil,
		)).To(Succeed())
		_, strippedBody, err := readEnvelope(stripped.Bytes())
		Expect(err).ToNot(HaveOccurred())

		rawA := buildTar(map[string]string{"a.txt": "1"}, []string{"a.txt"})
		rawB := buildTar(map[string]string{"b.txt": "2"}, []string{"b.txt"})
		inputs := []splitter.Input{
			{Descriptor: envDescriptor(1), Reader: tarstream.NewReader(bytes.NewReader(rawA))},
			{Descriptor: envDescriptor(1), Reader: tarstream.NewReader(bytes.NewReader(rawB))},
		}

		var merged bytes.Buffer
		Expect(splitter.Merge(context.Background(), inputs, &merged, envDescriptor(1), staticPass, writeOpts())).To(Succeed())
		_, mergedBody, err := readEnvelope(merged.Bytes())
		Expect(err).ToNot(HaveOccurred())

		Expect(digest(mergedBody)).To(Equal(digest(strippedBody)))
	})
})
