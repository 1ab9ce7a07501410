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

// Package envelope implements the Android Backup textual header: parsing and
// emitting the versioned ANDROID BACKUP preamble, driving the optional
// AES-256-CBC layer (via crypt) and the optional zlib layer over a streamed
// tar body.
package envelope

const (
	Magic = "ANDROID BACKUP"

	MinVersion = 1
	MaxVersion = 5

	algNone   = "none"
	algAES256 = "AES-256"

	// masterKeyBlobLen is the decrypted size of the master-key blob: 16-byte
	// tar IV + 32-byte master key + 16-byte stored checksum + 16 bytes of
	// internal padding reserved by the format.
	masterKeyBlobLen = 80

	tarIVLen        = 16
	masterKeyLen    = 32
	storedChecksumLen = 16

	// DefaultSaltBytes and DefaultIterations are the output encryption
	// defaults named in the CLI surface (--output-salt-bytes,
	// --output-iterations).
	DefaultSaltBytes  = 64
	DefaultIterations = 10000
)

// EncParams holds every field present on an encrypted header, and nothing
// else; Descriptor.Enc is nil exactly when Encrypted is false (spec
// invariant: encryption parameters are present iff the archive is encrypted).
type EncParams struct {
	UserSalt          []byte
	ChecksumSalt      []byte
	Iterations        int
	UserKeyIV         []byte
	MasterKeyBlob     []byte // encrypted, as read from (or to be written to) the header

	// TarIV and MasterKey are populated by OpenRead after a successful
	// decrypt, and must be populated by the caller of OpenWrite before the
	// header is emitted.
	TarIV     []byte
	MasterKey []byte
}

// Descriptor is the tagged sum type spec.md calls for: Plain, Compressed,
// Encrypted, and EncryptedCompressed are all the same struct shape, with Enc
// nil for the unencrypted cases.
type Descriptor struct {
	Version    int
	Compressed bool
	Encrypted  bool
	Enc        *EncParams
}

// Validate checks the struct-level invariant independent of any header bytes:
// encrypted descriptors carry encryption parameters, plain ones don't.
func (d *Descriptor) Validate() error {
	if d.Version < MinVersion || d.Version > MaxVersion {
		return ErrorUnsupportedVersion.Error()
	}

	if d.Encrypted && d.Enc == nil {
		return ErrorMalformedHeader.Error()
	}

	if !d.Encrypted && d.Enc != nil {
		return ErrorMalformedHeader.Error()
	}

	return nil
}

// CompressMode selects the body treatment for Rewrap (spec §4.5).
type CompressMode uint8

const (
	ModeDecompress CompressMode = iota
	ModeKeep
	ModeCompress
)

// PassphraseProvider is called at most once per archive opened for reading,
// and at most once per archive opened for writing with encryption (spec
// §5 "shared-resource policy").
type PassphraseProvider func() (string, error)

// StaticPassphrase adapts a plain string into a PassphraseProvider for
// callers that already resolved the passphrase (CLI flag, passphrase file).
func StaticPassphrase(p string) PassphraseProvider {
	return func() (string, error) { return p, nil }
}
