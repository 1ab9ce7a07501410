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
	"crypto/subtle"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/abtool/crypt"
)

// constantTimeEqualLen reports whether a and b hold the same bytes, without
// leaking timing information derived from where they first differ; unlike
// subtle.ConstantTimeCompare it tolerates a length mismatch by reporting
// false instead of panicking, since a caller here never already knows the
// two checksums are the same length.
func constantTimeEqualLen(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// logEntry returns e, or a discard entry when e is nil, so every call site
// in this file can log unconditionally without the core depending on a
// process-wide logger.
func logEntry(e *logrus.Entry) *logrus.Entry {
	if e != nil {
		return e
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// packMasterKeyBlob lays out the 80-byte plaintext blob: tar IV (16) +
// master key (32) + stored checksum (16) + 16 bytes of zero padding, ahead
// of the cipher's own PKCS#7 padding.
func packMasterKeyBlob(tarIV, masterKey, checksum []byte) []byte {
	blob := make([]byte, 0, tarIVLen+masterKeyLen+storedChecksumLen+16)
	blob = append(blob, tarIV...)
	blob = append(blob, masterKey...)
	blob = append(blob, checksum...)
	blob = append(blob, make([]byte, 16)...)
	return blob
}

func unpackMasterKeyBlob(blob []byte) (tarIV, masterKey, checksum []byte, err error) {
	if len(blob) != masterKeyBlobLen {
		return nil, nil, nil, ErrorWrongPassphrase.Error()
	}

	tarIV = blob[:tarIVLen]
	masterKey = blob[tarIVLen : tarIVLen+masterKeyLen]
	checksum = blob[tarIVLen+masterKeyLen : tarIVLen+masterKeyLen+storedChecksumLen]
	return tarIV, masterKey, checksum, nil
}

// decryptMasterKeyBlob derives the user key, decrypts and unpads the 80-byte
// blob under it, and verifies the stored checksum against both candidate
// encodings unless ignoreChecksum is set. log receives a Warn entry when the
// stored checksum only matches the non-default (plain, non-doubled) variant,
// and another when ignoreChecksum bypasses an otherwise-failing check.
func decryptMasterKeyBlob(e *EncParams, passphrase string, ignoreChecksum bool, log *logrus.Entry) error {
	userKey := crypt.DeriveUserKey(passphrase, e.UserSalt, e.Iterations)

	var iv [16]byte
	if len(e.UserKeyIV) != 16 {
		return ErrorMalformedHeader.Error()
	}
	copy(iv[:], e.UserKeyIV)

	c, err := crypt.New(userKey, iv)
	if err != nil {
		return ErrorIOError.Error(err)
	}

	plain, err := c.Decode(e.MasterKeyBlob)
	if err != nil {
		return ErrorWrongPassphrase.Error(err)
	}

	tarIV, masterKey, checksum, err := unpackMasterKeyBlob(plain)
	if err != nil {
		return err
	}

	doubled, undoubled := crypt.CandidateChecksums(masterKey, e.ChecksumSalt, e.Iterations)
	switch {
	case constantTimeEqualLen(doubled, checksum):
		// default variant matched, nothing to warn about.
	case constantTimeEqualLen(undoubled, checksum):
		logEntry(log).Warn("master key checksum matched only the non-doubling variant")
	case ignoreChecksum:
		logEntry(log).Warn("master key checksum matched neither variant, proceeding because --ignore-checksum is set")
	default:
		return ErrorCorruptedEncryptedHeader.Error()
	}

	e.TarIV = tarIV
	e.MasterKey = masterKey
	return nil
}

// encryptMasterKeyBlob computes the doubling-variant checksum (spec §9,
// decision recorded in DESIGN.md), packs the blob, and encrypts it under a
// freshly derived user key.
func encryptMasterKeyBlob(e *EncParams, passphrase string) error {
	userKey := crypt.DeriveUserKey(passphrase, e.UserSalt, e.Iterations)

	var iv [16]byte
	copy(iv[:], e.UserKeyIV)

	c, err := crypt.New(userKey, iv)
	if err != nil {
		return ErrorIOError.Error(err)
	}

	checksum, _ := crypt.CandidateChecksums(e.MasterKey, e.ChecksumSalt, e.Iterations)

	blob := packMasterKeyBlob(e.TarIV, e.MasterKey, checksum)

	enc, err := c.Encode(blob)
	if err != nil {
		return ErrorIOError.Error(err)
	}

	e.MasterKeyBlob = enc
	return nil
}

// generateEncParams fills in fresh random key material for a new encrypted
// archive (spec §4.1 "Write path"): user salt, checksum salt, user-key IV,
// tar IV, and a 32-byte master key.
func generateEncParams(saltBytes, iterations int) (*EncParams, error) {
	userSalt, err := crypt.GenRandom(saltBytes)
	if err != nil {
		return nil, err
	}
	checksumSalt, err := crypt.GenRandom(saltBytes)
	if err != nil {
		return nil, err
	}
	userKeyIV, err := crypt.GenRandom(16)
	if err != nil {
		return nil, err
	}
	tarIV, err := crypt.GenRandom(tarIVLen)
	if err != nil {
		return nil, err
	}
	masterKey, err := crypt.GenRandom(masterKeyLen)
	if err != nil {
		return nil, err
	}

	return &EncParams{
		UserSalt:     userSalt,
		ChecksumSalt: checksumSalt,
		Iterations:   iterations,
		UserKeyIV:    userKeyIV,
		TarIV:        tarIV,
		MasterKey:    masterKey,
	}, nil
}
