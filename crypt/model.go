/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
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

package crypt

import (
	"crypto/cipher"
)

type crt struct {
	blk cipher.Block
	iv  []byte
}

func (o *crt) blockSize() int {
	return o.blk.BlockSize()
}

func (o *crt) Encode(p []byte) ([]byte, error) {
	padded, err := pkcs7Pad(p, o.blockSize())
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(o.blk, o.iv).CryptBlocks(out, padded)
	return out, nil
}

func (o *crt) Decode(p []byte) ([]byte, error) {
	bs := o.blockSize()

	if len(p) < bs {
		return nil, ErrorShortCipherText.Error()
	}
	if len(p)%bs != 0 {
		return nil, ErrorNotBlockAligned.Error()
	}

	out := make([]byte, len(p))
	cipher.NewCBCDecrypter(o.blk, o.iv).CryptBlocks(out, p)

	return pkcs7Unpad(out, bs)
}

// pkcs7Pad appends between 1 and blockSize padding bytes, each equal to the
// pad length, so the result is always a multiple of blockSize.
func pkcs7Pad(p []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > 255 {
		return nil, ErrorPadding.Error()
	}

	padLen := blockSize - (len(p) % blockSize)
	out := make([]byte, len(p)+padLen)
	copy(out, p)

	for i := len(p); i < len(out); i++ {
		out[i] = byte(padLen)
	}

	return out, nil
}

// pkcs7Unpad validates and strips the trailing PKCS#7 padding. A malformed
// pad is reported as ErrorUnpadding: it is the only signal the envelope layer
// gets that the passphrase, not the bytes, was wrong.
func pkcs7Unpad(p []byte, blockSize int) ([]byte, error) {
	if len(p) == 0 || len(p)%blockSize != 0 {
		return nil, ErrorUnpadding.Error()
	}

	padLen := int(p[len(p)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(p) {
		return nil, ErrorUnpadding.Error()
	}

	for _, b := range p[len(p)-padLen:] {
		if int(b) != padLen {
			return nil, ErrorUnpadding.Error()
		}
	}

	return p[:len(p)-padLen], nil
}
