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

package crypt

import liberr "github.com/nabbar/abtool/errors"

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgCrypt
	ErrorKeyDerive
	ErrorRandGen
	ErrorAESBlock
	ErrorCBCEncrypt
	ErrorCBCDecrypt
	ErrorPadding
	ErrorUnpadding
	ErrorShortCipherText
	ErrorNotBlockAligned
	ErrorChecksumMismatch
)

func init() {
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "given parameters are empty"
	case ErrorKeyDerive:
		return "PBKDF2 key derivation error"
	case ErrorRandGen:
		return "random byte generation error"
	case ErrorAESBlock:
		return "init AES block cipher error"
	case ErrorCBCEncrypt:
		return "AES-CBC encrypt error"
	case ErrorCBCDecrypt:
		return "AES-CBC decrypt error"
	case ErrorPadding:
		return "PKCS#7 padding error"
	case ErrorUnpadding:
		return "PKCS#7 unpadding error: corrupted passphrase or ciphertext"
	case ErrorShortCipherText:
		return "ciphertext shorter than one block"
	case ErrorNotBlockAligned:
		return "ciphertext is not a multiple of the block size"
	case ErrorChecksumMismatch:
		return "master key checksum does not match either known encoding"
	}

	return ""
}
