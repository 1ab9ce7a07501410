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
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Rewrap re-emits src with a caller-chosen encryption/compression
// combination (spec §4.5). ModeKeep bypasses inflate/deflate entirely,
// streaming the post-cipher body bytes verbatim, and is only legal when
// wantEncrypt matches the input's own encryption flag — changing the
// encryption layer requires decoding it, which ModeKeep by definition
// skips. The other two modes read through the full decompressed tar
// stream and let OpenWrite re-deflate (or not) on the way out, and may
// freely change the encryption flag. ctx is checked on every byte copied.
// log is forwarded to OpenRead for the master-key-checksum Warn path; a nil
// log is treated as a discard logger.
func Rewrap(ctx context.Context, src io.Reader, dst io.Writer, inPass, outPass PassphraseProvider, wantEncrypt bool, mode CompressMode, ignoreChecksum bool, opt WriteOptions, log *logrus.Entry) error {
	if mode == ModeKeep {
		return rewrapKeep(ctx, src, dst, inPass, outPass, wantEncrypt, ignoreChecksum, opt, log)
	}

	d, body, err := OpenRead(ctx, src, inPass, ignoreChecksum, log)
	if err != nil {
		return err
	}

	out := &Descriptor{
		Version:    d.Version,
		Compressed: mode == ModeCompress,
		Encrypted:  wantEncrypt,
	}

	sink, err := OpenWrite(ctx, dst, out, outPass, opt)
	if err != nil {
		return err
	}

	if _, err = io.Copy(sink, body); err != nil {
		_ = sink.Close()
		return ErrorIOError.Error(err)
	}

	return sink.Close()
}

func rewrapKeep(ctx context.Context, src io.Reader, dst io.Writer, inPass, outPass PassphraseProvider, wantEncrypt bool, ignoreChecksum bool, opt WriteOptions, log *logrus.Entry) error {
	d, body, err := openCipherBody(src, inPass, ignoreChecksum, log)
	if err != nil {
		return err
	}

	if d.Encrypted != wantEncrypt {
		return ErrorModeKeepMismatch.Error()
	}

	out := &Descriptor{
		Version:    d.Version,
		Compressed: d.Compressed,
		Encrypted:  wantEncrypt,
	}

	sink, err := openCipherWrite(dst, out, outPass, opt)
	if err != nil {
		return err
	}

	if _, err = io.Copy(wrapWriteCloserCtx(ctx, sink), wrapReaderCtx(ctx, body)); err != nil {
		_ = sink.Close()
		return ErrorIOError.Error(err)
	}

	return sink.Close()
}

// Strip composes OpenRead + OpenWrite(Plain) to produce an archive with
// compression and encryption both disabled (spec §4.4 invariant: merge(split(S))
// == strip(S)).
func Strip(ctx context.Context, src io.Reader, dst io.Writer, inPass PassphraseProvider, ignoreChecksum bool, log *logrus.Entry) error {
	return Rewrap(ctx, src, dst, inPass, StaticPassphrase(""), false, ModeDecompress, ignoreChecksum, DefaultWriteOptions(), log)
}
