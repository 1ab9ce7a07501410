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
)

// ctxReader checks ctx on every call, so a caller streaming a large body
// through io.Copy gets a chance to observe cancellation between buffer
// fills instead of only at the start and end of the whole operation.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func wrapReaderCtx(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ctxWriteCloser is the Write-side counterpart of ctxReader; Close is never
// gated on ctx, so a cancelled context still lets callers flush/finalise
// whatever was already written.
type ctxWriteCloser struct {
	ctx context.Context
	wc  io.WriteCloser
}

func wrapWriteCloserCtx(ctx context.Context, wc io.WriteCloser) io.WriteCloser {
	return &ctxWriteCloser{ctx: ctx, wc: wc}
}

func (c *ctxWriteCloser) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.wc.Write(p)
}

func (c *ctxWriteCloser) Close() error {
	return c.wc.Close()
}
