/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package perm

import (
	"fmt"
	"math"
	"os"
)

// FileMode returns the file mode represented by the Perm as an os.FileMode.
//
// Example:
// p := Perm(420)
// fmt.Println(p.FileMode()) // Output: -rw-r--r--
func (p Perm) FileMode() os.FileMode {
	return os.FileMode(p.uint32())
}

// String returns a string representation of the Perm as an octal number.
//
// The returned string is in the format of "%#o", where "#" is the octal
// representation of the Perm value.
//
// Example:
// p := Perm(420)
// fmt.Println(p.String()) // Output: "0644"
func (p Perm) String() string {
	return fmt.Sprintf("%#o", uint64(p))
}

// uint32 returns the Perm value as a uint32, clamped to math.MaxUint32 on
// overflow, the width os.FileMode is built from.
func (p Perm) uint32() uint32 {
	if uint64(p) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(p)
}
