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

package tarstream

import (
	"strconv"
	"strings"
)

// PaxRecords holds the decoded key=value table of one PAX extended header,
// preserving first-seen ordering (spec §3, "ordering preserved as found").
type PaxRecords struct {
	keys   []string
	values map[string]string
}

func newPaxRecords() *PaxRecords {
	return &PaxRecords{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (p *PaxRecords) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Set assigns a value for key, appending it to the ordering if new.
func (p *PaxRecords) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Keys returns the record keys in first-seen order.
func (p *PaxRecords) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Len reports the number of records.
func (p *PaxRecords) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// parsePax decodes a PAX extended-header payload of the form
// "<length> <key>=<value>\n" repeated records, where length counts the
// entire record including its own decimal digits, the space, and the
// trailing newline (POSIX.1-2001).
func parsePax(data []byte) (*PaxRecords, error) {
	recs := newPaxRecords()

	for len(data) > 0 {
		sp := indexByte(data, ' ')
		if sp <= 0 {
			return nil, ErrorPaxMalformed.Error()
		}

		n, err := strconv.Atoi(string(data[:sp]))
		if err != nil || n <= sp || n > len(data) {
			return nil, ErrorPaxMalformed.Error()
		}

		record := data[:n]
		data = data[n:]

		if record[n-1] != '\n' {
			return nil, ErrorPaxMalformed.Error()
		}

		kv := record[sp+1 : n-1]
		eq := indexByte(kv, '=')
		if eq < 0 {
			return nil, ErrorPaxMalformed.Error()
		}

		recs.Set(string(kv[:eq]), string(kv[eq+1:]))
	}

	return recs, nil
}

// encodePax renders recs back into PAX wire format, in key order.
func encodePax(recs *PaxRecords) []byte {
	var sb strings.Builder

	for _, k := range recs.Keys() {
		v, _ := recs.Get(k)
		body := k + "=" + v + "\n"

		// The length prefix is self-referential: guess a width, then grow
		// until the declared length stops changing.
		n := len(body) + 2
		for {
			candidate := len(strconv.Itoa(n)) + 1 + len(body)
			if candidate == n {
				break
			}
			n = candidate
		}

		sb.WriteString(strconv.Itoa(n))
		sb.WriteByte(' ')
		sb.WriteString(body)
	}

	return []byte(sb.String())
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
