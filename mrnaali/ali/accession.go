// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package ali

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxAccessionLen is the maximum length of a GenBank accession in a record.
const MaxAccessionLen = 12

// Accession is a GenBank accession of at most MaxAccessionLen bytes.
// It never contains tabs, commas or line breaks.
type Accession string

// NewAccession checks s and returns it as an Accession.
func NewAccession(s string) (Accession, error) {
	if len(s) > MaxAccessionLen {
		return "", errors.Wrapf(ErrMalformedField,
			"qAcc: %q longer than %d bytes", s, MaxAccessionLen)
	}
	if strings.ContainsAny(s, "\t,\r\n") {
		return "", errors.Wrapf(ErrMalformedField, "qAcc: %q contains a separator", s)
	}
	return Accession(s), nil
}
