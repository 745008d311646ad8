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
	"bufio"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// List is an ordered list of records, which owns all its records.
type List []*MrnaAli

// FreeList frees all records of a list and clears the list.
// It is safe to call with nil or an empty list.
func FreeList(l *List) {
	if l == nil {
		return
	}
	for i, r := range *l {
		Free(r)
		(*l)[i] = nil
	}
	*l = nil
}

// CommaIn parses a record written by CommaOut. A trailing line break is ignored.
// Block lists are delimited with the value of blockCount.
func CommaIn(line string) (*MrnaAli, error) {
	line = strings.TrimRight(line, "\r\n")
	items := strings.Split(line, ",")

	if len(items) < colBlockSizes+1 {
		return nil, errors.Wrapf(ErrTruncatedRow, "%d comma-separated values", len(items))
	}

	blockCount, err := parseUint32(items, colBlockCount)
	if err != nil {
		return nil, err
	}
	n := int(blockCount)

	// each list: n values and the empty item between the list's final comma
	// and the field separator. The final separator leaves one more empty item.
	need := colBlockSizes + (colEndGoods-colBlockSizes+1)*(n+1) + 1
	if len(items) != need {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d comma-separated values, %d expected for blockCount: %d",
			len(items), need, n)
	}

	row := make([]string, NumColumns)
	copy(row, items[:colBlockSizes])

	var list []string
	i := colBlockSizes
	for col := colBlockSizes; col <= colEndGoods; col++ {
		list = items[i : i+n]
		if items[i+n] != "" {
			return nil, errors.Wrapf(ErrMalformedField, "%s: missing separator after %d values",
				ColumnNames[col], n)
		}
		if n > 0 {
			row[col] = strings.Join(list, ",") + ","
		}
		i += n + 1
	}
	if items[i] != "" {
		return nil, errors.Wrapf(ErrMalformedField, "unexpected data after last field: %q", items[i])
	}

	return Load(row)
}

// BufferSize is the size of the line buffer for reading files.
var BufferSize = 1 << 20

// LoadAll reads all records from a tab-separated file.
// Compressed files and "-" for stdin are supported.
func LoadAll(file string) (List, error) {
	return LoadAllByChar(file, '\t')
}

// LoadAllByChar reads all records from a file with fields separated by sep.
// Empty lines are skipped. The block lists contain commas, so records
// written by CommaOut should be parsed with CommaIn instead.
func LoadAllByChar(file string, sep byte) (List, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file)
	}

	list := make(List, 0, 1024)
	row := make([]string, NumColumns+1)

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 64<<10), BufferSize)
	var line string
	var nLine int
	var r *MrnaAli
	for scanner.Scan() {
		nLine++
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		SplitFields(line, sep, &row)
		r, err = Load(row)
		if err != nil {
			FreeList(&list)
			fh.Close()
			return nil, errors.Wrapf(err, "%s: line %d", file, nLine)
		}
		list = append(list, r)
	}
	if err = scanner.Err(); err != nil {
		FreeList(&list)
		fh.Close()
		return nil, errors.Wrapf(err, "read %s", file)
	}

	return list, fh.Close()
}

// SplitFields splits s by sep into at most cap(*a) fields, reusing *a.
func SplitFields(s string, sep byte, a *[]string) {
	n := cap(*a)
	*a = (*a)[:n]

	n--
	i := 0
	var m int
	for i < n {
		m = strings.IndexByte(s, sep)
		if m < 0 {
			break
		}
		(*a)[i] = s[:m]
		s = s[m+1:]
		i++
	}
	(*a)[i] = s

	*a = (*a)[:i+1]
}

// ByScore sorts records by score, then by ID.
type ByScore List

func (l ByScore) Len() int      { return len(l) }
func (l ByScore) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ByScore) Less(i, j int) bool {
	if l[i].Score == l[j].Score {
		return l[i].ID < l[j].ID
	}
	return l[i].Score < l[j].Score
}

// ByQAcc sorts records by accession, then by query start.
type ByQAcc List

func (l ByQAcc) Len() int      { return len(l) }
func (l ByQAcc) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ByQAcc) Less(i, j int) bool {
	if l[i].QAcc == l[j].QAcc {
		return l[i].QStart < l[j].QStart
	}
	return l[i].QAcc < l[j].QAcc
}

// ByTarget sorts records by the first BAC and the start position in it.
type ByTarget List

func (l ByTarget) Len() int      { return len(l) }
func (l ByTarget) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ByTarget) Less(i, j int) bool {
	if l[i].TStartBac == l[j].TStartBac {
		return l[i].TStartPos < l[j].TStartPos
	}
	return l[i].TStartBac < l[j].TStartBac
}
