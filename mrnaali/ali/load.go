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
	"strconv"
	"strings"

	"github.com/biogo/biogo/feat"
	"github.com/pkg/errors"
)

// Load creates a record from a row of NumColumns textual fields, such as a row
// fetched with "select * from mrnaAli", or a tab-separated line split into
// fields. Extra fields are ignored.
//
// Each block list field is a comma-separated list of exactly blockCount
// unsigned integers; a trailing comma is allowed.
//
// Either a complete record or an error is returned. Dispose of the record
// with Free() or FreeList().
func Load(row []string) (*MrnaAli, error) {
	if len(row) < NumColumns {
		return nil, errors.Wrapf(ErrTruncatedRow, "%d fields given, %d needed", len(row), NumColumns)
	}

	blockCount, err := parseUint32(row, colBlockCount)
	if err != nil {
		return nil, err
	}
	n := int(blockCount)

	// check the list sizes before allocating anything
	var c int
	for col := colBlockSizes; col <= colEndGoods; col++ {
		c = countListItems(row[col])
		if c != n {
			return nil, errors.Wrapf(ErrLengthMismatch, "%s: %d values, blockCount: %d",
				ColumnNames[col], c, n)
		}
	}

	r := newMrnaAli(n)
	if err = r.parseScalars(row); err != nil {
		Free(r)
		return nil, err
	}
	for col, list := range [...][]uint32{r.BlockSizes, r.QBlockStarts, r.TBlockBacs, r.TBlockStarts} {
		if err = parseUint32List(row[colBlockSizes+col], colBlockSizes+col, list); err != nil {
			Free(r)
			return nil, err
		}
	}
	if err = parseUint16List(row[colStartGoods], colStartGoods, r.StartGoods); err != nil {
		Free(r)
		return nil, err
	}
	if err = parseUint16List(row[colEndGoods], colEndGoods, r.EndGoods); err != nil {
		Free(r)
		return nil, err
	}

	return r, nil
}

func (r *MrnaAli) parseScalars(row []string) error {
	var err error

	if r.ID, err = parseUint32(row, colID); err != nil {
		return err
	}
	if r.ReadDir, err = parseOrientation(row, colReadDir); err != nil {
		return err
	}
	if r.Orientation, err = parseOrientation(row, colOrientation); err != nil {
		return err
	}
	if r.HasIntrons, err = parseBool(row, colHasIntrons); err != nil {
		return err
	}
	if r.IsEst, err = parseBool(row, colIsEst); err != nil {
		return err
	}

	score, err := strconv.ParseInt(row[colScore], 10, 32)
	if err != nil {
		return malformed(colScore, row[colScore])
	}
	r.Score = int32(score)

	if r.QAcc, err = NewAccession(row[colQAcc]); err != nil {
		return err
	}

	fields := [...]*uint32{
		&r.QID, &r.QTotalSize, &r.QStart, &r.QEnd,
		&r.TStartBac, &r.TStartPos, &r.TEndBac, &r.TEndPos,
	}
	for i, p := range fields {
		if *p, err = parseUint32(row, colQID+i); err != nil {
			return err
		}
	}
	return nil
}

func malformed(col int, s string) error {
	return errors.Wrapf(ErrMalformedField, "%s: %q", ColumnNames[col], s)
}

func parseUint32(row []string, col int) (uint32, error) {
	v, err := strconv.ParseUint(row[col], 10, 32)
	if err != nil {
		return 0, malformed(col, row[col])
	}
	return uint32(v), nil
}

func parseOrientation(row []string, col int) (feat.Orientation, error) {
	v, err := strconv.ParseInt(row[col], 10, 8)
	if err != nil || v < -1 || v > 1 {
		return feat.NotOriented, malformed(col, row[col])
	}
	return feat.Orientation(v), nil
}

func parseBool(row []string, col int) (bool, error) {
	switch row[col] {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, malformed(col, row[col])
}

// countListItems returns the number of values in a list field.
func countListItems(s string) int {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return 0
	}
	return strings.Count(s, ",") + 1
}

// parseUint32List parses a list field into list, whose length
// has been checked with countListItems.
func parseUint32List(s string, col int, list []uint32) error {
	var i, j int
	var v uint64
	var err error
	for k := range list {
		j = strings.IndexByte(s[i:], ',')
		if j < 0 {
			j = len(s)
		} else {
			j += i
		}
		v, err = strconv.ParseUint(s[i:j], 10, 32)
		if err != nil {
			return errors.Wrapf(ErrMalformedField, "%s: value #%d: %q", ColumnNames[col], k+1, s[i:j])
		}
		list[k] = uint32(v)
		i = j + 1
	}
	return nil
}

func parseUint16List(s string, col int, list []uint16) error {
	var i, j int
	var v uint64
	var err error
	for k := range list {
		j = strings.IndexByte(s[i:], ',')
		if j < 0 {
			j = len(s)
		} else {
			j += i
		}
		v, err = strconv.ParseUint(s[i:j], 10, 16)
		if err != nil {
			return errors.Wrapf(ErrMalformedField, "%s: value #%d: %q", ColumnNames[col], k+1, s[i:j])
		}
		list[k] = uint16(v)
		i = j + 1
	}
	return nil
}
