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
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

var poolLineBuf = &sync.Pool{New: func() interface{} {
	tmp := make([]byte, 0, 1024)
	return &tmp
}}

// AppendTo appends the record to buf. Fields are separated with sep and the
// last field is followed by lastSep. Each value of a block list is followed
// by a comma, including the last one.
func (r *MrnaAli) AppendTo(buf []byte, sep byte, lastSep byte) []byte {
	buf = strconv.AppendUint(buf, uint64(r.ID), 10)
	buf = append(buf, sep)
	buf = strconv.AppendInt(buf, int64(r.ReadDir), 10)
	buf = append(buf, sep)
	buf = strconv.AppendInt(buf, int64(r.Orientation), 10)
	buf = append(buf, sep)
	buf = appendBool(buf, r.HasIntrons)
	buf = append(buf, sep)
	buf = appendBool(buf, r.IsEst)
	buf = append(buf, sep)
	buf = strconv.AppendInt(buf, int64(r.Score), 10)
	buf = append(buf, sep)
	buf = append(buf, r.QAcc...)
	buf = append(buf, sep)

	for _, v := range [...]uint32{
		r.QID, r.QTotalSize, r.QStart, r.QEnd,
		r.TStartBac, r.TStartPos, r.TEndBac, r.TEndPos,
		r.BlockCount,
	} {
		buf = strconv.AppendUint(buf, uint64(v), 10)
		buf = append(buf, sep)
	}

	buf = appendUint32List(buf, r.BlockSizes)
	buf = append(buf, sep)
	buf = appendUint32List(buf, r.QBlockStarts)
	buf = append(buf, sep)
	buf = appendUint32List(buf, r.TBlockBacs)
	buf = append(buf, sep)
	buf = appendUint32List(buf, r.TBlockStarts)
	buf = append(buf, sep)
	buf = appendUint16List(buf, r.StartGoods)
	buf = append(buf, sep)
	buf = appendUint16List(buf, r.EndGoods)
	buf = append(buf, lastSep)

	return buf
}

// Output writes the record to w. Fields are separated with sep and the last
// field is followed by lastSep. The record is checked with Validate first,
// nothing is written for an invalid record. The whole record is sent to w
// in one Write call, a failed or short write returns an error wrapping
// ErrSinkFailure.
func (r *MrnaAli) Output(w io.Writer, sep byte, lastSep byte) error {
	if err := r.Validate(); err != nil {
		return errors.Wrapf(err, "record %d", r.ID)
	}

	bp := poolLineBuf.Get().(*[]byte)
	buf := r.AppendTo((*bp)[:0], sep, lastSep)

	n, err := w.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}

	*bp = buf
	poolLineBuf.Put(bp)

	if err != nil {
		return errors.Wrapf(ErrSinkFailure, "record %d: %s", r.ID, err)
	}
	return nil
}

// TabOut writes the record as a line in a tab-separated file.
func (r *MrnaAli) TabOut(w io.Writer) error {
	return r.Output(w, '\t', '\n')
}

// CommaOut writes the record as a comma-separated list including a final comma.
func (r *MrnaAli) CommaOut(w io.Writer) error {
	return r.Output(w, ',', ',')
}

// Fields returns the textual fields of the record in column order.
// Load(r.Fields()) returns an equal record.
func (r *MrnaAli) Fields() []string {
	row := make([]string, NumColumns)
	row[colID] = strconv.FormatUint(uint64(r.ID), 10)
	row[colReadDir] = strconv.FormatInt(int64(r.ReadDir), 10)
	row[colOrientation] = strconv.FormatInt(int64(r.Orientation), 10)
	row[colHasIntrons] = string(appendBool(nil, r.HasIntrons))
	row[colIsEst] = string(appendBool(nil, r.IsEst))
	row[colScore] = strconv.FormatInt(int64(r.Score), 10)
	row[colQAcc] = string(r.QAcc)
	for i, v := range [...]uint32{
		r.QID, r.QTotalSize, r.QStart, r.QEnd,
		r.TStartBac, r.TStartPos, r.TEndBac, r.TEndPos,
		r.BlockCount,
	} {
		row[colQID+i] = strconv.FormatUint(uint64(v), 10)
	}
	row[colBlockSizes] = string(appendUint32List(nil, r.BlockSizes))
	row[colQBlockStarts] = string(appendUint32List(nil, r.QBlockStarts))
	row[colTBlockBacs] = string(appendUint32List(nil, r.TBlockBacs))
	row[colTBlockStarts] = string(appendUint32List(nil, r.TBlockStarts))
	row[colStartGoods] = string(appendUint16List(nil, r.StartGoods))
	row[colEndGoods] = string(appendUint16List(nil, r.EndGoods))
	return row
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, '1')
	}
	return append(buf, '0')
}

func appendUint32List(buf []byte, list []uint32) []byte {
	for _, v := range list {
		buf = strconv.AppendUint(buf, uint64(v), 10)
		buf = append(buf, ',')
	}
	return buf
}

func appendUint16List(buf []byte, list []uint16) []byte {
	for _, v := range list {
		buf = strconv.AppendUint(buf, uint64(v), 10)
		buf = append(buf, ',')
	}
	return buf
}
