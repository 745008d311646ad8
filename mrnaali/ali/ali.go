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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/biogo/biogo/feat"
	"github.com/pkg/errors"
)

// ErrMalformedField means a field could not be parsed as its declared type.
var ErrMalformedField = errors.New("mrnaali: malformed field")

// ErrLengthMismatch means the number of values in a block list field
// differs from blockCount.
var ErrLengthMismatch = errors.New("mrnaali: block list length mismatch")

// ErrTruncatedRow means fewer fields were given than a record needs.
var ErrTruncatedRow = errors.New("mrnaali: truncated row")

// ErrSinkFailure means the destination of a record did not accept the data.
var ErrSinkFailure = errors.New("mrnaali: failed to write record")

// NumColumns is the number of fields of a record in a row.
const NumColumns = 22

// ColumnNames are the column names in the row order.
var ColumnNames = []string{
	"id",
	"readDir",
	"orientation",
	"hasIntrons",
	"isEst",
	"score",
	"qAcc",
	"qId",
	"qTotalSize",
	"qStart",
	"qEnd",
	"tStartBac",
	"tStartPos",
	"tEndBac",
	"tEndPos",
	"blockCount",
	"blockSizes",
	"qBlockStarts",
	"tBlockBacs",
	"tBlockStarts",
	"startGoods",
	"endGoods",
}

// column indexes
const (
	colID = iota
	colReadDir
	colOrientation
	colHasIntrons
	colIsEst
	colScore
	colQAcc
	colQID
	colQTotalSize
	colQStart
	colQEnd
	colTStartBac
	colTStartPos
	colTEndBac
	colTEndPos
	colBlockCount
	colBlockSizes
	colQBlockStarts
	colTBlockBacs
	colTBlockStarts
	colStartGoods
	colEndGoods
)

// MrnaAli is an mRNA/genomic alignment spanning one or more BACs.
//
// The six block lists all have exactly BlockCount elements. They are views
// of two buffers owned by the record, so they are created together by Load
// and released together by Free.
type MrnaAli struct {
	ID          uint32           // unique ID
	ReadDir     feat.Orientation // read direction of mRNA, +1 or -1
	Orientation feat.Orientation // orientation relative to first BAC
	HasIntrons  bool             // true if alignment has introns
	IsEst       bool             // true if an EST
	Score       int32            // score in something like log-odds form
	QAcc        Accession        // GenBank accession of the mRNA
	QID         uint32           // database ID of the mRNA sequence
	QTotalSize  uint32           // total bases (not just aligned) in the mRNA
	QStart      uint32           // start in mRNA sequence
	QEnd        uint32           // end in mRNA sequence
	TStartBac   uint32           // ID of first genomic BAC in alignment
	TStartPos   uint32           // start position within first BAC
	TEndBac     uint32           // ID of last genomic BAC in alignment
	TEndPos     uint32           // end position within last BAC

	BlockCount   uint32   // number of aligned blocks
	BlockSizes   []uint32 // size of each block
	QBlockStarts []uint32 // start of each block in mRNA
	TBlockBacs   []uint32 // BAC each block starts in
	TBlockStarts []uint32 // position within BAC of each block start
	StartGoods   []uint16 // number of perfect bases at start of block
	EndGoods     []uint16 // number of perfect bases at end of block

	u32 []uint32 // 4*BlockCount
	u16 []uint16 // 2*BlockCount

	freed bool // back in the pool
}

func (r *MrnaAli) String() string {
	return fmt.Sprintf("%d %s %d-%d, score:%d, blocks:%d",
		r.ID, r.QAcc, r.QStart, r.QEnd, r.Score, r.BlockCount)
}

// maxPooledBlocks is the largest number of blocks whose buffers are kept
// when a record goes back to the pool.
const maxPooledBlocks = 1 << 16

var poolMrnaAli = &sync.Pool{New: func() interface{} {
	return &MrnaAli{
		u32: make([]uint32, 0, 64),
		u16: make([]uint16, 0, 32),
	}
}}

// the number of records handed out and not freed yet
var nLive int64

// newMrnaAli returns a reset record with room for n blocks.
func newMrnaAli(n int) *MrnaAli {
	r := poolMrnaAli.Get().(*MrnaAli)
	r.freed = false
	r.allocBlocks(n)
	atomic.AddInt64(&nLive, 1)
	return r
}

// allocBlocks sets BlockCount and points the six lists to the buffers.
func (r *MrnaAli) allocBlocks(n int) {
	n4, n2 := n<<2, n<<1
	if cap(r.u32) < n4 {
		r.u32 = make([]uint32, n4)
	} else {
		r.u32 = r.u32[:n4]
	}
	if cap(r.u16) < n2 {
		r.u16 = make([]uint16, n2)
	} else {
		r.u16 = r.u16[:n2]
	}

	// capacities are limited, so appending to one list never
	// overwrites its neighbour.
	r.BlockCount = uint32(n)
	r.BlockSizes = r.u32[0:n:n]
	r.QBlockStarts = r.u32[n : n<<1 : n<<1]
	r.TBlockBacs = r.u32[n<<1 : n*3 : n*3]
	r.TBlockStarts = r.u32[n*3 : n4 : n4]
	r.StartGoods = r.u16[0:n:n]
	r.EndGoods = r.u16[n:n2:n2]
}

// Reset clears all fields. Buffers are kept for reuse.
func (r *MrnaAli) Reset() {
	r.ID = 0
	r.ReadDir = feat.NotOriented
	r.Orientation = feat.NotOriented
	r.HasIntrons = false
	r.IsEst = false
	r.Score = 0
	r.QAcc = ""
	r.QID = 0
	r.QTotalSize = 0
	r.QStart = 0
	r.QEnd = 0
	r.TStartBac = 0
	r.TStartPos = 0
	r.TEndBac = 0
	r.TEndPos = 0
	r.allocBlocks(0)
}

// Free releases a record and its block lists. It is safe to call with nil,
// and freeing a record again does nothing.
// Call it once for every record returned by Load, CommaIn or Clone,
// the record must not be used after calling this.
func Free(r *MrnaAli) {
	if r == nil || r.freed {
		return
	}
	if cap(r.u32) > maxPooledBlocks<<2 {
		r.u32 = make([]uint32, 0, 64)
		r.u16 = make([]uint16, 0, 32)
	}
	r.Reset()
	r.freed = true
	poolMrnaAli.Put(r)
	atomic.AddInt64(&nLive, -1)
}

// Clone returns a deep copy of the record, which owns its own block lists.
func (r *MrnaAli) Clone() *MrnaAli {
	n := int(r.BlockCount)
	c := newMrnaAli(n)
	c.ID = r.ID
	c.ReadDir = r.ReadDir
	c.Orientation = r.Orientation
	c.HasIntrons = r.HasIntrons
	c.IsEst = r.IsEst
	c.Score = r.Score
	c.QAcc = r.QAcc
	c.QID = r.QID
	c.QTotalSize = r.QTotalSize
	c.QStart = r.QStart
	c.QEnd = r.QEnd
	c.TStartBac = r.TStartBac
	c.TStartPos = r.TStartPos
	c.TEndBac = r.TEndBac
	c.TEndPos = r.TEndPos
	copy(c.BlockSizes, r.BlockSizes)
	copy(c.QBlockStarts, r.QBlockStarts)
	copy(c.TBlockBacs, r.TBlockBacs)
	copy(c.TBlockStarts, r.TBlockStarts)
	copy(c.StartGoods, r.StartGoods)
	copy(c.EndGoods, r.EndGoods)
	return c
}

// Validate checks that all block lists have BlockCount elements
// and the accession is valid.
func (r *MrnaAli) Validate() error {
	if _, err := NewAccession(string(r.QAcc)); err != nil {
		return err
	}

	n := int(r.BlockCount)
	lists := [...]struct {
		col int
		l   int
	}{
		{colBlockSizes, len(r.BlockSizes)},
		{colQBlockStarts, len(r.QBlockStarts)},
		{colTBlockBacs, len(r.TBlockBacs)},
		{colTBlockStarts, len(r.TBlockStarts)},
		{colStartGoods, len(r.StartGoods)},
		{colEndGoods, len(r.EndGoods)},
	}
	for _, l := range lists {
		if l.l != n {
			return errors.Wrapf(ErrLengthMismatch, "%s: %d values, blockCount: %d",
				ColumnNames[l.col], l.l, n)
		}
	}
	return nil
}

// Equal tells whether two records have the same values in all fields.
func (r *MrnaAli) Equal(b *MrnaAli) bool {
	if r.ID != b.ID || r.ReadDir != b.ReadDir || r.Orientation != b.Orientation ||
		r.HasIntrons != b.HasIntrons || r.IsEst != b.IsEst || r.Score != b.Score ||
		r.QAcc != b.QAcc || r.QID != b.QID || r.QTotalSize != b.QTotalSize ||
		r.QStart != b.QStart || r.QEnd != b.QEnd ||
		r.TStartBac != b.TStartBac || r.TStartPos != b.TStartPos ||
		r.TEndBac != b.TEndBac || r.TEndPos != b.TEndPos ||
		r.BlockCount != b.BlockCount {
		return false
	}
	return equalUint32s(r.BlockSizes, b.BlockSizes) &&
		equalUint32s(r.QBlockStarts, b.QBlockStarts) &&
		equalUint32s(r.TBlockBacs, b.TBlockBacs) &&
		equalUint32s(r.TBlockStarts, b.TBlockStarts) &&
		equalUint16s(r.StartGoods, b.StartGoods) &&
		equalUint16s(r.EndGoods, b.EndGoods)
}

func equalUint32s(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func equalUint16s(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// Assert that MrnaAli can be used as a biogo feature.
var _ feat.Feature = (*MrnaAli)(nil)

// Start returns the start of the aligned part of the mRNA.
func (r *MrnaAli) Start() int { return int(r.QStart) }

// End returns the end of the aligned part of the mRNA.
func (r *MrnaAli) End() int { return int(r.QEnd) }

// Len returns the length of the aligned part of the mRNA.
func (r *MrnaAli) Len() int { return int(r.QEnd) - int(r.QStart) }

// Name returns the accession of the mRNA.
func (r *MrnaAli) Name() string { return string(r.QAcc) }

// Description returns a short description.
func (r *MrnaAli) Description() string {
	if r.IsEst {
		return "EST/genomic alignment"
	}
	return "mRNA/genomic alignment"
}

// Location returns nil, the mRNA sequence itself is not a feature.
func (r *MrnaAli) Location() feat.Feature { return nil }
