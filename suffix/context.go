/*
Copyright 2024 The Aazip Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package suffix implements the deep-shallow suffix array construction
// that drives the BWT: the shallow multikey quicksort, the blind-trie
// deep sorter, the anchor/pseudo-anchor acceleration and the bucket
// pointer-copy trick that propagates ordering between buckets.
//
// The text, the suffix array under construction, the bucket table and
// the anchor map are bundled into a single Context value rather than
// kept as package globals, so that two sorts can run concurrently in
// the same process as long as their contexts are distinct (see
// Context's doc comment).
package suffix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Tuning parameters for one suffix array construction. The zero value
// is not valid; use DefaultParams and override individual fields.
type Params struct {
	// AnchorDist is the size of an anchor region. 0 disables anchors
	// entirely; otherwise it must be in [100, 65535].
	AnchorDist int
	// BlindSortRatio gates deep-sort dispatch: a group of n positions
	// uses the blind trie when n <= N/BlindSortRatio.
	BlindSortRatio int
	// ShallowLimit is the depth at which the shallow multikey quicksort
	// hands remaining ties to the deep sorter.
	ShallowLimit int
	// MkQsThresh is the group size below which shallow sort uses
	// insertion sort instead of multikey quicksort. Must be in [0, 30].
	MkQsThresh int
	// WordSize is the number of bytes (1, 2 or 4) compared per
	// quicksort partitioning step in the shallow sorter.
	WordSize int
	// MaxPseudoAnchorOffset bounds the pseudo-anchor search in
	// helped_sort. 0 disables pseudo-anchors.
	MaxPseudoAnchorOffset int
	// B2gRatio guards how large a bucket pseudo-anchors may draw from
	// relative to the group being sorted.
	B2gRatio int
	// UpdateAnchorRanks, when non-zero, lets the anchor-sort routine
	// also refresh AnchorRank entries whose offset did not change.
	UpdateAnchorRanks int
}

// DefaultParams returns the tuning parameters used when none are
// supplied on the command line: AnchorDist 500, BlindSortRatio 2000,
// ShallowLimit = AnchorDist+50, MkQsThresh 20, WordSize 4,
// MaxPseudoAnchorOffset 0 (disabled), B2gRatio 1000, UpdateAnchorRanks 0.
func DefaultParams() Params {
	p := Params{
		AnchorDist:            500,
		BlindSortRatio:        2000,
		MkQsThresh:            20,
		WordSize:              4,
		MaxPseudoAnchorOffset: 0,
		B2gRatio:              1000,
		UpdateAnchorRanks:     0,
	}
	p.ShallowLimit = p.AnchorDist + 50
	return p
}

// Validate rejects tuning parameter combinations the sort core cannot
// run with safely. Every violated constraint is reported at once,
// rather than stopping at the first one, so a caller fixing tuning
// parameters by hand doesn't have to re-run Validate after each fix.
func (p Params) Validate() error {
	var result *multierror.Error

	if p.AnchorDist != 0 && (p.AnchorDist < 100 || p.AnchorDist > 65535) {
		result = multierror.Append(result, fmt.Errorf("AnchorDist must be 0 or in [100, 65535], got %d", p.AnchorDist))
	}

	if p.ShallowLimit < 2 {
		result = multierror.Append(result, fmt.Errorf("ShallowLimit must be at least 2, got %d", p.ShallowLimit))
	}

	if p.MkQsThresh < 0 || p.MkQsThresh > 30 {
		result = multierror.Append(result, fmt.Errorf("MkQsThresh must be in [0, 30], got %d", p.MkQsThresh))
	}

	if p.BlindSortRatio <= 0 {
		result = multierror.Append(result, fmt.Errorf("BlindSortRatio must be positive, got %d", p.BlindSortRatio))
	}

	if p.WordSize != 1 && p.WordSize != 2 && p.WordSize != 4 {
		result = multierror.Append(result, fmt.Errorf("WordSize must be 1, 2 or 4, got %d", p.WordSize))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return "suffix: invalid params: " + strings.Join(msgs, "; ")
	}
	return result
}

// OvershootLen returns the number of zero bytes that must follow the
// text so every unrolled comparator in the shallow sorter can overrun
// safely: 9 + ShallowLimit + 16.
func (p Params) OvershootLen() int {
	return 9 + p.ShallowLimit + 16
}

// PadText appends OvershootLen() zero bytes to src and returns the
// padded buffer. The caller owns the returned slice; src is not
// modified.
func PadText(src []byte, p Params) []byte {
	padded := make([]byte, len(src)+p.OvershootLen())
	copy(padded, src)
	return padded
}

// ftabSize is the number of entries in the double-byte bucket table:
// one slot per 16-bit key c1*256+c2, plus one sentinel slot for
// first(65536) used to compute the size of the last small bucket.
const ftabSize = 65537

// sortedFlagBit marks a small bucket as fully sorted. It is packed
// into bit 30 of an ftab entry; bit 31 is never used by ftab.
const sortedFlagBit = int32(1) << 30

// markerBit is the high bit of an SA entry, reserved as a transient
// marker owned exclusively by the anchor-sort routine for the
// duration of one helped_sort call (see anchor.go).
const markerBit = int32(-1 << 31)

// Context bundles all state for one suffix array construction: the
// padded text, the array under construction, the bucket table and the
// anchor map. Nothing here is package-global; two sorts running
// against two distinct Contexts do not interfere.
type Context struct {
	params Params

	text []byte // length n + overshoot pad
	n    int
	sa   []int32 // length n

	ftab []int32 // length ftabSize

	anchorOffset []uint16
	anchorRank   []int32

	// groupBuf is scratch space; none of the sort routines currently
	// read or write it.
	groupBuf []int32

	// trie is the blind-trie arena for blindSort, reused across calls
	// and reset (truncated) at the start of every call.
	trie blindTrie
}

// NewContext validates params and builds a Context over text (which
// must already carry the required overshoot pad, see PadText) and sa
// (which must have length n). The returned Context does not sort
// anything; sorting is driven by BuildSuffixArray.
func NewContext(text []byte, sa []int32, n int, params Params) (*Context, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if n < 0 || n > len(sa) {
		return nil, errors.New("suffix: sa is shorter than n")
	}

	if len(text) < n+params.OvershootLen() {
		return nil, fmt.Errorf("suffix: text buffer too short for overshoot: need %d, got %d", n+params.OvershootLen(), len(text))
	}

	if n > 0x7FFFFFFF {
		return nil, errors.New("suffix: input exceeds the 2 GiB addressing limit")
	}

	c := &Context{
		params: params,
		text:   text,
		n:      n,
		sa:     sa[:n],
		ftab:   make([]int32, ftabSize),
	}

	if params.AnchorDist > 0 {
		regions := 2 + (n-1+params.AnchorDist-1)/params.AnchorDist
		if n == 0 {
			regions = 2
		}
		c.anchorOffset = make([]uint16, regions)
		c.anchorRank = make([]int32, regions)

		for i := range c.anchorOffset {
			c.anchorOffset[i] = uint16(params.AnchorDist)
		}
	}

	return c, nil
}

// key2 reads the big-endian 16-bit key at text[pos:pos+2].
func (c *Context) key2(pos int) int {
	return int(c.text[pos])<<8 | int(c.text[pos+1])
}

// bucketFirst returns the starting SA index of small bucket k, with
// the sorted flag masked off.
func (c *Context) bucketFirst(k int) int {
	return int(c.ftab[k] &^ sortedFlagBit)
}

// bucketSorted reports whether small bucket k carries the sorted flag.
func (c *Context) bucketSorted(k int) bool {
	return c.ftab[k]&sortedFlagBit != 0
}

// setBucketSorted sets or clears the sorted flag on small bucket k.
func (c *Context) setBucketSorted(k int, sorted bool) {
	if sorted {
		c.ftab[k] |= sortedFlagBit
	} else {
		c.ftab[k] &^= sortedFlagBit
	}
}
