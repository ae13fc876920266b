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

package suffix

import "sort"

// deepSort sorts n positions already sharing a depth-byte prefix. It
// chooses the blind trie for small groups and an unbounded-depth
// quicksort for larger ones, the same choice qsUnrolledLCP re-applies
// to every sub-partition it produces.
func (c *Context) deepSort(a []int32, depth int) {
	if len(a) <= 1 {
		return
	}

	if c.useBlindSort(len(a)) {
		c.blindSort(a, depth)
		return
	}

	c.qsUnrolledLCP(a, depth)
}

func (c *Context) useBlindSort(n int) bool {
	return n <= c.n/c.params.BlindSortRatio
}

// qsUnrolledLCP is a byte-at-a-time ternary quicksort over full
// suffixes: it carries the common depth into every sub-range it
// produces and falls back to the blind trie (via deepSort) once a
// partition shrinks below the blind-sort limit.
func (c *Context) qsUnrolledLCP(a []int32, depth int) {
	n := len(a)

	if n <= 1 {
		return
	}

	if n < c.params.MkQsThresh {
		c.insertionSortFull(a, depth)
		return
	}

	// A suffix that ends before byte depth reads only pad zeros from
	// here on, which partition3 cannot tell from real zero bytes. Each
	// is a prefix of every longer member, so they go first, shortest
	// (highest position) first.
	ended := 0
	for i := range a {
		if int(a[i])+depth >= c.n {
			a[ended], a[i] = a[i], a[ended]
			ended++
		}
	}

	if ended > 0 {
		e := a[:ended]
		sort.Slice(e, func(i, j int) bool { return e[i] > e[j] })
		c.deepSort(a[ended:], depth)
		return
	}

	lt, gt := c.partition3(a, depth, 1)

	if lt > 0 {
		c.deepSort(a[:lt], depth)
	}

	if gt < n {
		c.deepSort(a[gt:], depth)
	}

	if eq := a[lt:gt]; len(eq) > 0 {
		c.deepSort(eq, depth+1)
	}
}

// insertionSortFull sorts a small group by full, unbounded suffix
// comparison - used once a deep-sort partition is too small for
// quicksort to pay for itself but still above the blind-sort limit.
func (c *Context) insertionSortFull(a []int32, depth int) {
	n := len(a)

	for i := 1; i < n; i++ {
		v := a[i]
		j := i - 1

		for j >= 0 {
			greater, _ := c.suffixCompareFullFrom(a[j], v, depth)
			if !greater {
				break
			}
			a[j+1] = a[j]
			j--
		}

		a[j+1] = v
	}
}

// suffixCompareFullFrom compares two suffixes starting at byte depth
// rather than from the beginning; it is suffixCompareFull restricted
// to the tail both suffixes are known to already share.
func (c *Context) suffixCompareFullFrom(p1, p2 int32, depth int) (bool, int) {
	i := depth

	for {
		e1 := int(p1)+i >= c.n
		e2 := int(p2)+i >= c.n

		if e1 || e2 {
			if e1 && e2 {
				return false, i - depth
			}
			return e2, i - depth
		}

		b1 := c.text[int(p1)+i]
		b2 := c.text[int(p2)+i]

		if b1 != b2 {
			return b1 > b2, i - depth
		}

		i++
	}
}
