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

// shallowSort sorts the n positions in a by the suffix bytes from
// depth to ShallowLimit-1. Groups still tied at ShallowLimit are
// handed to helpedSort. WordSize (1, 2 or 4) selects how many bytes
// are compared per partitioning step; all three variants share this
// one implementation since a big-endian multi-byte key preserves
// lexicographic order just as well as a per-byte unrolled comparator.
// base is the absolute SA index of a[0], threaded through only so
// helpedSort can translate a tied run back into anchor-map ranks.
func (c *Context) shallowSort(a []int32, depth, base int) {
	for {
		n := len(a)

		if n <= 1 {
			return
		}

		if n < c.params.MkQsThresh {
			c.insertionSortLCP(a, depth, base)
			return
		}

		w := c.params.WordSize

		if depth+w > c.params.ShallowLimit {
			// Cannot advance a full word without crossing the limit;
			// fall back to the byte-at-a-time insertion sort so we
			// stop exactly at ShallowLimit.
			c.insertionSortLCP(a, depth, base)
			return
		}

		lt, gt := c.partition3(a, depth, w)

		if lt > 0 {
			c.shallowSort(a[:lt], depth, base)
		}

		if gt < n {
			c.shallowSort(a[gt:], depth, base+gt)
		}

		// Tail-recurse into the equal partition by advancing depth
		// instead of growing the call stack.
		base += lt
		a = a[lt:gt]
		newDepth := depth + w

		if newDepth >= c.params.ShallowLimit {
			if len(a) > 0 {
				c.dispatchHelp(a, newDepth, base)
			}
			return
		}

		depth = newDepth
	}
}

// wordKey reads up to w (1, 2 or 4) bytes at text[pos+depth:] as a
// big-endian unsigned integer. Reading past n is safe: the overshoot
// pad guarantees zero bytes.
func (c *Context) wordKey(pos, depth, w int) uint32 {
	p := pos + depth
	switch w {
	case 1:
		return uint32(c.text[p])
	case 2:
		return uint32(c.text[p])<<8 | uint32(c.text[p+1])
	default:
		return uint32(c.text[p])<<24 | uint32(c.text[p+1])<<16 | uint32(c.text[p+2])<<8 | uint32(c.text[p+3])
	}
}

// partition3 performs a ternary Bentley-Sedgewick partition of a by
// the w-byte key at the given depth. The pivot is Tukey's ninther for
// n > 30, the median of three otherwise. It returns [lt, gt) such
// that a[:lt] < pivot, a[lt:gt] == pivot, a[gt:] > pivot.
func (c *Context) partition3(a []int32, depth, w int) (int, int) {
	n := len(a)

	med3 := func(i, j, k int) int {
		ki, kj, kk := c.wordKey(int(a[i]), depth, w), c.wordKey(int(a[j]), depth, w), c.wordKey(int(a[k]), depth, w)

		if ki < kj {
			if kj < kk {
				return j
			} else if ki < kk {
				return k
			}
			return i
		}

		if kj > kk {
			return j
		} else if ki > kk {
			return k
		}

		return i
	}

	pivotIdx := n / 2

	if n > 30 {
		lo, mid, hi := 0, n/2, n-1
		d := n / 8
		lo = med3(lo, lo+d, lo+2*d)
		hi = med3(hi-2*d, hi-d, hi)
		pivotIdx = med3(lo, mid, hi)
	} else if n > 3 {
		pivotIdx = med3(0, n/2, n-1)
	}

	a[0], a[pivotIdx] = a[pivotIdx], a[0]
	pivot := c.wordKey(int(a[0]), depth, w)

	lt, gt, i := 0, n, 1

	for i < gt {
		k := c.wordKey(int(a[i]), depth, w)

		switch {
		case k < pivot:
			a[lt], a[i] = a[i], a[lt]
			lt++
			i++
		case k > pivot:
			gt--
			a[i], a[gt] = a[gt], a[i]
		default:
			i++
		}
	}

	return lt, gt
}

// dispatchHelp hands a group tied at ShallowLimit off to helpedSort.
func (c *Context) dispatchHelp(a []int32, depth, base int) {
	c.helpedSort(a, depth, base)
}

// insertionSortLCP sorts a small group by full suffix comparison
// capped at ShallowLimit, tracking the LCP between adjacent entries
// in the final order (the classical Itoh-Tanaka shortcut). Runs tied
// at the cap are forwarded to helpedSort for deep resolution.
func (c *Context) insertionSortLCP(a []int32, depth, base int) {
	n := len(a)

	if n <= 1 {
		return
	}

	limit := c.params.ShallowLimit

	for i := 1; i < n; i++ {
		v := a[i]
		j := i - 1

		for j >= 0 && c.suffixGreater(a[j], v, depth, limit) {
			a[j+1] = a[j]
			j--
		}

		a[j+1] = v
	}

	lcp := make([]int, n-1)

	for i := 1; i < n; i++ {
		_, l := c.suffixCompareLCP(a[i-1], a[i], depth, limit)
		lcp[i-1] = l
	}

	cap := limit - depth
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}

		if end-start+1 >= 2 {
			c.helpedSort(a[start:end+1], limit, base+start)
		}

		start = -1
	}

	for i := 0; i < n-1; i++ {
		if lcp[i] >= cap {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}

	flush(n - 1)
}

// suffixGreater reports whether the suffix at p1 sorts after the
// suffix at p2, comparing only bytes in [depth, limit).
func (c *Context) suffixGreater(p1, p2 int32, depth, limit int) bool {
	greater, _ := c.suffixCompareLCP(p1, p2, depth, limit)
	return greater
}

// suffixCompareLCP compares the suffixes at p1 and p2 over
// [depth, limit) and returns whether p1 > p2 along with the LCP of
// the compared range (capped at limit-depth). A suffix that runs out
// of real text (as opposed to overshoot padding) before the other is
// always the smaller one: this is what makes the ordering total even
// when the text itself contains zero bytes that would otherwise be
// indistinguishable from the zero-filled pad.
func (c *Context) suffixCompareLCP(p1, p2 int32, depth, limit int) (bool, int) {
	i := depth

	for i < limit {
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

	return false, limit - depth
}
