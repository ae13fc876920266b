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

// buildFtab histograms every adjacent byte pair, prefix-sums the
// histogram into bucket boundaries and scatters each text position
// into its small bucket. After this call, each small bucket holds its
// positions in arbitrary order, and ftab[k] holds the first free slot
// (== the bucket start, since nothing has been written sorted yet).
func (c *Context) buildFtab() {
	n := c.n

	// ftab[k] starts as a histogram count and is turned into a running
	// prefix sum. Using it as the scatter cursor would leave it pointing
	// at the end of each bucket, so the scatter pass advances a separate
	// cursor slice instead.
	for i := range c.ftab {
		c.ftab[i] = 0
	}

	// key2(n-1) reads text[n-1] and the first overshoot pad byte,
	// which is zero by contract: the last suffix sorts as (c1, 0).
	for i := 0; i < n; i++ {
		c.ftab[c.key2(i)]++
	}

	sum := int32(0)

	for k := 0; k < ftabSize; k++ {
		tmp := c.ftab[k]
		c.ftab[k] = sum
		sum += tmp
	}

	cursor := make([]int32, ftabSize)
	copy(cursor, c.ftab)

	for i := 0; i < n; i++ {
		k := c.key2(i)
		c.sa[cursor[k]] = int32(i)
		cursor[k]++
	}
}

// bigBucketSize returns the number of suffixes whose first byte is c.
func (c *Context) bigBucketSize(ch int) int {
	lo := c.bucketFirst(ch << 8)
	var hi int
	if ch == 255 {
		hi = c.n
	} else {
		hi = c.bucketFirst((ch + 1) << 8)
	}
	return hi - lo
}

// runningOrder returns {0,...,255} shell-sorted ascending by the size
// of the big bucket (c,*). It is computed once and frozen for the
// rest of ds_ssort.
func (c *Context) runningOrder() [256]int {
	var order [256]int
	for i := range order {
		order[i] = i
	}

	// Shell sort with a classic gap sequence.
	gaps := []int{132, 57, 23, 10, 4, 1}

	for _, gap := range gaps {
		for i := gap; i < 256; i++ {
			v := order[i]
			vSize := c.bigBucketSize(v)
			j := i

			for j >= gap && c.bigBucketSize(order[j-gap]) > vSize {
				order[j] = order[j-gap]
				j -= gap
			}

			order[j] = v
		}
	}

	return order
}
