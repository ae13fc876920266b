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

import "fmt"

// BWT turns a block of text into its Burrows-Wheeler transform: the
// last column of the matrix of all cyclically (here, suffix-padded)
// rotations of the text sorted lexicographically, plus the row index
// of the original text within that matrix (the primary index). The
// entry of the primary row, which is always the text's last byte, is
// moved to the front of the output. It satisfies the root
// package's ByteTransform contract without importing it, since Forward
// and MaxEncodedLen already have the matching shape.
type BWT struct {
	params Params

	primaryIndex int
}

// NewBWT returns a BWT transform tuned by params. A zero Params is not
// valid; use DefaultParams and override individual fields.
func NewBWT(params Params) *BWT {
	return &BWT{params: params}
}

// PrimaryIndex returns the row of the original text in the sorted
// rotation matrix, valid only after the most recent call to Forward.
func (b *BWT) PrimaryIndex() int {
	return b.primaryIndex
}

// MaxEncodedLen reports that the transform never expands its input:
// the BWT is a permutation of the source bytes.
func (b *BWT) MaxEncodedLen(srcLen int) int {
	return srcLen
}

// Forward writes the Burrows-Wheeler transform of src into dst, which
// must be at least len(src) bytes, and records the primary index
// (retrieve it with PrimaryIndex before the next call to Forward).
func (b *BWT) Forward(src, dst []byte) (uint, uint, error) {
	n := len(src)

	if n == 0 {
		b.primaryIndex = 0
		return 0, 0, nil
	}

	if len(dst) < n {
		return 0, 0, fmt.Errorf("suffix: dst has %d bytes, need at least %d", len(dst), n)
	}

	if n == 1 {
		dst[0] = src[0]
		b.primaryIndex = 0
		return 1, 1, nil
	}

	sa, err := BuildSuffixArray(src, b.params)
	if err != nil {
		return 0, 0, err
	}

	primary := -1
	dst[0] = src[n-1]
	j := 1

	for i, p := range sa {
		if p == 0 {
			primary = i
			continue
		}
		dst[j] = src[p-1]
		j++
	}

	b.primaryIndex = primary

	return uint(n), uint(n), nil
}
