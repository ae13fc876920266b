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

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func int32sEqual(a, b []int32) bool {
	return cmp.Equal(a, b)
}

func TestBuildSuffixArrayEmpty(t *testing.T) {
	sa, err := BuildSuffixArray(nil, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sa) != 0 {
		t.Fatalf("expected empty SA, got %v", sa)
	}
}

func TestBuildSuffixArraySingleByte(t *testing.T) {
	sa, err := BuildSuffixArray([]byte("a"), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !int32sEqual(sa, []int32{0}) {
		t.Fatalf("expected [0], got %v", sa)
	}
}

func TestBuildSuffixArrayBanana(t *testing.T) {
	sa, err := BuildSuffixArray([]byte("banana"), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{5, 3, 1, 0, 4, 2}
	if !int32sEqual(sa, want) {
		t.Fatalf("banana: got %v, want %v", sa, want)
	}
}

func TestBuildSuffixArrayMississippi(t *testing.T) {
	sa, err := BuildSuffixArray([]byte("mississippi"), DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{10, 7, 4, 1, 0, 9, 8, 6, 3, 5, 2}
	if !int32sEqual(sa, want) {
		t.Fatalf("mississippi: got %v, want %v", sa, want)
	}
}

// TestBuildSuffixArrayAllSameByte exercises the blind trie: every
// suffix ties at every depth until the text itself runs out.
func TestBuildSuffixArrayAllSameByte(t *testing.T) {
	n := 100000
	text := bytes.Repeat([]byte{'a'}, n)

	sa, err := BuildSuffixArray(text, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < n; i++ {
		if sa[i] != int32(n-1-i) {
			t.Fatalf("position %d: got %d, want %d", i, sa[i], n-1-i)
		}
	}
}

// referenceSuffixArray sorts all rotations (in practice all suffixes,
// since every suffix has a distinct length) the naive way, for
// cross-checking against the deep-shallow sort on inputs too large to
// hardcode an expected array for.
func referenceSuffixArray(text []byte) []int32 {
	n := len(text)
	sa := make([]int32, n)
	for i := range sa {
		sa[i] = int32(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(text[sa[i]:], text[sa[j]:]) < 0
	})
	return sa
}

// TestBuildSuffixArrayRandomAgreesWithReference checks the sort against
// a naive reference sort over random small-alphabet text, with a low
// AnchorDist and a non-zero MaxPseudoAnchorOffset set. Random text
// this long almost never repeats ShallowLimit bytes, so few if any
// groups reach helped_sort and its anchor tactics.
func TestBuildSuffixArrayRandomAgreesWithReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 20000
	text := make([]byte, n)
	for i := range text {
		text[i] = byte(rng.Intn(4)) // small alphabet maximizes ties
	}

	params := DefaultParams()
	params.AnchorDist = 100
	params.ShallowLimit = params.AnchorDist + 50
	params.MaxPseudoAnchorOffset = 20

	got, err := BuildSuffixArray(text, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := referenceSuffixArray(text)
	if !int32sEqual(got, want) {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("first mismatch at rank %d: got %d, want %d", i, got[i], want[i])
			}
		}
	}
}

// TestBuildSuffixArrayNoMarkerBitLeaks checks the invariant that no SA
// entry keeps its high bit set once construction completes: the
// marker bit is owned exclusively by the anchor-sort routine for the
// duration of one helped_sort call.
func TestBuildSuffixArrayNoMarkerBitLeaks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 5000
	text := make([]byte, n)
	for i := range text {
		text[i] = byte(rng.Intn(3))
	}

	params := DefaultParams()
	params.AnchorDist = 100
	params.ShallowLimit = params.AnchorDist + 50

	sa, err := BuildSuffixArray(text, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range sa {
		if v&markerBit != 0 {
			t.Fatalf("SA[%d] = %#x still carries the marker bit", i, v)
		}
	}
}

func TestBWTBoundaryScenarios(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		wantBWT string
		wantI   int
	}{
		{"single", "a", "a", 0},
		{"banana", "banana", "annbaa", 3},
		{"mississippi", "mississippi", "ipssmpissii", 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bw := NewBWT(DefaultParams())
			dst := make([]byte, len(c.text))

			_, _, err := bw.Forward([]byte(c.text), dst)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if string(dst) != c.wantBWT {
				t.Fatalf("bwt: got %q, want %q", dst, c.wantBWT)
			}

			if bw.PrimaryIndex() != c.wantI {
				t.Fatalf("primary index: got %d, want %d", bw.PrimaryIndex(), c.wantI)
			}
		})
	}
}

func TestBWTEmpty(t *testing.T) {
	bw := NewBWT(DefaultParams())
	dst := make([]byte, 0)

	n, m, err := bw.Forward(nil, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || m != 0 {
		t.Fatalf("expected 0,0, got %d,%d", n, m)
	}
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("default params should validate: %v", err)
	}

	bad := p
	bad.AnchorDist = 50
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected AnchorDist=50 to be rejected")
	}

	bad = p
	bad.ShallowLimit = 1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected ShallowLimit=1 to be rejected")
	}

	bad = p
	bad.MkQsThresh = 31
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected MkQsThresh=31 to be rejected")
	}
}
