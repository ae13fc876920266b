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

// Package entropy implements the canonical Huffman coder that closes
// out the pipeline: it takes the list-update stage's recoded byte
// stream and writes a self-describing bit stream - header, code
// lengths, original length, then the coded symbols themselves.
package entropy

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"

	"github.com/mpetri/aazip"
	"github.com/mpetri/aazip/internal"
)

// huffmanNode is one node of the frequency-merge tree. Leaves carry a
// real symbol; internal nodes carry the symbol of their leftmost leaf
// solely so ties in the priority queue break deterministically.
type huffmanNode struct {
	symbol      byte
	weight      int
	left, right *huffmanNode
}

// huffmanQueue is a container/heap min-heap over huffmanNode, ordered
// by weight and, on ties, by whether a node is a leaf (leaves sort
// first) and then by symbol.
type huffmanQueue []*huffmanNode

func (q huffmanQueue) Len() int { return len(q) }

func (q huffmanQueue) Less(i, j int) bool {
	ni, nj := q[i], q[j]

	if ni.weight != nj.weight {
		return ni.weight < nj.weight
	}

	if ni.left == nil && nj.left != nil {
		return true
	}
	if ni.left != nil && nj.left == nil {
		return false
	}

	return ni.symbol < nj.symbol
}

func (q huffmanQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *huffmanQueue) Push(x interface{}) { *q = append(*q, x.(*huffmanNode)) }

func (q *huffmanQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	*q = old[:n-1]
	return node
}

// maxCodeLength is the point at which this implementation gives up
// rather than produce a code the bit writer cannot pack (the wire
// format stores a length per symbol in one byte, and WriteBits caps
// at 64 bits per call).
const maxCodeLength = 32

// buildCodeLengths runs the classical two-minimum merge over a
// min-heap to build the Huffman tree for the given symbols and
// frequencies, then recursively reads off each symbol's code length.
func buildCodeLengths(symbols []byte, freq []int) (map[byte]int, error) {
	q := make(huffmanQueue, 0, len(symbols))
	heap.Init(&q)

	for _, s := range symbols {
		heap.Push(&q, &huffmanNode{symbol: s, weight: freq[s]})
	}

	if q.Len() == 1 {
		only := heap.Pop(&q).(*huffmanNode)
		return map[byte]int{only.symbol: 1}, nil
	}

	for q.Len() > 1 {
		left := heap.Pop(&q).(*huffmanNode)
		right := heap.Pop(&q).(*huffmanNode)
		heap.Push(&q, &huffmanNode{weight: left.weight + right.weight, left: left, right: right, symbol: left.symbol})
	}

	root := heap.Pop(&q).(*huffmanNode)
	lengths := make(map[byte]int, len(symbols))

	if err := fillLengths(root, 0, lengths); err != nil {
		return nil, err
	}

	return lengths, nil
}

func fillLengths(node *huffmanNode, depth int, lengths map[byte]int) error {
	if depth > maxCodeLength {
		return fmt.Errorf("entropy: code for symbol %d exceeds %d bits", node.symbol, maxCodeLength)
	}

	if node.left == nil && node.right == nil {
		lengths[node.symbol] = depth
		return nil
	}

	if err := fillLengths(node.left, depth+1, lengths); err != nil {
		return err
	}

	return fillLengths(node.right, depth+1, lengths)
}

// canonicalCodes assigns canonical codes to ranks (already sorted by
// ascending length, then ascending value): the first code at the
// shortest length is 0, each subsequent code at the same length is one
// more than the last, and every increase in length shifts the running
// code left by the difference.
func canonicalCodes(ranks []byte, lengths map[byte]int) map[byte]uint64 {
	codes := make(map[byte]uint64, len(ranks))

	code := uint64(0)
	length := lengths[ranks[0]]

	for _, r := range ranks {
		if lengths[r] > length {
			code <<= uint(lengths[r] - length)
			length = lengths[r]
		}

		codes[r] = code
		code++
	}

	return codes
}

// Encode writes data to bs as a canonical-Huffman coded bit stream:
// the one-byte symbol count minus one, the symbols sorted by code
// length ascending and value ascending, their code lengths, the
// original byte count as a 32-bit field, then the coded stream itself,
// each code written MSB-first.
func Encode(bs aazip.OutputBitStream, data []byte) error {
	var freq [256]int
	internal.ComputeHistogram(data, freq[:])

	var symbols []byte
	for s := 0; s < 256; s++ {
		if freq[s] > 0 {
			symbols = append(symbols, byte(s))
		}
	}

	if len(symbols) == 0 {
		return errors.New("entropy: cannot encode an empty alphabet")
	}

	if len(symbols) > 256 {
		return errors.New("entropy: alphabet too large")
	}

	lengths, err := buildCodeLengths(symbols, freq[:])
	if err != nil {
		return err
	}

	ranks := append([]byte(nil), symbols...)
	sort.Slice(ranks, func(i, j int) bool {
		if lengths[ranks[i]] != lengths[ranks[j]] {
			return lengths[ranks[i]] < lengths[ranks[j]]
		}
		return ranks[i] < ranks[j]
	})

	codes := canonicalCodes(ranks, lengths)

	bs.WriteBits(uint64(len(ranks)-1), 8)

	for _, r := range ranks {
		bs.WriteBits(uint64(r), 8)
	}

	for _, r := range ranks {
		bs.WriteBits(uint64(lengths[r]), 8)
	}

	bs.WriteBits(uint64(len(data)), 32)

	for _, b := range data {
		bs.WriteBits(codes[b], uint(lengths[b]))
	}

	return nil
}
