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

package bitstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultOutputBitStream is the default implementation of
// OutputBitStream. Bits accumulate MSB-first in a 64-bit cache; once
// the cache fills, it is drained as one big-endian word into a byte
// buffer, which itself is flushed to sink once it runs low on room.
type DefaultOutputBitStream struct {
	sink   io.WriteCloser
	buffer []byte
	pos    int    // next free byte slot in buffer
	cache  uint64 // bits waiting to be drained into buffer
	free   uint   // unused bit slots left in cache

	writtenBits int64 // bits handed to sink so far, excluding cache
	closed      bool
}

// NewDefaultOutputBitStream creates a bitstream for writing, using the
// provided stream as the underlying I/O object.
func NewDefaultOutputBitStream(stream io.WriteCloser, bufferSize uint) (*DefaultOutputBitStream, error) {
	if stream == nil {
		return nil, errors.New("invalid null output stream parameter")
	}

	if bufferSize < 1024 {
		return nil, errors.New("invalid buffer size parameter (must be at least 1024 bytes)")
	}

	if bufferSize > 1<<29 {
		return nil, errors.New("invalid buffer size parameter (must be at most 536870912 bytes)")
	}

	if bufferSize&7 != 0 {
		return nil, errors.New("invalid buffer size (must be a multiple of 8)")
	}

	return &DefaultOutputBitStream{
		sink:   stream,
		buffer: make([]byte, bufferSize),
		free:   64,
	}, nil
}

// WriteBit writes the least significant bit of the input integer. Panics if the bitstream is closed.
func (s *DefaultOutputBitStream) WriteBit(bit int) {
	if s.free <= 1 { // free == 0 if stream is closed => force drain() => panic
		s.drain(s.cache | uint64(bit&1))
		s.cache = 0
		s.free = 64
		return
	}

	s.free--
	s.cache |= uint64(bit&1) << s.free
}

// WriteBits writes 'count' bits from 'value' to the bitstream.
// Panics if the bitstream is closed or 'count' is outside of [1..64].
// Returns the number of written bits.
func (s *DefaultOutputBitStream) WriteBits(value uint64, count uint) uint {
	if count == 0 || count > 64 {
		panic(fmt.Errorf("invalid bit count: %d (must be in [1..64])", count))
	}

	s.cache |= (value << (64 - count)) >> (64 - s.free)

	if count >= s.free {
		spill := count - s.free
		s.drain(s.cache)
		s.cache = value << (64 - spill)
		s.free = 64 - spill
	} else {
		s.free -= count
	}

	return count
}

// WriteArray writes 'count' bits from 'bits' to the bitstream.
// Panics if the bitstream is closed or 'count' is larger than the number
// of bits in 'bits'. Returns the number of written bits.
func (s *DefaultOutputBitStream) WriteArray(bits []byte, count uint) uint {
	if s.Closed() {
		panic(errors.New("stream closed"))
	}

	if count > uint(len(bits)<<3) {
		panic(fmt.Errorf("invalid length: %d (must be in [1..%d])", count, len(bits)<<3))
	}

	remaining := int(count)
	start := 0

	for remaining >= 8 {
		s.WriteBits(uint64(bits[start]), 8)
		start++
		remaining -= 8
	}

	if remaining > 0 {
		s.WriteBits(uint64(bits[start])>>uint(8-remaining), uint(remaining))
	}

	return count
}

// drain packs one 64-bit word into the byte buffer, flushing the
// buffer to sink once fewer than 8 bytes of headroom remain in it.
func (s *DefaultOutputBitStream) drain(word uint64) {
	binary.BigEndian.PutUint64(s.buffer[s.pos:s.pos+8], word)
	s.pos += 8

	if s.pos >= len(s.buffer)-8 {
		if err := s.flush(); err != nil {
			panic(err)
		}
	}
}

// flush writes whatever is in the buffer out to sink.
func (s *DefaultOutputBitStream) flush() error {
	if s.Closed() {
		return errors.New("stream closed")
	}

	if s.pos == 0 {
		return nil
	}

	if _, err := s.sink.Write(s.buffer[:s.pos]); err != nil {
		return err
	}

	s.writtenBits += int64(s.pos) << 3
	s.pos = 0
	return nil
}

// Close flushes the last, possibly incomplete, byte and prevents further writes.
func (s *DefaultOutputBitStream) Close() error {
	if s.Closed() {
		return nil
	}

	savedFree, savedPos, savedCache := s.free, s.pos, s.cache

	for shift := uint(56); s.free < 64; shift -= 8 {
		s.buffer[s.pos] = byte(s.cache >> shift)
		s.pos++
		s.free += 8
	}

	// The loop above always rounds free up to a full byte, which can
	// overshoot 64 when fewer than 8 bits were actually pending; back
	// that padding out of the reported write count before resetting.
	s.writtenBits -= int64(s.free - 64)
	s.free = 64

	if err := s.flush(); err != nil {
		s.free, s.pos, s.cache = savedFree, savedPos, savedCache
		return err
	}

	s.closed = true
	s.pos = 0
	s.free = 0
	s.writtenBits -= 64
	s.buffer = make([]byte, 8)
	return s.sink.Close()
}

// Written returns the number of bits written so far.
func (s *DefaultOutputBitStream) Written() uint64 {
	return uint64(s.writtenBits + int64(s.pos<<3) + int64(64-s.free))
}

// Closed says whether this stream can still be written to.
func (s *DefaultOutputBitStream) Closed() bool {
	return s.closed
}
