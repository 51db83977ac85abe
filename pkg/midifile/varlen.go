package midifile

import (
	"fmt"
	"io"
)

const (
	// MaxVarLenBytes is the longest variable-length quantity a MIDI file may hold
	MaxVarLenBytes = 4
	// MaxVarLen is the largest value that fits in MaxVarLenBytes
	MaxVarLen = 1<<(7*MaxVarLenBytes) - 1
)

// DecodeVarLen reads a MIDI variable-length quantity: 7 bits per byte, most
// significant group first, every byte but the last with its high bit set.
// It returns the value and the number of bytes consumed. Quantities longer
// than MaxVarLenBytes are rejected as invalid.
func DecodeVarLen(r io.ByteReader) (uint32, int, error) {
	var value uint32
	for n := 1; n <= MaxVarLenBytes; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return value, n - 1, truncated("variable-length quantity", err)
		}
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, n, nil
		}
	}
	return value, MaxVarLenBytes, invalidFile("variable-length quantity longer than %d bytes", MaxVarLenBytes)
}

// EncodeVarLen returns the minimal variable-length encoding of n, which must
// not exceed MaxVarLen.
func EncodeVarLen(n uint32) []byte {
	if n > MaxVarLen {
		panic(fmt.Sprintf("midifile: %d does not fit in a variable-length quantity", n))
	}
	if n == 0 {
		return []byte{0}
	}

	var groups []byte
	for n > 0 {
		groups = append(groups, byte(n&0x7F))
		n >>= 7
	}

	out := make([]byte, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		b := groups[i]
		if i != 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
