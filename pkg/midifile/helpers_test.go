package midifile

import (
	"bytes"
	"encoding/binary"
)

// eot is a zero delta-time End Of Track event
const eot = "\x00\xFF\x2F\x00"

// buildSMF assembles a format 1 file from raw track bodies.
func buildSMF(tracks ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	_ = binary.Write(&buf, binary.BigEndian, uint32(6))
	_ = binary.Write(&buf, binary.BigEndian, uint16(1))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	_ = binary.Write(&buf, binary.BigEndian, uint16(96))
	for _, body := range tracks {
		buf.WriteString("MTrk")
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(body)))
		buf.WriteString(body)
	}
	return buf.Bytes()
}

// fixedRand always returns the same value, clamped to the requested range
type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
