package format

import (
	"encoding/binary"
	"io"

	"stabkit/simd"
)

// WritePTB64Row writes one measurement row's first `shots` bits as
// little-endian 64-bit words (spec §6: "64 shots per 64-bit word, major
// over measurement index"). It matches sim.MeasurementRecord's SetFlush
// encode signature directly, since BitVec already stores shots
// word-packed — no transpose needed, unlike the other formats, which is
// exactly why ptb64 exists as a streaming-friendly option (spec §9).
func WritePTB64Row(w io.Writer, row *simd.BitVec, shots int) error {
	words := (shots + simd.WordBits - 1) / simd.WordBits
	for i := 0; i < words; i++ {
		var word uint64
		if i < len(row.Words) {
			word = row.Words[i]
		}
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return nil
}

// WritePTB64 encodes every row of s in turn.
func WritePTB64(w io.Writer, s Sample) error {
	for _, row := range s.Rows {
		if err := WritePTB64Row(w, row, s.Shots); err != nil {
			return err
		}
	}
	return nil
}
