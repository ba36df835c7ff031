// Package fingerprint hashes structured stabkit state (tableaus, compiled
// operation streams) into short digests for regression goldens and
// dedup, the way ntru/csign_testonly.go and DECS/merkle.go hash
// structured state with sha3 rather than rolling a custom checksum.
package fingerprint

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/sha3"

	"stabkit/circuit"
	"stabkit/pauli"
	"stabkit/tableau"
)

// Digest is a fixed-size sha3-256 fingerprint.
type Digest [32]byte

// Tableau fingerprints every generator image (Xs and Zs row, including
// sign) of t, in row order. Two tableaus with the same Digest are
// identical generator-by-generator; this is the basis for
// Tableau.random(N, rng) regression goldens under a fixed seed.
func Tableau(t *tableau.Tableau) Digest {
	h := sha3.New256()
	n := t.N()
	var nBuf [8]byte
	binary.LittleEndian.PutUint64(nBuf[:], uint64(n))
	h.Write(nBuf[:])
	for i := 0; i < n; i++ {
		writeString(h, t.XsRow(i))
		writeString(h, t.ZsRow(i))
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

func writeString(h interface{ Write([]byte) (int, error) }, p pauli.StringRef) {
	buf := make([]byte, p.Len()+1)
	if p.IsSignNegative() {
		buf[0] = 1
	}
	for k := 0; k < p.Len(); k++ {
		buf[k+1] = byte(p.Get(k))
	}
	h.Write(buf)
}

// Circuit fingerprints a compiled Op stream (spec §6), recursing into
// REPEAT bodies, so two frame-batches with identical op sequences (even
// nested ones) hash identically without re-simulating either.
func Circuit(ops []circuit.Op) Digest {
	h := sha3.New256()
	encodeOps(h, ops)
	var d Digest
	h.Sum(d[:0])
	return d
}

func encodeOps(h interface{ Write([]byte) (int, error) }, ops []circuit.Op) {
	for _, op := range ops {
		h.Write([]byte(op.GateName))
		h.Write([]byte{0, byte(op.Annotation)})
		for _, a := range op.Args {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(a))
			h.Write(buf[:])
		}
		for _, t := range op.Targets {
			var buf [6]byte
			buf[0] = byte(t.Kind)
			if t.Inverted {
				buf[1] = 1
			}
			binary.LittleEndian.PutUint32(buf[2:], uint32(t.Value))
			h.Write(buf[:])
		}
		if op.Annotation == circuit.Repeat {
			var rep [8]byte
			binary.LittleEndian.PutUint64(rep[:], uint64(op.RepeatCount))
			h.Write(rep[:])
			encodeOps(h, op.Body)
		}
	}
}
