package circuit

import (
	"io"

	"stabkit/format"
	"stabkit/randgen"
	"stabkit/sim"
	"stabkit/simd"
)

// MaxLookbackDepth scans ops (recursing into REPEAT bodies) for the deepest
// MEASUREMENT_RECORD lookback referenced, e.g. a classically-controlled
// "CX rec[-2] 3" needs depth 2. Used to size MeasurementRecord.SetFlush's
// `keep` window before streaming (spec §4.5: "keep must be >= the largest
// lookback any operation can make").
func MaxLookbackDepth(ops []Op) int {
	depth := 0
	for _, op := range ops {
		for _, t := range op.Targets {
			if t.Kind == MeasurementRecord {
				if d := -t.Value; d > depth {
					depth = d
				}
			}
		}
		if op.Annotation == Repeat {
			if d := MaxLookbackDepth(op.Body); d > depth {
				depth = d
			}
		}
	}
	return depth
}

// SampleToWriter runs ops `shots` times through a FrameSimulator against the
// noiseless reference trajectory ref, writing measurements to w (spec
// §4.7's streaming sampler: "total memory is O(shots *
// max_concurrent_measurements) rather than O(shots * total_measurements)").
// Only the `ptb64` format streams row-by-row without materializing the
// whole run first (see the format/ entry of DESIGN.md: it is the one format
// whose byte layout matches MeasurementRecord's native row-per-measurement
// storage exactly); every other format name falls back to materializing
// the whole sample and passing it to format.WriteSample, since those
// formats are shot-major and cannot be written one measurement at a time.
// WriteSample handles 01, b8, r8 and hits and rejects any other name,
// including dets.
func SampleToWriter(ops []Op, ref []bool, n, shots int, w io.Writer, formatName string, rng *randgen.RNG) error {
	fs := sim.NewFrameSimulator(n, shots, rng)
	streaming := formatName == "ptb64"
	if streaming {
		keep := MaxLookbackDepth(ops) + 1
		fs.Record().SetFlush(w, keep*4, keep, format.WritePTB64Row)
	}

	fd := NewFrameDispatcher(fs, ref)
	if err := fd.Run(ops); err != nil {
		return err
	}

	if streaming {
		return fs.Record().Flush()
	}

	rec := fs.Record()
	size := rec.Size()
	rows := make([]*simd.BitVec, size)
	for i := 0; i < size; i++ {
		row, err := rec.Lookback(i - size)
		if err != nil {
			return err
		}
		rows[i] = row
	}
	return format.WriteSample(w, format.Sample{Rows: rows, Shots: shots}, formatName)
}
