// Package format implements spec §6's sample output formats: 01, b8, r8,
// hits, dets, ptb64. These are write-only encoders for a completed (or
// completable) block of measurement shots — no circuit-text parser or CLI
// lives here (Non-goals per spec.md §1).
package format

import (
	"bufio"
	"fmt"
	"io"

	"stabkit/simd"
)

// Sample is a measurement-major view over a finished run: Rows[i] holds
// every shot's outcome for measurement i, exactly the layout
// sim.MeasurementRecord already keeps internally (spec §4.5).
type Sample struct {
	Rows  []*simd.BitVec
	Shots int
}

// NumMeasurements returns the number of measurement rows in the sample.
func (s Sample) NumMeasurements() int { return len(s.Rows) }

// Bit returns the outcome of measurement m, shot sh.
func (s Sample) Bit(m, sh int) bool { return s.Rows[m].At(sh).Get() }

// DetectorLabel names one measurement-row's annotation token for the dets
// format (spec §6: "D<k>", "L<k>", or "M<k>"); rows with an empty label are
// skipped by WriteDets.
type DetectorLabel struct {
	Kind  byte // 'D', 'L', or 'M'
	Index int
}

// WriteSample encodes every shot of s to w in the named format ("01", "b8",
// "r8", "hits"; use WritePTB64 for "ptb64" and WriteDets for "dets", which
// need extra per-row metadata).
func WriteSample(w io.Writer, s Sample, formatName string) error {
	bw := bufio.NewWriter(w)
	var err error
	switch formatName {
	case "01":
		err = write01(bw, s)
	case "b8":
		err = writeB8(bw, s)
	case "r8":
		err = writeR8(bw, s)
	case "hits":
		err = writeHits(bw, s)
	default:
		return fmt.Errorf("format: unknown sample format %q", formatName)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func write01(w *bufio.Writer, s Sample) error {
	n := s.NumMeasurements()
	for sh := 0; sh < s.Shots; sh++ {
		for m := 0; m < n; m++ {
			b := byte('0')
			if s.Bit(m, sh) {
				b = '1'
			}
			if err := w.WriteByte(b); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func writeB8(w *bufio.Writer, s Sample) error {
	n := s.NumMeasurements()
	bytesPerShot := (n + 7) / 8
	buf := make([]byte, bytesPerShot)
	for sh := 0; sh < s.Shots; sh++ {
		for i := range buf {
			buf[i] = 0
		}
		for m := 0; m < n; m++ {
			if s.Bit(m, sh) {
				buf[m/8] |= 1 << uint(m%8)
			}
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// writeR8 encodes each shot as spec §6's run-length scheme: the distance
// (in unset bits) since the previous set bit (or the start of the shot),
// with 255 meaning "255 unset bits and keep going" (continuation), and a
// final trailing run for the unset bits after the last set bit.
func writeR8(w *bufio.Writer, s Sample) error {
	n := s.NumMeasurements()
	for sh := 0; sh < s.Shots; sh++ {
		run := 0
		for m := 0; m < n; m++ {
			if !s.Bit(m, sh) {
				run++
				continue
			}
			for run >= 255 {
				if err := w.WriteByte(255); err != nil {
					return err
				}
				run -= 255
			}
			if err := w.WriteByte(byte(run)); err != nil {
				return err
			}
			run = 0
		}
		for run >= 255 {
			if err := w.WriteByte(255); err != nil {
				return err
			}
			run -= 255
		}
		if err := w.WriteByte(byte(run)); err != nil {
			return err
		}
	}
	return nil
}

func writeHits(w *bufio.Writer, s Sample) error {
	n := s.NumMeasurements()
	for sh := 0; sh < s.Shots; sh++ {
		first := true
		for m := 0; m < n; m++ {
			if !s.Bit(m, sh) {
				continue
			}
			if !first {
				if err := w.WriteByte(','); err != nil {
					return err
				}
			}
			first = false
			if _, err := fmt.Fprintf(w, "%d", m); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// WriteDets encodes every shot in spec §6's dets format: "shot" followed by
// space-separated D<k>/L<k>/M<k> tokens for every set bit whose row has a
// label (rows with no entry in labels are treated as unlabeled and skipped,
// matching how a plain measurement with no enclosing DETECTOR/
// OBSERVABLE_INCLUDE annotation contributes nothing to this format).
func WriteDets(w io.Writer, s Sample, labels map[int]DetectorLabel) error {
	bw := bufio.NewWriter(w)
	n := s.NumMeasurements()
	for sh := 0; sh < s.Shots; sh++ {
		if _, err := bw.WriteString("shot"); err != nil {
			return err
		}
		for m := 0; m < n; m++ {
			if !s.Bit(m, sh) {
				continue
			}
			label, ok := labels[m]
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(bw, " %c%d", label.Kind, label.Index); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
