// Package sim implements the Tableau and Frame circuit simulators (spec
// §4.6, §4.7): shot-parallel Pauli-frame tracking and exact single-shot
// stabilizer-tableau simulation, both built on package tableau and pauli.
package sim

import (
	"fmt"
	"io"

	"stabkit/simd"
)

// MeasurementRecord is shot-parallel, append-only storage: a bit table of
// measurement-index x shot (spec §4.5). Lookback(-1) after Append(b) always
// returns b; rows older than the configured high-water mark are flushed to
// an attached writer and dropped, bounding memory for long streaming runs.
type MeasurementRecord struct {
	shots      int
	rows       []*simd.BitVec // one BitVec (padded to shots) per measurement
	base       int            // global index of rows[0]; rows[0..base) were flushed
	keep       int            // rows to retain once a flush triggers
	highWater  int            // flush threshold; 0 disables flushing
	writer     io.Writer
	flushEncode func(w io.Writer, row *simd.BitVec, shots int) error
}

// NewMeasurementRecord returns a record for the given shot count. Flushing
// is disabled until SetFlush is called.
func NewMeasurementRecord(shots int) *MeasurementRecord {
	return &MeasurementRecord{shots: shots}
}

// SetFlush attaches a writer, a high-water row count, and a keep count
// (spec §4.5: "keep must be >= the largest lookback any operation can
// make"). encode serializes one flushed row (shots bits) to w.
func (m *MeasurementRecord) SetFlush(w io.Writer, highWater, keep int, encode func(w io.Writer, row *simd.BitVec, shots int) error) {
	m.writer = w
	m.highWater = highWater
	m.keep = keep
	m.flushEncode = encode
}

// Size returns the current global row count (including flushed rows).
func (m *MeasurementRecord) Size() int { return m.base + len(m.rows) }

// Append adds a new all-shots measurement row, triggering a flush first if
// the row count would exceed the high-water mark.
func (m *MeasurementRecord) Append(row *simd.BitVec) error {
	if err := m.maybeFlush(); err != nil {
		return err
	}
	m.rows = append(m.rows, row)
	return nil
}

// AppendBit appends a single-shot (shots==1) row with value v.
func (m *MeasurementRecord) AppendBit(v bool) error {
	row := simd.NewBitVec(m.shots)
	if v {
		for s := 0; s < m.shots; s++ {
			row.At(s).Set(true)
		}
	}
	return m.Append(row)
}

func (m *MeasurementRecord) maybeFlush() error {
	if m.highWater <= 0 || m.base+len(m.rows) < m.highWater {
		return nil
	}
	if m.writer == nil {
		return nil
	}
	dropCount := len(m.rows) - m.keep
	if dropCount <= 0 {
		return nil
	}
	for i := 0; i < dropCount; i++ {
		if err := m.flushEncode(m.writer, m.rows[i], m.shots); err != nil {
			return fmt.Errorf("sim: MeasurementRecord flush: %w", err)
		}
	}
	m.rows = append([]*simd.BitVec(nil), m.rows[dropCount:]...)
	m.base += dropCount
	return nil
}

// Lookback returns row size-|k| for a negative k (spec §4.5's lookback
// convention, e.g. Lookback(-1) is the most recently appended row).
func (m *MeasurementRecord) Lookback(k int) (*simd.BitVec, error) {
	if k >= 0 {
		return nil, fmt.Errorf("sim: Lookback requires a negative offset, got %d", k)
	}
	idx := m.Size() + k
	if idx < m.base {
		return nil, fmt.Errorf("sim: Lookback(%d) references a flushed row (global index %d, retained from %d)", k, idx, m.base)
	}
	if idx < 0 || idx >= m.Size() {
		return nil, fmt.Errorf("sim: Lookback(%d) out of range (size %d)", k, m.Size())
	}
	return m.rows[idx-m.base], nil
}

// LookbackBit returns shot 0's bit of Lookback(k), for single-shot callers
// (the TableauSimulator).
func (m *MeasurementRecord) LookbackBit(k int) (bool, error) {
	row, err := m.Lookback(k)
	if err != nil {
		return false, err
	}
	return row.At(0).Get(), nil
}

// FlipLastRow inverts every shot's bit of the most recently appended row in
// place (spec §6's INVERTED_MEASUREMENT_QUBIT target: a leading "!" flips
// the recorded bit, not the physical outcome it was measured from).
func (m *MeasurementRecord) FlipLastRow() error {
	if len(m.rows) == 0 {
		return fmt.Errorf("sim: FlipLastRow: no rows appended yet")
	}
	row := m.rows[len(m.rows)-1]
	for s := 0; s < m.shots; s++ {
		row.At(s).XorAssign(true)
	}
	return nil
}

// Flush forces any retained rows through the writer immediately (used at
// end-of-run, since maybeFlush only triggers once the high-water mark is
// actually crossed).
func (m *MeasurementRecord) Flush() error {
	if m.writer == nil || m.flushEncode == nil {
		return nil
	}
	for i, row := range m.rows {
		if err := m.flushEncode(m.writer, row, m.shots); err != nil {
			return fmt.Errorf("sim: MeasurementRecord final flush: %w", err)
		}
		m.rows[i] = nil
	}
	m.base += len(m.rows)
	m.rows = nil
	return nil
}
