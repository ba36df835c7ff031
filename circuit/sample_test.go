package circuit

import (
	"bytes"
	"testing"

	"stabkit/randgen"
)

func TestMaxLookbackDepthFindsDeepestRecTarget(t *testing.T) {
	ops := []Op{
		GateOp("MZ", nil, []Target{QubitTarget(0)}),
		RepeatOp(3, []Op{
			GateOp("CX", nil, []Target{RecTarget(-2), QubitTarget(1)}),
		}),
		GateOp("CZ", nil, []Target{RecTarget(-1), QubitTarget(2)}),
	}
	if got := MaxLookbackDepth(ops); got != 2 {
		t.Fatalf("MaxLookbackDepth = %d, want 2", got)
	}
}

func TestMaxLookbackDepthZeroWithoutClassicalControl(t *testing.T) {
	ops := []Op{GateOp("H", nil, []Target{QubitTarget(0)})}
	if got := MaxLookbackDepth(ops); got != 0 {
		t.Fatalf("MaxLookbackDepth = %d, want 0", got)
	}
}

func TestSampleToWriterPTB64StreamsBellPair(t *testing.T) {
	ops := []Op{
		GateOp("H", nil, []Target{QubitTarget(0)}),
		GateOp("CX", nil, []Target{QubitTarget(0), QubitTarget(1)}),
		GateOp("M", nil, []Target{QubitTarget(0), QubitTarget(1)}),
	}
	ref := []bool{false, false}
	var buf bytes.Buffer
	rng := randgen.New(7)
	if err := SampleToWriter(ops, ref, 2, 32, &buf, "ptb64", rng); err != nil {
		t.Fatalf("SampleToWriter: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected streamed ptb64 output, got empty buffer")
	}
}

func TestSampleToWriterMaterializesNonStreamingFormat(t *testing.T) {
	ops := []Op{
		GateOp("H", nil, []Target{QubitTarget(0)}),
		GateOp("M", nil, []Target{QubitTarget(0)}),
	}
	ref := []bool{false}
	var buf bytes.Buffer
	rng := randgen.New(8)
	if err := SampleToWriter(ops, ref, 1, 16, &buf, "01", rng); err != nil {
		t.Fatalf("SampleToWriter: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected materialized 01-format output, got empty buffer")
	}
}
