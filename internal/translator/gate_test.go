package translator

import "testing"

func TestGate_SingleFlightPerKey(t *testing.T) {
	t.Parallel()

	gate := NewGate()

	if !gate.TryStart(RunKey) {
		t.Fatal("expected first start to be admitted")
	}
	if gate.TryStart(RunKey) {
		t.Fatal("expected second start to be rejected while held")
	}

	gate.Finish(RunKey)

	if !gate.TryStart(RunKey) {
		t.Fatal("expected start to be admitted again after finish")
	}
}

func TestGate_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	gate := NewGate()

	if !gate.TryStart("a") {
		t.Fatal("expected key a to be admitted")
	}
	if !gate.TryStart("b") {
		t.Fatal("expected key b to be admitted")
	}
}

func TestGate_FinishWithoutStartIsNoOp(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	gate.Finish(RunKey)

	if !gate.TryStart(RunKey) {
		t.Fatal("expected start to be admitted after stray finish")
	}
}
