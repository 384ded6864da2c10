package selection

import (
	"math/rand"
	"testing"
)

// checkInvariants asserts the mutual-exclusion rules that must hold after
// every selection mutation.
func checkInvariants(t *testing.T, s State) {
	t.Helper()
	if s.ResultID != "" && (len(s.AssetIDs) > 0 || s.ProductID != "") {
		t.Fatalf("result selected but assets/product not cleared: %+v", s)
	}
}

func TestToggleAssetAddRemoveAndOrder(t *testing.T) {
	tr := NewTracker()
	tr.ToggleAsset("a")
	tr.ToggleAsset("b")
	tr.ToggleAsset("c")
	got := tr.State().AssetIDs
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("selection order not preserved: %v", got)
	}

	tr.ToggleAsset("b")
	got = tr.State().AssetIDs
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("toggle did not remove b: %v", got)
	}
	checkInvariants(t, tr.State())
}

func TestToggleAssetClearsResult(t *testing.T) {
	tr := NewTracker()
	tr.SelectResult("r1")
	tr.ToggleAsset("a")
	s := tr.State()
	if s.ResultID != "" {
		t.Fatalf("asset selection must clear result selection")
	}
	checkInvariants(t, s)
}

func TestSelectProductToggleAndClearResult(t *testing.T) {
	tr := NewTracker()
	tr.SelectProduct("p1")
	if tr.State().ProductID != "p1" {
		t.Fatalf("product not selected")
	}
	tr.SelectProduct("p1")
	if tr.State().ProductID != "" {
		t.Fatalf("re-selecting product must deselect it")
	}

	tr.SelectResult("r1")
	tr.SelectProduct("p2")
	s := tr.State()
	if s.ResultID != "" || s.ProductID != "p2" {
		t.Fatalf("product selection must clear result selection: %+v", s)
	}
	checkInvariants(t, s)
}

func TestSelectResultClearsOthers(t *testing.T) {
	tr := NewTracker()
	tr.ToggleAsset("a")
	tr.ToggleAsset("b")
	tr.SelectProduct("p")
	tr.SelectResult("r")
	s := tr.State()
	if s.ResultID != "r" || len(s.AssetIDs) != 0 || s.ProductID != "" {
		t.Fatalf("selecting result must clear assets and product: %+v", s)
	}

	tr.SelectResult("r")
	if tr.State().ResultID != "" {
		t.Fatalf("re-selecting result must deselect it")
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	tr := NewTracker()
	tr.ToggleAsset("a")
	tr.SelectProduct("p")
	tr.Clear()
	s := tr.State()
	if len(s.AssetIDs) != 0 || s.ProductID != "" || s.ResultID != "" {
		t.Fatalf("clear left state behind: %+v", s)
	}
}

func TestRemovePrunesDanglingSelection(t *testing.T) {
	tr := NewTracker()
	tr.ToggleAsset("a")
	tr.ToggleAsset("b")
	tr.RemoveAsset("a")
	if got := tr.State().AssetIDs; len(got) != 1 || got[0] != "b" {
		t.Fatalf("RemoveAsset: %v", got)
	}

	tr.SelectProduct("p")
	tr.RemoveProduct("other")
	if tr.State().ProductID != "p" {
		t.Fatalf("RemoveProduct must not touch a different id")
	}
	tr.RemoveProduct("p")
	if tr.State().ProductID != "" {
		t.Fatalf("RemoveProduct did not clear selection")
	}

	tr = NewTracker()
	tr.SelectResult("r")
	tr.RemoveResult("r")
	if tr.State().ResultID != "" {
		t.Fatalf("RemoveResult did not clear selection")
	}
}

// TestInvariantsHoldUnderRandomSequences drives the tracker with random
// operations and asserts the mutual-exclusion invariants after each one.
func TestInvariantsHoldUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []string{"a", "b", "c", "d"}
	tr := NewTracker()
	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(5) {
		case 0:
			tr.ToggleAsset(id)
		case 1:
			tr.SelectProduct(id)
		case 2:
			tr.SelectResult(id)
		case 3:
			tr.Clear()
		case 4:
			tr.RemoveAsset(id)
		}
		checkInvariants(t, tr.State())
	}
}

func TestStateReturnsCopy(t *testing.T) {
	tr := NewTracker()
	tr.ToggleAsset("a")
	s := tr.State()
	s.AssetIDs[0] = "mutated"
	if tr.State().AssetIDs[0] != "a" {
		t.Fatalf("State must return a defensive copy")
	}
}
