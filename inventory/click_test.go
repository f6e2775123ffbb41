package inventory

import "testing"

func newTestEngine() *Engine {
	c := NewContainer(9, 64)
	return &Engine{Container: c}
}

func TestPickupSwapsEmptyCursorWithSlot(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 32})
	carried, err := e.Apply(Click{Mode: ModePickup, Slot: 0, Button: 0, StateID: e.Container.StateID()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if carried.ItemID != "minecraft:dirt" || carried.Count != 32 {
		t.Fatalf("got %+v", carried)
	}
	if !e.Container.Get(0).Empty() {
		t.Fatalf("expected slot 0 to be empty after pickup")
	}
}

func TestPickupMergesMatchingStacks(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 32})
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 16}
	if _, err := e.Apply(Click{Mode: ModePickup, Slot: 0, Button: 0, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := e.Container.Get(0); got.Count != 48 {
		t.Fatalf("expected merged count 48, got %d", got.Count)
	}
	if !e.Carried.Empty() {
		t.Fatalf("expected cursor to empty after full merge")
	}
}

func TestPickupRightClickSplitsHalf(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 11})
	carried, err := e.Apply(Click{Mode: ModePickup, Slot: 0, Button: 1, StateID: e.Container.StateID()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if carried.Count != 6 {
		t.Fatalf("expected half (rounded up) of 11 = 6, got %d", carried.Count)
	}
	if e.Container.Get(0).Count != 5 {
		t.Fatalf("expected 5 remaining, got %d", e.Container.Get(0).Count)
	}
}

func TestSwapExchangesSlots(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 1})
	e.Container.Set(3, Stack{ItemID: "minecraft:stone", Count: 1})
	if _, err := e.Apply(Click{Mode: ModeSwap, Slot: 0, Button: 3, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e.Container.Get(0).ItemID != "minecraft:stone" || e.Container.Get(3).ItemID != "minecraft:dirt" {
		t.Fatalf("slots not swapped: %+v %+v", e.Container.Get(0), e.Container.Get(3))
	}
}

func TestQuickMoveFillsThenCreatesStack(t *testing.T) {
	e := newTestEngine()
	e.QuickMove = func(slot int) (int, int) { return 0, 9 }
	e.Container.Set(4, Stack{ItemID: "minecraft:dirt", Count: 10})
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 60})
	if _, err := e.Apply(Click{Mode: ModeQuickMove, Slot: 4, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e.Container.Get(0).Count != 64 {
		t.Fatalf("expected slot 0 topped up to 64, got %d", e.Container.Get(0).Count)
	}
	if !e.Container.Get(4).Empty() {
		t.Fatalf("expected source slot to be emptied once the overflow found a free slot")
	}
	if e.Container.Get(1).Count != 6 {
		t.Fatalf("expected the 6 leftover after filling slot 0 to create a new stack in slot 1, got %d", e.Container.Get(1).Count)
	}
}

func TestStateMismatchRejected(t *testing.T) {
	e := newTestEngine()
	_, err := e.Apply(Click{Mode: ModePickup, Slot: 0, StateID: 999})
	if _, ok := err.(ErrStateMismatch); !ok {
		t.Fatalf("expected ErrStateMismatch, got %v", err)
	}
}

func TestOutsideSlotDropsCursor(t *testing.T) {
	e := newTestEngine()
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 5}
	carried, err := e.Apply(Click{Mode: ModePickup, Slot: OutsideSlot, StateID: e.Container.StateID()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !carried.Empty() {
		t.Fatalf("expected cursor to empty when clicking outside slot")
	}
}

func TestOutsideSlotRightClickDropsOne(t *testing.T) {
	e := newTestEngine()
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 5}
	carried, err := e.Apply(Click{Mode: ModePickup, Slot: OutsideSlot, Button: 1, StateID: e.Container.StateID()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if carried.Count != 4 {
		t.Fatalf("expected cursor to drop to 4 after right-click outside, got %d", carried.Count)
	}
}

func TestCloneOnlyAppliesInCreative(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 3})

	if _, err := e.Apply(Click{Mode: ModeClone, Slot: 0, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !e.Carried.Empty() {
		t.Fatalf("expected clone to be a no-op outside creative, got %+v", e.Carried)
	}

	e.GameMode = Creative
	if _, err := e.Apply(Click{Mode: ModeClone, Slot: 0, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e.Carried.ItemID != "minecraft:dirt" || e.Carried.Count != e.Container.MaxStack {
		t.Fatalf("expected a full stack cloned in creative, got %+v", e.Carried)
	}
}

func TestDragLeftClickDistributesEvenly(t *testing.T) {
	e := newTestEngine()
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 9}

	steps := []Click{
		{Mode: ModeDrag, Slot: OutsideSlot, Button: 0},
		{Mode: ModeDrag, Slot: 0, Button: 1},
		{Mode: ModeDrag, Slot: 1, Button: 1},
		{Mode: ModeDrag, Slot: 2, Button: 1},
		{Mode: ModeDrag, Slot: OutsideSlot, Button: 2},
	}
	for _, step := range steps {
		step.StateID = e.Container.StateID()
		if _, err := e.Apply(step); err != nil {
			t.Fatalf("apply drag step %+v: %v", step, err)
		}
	}

	for _, slot := range []int{0, 1, 2} {
		if got := e.Container.Get(slot).Count; got != 3 {
			t.Fatalf("expected slot %d to gain 3 items, got %d", slot, got)
		}
	}
	if !e.Carried.Empty() {
		t.Fatalf("expected cursor to empty after an evenly divisible drag, got %+v", e.Carried)
	}
}

func TestDragRightClickPlacesOneEach(t *testing.T) {
	e := newTestEngine()
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 5}

	steps := []Click{
		{Mode: ModeDrag, Slot: OutsideSlot, Button: 4},
		{Mode: ModeDrag, Slot: 0, Button: 5},
		{Mode: ModeDrag, Slot: 1, Button: 5},
		{Mode: ModeDrag, Slot: OutsideSlot, Button: 6},
	}
	for _, step := range steps {
		step.StateID = e.Container.StateID()
		if _, err := e.Apply(step); err != nil {
			t.Fatalf("apply drag step %+v: %v", step, err)
		}
	}

	if e.Container.Get(0).Count != 1 || e.Container.Get(1).Count != 1 {
		t.Fatalf("expected one item placed per slot, got %+v / %+v", e.Container.Get(0), e.Container.Get(1))
	}
	if e.Carried.Count != 3 {
		t.Fatalf("expected cursor to have 3 left after placing 2, got %d", e.Carried.Count)
	}
}

func TestDoubleClickGathersMatchingStacks(t *testing.T) {
	e := newTestEngine()
	e.Container.Set(0, Stack{ItemID: "minecraft:dirt", Count: 10})
	e.Container.Set(1, Stack{ItemID: "minecraft:dirt", Count: 10})
	e.Carried = Stack{ItemID: "minecraft:dirt", Count: 50}
	if _, err := e.Apply(Click{Mode: ModeDoubleClick, StateID: e.Container.StateID()}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e.Carried.Count != 64 {
		t.Fatalf("expected cursor to cap at 64, got %d", e.Carried.Count)
	}
}
