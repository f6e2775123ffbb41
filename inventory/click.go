package inventory

import "fmt"

// ClickMode names the click protocol's dispatch mode, matching the
// server-authoritative slot-click semantics described for screen handlers.
type ClickMode int

const (
	ModePickup ClickMode = iota
	ModeQuickMove
	ModeSwap
	ModeClone
	ModeThrow
	ModeDrag
	ModeDoubleClick
)

// Click describes one container-click packet's fields.
type Click struct {
	Mode    ClickMode
	Slot    int
	Button  int
	StateID int32
	Carried Stack
}

// ErrStateMismatch is returned when the client's reported StateID does not
// match the container's current revision, meaning the container must be
// fully resynced to the client before the click can be trusted.
type ErrStateMismatch struct{ Expected, Got int32 }

func (e ErrStateMismatch) Error() string {
	return fmt.Sprintf("inventory: state id mismatch: expected %d, got %d", e.Expected, e.Got)
}

// QuickMoveTarget maps a slot to the slot range it should be quick-moved
// into, letting each container "kind" define its own transfer rules (e.g.
// chest slots move into the player hotbar/inventory and vice versa).
type QuickMoveTarget func(slot int) (rangeStart, rangeEnd int)

// GameMode mirrors the subset of the protocol's four game modes the click
// engine cares about: Clone (middle click) and the creative drag-fill are
// only legal in Creative.
type GameMode int

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

// dragState tracks an in-progress Drag click sequence: the protocol sends a
// start click (slot OUTSIDE), one add-slot click per slot the cursor passed
// over, then an end click (slot OUTSIDE again) that triggers distribution.
type dragState struct {
	active bool
	button int // the start click's button: 0 left, 4 right, 8 middle
	slots  []int
}

// Engine applies clicks to a Container, holding the cursor stack between
// calls the way a client's "carried item" persists across packets.
type Engine struct {
	Container *Container
	QuickMove QuickMoveTarget
	GameMode  GameMode

	Carried Stack

	drag dragState
}

// Apply validates and executes one click, returning the resulting carried
// stack.
func (e *Engine) Apply(c Click) (Stack, error) {
	if c.StateID != e.Container.StateID() {
		return e.Carried, ErrStateMismatch{Expected: e.Container.StateID(), Got: c.StateID}
	}

	switch c.Mode {
	case ModePickup:
		e.applyPickup(c)
	case ModeQuickMove:
		e.applyQuickMove(c)
	case ModeSwap:
		e.applySwap(c)
	case ModeClone:
		e.applyClone(c)
	case ModeThrow:
		e.applyThrow(c)
	case ModeDoubleClick:
		e.applyDoubleClick(c)
	case ModeDrag:
		e.applyDrag(c)
	default:
		return e.Carried, fmt.Errorf("inventory: unknown click mode %d", c.Mode)
	}
	return e.Carried, nil
}

// applyPickup implements left-click (button 0, merge-or-swap) and
// right-click (button 1, split half) pickup behavior on a single slot.
func (e *Engine) applyPickup(c Click) {
	if c.Slot == OutsideSlot {
		if c.Button == 1 {
			if e.Carried.Count > 0 {
				e.Carried.Count--
			}
			if e.Carried.Count <= 0 {
				e.Carried = Stack{}
			}
			return
		}
		e.Carried = Stack{}
		return
	}
	slotStack := e.Container.Get(c.Slot)

	if c.Button == 0 {
		if slotStack.MergeableWith(e.Carried, e.Container.MaxStack) && !slotStack.Empty() && !e.Carried.Empty() {
			total := slotStack.Count + e.Carried.Count
			if total > e.Container.MaxStack {
				slotStack.Count = e.Container.MaxStack
				e.Carried.Count = total - e.Container.MaxStack
			} else {
				slotStack.Count = total
				e.Carried = Stack{}
			}
			e.Container.Set(c.Slot, slotStack)
			return
		}
		e.Container.Set(c.Slot, e.Carried)
		e.Carried = slotStack
		return
	}

	// button 1: right-click, pick up half or place one
	if e.Carried.Empty() {
		half := (slotStack.Count + 1) / 2
		e.Carried = Stack{ItemID: slotStack.ItemID, Count: half, NBT: slotStack.NBT}
		slotStack.Count -= half
		if slotStack.Count <= 0 {
			slotStack = Stack{}
		}
		e.Container.Set(c.Slot, slotStack)
		return
	}
	if slotStack.Empty() || (slotStack.ItemID == e.Carried.ItemID && string(slotStack.NBT) == string(e.Carried.NBT)) {
		if slotStack.Count < e.Container.MaxStack {
			slotStack.ItemID = e.Carried.ItemID
			slotStack.NBT = e.Carried.NBT
			slotStack.Count++
			e.Container.Set(c.Slot, slotStack)
			e.Carried.Count--
			if e.Carried.Count <= 0 {
				e.Carried = Stack{}
			}
		}
	}
}

// applyQuickMove implements shift-click: move the slot's stack into the
// complementary range QuickMove names, merging into existing stacks first.
func (e *Engine) applyQuickMove(c Click) {
	if e.QuickMove == nil || c.Slot == OutsideSlot {
		return
	}
	src := e.Container.Get(c.Slot)
	if src.Empty() {
		return
	}
	start, end := e.QuickMove(c.Slot)

	for i := start; i < end && src.Count > 0; i++ {
		if i == c.Slot {
			continue
		}
		dst := e.Container.Get(i)
		if dst.MergeableWith(src, e.Container.MaxStack) && !dst.Empty() {
			room := e.Container.MaxStack - dst.Count
			move := min(room, src.Count)
			dst.Count += move
			src.Count -= move
			e.Container.Set(i, dst)
		}
	}
	for i := start; i < end && src.Count > 0; i++ {
		if i == c.Slot {
			continue
		}
		dst := e.Container.Get(i)
		if dst.Empty() {
			dst = Stack{ItemID: src.ItemID, NBT: src.NBT, Count: min(src.Count, e.Container.MaxStack)}
			src.Count -= dst.Count
			e.Container.Set(i, dst)
		}
	}
	if src.Count <= 0 {
		src = Stack{}
	}
	e.Container.Set(c.Slot, src)
}

// applySwap implements hotbar-swap (button 0-8) and offhand-swap (button 40)
// clicks: exchange the clicked slot's contents with hotbar slot `button`.
func (e *Engine) applySwap(c Click) {
	if c.Slot == OutsideSlot {
		return
	}
	other := e.Container.Get(c.Button)
	cur := e.Container.Get(c.Slot)
	e.Container.Set(c.Slot, other)
	e.Container.Set(c.Button, cur)
}

// applyClone implements the creative-mode "middle click" clone: the cursor
// picks up a full stack of the clicked slot's item without consuming it.
// Only legal in Creative; other game modes ignore the click entirely.
func (e *Engine) applyClone(c Click) {
	if e.GameMode != Creative || c.Slot == OutsideSlot {
		return
	}
	s := e.Container.Get(c.Slot)
	if s.Empty() {
		return
	}
	e.Carried = Stack{ItemID: s.ItemID, NBT: s.NBT, Count: e.Container.MaxStack}
}

// applyThrow implements drop-one (button 0) and drop-stack (button 1) on
// the clicked slot. The actual world item-entity spawn is left to the
// caller; this only removes the stack from the container.
func (e *Engine) applyThrow(c Click) {
	if c.Slot == OutsideSlot {
		return
	}
	s := e.Container.Get(c.Slot)
	if s.Empty() {
		return
	}
	if c.Button == 1 {
		e.Container.Set(c.Slot, Stack{})
		return
	}
	s.Count--
	if s.Count <= 0 {
		s = Stack{}
	}
	e.Container.Set(c.Slot, s)
}

// applyDoubleClick implements double-click-to-collect: gather matching
// stacks from the whole container into the already-carried stack up to max
// stack size.
func (e *Engine) applyDoubleClick(c Click) {
	if e.Carried.Empty() {
		return
	}
	for i := range e.Container.Slots {
		if e.Carried.Count >= e.Container.MaxStack {
			break
		}
		s := e.Container.Get(i)
		if s.Empty() || s.ItemID != e.Carried.ItemID || string(s.NBT) != string(e.Carried.NBT) {
			continue
		}
		room := e.Container.MaxStack - e.Carried.Count
		move := min(room, s.Count)
		e.Carried.Count += move
		s.Count -= move
		if s.Count <= 0 {
			s = Stack{}
		}
		e.Container.Set(i, s)
	}
}

// applyDrag handles one click of a Drag sequence. The protocol multiplexes
// start/add-slot/end across the button field: 0/4/8 start a left/right/
// middle drag, 1/5/9 add the clicked slot to it, and 2/6/10 end it and
// trigger distribution.
func (e *Engine) applyDrag(c Click) {
	switch c.Button {
	case 0, 4, 8:
		e.drag = dragState{active: true, button: c.Button}
	case 1, 5, 9:
		if !e.drag.active {
			return
		}
		e.drag.slots = append(e.drag.slots, c.Slot)
	case 2, 6, 10:
		if !e.drag.active {
			return
		}
		e.finishDrag()
		e.drag = dragState{}
	}
}

// finishDrag distributes the carried stack across the slots accumulated
// during the drag: an even split per slot for a left drag, one item per
// slot for a right drag, or (Creative only) a full stack per slot for a
// middle drag.
func (e *Engine) finishDrag() {
	slots := e.drag.slots
	if len(slots) == 0 || e.Carried.Empty() {
		return
	}

	switch e.drag.button {
	case 0:
		n := len(slots)
		per := e.Carried.Count / n
		if per <= 0 {
			return
		}
		for _, slot := range slots {
			e.depositDrag(slot, per)
		}
		e.Carried.Count -= per * n
		if e.Carried.Count <= 0 {
			e.Carried = Stack{}
		}
	case 4:
		for _, slot := range slots {
			if e.Carried.Count <= 0 {
				break
			}
			e.depositDrag(slot, 1)
			e.Carried.Count--
		}
		if e.Carried.Count <= 0 {
			e.Carried = Stack{}
		}
	case 8:
		if e.GameMode != Creative {
			return
		}
		for _, slot := range slots {
			e.depositDrag(slot, e.Container.MaxStack)
		}
	}
}

// depositDrag adds amount of the carried item into slot, capped by the
// container's max stack size, refusing to merge onto an incompatible
// existing stack.
func (e *Engine) depositDrag(slot int, amount int) {
	dst := e.Container.Get(slot)
	if dst.Empty() {
		dst = Stack{ItemID: e.Carried.ItemID, NBT: e.Carried.NBT}
	} else if dst.ItemID != e.Carried.ItemID || string(dst.NBT) != string(e.Carried.NBT) {
		return
	}
	room := e.Container.MaxStack - dst.Count
	if amount > room {
		amount = room
	}
	if amount <= 0 {
		return
	}
	dst.Count += amount
	e.Container.Set(slot, dst)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
