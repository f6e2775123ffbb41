// Package inventory implements container slot storage and the click
// protocol (Pickup/QuickMove/Swap/Clone/Throw/Drag/DoubleClick) used to
// modify it from a client's container-click packets.
package inventory

// Stack is an item stack occupying a slot, or the zero value for an empty
// slot.
type Stack struct {
	ItemID string
	Count  int
	NBT    []byte
}

// Empty reports whether the stack represents no item.
func (s Stack) Empty() bool { return s.Count <= 0 || s.ItemID == "" }

// MergeableWith reports whether two stacks could be combined into one
// (same item and NBT, not already at max stack size).
func (s Stack) MergeableWith(o Stack, maxStack int) bool {
	if s.Empty() || o.Empty() {
		return true
	}
	return s.ItemID == o.ItemID && string(s.NBT) == string(o.NBT) && s.Count < maxStack
}

// OutsideSlot is the sentinel slot index the protocol uses for "outside the
// inventory window" (dropping a held stack onto the ground).
const OutsideSlot = -999

// Container is a flat slot array backing one open inventory window. A
// "kind" (chest, furnace, crafting table, ...) is expressed by the caller
// choosing which slot ranges mean what; Container itself is topology-
// agnostic, following the one-engine/many-topologies split the teacher's
// wider container architecture exhibits.
type Container struct {
	Slots    []Stack
	MaxStack int

	stateID int32
}

// NewContainer returns a container with the given slot count.
func NewContainer(slotCount, maxStack int) *Container {
	return &Container{Slots: make([]Stack, slotCount), MaxStack: maxStack}
}

// StateID returns the container's current revision number, incremented on
// every mutating operation so out-of-sync clients can be detected and
// resynced.
func (c *Container) StateID() int32 { return c.stateID }

func (c *Container) bump() { c.stateID++ }

// Get returns the stack at slot.
func (c *Container) Get(slot int) Stack {
	if slot < 0 || slot >= len(c.Slots) {
		return Stack{}
	}
	return c.Slots[slot]
}

// Set assigns the stack at slot and bumps the revision.
func (c *Container) Set(slot int, s Stack) {
	if slot < 0 || slot >= len(c.Slots) {
		return
	}
	c.Slots[slot] = s
	c.bump()
}
