// Package block implements the block/state registry: a bijective mapping
// between block identifiers + property tuples and contiguous integer state
// ids, as served over the network and stored on disk.
package block

import (
	"fmt"
	"sort"

	"github.com/segmentio/fasthash/fnv1a"
)

// Property is one named, closed-enum property a block type can declare
// (e.g. "facing" with values "north","south","east","west").
type Property struct {
	Name   string
	Values []string
}

// indexOf returns the mixed-radix digit for value, or -1 if absent.
func (p Property) indexOf(value string) int {
	for i, v := range p.Values {
		if v == value {
			return i
		}
	}
	return -1
}

// Definition describes one block type: its identifier, its declared
// properties (order matters — it fixes the mixed-radix digit order), and
// which property tuple is the default state.
type Definition struct {
	Name       string
	Properties []Property
	Default    map[string]string
}

// stateCount returns how many distinct property tuples (and therefore state
// ids) this definition spans.
func (d Definition) stateCount() int {
	n := 1
	for _, p := range d.Properties {
		n *= len(p.Values)
	}
	return n
}

// entry is the registry's per-block bookkeeping: its state-id range and the
// mixed-radix place values used to encode/decode property tuples within it.
type entry struct {
	def           Definition
	baseStateID   uint32
	radixPlace    []int // one per property, in Properties order
	defaultOffset int
}

// Registry is the built, queryable block/state table.
type Registry struct {
	entries   []entry
	byName    map[string]int
	nameHash  map[uint64]int // fnv1a(name) -> index, for the dense lookup path
	stateBase []uint32       // parallel to entries, for StateByID's binary search
}

// Build compiles defs (in the order they should receive contiguous state-id
// ranges) into a Registry. Block order, and therefore numeric state ids, is
// exactly the order defs is given in.
func Build(defs []Definition) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]int),
		nameHash: make(map[uint64]int),
	}

	var next uint32
	for i, def := range defs {
		if _, dup := r.byName[def.Name]; dup {
			return nil, fmt.Errorf("block: duplicate definition %q", def.Name)
		}

		placeValues := make([]int, len(def.Properties))
		place := 1
		for pi := len(def.Properties) - 1; pi >= 0; pi-- {
			placeValues[pi] = place
			place *= len(def.Properties[pi].Values)
		}

		defaultOffset := 0
		for pi, prop := range def.Properties {
			val, ok := def.Default[prop.Name]
			if !ok {
				val = prop.Values[0]
			}
			idx := prop.indexOf(val)
			if idx < 0 {
				return nil, fmt.Errorf("block: %s: default value %q not in property %q", def.Name, val, prop.Name)
			}
			defaultOffset += idx * placeValues[pi]
		}

		e := entry{def: def, baseStateID: next, radixPlace: placeValues, defaultOffset: defaultOffset}
		r.entries = append(r.entries, e)
		r.byName[def.Name] = i
		r.nameHash[fnv1a.HashString64(def.Name)] = i
		r.stateBase = append(r.stateBase, next)

		next += uint32(def.stateCount())
	}

	return r, nil
}

// ByName looks up a block definition's index by its identifier using the
// dense hash table built at registry construction, falling back to the
// exact map on a hash collision.
func (r *Registry) ByName(name string) (int, bool) {
	if i, ok := r.nameHash[fnv1a.HashString64(name)]; ok && r.entries[i].def.Name == name {
		return i, true
	}
	i, ok := r.byName[name]
	return i, ok
}

// DefaultStateID returns the default state id for the named block.
func (r *Registry) DefaultStateID(name string) (uint32, error) {
	i, ok := r.ByName(name)
	if !ok {
		return 0, fmt.Errorf("block: unknown block %q", name)
	}
	e := r.entries[i]
	return e.baseStateID + uint32(e.defaultOffset), nil
}

// StateID encodes a property tuple for the named block into its state id.
func (r *Registry) StateID(name string, props map[string]string) (uint32, error) {
	i, ok := r.ByName(name)
	if !ok {
		return 0, fmt.Errorf("block: unknown block %q", name)
	}
	e := r.entries[i]
	offset := 0
	for pi, prop := range e.def.Properties {
		val, ok := props[prop.Name]
		if !ok {
			val = prop.Values[0]
			if dv, ok := e.def.Default[prop.Name]; ok {
				val = dv
			}
		}
		idx := prop.indexOf(val)
		if idx < 0 {
			return 0, fmt.Errorf("block: %s: value %q not valid for property %q", name, val, prop.Name)
		}
		offset += idx * e.radixPlace[pi]
	}
	return e.baseStateID + uint32(offset), nil
}

// StateByID decodes a state id back to its block name and property tuple.
func (r *Registry) StateByID(id uint32) (name string, props map[string]string, err error) {
	i := sort.Search(len(r.stateBase), func(k int) bool { return r.stateBase[k] > id }) - 1
	if i < 0 || i >= len(r.entries) {
		return "", nil, fmt.Errorf("block: state id %d out of range", id)
	}
	e := r.entries[i]
	offset := int(id - e.baseStateID)
	if offset >= e.def.stateCount() {
		return "", nil, fmt.Errorf("block: state id %d out of range for %s", id, e.def.Name)
	}

	props = make(map[string]string, len(e.def.Properties))
	remaining := offset
	for pi, prop := range e.def.Properties {
		idx := remaining / e.radixPlace[pi]
		remaining -= idx * e.radixPlace[pi]
		props[prop.Name] = prop.Values[idx]
	}
	return e.def.Name, props, nil
}

// StateCount returns the total number of distinct state ids in the
// registry.
func (r *Registry) StateCount() uint32 {
	if len(r.entries) == 0 {
		return 0
	}
	last := r.entries[len(r.entries)-1]
	return last.baseStateID + uint32(last.def.stateCount())
}
