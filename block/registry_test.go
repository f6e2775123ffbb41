package block

import "testing"

func testDefs() []Definition {
	facing := Property{Name: "facing", Values: []string{"north", "south", "east", "west"}}
	lit := Property{Name: "lit", Values: []string{"true", "false"}}
	return []Definition{
		{Name: "minecraft:air"},
		{
			Name:       "minecraft:furnace",
			Properties: []Property{facing, lit},
			Default:    map[string]string{"facing": "north", "lit": "false"},
		},
		{Name: "minecraft:stone"},
	}
}

func TestStateIDRoundTrip(t *testing.T) {
	r, err := Build(testDefs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	id, err := r.StateID("minecraft:furnace", map[string]string{"facing": "east", "lit": "true"})
	if err != nil {
		t.Fatalf("state id: %v", err)
	}
	name, props, err := r.StateByID(id)
	if err != nil {
		t.Fatalf("state by id: %v", err)
	}
	if name != "minecraft:furnace" {
		t.Fatalf("got name %q", name)
	}
	if props["facing"] != "east" || props["lit"] != "true" {
		t.Fatalf("got props %+v", props)
	}
}

func TestContiguousStateRangesPerBlock(t *testing.T) {
	r, err := Build(testDefs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	airID, _ := r.DefaultStateID("minecraft:air")
	// the furnace's range starts at its all-first-values tuple; its declared
	// default (lit=false) lies one state further in.
	furnaceFirst, _ := r.StateID("minecraft:furnace", map[string]string{"facing": "north", "lit": "true"})
	if furnaceFirst != airID+1 {
		t.Fatalf("expected furnace's range to start right after air's single state: air=%d furnace=%d", airID, furnaceFirst)
	}
	stoneID, _ := r.DefaultStateID("minecraft:stone")
	if stoneID != furnaceFirst+8 {
		t.Fatalf("expected stone to start after furnace's 4*2=8 states: got %d want %d", stoneID, furnaceFirst+8)
	}
}

func TestDefaultStateUsesDeclaredDefaults(t *testing.T) {
	r, err := Build(testDefs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	id, err := r.DefaultStateID("minecraft:furnace")
	if err != nil {
		t.Fatalf("default state: %v", err)
	}
	_, props, err := r.StateByID(id)
	if err != nil {
		t.Fatalf("state by id: %v", err)
	}
	if props["facing"] != "north" || props["lit"] != "false" {
		t.Fatalf("got props %+v", props)
	}
}

func TestUnknownBlockErrors(t *testing.T) {
	r, err := Build(testDefs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := r.DefaultStateID("minecraft:does-not-exist"); err == nil {
		t.Fatalf("expected error for unknown block")
	}
}

func TestDuplicateDefinitionRejected(t *testing.T) {
	defs := append(testDefs(), Definition{Name: "minecraft:stone"})
	if _, err := Build(defs); err == nil {
		t.Fatalf("expected error for duplicate block name")
	}
}
