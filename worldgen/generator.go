// Package worldgen turns the density-function graph in worldgen/density
// into actual chunks: a fixed overworld and End terrain shape compiled once
// per Generator, sampled per block column to decide solid/air/water, and
// packed into a chunk.Chunk the same way a chunk loaded from disk would be.
package worldgen

import (
	"fmt"

	"github.com/kilnmc/kiln/world/chunk"
	"github.com/kilnmc/kiln/worldgen/density"
)

// Provisional block state ids, standing in for the block/state registry
// until a full vanilla block list is loaded into it (see DESIGN.md) — the
// chunk format itself treats state ids as opaque uint32s, so generation
// doesn't need the registry to produce structurally valid chunks.
const (
	StateAir     uint32 = 0
	StateStone   uint32 = 1
	StateWater   uint32 = 2
	StateBedrock uint32 = 3
)

const endDimension = "minecraft:the_end"

// Generator compiles the overworld and End density graphs once and samples
// them on demand for each requested chunk, implementing world.Generator.
type Generator struct {
	seed   int64
	source *octaveNoiseSource

	overworld     *density.CompiledGraph
	overworldRoot int
	end           *density.CompiledGraph
	endRoot       int

	seaLevel int32
}

// NewGenerator builds a Generator whose terrain is fully determined by
// seed: the same seed always compiles the same graphs and seeds the same
// octave noise, so two Generators built from it produce identical chunks.
func NewGenerator(seed int64) *Generator {
	overworld, overworldRoot := compileOverworldGraph()
	end, endRoot := compileEndGraph()
	return &Generator{
		seed:          seed,
		source:        newOctaveNoiseSource(seed),
		overworld:     overworld,
		overworldRoot: overworldRoot,
		end:           end,
		endRoot:       endRoot,
		seaLevel:      63,
	}
}

// GenerateChunk samples the density graph for dimension across the
// requested chunk's full column range, filling stone where density is
// positive, water below sea level in open space, bedrock at the floor, and
// air everywhere else.
func (g *Generator) GenerateChunk(dimension string, x, z, minSectionY, maxSectionY int32) (*chunk.Chunk, error) {
	graph, root := g.overworld, g.overworldRoot
	if dimension == endDimension {
		graph, root = g.end, g.endRoot
	}
	sampler := density.NewSampler(graph, g.source)

	c := chunk.NewChunk(x, z, minSectionY, maxSectionY)
	minY := minSectionY * chunk.SectionHeight
	maxY := maxSectionY * chunk.SectionHeight

	for lx := 0; lx < chunk.SectionHeight; lx++ {
		wx := float64(x)*chunk.SectionHeight + float64(lx)
		for lz := 0; lz < chunk.SectionHeight; lz++ {
			wz := float64(z)*chunk.SectionHeight + float64(lz)
			// One SampleID per column lets Cache2D/CellCache wrapper nodes in the
			// graph reuse their single evaluation across every Y in that column.
			sampleID := columnSampleID(x*chunk.SectionHeight+int32(lx), z*chunk.SectionHeight+int32(lz))
			for y := maxY - 1; y >= minY; y-- {
				if y == minY {
					c.SetBlockAt(lx, y, lz, StateBedrock)
					continue
				}
				v, err := sampler.Sample(root, wx, float64(y), wz, density.SampleOptions{SampleID: sampleID})
				if err != nil {
					return nil, fmt.Errorf("worldgen: sample (%.0f,%d,%.0f): %w", wx, y, wz, err)
				}
				switch {
				case v > 0:
					c.SetBlockAt(lx, y, lz, StateStone)
				case y < g.seaLevel && dimension != endDimension:
					c.SetBlockAt(lx, y, lz, StateWater)
				}
			}
		}
	}
	c.ClearDirty()
	return c, nil
}

func columnSampleID(x, z int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(z))
}

// compileOverworldGraph builds a single density function combining
// continentalness/erosion/ridges shape noise (each warped by the
// ShiftA/ShiftB offset noise the way vanilla's noise router warps its
// terrain-shape inputs), a coarse InterpolatedNoiseSampler base shape, a
// height-based gradient that pushes density negative near the world's
// vertical extremes, and a Beardifier placeholder term for structures this
// generator doesn't place. BlendDensity/Clamp close the graph off the same
// way the vanilla noise router's final_density function does.
func compileOverworldGraph() (*density.CompiledGraph, int) {
	continents := density.Wrapper{
		Kind:  density.WrapperCache2D,
		Input: density.Noise{Noise: "minecraft:continentalness", XZScale: 1.0 / 512, YScale: 1},
	}
	erosion := density.Wrapper{
		Kind:  density.WrapperCache2D,
		Input: density.Noise{Noise: "minecraft:erosion", XZScale: 1.0 / 256, YScale: 1},
	}
	ridges := density.ShiftedNoise{
		Noise: "minecraft:ridges", XZScale: 1.0 / 128, YScale: 1,
		ShiftX: density.ShiftA{Noise: "minecraft:offset"},
		ShiftY: density.Constant{Value: 0},
		ShiftZ: density.ShiftB{Noise: "minecraft:offset"},
	}

	shape := density.Binary{Op: "add",
		Left:  continents,
		Right: density.Linear{Argument1: 0.5, Input: erosion},
	}
	shape = density.Binary{Op: "add",
		Left:  shape,
		Right: density.Linear{Argument1: 0.25, Input: ridges},
	}

	base := density.InterpolatedNoiseSampler{
		ScaledXZScale: 1, ScaledYScale: 1, XZFactor: 1, YFactor: 1, SmearScaleMultiplier: 4,
	}

	heightFalloff := density.YClampedGradient{FromY: -64, ToY: 320, FromValue: 0.15, ToValue: -0.6}

	combined := density.Binary{Op: "add", Left: shape, Right: base}
	combined = density.Binary{Op: "add", Left: combined, Right: heightFalloff}
	combined = density.Binary{Op: "add", Left: combined, Right: density.Beardifier{}}

	blended := density.BlendDensity{Input: combined}
	clamped := density.Clamp{Min: -1, Max: 1, Input: blended}

	g := density.Compile(clamped)
	return g, g.Root(0)
}

// compileEndGraph builds the End dimension's much simpler shape: islands
// near the origin from EndIslands, clamped the same way the overworld graph
// is.
func compileEndGraph() (*density.CompiledGraph, int) {
	clamped := density.Clamp{Min: -1, Max: 1, Input: density.EndIslands{}}
	g := density.Compile(clamped)
	return g, g.Root(0)
}

// octaveNoiseSource resolves every named noise parameter the compiled
// graphs reference to its own independently seeded octave stack, mirroring
// the noise router's "one sampler per named parameter" design. A name it
// has no entry for (e.g. a structure-carving Beardifier placeholder)
// answers 0 rather than erroring, so optional contributions degrade
// gracefully instead of failing generation.
type octaveNoiseSource struct {
	octaves map[string]*density.OctaveSampler
}

func newOctaveNoiseSource(seed int64) *octaveNoiseSource {
	names := []string{
		"minecraft:continentalness",
		"minecraft:erosion",
		"minecraft:ridges",
		"minecraft:offset",
		"minecraft:interpolated_lower",
		"minecraft:interpolated_upper",
		"minecraft:interpolated_interpolation",
		"minecraft:end_islands",
	}
	src := &octaveNoiseSource{octaves: make(map[string]*density.OctaveSampler, len(names))}
	for i, name := range names {
		src.octaves[name] = density.NewOctaveSampler(seed+int64(i)*7919+1, -4, 6)
	}
	return src
}

func (s *octaveNoiseSource) Sample(name string, x, y, z float64) (float64, error) {
	o, ok := s.octaves[name]
	if !ok {
		return 0, nil
	}
	return o.Sample(x, y, z), nil
}
