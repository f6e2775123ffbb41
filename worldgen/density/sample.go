package density

import (
	"fmt"
	"math"
)

// NoiseSource resolves a named noise parameter (e.g. "minecraft:continents")
// to a sampler. Density-function nodes that reference a noise by name defer
// to one of these rather than embedding sampler state directly, so the same
// compiled graph can be reused across worlds with different seeds.
type NoiseSource interface {
	Sample(name string, x, y, z float64) (float64, error)
}

// SampleOptions carries the per-column caching identity used by Wrapper
// nodes: a fresh SampleID should be assigned once per logical (x,z) column
// visit so CacheOnce/Cache2D/CellCache wrappers can recognize repeat
// samples within that column without cross-column collisions.
type SampleOptions struct {
	SampleID uint64
}

// Sampler evaluates a CompiledGraph bottom-up against a NoiseSource.
type Sampler struct {
	graph  *CompiledGraph
	source NoiseSource

	cache      map[cacheKey]float64
	cacheOnce  map[cacheKey]float64
}

type cacheKey struct {
	node int
	id   uint64
}

// NewSampler returns a Sampler over graph using source to resolve named
// noise parameters.
func NewSampler(graph *CompiledGraph, source NoiseSource) *Sampler {
	return &Sampler{
		graph:     graph,
		source:    source,
		cache:     make(map[cacheKey]float64),
		cacheOnce: make(map[cacheKey]float64),
	}
}

// Sample evaluates the root'th compiled root at (x, y, z).
func (s *Sampler) Sample(root int, x, y, z float64, opts SampleOptions) (float64, error) {
	return s.eval(root, x, y, z, opts)
}

func (s *Sampler) eval(idx int, x, y, z float64, opts SampleOptions) (float64, error) {
	if idx < 0 {
		return 0, nil
	}
	cn := s.graph.nodes[idx]

	switch n := cn.node.(type) {
	case Constant:
		return n.Value, nil

	case Noise:
		return s.source.Sample(n.Noise, x*n.XZScale, y*n.YScale, z*n.XZScale)

	case ShiftedNoise:
		sx, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		sy, err := s.eval(cn.children[1], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		sz, err := s.eval(cn.children[2], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		return s.source.Sample(n.Noise, (x+sx)*n.XZScale, (y+sy)*n.YScale, (z+sz)*n.XZScale)

	case Unary:
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		return applyUnary(n.Op, v), nil

	case Binary:
		l, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		r, err := s.eval(cn.children[1], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		return applyBinary(n.Op, l, r), nil

	case Linear:
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		return n.Argument1*v + n.Argument2, nil

	case Clamp:
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		return clampf(v, n.Min, n.Max), nil

	case RangeChoice:
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		if v >= n.Min && v < n.Max {
			return s.eval(cn.children[1], x, y, z, opts)
		}
		return s.eval(cn.children[2], x, y, z, opts)

	case YClampedGradient:
		t := clampf((y-n.FromY)/(n.ToY-n.FromY), 0, 1)
		return n.FromValue + t*(n.ToValue-n.FromValue), nil

	case Spline:
		return s.evalSpline(n, cn, x, y, z, opts)

	case Wrapper:
		return s.evalWrapper(idx, n, cn, x, y, z, opts)

	case WeirdScaled:
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		rarity := weirdnessRarity(v)
		return s.source.Sample(n.Rarity, x/rarity, y, z/rarity)

	case Beardifier:
		return s.source.Sample("minecraft:beardifier", x, y, z)

	case BlendAlpha:
		return 1, nil

	case BlendOffset:
		return 0, nil

	case BlendDensity:
		return s.eval(cn.children[0], x, y, z, opts)

	case ShiftA:
		return s.source.Sample(n.Noise, x*0.25, 0, z*0.25)

	case ShiftB:
		return s.source.Sample(n.Noise, z*0.25, 0, x*0.25)

	case InterpolatedNoiseSampler:
		return s.evalInterpolatedNoise(n, x, y, z)

	case EndIslands:
		return s.evalEndIslands(x, z)

	default:
		return 0, fmt.Errorf("density: unhandled node kind %q", cn.node.kind())
	}
}

func (s *Sampler) evalSpline(n Spline, cn compiledNode, x, y, z float64, opts SampleOptions) (float64, error) {
	input, err := s.eval(cn.children[0], x, y, z, opts)
	if err != nil {
		return 0, err
	}
	if len(n.Points) == 0 {
		return 0, nil
	}
	if input <= n.Points[0].Location {
		return s.eval(cn.children[1], x, y, z, opts)
	}
	last := len(n.Points) - 1
	if input >= n.Points[last].Location {
		return s.eval(cn.children[last+1], x, y, z, opts)
	}
	for i := 0; i < last; i++ {
		a, b := n.Points[i], n.Points[i+1]
		if input >= a.Location && input < b.Location {
			va, err := s.eval(cn.children[i+1], x, y, z, opts)
			if err != nil {
				return 0, err
			}
			vb, err := s.eval(cn.children[i+2], x, y, z, opts)
			if err != nil {
				return 0, err
			}
			t := (input - a.Location) / (b.Location - a.Location)
			return lerp(t, va, vb), nil
		}
	}
	return 0, nil
}

// evalInterpolatedNoise samples three reserved named noises (a coarse
// "lower" and "upper" octave pair plus an "interpolation" selector) and
// blends between lower and upper the way vanilla's base terrain shape noise
// does, simplified to a single interpolation factor rather than vanilla's
// full vertical cell lattice.
func (s *Sampler) evalInterpolatedNoise(n InterpolatedNoiseSampler, x, y, z float64) (float64, error) {
	xzScale := 684.412 * n.XZFactor * n.ScaledXZScale
	yScale := 684.412 * n.YFactor * n.ScaledYScale

	lower, err := s.source.Sample("minecraft:interpolated_lower", x*xzScale, y*yScale, z*xzScale)
	if err != nil {
		return 0, err
	}
	upper, err := s.source.Sample("minecraft:interpolated_upper", x*xzScale, y*yScale, z*xzScale)
	if err != nil {
		return 0, err
	}
	smear, err := s.source.Sample("minecraft:interpolated_interpolation",
		x*xzScale/n.SmearScaleMultiplier, y*yScale/n.SmearScaleMultiplier, z*xzScale/n.SmearScaleMultiplier)
	if err != nil {
		return 0, err
	}
	t := clampf((smear+1)/2, 0, 1)
	return lerp(t, lower, upper) / 128, nil
}

// evalEndIslands reproduces the shape (not the exact constants) of
// vanilla's End-dimension falloff: a noise-perturbed island near the origin
// that drops toward void with distance, independent of the column's depth.
func (s *Sampler) evalEndIslands(x, z float64) (float64, error) {
	cellX, cellZ := math.Floor(x/8), math.Floor(z/8)
	raw, err := s.source.Sample("minecraft:end_islands", cellX, 0, cellZ)
	if err != nil {
		return 0, err
	}
	dist := math.Hypot(x, z) / 1024
	v := 0.5 + raw - dist
	return clampf(v, -1, 1), nil
}

func (s *Sampler) evalWrapper(idx int, n Wrapper, cn compiledNode, x, y, z float64, opts SampleOptions) (float64, error) {
	switch n.Kind {
	case WrapperCacheOnce:
		key := cacheKey{node: idx, id: opts.SampleID}
		if v, ok := s.cacheOnce[key]; ok {
			return v, nil
		}
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		s.cacheOnce[key] = v
		return v, nil
	case WrapperCache2D, WrapperCacheFlat, WrapperCellCache:
		key := cacheKey{node: idx, id: opts.SampleID}
		if v, ok := s.cache[key]; ok {
			return v, nil
		}
		v, err := s.eval(cn.children[0], x, y, z, opts)
		if err != nil {
			return 0, err
		}
		s.cache[key] = v
		return v, nil
	default: // WrapperInterpolated: evaluated directly, no caching behavior
		return s.eval(cn.children[0], x, y, z, opts)
	}
}

func applyUnary(op string, v float64) float64 {
	switch op {
	case "abs":
		return absf(v)
	case "square":
		return v * v
	case "cube":
		return v * v * v
	case "half_negative":
		if v < 0 {
			return v * 0.5
		}
		return v
	case "quarter_negative":
		if v < 0 {
			return v * 0.25
		}
		return v
	case "squeeze":
		c := clampf(v, -1, 1)
		return c/2 - c*c*c/24
	default:
		return v
	}
}

func applyBinary(op string, l, r float64) float64 {
	switch op {
	case "add":
		return l + r
	case "mul":
		return l * r
	case "min":
		if l < r {
			return l
		}
		return r
	case "max":
		if l > r {
			return l
		}
		return r
	default:
		return l
	}
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// weirdnessRarity maps a weirdness-noise sample to the rarity divisor the
// WeirdScaled node uses, following the vanilla piecewise mapping's shape: a
// small set of plateaus rather than a continuous function.
func weirdnessRarity(weirdness float64) float64 {
	switch {
	case weirdness < -0.5:
		return 4
	case weirdness < 0:
		return 2
	case weirdness < 0.5:
		return 1
	default:
		return 0.5
	}
}
