package density

// Node is one component of a density-function expression graph. Concrete
// node kinds are the structs below; Func wraps a Node with its dependency
// list after compilation.
type Node interface {
	kind() string
	canonical() string
	children() []Node
}

// Constant always samples to the same value.
type Constant struct{ Value float64 }

func (Constant) kind() string         { return "constant" }
func (c Constant) canonical() string  { return floatKey(c.Value) }
func (Constant) children() []Node     { return nil }

// Noise samples a named noise parameter at the input coordinates scaled by
// XZScale/YScale.
type Noise struct {
	Noise            string
	XZScale, YScale  float64
}

func (Noise) kind() string { return "noise" }
func (n Noise) canonical() string {
	return n.Noise + "|" + floatKey(n.XZScale) + "|" + floatKey(n.YScale)
}
func (Noise) children() []Node { return nil }

// ShiftedNoise samples Noise but offsets the sampled coordinate by three
// child density functions.
type ShiftedNoise struct {
	Noise                     string
	XZScale, YScale           float64
	ShiftX, ShiftY, ShiftZ    Node
}

func (ShiftedNoise) kind() string { return "shifted_noise" }
func (s ShiftedNoise) canonical() string {
	return s.Noise + "|" + floatKey(s.XZScale) + "|" + floatKey(s.YScale)
}
func (s ShiftedNoise) children() []Node { return []Node{s.ShiftX, s.ShiftY, s.ShiftZ} }

// Unary applies a named single-argument transform (abs, square, cube,
// half_negative, quarter_negative, squeeze) to Input.
type Unary struct {
	Op    string
	Input Node
}

func (Unary) kind() string          { return "unary" }
func (u Unary) canonical() string   { return u.Op }
func (u Unary) children() []Node    { return []Node{u.Input} }

// Binary applies a named two-argument operator (add, mul, min, max) to
// Left and Right.
type Binary struct {
	Op          string
	Left, Right Node
}

func (Binary) kind() string        { return "binary" }
func (b Binary) canonical() string { return b.Op }
func (b Binary) children() []Node  { return []Node{b.Left, b.Right} }

// Linear rescales Input by Argument1*x + Argument2.
type Linear struct {
	Argument1, Argument2 float64
	Input                Node
}

func (Linear) kind() string { return "linear" }
func (l Linear) canonical() string {
	return floatKey(l.Argument1) + "|" + floatKey(l.Argument2)
}
func (l Linear) children() []Node { return []Node{l.Input} }

// Clamp bounds Input to [Min, Max].
type Clamp struct {
	Min, Max float64
	Input    Node
}

func (Clamp) kind() string { return "clamp" }
func (c Clamp) canonical() string {
	return floatKey(c.Min) + "|" + floatKey(c.Max)
}
func (c Clamp) children() []Node { return []Node{c.Input} }

// RangeChoice samples InRange when Input falls in [Min, Max), OutOfRange
// otherwise.
type RangeChoice struct {
	Min, Max           float64
	Input              Node
	InRange, OutOfRange Node
}

func (RangeChoice) kind() string { return "range_choice" }
func (r RangeChoice) canonical() string {
	return floatKey(r.Min) + "|" + floatKey(r.Max)
}
func (r RangeChoice) children() []Node { return []Node{r.Input, r.InRange, r.OutOfRange} }

// YClampedGradient linearly interpolates between FromValue and ToValue as Y
// ranges from FromY to ToY.
type YClampedGradient struct {
	FromY, ToY       float64
	FromValue, ToValue float64
}

func (YClampedGradient) kind() string { return "y_clamped_gradient" }
func (g YClampedGradient) canonical() string {
	return floatKey(g.FromY) + "|" + floatKey(g.ToY) + "|" + floatKey(g.FromValue) + "|" + floatKey(g.ToValue)
}
func (YClampedGradient) children() []Node { return nil }

// Spline evaluates a piecewise curve of Input against control Points, each
// itself a density function value paired with derivative information
// omitted here for brevity; linear interpolation is used between points.
type Spline struct {
	Input  Node
	Points []SplinePoint
}

// SplinePoint is one (location, value) control point of a Spline.
type SplinePoint struct {
	Location float64
	Value    Node
}

func (Spline) kind() string { return "spline" }
func (s Spline) canonical() string {
	out := ""
	for _, p := range s.Points {
		out += floatKey(p.Location) + ";"
	}
	return out
}
func (s Spline) children() []Node {
	out := make([]Node, 0, len(s.Points)+1)
	out = append(out, s.Input)
	for _, p := range s.Points {
		out = append(out, p.Value)
	}
	return out
}

// WrapperKind names a caching strategy applied to a child node.
type WrapperKind string

const (
	WrapperInterpolated WrapperKind = "interpolated"
	WrapperCacheFlat    WrapperKind = "cache_flat"
	WrapperCache2D       WrapperKind = "cache_2d"
	WrapperCacheOnce    WrapperKind = "cache_once"
	WrapperCellCache    WrapperKind = "cell_cache"
)

// Wrapper applies a caching/interpolation strategy around Input.
type Wrapper struct {
	Kind  WrapperKind
	Input Node
}

func (Wrapper) kind() string         { return "wrapper" }
func (w Wrapper) canonical() string  { return string(w.Kind) }
func (w Wrapper) children() []Node   { return []Node{w.Input} }

// WeirdScaled samples Input, then rescales it through a named weirdness
// mapping before using it to sample the Rarity noise.
type WeirdScaled struct {
	Rarity string
	Input  Node
}

func (WeirdScaled) kind() string        { return "weird_scaled" }
func (w WeirdScaled) canonical() string { return w.Rarity }
func (w WeirdScaled) children() []Node  { return []Node{w.Input} }

// Beardifier is a placeholder for structure-carving contributions (vanilla
// hollows out space for villages, mineshafts, and similar structures here).
// This generator has no structure-placement pass, so it defers to the
// reserved "minecraft:beardifier" noise name and expects a NoiseSource with
// no opinion on it to answer 0 (no carving).
type Beardifier struct{}

func (Beardifier) kind() string      { return "beardifier" }
func (Beardifier) canonical() string { return "" }
func (Beardifier) children() []Node  { return nil }

// BlendAlpha is the blending weight used to fade newly generated density
// toward pre-existing terrain at a chunk border during a world upgrade. This
// generator never blends against legacy terrain, so it always evaluates to
// 1 (fully the freshly generated value, no old-terrain contribution).
type BlendAlpha struct{}

func (BlendAlpha) kind() string      { return "blend_alpha" }
func (BlendAlpha) canonical() string { return "" }
func (BlendAlpha) children() []Node  { return nil }

// BlendOffset is the vertical density offset applied during the same
// border-blending process BlendAlpha feeds. Always 0 here, for the same
// reason.
type BlendOffset struct{}

func (BlendOffset) kind() string      { return "blend_offset" }
func (BlendOffset) canonical() string { return "" }
func (BlendOffset) children() []Node  { return nil }

// BlendDensity mixes Input with the old-terrain density at the alpha/offset
// above. With BlendAlpha fixed at 1, this always reduces to Input itself,
// but the node is kept distinct (rather than folded away at graph
// construction) so a future blending pass has a single insertion point.
type BlendDensity struct{ Input Node }

func (BlendDensity) kind() string        { return "blend_density" }
func (BlendDensity) canonical() string   { return "" }
func (b BlendDensity) children() []Node  { return []Node{b.Input} }

// ShiftA and ShiftB sample a named "offset" noise to perturb terrain
// horizontally before the main shape noise is sampled (vanilla's
// continentalness/erosion warp). ShiftA reads the offset noise in (x,_,z)
// order; ShiftB swaps the axes, so the two together produce an independent
// 2D warp rather than a single shared one.
type ShiftA struct{ Noise string }

func (ShiftA) kind() string        { return "shift_a" }
func (s ShiftA) canonical() string { return s.Noise }
func (ShiftA) children() []Node    { return nil }

type ShiftB struct{ Noise string }

func (ShiftB) kind() string        { return "shift_b" }
func (s ShiftB) canonical() string { return s.Noise }
func (ShiftB) children() []Node    { return nil }

// InterpolatedNoiseSampler is the coarse low/high/interpolation-octave base
// shape sampler vanilla uses beneath the higher-resolution density graph.
// ScaledXZScale/ScaledYScale size the sampled lattice; XZFactor/YFactor
// rescale the input coordinates before that; SmearScaleMultiplier widens the
// interpolation noise's frequency relative to the lower/upper noises.
type InterpolatedNoiseSampler struct {
	ScaledXZScale, ScaledYScale     float64
	XZFactor, YFactor               float64
	SmearScaleMultiplier            float64
}

func (InterpolatedNoiseSampler) kind() string { return "interpolated_noise_sampler" }
func (n InterpolatedNoiseSampler) canonical() string {
	return floatKey(n.ScaledXZScale) + "|" + floatKey(n.ScaledYScale) + "|" +
		floatKey(n.XZFactor) + "|" + floatKey(n.YFactor) + "|" + floatKey(n.SmearScaleMultiplier)
}
func (InterpolatedNoiseSampler) children() []Node { return nil }

// EndIslands reproduces the End dimension's falloff shape: islands near the
// origin, void further out. It depends only on (x, z), not the graph's
// other inputs.
type EndIslands struct{}

func (EndIslands) kind() string      { return "end_islands" }
func (EndIslands) canonical() string { return "" }
func (EndIslands) children() []Node  { return nil }

// floatKey renders a float64 into a stable, hashable string.
func floatKey(f float64) string {
	bits := int64(f * 1e9)
	return itoa(bits)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [24]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
