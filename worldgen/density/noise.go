package density

import "math"

// PerlinOctave is one octave of classic gradient (Perlin) noise, seeded
// independently so an OctaveSampler can sum several at different
// amplitudes/frequencies. No noise library appears anywhere in the
// retrieved corpus, so this is implemented directly against math, per
// DESIGN.md.
type PerlinOctave struct {
	perm                     [512]int
	originX, originY, originZ float64
}

// NewPerlinOctave builds an octave from a 64-bit seed using a
// splitmix64-derived permutation table, then offsets its origin
// pseudo-randomly (matching the "each octave samples from a random offset"
// behavior of layered noise).
func NewPerlinOctave(seed int64) *PerlinOctave {
	rng := newSplitMix64(uint64(seed))
	var p [256]int
	for i := range p {
		p[i] = i
	}
	for i := 255; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}
	o := &PerlinOctave{}
	for i := 0; i < 512; i++ {
		o.perm[i] = p[i&255]
	}
	o.originX = float64(rng.next()%256) * 256
	o.originY = float64(rng.next()%256) * 256
	o.originZ = float64(rng.next()%256) * 256
	return o
}

// Sample returns this octave's noise value at (x, y, z).
func (o *PerlinOctave) Sample(x, y, z float64) float64 {
	x += o.originX
	y += o.originY
	z += o.originZ

	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	zi := int(math.Floor(z)) & 255

	xf := x - math.Floor(x)
	yf := y - math.Floor(y)
	zf := z - math.Floor(z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	a := o.perm[xi] + yi
	aa := o.perm[a] + zi
	ab := o.perm[a+1] + zi
	b := o.perm[xi+1] + yi
	ba := o.perm[b] + zi
	bb := o.perm[b+1] + zi

	return lerp(w,
		lerp(v,
			lerp(u, grad(o.perm[aa], xf, yf, zf), grad(o.perm[ba], xf-1, yf, zf)),
			lerp(u, grad(o.perm[ab], xf, yf-1, zf), grad(o.perm[bb], xf-1, yf-1, zf))),
		lerp(v,
			lerp(u, grad(o.perm[aa+1], xf, yf, zf-1), grad(o.perm[ba+1], xf-1, yf, zf-1)),
			lerp(u, grad(o.perm[ab+1], xf, yf-1, zf-1), grad(o.perm[bb+1], xf-1, yf-1, zf-1))))
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }
func lerp(t, a, b float64) float64 { return a + t*(b-a) }

func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	v := z
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	}
	res := 0.0
	if h&1 == 0 {
		res += u
	} else {
		res -= u
	}
	if h&2 == 0 {
		res += v
	} else {
		res -= v
	}
	return res
}

// OctaveSampler sums several PerlinOctaves at halving amplitudes and
// doubling frequencies, the standard "named noise parameter" source the
// graph's Noise/ShiftedNoise nodes sample from.
type OctaveSampler struct {
	octaves     []*PerlinOctave
	firstOctave int
}

// NewOctaveSampler builds a sampler spanning octaves [firstOctave,
// firstOctave+count), seeded deterministically from seed and the octave
// index so the same named noise parameter always reproduces identically.
func NewOctaveSampler(seed int64, firstOctave, count int) *OctaveSampler {
	s := &OctaveSampler{firstOctave: firstOctave}
	for i := 0; i < count; i++ {
		s.octaves = append(s.octaves, NewPerlinOctave(seed+int64(firstOctave+i)*9973+1))
	}
	return s
}

// Sample returns the amplitude-weighted sum of every octave at (x, y, z).
func (s *OctaveSampler) Sample(x, y, z float64) float64 {
	var total, amplitude, frequency float64
	amplitude = 1
	frequency = math.Pow(2, float64(s.firstOctave))
	for _, o := range s.octaves {
		total += o.Sample(x*frequency, y*frequency, z*frequency) * amplitude
		amplitude /= 2
		frequency *= 2
	}
	return total
}

type splitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *splitMix64 { return &splitMix64{state: seed} }

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
