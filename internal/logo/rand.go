package logo

// Stream mixing constants.
const (
	layoutMix uint32 = 0x9E3779B9
	colorMix  uint32 = 0x85EBCA6B
	genMul    uint32 = 2654435761
	zeroSubst uint32 = 0x6D2B79F5
)

const twoPow32 = 4294967296.0

// Rand is a xorshift32 stream. It is deterministic for a given seed and
// never shares state with other streams.
type Rand struct {
	x uint32
}

// NewRand seeds a stream. A zero seed is replaced with a fixed non-zero
// constant since xorshift never leaves zero.
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = zeroSubst
	}
	return &Rand{x: seed}
}

// Uint32 advances the stream.
func (r *Rand) Uint32() uint32 {
	r.x ^= r.x << 13
	r.x ^= r.x >> 17
	r.x ^= r.x << 5
	return r.x
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / twoPow32
}

// IntN returns a value in [0, n).
func (r *Rand) IntN(n int) int {
	return int(r.Float64() * float64(n))
}

// Seed combines the clock with the generation index so that successive
// generations diverge even within the same millisecond.
func Seed(clockMillis int64, generation int) uint32 {
	return uint32(clockMillis) ^ (uint32(generation+1) * genMul)
}

// Streams derives the layout and color streams for one generation.
func Streams(seed uint32, prefs Prefs) (layout, color *Rand) {
	if prefs.KeepLayout && prefs.LayoutSeed != 0 {
		layout = NewRand(prefs.LayoutSeed)
	} else {
		layout = NewRand(seed ^ layoutMix)
	}
	return layout, NewRand(seed ^ colorMix)
}
