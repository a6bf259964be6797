package interpreter

import (
	"math"
	"sync"
)

// fscaSteps is the number of angle steps in one full turn.
const fscaSteps = 0x10000

// sinTable holds the single precision sin and cos bits of every fsca angle.
// Quarter turns are exact.
var sinTable = sync.OnceValue(func() *[fscaSteps][2]uint32 {
	const quarter = fscaSteps / 4
	var q [quarter + 1]uint32
	for i := 1; i < quarter; i++ {
		q[i] = math.Float32bits(float32(math.Sin(float64(i) * math.Pi / (fscaSteps / 2))))
	}
	q[quarter] = math.Float32bits(1)

	sin := func(a int) uint32 {
		a &= fscaSteps - 1
		var v uint32
		switch {
		case a <= quarter:
			v = q[a]
		case a < 2*quarter:
			v = q[2*quarter-a]
		case a <= 3*quarter:
			v = q[a-2*quarter]
			if v != 0 {
				v |= 1 << 31
			}
		default:
			v = q[fscaSteps-a] | 1<<31
		}
		return v
	}
	t := new([fscaSteps][2]uint32)
	for a := range t {
		t[a] = [2]uint32{sin(a), sin(a + quarter)}
	}
	return t
})

// Fsca returns sin and cos of the fixed point angle in the low 16 bits of fpul.
func Fsca(fpul uint32) (sin, cos uint32) {
	e := sinTable()[fpul&(fscaSteps-1)]
	return e[0], e[1]
}
