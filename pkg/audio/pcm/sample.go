package pcm

import (
	"encoding/binary"
	"math"
)

// Float64s decodes little-endian int16 samples into [-1, 1). A trailing odd
// byte is ignored.
func Float64s(dst []float64, b []byte) []float64 {
	n := len(b) / 2
	dst = dst[:0]
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(b[i*2:]))
		dst = append(dst, float64(s)/32768)
	}
	return dst
}

// AppendInt16s encodes samples as little-endian int16, clipping anything
// outside [-1, 1].
func AppendInt16s(dst []byte, samples []float64) []byte {
	for _, v := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(clip(v)))
	}
	return dst
}

func clip(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= 1:
		return math.MaxInt16
	case v <= -1:
		return math.MinInt16
	}
	return int16(math.Round(v * 32767))
}

// Downmix averages interleaved stereo into mono in place and returns the
// mono prefix of b.
func Downmix(b []byte) []byte {
	frames := len(b) / 4
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(b[i*4:]))
		r := int16(binary.LittleEndian.Uint16(b[i*4+2:]))
		binary.LittleEndian.PutUint16(b[i*2:], uint16(int16((int32(l)+int32(r))/2)))
	}
	return b[:frames*2]
}

// Upmix duplicates each mono sample into both channels of dst.
func Upmix(dst, mono []byte) []byte {
	for i := 0; i+1 < len(mono); i += 2 {
		dst = append(dst, mono[i], mono[i+1], mono[i], mono[i+1])
	}
	return dst
}
