// Package dsp holds the small pure-PCM helpers the capture pipeline needs.
// Fidelity is deliberately traded for determinism: downstream transcription
// cares about monotonic time mapping, not audiophile resampling.
package dsp

import (
	"encoding/binary"
	"math"
)

// Resample converts little-endian 16-bit PCM between sample rates using
// linear interpolation. Equal rates return the input unchanged.
func Resample(pcm []byte, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return pcm
	}

	samples := decodePCM16(pcm)
	if len(samples) == 0 {
		return nil
	}

	outLen := int(math.Round(float64(len(samples)) * float64(toRate) / float64(fromRate)))
	if outLen <= 0 {
		return nil
	}

	out := make([]int16, outLen)
	step := float64(len(samples)-1) / float64(max(outLen-1, 1))
	for i := range out {
		pos := float64(i) * step
		lo := int(pos)
		hi := lo + 1
		if hi >= len(samples) {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(lo)
		v := float64(samples[lo])*(1-frac) + float64(samples[hi])*frac
		out[i] = clipInt16(v)
	}

	return encodePCM16(out)
}

func decodePCM16(pcm []byte) []int16 {
	n := len(pcm) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return samples
}

func encodePCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func clipInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
