package maskedlm

import "math"

// expf32 is float32 exp via the standard library's float64 implementation.
func expf32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
