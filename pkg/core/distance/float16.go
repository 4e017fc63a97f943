package distance

import (
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// Precision is the storage format of indexed vectors.
type Precision string

const (
	// Float32 stores vectors as given.
	Float32 Precision = "float32"
	// Float16 stores vectors as IEEE half floats, halving memory at the cost
	// of roughly three significant digits.
	Float16 Precision = "float16"
)

// ParsePrecision resolves a precision name. The empty string means Float32.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float32", "f32":
		return Float32, nil
	case "float16", "f16", "half":
		return Float16, nil
	}
	return "", fmt.Errorf("unsupported precision: %q", s)
}

// EncodeFloat16 converts v to half-precision bit patterns.
func EncodeFloat16(v []float32) []uint16 {
	out := make([]uint16, len(v))
	for i, x := range v {
		out[i] = float16.Fromfloat32(x).Bits()
	}
	return out
}

// DecodeFloat16 expands src into dst, which must be at least len(src) long,
// and returns dst[:len(src)].
func DecodeFloat16(dst []float32, src []uint16) []float32 {
	dst = dst[:len(src)]
	for i, bits := range src {
		dst[i] = float16.Frombits(bits).Float32()
	}
	return dst
}
