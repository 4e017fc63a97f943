package distance

import (
	"math"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"gonum.org/v1/gonum/blas/gonum"
)

// kernelSet holds the primitive operations every metric is built from.
type kernelSet struct {
	name string
	dot  func(a, b []float32) float64
	norm func(a []float32) float64
	sqL2 func(a, b []float32) float32
	l1   func(a, b []float32) float32
}

var kernels = selectKernels()

// Backend reports the kernel implementation picked for this CPU
// ("gonum" or "go").
func Backend() string {
	return kernels.name
}

func selectKernels() kernelSet {
	if cpuid.CPU.Has(cpuid.AVX2) || cpuid.CPU.Has(cpuid.ASIMD) {
		return gonumKernels
	}
	return goKernels
}

var goKernels = kernelSet{
	name: "go",
	dot:  dotGo,
	norm: normGo,
	sqL2: squaredL2Go,
	l1:   manhattanGo,
}

var gonumKernels = kernelSet{
	name: "gonum",
	dot:  dotGonum,
	norm: normGonum,
	sqL2: squaredL2Gonum,
	l1:   manhattanGonum,
}

// --- REFERENCE IMPLEMENTATIONS (PURE GO) ---

func dotGo(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normGo(a []float32) float64 {
	return math.Sqrt(dotGo(a, a))
}

func squaredL2Go(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func manhattanGo(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		sum += diff
	}
	return sum
}

// --- Gonum-based Implementations ---

var gonumEngine = gonum.Implementation{}

// diffWorkspace pools scratch slices for a-b so the BLAS paths do not
// allocate per call.
var diffWorkspace = sync.Pool{
	New: func() any {
		s := make([]float32, 1536)
		return &s
	},
}

func withDiff(a, b []float32, fn func(diff []float32) float32) float32 {
	n := len(a)
	diffPtr := diffWorkspace.Get().(*[]float32)
	defer diffWorkspace.Put(diffPtr)

	if cap(*diffPtr) < n {
		*diffPtr = make([]float32, n)
	}
	diff := (*diffPtr)[:n]
	copy(diff, a)
	gonumEngine.Saxpy(n, -1, b, 1, diff, 1)
	return fn(diff)
}

func dotGonum(a, b []float32) float64 {
	// Dsdot accumulates in float64, which keeps self-similarity at 1.0.
	return gonumEngine.Dsdot(len(a), a, 1, b, 1)
}

func normGonum(a []float32) float64 {
	return math.Sqrt(gonumEngine.Dsdot(len(a), a, 1, a, 1))
}

func squaredL2Gonum(a, b []float32) float32 {
	return withDiff(a, b, func(diff []float32) float32 {
		return gonumEngine.Sdot(len(diff), diff, 1, diff, 1)
	})
}

func manhattanGonum(a, b []float32) float32 {
	return withDiff(a, b, func(diff []float32) float32 {
		return gonumEngine.Sasum(len(diff), diff, 1)
	})
}
