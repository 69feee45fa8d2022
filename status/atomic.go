package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// AtomicFloat is a float64 stored as its IEEE bits; the zero value reads 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add atomically adds delta and returns the new value
func (f *AtomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		sum := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(sum)) {
			return sum
		}
	}
}

// StoreMax raises the value to val if val is larger; NaN is ignored
func (f *AtomicFloat) StoreMax(val float64) {
	if math.IsNaN(val) {
		return
	}
	for {
		old := f.bits.Load()
		if math.Float64frombits(old) >= val {
			return
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(val)) {
			return
		}
	}
}

// MaxStringLen bounds stored labels in runes so HUD rows stay predictable
const MaxStringLen = 32

// AtomicString holds a short label; the zero value reads ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the label, cutting it at MaxStringLen runes
func (s *AtomicString) Store(val string) {
	if utf8.RuneCountInString(val) > MaxStringLen {
		n := 0
		for i := range val {
			if n == MaxStringLen {
				val = val[:i]
				break
			}
			n++
		}
	}
	s.ptr.Store(&val)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
