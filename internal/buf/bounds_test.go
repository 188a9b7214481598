package buf

import (
	"math"
	"testing"
)

func TestAddU64(t *testing.T) {
	if v, ok := AddU64(1, 2); !ok || v != 3 {
		t.Fatalf("AddU64(1,2) = %d, %v", v, ok)
	}
	if v, ok := AddU64(math.MaxUint64, 0); !ok || v != math.MaxUint64 {
		t.Fatalf("AddU64(max,0) = %d, %v", v, ok)
	}
	if _, ok := AddU64(math.MaxUint64, 1); ok {
		t.Fatal("AddU64(max,1) did not report overflow")
	}
}

func TestMulU64(t *testing.T) {
	if v, ok := MulU64(6, 7); !ok || v != 42 {
		t.Fatalf("MulU64(6,7) = %d, %v", v, ok)
	}
	if v, ok := MulU64(0, math.MaxUint64); !ok || v != 0 {
		t.Fatalf("MulU64(0,max) = %d, %v", v, ok)
	}
	if v, ok := MulU64(math.MaxUint64, 1); !ok || v != math.MaxUint64 {
		t.Fatalf("MulU64(max,1) = %d, %v", v, ok)
	}
	if _, ok := MulU64(math.MaxUint64, 2); ok {
		t.Fatal("MulU64(max,2) did not report overflow")
	}
	if _, ok := MulU64(1<<32, 1<<32); ok {
		t.Fatal("MulU64(2^32,2^32) did not report overflow")
	}
}

func TestSlice(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	if s, ok := Slice(b, 1, 2); !ok || len(s) != 2 || s[0] != 2 {
		t.Fatalf("Slice(b,1,2) = %v, %v", s, ok)
	}
	if s, ok := Slice(b, 4, 0); !ok || len(s) != 0 {
		t.Fatalf("Slice(b,4,0) = %v, %v", s, ok)
	}
	if _, ok := Slice(b, 3, 2); ok {
		t.Fatal("Slice(b,3,2) did not report out of bounds")
	}
	if _, ok := Slice(b, math.MaxUint64, 1); ok {
		t.Fatal("Slice with wrapping offset did not fail")
	}
	if !Has(b, 0, 4) || Has(b, 0, 5) {
		t.Fatal("Has bounds check wrong")
	}
}
