package vec

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "scaled", a: []float32{2, 4}, b: []float32{1, 2}, want: 1},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 2}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Cosine(test.a, test.b)
			if math.Abs(got-test.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", test.a, test.b, got, test.want)
			}
		})
	}
}
