package maths

import (
	"errors"
	"math"
	"testing"
)

func TestQuadraticRoots(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
		want    []float64
	}{
		{"two roots", 1, -3, 2, []float64{1, 2}},
		{"double root", 1, -2, 1, []float64{1}},
		{"no real root", 1, 0, 1, nil},
		{"linear", 0, 2, -4, []float64{2}},
		{"degenerate", 0, 0, 1, nil},
		{"cancellation", 1, 1e8, 1, []float64{-1e8, -1e-8}},
	}
	for _, tt := range tests {
		got := QuadraticRoots(tt.a, tt.b, tt.c)
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9*math.Max(1, math.Abs(tt.want[i])) {
				t.Errorf("%s: root %d = %v, want %v", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBrent(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - 2*x - 5 }
	x, err := Brent(f, 2, 3, 1e-14, 100)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f(x)) > 1e-10 {
		t.Errorf("f(%v) = %v, want 0", x, f(x))
	}
	// 端点即根
	if x, err := Brent(func(x float64) float64 { return x - 1 }, 1, 4, 1e-12, 10); err != nil || x != 1 {
		t.Errorf("endpoint root: got %v, %v", x, err)
	}
	if _, err := Brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-12, 50); !errors.Is(err, ErrNoBracket) {
		t.Errorf("expected ErrNoBracket, got %v", err)
	}
}

func TestExpandBracket(t *testing.T) {
	f := func(x float64) float64 { return x - 40 }
	a, b, err := ExpandBracket(f, 0, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !(a <= 40 && b >= 40) {
		t.Errorf("bracket [%v, %v] does not contain 40", a, b)
	}
	if _, _, err := ExpandBracket(func(float64) float64 { return 1 }, 0, 1, 5); err == nil {
		t.Error("expected error for function without root")
	}
}

func TestDerivative(t *testing.T) {
	d := Derivative(func(x float64) float64 { return 3*x*x + x }, 2)
	if math.Abs(d-13) > 1e-5 {
		t.Errorf("Derivative = %v, want 13", d)
	}
}
