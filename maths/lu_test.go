package maths

import (
	"math"
	"testing"
)

// TestLuDenseSolve 函数验证了针对密集矩阵的 LU 分解和求解过程的正确性。
func TestLuDenseSolve(t *testing.T) {
	// 求解线性方程组 Ax = b
	// A = [[2, 3, 1],
	//      [1, 2, 3],
	//      [3, 1, 2]]
	// b = [9, 6, 8]
	// 预期解 x = [35/18, 29/18, 5/18]
	a := NewDenseMatrix(3, 3)
	a.Set(0, 0, 2)
	a.Set(0, 1, 3)
	a.Set(0, 2, 1)
	a.Set(1, 0, 1)
	a.Set(1, 1, 2)
	a.Set(1, 2, 3)
	a.Set(2, 0, 3)
	a.Set(2, 1, 1)
	a.Set(2, 2, 2)

	b := NewDenseVectorFrom([]float64{9, 6, 8})

	lu, err := NewLU(3)
	if err != nil {
		t.Fatalf("NewLU failed: %v", err)
	}
	if err := lu.Decompose(a); err != nil {
		t.Fatalf("Decomposition failed: %v", err)
	}
	x := NewDenseVector(3)
	if err := lu.SolveReuse(b, x); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	expected := []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}
	for i := 0; i < 3; i++ {
		if math.Abs(x.Get(i)-expected[i]) > 1e-9 {
			t.Errorf("Element x[%d] is incorrect. Got %f, expected %f", i, x.Get(i), expected[i])
		}
	}
}

// TestLuDenseSingular 函数验证 Decompose 方法能否正确识别奇异矩阵。
func TestLuDenseSingular(t *testing.T) {
	// A 是一个奇异矩阵（有一行全为零）
	a := NewDenseMatrix(3, 3)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(0, 2, 3)
	a.Set(1, 0, 4)
	a.Set(1, 1, 5)
	a.Set(1, 2, 6)

	lu, err := NewLU(3)
	if err != nil {
		t.Fatalf("NewLU failed: %v", err)
	}
	if err := lu.Decompose(a); err == nil {
		t.Error("Expected an error for singular matrix, but got nil")
	}
}

// TestLuReuse 同一分解器重复分解不同矩阵
func TestLuReuse(t *testing.T) {
	lu, err := NewLU(2)
	if err != nil {
		t.Fatalf("NewLU failed: %v", err)
	}
	for _, scale := range []float64{1, 2, 10} {
		a := NewDenseMatrix(2, 2)
		a.Set(0, 0, 4*scale)
		a.Set(0, 1, -scale)
		a.Set(1, 0, -scale)
		a.Set(1, 1, 3*scale)
		x := NewDenseVector(2)
		if err := lu.Decompose(a); err != nil {
			t.Fatalf("scale %v: %v", scale, err)
		}
		if err := lu.SolveReuse(NewDenseVectorFrom([]float64{3 * scale, 2 * scale}), x); err != nil {
			t.Fatalf("scale %v: %v", scale, err)
		}
		// 4x - y = 3, -x + 3y = 2 => x = 1, y = 1
		if math.Abs(x.Get(0)-1) > 1e-12 || math.Abs(x.Get(1)-1) > 1e-12 {
			t.Errorf("scale %v: got %v, want [1 1]", scale, x.ToDense())
		}
	}
}

// TestNewLUInvalid 非法维度
func TestNewLUInvalid(t *testing.T) {
	if _, err := NewLU(0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

// TestLuDimensionMismatch 向量维度不匹配
func TestLuDimensionMismatch(t *testing.T) {
	lu, _ := NewLU(2)
	a := NewDenseMatrix(2, 2)
	a.Set(0, 0, 1)
	a.Set(1, 1, 1)
	if err := lu.Decompose(a); err != nil {
		t.Fatal(err)
	}
	if err := lu.SolveReuse(NewDenseVector(3), NewDenseVector(2)); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if err := lu.Decompose(NewDenseMatrix(3, 3)); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
