package maths

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
)

// ErrNoBracket 区间两端函数值同号
var ErrNoBracket = errors.New("root: interval does not bracket a root")

// QuadraticRoots 求 a·x² + b·x + c = 0 的实根（升序）
//
// a 为 0 时退化为一次方程；无实根返回空切片。
// 使用 q = -(b + sign(b)·sqrt(Δ))/2 的形式避免相减抵消。
func QuadraticRoots(a, b, c float64) []float64 {
	if math.Abs(a) < Epsilon {
		if math.Abs(b) < Epsilon {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	if disc == 0 {
		return []float64{-b / (2 * a)}
	}
	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	roots := []float64{q / a}
	if q != 0 {
		roots = append(roots, c/q)
	} else {
		roots = append(roots, -roots[0])
	}
	sort.Float64s(roots)
	return roots
}

// Brent 在 [a, b] 内求 f(x)=0 的根（Brent-Dekker 法）
// 参数:
//
//	f       - 目标函数
//	a, b    - 区间端点，f(a) 与 f(b) 必须异号
//	tol     - 自变量容差
//	maxIter - 最大迭代次数
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, ErrNoBracket
	}
	if math.Abs(fa) < math.Abs(fb) {
		a, b, fa, fb = b, a, fb, fa
	}
	c, fc := a, fa
	d := b - a
	mflag := true
	for i := 0; i < maxIter; i++ {
		if fb == 0 || math.Abs(b-a) < tol {
			return b, nil
		}
		var s float64
		if fa != fc && fb != fc {
			// 反二次插值
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// 割线
			s = b - fb*(b-a)/(fb-fa)
		}
		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}
		switch {
		case s < lo || s > hi,
			mflag && math.Abs(s-b) >= math.Abs(b-c)/2,
			!mflag && math.Abs(s-b) >= math.Abs(c-d)/2,
			mflag && math.Abs(b-c) < tol,
			!mflag && math.Abs(c-d) < tol:
			s = (a + b) / 2 // 二分
			mflag = true
		default:
			mflag = false
		}
		fs := f(s)
		d, c, fc = c, b, fb
		if math.Signbit(fa) != math.Signbit(fs) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b, fa, fb = b, a, fb, fa
		}
	}
	return b, fmt.Errorf("root: brent did not converge in %d iterations (x=%g, f=%g)", maxIter, b, fb)
}

// ExpandBracket 从 [a, b] 出发向外扩张直到 f 变号
func ExpandBracket(f func(float64) float64, a, b float64, maxIter int) (float64, float64, error) {
	if a == b {
		return a, b, ErrNoBracket
	}
	fa, fb := f(a), f(b)
	for i := 0; i < maxIter; i++ {
		if math.Signbit(fa) != math.Signbit(fb) || fa == 0 || fb == 0 {
			return a, b, nil
		}
		w := b - a
		if math.Abs(fa) < math.Abs(fb) {
			a -= 1.6 * w
			fa = f(a)
		} else {
			b += 1.6 * w
			fb = f(b)
		}
	}
	return a, b, ErrNoBracket
}

// Derivative 数值导数（中心差分）
func Derivative(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central})
}
