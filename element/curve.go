package element

import (
	"fmt"
	"strings"

	"poiseuille/maths"
)

// FanCurve 风机性能曲线 Δp = f(Q)。
type FanCurve interface {
	Pressure(q float64) float64 // 流量 q 下的压升
	Slope(q float64) float64    // dΔp/dQ
	Linear() bool               // 是否为线性曲线
}

// Polynomial 多项式曲线，系数按升幂排列: Δp = c0 + c1·Q + c2·Q² + ...
type Polynomial []float64

// Pressure 秦九韶(Horner)求值
func (p Polynomial) Pressure(q float64) float64 {
	var v float64
	for i := len(p) - 1; i >= 0; i-- {
		v = v*q + p[i]
	}
	return v
}

// Slope 解析导数
func (p Polynomial) Slope(q float64) float64 {
	var v float64
	for i := len(p) - 1; i >= 1; i-- {
		v = v*q + float64(i)*p[i]
	}
	return v
}

// Degree 最高非零项次数，零多项式返回 0。
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i > 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return 0
}

// Coef 第 i 次项系数。
func (p Polynomial) Coef(i int) float64 {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}

func (p Polynomial) Linear() bool { return p.Degree() <= 1 }

func (p Polynomial) String() string {
	terms := make([]string, 0, len(p))
	for i, c := range p {
		switch i {
		case 0:
			terms = append(terms, fmt.Sprintf("%g", c))
		case 1:
			terms = append(terms, fmt.Sprintf("%g·Q", c))
		default:
			terms = append(terms, fmt.Sprintf("%g·Q^%d", c, i))
		}
	}
	return strings.Join(terms, " + ")
}

// CurveFunc 任意函数曲线，斜率由数值微分得到。
type CurveFunc func(q float64) float64

func (f CurveFunc) Pressure(q float64) float64 { return f(q) }
func (f CurveFunc) Slope(q float64) float64    { return maths.Derivative(f, q) }
func (CurveFunc) Linear() bool                 { return false }
