package resistance

import (
	"fmt"
	"math"
)

// quadraticRegularization 零压降附近的线性化区间
const quadraticRegularization = 1e-10

// Quadratic 湍流阻力 Δp = C·Q·|Q|
type Quadratic struct {
	C float64 // 阻力系数
}

// NewQuadratic 创建湍流阻力
func NewQuadratic(c float64) (Quadratic, error) {
	if !(c > 0) || math.IsInf(c, 1) {
		return Quadratic{}, fmt.Errorf("湍流阻力系数必须为正数: %v", c)
	}
	return Quadratic{C: c}, nil
}

func (q Quadratic) PressureDrop(flow float64) float64 { return q.C * flow * math.Abs(flow) }

// FlowRate Q = sign(Δp)·sqrt(|Δp|/C)
func (q Quadratic) FlowRate(dp float64) float64 {
	return math.Copysign(math.Sqrt(math.Abs(dp)/q.C), dp)
}

// Conductance dQ/dΔp = 1/(2·sqrt(C·|Δp|))
//
// Δp 趋于 0 时导数发散，小于正则化区间时按区间端点取值。
func (q Quadratic) Conductance(dp float64) float64 {
	a := math.Max(math.Abs(dp), quadraticRegularization)
	return 1 / (2 * math.Sqrt(q.C*a))
}

func (Quadratic) Linear() bool     { return false }
func (q Quadratic) String() string { return fmt.Sprintf("quadratic(C=%g)", q.C) }
