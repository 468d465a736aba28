// Package resistance 管道阻力函数
//
// 阻力函数描述压降与流量的关系 Δp = f(Q)，并能反向由压降求流量。
// 求解器在已知压力与已知流量两种场景间切换，因此两个方向都必须可查询。
package resistance

import (
	"fmt"
	"math"
)

// Function 阻力函数接口，纯函数，构造后不可变
type Function interface {
	PressureDrop(q float64) float64 // 由流量求压降 Δp = f(Q)
	FlowRate(dp float64) float64    // 由压降求流量 Q = f⁻¹(Δp)
	Conductance(dp float64) float64 // dQ/dΔp，用于雅可比矩阵
	Linear() bool                   // 是否为线性关系
	String() string
}

// Linear 线性阻力 Δp = R·Q
type Linear struct {
	R float64 // 阻值
}

// NewLinear 创建线性阻力
func NewLinear(r float64) (Linear, error) {
	if !(r > 0) || math.IsInf(r, 1) {
		return Linear{}, fmt.Errorf("线性阻值必须为正数: %v", r)
	}
	return Linear{R: r}, nil
}

func (l Linear) PressureDrop(q float64) float64 { return l.R * q }
func (l Linear) FlowRate(dp float64) float64    { return dp / l.R }
func (l Linear) Conductance(float64) float64    { return 1 / l.R }
func (Linear) Linear() bool                     { return true }
func (l Linear) String() string                 { return fmt.Sprintf("linear(R=%g)", l.R) }
