package resistance

import (
	"fmt"
	"math"
)

// DefaultPoiseuilleK 默认泊肃叶系数
var DefaultPoiseuilleK = 1.0

// Poiseuille 层流圆管阻力 Δp = K·Q/r⁴
//
// K = 8μL/π 时即 Hagen–Poiseuille 定律。
type Poiseuille struct {
	K      float64 // 系数
	Radius float64 // 有效半径
}

// NewPoiseuille 以默认系数创建
func NewPoiseuille(r float64) (Poiseuille, error) {
	return NewPoiseuilleK(DefaultPoiseuilleK, r)
}

// NewPoiseuilleK 指定系数创建
func NewPoiseuilleK(k, r float64) (Poiseuille, error) {
	if !(k > 0) || math.IsInf(k, 1) {
		return Poiseuille{}, fmt.Errorf("泊肃叶系数必须为正数: %v", k)
	}
	if !(r > 0) || math.IsInf(r, 1) {
		return Poiseuille{}, fmt.Errorf("管道半径必须为正数: %v", r)
	}
	return Poiseuille{K: k, Radius: r}, nil
}

// HagenPoiseuille 由动力粘度、管长与半径创建
func HagenPoiseuille(viscosity, length, r float64) (Poiseuille, error) {
	if !(viscosity > 0) || !(length > 0) {
		return Poiseuille{}, fmt.Errorf("粘度与管长必须为正数: μ=%v L=%v", viscosity, length)
	}
	return NewPoiseuilleK(8*viscosity*length/math.Pi, r)
}

// Resistance 等效线性阻值 K/r⁴
func (p Poiseuille) Resistance() float64 {
	r2 := p.Radius * p.Radius
	return p.K / (r2 * r2)
}

func (p Poiseuille) PressureDrop(q float64) float64 { return p.Resistance() * q }
func (p Poiseuille) FlowRate(dp float64) float64    { return dp / p.Resistance() }
func (p Poiseuille) Conductance(float64) float64    { return 1 / p.Resistance() }
func (Poiseuille) Linear() bool                     { return true }

func (p Poiseuille) String() string {
	return fmt.Sprintf("poiseuille(K=%g, r=%g)", p.K, p.Radius)
}
