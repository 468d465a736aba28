package element

import (
	"fmt"
	"math"
	"slices"

	"poiseuille/maths"
	"poiseuille/mna"
	"poiseuille/resistance"
	"poiseuille/types"
)

// 工作点求解参数
const (
	bracketIterations = 60
	brentTolerance    = 1e-12
	brentIterations   = 200
)

// PowerCurveFan 性能曲线风机: p_output - p_input = Curve(Q)。
type PowerCurveFan struct {
	Fan
	curve    FanCurve
	branch   mna.BranchID // 支路未知量索引
	guess    float64      // 迭代初值
	hasGuess bool
}

// NewPowerCurveFan 根据性能曲线创建风机。
func NewPowerCurveFan(curve FanCurve) *PowerCurveFan {
	f := &PowerCurveFan{curve: curve, branch: mna.Unset}
	f.init(f)
	return f
}

func (f *PowerCurveFan) Kind() Kind           { return KindPowerCurveFan }
func (f *PowerCurveFan) Couples() bool        { return true }
func (f *PowerCurveFan) Linear() bool         { return f.curve.Linear() }
func (f *PowerCurveFan) Curve() FanCurve      { return f.curve }
func (f *PowerCurveFan) SetCurve(c FanCurve)  { f.curve = c }
func (f *PowerCurveFan) Branch() mna.BranchID { return f.branch }

// Allocate 登记支路未知量
func (f *PowerCurveFan) Allocate(layout *mna.Layout) {
	f.branch = mna.BranchID(layout.Branches)
	layout.Branches++
}

// Seed 以工作点作为初值
func (f *PowerCurveFan) Seed(m mna.MNA) {
	if f.hasGuess {
		m.SetBranchFlow(f.branch, f.guess)
	}
}

// Stamp 支路线性部分
func (f *PowerCurveFan) Stamp(m mna.MNA) {
	m.StampBranch(f.input.index, f.output.index, f.branch)
}

// DoStep 曲线在当前流量处线性化:
// p_out - p_in - s·Q = Curve(Q_k) - s·Q_k
func (f *PowerCurveFan) DoStep(m mna.MNA) {
	q := m.GetBranchFlow(f.branch)
	s := f.curve.Slope(q)
	m.StampBranchCurve(f.branch, s, f.curve.Pressure(q)-s*q)
}

// Residual 记录设备流量与曲线残差
func (f *PowerCurveFan) Residual(m mna.MNA) {
	q := m.GetBranchFlow(f.branch)
	m.ResidualFlow(f.input.index, f.output.index, q)
	dp := m.GetNodePressure(f.output.index) - m.GetNodePressure(f.input.index)
	m.ResidualBranch(f.branch, dp-f.curve.Pressure(q))
}

// StepFinished 保存结果
func (f *PowerCurveFan) StepFinished(m mna.MNA) {
	f.resolve(m, m.GetBranchFlow(f.branch))
}

// SystemCurve 外部网络的系统曲线，即输送流量 Q 所需的风机压升:
//
//	ΔP_sys(Q) = p_output(Q) - p_input(Q)
//
// 每个端口经一个或多个并联连接器接到压力储罐，端口压力由连接器流量之和等于 Q 确定。
func (f *PowerCurveFan) SystemCurve() (func(q float64) float64, error) {
	pin, err := portPressure(f.input, 1)
	if err != nil {
		return nil, err
	}
	pout, err := portPressure(f.output, -1)
	if err != nil {
		return nil, err
	}
	return func(q float64) float64 {
		return pout(q) - pin(q)
	}, nil
}

// UpdateProperties 求风机工作点，即风机曲线与系统曲线的交点 Curve(Q) = ΔP_sys(Q)。
// 二次以内的多项式曲线配合线性阻力时直接求根，其余情况做一维求根。
// 结果写入 DP()、FlowRate() 并作为牛顿迭代的初值。
func (f *PowerCurveFan) UpdateProperties() error {
	sys, err := f.SystemCurve()
	if err != nil {
		return err
	}
	q, err := f.operatingPoint(sys)
	if err != nil {
		return err
	}
	f.flow, f.dp, f.resolved = q, f.curve.Pressure(q), true
	f.guess, f.hasGuess = q, true
	return nil
}

func (f *PowerCurveFan) operatingPoint(sys func(float64) float64) (float64, error) {
	g := func(q float64) float64 { return f.curve.Pressure(q) - sys(q) }
	// 系统曲线为线性时 sys(Q) = sys(0) + (sys(1) - sys(0))·Q
	if p, ok := f.curve.(Polynomial); ok && p.Degree() <= 2 && f.externalLinear() {
		s0 := sys(0)
		r := sys(1) - s0
		roots := maths.QuadraticRoots(p.Coef(2), p.Coef(1)-r, p.Coef(0)-s0)
		for i := len(roots) - 1; i >= 0; i-- {
			if roots[i] >= 0 {
				return roots[i], nil
			}
		}
		if len(roots) > 0 {
			return roots[len(roots)-1], nil
		}
	}
	a, b, err := maths.ExpandBracket(g, 0, 1, bracketIterations)
	if err != nil {
		return 0, fmt.Errorf("风机工作点: %w", err)
	}
	q, err := maths.Brent(g, a, b, brentTolerance, brentIterations)
	if err != nil {
		return 0, fmt.Errorf("风机工作点: %w", err)
	}
	return q, nil
}

func (f *PowerCurveFan) externalLinear() bool {
	for _, n := range f.Nodes() {
		for _, c := range n.Connectors() {
			if !c.Linear() {
				return false
			}
		}
	}
	return true
}

// portPressure 端口压力随风机流量的变化。
// dir 为 1 时流量由储罐流入端口（入口），为 -1 时由端口流向储罐（出口）:
//
//	Σ f_k⁻¹(dir·(P_k - p)) = Q
//
// 非线性并联求根失败时返回 NaN。
func portPressure(n *Node, dir float64) (func(q float64) float64, error) {
	cs := n.Connectors()
	if len(cs) == 0 {
		return nil, &types.TopologyError{
			Op:     "UpdateProperties",
			Reason: fmt.Sprintf("端口 %v 没有连接器", n),
		}
	}
	ps := make([]float64, len(cs))
	rs := make([]resistance.Function, len(cs))
	linear := true
	for i, c := range cs {
		res, ok := c.Other(n).Block().(*PressureReservoir)
		if !ok {
			return nil, &types.TopologyError{
				Op:     "UpdateProperties",
				Reason: fmt.Sprintf("端口 %v 的外部连接未到达压力储罐", n),
			}
		}
		ps[i], rs[i] = res.Pressure(), c.Resistance()
		linear = linear && rs[i].Linear()
	}
	if len(cs) == 1 {
		return func(q float64) float64 {
			return ps[0] - dir*rs[0].PressureDrop(q)
		}, nil
	}
	if linear {
		// p = (Σ G_k·P_k - dir·Q) / Σ G_k
		var g, gp float64
		for i, r := range rs {
			g += r.Conductance(0)
			gp += r.Conductance(0) * ps[i]
		}
		return func(q float64) float64 {
			return (gp - dir*q) / g
		}, nil
	}
	lo, hi := slices.Min(ps)-1, slices.Max(ps)+1
	return func(q float64) float64 {
		h := func(p float64) float64 {
			sum := -q
			for i, r := range rs {
				sum += r.FlowRate(dir * (ps[i] - p))
			}
			return sum
		}
		a, b, err := maths.ExpandBracket(h, lo, hi, bracketIterations)
		if err != nil {
			return math.NaN()
		}
		p, err := maths.Brent(h, a, b, brentTolerance, brentIterations)
		if err != nil {
			return math.NaN()
		}
		return p
	}, nil
}
