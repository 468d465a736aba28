package element

import "poiseuille/mna"

// PressureReservoir 压力储罐，节点压力固定（Dirichlet 边界）。
type PressureReservoir struct {
	blockBase
	node     *Node
	pressure float64
}

// NewPressureReservoir 创建压力为 p 的储罐。
func NewPressureReservoir(p float64) *PressureReservoir {
	r := &PressureReservoir{pressure: p}
	r.node = newNode(NodeReservoir, r, "node")
	return r
}

func (r *PressureReservoir) Kind() Kind        { return KindPressureReservoir }
func (r *PressureReservoir) Nodes() []*Node    { return []*Node{r.node} }
func (r *PressureReservoir) Node() *Node       { return r.node }
func (r *PressureReservoir) Couples() bool     { return false }
func (r *PressureReservoir) Linear() bool      { return true }
func (r *PressureReservoir) Pressure() float64 { return r.pressure }

// SetPressure 修改储罐压力，下一次求解生效。
func (r *PressureReservoir) SetPressure(p float64) { r.pressure = p }

// Allocate 登记固定压力节点
func (r *PressureReservoir) Allocate(layout *mna.Layout) {
	i := r.node.index
	layout.Fixed[i] = true
	layout.Pressure[i] = r.pressure
}

// Residual 储罐不贡献守恒方程
func (r *PressureReservoir) Residual(mna.MNA) {}

// StepFinished 保存结果
func (r *PressureReservoir) StepFinished(mna.MNA) {}

// Invalidate 作废求解结果
func (r *PressureReservoir) Invalidate() { r.node.Invalidate() }
