package element

import (
	"poiseuille/mna"
	"poiseuille/types"
)

// Fan 风机的公共部分：输入、输出两个节点，流量由 input 经设备流向 output。
type Fan struct {
	blockBase
	input    *Node
	output   *Node
	flow     float64
	dp       float64
	resolved bool
}

func (f *Fan) init(block Block) {
	f.input = newNode(NodeFree, block, "input")
	f.output = newNode(NodeFree, block, "output")
}

func (f *Fan) Input() *Node   { return f.input }
func (f *Fan) Output() *Node  { return f.output }
func (f *Fan) Nodes() []*Node { return []*Node{f.input, f.output} }

// FlowRate 设备流量。
func (f *Fan) FlowRate() (float64, error) {
	if !f.resolved {
		return 0, &types.UnresolvedStateError{What: "风机流量"}
	}
	return f.flow, nil
}

// DP 设备压升 p_output - p_input。
func (f *Fan) DP() (float64, error) {
	if !f.resolved {
		return 0, &types.UnresolvedStateError{What: "风机压升"}
	}
	return f.dp, nil
}

func (f *Fan) resolve(m mna.MNA, q float64) {
	f.flow = q
	f.dp = m.GetNodePressure(f.output.index) - m.GetNodePressure(f.input.index)
	f.resolved = true
}

// Invalidate 作废求解结果
func (f *Fan) Invalidate() {
	f.resolved = false
	f.input.Invalidate()
	f.output.Invalidate()
}

// ConstantDeliveryFan 定流量风机，无论压力如何流量固定。
type ConstantDeliveryFan struct {
	Fan
	delivery float64
}

// NewConstantDeliveryFan 创建流量为 q 的风机。
func NewConstantDeliveryFan(q float64) *ConstantDeliveryFan {
	f := &ConstantDeliveryFan{delivery: q}
	f.init(f)
	return f
}

func (f *ConstantDeliveryFan) Kind() Kind            { return KindConstantDeliveryFan }
func (f *ConstantDeliveryFan) Couples() bool         { return false }
func (f *ConstantDeliveryFan) Linear() bool          { return true }
func (f *ConstantDeliveryFan) Delivery() float64     { return f.delivery }
func (f *ConstantDeliveryFan) SetDelivery(q float64) { f.delivery = q }
func (f *ConstantDeliveryFan) Allocate(*mna.Layout)  {}

// Stamp 流量源 input → output
func (f *ConstantDeliveryFan) Stamp(m mna.MNA) {
	m.StampFlowSource(f.input.index, f.output.index, f.delivery)
}

// Residual 记录设备流量
func (f *ConstantDeliveryFan) Residual(m mna.MNA) {
	m.ResidualFlow(f.input.index, f.output.index, f.delivery)
}

// StepFinished 保存结果
func (f *ConstantDeliveryFan) StepFinished(m mna.MNA) {
	f.resolve(m, f.delivery)
}
