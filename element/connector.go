package element

import (
	"fmt"
	"math"

	"poiseuille/mna"
	"poiseuille/resistance"
	"poiseuille/types"
)

// Connector 连接两个节点的阻力元件，流量方向 a → b 为正。
// 连接器不拥有节点，只保存引用。
type Connector struct {
	r        resistance.Function
	a, b     *Node
	index    int
	flow     float64
	resolved bool
}

// NewConnector 根据阻力函数创建连接器。
func NewConnector(r resistance.Function) *Connector {
	return &Connector{r: r, index: mna.Unset}
}

// Connect 连接两个节点。同一对节点之间可以存在多个连接器（并联管路）。
func (c *Connector) Connect(a, b *Node) error {
	if err := c.check(a, b); err != nil {
		return err
	}
	c.attach(a, b)
	return nil
}

// ConnectExclusive 连接两个节点，要求两个节点的槽位都未被占用。
func (c *Connector) ConnectExclusive(a, b *Node) error {
	if err := c.check(a, b); err != nil {
		return err
	}
	if a.Connector() != nil || b.Connector() != nil {
		return &types.TopologyError{Op: "ConnectExclusive", Reason: "节点槽位已被占用"}
	}
	c.attach(a, b)
	return nil
}

func (c *Connector) check(a, b *Node) error {
	switch {
	case c.r == nil:
		return &types.TopologyError{Op: "Connect", Reason: "连接器缺少阻力函数"}
	case a == nil || b == nil:
		return &types.TopologyError{Op: "Connect", Reason: "节点为空"}
	case a == b:
		return &types.TopologyError{Op: "Connect", Reason: "两端为同一节点"}
	case c.a != nil:
		return &types.TopologyError{Op: "Connect", Reason: "连接器已连接"}
	}
	return nil
}

func (c *Connector) attach(a, b *Node) {
	c.a, c.b = a, b
	a.connectors = append(a.connectors, c)
	b.connectors = append(b.connectors, c)
}

func (c *Connector) Endpoints() (a, b *Node)         { return c.a, c.b }
func (c *Connector) Resistance() resistance.Function { return c.r }
func (c *Connector) Index() int                      { return c.index }
func (c *Connector) SetIndex(i int)                  { c.index = i }

// Other 返回连接器另一端的节点。
func (c *Connector) Other(n *Node) *Node {
	switch n {
	case c.a:
		return c.b
	case c.b:
		return c.a
	}
	return nil
}

// FlowRate 流量，a → b 为正。
func (c *Connector) FlowRate() (float64, error) {
	if !c.resolved {
		return 0, &types.UnresolvedStateError{What: "连接器流量"}
	}
	return c.flow, nil
}

// PressureDrop 压降 p_a - p_b。
func (c *Connector) PressureDrop() (float64, error) {
	q, err := c.FlowRate()
	if err != nil {
		return 0, err
	}
	return c.r.PressureDrop(q), nil
}

// Invalidate 作废求解结果。
func (c *Connector) Invalidate() {
	c.resolved = false
}

func (c *Connector) Linear() bool {
	return c.r.Linear()
}

// Reset 元件重置
func (c *Connector) Reset() {}

// Seed 迭代初值
func (c *Connector) Seed(mna.MNA) {}

// Stamp 加盖线性贡献
func (c *Connector) Stamp(m mna.MNA) {
	if c.r.Linear() {
		m.StampConductance(c.a.index, c.b.index, c.r.Conductance(0))
	}
}

// DoStep 非线性伴随模型: Q ≈ g·Δp + Ieq
func (c *Connector) DoStep(m mna.MNA) {
	if c.r.Linear() {
		return
	}
	dp := c.dp(m)
	g := math.Max(c.r.Conductance(dp), types.MinConductance)
	ieq := c.r.FlowRate(dp) - g*dp
	m.StampConductance(c.a.index, c.b.index, g)
	m.StampFlowSource(c.a.index, c.b.index, ieq)
}

// Residual 记录本构关系给出的流量
func (c *Connector) Residual(m mna.MNA) {
	m.ResidualFlow(c.a.index, c.b.index, c.r.FlowRate(c.dp(m)))
}

// StepFinished 保存流量
func (c *Connector) StepFinished(m mna.MNA) {
	c.flow, c.resolved = c.r.FlowRate(c.dp(m)), true
}

func (c *Connector) dp(m mna.MNA) float64 {
	return m.GetNodePressure(c.a.index) - m.GetNodePressure(c.b.index)
}

func (c *Connector) String() string {
	return fmt.Sprintf("%v -> %v [%v]", c.a, c.b, c.r)
}
