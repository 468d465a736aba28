package element

import (
	"poiseuille/mna"
	"poiseuille/types"
)

// NodeKind 节点类型
type NodeKind uint8

const (
	NodeFree      NodeKind = iota // 自由节点，压力待求
	NodeReservoir                 // 储罐节点，压力固定
)

func (k NodeKind) String() string {
	switch k {
	case NodeFree:
		return "free"
	case NodeReservoir:
		return "reservoir"
	default:
		return "unknown"
	}
}

// Node 网络节点，压力均匀的一点。
// 节点只能由块的构造函数创建，并且恰好属于一个块。
type Node struct {
	kind       NodeKind
	block      Block
	port       string       // 在所属块中的端口名
	connectors []*Connector // 连接到该节点的连接器
	index      mna.NodeID   // 节点表索引，由系统发现阶段分配
	pressure   float64
	resolved   bool
}

func newNode(kind NodeKind, block Block, port string) *Node {
	return &Node{kind: kind, block: block, port: port, index: mna.Unset}
}

func (n *Node) Kind() NodeKind    { return n.kind }
func (n *Node) Block() Block      { return n.block }
func (n *Node) Port() string      { return n.port }
func (n *Node) Index() mna.NodeID { return n.index }

// SetIndex 分配节点表索引。
func (n *Node) SetIndex(i mna.NodeID) { n.index = i }

// Connector 返回占据节点编辑槽位的连接器（最先连接的一个），没有则为 nil。
func (n *Node) Connector() *Connector {
	if len(n.connectors) == 0 {
		return nil
	}
	return n.connectors[0]
}

// Connectors 返回连接到该节点的所有连接器。
func (n *Node) Connectors() []*Connector {
	return n.connectors
}

// Pressure 返回求解得到的压力。
func (n *Node) Pressure() (float64, error) {
	if !n.resolved {
		return 0, &types.UnresolvedStateError{What: "节点压力"}
	}
	return n.pressure, nil
}

// Resolve 写入求解结果。
func (n *Node) Resolve(p float64) {
	n.pressure, n.resolved = p, true
}

// Invalidate 作废求解结果。
func (n *Node) Invalidate() {
	n.resolved = false
}

// String 节点名称，形如 "fan.input"。
func (n *Node) String() string {
	if n.block == nil || n.block.Name() == "" {
		return n.port
	}
	return n.block.Name() + "." + n.port
}
