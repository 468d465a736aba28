package graph

import (
	"fmt"
	"slices"

	"poiseuille/element"
	"poiseuille/mna"
	"poiseuille/types"
)

// Graph 网络拓扑：从块列表出发发现的节点表、连接器表和块表。
type Graph struct {
	Blocks     []element.Block      // 块列表（含经连接器收养的块）
	Nodes      []*element.Node      // 节点表，下标即节点索引
	Connectors []*element.Connector // 连接器列表，下标即连接器索引
	components [][]mna.NodeID       // 压力连通分量
}

// NewGraph 创建图并检查每个连通分量是否有压力基准。
func NewGraph(blocks []element.Block) (*Graph, error) {
	graph, err := Discover(blocks)
	if err != nil {
		return nil, err
	}
	if err := graph.checkAnchor(); err != nil {
		return nil, err
	}
	return graph, nil
}

// Discover 创建图，不检查压力基准。
func Discover(blocks []element.Block) (*Graph, error) {
	graph := &Graph{}
	if err := graph.Init(blocks); err != nil {
		return nil, err
	}
	return graph, nil
}

// Init 发现节点和连接器并分配索引。
func (graph *Graph) Init(blocks []element.Block) error {
	graph.Blocks = graph.Blocks[:0]
	graph.Nodes = graph.Nodes[:0]
	graph.Connectors = graph.Connectors[:0]
	if len(blocks) == 0 {
		return &types.TopologyError{Op: "NewGraph", Reason: "块列表为空"}
	}
	seenBlock := map[element.Block]bool{}
	seenConn := map[*element.Connector]bool{}
	var queue []*element.Node
	addBlock := func(b element.Block) {
		if seenBlock[b] {
			return
		}
		seenBlock[b] = true
		graph.Blocks = append(graph.Blocks, b)
		queue = append(queue, b.Nodes()...)
	}
	for i, b := range blocks {
		if b == nil {
			return &types.TopologyError{Op: "NewGraph", Reason: fmt.Sprintf("第 %d 个块为空", i)}
		}
		addBlock(b)
	}
	// 广度优先遍历
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		n.SetIndex(mna.NodeID(len(graph.Nodes)))
		graph.Nodes = append(graph.Nodes, n)
		for _, c := range n.Connectors() {
			if seenConn[c] {
				continue
			}
			seenConn[c] = true
			c.SetIndex(len(graph.Connectors))
			graph.Connectors = append(graph.Connectors, c)
			// 收养连接器另一端节点所属的块
			addBlock(c.Other(n).Block())
		}
	}
	graph.components = graph.connect()
	return nil
}

// connect 计算压力连通分量：连接器和传递压力的块把节点连在一起。
func (graph *Graph) connect() [][]mna.NodeID {
	set := newDisjointSet(len(graph.Nodes))
	for _, c := range graph.Connectors {
		a, b := c.Endpoints()
		set.union(int(a.Index()), int(b.Index()))
	}
	for _, b := range graph.Blocks {
		if !b.Couples() {
			continue
		}
		nodes := b.Nodes()
		for _, n := range nodes[1:] {
			set.union(int(nodes[0].Index()), int(n.Index()))
		}
	}
	roots := map[int]int{}
	var components [][]mna.NodeID
	for i := range graph.Nodes {
		r := set.find(i)
		k, ok := roots[r]
		if !ok {
			k = len(components)
			roots[r] = k
			components = append(components, nil)
		}
		components[k] = append(components[k], mna.NodeID(i))
	}
	return components
}

// checkAnchor 每个连通分量至少包含一个储罐节点
func (graph *Graph) checkAnchor() error {
	var floating []int
	for _, comp := range graph.components {
		anchored := slices.ContainsFunc(comp, func(id mna.NodeID) bool {
			return graph.Nodes[id].Kind() == element.NodeReservoir
		})
		if anchored {
			continue
		}
		for _, id := range comp {
			floating = append(floating, int(id))
		}
	}
	if len(floating) > 0 {
		slices.Sort(floating)
		return &types.DisconnectedNetworkError{Nodes: floating}
	}
	return nil
}

// Components 压力连通分量
func (graph *Graph) Components() [][]mna.NodeID {
	return graph.components
}

// Layout 未知量布局：储罐节点固定，风机登记支路。
func (graph *Graph) Layout() mna.Layout {
	layout := mna.Layout{
		Fixed:    make([]bool, len(graph.Nodes)),
		Pressure: make([]float64, len(graph.Nodes)),
	}
	for _, b := range graph.Blocks {
		b.Allocate(&layout)
	}
	return layout
}

// Linear 所有关系是否线性
func (graph *Graph) Linear() bool {
	for _, b := range graph.Blocks {
		if !b.Linear() {
			return false
		}
	}
	for _, c := range graph.Connectors {
		if !c.Linear() {
			return false
		}
	}
	return true
}

// disjointSet 并查集
type disjointSet []int

func newDisjointSet(n int) disjointSet {
	set := make(disjointSet, n)
	for i := range set {
		set[i] = i
	}
	return set
}

func (set disjointSet) find(i int) int {
	for set[i] != i {
		set[i] = set[set[i]]
		i = set[i]
	}
	return i
}

func (set disjointSet) union(a, b int) {
	ra, rb := set.find(a), set.find(b)
	if ra != rb {
		set[rb] = ra
	}
}
