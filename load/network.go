package load

import (
	"fmt"
	"strings"

	"poiseuille/element"
)

// Network 由描述构建出的块与连接器
type Network struct {
	Name       string
	Blocks     []element.Block
	Connectors []*element.Connector
	blocks     map[string]element.Block
}

// Block 按名称查找块
func (network *Network) Block(name string) (element.Block, bool) {
	b, ok := network.blocks[name]
	return b, ok
}

// PowerCurveFan 按名称查找性能曲线风机
func (network *Network) PowerCurveFan(name string) (*element.PowerCurveFan, error) {
	b, ok := network.blocks[name]
	if !ok {
		return nil, fmt.Errorf("块 %q 不存在", name)
	}
	fan, ok := b.(*element.PowerCurveFan)
	if !ok {
		return nil, fmt.Errorf("块 %q 类型为 %s，不是性能曲线风机", name, b.Kind())
	}
	return fan, nil
}

// Reservoir 按名称查找储罐
func (network *Network) Reservoir(name string) (*element.PressureReservoir, error) {
	b, ok := network.blocks[name]
	if !ok {
		return nil, fmt.Errorf("块 %q 不存在", name)
	}
	r, ok := b.(*element.PressureReservoir)
	if !ok {
		return nil, fmt.Errorf("块 %q 类型为 %s，不是储罐", name, b.Kind())
	}
	return r, nil
}

// Port 解析端口引用 "块名.端口"，储罐可只写块名。
func (network *Network) Port(ref string) (*element.Node, error) {
	name, port, hasPort := strings.Cut(ref, ".")
	b, ok := network.blocks[name]
	if !ok {
		return nil, fmt.Errorf("端口 %q: 块 %q 不存在", ref, name)
	}
	nodes := b.Nodes()
	if !hasPort {
		if len(nodes) != 1 {
			return nil, fmt.Errorf("端口 %q: %s 有 %d 个端口，需要指定端口名", ref, b.Kind(), len(nodes))
		}
		return nodes[0], nil
	}
	for _, n := range nodes {
		if n.Port() == port {
			return n, nil
		}
	}
	return nil, fmt.Errorf("端口 %q: %s 没有端口 %q", ref, b.Kind(), port)
}

// portRef 端口引用，与 Port 互逆
func portRef(n *element.Node, name string) string {
	if len(n.Block().Nodes()) == 1 {
		return name
	}
	return name + "." + n.Port()
}
