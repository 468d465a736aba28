// Package poiseuille 稳态不可压缩流动网络求解
//
// 节点经阻力连接器相连，由储罐与风机提供边界条件。求解给出每个节点的
// 压力与每个连接器的流量，满足内部节点质量守恒与各元件的本构关系。
package poiseuille

import (
	"fmt"

	"poiseuille/load"
	"poiseuille/system"
)

// Network 网络描述及其求解器
type Network struct {
	*load.Network
	System *system.IncompressibleSystem
}

// Open 从 YAML 描述文件加载网络
func Open(path string, opts ...system.Option) (*Network, error) {
	n, err := load.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewNetwork(n, opts...), nil
}

// NewNetwork 为已构建的网络创建求解器
func NewNetwork(n *load.Network, opts ...system.Option) *Network {
	return &Network{Network: n, System: system.New(n.Blocks, opts...)}
}

// Solve 求解并生成报告
func (n *Network) Solve() (*Report, error) {
	if err := n.System.Solve(); err != nil {
		return nil, fmt.Errorf("求解 %s: %w", n.label(), err)
	}
	return NewReport(n.label(), n.System)
}

func (n *Network) label() string {
	if n.Name == "" {
		return "network"
	}
	return n.Name
}
