package types

import (
	"fmt"
	"strings"
)

// TopologyError 连接非法或重复
type TopologyError struct {
	Op     string // 操作
	Reason string // 原因
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("拓扑错误 %s: %s", e.Op, e.Reason)
}

// DisconnectedNetworkError 存在无法到达任何压力基准的节点
type DisconnectedNetworkError struct {
	Nodes []int // 未锚定节点索引
}

func (e *DisconnectedNetworkError) Error() string {
	ids := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		ids[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("网络不连通: 节点 [%s] 无法到达任何压力储罐", strings.Join(ids, " "))
}

// UnresolvedStateError 求解前读取压力或流量
type UnresolvedStateError struct {
	What string
}

func (e *UnresolvedStateError) Error() string {
	return fmt.Sprintf("%s 尚未求解", e.What)
}

// ConvergenceError 牛顿迭代在上限内未收敛
type ConvergenceError struct {
	Iterations int     // 已执行迭代次数
	Residual   float64 // 最终残差
	Tolerance  float64 // 收敛容差
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("迭代发散: %d 次迭代后残差 %.3e 仍大于 %.1e", e.Iterations, e.Residual, e.Tolerance)
}

// SingularSystemError 方程组奇异
type SingularSystemError struct {
	Err error
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("方程组奇异: %v", e.Err)
}

func (e *SingularSystemError) Unwrap() error { return e.Err }
