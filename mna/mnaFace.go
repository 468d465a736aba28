package mna

import "poiseuille/maths"

// NodeID 节点在节点表中的索引。
type NodeID int

// BranchID 支路未知量（风机流量）的索引。
type BranchID int

// Unset 表示尚未分配索引的节点或支路。
const Unset = -1

// Layout 描述未知量布局：哪些节点参与求解、哪些节点压力固定。
type Layout struct {
	Fixed    []bool    // 节点是否为固定压力(储罐)节点
	Pressure []float64 // 固定压力值，仅 Fixed[i] 为真时有效
	Branches int       // 支路未知量数量
}

// MNA (nodal analysis) 接口定义了构建流体网络方程（Ax=Z）所需的核心功能。
// 每个自由节点一行守恒方程（流出为正），每个风机支路一行耦合方程；
// 固定压力节点不占行，其对其他行的贡献代入右侧向量。
type MNA interface {
	// String 返回内部状态（A, Z, X）的字符串表示，主要用于调试。
	String() string

	// GetA / GetZ / GetX 返回方程 Ax=Z 中的矩阵与向量。
	GetA() maths.Matrix
	GetZ() maths.Vector
	GetX() maths.Vector

	// GetNodeNum 自由节点数量；GetBranchNum 支路未知量数量。
	GetNodeNum() int
	GetBranchNum() int

	// GetNodePressure 返回节点压力：固定节点返回固定值，自由节点从解向量X读取。
	GetNodePressure(i NodeID) float64

	// GetBranchFlow 返回支路流量。
	GetBranchFlow(b BranchID) float64

	// SetBranchFlow 设置支路流量（迭代初值）。
	SetBranchFlow(b BranchID, q float64)

	// StampMatrix 将一个值加到节点i守恒方程中节点j压力的系数上。
	// i 为固定节点时忽略；j 为固定节点时 -value·p_j 代入右侧。
	StampMatrix(i, j NodeID, value float64)

	// StampRightSide 将一个值加到节点i守恒方程的右侧。固定节点忽略。
	StampRightSide(i NodeID, value float64)

	// StampConductance 为导流元件添加加盖。
	// 数学模型: 流出 n1 的流量 g·(p1-p2)，对角元加 g，非对角元减 g。
	StampConductance(n1, n2 NodeID, g float64)

	// StampFlowSource 为定流量源添加加盖。
	// 数学模型: 流量 q 从 n1 流出，流入 n2。
	StampFlowSource(n1, n2 NodeID, q float64)

	// StampBranch 为支路添加线性部分：
	// 守恒方程中支路流量 Q 从 in 流出流入 out，耦合方程中加入 p_out - p_in。
	StampBranch(in, out NodeID, b BranchID)

	// StampBranchCurve 为支路耦合方程添加线性化曲线：
	// p_out - p_in - slope·Q = rhs
	StampBranchCurve(b BranchID, slope, rhs float64)

	// ResidualFlow 记录一条流量 q（n1 → n2）到残差向量。
	ResidualFlow(n1, n2 NodeID, q float64)

	// ResidualBranch 记录支路耦合方程的残差。
	ResidualBranch(b BranchID, r float64)
}

// UpdateMNA 扩展了 MNA 接口，提供线性贡献的备份与回滚。
// 线性元件加盖一次后 Update，每次牛顿迭代前 Rollback 回到线性状态。
type UpdateMNA interface {
	MNA
	Zero()      // 清空A、Z、X与残差
	Update()    // 将当前A、Z写入备份
	Rollback() // 恢复A、Z到备份
	ZeroResidual()
	GetResidual() maths.Vector
	FlowScale() float64
	SetX(x []float64)
	SetFixedPressure(i NodeID, p float64)
	Row(i NodeID) int
	BranchRow(b BranchID) int
}
