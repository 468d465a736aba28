package mna

import (
	"fmt"
	"math"

	"poiseuille/maths"
)

// MnaType 是 MNA 接口的基础实现，包含了求解网络所需的核心矩阵和向量。
type MnaType struct {
	A         maths.UpdateMatrix // 求解矩阵A（线性部分可回滚）
	Z         maths.UpdateVector // 已知向量Z（线性部分可回滚）
	X         maths.Vector       // 未知向量X (解)
	R         maths.Vector       // 残差向量
	rows      []int              // 节点 → 行号，固定节点为 Unset
	fixed     []float64          // 固定节点压力
	nodesNum  int                // 自由节点数量
	branchNum int                // 支路数量
	flowScale float64            // 残差计算中出现的最大流量
}

// NewMna 根据布局创建求解器实例。
//
//	layout: 每个节点是否固定以及固定压力，支路数量。
//	返回:一个新的 UpdateMNA 实例。
func NewMna(layout Layout) UpdateMNA {
	m := &MnaType{
		rows:      make([]int, len(layout.Fixed)),
		fixed:     make([]float64, len(layout.Fixed)),
		branchNum: layout.Branches,
	}
	for i, isFixed := range layout.Fixed {
		if isFixed {
			m.rows[i] = Unset
			m.fixed[i] = layout.Pressure[i]
			continue
		}
		m.rows[i] = m.nodesNum
		m.nodesNum++
	}
	n := m.nodesNum + m.branchNum // 总方程数量
	m.A = maths.NewUpdateMatrixPtr(maths.NewDenseMatrix(n, n))
	m.Z = maths.NewUpdateVectorPtr(maths.NewDenseVector(n))
	m.X = maths.NewDenseVector(n)
	m.R = maths.NewDenseVector(n)
	return m
}

// ------------------------------ 矩阵/向量访问 ------------------------------

func (m *MnaType) GetA() maths.Matrix        { return m.A }
func (m *MnaType) GetZ() maths.Vector        { return m.Z }
func (m *MnaType) GetX() maths.Vector        { return m.X }
func (m *MnaType) GetResidual() maths.Vector { return m.R }
func (m *MnaType) GetNodeNum() int           { return m.nodesNum }
func (m *MnaType) GetBranchNum() int         { return m.branchNum }
func (m *MnaType) FlowScale() float64        { return m.flowScale }

// Zero 将系统（矩阵A、向量Z、X和残差）重置为零。
func (m *MnaType) Zero() {
	m.A.Zero()
	m.Z.Zero()
	m.X.Zero()
	m.ZeroResidual()
}

// Update 备份当前 A、Z（线性贡献）。
func (m *MnaType) Update() {
	m.A.Update()
	m.Z.Update()
}

// Rollback 恢复 A、Z 到线性贡献。
func (m *MnaType) Rollback() {
	m.A.Rollback()
	m.Z.Rollback()
}

// ZeroResidual 清空残差向量。
func (m *MnaType) ZeroResidual() {
	m.R.Zero()
	m.flowScale = 0
}

// SetX 设置解向量（热启动）。
func (m *MnaType) SetX(x []float64) {
	if len(x) != m.X.Length() {
		return
	}
	for i, v := range x {
		m.X.Set(i, v)
	}
}

// SetFixedPressure 修改固定节点压力。
func (m *MnaType) SetFixedPressure(i NodeID, p float64) {
	if m.isFixed(i) {
		m.fixed[i] = p
	}
}

// Row 节点所在行，固定节点或无效节点返回 Unset。
func (m *MnaType) Row(i NodeID) int {
	if i < 0 || int(i) >= len(m.rows) {
		return Unset
	}
	return m.rows[i]
}

// BranchRow 支路所在行。
func (m *MnaType) BranchRow(b BranchID) int {
	if b < 0 || int(b) >= m.branchNum {
		return Unset
	}
	return m.nodesNum + int(b)
}

func (m *MnaType) isFixed(i NodeID) bool {
	return i >= 0 && int(i) < len(m.rows) && m.rows[i] == Unset
}

// ------------------------------ 系统信息查询 ------------------------------

// GetNodePressure 获取节点压力。
func (m *MnaType) GetNodePressure(i NodeID) float64 {
	if m.isFixed(i) {
		return m.fixed[i]
	}
	if r := m.Row(i); r != Unset {
		return m.X.Get(r)
	}
	return 0
}

// GetBranchFlow 获取支路流量。
func (m *MnaType) GetBranchFlow(b BranchID) float64 {
	if r := m.BranchRow(b); r != Unset {
		return m.X.Get(r)
	}
	return 0
}

// SetBranchFlow 设置支路流量。
func (m *MnaType) SetBranchFlow(b BranchID, q float64) {
	if r := m.BranchRow(b); r != Unset {
		m.X.Set(r, q)
	}
}

// ------------------------------ 矩阵操作 ------------------------------

// StampMatrix 节点i方程中节点j的系数。
func (m *MnaType) StampMatrix(i, j NodeID, value float64) {
	ri := m.Row(i)
	if ri == Unset {
		return
	}
	m.stampColumn(ri, j, value)
}

// stampColumn 在行 row 中加入节点 j 的系数，固定节点代入右侧。
func (m *MnaType) stampColumn(row int, j NodeID, value float64) {
	if m.isFixed(j) {
		m.Z.Increment(row, -value*m.fixed[j])
		return
	}
	if rj := m.Row(j); rj != Unset {
		m.A.Increment(row, rj, value)
	}
}

// StampRightSide 节点i方程右侧。
func (m *MnaType) StampRightSide(i NodeID, value float64) {
	if ri := m.Row(i); ri != Unset {
		m.Z.Increment(ri, value)
	}
}

// ------------------------------ 元件加盖 ------------------------------

// StampConductance 导流元件。
func (m *MnaType) StampConductance(n1, n2 NodeID, g float64) {
	m.StampMatrix(n1, n1, g)
	m.StampMatrix(n2, n2, g)
	m.StampMatrix(n1, n2, -g)
	m.StampMatrix(n2, n1, -g)
}

// StampFlowSource 定流量源，流出项移到右侧。
func (m *MnaType) StampFlowSource(n1, n2 NodeID, q float64) {
	m.StampRightSide(n1, -q)
	m.StampRightSide(n2, q)
}

// StampBranch 支路线性部分。
func (m *MnaType) StampBranch(in, out NodeID, b BranchID) {
	br := m.BranchRow(b)
	if br == Unset {
		return
	}
	// 守恒方程: Q 从 in 流出，流入 out
	if r := m.Row(in); r != Unset {
		m.A.Increment(r, br, 1)
	}
	if r := m.Row(out); r != Unset {
		m.A.Increment(r, br, -1)
	}
	// 耦合方程: p_out - p_in
	m.stampColumn(br, out, 1)
	m.stampColumn(br, in, -1)
}

// StampBranchCurve 支路线性化曲线 -slope·Q = rhs。
func (m *MnaType) StampBranchCurve(b BranchID, slope, rhs float64) {
	br := m.BranchRow(b)
	if br == Unset {
		return
	}
	m.A.Increment(br, br, -slope)
	m.Z.Increment(br, rhs)
}

// ------------------------------ 残差 ------------------------------

// ResidualFlow 流量 q 从 n1 流出，流入 n2。
func (m *MnaType) ResidualFlow(n1, n2 NodeID, q float64) {
	m.flowScale = math.Max(m.flowScale, math.Abs(q))
	if r := m.Row(n1); r != Unset {
		m.R.Increment(r, q)
	}
	if r := m.Row(n2); r != Unset {
		m.R.Increment(r, -q)
	}
}

// ResidualBranch 支路耦合方程残差。
func (m *MnaType) ResidualBranch(b BranchID, r float64) {
	if br := m.BranchRow(b); br != Unset {
		m.R.Increment(br, r)
	}
}

// String 返回内部状态的字符串表示。
func (m *MnaType) String() string {
	return fmt.Sprintf("MNA Matrix (rows=%d, cols=%d):\n%s\nZ vector:\n%s\nX vector:\n%s",
		m.A.Rows(), m.A.Cols(), m.A.String(), m.Z.String(), m.X.String())
}
