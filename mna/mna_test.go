package mna

import (
	"math"
	"testing"

	"poiseuille/maths"
)

// solve 辅助函数: 分解并求解当前 A、Z
func solve(t *testing.T, m UpdateMNA) {
	t.Helper()
	n := m.GetA().Rows()
	lu, err := maths.NewLU(n)
	if err != nil {
		t.Fatalf("NewLU: %v", err)
	}
	if err := lu.Decompose(m.GetA()); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if err := lu.SolveReuse(m.GetZ(), m.GetX()); err != nil {
		t.Fatalf("Solve: %v", err)
	}
}

// TestStampConductanceFixed 储罐(10) - R=2 - 节点1 - R=2 - 储罐(0)
func TestStampConductanceFixed(t *testing.T) {
	m := NewMna(Layout{
		Fixed:    []bool{true, false, true},
		Pressure: []float64{10, 0, 0},
	})
	if m.GetNodeNum() != 1 {
		t.Fatalf("GetNodeNum() = %d, want 1", m.GetNodeNum())
	}
	m.StampConductance(0, 1, 0.5)
	m.StampConductance(1, 2, 0.5)
	solve(t, m)
	if p := m.GetNodePressure(1); math.Abs(p-5) > 1e-12 {
		t.Errorf("节点1压力不正确: 期望 5, 实际 %v", p)
	}
	if p := m.GetNodePressure(0); p != 10 {
		t.Errorf("固定节点压力不正确: 期望 10, 实际 %v", p)
	}
}

// TestStampFlowSource 定流量源把流量注入节点
func TestStampFlowSource(t *testing.T) {
	// 储罐(0) - g=1 - 节点1 ; 流量源 2 从节点1流出到固定节点
	m := NewMna(Layout{Fixed: []bool{true, false}, Pressure: []float64{0, 0}})
	m.StampConductance(0, 1, 1)
	m.StampFlowSource(1, 0, 2)
	solve(t, m)
	// 节点1: g(p1-0) + 2 = 0 => p1 = -2
	if p := m.GetNodePressure(1); math.Abs(p+2) > 1e-12 {
		t.Errorf("节点1压力不正确: 期望 -2, 实际 %v", p)
	}
}

// TestStampBranch 支路固定压升: p_out - p_in = 3
func TestStampBranch(t *testing.T) {
	// 储罐(0) - g=1 - in(1) =支路= out(2) - g=1 - 储罐(3)
	m := NewMna(Layout{
		Fixed:    []bool{true, false, false, true},
		Pressure: []float64{0, 0, 0, 0},
		Branches: 1,
	})
	m.StampConductance(0, 1, 1)
	m.StampConductance(2, 3, 1)
	m.StampBranch(1, 2, 0)
	m.StampBranchCurve(0, 0, 3)
	solve(t, m)
	q := m.GetBranchFlow(0)
	if math.Abs(q-1.5) > 1e-12 {
		t.Errorf("支路流量不正确: 期望 1.5, 实际 %v", q)
	}
	if d := m.GetNodePressure(2) - m.GetNodePressure(1); math.Abs(d-3) > 1e-12 {
		t.Errorf("压升不正确: 期望 3, 实际 %v", d)
	}
}

// TestUpdateRollback 非线性部分回滚后线性部分保持
func TestUpdateRollback(t *testing.T) {
	m := NewMna(Layout{Fixed: []bool{false, true}, Pressure: []float64{0, 1}})
	m.StampConductance(0, 1, 2)
	m.Update()
	m.StampConductance(0, 1, 5)
	m.StampRightSide(0, 4)
	m.Rollback()
	if got := m.GetA().Get(0, 0); got != 2 {
		t.Errorf("A(0,0) = %v, want 2", got)
	}
	// 固定节点代入: -(-2)·1 = 2
	if got := m.GetZ().Get(0); got != 2 {
		t.Errorf("Z(0) = %v, want 2", got)
	}
}

// TestResidual 残差累加与流量尺度
func TestResidual(t *testing.T) {
	m := NewMna(Layout{Fixed: []bool{false, false, true}, Pressure: []float64{0, 0, 0}, Branches: 1})
	m.ResidualFlow(0, 1, 3)
	m.ResidualFlow(1, 2, -4)
	m.ResidualBranch(0, 0.5)
	r := m.GetResidual().ToDense()
	want := []float64{3, -7, 0.5}
	for i := range want {
		if r[i] != want[i] {
			t.Errorf("R[%d] = %v, want %v", i, r[i], want[i])
		}
	}
	if m.FlowScale() != 4 {
		t.Errorf("FlowScale() = %v, want 4", m.FlowScale())
	}
	m.ZeroResidual()
	if m.GetResidual().MaxAbs() != 0 || m.FlowScale() != 0 {
		t.Error("ZeroResidual did not clear")
	}
}
