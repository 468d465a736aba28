package types

// State 系统状态
//
//	Constructed → Assembled → Solved | Diverged
type State uint8

const (
	StateConstructed State = iota // 已创建
	StateAssembled                // 已完成拓扑发现与方程装配
	StateSolved                   // 已收敛
	StateDiverged                 // 求解失败: 迭代超出上限、矩阵奇异或重新组装失败
)

// String 状态名称
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateAssembled:
		return "assembled"
	case StateSolved:
		return "solved"
	case StateDiverged:
		return "diverged"
	}
	return "unknown"
}
