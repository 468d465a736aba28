package types

import "io"

// Iteration 单次迭代快照
type Iteration struct {
	Iter     int       // 迭代序号
	Residual float64   // 残差无穷范数
	Damping  float64   // 本次使用的阻尼因子
	X        []float64 // 未知量向量(自由节点压力 + 风机流量)
}

// Debug 调试接口
type Debug interface {
	Init(rows []string)       // 未知量名称
	IsDebug() bool            // 是否记录
	Update(it Iteration)      // 记录一次迭代
	Render(w io.Writer) error // 输出
	Error(err error)          // 求解失败
}
