package element

import (
	"log"

	"poiseuille/mna"
)

// Mark 用于区分事件的标记
type Mark uint8

// 接口回调类型
const (
	MarkReset        Mark = iota // 元件重置
	MarkSeed                     // 写入迭代初值
	MarkStamp                    // 加盖线性贡献
	MarkDoStep                   // 加盖非线性贡献
	MarkResidual                 // 残差计算
	MarkStepFinished             // 求解结束
)

// CallMark 统一调用
func CallMark[T Stamper](mark Mark, m mna.MNA, value []T) {
	switch mark {
	case MarkReset:
		for _, v := range value {
			v.Reset()
		}
	case MarkSeed:
		for _, v := range value {
			v.Seed(m)
		}
	case MarkStamp:
		for _, v := range value {
			v.Stamp(m)
		}
	case MarkDoStep:
		for _, v := range value {
			v.DoStep(m)
		}
	case MarkResidual:
		for _, v := range value {
			v.Residual(m)
		}
	case MarkStepFinished:
		for _, v := range value {
			v.StepFinished(m)
		}
	default:
		log.Fatalf("未知 CallMark 操作: %d", mark)
	}
}
