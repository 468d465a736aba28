package element

import "poiseuille/mna"

// Kind 块类型
type Kind uint8

const (
	KindPressureReservoir   Kind = iota // 压力储罐
	KindConstantDeliveryFan             // 定流量风机
	KindPowerCurveFan                   // 性能曲线风机
)

func (k Kind) String() string {
	switch k {
	case KindPressureReservoir:
		return "reservoir"
	case KindConstantDeliveryFan:
		return "constant_fan"
	case KindPowerCurveFan:
		return "curve_fan"
	default:
		return "unknown"
	}
}

// ParseKind 解析块类型名称。
func ParseKind(name string) (Kind, bool) {
	for k := KindPressureReservoir; k <= KindPowerCurveFan; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Stamper 参与方程组装的元件（块和连接器）的生命周期接口。
type Stamper interface {
	Reset()                 // 元件重置
	Seed(m mna.MNA)         // 冷启动时写入迭代初值
	Stamp(m mna.MNA)        // 加盖线性贡献
	DoStep(m mna.MNA)       // 加盖非线性贡献（每次迭代）
	Residual(m mna.MNA)     // 记录真实残差
	StepFinished(m mna.MNA) // 收敛后保存结果
	Linear() bool           // 是否全部为线性关系
}

// Block 向网络提供节点和边界/耦合方程的设备。
// 变体集合是封闭的：PressureReservoir, ConstantDeliveryFan, PowerCurveFan。
type Block interface {
	Stamper
	Kind() Kind
	Nodes() []*Node
	Name() string
	SetName(name string)

	// Allocate 在未知量布局中登记固定压力节点或支路未知量。
	Allocate(layout *mna.Layout)

	// Couples 块的端口之间是否传递压力（用于锚定检查）。
	Couples() bool

	// Invalidate 作废求解结果。
	Invalidate()

	block()
}

// blockBase 块的公共部分
type blockBase struct {
	name string
}

func (b *blockBase) Name() string        { return b.name }
func (b *blockBase) SetName(name string) { b.name = name }
func (*blockBase) block()                {}

// Reset 元件重置
func (*blockBase) Reset() {}

// Seed 迭代初值
func (*blockBase) Seed(mna.MNA) {}

// Stamp 加盖线性贡献
func (*blockBase) Stamp(mna.MNA) {}

// DoStep 加盖非线性贡献
func (*blockBase) DoStep(mna.MNA) {}
