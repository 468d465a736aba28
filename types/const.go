package types

// 默认参数常量定义
var (
	Tolerance        = 1e-9 // 收敛容差(相对残差)
	MaxIterations    = 100  // 牛顿迭代最大次数
	DampingFactor    = 1.0  // 初始阻尼因子
	MinDampingFactor = 0.1  // 最小阻尼因子
	MaxDampingFactor = 1.0  // 最大阻尼因子
	MinConductance   = 1e-12
)

// Method 求解方式
type Method uint8

const (
	MethodAuto   Method = iota // 全部线性时直接求解,否则牛顿迭代
	MethodDirect               // 强制直接求解(要求全部线性)
	MethodNewton               // 强制牛顿迭代
)

// String 名称
func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodDirect:
		return "direct"
	case MethodNewton:
		return "newton"
	}
	return "unknown"
}

// ParseMethod 通过名称获取求解方式
func ParseMethod(name string) (Method, bool) {
	switch name {
	case "", "auto":
		return MethodAuto, true
	case "direct":
		return MethodDirect, true
	case "newton":
		return MethodNewton, true
	}
	return MethodAuto, false
}
