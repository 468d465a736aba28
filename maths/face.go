package maths

import "gonum.org/v1/gonum/mat"

// 补充必要常量（浮点精度阈值）
const Epsilon = 1e-16

// Vector 向量接口定义
type Vector interface {
	// 基础属性方法
	Length() int    // 获取向量长度
	String() string // 格式化字符串输出

	// 数据访问方法
	Get(index int) float64              // 获取指定索引元素值
	Set(index int, value float64)       // 设置指定索引元素值
	Increment(index int, value float64) // 增量更新元素（value累加）

	// 数据操作和转换方法
	ToDense() []float64       // 转换为稠密切片（副本）
	RawVector() *mat.VecDense // 底层 gonum 向量

	// 数据修改方法
	Zero()         // 清空向量为零向量
	Copy(a Vector) // 复制自身数据到目标向量a

	// 统计方法
	MaxAbs() float64 // 获取向量中绝对值最大的元素的绝对值
}

// UpdateVector 可更新向量接口（支持备份与回溯）
type UpdateVector interface {
	Vector
	Update()   // 当前数据写入备份
	Rollback() // 恢复到备份（放弃修改）
}

// Matrix 矩阵接口定义
type Matrix interface {
	// 基础属性方法
	Rows() int      // 获取矩阵行数
	Cols() int      // 获取矩阵列数
	String() string // 格式化字符串输出
	IsSquare() bool // 判断是否为方阵（行数=列数）

	// 数据访问方法
	Get(row, col int) float64              // 获取指定行列元素值
	Set(row, col int, value float64)       // 设置指定行列元素值
	Increment(row, col int, value float64) // 增量更新元素
	RawMatrix() *mat.Dense                 // 底层 gonum 矩阵

	// 数据修改方法
	Zero()         // 清空矩阵为零矩阵
	Copy(a Matrix) // 复制自身数据到目标矩阵a

	// 数学运算方法
	MatrixVectorMultiply(x Vector) Vector // 矩阵向量乘法（返回A*x）
}

// UpdateMatrix 可更新矩阵接口（支持备份与回溯）
type UpdateMatrix interface {
	Matrix
	Update()   // 当前数据写入备份
	Rollback() // 恢复到备份（放弃修改）
}

// LU 接口定义了 LU 分解和求解线性方程组的操作。
type LU interface {
	Decompose(matrix Matrix) error // 对输入方阵执行LU分解（A=PLU）
	SolveReuse(b, x Vector) error  // 重用分解结果求解Ax=b
	Dim() int                      // 矩阵维度
}
