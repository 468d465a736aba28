package maths

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// denseMatrix 稠密矩阵，底层为 gonum Dense
type denseMatrix struct {
	data *mat.Dense
}

// NewDenseMatrix 创建 rows×cols 零矩阵
func NewDenseMatrix(rows, cols int) Matrix {
	if rows <= 0 || cols <= 0 {
		return &denseMatrix{}
	}
	return &denseMatrix{data: mat.NewDense(rows, cols, nil)}
}

func (m *denseMatrix) Rows() int {
	if m.data == nil {
		return 0
	}
	r, _ := m.data.Dims()
	return r
}

func (m *denseMatrix) Cols() int {
	if m.data == nil {
		return 0
	}
	_, c := m.data.Dims()
	return c
}

func (m *denseMatrix) IsSquare() bool                  { return m.Rows() == m.Cols() }
func (m *denseMatrix) Get(row, col int) float64        { return m.data.At(row, col) }
func (m *denseMatrix) Set(row, col int, value float64) { m.data.Set(row, col, value) }
func (m *denseMatrix) RawMatrix() *mat.Dense           { return m.data }

// Increment 增量更新元素
func (m *denseMatrix) Increment(row, col int, value float64) {
	m.data.Set(row, col, m.data.At(row, col)+value)
}

// Zero 清空矩阵
func (m *denseMatrix) Zero() {
	if m.data != nil {
		m.data.Zero()
	}
}

// Copy 复制自身数据到目标矩阵a
func (m *denseMatrix) Copy(a Matrix) {
	if m.Rows() != a.Rows() || m.Cols() != a.Cols() {
		panic(fmt.Sprintf("matrix copy: dimension mismatch %dx%d != %dx%d", m.Rows(), m.Cols(), a.Rows(), a.Cols()))
	}
	if m.data == nil {
		return
	}
	a.RawMatrix().Copy(m.data)
}

// MatrixVectorMultiply 矩阵向量乘法（返回A*x）
func (m *denseMatrix) MatrixVectorMultiply(x Vector) Vector {
	out := NewDenseVector(m.Rows())
	if m.data == nil {
		return out
	}
	out.RawVector().MulVec(m.data, x.RawVector())
	return out
}

func (m *denseMatrix) String() string {
	if m.data == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", mat.Formatted(m.data, mat.Squeeze()))
}

// updateMatrix 带备份的矩阵
// 线性贡献加盖后 Update 备份，非线性迭代前 Rollback 恢复
type updateMatrix struct {
	Matrix
	base *mat.Dense // 备份数据
}

// NewUpdateMatrixPtr 从矩阵创建可更新矩阵，初始备份为当前值
func NewUpdateMatrixPtr(ptr Matrix) UpdateMatrix {
	um := &updateMatrix{Matrix: ptr}
	if ptr.Rows() > 0 {
		um.base = mat.DenseCopyOf(ptr.RawMatrix())
	}
	return um
}

// Update 当前数据写入备份
func (um *updateMatrix) Update() {
	if um.base != nil {
		um.base.Copy(um.RawMatrix())
	}
}

// Rollback 恢复到备份
func (um *updateMatrix) Rollback() {
	if um.base != nil {
		um.RawMatrix().Copy(um.base)
	}
}
