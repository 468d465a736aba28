package maths

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// denseVector 稠密向量，底层为 gonum VecDense
type denseVector struct {
	data *mat.VecDense
}

// NewDenseVector 创建长度为 n 的零向量（n 为 0 时不分配底层存储）
func NewDenseVector(n int) Vector {
	if n <= 0 {
		return &denseVector{}
	}
	return &denseVector{data: mat.NewVecDense(n, nil)}
}

// NewDenseVectorFrom 从切片创建向量（复制数据）
func NewDenseVectorFrom(values []float64) Vector {
	v := NewDenseVector(len(values))
	for i, x := range values {
		v.Set(i, x)
	}
	return v
}

func (v *denseVector) Length() int {
	if v.data == nil {
		return 0
	}
	return v.data.Len()
}

func (v *denseVector) Get(index int) float64        { return v.data.AtVec(index) }
func (v *denseVector) Set(index int, value float64) { v.data.SetVec(index, value) }
func (v *denseVector) RawVector() *mat.VecDense     { return v.data }

// Increment 增量更新元素
func (v *denseVector) Increment(index int, value float64) {
	v.data.SetVec(index, v.data.AtVec(index)+value)
}

// ToDense 转换为稠密切片
func (v *denseVector) ToDense() []float64 {
	out := make([]float64, v.Length())
	for i := range out {
		out[i] = v.data.AtVec(i)
	}
	return out
}

// Zero 清空向量
func (v *denseVector) Zero() {
	if v.data != nil {
		v.data.Zero()
	}
}

// Copy 复制自身数据到目标向量a
func (v *denseVector) Copy(a Vector) {
	if v.Length() != a.Length() {
		panic(fmt.Sprintf("vector copy: length mismatch %d != %d", v.Length(), a.Length()))
	}
	if v.data == nil {
		return
	}
	a.RawVector().CopyVec(v.data)
}

// MaxAbs 绝对值最大元素的绝对值
func (v *denseVector) MaxAbs() float64 {
	var m float64
	for i := 0; i < v.Length(); i++ {
		m = math.Max(m, math.Abs(v.data.AtVec(i)))
	}
	return m
}

func (v *denseVector) String() string {
	return fmt.Sprintf("%v", v.ToDense())
}

// updateVector 带备份的向量
type updateVector struct {
	Vector
	base *mat.VecDense // 备份数据
}

// NewUpdateVectorPtr 从向量创建可更新向量，初始备份为当前值
func NewUpdateVectorPtr(ptr Vector) UpdateVector {
	uv := &updateVector{Vector: ptr}
	if ptr.Length() > 0 {
		uv.base = mat.NewVecDense(ptr.Length(), nil)
		uv.base.CopyVec(ptr.RawVector())
	}
	return uv
}

// Update 当前数据写入备份
func (uv *updateVector) Update() {
	if uv.base != nil {
		uv.base.CopyVec(uv.RawVector())
	}
}

// Rollback 恢复到备份
func (uv *updateVector) Rollback() {
	if uv.base != nil {
		uv.RawVector().CopyVec(uv.base)
	}
}
