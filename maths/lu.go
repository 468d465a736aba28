package maths

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewLU 创建稠密矩阵LU分解器（输入矩阵维度n）
// 参数:
//
//	n - 矩阵维度（必须为正整数）
//
// 返回:
//
//	LU接口实例，错误信息
func NewLU(n int) (LU, error) {
	if n < 1 {
		return nil, errors.New("lu dimension must be positive")
	}
	return &luDense{n: n}, nil
}

// luDense 稠密矩阵LU分解实现（A=PLU，带部分主元，由 gonum 完成）
type luDense struct {
	n  int    // 矩阵维度
	lu mat.LU // 分解结果
}

// Dim 获取矩阵维度
func (lu *luDense) Dim() int { return lu.n }

// Decompose 执行LU分解
//
// 条件数超过 mat.ConditionTolerance 视为奇异
func (lu *luDense) Decompose(matrix Matrix) error {
	if !matrix.IsSquare() {
		return errors.New("lu dense decompose: input must be square matrix")
	}
	if matrix.Rows() != lu.n {
		return errors.New("lu dense decompose: matrix dimension mismatch")
	}
	lu.lu.Factorize(matrix.RawMatrix())
	if c := lu.lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) || c > mat.ConditionTolerance {
		return fmt.Errorf("lu dense decompose: matrix is singular or nearly singular (cond=%.3e)", c)
	}
	return nil
}

// SolveReuse 利用分解结果求解Ax=b
func (lu *luDense) SolveReuse(b, x Vector) error {
	if b.Length() != lu.n || x.Length() != lu.n {
		return errors.New("lu dense solve: vector dimension mismatch")
	}
	if err := lu.lu.SolveVecTo(x.RawVector(), false, b.RawVector()); err != nil {
		return fmt.Errorf("lu dense solve: %w", err)
	}
	return nil
}
