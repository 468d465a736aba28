package system

import (
	"errors"
	"fmt"
	"math"
	"time"

	"poiseuille/element"
	"poiseuille/graph"
	"poiseuille/maths"
	"poiseuille/mna"
	"poiseuille/types"
)

// Assemble 发现网络并组装线性部分。结构错误在任何迭代之前返回。
func (s *IncompressibleSystem) Assemble() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assemble()
}

func (s *IncompressibleSystem) assemble() error {
	g, err := graph.NewGraph(s.blocks)
	if err != nil {
		return err
	}
	// 布局变化时放弃热启动
	if s.graph != nil && (len(s.graph.Nodes) != len(g.Nodes) || len(s.graph.Connectors) != len(g.Connectors)) {
		s.warm = nil
	}
	s.graph = g
	element.CallMark(element.MarkReset, nil, g.Blocks)
	element.CallMark(element.MarkReset, nil, g.Connectors)
	s.mna = mna.NewMna(g.Layout())
	s.lu = nil
	if n := s.mna.GetA().Rows(); n > 0 {
		if s.lu, err = maths.NewLU(n); err != nil {
			return err
		}
	}
	// 加盖线性贡献并备份
	element.CallMark(element.MarkStamp, s.mna, g.Blocks)
	element.CallMark(element.MarkStamp, s.mna, g.Connectors)
	s.mna.Update()
	// 初值
	if len(s.warm) == s.mna.GetX().Length() {
		s.mna.SetX(s.warm)
	} else {
		element.CallMark(element.MarkSeed, s.mna, g.Blocks)
	}
	if s.debug != nil && s.debug.IsDebug() {
		s.debug.Init(s.Rows())
	}
	s.state = types.StateAssembled
	s.logger.Debug("组装完成",
		"nodes", len(g.Nodes),
		"connectors", len(g.Connectors),
		"unknowns", s.mna.GetX().Length())
	return nil
}

// Solve 组装并求解。已收敛的系统以上次的解作为热启动。
// 失败时节点与连接器的结果被作废，状态为 Diverged。
func (s *IncompressibleSystem) Solve() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	if err := s.assemble(); err != nil {
		s.abandon(err)
		if s.observer != nil {
			s.observer.ObserveSolve(s.used, s.state, s.iter, s.residual, time.Since(start))
		}
		return err
	}
	s.used = s.method
	if s.used == types.MethodAuto {
		s.used = types.MethodNewton
		if s.graph.Linear() {
			s.used = types.MethodDirect
		}
	}
	defer func() {
		s.finish(err)
		if s.observer != nil {
			s.observer.ObserveSolve(s.used, s.state, s.iter, s.residual, time.Since(start))
		}
	}()
	if s.used == types.MethodDirect {
		return s.direct()
	}
	return s.newton()
}

// direct 线性网络一次求解
func (s *IncompressibleSystem) direct() error {
	s.iter = 0
	if s.lu != nil {
		if err := s.step(); err != nil {
			return err
		}
		s.iter = 1
	}
	s.residual = s.residualNorm()
	s.update()
	if !s.converged(s.residual) {
		return &types.ConvergenceError{Iterations: s.iter, Residual: s.residual, Tolerance: s.Tolerance}
	}
	return nil
}

// newton 阻尼Newton-Raphson迭代
func (s *IncompressibleSystem) newton() error {
	s.damping = s.DampingFactor
	res := s.residualNorm()
	for s.iter = 0; ; s.iter++ {
		s.residual = res
		if s.converged(res) {
			return nil
		}
		if s.iter >= s.MaxIterations || s.lu == nil {
			return &types.ConvergenceError{Iterations: s.iter, Residual: res, Tolerance: s.Tolerance}
		}
		x := s.mna.GetX()
		prev := x.ToDense()
		if err := s.step(); err != nil {
			return err
		}
		full := x.ToDense()
		// 回溯: 残差变大时减小阻尼
		d := s.damping
		for {
			for i := range full {
				x.Set(i, prev[i]+d*(full[i]-prev[i]))
			}
			res = s.residualNorm()
			if res <= s.residual || d <= s.MinDampingFactor {
				break
			}
			d = math.Max(s.MinDampingFactor, d*0.5)
		}
		// 阻尼自适应调整
		if d == s.damping {
			s.damping = math.Min(s.MaxDampingFactor, d*1.2)
		} else {
			s.damping = d
		}
		s.residual = res
		s.update()
	}
}

// step 回滚到线性部分，加盖非线性贡献并求解。
func (s *IncompressibleSystem) step() error {
	s.mna.Rollback()
	element.CallMark(element.MarkDoStep, s.mna, s.graph.Blocks)
	element.CallMark(element.MarkDoStep, s.mna, s.graph.Connectors)
	if err := s.lu.Decompose(s.mna.GetA()); err != nil {
		return &types.SingularSystemError{Err: err}
	}
	if err := s.lu.SolveReuse(s.mna.GetZ(), s.mna.GetX()); err != nil {
		return &types.SingularSystemError{Err: err}
	}
	return nil
}

// residualNorm 当前解的残差无穷范数
func (s *IncompressibleSystem) residualNorm() float64 {
	s.mna.ZeroResidual()
	element.CallMark(element.MarkResidual, s.mna, s.graph.Blocks)
	element.CallMark(element.MarkResidual, s.mna, s.graph.Connectors)
	return s.mna.GetResidual().MaxAbs()
}

// converged ‖r‖∞ ≤ tol·(1 + scale)，scale 为网络中最大的流量或压力。
func (s *IncompressibleSystem) converged(res float64) bool {
	scale := math.Max(s.mna.FlowScale(), s.mna.GetX().MaxAbs())
	return res <= s.Tolerance*(1+scale)
}

// update 通知调试记录
func (s *IncompressibleSystem) update() {
	if s.debug != nil && s.debug.IsDebug() {
		s.debug.Update(types.Iteration{
			Iter:     s.iter,
			Residual: s.residual,
			Damping:  s.damping,
			X:        s.mna.GetX().ToDense(),
		})
	}
}

// finish 保存或作废结果
func (s *IncompressibleSystem) finish(err error) {
	if err != nil {
		s.state = types.StateDiverged
		s.warm = nil
		s.invalidate()
		if s.debug != nil && s.debug.IsDebug() {
			s.debug.Error(err)
		}
		var conv *types.ConvergenceError
		if errors.As(err, &conv) {
			s.logger.Warn("求解未收敛", "method", s.used, "iterations", conv.Iterations, "residual", conv.Residual)
		} else {
			s.logger.Error("求解失败", "method", s.used, "err", err)
		}
		return
	}
	element.CallMark(element.MarkStepFinished, s.mna, s.graph.Blocks)
	element.CallMark(element.MarkStepFinished, s.mna, s.graph.Connectors)
	for _, n := range s.graph.Nodes {
		n.Resolve(s.mna.GetNodePressure(n.Index()))
	}
	s.warm = s.mna.GetX().ToDense()
	s.state = types.StateSolved
	s.logger.Debug("求解收敛", "method", s.used, "iterations", s.iter, "residual", fmt.Sprintf("%.3e", s.residual))
}

// abandon 组装失败: 上次的结果与图都不再对应当前拓扑
func (s *IncompressibleSystem) abandon(err error) {
	if s.graph != nil {
		s.invalidate()
	}
	s.graph, s.mna, s.lu = nil, nil, nil
	s.warm = nil
	s.iter, s.residual = 0, 0
	s.state = types.StateDiverged
	if s.debug != nil && s.debug.IsDebug() {
		s.debug.Error(err)
	}
	s.logger.Error("组装失败", "err", err)
}

func (s *IncompressibleSystem) invalidate() {
	for _, b := range s.graph.Blocks {
		b.Invalidate()
	}
	for _, c := range s.graph.Connectors {
		c.Invalidate()
	}
}
